package drive

import (
	"fmt"
	"time"
)

// renderSession converts a session into its markdown document form. The
// timestamp is normalized to UTC ISO-8601 so documents sort and diff
// consistently regardless of where the agent runs.
func renderSession(sessionID, summary string, savedAt time.Time) string {
	return fmt.Sprintf("# Session %s\n\n**Saved at:** %s\n\n## Summary\n\n%s\n",
		sessionID, savedAt.UTC().Format(time.RFC3339), summary)
}
