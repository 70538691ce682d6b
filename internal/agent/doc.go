// Package agent orchestrates one conversational exam-coaching turn. The
// facade resolves a session, augments the prompt with memory context,
// runs the answer generator with the available tools, and ingests the
// turn into memory in the background.
package agent
