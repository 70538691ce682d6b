package identity

import (
	"sort"
	"strings"
	"sync"
)

// SessionCache holds the most recent pending-exchange session URI per
// provider and scope set. One slot per key: a newer session URI for the
// same exchange overwrites the previous one (last writer wins).
//
// The cache is process-local. Concurrent invocations on the same process
// share it, so access is mutex-guarded; invocations on different runtime
// instances each carry their own cache, which the identity service
// tolerates because the session URI is echoed back on every response.
type SessionCache struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewSessionCache creates an empty session cache.
func NewSessionCache() *SessionCache {
	return &SessionCache{entries: make(map[string]string)}
}

// Get returns the cached session URI for the provider and scope set, or
// an empty string when no exchange is pending.
func (c *SessionCache) Get(provider string, scopes []string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[cacheKey(provider, scopes)]
}

// Put stores the session URI for the provider and scope set, overwriting
// any previous value.
func (c *SessionCache) Put(provider string, scopes []string, sessionURI string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(provider, scopes)] = sessionURI
}

// Clear removes the cached session URI for the provider and scope set.
// Called once an exchange completes so a stale URI is never echoed into a
// later, unrelated exchange.
func (c *SessionCache) Clear(provider string, scopes []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey(provider, scopes))
}

// cacheKey is order-insensitive over scopes so differently ordered scope
// slices address the same slot.
func cacheKey(provider string, scopes []string) string {
	sorted := make([]string, len(scopes))
	copy(sorted, scopes)
	sort.Strings(sorted)
	return provider + "|" + strings.Join(sorted, " ")
}
