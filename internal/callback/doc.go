// Package callback implements the local OAuth2 callback receiver that
// finalizes the 3-legged consent flow. AgentCore redirects the user's
// browser here after Google consent; the receiver binds the pending
// authorization session to the configured user so the agent's next
// token request succeeds.
package callback
