// Package memory integrates the agent with AgentCore Memory for long-term
// conversational context.
//
// Retrieval formats matching memory records into a context block the facade
// prepends to the user's message. Ingestion submits one user/assistant turn
// per invocation. Both directions are strictly best-effort: any failure is
// logged and swallowed so the response path is never affected, and ingestion
// runs after the response has already been computed.
package memory
