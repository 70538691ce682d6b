// Package runtime implements the Bedrock AgentCore Runtime HTTP
// contract: POST /invocations for agent turns and GET /ping for health
// checks, both on port 8080. It also serves Prometheus metrics on a
// separate port.
package runtime
