// Package docs provides a client for the AWS documentation MCP server.
// The agent exposes its search and read tools so answers can cite
// current AWS documentation instead of relying on model recall.
package docs
