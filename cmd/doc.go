// Package cmd implements the command-line interface for examcoach.
//
// This package provides the following commands:
//   - serve: Start the agent runtime server
//   - callback: Run a local OAuth2 consent callback receiver
//   - invoke: Send a prompt to a deployed agent runtime
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
