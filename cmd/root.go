package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the examcoach application
var rootCmd = &cobra.Command{
	Use:   "examcoach",
	Short: "Conversational AWS certification exam coach agent",
	Long: `examcoach is a conversational coaching agent for the AWS Certified
Solutions Architect Professional exam, built on Claude via Amazon Bedrock.

It can run as:
  - The agent runtime server answering invocation requests (default)
  - A local OAuth2 consent callback receiver for development
  - A client that invokes a deployed agent runtime`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "examcoach version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCallbackCmd())
	rootCmd.AddCommand(newInvokeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
