package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the unbrowse application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "unbrowse",
	Short: "Execute reverse-engineered API abilities over MCP",
	Long: `unbrowse serves an ability catalog over the Model Context Protocol.
Each ability describes one upstream API call; executions inject stored
per-user credentials, run inside a sandbox and classify failures so
callers know whether to re-authenticate, retry or give up.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// It initializes and executes the root command, which in turn handles subcommands and flags.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "unbrowse version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
