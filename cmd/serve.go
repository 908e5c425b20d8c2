package cmd

import (
	"context"
	"fmt"

	"github.com/getfoundry/unbrowse-mcp-sub003/internal/app"

	"github.com/spf13/cobra"
)

// serveDebug enables verbose logging across the application.
var serveDebug bool

// serveSilent suppresses all log output. Useful when an MCP client launches
// unbrowse on stdio and treats any stray stderr output as noise.
var serveSilent bool

// serveConfigPath specifies a custom configuration directory path.
// The directory should contain config.yaml, the abilities/ subdirectory and
// the credential database.
var serveConfigPath string

// serveCmd defines the serve command structure. This is the main command of
// unbrowse: it loads the ability catalog, opens the credential store and
// serves the MCP tool surface until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the unbrowse MCP server",
	Long: `Starts the unbrowse MCP server.

The server loads ability definitions from the configured abilities directory,
opens the encrypted credential store and exposes execution, discovery and
credential tools over the configured transport (stdio by default).

Configuration:
  unbrowse loads configuration from ~/.config/unbrowse/config.yaml.
  Use --config-path to point at a different directory containing:
  - config.yaml (main configuration)
  - abilities/ (ability definitions)
  - credentials.db (encrypted credential store, created on demand)

The user secret used to derive the credential encryption key is read from the
environment variable named by credentials.secretEnvVar (default
UNBROWSE_USER_SECRET).`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command
func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(serveDebug, serveSilent, serveConfigPath)

	application, err := app.NewApplication(cfg, GetVersion())
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

// init registers the serve command and its flags with the root command.
func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable general debug logging")
	serveCmd.Flags().BoolVar(&serveSilent, "silent", false, "Suppress all log output")
	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", "", "Custom configuration directory path")
}
