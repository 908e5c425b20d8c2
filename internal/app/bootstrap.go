package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getfoundry/unbrowse-mcp-sub003/internal/config"
	"github.com/getfoundry/unbrowse-mcp-sub003/pkg/logging"
)

// Application bootstraps and runs unbrowse.
//
// The Application follows a two-phase initialization pattern:
//  1. Bootstrap phase: load configuration, initialize logging, wire services
//  2. Execution phase: serve MCP until interrupted
type Application struct {
	config   *Config
	services *Services
	version  string
}

// NewApplication creates and initializes a new application instance with the
// provided configuration. It configures logging, loads the unbrowse
// configuration and wires all services, returning an error if any critical
// initialization step fails.
func NewApplication(cfg *Config, version string) (*Application, error) {
	appLogLevel := logging.LevelInfo
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}

	// On the stdio transport stdout carries the protocol stream, so logs go to
	// stderr; Silent discards them entirely.
	var logOutput io.Writer = os.Stderr
	if cfg.Silent {
		logOutput = io.Discard
	}
	logging.Init(appLogLevel, logOutput)

	configPath := cfg.ConfigPath
	if configPath == "" {
		configPath = config.GetDefaultConfigPathOrPanic()
	}

	unbrowseCfg, err := config.LoadConfig(configPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration from %s", configPath)
		return nil, fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}
	cfg.UnbrowseConfig = &unbrowseCfg

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
		version:  version,
	}, nil
}

// Run starts the MCP server and blocks until the context is cancelled or an
// interrupt signal arrives, then shuts everything down.
func (a *Application) Run(ctx context.Context) error {
	defer a.services.Close()

	if err := a.services.Server.Start(ctx, a.version); err != nil {
		logging.Error("App", err, "Failed to start MCP server")
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
	case <-sigChan:
		logging.Info("App", "Received shutdown signal")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.services.Server.Stop(stopCtx)
}
