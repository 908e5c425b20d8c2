package app

import (
	"fmt"
	"os"
	"time"

	"github.com/getfoundry/unbrowse-mcp-sub003/internal/api"
	"github.com/getfoundry/unbrowse-mcp-sub003/internal/catalog"
	"github.com/getfoundry/unbrowse-mcp-sub003/internal/credstore"
	"github.com/getfoundry/unbrowse-mcp-sub003/internal/engine"
	"github.com/getfoundry/unbrowse-mcp-sub003/internal/server"
	"github.com/getfoundry/unbrowse-mcp-sub003/pkg/logging"
)

// Services holds the initialized components of a running instance. Every
// component is also registered with the api handler registry so tool handlers
// reach them without package cycles.
type Services struct {
	Catalog *catalog.Catalog
	Watcher *catalog.Watcher
	Store   *credstore.Store
	Engine  *engine.Engine
	Server  *server.UnbrowseServer
}

// InitializeServices wires catalog, credential store, engine and MCP server
// from the loaded configuration.
func InitializeServices(cfg *Config) (*Services, error) {
	unbrowseCfg := cfg.UnbrowseConfig

	userSecret := os.Getenv(unbrowseCfg.Credentials.SecretEnvVar)
	if userSecret == "" {
		return nil, fmt.Errorf("environment variable %s is not set; it must hold the user secret credentials are encrypted with", unbrowseCfg.Credentials.SecretEnvVar)
	}

	cipher, err := credstore.NewCipher(userSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}

	store, err := credstore.NewStore(unbrowseCfg.Credentials.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store at %s: %w", unbrowseCfg.Credentials.DatabasePath, err)
	}

	abilityCatalog, err := catalog.New(unbrowseCfg.Catalog.AbilitiesDir)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to load ability catalog from %s: %w", unbrowseCfg.Catalog.AbilitiesDir, err)
	}
	logging.Info("Bootstrap", "Loaded %d abilities from %s", len(abilityCatalog.ListAbilities()), unbrowseCfg.Catalog.AbilitiesDir)

	var watcher *catalog.Watcher
	if unbrowseCfg.Catalog.Watch {
		watcher = catalog.NewWatcher(abilityCatalog)
		if err := watcher.Start(); err != nil {
			// Watching is best effort; a static catalog still serves.
			logging.Warn("Bootstrap", "Ability directory watching disabled: %v", err)
			watcher = nil
		}
	}

	executionEngine := engine.New(abilityCatalog, store, cipher, engine.Options{
		Timeout:          secondsToDuration(unbrowseCfg.Execution.TimeoutSeconds),
		MaxResponseChars: unbrowseCfg.Execution.MaxResponseChars,
		MaxConcurrent:    int64(unbrowseCfg.Execution.MaxConcurrent),
	})

	api.RegisterAbilityCatalog(abilityCatalog)
	api.RegisterCredentialStore(store)
	api.RegisterExecution(executionEngine)

	mcpServer := server.NewUnbrowseServer(unbrowseCfg.Server, unbrowseCfg.Credentials.UserID, cipher)

	return &Services{
		Catalog: abilityCatalog,
		Watcher: watcher,
		Store:   store,
		Engine:  executionEngine,
		Server:  mcpServer,
	}, nil
}

func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// Close releases everything InitializeServices opened.
func (s *Services) Close() {
	if s.Watcher != nil {
		s.Watcher.Stop()
	}
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			logging.Warn("Bootstrap", "Error closing credential store: %v", err)
		}
	}
}
