package app

import (
	"github.com/getfoundry/unbrowse-mcp-sub003/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Debug settings
	Debug bool

	// Silent suppresses all log output, required for the stdio transport
	// where stdout carries the protocol stream.
	Silent bool

	// Custom configuration path (optional)
	ConfigPath string

	// Environment configuration
	UnbrowseConfig *config.UnbrowseConfig
}

// NewConfig creates a new application configuration
func NewConfig(debug, silent bool, configPath string) *Config {
	return &Config{
		Debug:      debug,
		Silent:     silent,
		ConfigPath: configPath,
	}
}
