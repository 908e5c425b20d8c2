package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/getfoundry/unbrowse-mcp-sub003/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/unbrowse"
	configFileName = "config.yaml"
)

func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads configuration from a single specified directory.
// The directory should contain config.yaml, the abilities subdirectory and the
// credential database.
func LoadConfig(configPath string) (UnbrowseConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig(configPath)

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
		return UnbrowseConfig{}, err
	}
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		// config malformed
		return UnbrowseConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}

	applyFallbacks(&config, configPath)
	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}

// applyFallbacks restores defaults for fields the file explicitly zeroed.
func applyFallbacks(config *UnbrowseConfig, configPath string) {
	defaults := GetDefaultConfig(configPath)

	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.Host == "" {
		config.Server.Host = defaults.Server.Host
	}
	if config.Server.Transport == "" {
		config.Server.Transport = defaults.Server.Transport
	}
	if config.Execution.TimeoutSeconds <= 0 {
		config.Execution.TimeoutSeconds = defaults.Execution.TimeoutSeconds
	}
	if config.Execution.MaxResponseChars <= 0 {
		config.Execution.MaxResponseChars = defaults.Execution.MaxResponseChars
	}
	if config.Execution.MaxConcurrent <= 0 {
		config.Execution.MaxConcurrent = defaults.Execution.MaxConcurrent
	}
	if config.Credentials.UserID == "" {
		config.Credentials.UserID = defaults.Credentials.UserID
	}
	if config.Credentials.SecretEnvVar == "" {
		config.Credentials.SecretEnvVar = defaults.Credentials.SecretEnvVar
	}
	if config.Credentials.DatabasePath == "" {
		config.Credentials.DatabasePath = defaults.Credentials.DatabasePath
	}
	if config.Catalog.AbilitiesDir == "" {
		config.Catalog.AbilitiesDir = defaults.Catalog.AbilitiesDir
	}
}
