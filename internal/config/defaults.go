package config

import "path/filepath"

const (
	// DefaultUserID keys locally stored credentials when no identity is
	// configured.
	DefaultUserID = "local"

	// DefaultSecretEnvVar is the environment variable the user secret is read
	// from.
	DefaultSecretEnvVar = "UNBROWSE_USER_SECRET"
)

// GetDefaultConfig returns the default configuration, with storage paths
// anchored under configPath.
func GetDefaultConfig(configPath string) UnbrowseConfig {
	return UnbrowseConfig{
		Server: ServerConfig{
			Port:      8092,
			Host:      "localhost",
			Transport: MCPTransportStdio,
		},
		Execution: ExecutionConfig{
			TimeoutSeconds:   30,
			MaxResponseChars: 30000,
			MaxConcurrent:    32,
		},
		Credentials: CredentialsConfig{
			UserID:       DefaultUserID,
			SecretEnvVar: DefaultSecretEnvVar,
			DatabasePath: filepath.Join(configPath, "credentials.db"),
		},
		Catalog: CatalogConfig{
			AbilitiesDir: filepath.Join(configPath, "abilities"),
			Watch:        true,
		},
	}
}
