package config

// UnbrowseConfig is the top-level configuration structure for unbrowse.
type UnbrowseConfig struct {
	Server      ServerConfig      `yaml:"server"`
	Execution   ExecutionConfig   `yaml:"execution"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Catalog     CatalogConfig     `yaml:"catalog"`
}

const (
	// MCPTransportStreamableHTTP is the streamable HTTP transport.
	MCPTransportStreamableHTTP = "streamable-http"
	// MCPTransportStdio is the standard I/O transport.
	MCPTransportStdio = "stdio"
)

// ServerConfig defines the configuration for the MCP server endpoint.
type ServerConfig struct {
	Port      int    `yaml:"port,omitempty"`      // Port for the streamable HTTP endpoint (default: 8092)
	Host      string `yaml:"host,omitempty"`      // Host to bind to (default: localhost)
	Transport string `yaml:"transport,omitempty"` // Transport to use (default: stdio)
}

// ExecutionConfig bounds individual ability executions.
type ExecutionConfig struct {
	TimeoutSeconds   int `yaml:"timeoutSeconds,omitempty"`   // Wall-clock budget per execution (default: 30)
	MaxResponseChars int `yaml:"maxResponseChars,omitempty"` // Serialized response size cap (default: 30000)
	MaxConcurrent    int `yaml:"maxConcurrent,omitempty"`    // In-flight execution cap (default: 32)
}

// CredentialsConfig locates the credential store and the user identity it is
// keyed by.
type CredentialsConfig struct {
	UserID string `yaml:"userId,omitempty"` // Identity credentials are stored under (default: "local")

	// SecretEnvVar names the environment variable holding the user secret the
	// encryption key is derived from. The secret itself never appears in the
	// config file.
	SecretEnvVar string `yaml:"secretEnvVar,omitempty"` // (default: UNBROWSE_USER_SECRET)

	DatabasePath string `yaml:"databasePath,omitempty"` // SQLite database path (default: <config dir>/credentials.db)
}

// CatalogConfig locates the ability definitions.
type CatalogConfig struct {
	AbilitiesDir string `yaml:"abilitiesDir,omitempty"` // Directory of ability YAML files (default: <config dir>/abilities)
	Watch        bool   `yaml:"watch,omitempty"`        // Reload definitions on file changes (default: true)
}
