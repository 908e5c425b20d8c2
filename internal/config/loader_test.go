package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 8092, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, MCPTransportStdio, cfg.Server.Transport)
	assert.Equal(t, 30, cfg.Execution.TimeoutSeconds)
	assert.Equal(t, 30000, cfg.Execution.MaxResponseChars)
	assert.Equal(t, DefaultUserID, cfg.Credentials.UserID)
	assert.Equal(t, DefaultSecretEnvVar, cfg.Credentials.SecretEnvVar)
	assert.Equal(t, filepath.Join(dir, "credentials.db"), cfg.Credentials.DatabasePath)
	assert.Equal(t, filepath.Join(dir, "abilities"), cfg.Catalog.AbilitiesDir)
	assert.True(t, cfg.Catalog.Watch)
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	content := `
server:
  port: 9001
  host: 0.0.0.0
  transport: streamable-http
execution:
  timeoutSeconds: 10
credentials:
  userId: alice
catalog:
  abilitiesDir: /srv/abilities
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, MCPTransportStreamableHTTP, cfg.Server.Transport)
	assert.Equal(t, 10, cfg.Execution.TimeoutSeconds)
	assert.Equal(t, "alice", cfg.Credentials.UserID)
	assert.Equal(t, "/srv/abilities", cfg.Catalog.AbilitiesDir)

	// Unset fields keep their defaults.
	assert.Equal(t, 30000, cfg.Execution.MaxResponseChars)
	assert.Equal(t, 32, cfg.Execution.MaxConcurrent)
	assert.Equal(t, filepath.Join(dir, "credentials.db"), cfg.Credentials.DatabasePath)
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [not a map"), 0o644))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}
