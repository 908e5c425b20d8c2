package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/getfoundry/unbrowse-mcp-sub003/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAbilityFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func newTestCatalog(t *testing.T) (*Catalog, string) {
	t.Helper()
	dir := t.TempDir()

	writeAbilityFile(t, dir, "get-feed.yaml", `
id: get-feed
service: example-service
description: Fetch the user feed
method: GET
url: https://www.example.com/api/feed?limit={{ limit }}
input_schema:
  limit:
    type: number
    required: false
    default: 20
static_headers:
  Accept: application/json
dynamic_header_keys:
  - www.example.com::Authorization
requires_dynamic_headers: true
`)

	writeAbilityFile(t, dir, "example-login.yaml", `
id: example-login
service: example-service
description: Login to example and capture a session token
method: POST
url: https://www.example.com/api/login
input_schema:
  username:
    type: string
    required: true
  password:
    type: string
    required: true
requires_dynamic_headers: false
`)

	writeAbilityFile(t, dir, "other-search.yaml", `
id: other-search
service: other-service
description: Search the other service
method: GET
url: https://api.other.io/search?q={{ q }}
input_schema:
  q:
    type: string
    required: true
requires_dynamic_headers: false
`)

	catalog, err := New(dir)
	require.NoError(t, err)
	return catalog, dir
}

func TestGetAbility(t *testing.T) {
	catalog, _ := newTestCatalog(t)

	ability, err := catalog.GetAbility("get-feed")
	require.NoError(t, err)
	assert.Equal(t, "example-service", ability.ServiceName)
	assert.Equal(t, []string{"www.example.com::Authorization"}, ability.DynamicHeaderKeys)
	assert.True(t, ability.RequiresDynamicHeaders)
	assert.Equal(t, "application/json", ability.StaticHeaders["Accept"])
	assert.Equal(t, float64(20), ability.InputSchema["limit"].Default)
}

func TestGetAbilityNotFound(t *testing.T) {
	catalog, _ := newTestCatalog(t)

	_, err := catalog.GetAbility("nope")
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
}

func TestListAbilitiesSorted(t *testing.T) {
	catalog, _ := newTestCatalog(t)

	summaries := catalog.ListAbilities()
	require.Len(t, summaries, 3)
	assert.Equal(t, "example-login", summaries[0].ID)
	assert.Equal(t, "get-feed", summaries[1].ID)
	assert.Equal(t, "other-search", summaries[2].ID)
}

func TestSearchAbilities(t *testing.T) {
	catalog, _ := newTestCatalog(t)

	t.Run("by service only", func(t *testing.T) {
		results := catalog.SearchAbilities("example-service", nil)
		assert.Len(t, results, 2)
	})

	t.Run("by keyword", func(t *testing.T) {
		results := catalog.SearchAbilities("example-service", []string{"feed"})
		require.Len(t, results, 1)
		assert.Equal(t, "get-feed", results[0].ID)
	})

	t.Run("case insensitive service match", func(t *testing.T) {
		results := catalog.SearchAbilities("Example-Service", []string{"feed"})
		assert.Len(t, results, 1)
	})

	t.Run("no matches", func(t *testing.T) {
		results := catalog.SearchAbilities("example-service", []string{"billing"})
		assert.Empty(t, results)
	})
}

func TestFindLoginAbilities(t *testing.T) {
	catalog, _ := newTestCatalog(t)

	t.Run("matching login ability", func(t *testing.T) {
		candidates := catalog.FindLoginAbilities("example-service")
		require.Len(t, candidates, 1)
		assert.Equal(t, "example-login", candidates[0].ID)
		assert.Equal(t, "example-service", candidates[0].ServiceName)
	})

	t.Run("service without login abilities", func(t *testing.T) {
		candidates := catalog.FindLoginAbilities("other-service")
		assert.Empty(t, candidates)
	})
}

func TestReloadPicksUpChanges(t *testing.T) {
	catalog, dir := newTestCatalog(t)

	writeAbilityFile(t, dir, "new-ability.yaml", `
id: new-ability
service: example-service
description: Newly added ability
url: https://www.example.com/api/new
requires_dynamic_headers: false
`)

	require.NoError(t, catalog.Reload())
	ability, err := catalog.GetAbility("new-ability")
	require.NoError(t, err)

	// Method defaults to GET when omitted.
	assert.Equal(t, "GET", ability.Method)
}

func TestInvalidFilesAreSkipped(t *testing.T) {
	dir := t.TempDir()

	writeAbilityFile(t, dir, "good.yaml", `
id: good
service: svc
url: https://example.com/ok
requires_dynamic_headers: false
`)
	// Flag and key list disagree: rejected at load time.
	writeAbilityFile(t, dir, "bad-flag.yaml", `
id: bad-flag
service: svc
url: https://example.com/bad
dynamic_header_keys:
  - example.com::Authorization
requires_dynamic_headers: false
`)
	// Malformed token.
	writeAbilityFile(t, dir, "bad-token.yaml", `
id: bad-token
service: svc
url: https://example.com/bad
dynamic_header_keys:
  - not-a-token
requires_dynamic_headers: true
`)
	writeAbilityFile(t, dir, "not-yaml.yaml", "{{{{")

	catalog, err := New(dir)
	require.NoError(t, err)

	summaries := catalog.ListAbilities()
	require.Len(t, summaries, 1)
	assert.Equal(t, "good", summaries[0].ID)
}
