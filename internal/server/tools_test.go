package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/getfoundry/unbrowse-mcp-sub003/internal/api"
	"github.com/getfoundry/unbrowse-mcp-sub003/internal/config"
	"github.com/getfoundry/unbrowse-mcp-sub003/internal/credstore"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	abilities []api.AbilitySummary
	searched  struct {
		service  string
		keywords []string
	}
}

func (s *stubCatalog) GetAbility(abilityID string) (*api.Ability, error) {
	return nil, api.NewAbilityNotFoundError(abilityID)
}

func (s *stubCatalog) SearchAbilities(serviceName string, keywords []string) []api.AbilitySummary {
	s.searched.service = serviceName
	s.searched.keywords = keywords
	return s.abilities
}

func (s *stubCatalog) ListAbilities() []api.AbilitySummary { return s.abilities }

func (s *stubCatalog) FindLoginAbilities(serviceName string) []api.LoginAbility { return nil }

type stubExecution struct {
	lastRequest api.ExecutionRequest
	result      *api.ExecutionResult
}

func (s *stubExecution) ExecuteAbility(ctx context.Context, req api.ExecutionRequest) *api.ExecutionResult {
	s.lastRequest = req
	return s.result
}

func newTestServer(t *testing.T) *UnbrowseServer {
	t.Helper()
	cipher, err := credstore.NewCipher("test-secret")
	require.NoError(t, err)
	return NewUnbrowseServer(config.ServerConfig{}, "user-1", cipher)
}

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestHandleExecute(t *testing.T) {
	execution := &stubExecution{
		result: &api.ExecutionResult{
			ExecutionID: "exec-1",
			Success:     true,
			StatusCode:  200,
			Body:        map[string]interface{}{"ok": true},
		},
	}
	api.RegisterExecution(execution)
	defer api.RegisterExecution(nil)

	srv := newTestServer(t)
	result, err := srv.handleExecute(context.Background(), toolRequest(map[string]interface{}{
		"ability_id": "get-feed",
		"params":     map[string]interface{}{"limit": float64(5)},
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	assert.Equal(t, "get-feed", execution.lastRequest.AbilityID)
	assert.Equal(t, "user-1", execution.lastRequest.UserID)
	assert.Equal(t, float64(5), execution.lastRequest.Params["limit"])

	var envelope api.ExecutionResult
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &envelope))
	assert.Equal(t, "exec-1", envelope.ExecutionID)
	assert.True(t, envelope.Success)
}

func TestHandleExecuteFailureMirrorsIsError(t *testing.T) {
	execution := &stubExecution{
		result: &api.ExecutionResult{
			ExecutionID:        "exec-2",
			Success:            false,
			StatusCode:         403,
			Error:              "upstream authentication failure (status 403)",
			CredentialsExpired: true,
		},
	}
	api.RegisterExecution(execution)
	defer api.RegisterExecution(nil)

	srv := newTestServer(t)
	result, err := srv.handleExecute(context.Background(), toolRequest(map[string]interface{}{
		"ability_id": "get-feed",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "credentials_expired")
}

func TestHandleExecuteMissingAbilityID(t *testing.T) {
	srv := newTestServer(t)
	result, err := srv.handleExecute(context.Background(), toolRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "ability_id")
}

func TestHandleSearch(t *testing.T) {
	catalog := &stubCatalog{
		abilities: []api.AbilitySummary{
			{ID: "linkedin-feed", ServiceName: "linkedin", Description: "Fetch the feed"},
		},
	}
	api.RegisterAbilityCatalog(catalog)
	defer api.RegisterAbilityCatalog(nil)

	srv := newTestServer(t)
	result, err := srv.handleSearch(context.Background(), toolRequest(map[string]interface{}{
		"service":  "linkedin",
		"keywords": []interface{}{"feed", "posts"},
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	assert.Equal(t, "linkedin", catalog.searched.service)
	assert.Equal(t, []string{"feed", "posts"}, catalog.searched.keywords)
	assert.Contains(t, textContent(t, result), "linkedin-feed")
}

func TestHandleSearchRequiresService(t *testing.T) {
	srv := newTestServer(t)
	result, err := srv.handleSearch(context.Background(), toolRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleList(t *testing.T) {
	catalog := &stubCatalog{
		abilities: []api.AbilitySummary{
			{ID: "a1", ServiceName: "svc"},
			{ID: "a2", ServiceName: "svc"},
		},
	}
	api.RegisterAbilityCatalog(catalog)
	defer api.RegisterAbilityCatalog(nil)

	srv := newTestServer(t)
	result, err := srv.handleList(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)

	var summaries []api.AbilitySummary
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &summaries))
	assert.Len(t, summaries, 2)
}

func TestHandleCredentialStoreEncrypts(t *testing.T) {
	store := credstore.NewMemoryStore()
	api.RegisterCredentialStore(store)
	defer api.RegisterCredentialStore(nil)

	srv := newTestServer(t)
	result, err := srv.handleCredentialStore(context.Background(), toolRequest(map[string]interface{}{
		"domain": "www.example.com",
		"key":    "Authorization",
		"value":  "Bearer super-secret",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	// The plaintext never appears in the tool result.
	assert.NotContains(t, textContent(t, result), "super-secret")

	records, err := store.GetCredentialsForDomain(context.Background(), "user-1", "www.example.com")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotEqual(t, "Bearer super-secret", records[0].Value)

	// The stored ciphertext round-trips through the user cipher.
	plaintext, err := srv.cipher.Decrypt(records[0].Value, "www.example.com", "Authorization")
	require.NoError(t, err)
	assert.Equal(t, "Bearer super-secret", plaintext)
}

func TestHandleCredentialStoreMissingFields(t *testing.T) {
	srv := newTestServer(t)
	result, err := srv.handleCredentialStore(context.Background(), toolRequest(map[string]interface{}{
		"domain": "www.example.com",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
