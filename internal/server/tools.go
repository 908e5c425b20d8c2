package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/getfoundry/unbrowse-mcp-sub003/internal/api"
	"github.com/getfoundry/unbrowse-mcp-sub003/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// createTools builds the MCP tool surface: execute one ability, discover
// abilities, and store credentials. Ability logic, source code and header
// values never appear in any tool result.
func (u *UnbrowseServer) createTools() []mcpserver.ServerTool {
	return []mcpserver.ServerTool{
		{
			Tool: mcp.Tool{
				Name:        "unbrowse_execute",
				Description: "Execute an ability by id with the given parameters. Returns the execution result envelope, including failure classification and login suggestions on credential expiry.",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"ability_id": map[string]interface{}{
							"type":        "string",
							"description": "Identifier of the ability to execute",
						},
						"params": map[string]interface{}{
							"type":        "object",
							"description": "Ability input parameters, validated against the ability's input schema",
						},
						"transform_code": map[string]interface{}{
							"type":        "string",
							"description": "Optional Go source defining Transform(data interface{}) (interface{}, error), applied to the response body",
						},
					},
					Required: []string{"ability_id"},
				},
			},
			Handler: u.handleExecute,
		},
		{
			Tool: mcp.Tool{
				Name:        "unbrowse_list",
				Description: "List every ability in the catalog as reduced summaries.",
				InputSchema: mcp.ToolInputSchema{
					Type:       "object",
					Properties: map[string]interface{}{},
				},
			},
			Handler: u.handleList,
		},
		{
			Tool: mcp.Tool{
				Name:        "unbrowse_search",
				Description: "Search the catalog by service name and optional intent keywords.",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"service": map[string]interface{}{
							"type":        "string",
							"description": "Service name to match (e.g. \"linkedin\")",
						},
						"keywords": map[string]interface{}{
							"type":        "array",
							"items":       map[string]interface{}{"type": "string"},
							"description": "Intent keywords matched against ability id and description",
						},
					},
					Required: []string{"service"},
				},
			},
			Handler: u.handleSearch,
		},
		{
			Tool: mcp.Tool{
				Name:        "unbrowse_credential_store",
				Description: "Encrypt and store a credential for a domain and header name. Re-storing a credential clears its expired flag.",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"domain": map[string]interface{}{
							"type":        "string",
							"description": "Domain the credential belongs to (e.g. \"www.example.com\")",
						},
						"key": map[string]interface{}{
							"type":        "string",
							"description": "Header name the credential is injected as (e.g. \"Authorization\")",
						},
						"value": map[string]interface{}{
							"type":        "string",
							"description": "Plaintext credential value; encrypted before storage and never echoed back",
						},
					},
					Required: []string{"domain", "key", "value"},
				},
			},
			Handler: u.handleCredentialStore,
		},
	}
}

func (u *UnbrowseServer) handleExecute(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := requestArguments(req)

	abilityID, ok := args["ability_id"].(string)
	if !ok || abilityID == "" {
		return mcp.NewToolResultError("ability_id is required"), nil
	}

	params, _ := args["params"].(map[string]interface{})
	transformCode, _ := args["transform_code"].(string)

	execution := api.GetExecution()
	if execution == nil {
		return mcp.NewToolResultError("execution engine is not available"), nil
	}

	result := execution.ExecuteAbility(ctx, api.ExecutionRequest{
		AbilityID:     abilityID,
		UserID:        u.userID,
		Params:        params,
		TransformCode: transformCode,
	})

	encoded, err := json.Marshal(result)
	if err != nil {
		logging.Error("Server", err, "Failed to encode execution result for %s", abilityID)
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode execution result: %v", err)), nil
	}

	// The envelope reports failures itself; IsError mirrors it so MCP clients
	// surface failed executions without parsing the body.
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(encoded))},
		IsError: !result.Success,
	}, nil
}

func (u *UnbrowseServer) handleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	catalog := api.GetAbilityCatalog()
	if catalog == nil {
		return mcp.NewToolResultError("ability catalog is not available"), nil
	}
	return jsonToolResult(catalog.ListAbilities())
}

func (u *UnbrowseServer) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := requestArguments(req)

	service, ok := args["service"].(string)
	if !ok || service == "" {
		return mcp.NewToolResultError("service is required"), nil
	}

	var keywords []string
	if rawKeywords, ok := args["keywords"].([]interface{}); ok {
		for _, raw := range rawKeywords {
			if keyword, ok := raw.(string); ok {
				keywords = append(keywords, keyword)
			}
		}
	}

	catalog := api.GetAbilityCatalog()
	if catalog == nil {
		return mcp.NewToolResultError("ability catalog is not available"), nil
	}
	return jsonToolResult(catalog.SearchAbilities(service, keywords))
}

func (u *UnbrowseServer) handleCredentialStore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := requestArguments(req)

	domain, _ := args["domain"].(string)
	key, _ := args["key"].(string)
	value, _ := args["value"].(string)
	if domain == "" || key == "" || value == "" {
		return mcp.NewToolResultError("domain, key and value are required"), nil
	}

	store := api.GetCredentialStore()
	if store == nil {
		return mcp.NewToolResultError("credential store is not available"), nil
	}

	encrypted, err := u.cipher.Encrypt(value)
	if err != nil {
		logging.Error("Server", err, "Failed to encrypt credential for %s::%s", domain, key)
		return mcp.NewToolResultError("failed to encrypt credential"), nil
	}

	if err := store.StoreCredential(ctx, u.userID, domain, key, encrypted); err != nil {
		logging.Error("Server", err, "Failed to store credential for %s::%s", domain, key)
		return mcp.NewToolResultError("failed to store credential"), nil
	}

	logging.Info("Server", "Stored credential for %s::%s", domain, key)
	return mcp.NewToolResultText(fmt.Sprintf("Stored credential for %s::%s", domain, key)), nil
}

// requestArguments extracts the argument map from an MCP request.
func requestArguments(req mcp.CallToolRequest) map[string]interface{} {
	if req.Params.Arguments != nil {
		if argsMap, ok := req.Params.Arguments.(map[string]interface{}); ok {
			return argsMap
		}
	}
	return map[string]interface{}{}
}

// jsonToolResult marshals a value into a single text-content MCP result.
func jsonToolResult(value interface{}) (*mcp.CallToolResult, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(encoded)), nil
}
