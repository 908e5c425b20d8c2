package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/getfoundry/unbrowse-mcp-sub003/internal/api"
	"github.com/getfoundry/unbrowse-mcp-sub003/internal/template"
	"github.com/getfoundry/unbrowse-mcp-sub003/pkg/logging"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Options configures the execution engine.
type Options struct {
	// Timeout is the wall-clock budget per execution attempt.
	Timeout time.Duration

	// MaxResponseChars bounds the serialized response body.
	MaxResponseChars int

	// MaxConcurrent bounds in-flight executions to avoid unbounded outbound
	// fan-out. Zero means DefaultMaxConcurrent.
	MaxConcurrent int64

	// HTTPClient overrides the outbound client, mainly for tests.
	HTTPClient *http.Client
}

// DefaultTimeout bounds one execution attempt.
const DefaultTimeout = 30 * time.Second

// DefaultMaxConcurrent bounds parallel executions.
const DefaultMaxConcurrent = 32

// Engine is the ability execution pipeline: credential resolution and header
// composition, sandboxed execution, failure recovery, optional transformation
// and response shaping. Each execution request is independent; the engine
// holds no cross-request mutable state beyond the shared stores it is given.
// There is no retry loop here: retries are caller policy, informed by the
// failure classification on the result.
type Engine struct {
	catalog   api.AbilityCatalogHandler
	store     api.CredentialStoreHandler
	decrypter Decrypter

	sandbox     *Sandbox
	transformer *Transformer
	templates   *template.Engine
	recovery    *recoveryCoordinator

	client  *http.Client
	limiter *semaphore.Weighted
	opts    Options
}

// New creates an engine over the given catalog, credential store and
// decrypter.
func New(catalog api.AbilityCatalogHandler, store api.CredentialStoreHandler, decrypter Decrypter, opts Options) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxResponseChars <= 0 {
		opts.MaxResponseChars = DefaultMaxResponseChars
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &Engine{
		catalog:     catalog,
		store:       store,
		decrypter:   decrypter,
		sandbox:     NewSandbox(),
		transformer: NewTransformer(),
		templates:   template.New(),
		recovery:    &recoveryCoordinator{store: store, catalog: catalog},
		client:      client,
		limiter:     semaphore.NewWeighted(opts.MaxConcurrent),
		opts:        opts,
	}
}

// ExecuteAbility runs one ability end to end. It always returns a result with
// ExecutedAt set, even on failure, so callers can keep idempotent retry
// bookkeeping.
func (e *Engine) ExecuteAbility(ctx context.Context, req api.ExecutionRequest) *api.ExecutionResult {
	executionID := uuid.NewString()
	result := &api.ExecutionResult{ExecutionID: executionID}
	defer func() { result.ExecutedAt = time.Now().UTC() }()

	logging.Debug("Engine", "[%s] Executing ability %s for user %s", executionID, req.AbilityID, req.UserID)

	ability, err := e.catalog.GetAbility(req.AbilityID)
	if err != nil {
		return failWith(result, err)
	}

	if req.Params == nil {
		req.Params = make(map[string]interface{})
	}
	if err := e.validateParams(ability.InputSchema, req.Params); err != nil {
		return failWith(result, err)
	}

	result.Warnings = e.dependencyWarnings(ability)

	// Resolve credentials and compose the static/dynamic layers. Both happen
	// before the sandbox sees anything; execution never proceeds partially
	// authenticated.
	var dynamicHeaders map[string]string
	if ability.RequiresDynamicHeaders {
		resolution, err := ResolveCredentials(ctx, e.store, e.decrypter, req.UserID, ability.DynamicHeaderKeys)
		if err != nil {
			return failWith(result, err)
		}
		if len(resolution.Unresolved) > 0 {
			return failWith(result, api.NewMissingCredentialsError(resolution.Unresolved))
		}
		dynamicHeaders = dynamicHeaderNames(resolution.Resolved)
	}

	staticHeaders, err := e.expandStaticHeaders(ability.StaticHeaders, req.Params)
	if err != nil {
		return failWith(result, err)
	}

	if err := e.limiter.Acquire(ctx, 1); err != nil {
		return failWith(result, api.NewExecutionTimeoutError(err.Error()))
	}
	defer e.limiter.Release(1)

	execCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	primitive := newCallPrimitive(e.client, staticHeaders, dynamicHeaders)
	upstream, err := e.sandbox.Execute(execCtx, ability, req.Params, primitive)
	if err != nil {
		// Sandbox fault or timeout: no credential state change.
		return failWith(result, err)
	}

	result.StatusCode = upstream.StatusCode
	result.Headers = upstream.Headers

	switch classifyStatus(upstream.StatusCode) {
	case outcomeAuthFailure:
		result.Success = false
		result.Error = fmt.Sprintf("upstream authentication failure (status %d)", upstream.StatusCode)
		result.CredentialsExpired = true
		result.LoginAbilities = e.recovery.handleAuthFailure(ctx, ability, req.UserID)
		return result

	case outcomeServerFailure:
		result.Success = false
		result.Error = fmt.Sprintf("upstream server failure (status %d)", upstream.StatusCode)
		result.Body = shapeBody(upstream.Body, e.opts.MaxResponseChars)
		return result
	}

	body := upstream.Body
	if req.TransformCode != "" {
		body = e.transformer.Apply(execCtx, req.TransformCode, body)
	}

	result.Success = true
	result.Body = shapeBody(body, e.opts.MaxResponseChars)
	return result
}

// validateParams checks params against the ability's input schema, applying
// defaults for absent optional parameters. Missing required parameters are
// named in the error; nothing reaches the network first.
func (e *Engine) validateParams(schema map[string]api.ArgDefinition, params map[string]interface{}) error {
	for name, def := range schema {
		value, exists := params[name]

		if !exists {
			if def.Required {
				return api.NewValidationError(name, "required field is missing")
			}
			if def.Default != nil {
				params[name] = def.Default
			}
			continue
		}

		if !validateType(value, def.Type) {
			return api.NewValidationError(name, fmt.Sprintf("wrong type, expected %s", def.Type))
		}
	}
	return nil
}

// validateType performs basic type validation.
func validateType(value interface{}, expectedType string) bool {
	switch expectedType {
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		switch value.(type) {
		case int, int32, int64, float32, float64:
			return true
		default:
			return false
		}
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]interface{})
		return ok
	case "object":
		_, ok := value.(map[string]interface{})
		return ok
	default:
		// Unknown or empty type accepts anything.
		return true
	}
}

// expandStaticHeaders expands template placeholders in static header values.
func (e *Engine) expandStaticHeaders(staticHeaders map[string]string, params map[string]interface{}) (map[string]string, error) {
	if len(staticHeaders) == 0 {
		return nil, nil
	}
	expanded := make(map[string]string, len(staticHeaders))
	for name, value := range staticHeaders {
		replaced, err := e.templates.ReplaceString(value, params, template.NoEscape)
		if err != nil {
			return nil, api.NewValidationError(name, err.Error())
		}
		expanded[name] = replaced
	}
	return expanded, nil
}

// dependencyWarnings reports declared dependency-order abilities that are
// missing from the catalog. Advisory only; execution is never blocked on it.
func (e *Engine) dependencyWarnings(ability *api.Ability) []string {
	var warnings []string
	for _, depID := range ability.DependencyOrder {
		if _, err := e.catalog.GetAbility(depID); err != nil {
			warnings = append(warnings, fmt.Sprintf("dependency ability %s is not in the catalog", depID))
		}
	}
	return warnings
}

// failWith finalizes a failed result from a taxonomy error. Auth-failure
// classification never goes through here; it is a completed attempt, not an
// error.
func failWith(result *api.ExecutionResult, err error) *api.ExecutionResult {
	result.Success = false
	result.Error = err.Error()

	var missing *api.MissingCredentialsError
	if errors.As(err, &missing) {
		// The result names the unresolved tokens but the credentials stay
		// un-expired: they were never tried.
		logging.Info("Engine", "Execution blocked on missing credentials: %v", missing.Tokens)
	}
	return result
}
