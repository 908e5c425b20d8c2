package api

import (
	"context"
	"time"
)

// Ability describes one reverse-engineered API call: how to build the request
// and which credentials it needs. Abilities are immutable once loaded into the
// catalog; the engine only ever reads them.
type Ability struct {
	// ID is the stable identifier callers use to invoke the ability.
	ID string `yaml:"id" json:"id"`

	// ServiceName is the human-facing label of the upstream service
	// (e.g. "linkedin", "foundry"). Used for search and suggestions only;
	// credential scoping is always by domain.
	ServiceName string `yaml:"service" json:"service"`

	Description string `yaml:"description" json:"description"`

	// Method and URLTemplate describe the declarative request. URLTemplate may
	// contain {{ param }} placeholders which are expanded (and percent-encoded
	// according to their position in the URL) from the call params.
	Method      string `yaml:"method" json:"method"`
	URLTemplate string `yaml:"url" json:"url"`

	// InputSchema maps parameter names to their definitions.
	InputSchema map[string]ArgDefinition `yaml:"input_schema" json:"input_schema"`

	// StaticHeaders are fixed at authoring time. Values may contain
	// {{ param }} placeholders.
	StaticHeaders map[string]string `yaml:"static_headers" json:"-"`

	// DynamicHeaderKeys name the credentials the ability needs, as ordered
	// "domain::headerName" tokens.
	DynamicHeaderKeys []string `yaml:"dynamic_header_keys" json:"dynamic_header_keys"`

	// RequiresDynamicHeaders must be true iff DynamicHeaderKeys is non-empty.
	// Catalog validation enforces the invariant at load time.
	RequiresDynamicHeaders bool `yaml:"requires_dynamic_headers" json:"requires_dynamic_headers"`

	// DependencyOrder lists ability IDs expected to have established session
	// state before this one runs. Advisory metadata only; the engine checks
	// presence but never blocks on it.
	DependencyOrder []string `yaml:"dependency_order" json:"dependency_order"`

	// BodyTemplate optionally describes the request body for the declarative
	// path. String leaves may contain {{ param }} placeholders.
	BodyTemplate map[string]interface{} `yaml:"body_template" json:"-"`

	// SourceCode holds the procedural request-construction logic for abilities
	// the declarative template cannot express. Runs only inside the sandbox
	// and must never appear in any response.
	SourceCode string `yaml:"source_code" json:"-"`
}

// ArgDefinition describes a single ability input parameter.
type ArgDefinition struct {
	Type        string      `yaml:"type" json:"type"`
	Required    bool        `yaml:"required" json:"required"`
	Default     interface{} `yaml:"default,omitempty" json:"default,omitempty"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
}

// CredentialRecord is one stored credential for a (user, domain, key) triple.
// Value is the encrypted payload; records with Expired=true are excluded from
// resolution and must be re-supplied before reuse.
type CredentialRecord struct {
	UserID    string
	Domain    string
	Key       string
	Value     string // base64(nonce || ciphertext || GCM tag)
	Expired   bool
	UpdatedAt time.Time
}

// ExecutionRequest is the transient per-call input to the engine.
type ExecutionRequest struct {
	AbilityID string
	UserID    string
	Params    map[string]interface{}

	// TransformCode optionally holds caller-supplied post-processing logic,
	// run in a separate network-less sandbox against the parsed response body.
	TransformCode string
}

// ExecutionResult is the terminal envelope of one execution attempt. It is
// never persisted by the engine.
type ExecutionResult struct {
	ExecutionID string                 `json:"execution_id"`
	Success     bool                   `json:"success"`
	StatusCode  int                    `json:"status_code,omitempty"`
	Body        interface{}            `json:"body,omitempty"`
	Headers     map[string]string      `json:"headers,omitempty"`
	ExecutedAt  time.Time              `json:"executed_at"`
	Error       string                 `json:"error,omitempty"`

	// CredentialsExpired is set when the upstream answered with an auth
	// failure and the credential scope has been marked expired.
	CredentialsExpired bool           `json:"credentials_expired,omitempty"`
	LoginAbilities     []LoginAbility `json:"login_abilities,omitempty"`

	// Warnings carries advisory notices, e.g. unmet dependency-order entries.
	Warnings []string `json:"warnings,omitempty"`
}

// LoginAbility is a reduced ability view suggested to callers after an auth
// failure. Only id, name and description; never logic or headers.
type LoginAbility struct {
	ID          string `json:"id"`
	ServiceName string `json:"service"`
	Description string `json:"description"`
}

// AbilitySummary is the reduced ability view surfaced by list/search.
type AbilitySummary struct {
	ID                     string `json:"id"`
	ServiceName            string `json:"service"`
	Description            string `json:"description"`
	RequiresDynamicHeaders bool   `json:"requires_dynamic_headers"`
}

// AbilityCatalogHandler provides read access to the ability catalog.
type AbilityCatalogHandler interface {
	// GetAbility returns the full descriptor, or a NotFoundError.
	GetAbility(abilityID string) (*Ability, error)

	// SearchAbilities returns summaries of abilities matching the service name
	// and any of the intent keywords. Empty keywords match all abilities of
	// the service.
	SearchAbilities(serviceName string, keywords []string) []AbilitySummary

	// ListAbilities returns summaries of every ability in the catalog.
	ListAbilities() []AbilitySummary

	// FindLoginAbilities returns abilities for the service that look like
	// they perform authentication and require no dynamic headers themselves.
	FindLoginAbilities(serviceName string) []LoginAbility
}

// CredentialStoreHandler provides read/write access to stored credentials.
// Implementations must apply the Expired flag atomically per record.
type CredentialStoreHandler interface {
	// GetCredentialsForDomain returns all non-expired records for the user and
	// domain.
	GetCredentialsForDomain(ctx context.Context, userID, domain string) ([]CredentialRecord, error)

	// ExpireCredentials marks every record for the user and domain expired.
	ExpireCredentials(ctx context.Context, userID, domain string) error

	// StoreCredential upserts an encrypted value and clears the expired flag.
	StoreCredential(ctx context.Context, userID, domain, key, encryptedValue string) error
}

// ExecutionHandler is the engine's entry point.
type ExecutionHandler interface {
	ExecuteAbility(ctx context.Context, req ExecutionRequest) *ExecutionResult
}
