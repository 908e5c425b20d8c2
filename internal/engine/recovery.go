package engine

import (
	"context"
	"net/url"
	"strings"

	"github.com/getfoundry/unbrowse-mcp-sub003/internal/api"
	"github.com/getfoundry/unbrowse-mcp-sub003/pkg/logging"
)

// attemptOutcome classifies one execution attempt.
type attemptOutcome int

const (
	outcomeSuccess attemptOutcome = iota
	outcomeAuthFailure
	outcomeServerFailure
)

// classifyStatus implements the failure state machine over one attempt.
// 401–499 means "credentials are suspect" regardless of the upstream API's
// exact conventions; 5xx and faults are caller-retryable without credential
// changes.
func classifyStatus(statusCode int) attemptOutcome {
	switch {
	case statusCode >= 401 && statusCode < 500:
		return outcomeAuthFailure
	case statusCode >= 500:
		return outcomeServerFailure
	default:
		return outcomeSuccess
	}
}

// recoveryCoordinator reacts to upstream auth failures: it expires the
// credential scope the ability used and looks up alternative abilities that
// can re-authenticate.
type recoveryCoordinator struct {
	store   api.CredentialStoreHandler
	catalog api.AbilityCatalogHandler
}

// handleAuthFailure marks the ability's credential domains expired and
// returns login candidates for its service. Expiry is scoped by domain, never
// by service label, so unrelated domains sharing a service name are never
// touched. It never returns an error: a failed expiry write is logged and the
// caller still gets the classification.
func (r *recoveryCoordinator) handleAuthFailure(ctx context.Context, ability *api.Ability, userID string) []api.LoginAbility {
	for _, domain := range credentialDomains(ability) {
		if err := r.store.ExpireCredentials(ctx, userID, domain); err != nil {
			logging.Error("Engine", err, "Failed to expire credentials for domain %s", domain)
		}
	}

	candidates := r.catalog.FindLoginAbilities(ability.ServiceName)
	logging.Info("Engine", "Auth failure on ability %s: %d login candidates for service %s",
		ability.ID, len(candidates), ability.ServiceName)
	return candidates
}

// credentialDomains returns the distinct domains an ability's credentials are
// scoped to, from its dynamic header keys, in declared order. Abilities
// without dynamic headers fall back to the URL host so an auth failure still
// expires the right scope.
func credentialDomains(ability *api.Ability) []string {
	seen := make(map[string]bool)
	var domains []string
	for _, token := range ability.DynamicHeaderKeys {
		domain, _, found := strings.Cut(token, "::")
		if !found || seen[domain] {
			continue
		}
		seen[domain] = true
		domains = append(domains, domain)
	}
	if len(domains) > 0 {
		return domains
	}

	if parsed, err := url.Parse(ability.URLTemplate); err == nil && parsed.Host != "" {
		return []string{parsed.Host}
	}
	return nil
}
