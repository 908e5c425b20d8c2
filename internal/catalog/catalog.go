package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/getfoundry/unbrowse-mcp-sub003/internal/api"
	"github.com/getfoundry/unbrowse-mcp-sub003/pkg/logging"
	pkgstrings "github.com/getfoundry/unbrowse-mcp-sub003/pkg/strings"

	"gopkg.in/yaml.v3"
)

// loginIntentKeywords identify abilities that perform authentication. Used by
// failure recovery to suggest re-login candidates after an upstream auth
// failure.
var loginIntentKeywords = []string{"login", "auth", "signin", "sign-in", "token", "session"}

// Catalog is a file-backed ability catalog. Abilities are loaded from YAML
// files in a directory and indexed by ID. The catalog is read-only to the
// engine; files are the single source of truth and edits are picked up by the
// directory watcher.
type Catalog struct {
	mu        sync.RWMutex
	dir       string
	abilities map[string]*api.Ability
}

// New creates a catalog rooted at dir and performs the initial load.
func New(dir string) (*Catalog, error) {
	c := &Catalog{
		dir:       dir,
		abilities: make(map[string]*api.Ability),
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads every ability file in the catalog directory. Invalid files
// are skipped with a warning so one broken definition cannot take down the
// rest of the catalog.
func (c *Catalog) Reload() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("failed to read abilities directory %s: %w", c.dir, err)
	}

	loaded := make(map[string]*api.Ability)
	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) {
			continue
		}

		path := filepath.Join(c.dir, entry.Name())
		ability, err := loadAbilityFile(path)
		if err != nil {
			logging.Warn("Catalog", "Skipping ability file %s: %v", path, err)
			continue
		}

		if _, exists := loaded[ability.ID]; exists {
			logging.Warn("Catalog", "Duplicate ability id %s in %s, keeping first definition", ability.ID, path)
			continue
		}
		loaded[ability.ID] = ability
	}

	c.mu.Lock()
	c.abilities = loaded
	c.mu.Unlock()

	logging.Info("Catalog", "Loaded %d abilities from %s", len(loaded), c.dir)
	return nil
}

// GetAbility returns the full descriptor for an ability ID.
func (c *Catalog) GetAbility(abilityID string) (*api.Ability, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ability, ok := c.abilities[abilityID]
	if !ok {
		return nil, api.NewAbilityNotFoundError(abilityID)
	}
	return ability, nil
}

// ListAbilities returns summaries of every ability, sorted by ID.
func (c *Catalog) ListAbilities() []api.AbilitySummary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	summaries := make([]api.AbilitySummary, 0, len(c.abilities))
	for _, ability := range c.abilities {
		summaries = append(summaries, summarize(ability))
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries
}

// SearchAbilities returns summaries of abilities for the given service whose
// ID or description matches any of the keywords. Matching is case-insensitive
// substring matching; empty keywords match every ability of the service.
func (c *Catalog) SearchAbilities(serviceName string, keywords []string) []api.AbilitySummary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var summaries []api.AbilitySummary
	for _, ability := range c.abilities {
		if serviceName != "" && !strings.EqualFold(ability.ServiceName, serviceName) {
			continue
		}
		if !matchesAnyKeyword(ability, keywords) {
			continue
		}
		summaries = append(summaries, summarize(ability))
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries
}

// FindLoginAbilities returns abilities for the service that look like they
// perform authentication and do not themselves require dynamic headers.
// The result is reduced to id/name/description only.
func (c *Catalog) FindLoginAbilities(serviceName string) []api.LoginAbility {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var candidates []api.LoginAbility
	for _, ability := range c.abilities {
		if !strings.EqualFold(ability.ServiceName, serviceName) {
			continue
		}
		if ability.RequiresDynamicHeaders {
			continue
		}
		if !matchesAnyKeyword(ability, loginIntentKeywords) {
			continue
		}
		candidates = append(candidates, api.LoginAbility{
			ID:          ability.ID,
			ServiceName: ability.ServiceName,
			Description: ability.Description,
		})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
	return candidates
}

func matchesAnyKeyword(ability *api.Ability, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	haystack := strings.ToLower(ability.ID + " " + ability.Description)
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

func summarize(ability *api.Ability) api.AbilitySummary {
	return api.AbilitySummary{
		ID:                     ability.ID,
		ServiceName:            ability.ServiceName,
		Description:            pkgstrings.TruncateDescription(ability.Description, pkgstrings.DefaultDescriptionMaxLen),
		RequiresDynamicHeaders: ability.RequiresDynamicHeaders,
	}
}

func isYAMLFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

func loadAbilityFile(path string) (*api.Ability, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ability api.Ability
	if err := yaml.Unmarshal(data, &ability); err != nil {
		return nil, fmt.Errorf("malformed ability definition: %w", err)
	}
	if err := validateAbility(&ability); err != nil {
		return nil, err
	}
	return &ability, nil
}

// validateAbility enforces the structural invariants an ability must satisfy
// before it is admitted to the catalog.
func validateAbility(ability *api.Ability) error {
	if ability.ID == "" {
		return fmt.Errorf("ability is missing an id")
	}
	if ability.ServiceName == "" {
		return fmt.Errorf("ability %s is missing a service name", ability.ID)
	}
	if ability.SourceCode == "" && ability.URLTemplate == "" {
		return fmt.Errorf("ability %s has neither a url template nor source code", ability.ID)
	}
	if ability.RequiresDynamicHeaders != (len(ability.DynamicHeaderKeys) > 0) {
		return fmt.Errorf("ability %s: requires_dynamic_headers must be true exactly when dynamic_header_keys is non-empty", ability.ID)
	}
	for _, token := range ability.DynamicHeaderKeys {
		domain, header, found := strings.Cut(token, "::")
		if !found || domain == "" || header == "" {
			return fmt.Errorf("ability %s: malformed dynamic header key %q, want domain::header", ability.ID, token)
		}
	}
	if ability.Method == "" {
		ability.Method = "GET"
	}
	return nil
}
