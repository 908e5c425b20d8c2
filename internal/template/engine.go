package template

import (
	"fmt"
	"regexp"
	"strings"
)

// Engine handles parameter templating for ability requests.
type Engine struct {
	// Pattern to match template variables like {{ variableName }}
	templatePattern *regexp.Regexp
}

// New creates a new template engine.
func New() *Engine {
	return &Engine{
		templatePattern: regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`),
	}
}

// EscapeFunc transforms a substituted value before insertion. The identity
// function is used when no escaping is needed.
type EscapeFunc func(string) string

// NoEscape returns the value unchanged.
func NoEscape(s string) string { return s }

// Replace replaces all template variables in a value with actual values from
// the params map. Strings are substituted in place; maps and slices are walked
// recursively. Non-templatable types are returned as-is.
func (e *Engine) Replace(value interface{}, params map[string]interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		return e.ReplaceString(v, params, NoEscape)
	case map[string]interface{}:
		return e.replaceMap(v, params)
	case []interface{}:
		return e.replaceSlice(v, params)
	default:
		return value, nil
	}
}

// ReplaceString replaces template variables in a string, passing each
// substituted value through escape before insertion. All referenced variables
// must be present in params; missing ones are reported by name.
func (e *Engine) ReplaceString(template string, params map[string]interface{}, escape EscapeFunc) (string, error) {
	var missingVars []string

	result := e.templatePattern.ReplaceAllStringFunc(template, func(match string) string {
		sub := e.templatePattern.FindStringSubmatch(match)
		varName := sub[1]

		replacement, exists := params[varName]
		if !exists {
			missingVars = append(missingVars, varName)
			return match
		}
		return escape(stringify(replacement))
	})

	if len(missingVars) > 0 {
		return "", fmt.Errorf("missing template variables: %s", strings.Join(missingVars, ", "))
	}
	return result, nil
}

// Variables extracts all template variable names referenced in a value.
func (e *Engine) Variables(value interface{}) []string {
	seen := make(map[string]bool)
	e.collectVariables(value, seen)

	result := make([]string, 0, len(seen))
	for varName := range seen {
		result = append(result, varName)
	}
	return result
}

func (e *Engine) collectVariables(value interface{}, seen map[string]bool) {
	switch v := value.(type) {
	case string:
		for _, match := range e.templatePattern.FindAllStringSubmatch(v, -1) {
			seen[match[1]] = true
		}
	case map[string]interface{}:
		for _, val := range v {
			e.collectVariables(val, seen)
		}
	case map[string]string:
		for _, val := range v {
			e.collectVariables(val, seen)
		}
	case []interface{}:
		for _, val := range v {
			e.collectVariables(val, seen)
		}
	}
}

func (e *Engine) replaceMap(m map[string]interface{}, params map[string]interface{}) (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(m))
	for key, value := range m {
		replaced, err := e.Replace(value, params)
		if err != nil {
			return nil, fmt.Errorf("error in key '%s': %w", key, err)
		}
		result[key] = replaced
	}
	return result, nil
}

func (e *Engine) replaceSlice(s []interface{}, params map[string]interface{}) ([]interface{}, error) {
	result := make([]interface{}, len(s))
	for i, value := range s {
		replaced, err := e.Replace(value, params)
		if err != nil {
			return nil, fmt.Errorf("error at index %d: %w", i, err)
		}
		result[i] = replaced
	}
	return result, nil
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case int, int32, int64:
		return fmt.Sprintf("%d", v)
	case float32:
		return trimFloat(fmt.Sprintf("%f", v))
	case float64:
		return trimFloat(fmt.Sprintf("%f", v))
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// trimFloat drops a trailing all-zero fraction so integral JSON numbers
// (which arrive as float64) substitute cleanly into URLs.
func trimFloat(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
