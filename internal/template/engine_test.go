package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceString(t *testing.T) {
	engine := New()

	params := map[string]interface{}{
		"name":  "alice",
		"count": float64(3),
		"flag":  true,
	}

	t.Run("simple substitution", func(t *testing.T) {
		result, err := engine.ReplaceString("hello {{ name }}", params, NoEscape)
		require.NoError(t, err)
		assert.Equal(t, "hello alice", result)
	})

	t.Run("no spaces", func(t *testing.T) {
		result, err := engine.ReplaceString("hello {{name}}", params, NoEscape)
		require.NoError(t, err)
		assert.Equal(t, "hello alice", result)
	})

	t.Run("number and bool stringification", func(t *testing.T) {
		result, err := engine.ReplaceString("{{ count }}-{{ flag }}", params, NoEscape)
		require.NoError(t, err)
		assert.Equal(t, "3-true", result)
	})

	t.Run("missing variable named in error", func(t *testing.T) {
		_, err := engine.ReplaceString("{{ name }} {{ missing }}", params, NoEscape)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing")
		assert.NotContains(t, err.Error(), "name,")
	})
}

func TestReplaceNested(t *testing.T) {
	engine := New()

	value := map[string]interface{}{
		"query": "{{ term }}",
		"filters": []interface{}{
			"{{ term }}",
			map[string]interface{}{"limit": "{{ limit }}"},
		},
		"static": 42,
	}

	result, err := engine.Replace(value, map[string]interface{}{
		"term":  "golang",
		"limit": float64(10),
	})
	require.NoError(t, err)

	m := result.(map[string]interface{})
	assert.Equal(t, "golang", m["query"])
	assert.Equal(t, 42, m["static"])

	filters := m["filters"].([]interface{})
	assert.Equal(t, "golang", filters[0])
	assert.Equal(t, "10", filters[1].(map[string]interface{})["limit"])
}

func TestVariables(t *testing.T) {
	engine := New()

	vars := engine.Variables(map[string]interface{}{
		"url":  "https://example.com/{{ id }}",
		"body": []interface{}{"{{ id }}", "{{ token }}"},
	})

	assert.ElementsMatch(t, []string{"id", "token"}, vars)
}

func TestExpandURL(t *testing.T) {
	engine := New()

	t.Run("query values are query escaped", func(t *testing.T) {
		result, err := engine.ExpandURL(
			"https://api.example.com/rest/v1/voices?token_symbol=eq.{{ token_symbol }}&limit=5",
			map[string]interface{}{"token_symbol": "$fdry"},
		)
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/rest/v1/voices?token_symbol=eq.%24fdry&limit=5", result)
	})

	t.Run("path values are path escaped", func(t *testing.T) {
		result, err := engine.ExpandURL(
			"https://api.example.com/users/{{ user }}/posts",
			map[string]interface{}{"user": "a/b c"},
		)
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/users/a%2Fb%20c/posts", result)
	})

	t.Run("no query component", func(t *testing.T) {
		result, err := engine.ExpandURL(
			"https://api.example.com/items/{{ id }}",
			map[string]interface{}{"id": "42"},
		)
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/items/42", result)
	})

	t.Run("missing url variable", func(t *testing.T) {
		_, err := engine.ExpandURL("https://api.example.com/{{ id }}", map[string]interface{}{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "id")
	})
}
