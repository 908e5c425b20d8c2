package engine

import (
	"context"
	"testing"

	"github.com/getfoundry/unbrowse-mcp-sub003/internal/api"
	"github.com/getfoundry/unbrowse-mcp-sub003/internal/credstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreWithCredentials(t *testing.T, cipher *credstore.Cipher, userID string, creds map[string]string) *credstore.MemoryStore {
	t.Helper()
	store := credstore.NewMemoryStore()
	ctx := context.Background()

	for token, plaintext := range creds {
		domain, key, found := cutToken(token)
		require.True(t, found, "token %q", token)

		encrypted, err := cipher.Encrypt(plaintext)
		require.NoError(t, err)
		require.NoError(t, store.StoreCredential(ctx, userID, domain, key, encrypted))
	}
	return store
}

func cutToken(token string) (string, string, bool) {
	for i := 0; i+1 < len(token); i++ {
		if token[i] == ':' && token[i+1] == ':' {
			return token[:i], token[i+2:], true
		}
	}
	return "", "", false
}

func TestResolveCredentials(t *testing.T) {
	cipher, err := credstore.NewCipher("secret")
	require.NoError(t, err)

	store := newStoreWithCredentials(t, cipher, "user-1", map[string]string{
		"www.example.com::Authorization": "Bearer tok",
		"www.example.com::Cookie":        "session=abc",
		"api.other.io::X-Api-Key":        "key-123",
	})

	tokens := []string{
		"www.example.com::Authorization",
		"www.example.com::Cookie",
		"api.other.io::X-Api-Key",
	}
	resolution, err := ResolveCredentials(context.Background(), store, cipher, "user-1", tokens)
	require.NoError(t, err)

	assert.Empty(t, resolution.Unresolved)
	assert.Equal(t, "Bearer tok", resolution.Resolved["www.example.com::Authorization"])
	assert.Equal(t, "session=abc", resolution.Resolved["www.example.com::Cookie"])
	assert.Equal(t, "key-123", resolution.Resolved["api.other.io::X-Api-Key"])
}

func TestResolveCredentialsReportsUnresolved(t *testing.T) {
	cipher, err := credstore.NewCipher("secret")
	require.NoError(t, err)

	store := newStoreWithCredentials(t, cipher, "user-1", map[string]string{
		"www.example.com::Authorization": "Bearer tok",
	})

	tokens := []string{
		"www.example.com::Authorization",
		"www.example.com::Cookie",
		"api.other.io::X-Api-Key",
	}
	resolution, err := ResolveCredentials(context.Background(), store, cipher, "user-1", tokens)
	require.NoError(t, err)

	assert.Equal(t, []string{"www.example.com::Cookie", "api.other.io::X-Api-Key"}, resolution.Unresolved)
	assert.Len(t, resolution.Resolved, 1)
}

func TestResolveCredentialsSkipsExpired(t *testing.T) {
	cipher, err := credstore.NewCipher("secret")
	require.NoError(t, err)

	store := newStoreWithCredentials(t, cipher, "user-1", map[string]string{
		"www.example.com::Authorization": "Bearer tok",
	})
	require.NoError(t, store.ExpireCredentials(context.Background(), "user-1", "www.example.com"))

	resolution, err := ResolveCredentials(context.Background(), store, cipher, "user-1",
		[]string{"www.example.com::Authorization"})
	require.NoError(t, err)

	assert.Equal(t, []string{"www.example.com::Authorization"}, resolution.Unresolved)
}

func TestResolveCredentialsDecryptionFailure(t *testing.T) {
	cipher, err := credstore.NewCipher("right-secret")
	require.NoError(t, err)
	store := newStoreWithCredentials(t, cipher, "user-1", map[string]string{
		"www.example.com::Authorization": "Bearer tok",
	})

	wrongCipher, err := credstore.NewCipher("wrong-secret")
	require.NoError(t, err)

	_, err = ResolveCredentials(context.Background(), store, wrongCipher, "user-1",
		[]string{"www.example.com::Authorization"})
	require.Error(t, err)

	// Decryption failure is distinct from "not found".
	assert.True(t, api.IsDecryption(err))
}

func TestResolveCredentialsNoTokens(t *testing.T) {
	resolution, err := ResolveCredentials(context.Background(), nil, nil, "user-1", nil)
	require.NoError(t, err)
	assert.Empty(t, resolution.Resolved)
	assert.Empty(t, resolution.Unresolved)
}
