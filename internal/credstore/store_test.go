package credstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/getfoundry/unbrowse-mcp-sub003/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract runs the shared behavior tests against any store
// implementation.
func storeContract(t *testing.T, store api.CredentialStoreHandler) {
	ctx := context.Background()

	t.Run("store and fetch", func(t *testing.T) {
		require.NoError(t, store.StoreCredential(ctx, "user-1", "www.example.com", "Authorization", "enc-a"))
		require.NoError(t, store.StoreCredential(ctx, "user-1", "www.example.com", "Cookie", "enc-b"))
		require.NoError(t, store.StoreCredential(ctx, "user-1", "api.other.io", "X-Api-Key", "enc-c"))
		require.NoError(t, store.StoreCredential(ctx, "user-2", "www.example.com", "Authorization", "enc-d"))

		records, err := store.GetCredentialsForDomain(ctx, "user-1", "www.example.com")
		require.NoError(t, err)
		assert.Len(t, records, 2)
		for _, rec := range records {
			assert.Equal(t, "user-1", rec.UserID)
			assert.Equal(t, "www.example.com", rec.Domain)
			assert.False(t, rec.Expired)
		}
	})

	t.Run("expiry excludes records from resolution", func(t *testing.T) {
		require.NoError(t, store.ExpireCredentials(ctx, "user-1", "www.example.com"))

		records, err := store.GetCredentialsForDomain(ctx, "user-1", "www.example.com")
		require.NoError(t, err)
		assert.Empty(t, records)

		// Other users and domains are untouched.
		records, err = store.GetCredentialsForDomain(ctx, "user-1", "api.other.io")
		require.NoError(t, err)
		assert.Len(t, records, 1)

		records, err = store.GetCredentialsForDomain(ctx, "user-2", "www.example.com")
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("re-supplying clears the expired flag", func(t *testing.T) {
		require.NoError(t, store.StoreCredential(ctx, "user-1", "www.example.com", "Authorization", "enc-new"))

		records, err := store.GetCredentialsForDomain(ctx, "user-1", "www.example.com")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "enc-new", records[0].Value)
	})
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "credentials.db"))
	require.NoError(t, err)
	defer store.Close()

	storeContract(t, store)
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}
