package credstore

import (
	"testing"

	"github.com/getfoundry/unbrowse-mcp-sub003/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	cipher, err := NewCipher("user-secret")
	require.NoError(t, err)

	encrypted, err := cipher.Encrypt("Bearer abc123")
	require.NoError(t, err)
	assert.NotContains(t, encrypted, "abc123")

	plaintext, err := cipher.Decrypt(encrypted, "www.example.com", "Authorization")
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", plaintext)
}

func TestDecryptWithWrongSecret(t *testing.T) {
	cipher, err := NewCipher("right-secret")
	require.NoError(t, err)
	encrypted, err := cipher.Encrypt("token-value")
	require.NoError(t, err)

	wrongCipher, err := NewCipher("wrong-secret")
	require.NoError(t, err)

	_, err = wrongCipher.Decrypt(encrypted, "www.example.com", "Authorization")
	require.Error(t, err)
	assert.True(t, api.IsDecryption(err))

	// The error names the credential, never the material.
	assert.NotContains(t, err.Error(), "token-value")
	assert.Contains(t, err.Error(), "www.example.com::Authorization")
}

func TestDecryptMalformedPayloads(t *testing.T) {
	cipher, err := NewCipher("secret")
	require.NoError(t, err)

	tests := []struct {
		name  string
		value string
	}{
		{"not base64", "!!not-base64!!"},
		{"too short for nonce", "YWJj"}, // "abc"
		{"garbage ciphertext", "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cipher.Decrypt(tt.value, "d.example.com", "X-Token")
			require.Error(t, err)
			assert.True(t, api.IsDecryption(err))
		})
	}
}

func TestEncryptProducesFreshNonces(t *testing.T) {
	cipher, err := NewCipher("secret")
	require.NoError(t, err)

	first, err := cipher.Encrypt("same plaintext")
	require.NoError(t, err)
	second, err := cipher.Encrypt("same plaintext")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
