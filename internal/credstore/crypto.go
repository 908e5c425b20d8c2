package credstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/getfoundry/unbrowse-mcp-sub003/internal/api"
)

// Cipher encrypts and decrypts credential values with AES-256-GCM. The key is
// derived from the user secret by a single SHA-256 pass; the stored value is
// base64(nonce || ciphertext || tag) as produced by cipher.AEAD.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher derives a cipher from the user secret.
func NewCipher(userSecret string) (*Cipher, error) {
	key := sha256.Sum256([]byte(userSecret))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GCM: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals a plaintext credential value for storage.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a stored credential value. Any failure (malformed payload,
// truncated nonce, GCM tag mismatch) is reported as a DecryptionError naming
// only the credential's domain and key, never its material.
func (c *Cipher) Decrypt(encryptedValue, domain, key string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encryptedValue)
	if err != nil {
		return "", api.NewDecryptionError(domain, key)
	}
	if len(sealed) < c.aead.NonceSize() {
		return "", api.NewDecryptionError(domain, key)
	}

	nonce, ciphertext := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", api.NewDecryptionError(domain, key)
	}
	return string(plaintext), nil
}
