package credstore

import (
	"context"
	"sync"
	"time"

	"github.com/getfoundry/unbrowse-mcp-sub003/internal/api"
)

// MemoryStore is an in-memory credential store with the same contract as the
// SQLite store. Used in tests and when no database path is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*api.CredentialRecord // keyed by userID|domain|key
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*api.CredentialRecord)}
}

func recordKey(userID, domain, key string) string {
	return userID + "|" + domain + "|" + key
}

// GetCredentialsForDomain returns all non-expired records for the user and
// domain.
func (m *MemoryStore) GetCredentialsForDomain(ctx context.Context, userID, domain string) ([]api.CredentialRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var records []api.CredentialRecord
	for _, rec := range m.records {
		if rec.UserID == userID && rec.Domain == domain && !rec.Expired {
			records = append(records, *rec)
		}
	}
	return records, nil
}

// ExpireCredentials marks every record for the user and domain expired.
func (m *MemoryStore) ExpireCredentials(ctx context.Context, userID, domain string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range m.records {
		if rec.UserID == userID && rec.Domain == domain {
			rec.Expired = true
			rec.UpdatedAt = time.Now()
		}
	}
	return nil
}

// StoreCredential upserts an encrypted value and clears the expired flag.
func (m *MemoryStore) StoreCredential(ctx context.Context, userID, domain, key, encryptedValue string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[recordKey(userID, domain, key)] = &api.CredentialRecord{
		UserID:    userID,
		Domain:    domain,
		Key:       key,
		Value:     encryptedValue,
		Expired:   false,
		UpdatedAt: time.Now(),
	}
	return nil
}
