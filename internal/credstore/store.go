package credstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/getfoundry/unbrowse-mcp-sub003/internal/api"
	"github.com/getfoundry/unbrowse-mcp-sub003/pkg/logging"

	_ "modernc.org/sqlite"
)

// Store persists encrypted credential records in SQLite, one row per
// (user, domain, key). The expired flag is flipped by single UPDATE
// statements, so concurrent auth-failure detections cannot race each other
// into an inconsistent record.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the credential database at the given path.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create credential store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Info("CredStore", "Opened credential store at %s", path)
	return store, nil
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS credentials (
		user_id    TEXT NOT NULL,
		domain     TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		expired    INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, domain, key)
	);
	CREATE INDEX IF NOT EXISTS idx_credentials_user_domain ON credentials(user_id, domain);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize credential schema: %w", err)
	}
	return nil
}

// GetCredentialsForDomain returns all non-expired records for the user and
// domain.
func (s *Store) GetCredentialsForDomain(ctx context.Context, userID, domain string) ([]api.CredentialRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, domain, key, value, expired, updated_at
		 FROM credentials
		 WHERE user_id = ? AND domain = ? AND expired = 0`,
		userID, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials for %s: %w", domain, err)
	}
	defer rows.Close()

	var records []api.CredentialRecord
	for rows.Next() {
		var rec api.CredentialRecord
		var expired int
		if err := rows.Scan(&rec.UserID, &rec.Domain, &rec.Key, &rec.Value, &expired, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan credential row: %w", err)
		}
		rec.Expired = expired != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ExpireCredentials marks every record for the user and domain expired.
func (s *Store) ExpireCredentials(ctx context.Context, userID, domain string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE credentials SET expired = 1, updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ? AND domain = ?`,
		userID, domain)
	if err != nil {
		return fmt.Errorf("failed to expire credentials for %s: %w", domain, err)
	}

	affected, _ := result.RowsAffected()
	logging.Info("CredStore", "Expired %d credentials for domain %s", affected, domain)
	return nil
}

// StoreCredential upserts an encrypted value and clears the expired flag.
func (s *Store) StoreCredential(ctx context.Context, userID, domain, key, encryptedValue string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO credentials (user_id, domain, key, value, expired, updated_at)
		 VALUES (?, ?, ?, ?, 0, CURRENT_TIMESTAMP)
		 ON CONFLICT(user_id, domain, key) DO UPDATE SET
		   value = excluded.value, expired = 0, updated_at = CURRENT_TIMESTAMP`,
		userID, domain, key, encryptedValue)
	if err != nil {
		return fmt.Errorf("failed to store credential %s::%s: %w", domain, key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
