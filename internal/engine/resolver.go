package engine

import (
	"context"
	"strings"

	"github.com/getfoundry/unbrowse-mcp-sub003/internal/api"
	"github.com/getfoundry/unbrowse-mcp-sub003/pkg/logging"
)

// Decrypter opens stored credential values. Implemented by credstore.Cipher.
type Decrypter interface {
	Decrypt(encryptedValue, domain, key string) (string, error)
}

// Resolution is the outcome of resolving an ability's dynamic header keys.
type Resolution struct {
	// Resolved maps full "domain::header" tokens to decrypted plaintext.
	Resolved map[string]string

	// Unresolved lists tokens with no stored, non-expired credential, in the
	// ability's declared order.
	Unresolved []string
}

// ResolveCredentials resolves dynamic header tokens against the credential
// store. It partitions tokens by domain, fetches each domain's non-expired
// records once, and decrypts the values needed. The resolver is read-only:
// expiry is only ever written by failure recovery.
//
// A decryption failure aborts resolution with a DecryptionError; a merely
// absent credential lands the token in Unresolved. The caller must fail the
// whole execution when Unresolved is non-empty.
func ResolveCredentials(ctx context.Context, store api.CredentialStoreHandler, decrypter Decrypter, userID string, tokens []string) (*Resolution, error) {
	resolution := &Resolution{Resolved: make(map[string]string)}
	if len(tokens) == 0 {
		return resolution, nil
	}

	// Partition on the first "::" so header names may themselves contain
	// colons.
	domains := make(map[string][]string)
	var domainOrder []string
	for _, token := range tokens {
		domain, _, found := strings.Cut(token, "::")
		if !found {
			resolution.Unresolved = append(resolution.Unresolved, token)
			continue
		}
		if _, seen := domains[domain]; !seen {
			domainOrder = append(domainOrder, domain)
		}
		domains[domain] = append(domains[domain], token)
	}

	for _, domain := range domainOrder {
		records, err := store.GetCredentialsForDomain(ctx, userID, domain)
		if err != nil {
			return nil, err
		}

		byKey := make(map[string]api.CredentialRecord, len(records))
		for _, rec := range records {
			byKey[rec.Key] = rec
		}

		for _, token := range domains[domain] {
			_, header, _ := strings.Cut(token, "::")
			rec, ok := byKey[header]
			if !ok {
				resolution.Unresolved = append(resolution.Unresolved, token)
				continue
			}

			plaintext, err := decrypter.Decrypt(rec.Value, domain, header)
			if err != nil {
				return nil, err
			}
			resolution.Resolved[token] = plaintext
		}
	}

	if len(resolution.Unresolved) > 0 {
		logging.Debug("Engine", "Credential resolution left %d of %d tokens unresolved", len(resolution.Unresolved), len(tokens))
	}
	return resolution, nil
}
