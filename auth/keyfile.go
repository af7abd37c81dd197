package auth

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// KeyEntry is one key in a key file or in inline configuration.
// Exactly one of Key and KeyHash must be set.
type KeyEntry struct {
	User      string   `yaml:"user" mapstructure:"user"`
	Key       string   `yaml:"key,omitempty" mapstructure:"key"`
	KeyHash   string   `yaml:"key_hash,omitempty" mapstructure:"key_hash"`
	Roles     []string `yaml:"roles,omitempty" mapstructure:"roles"`
	ExpiresAt string   `yaml:"expires_at,omitempty" mapstructure:"expires_at"`
}

type keyFile struct {
	Keys []KeyEntry `yaml:"keys"`
}

// LoadAPIKeyFile reads a YAML key file:
//
//	keys:
//	  - user: alice
//	    key_hash: 2bb80d5...
//	    roles: [reader]
//	    expires_at: 2026-01-01T00:00:00Z
func LoadAPIKeyFile(path, hash string) (*MemoryKeyStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return ParseAPIKeys(data, hash)
}

// ParseAPIKeys decodes key file contents.
func ParseAPIKeys(data []byte, hash string) (*MemoryKeyStore, error) {
	var f keyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	store := NewMemoryKeyStore()
	if err := AddKeys(store, f.Keys, hash); err != nil {
		return nil, err
	}
	return store, nil
}

// AddKeys validates entries and registers them in store. Plain keys are
// hashed with hash before storage.
func AddKeys(store *MemoryKeyStore, entries []KeyEntry, hash string) error {
	for i, e := range entries {
		user := strings.TrimSpace(e.User)
		if user == "" {
			return fmt.Errorf("%w: entry %d: user is required", ErrInvalidFile, i)
		}
		if (e.Key == "") == (e.KeyHash == "") {
			return fmt.Errorf("%w: entry %d (%s): exactly one of key and key_hash is required", ErrInvalidFile, i, user)
		}

		stored := strings.ToLower(strings.TrimSpace(e.KeyHash))
		if e.Key != "" {
			stored = strings.TrimSpace(e.Key)
			if hash != HashPlain {
				stored = HashAPIKey(stored)
			}
		}

		var expires time.Time
		if e.ExpiresAt != "" {
			t, err := time.Parse(time.RFC3339, e.ExpiresAt)
			if err != nil {
				return fmt.Errorf("%w: entry %d (%s): expires_at: %v", ErrInvalidFile, i, user, err)
			}
			expires = t
		}

		store.Add(&KeyInfo{
			ID:        keyID(user, stored),
			KeyHash:   stored,
			Principal: user,
			Roles:     e.Roles,
			ExpiresAt: expires,
		})
	}
	return nil
}

func keyID(user, stored string) string {
	h := HashAPIKey(stored)
	return user + "-" + h[:8]
}
