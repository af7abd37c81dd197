package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// Hash algorithms for stored keys.
const (
	HashSHA256 = "sha256"
	HashPlain  = "plain"
)

// DefaultHeader is the request header carrying the API key.
const DefaultHeader = "X-API-KEY"

// APIKeyConfig configures the API key authenticator.
type APIKeyConfig struct {
	// Header is the header containing the API key.
	// Default: "X-API-KEY"
	Header string

	// Hash is the algorithm used to hash stored keys.
	// Options: "sha256" (default), "plain"
	Hash string

	// Now returns the current time for expiry checks. Default: time.Now
	Now func() time.Time
}

// KeyInfo describes a registered API key.
type KeyInfo struct {
	// ID is a unique identifier for this key.
	ID string

	// KeyHash is the stored form of the key under the configured hash.
	KeyHash string

	// Principal is the key owner.
	Principal string

	// Roles are the roles granted to this key.
	Roles []string

	// ExpiresAt is when this key expires (zero = never).
	ExpiresAt time.Time
}

// KeyStore provides lookup of registered keys.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Lookup returns (nil, nil) for an unknown key; errors are reserved for
//     store failures.
type KeyStore interface {
	Lookup(ctx context.Context, keyHash string) (*KeyInfo, error)
}

// APIKeyAuthenticator validates API keys against a KeyStore.
type APIKeyAuthenticator struct {
	config APIKeyConfig
	store  KeyStore
}

// NewAPIKeyAuthenticator creates a new API key authenticator.
func NewAPIKeyAuthenticator(config APIKeyConfig, store KeyStore) *APIKeyAuthenticator {
	if config.Header == "" {
		config.Header = DefaultHeader
	}
	if config.Hash == "" {
		config.Hash = HashSHA256
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &APIKeyAuthenticator{config: config, store: store}
}

// Header returns the header the authenticator reads.
func (a *APIKeyAuthenticator) Header() string {
	return a.config.Header
}

// Authenticate validates key and returns its owner.
//
// It returns ErrMissingKey for an empty key, ErrInvalidKey for an unknown
// one and ErrKeyExpired for an expired one. Any other error is a store
// failure.
func (a *APIKeyAuthenticator) Authenticate(ctx context.Context, key string) (*Identity, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrMissingKey
	}
	if a.store == nil {
		return nil, ErrNilStore
	}

	info, err := a.store.Lookup(ctx, a.hash(key))
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, ErrInvalidKey
	}

	id := &Identity{
		Principal: info.Principal,
		KeyID:     info.ID,
		Roles:     info.Roles,
		ExpiresAt: info.ExpiresAt,
	}
	if id.IsExpired(a.config.Now()) {
		return nil, ErrKeyExpired
	}
	return id, nil
}

func (a *APIKeyAuthenticator) hash(key string) string {
	if a.config.Hash == HashPlain {
		return key
	}
	return HashAPIKey(key)
}

// HashAPIKey hashes an API key using SHA-256 for storage.
func HashAPIKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// MemoryKeyStore is an in-memory KeyStore.
type MemoryKeyStore struct {
	mu   sync.RWMutex
	keys map[string]*KeyInfo // keyed by hash
}

// NewMemoryKeyStore creates an empty in-memory key store.
func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{keys: make(map[string]*KeyInfo)}
}

// Lookup retrieves a key by its hash.
func (s *MemoryKeyStore) Lookup(_ context.Context, keyHash string) (*KeyInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[keyHash], nil
}

// Add registers a key.
func (s *MemoryKeyStore) Add(info *KeyInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[info.KeyHash] = info
}

// Remove unregisters the key with the given hash.
func (s *MemoryKeyStore) Remove(keyHash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, keyHash)
}

// Len returns the number of registered keys.
func (s *MemoryKeyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

var _ KeyStore = (*MemoryKeyStore)(nil)
