package auth

import (
	"slices"
	"time"
)

// Identity is the owner of an accepted API key.
type Identity struct {
	// Principal is the key owner (the user name in the key file).
	Principal string

	// KeyID identifies the key that was presented.
	KeyID string

	// Roles granted to the key.
	Roles []string

	// ExpiresAt is when the key expires (zero = never).
	ExpiresAt time.Time
}

// HasRole checks if the identity has a specific role.
func (id *Identity) HasRole(role string) bool {
	return slices.Contains(id.Roles, role)
}

// IsExpired checks if the identity has expired at now.
func (id *Identity) IsExpired(now time.Time) bool {
	if id.ExpiresAt.IsZero() {
		return false
	}
	return now.After(id.ExpiresAt)
}
