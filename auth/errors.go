package auth

import "errors"

// Sentinel errors for API key authentication.
var (
	ErrMissingKey  = errors.New("auth: missing API key")
	ErrInvalidKey  = errors.New("auth: invalid API key")
	ErrKeyExpired  = errors.New("auth: API key expired")
	ErrInvalidFile = errors.New("auth: invalid key file")
	ErrNilStore    = errors.New("auth: key store is nil")
)
