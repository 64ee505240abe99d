package token

import "errors"

// Public, stable errors for callers.
var (
	ErrSecretMissing  = errors.New("token secret missing")
	ErrSecretTooShort = errors.New("token secret too short")
	ErrIssuerMissing  = errors.New("token issuer missing")
	ErrInvalidTTL     = errors.New("token ttl must be positive")
)
