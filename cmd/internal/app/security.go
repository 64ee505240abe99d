package app

import (
	"errors"
	"fmt"

	"authsvc/cmd/security/token"
)

// minStrongSecretBytes is the HMAC-SHA256 key floor enforced under
// RequireStrongSecret. Bytes, not runes: the key is used as raw bytes.
const minStrongSecretBytes = 32

// ValidateSecurityConfig enforces the signing-secret policy at startup.
// With RequireStrongSecret the process refuses to start on a missing or short
// secret (DevJWTSecret is deliberately below the floor); without it the
// development secret only warns.
func ValidateSecurityConfig(cfg Config, log Logger) error {
	tcfg := token.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, TTL: cfg.JWTTTL()}

	if !cfg.RequireStrongSecret {
		if err := tcfg.Validate(0); err != nil {
			return fmt.Errorf("security policy: %w", err)
		}
		if cfg.JWTSecret == DevJWTSecret && log != nil {
			log.Warn("security.dev_secret", "hint", "set AUTHSVC_JWT_SECRET before exposing this service")
		}
		return nil
	}

	if err := tcfg.Validate(minStrongSecretBytes); err != nil {
		switch {
		case errors.Is(err, token.ErrSecretMissing):
			return errors.New("security policy: AUTHSVC_REQUIRE_STRONG_SECRET=true but AUTHSVC_JWT_SECRET is missing")
		case errors.Is(err, token.ErrSecretTooShort):
			return fmt.Errorf("security policy: AUTHSVC_JWT_SECRET is too short (min %d bytes)", minStrongSecretBytes)
		default:
			return fmt.Errorf("security policy: %w", err)
		}
	}
	return nil
}
