package token

import (
	"fmt"
	"strings"
	"time"

	"authsvc/cmd/identity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config is the signing configuration. TTL is applied at issue time.
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Validate enforces the startup policy: secret present (and at least
// minSecretBytes long when minSecretBytes > 0), issuer present, TTL positive.
// Bytes are counted, not runes, since the secret is used as raw key material.
func (c Config) Validate(minSecretBytes int) error {
	secret := strings.TrimSpace(c.Secret)
	if secret == "" {
		return ErrSecretMissing
	}
	if minSecretBytes > 0 && len(secret) < minSecretBytes {
		return ErrSecretTooShort
	}
	if strings.TrimSpace(c.Issuer) == "" {
		return ErrIssuerMissing
	}
	if c.TTL <= 0 {
		return ErrInvalidTTL
	}
	return nil
}

// Issued is a freshly signed token.
type Issued struct {
	Token     string
	ExpiresAt time.Time
}

// Expires returns the expiry as epoch seconds.
func (i Issued) Expires() int64 { return i.ExpiresAt.Unix() }

// Manager signs and verifies HS256 tokens. It is immutable after construction.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewManager builds a Manager. A non-positive TTL is accepted and yields
// tokens that are already expired; callers enforce Config.Validate at startup.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, ErrSecretMissing
	}
	return &Manager{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
	}, nil
}

// TTL returns the configured lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue signs a token for userID valid from now until now+TTL.
func (m *Manager) Issue(userID uuid.UUID, now time.Time) (Issued, error) {
	iat := jwt.NewNumericDate(now)
	exp := jwt.NewNumericDate(now.Add(m.ttl))

	claims := jwt.RegisteredClaims{
		Issuer:    m.issuer,
		Subject:   userID.String(),
		IssuedAt:  iat,
		ExpiresAt: exp,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Issued{}, fmt.Errorf("token: sign: %w", err)
	}
	return Issued{Token: signed, ExpiresAt: exp.Time}, nil
}

// Verify checks signature, algorithm, issuer and expiry (valid iff now < exp)
// and returns the subject. Every failure is an identity.TokenError.
func (m *Manager) Verify(raw string, now time.Time) (uuid.UUID, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	var claims jwt.RegisteredClaims
	_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return uuid.Nil, identity.NewTokenError(identity.TokenInvalidOrExpired, err.Error())
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, identity.NewTokenError(identity.TokenMalformedSubject, "subject is not a user id")
	}
	return id, nil
}
