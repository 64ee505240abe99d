// Package usecase holds the two business operations of the service:
// exchanging credentials for a token, and listing users.
//
// Transport (HTTP) integration is intentionally out of scope here.
package usecase

import (
	"context"
	"time"

	"authsvc/cmd/identity"
	"authsvc/cmd/security/token"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("authsvc/usecase")

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier interface {
	Verify(plain, hashed string) bool
}

// TokenIssuer signs a token for a user.
type TokenIssuer interface {
	Issue(userID uuid.UUID, now time.Time) (token.Issued, error)
}

// Result is a successful authentication.
type Result struct {
	Token   string `json:"token"`
	Expires int64  `json:"expires"`
}

// Authenticate exchanges credentials for a signed token.
type Authenticate struct {
	users     identity.Lookup
	passwords PasswordVerifier
	tokens    TokenIssuer

	now       func() time.Time
	dummyHash string
}

// AuthenticateOption configures optional Authenticate behavior.
type AuthenticateOption func(*Authenticate)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) AuthenticateOption {
	return func(a *Authenticate) {
		if now != nil {
			a.now = now
		}
	}
}

// WithDummyHash sets a hash verified when the email is unknown, so the
// unknown-user path costs the same as the wrong-password path.
func WithDummyHash(hash string) AuthenticateOption {
	return func(a *Authenticate) { a.dummyHash = hash }
}

// NewAuthenticate wires the use case.
func NewAuthenticate(users identity.Lookup, passwords PasswordVerifier, tokens TokenIssuer, opts ...AuthenticateOption) *Authenticate {
	a := &Authenticate{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(a)
	}
	return a
}

// Execute runs validate → lookup → verify → issue, stopping at the first failure.
//
// Errors: identity.ValidationError, identity.ErrInvalidCredentials (unknown
// email and wrong password are indistinguishable), identity.StoreError, or
// identity.InternalError.
func (a *Authenticate) Execute(ctx context.Context, creds identity.Credentials) (res Result, err error) {
	ctx, span := tracer.Start(ctx, "auth.authenticate")
	defer func() {
		span.SetAttributes(attribute.String("auth.outcome", Outcome(err)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, Outcome(err))
		}
		span.End()
	}()

	if err := identity.ValidateCredentials(creds); err != nil {
		return Result{}, err
	}

	user, found, err := a.users.FindByEmail(ctx, creds.Email)
	if err != nil {
		return Result{}, asStoreError("usecase.Authenticate", err)
	}
	if !found {
		if a.dummyHash != "" {
			_ = a.passwords.Verify(creds.Password, a.dummyHash)
		}
		return Result{}, identity.ErrInvalidCredentials
	}

	if !a.passwords.Verify(creds.Password, user.PasswordHash) {
		return Result{}, identity.ErrInvalidCredentials
	}

	span.AddEvent("credentials.verified", trace.WithAttributes(attribute.String("user.id", user.ID.String())))

	issued, err := a.tokens.Issue(user.ID, a.now())
	if err != nil {
		return Result{}, identity.InternalError{Op: "usecase.Authenticate", Err: err}
	}

	return Result{Token: issued.Token, Expires: issued.Expires()}, nil
}
