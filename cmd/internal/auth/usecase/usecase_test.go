package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"authsvc/cmd/identity"
	"authsvc/cmd/security/password"
	"authsvc/cmd/security/token"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type countingStore struct {
	users     []identity.User
	err       error
	findCalls int
	allCalls  int
}

func (s *countingStore) FindByEmail(_ context.Context, email string) (identity.User, bool, error) {
	s.findCalls++
	if s.err != nil {
		return identity.User{}, false, s.err
	}
	for _, u := range s.users {
		if u.Email == email {
			return u, true, nil
		}
	}
	return identity.User{}, false, nil
}

func (s *countingStore) FindAll(_ context.Context) ([]identity.User, error) {
	s.allCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.users, nil
}

type countingVerifier struct {
	inner PasswordVerifier
	calls int
}

func (v *countingVerifier) Verify(plain, hashed string) bool {
	v.calls++
	return v.inner.Verify(plain, hashed)
}

type failingIssuer struct{}

func (failingIssuer) Issue(uuid.UUID, time.Time) (token.Issued, error) {
	return token.Issued{}, errors.New("boom")
}

type fixture struct {
	store    *countingStore
	verifier *countingVerifier
	tokens   *token.Manager
	admin    identity.User
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hasher, err := password.New(password.Config{Cost: bcrypt.MinCost})
	require.NoError(t, err)
	hash, err := hasher.Hash("password123")
	require.NoError(t, err)

	tokens, err := token.NewManager(token.Config{Secret: "usecase-test-secret", Issuer: "authsvc", TTL: 2 * time.Minute})
	require.NoError(t, err)

	admin := identity.User{ID: uuid.New(), Email: "admin@local.com", PasswordHash: hash}
	return &fixture{
		store:    &countingStore{users: []identity.User{admin}},
		verifier: &countingVerifier{inner: hasher},
		tokens:   tokens,
		admin:    admin,
		now:      time.Unix(1_700_000_000, 0),
	}
}

func (f *fixture) authenticate(opts ...AuthenticateOption) *Authenticate {
	opts = append([]AuthenticateOption{WithClock(func() time.Time { return f.now })}, opts...)
	return NewAuthenticate(f.store, f.verifier, f.tokens, opts...)
}

func TestAuthenticate_Success(t *testing.T) {
	f := newFixture(t)

	res, err := f.authenticate().Execute(context.Background(), identity.Credentials{Email: "admin@local.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, f.now.Add(2*time.Minute).Unix(), res.Expires)

	id, err := f.tokens.Verify(res.Token, f.now)
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, id)
}

func TestAuthenticate_ValidationShortCircuits(t *testing.T) {
	tests := []struct {
		name  string
		creds identity.Credentials
		want  string
	}{
		{
			name:  "empty email",
			creds: identity.Credentials{Email: "", Password: "password123"},
			want:  "Email cannot be empty",
		},
		{
			name:  "empty password",
			creds: identity.Credentials{Email: "admin@local.com", Password: ""},
			want:  "Password cannot be empty",
		},
		{
			name:  "bad email format",
			creds: identity.Credentials{Email: "user@example.toolong", Password: "password123"},
			want:  "Invalid email format",
		},
		{
			name:  "short password after trim",
			creds: identity.Credentials{Email: "admin@local.com", Password: "  1234567  "},
			want:  "Password must be at least 8 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.authenticate().Execute(context.Background(), tt.creds)

			var ve identity.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.want, ve.Message)
			assert.Zero(t, f.store.findCalls, "store must not be touched on validation failure")
			assert.Zero(t, f.verifier.calls)
		})
	}
}

func TestAuthenticate_NoEnumeration(t *testing.T) {
	f := newFixture(t)
	uc := f.authenticate()

	_, errUnknown := uc.Execute(context.Background(), identity.Credentials{Email: "nobody@local.com", Password: "password123"})
	_, errWrong := uc.Execute(context.Background(), identity.Credentials{Email: "admin@local.com", Password: "wrongpassword"})

	assert.ErrorIs(t, errUnknown, identity.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, identity.ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrong)
}

func TestAuthenticate_DummyHashOnUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.authenticate().Execute(context.Background(), identity.Credentials{Email: "nobody@local.com", Password: "password123"})
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	assert.Zero(t, f.verifier.calls)

	_, err = f.authenticate(WithDummyHash(f.admin.PasswordHash)).Execute(context.Background(), identity.Credentials{Email: "nobody@local.com", Password: "password123"})
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials, "a dummy match must never authenticate")
	assert.Equal(t, 1, f.verifier.calls)
}

func TestAuthenticate_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.err = errors.New("connection reset")

	_, err := f.authenticate().Execute(context.Background(), identity.Credentials{Email: "admin@local.com", Password: "password123"})
	assert.ErrorIs(t, err, identity.ErrStore)
	assert.NotErrorIs(t, err, identity.ErrInvalidCredentials)
	assert.Zero(t, f.verifier.calls)
}

func TestAuthenticate_IssueFailureIsInternal(t *testing.T) {
	f := newFixture(t)

	uc := NewAuthenticate(f.store, f.verifier, failingIssuer{})
	_, err := uc.Execute(context.Background(), identity.Credentials{Email: "admin@local.com", Password: "password123"})
	assert.ErrorIs(t, err, identity.ErrInternal)
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)
	other := identity.User{ID: uuid.New(), Email: "second@local.com", PasswordHash: "x"}
	f.store.users = append(f.store.users, other)

	got, err := NewListUsers(f.store).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []identity.PublicUser{
		{ID: f.admin.ID, Email: "admin@local.com"},
		{ID: other.ID, Email: "second@local.com"},
	}, got)
}

func TestListUsers_EmptyIsNotNil(t *testing.T) {
	got, err := NewListUsers(&countingStore{}).Execute(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListUsers_StoreFailure(t *testing.T) {
	_, err := NewListUsers(&countingStore{err: errors.New("down")}).Execute(context.Background())
	assert.ErrorIs(t, err, identity.ErrStore)
}
