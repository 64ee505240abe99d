package identity

import (
	"context"

	"github.com/google/uuid"
)

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
}

// Public drops everything but the wire-visible fields.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email}
}

// PublicUser is the only user shape that crosses the wire.
type PublicUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// Credentials is an email/password pair submitted for authentication.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Lookup is the read side of a user store.
//
// FindByEmail matches exactly (no case folding). A missing user is
// (User{}, false, nil); err is reserved for store failures.
type Lookup interface {
	FindByEmail(ctx context.Context, email string) (User, bool, error)
	FindAll(ctx context.Context) ([]User, error)
}

// Store is a Lookup that can also register users.
type Store interface {
	Lookup
	Insert(ctx context.Context, u User) error
}
