package app

import (
	"context"
	"fmt"

	"authsvc/cmd/identity"

	"github.com/google/uuid"
)

// PasswordHasher is the hashing half of the password package.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// seedUser inserts the configured bootstrap account. An empty email disables
// seeding; an account that already exists is left untouched.
func seedUser(ctx context.Context, store identity.Store, hasher PasswordHasher, cfg Config, log Logger) error {
	if cfg.SeedEmail == "" {
		log.Debug("seed.skip")
		return nil
	}

	creds := identity.Credentials{Email: cfg.SeedEmail, Password: cfg.SeedPassword}
	if err := identity.ValidateCredentials(creds); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	hash, err := hasher.Hash(creds.Password)
	if err != nil {
		return fmt.Errorf("seed: hash: %w", err)
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Errorf("seed: id: %w", err)
	}

	err = store.Insert(ctx, identity.User{ID: id, Email: creds.Email, PasswordHash: hash})
	switch {
	case identity.IsConflict(err):
		log.Info("seed.exists")
		return nil
	case err != nil:
		return fmt.Errorf("seed: %w", err)
	}
	log.Info("seed.created", "user_id", id.String())
	return nil
}
