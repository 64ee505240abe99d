package usecase

import (
	"context"
	"errors"

	"authsvc/cmd/identity"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ListUsers projects every stored user to its public shape.
type ListUsers struct {
	users identity.Lookup
}

// NewListUsers wires the use case.
func NewListUsers(users identity.Lookup) *ListUsers {
	return &ListUsers{users: users}
}

// Execute returns users in store order. The slice is never nil.
func (l *ListUsers) Execute(ctx context.Context) ([]identity.PublicUser, error) {
	ctx, span := tracer.Start(ctx, "users.list")
	defer span.End()

	users, err := l.users.FindAll(ctx)
	if err != nil {
		err = asStoreError("usecase.ListUsers", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, Outcome(err))
		return nil, err
	}

	out := make([]identity.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	span.SetAttributes(attribute.Int("users.count", len(out)))
	return out, nil
}

// asStoreError keeps store errors as they are and wraps anything else from a
// store collaborator so it maps to Internal.
func asStoreError(op string, err error) error {
	if errors.Is(err, identity.ErrStore) {
		return err
	}
	return identity.StoreError{Op: op, Err: err}
}

// Outcome is a low-cardinality label for err, used in logs, spans and metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case identity.IsValidation(err):
		return "validation_error"
	case errors.Is(err, identity.ErrInvalidCredentials):
		return "invalid_credentials"
	case identity.IsToken(err):
		return "token_error"
	default:
		return "internal_error"
	}
}
