package identity

import (
	"errors"
	"fmt"
)

// ValidationError reports credentials that broke a validation rule.
// Message is shown to the client verbatim.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string { return e.Message }

func (e ValidationError) Unwrap() error { return ErrValidation }

// TokenReason distinguishes the two ways a bearer token can be refused.
type TokenReason string

const (
	TokenInvalidOrExpired TokenReason = "invalid-or-expired"
	TokenMalformedSubject TokenReason = "malformed-subject"
)

// TokenError is returned by token verification. Message is client-safe.
type TokenError struct {
	Reason  TokenReason
	Message string
}

func (e TokenError) Error() string { return e.Message }

func (e TokenError) Unwrap() error { return ErrToken }

// NewTokenError builds a TokenError with the standard message prefix for reason.
func NewTokenError(reason TokenReason, detail string) TokenError {
	prefix := "Invalid or expired token"
	if reason == TokenMalformedSubject {
		prefix = "Token verification failed"
	}
	if detail == "" {
		return TokenError{Reason: reason, Message: prefix}
	}
	return TokenError{Reason: reason, Message: prefix + ": " + detail}
}

// StoreError wraps a failure of the user store. The cause is for logs only.
type StoreError struct {
	Op  string
	Err error
}

func (e StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, ErrStore)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrStore, e.Err)
}

// Unwrap exposes both the kind and the cause.
func (e StoreError) Unwrap() []error { return []error{ErrStore, e.Err} }

// InternalError wraps any other unexpected failure (signing, hashing).
type InternalError struct {
	Op  string
	Err error
}

func (e InternalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, ErrInternal)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrInternal, e.Err)
}

func (e InternalError) Unwrap() []error { return []error{ErrInternal, e.Err} }

// ConflictError reports a uniqueness conflict for a logical field ("email").
type ConflictError struct {
	Op    string
	Field string
}

func (e ConflictError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", e.Op, ErrConflict)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, ErrConflict, e.Field)
}

func (e ConflictError) Unwrap() error { return ErrConflict }

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce ConflictError
	return errors.As(err, &ce)
}

// IsValidation reports whether err represents ErrValidation.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsToken reports whether err represents ErrToken.
func IsToken(err error) bool { return errors.Is(err, ErrToken) }
