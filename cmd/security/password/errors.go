package password

import "errors"

// Public, stable errors for callers.
var (
	ErrPasswordTooLong = errors.New("password too long")
	ErrInvalidCost     = errors.New("invalid bcrypt cost")
)
