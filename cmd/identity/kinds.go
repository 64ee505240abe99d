package identity

import "errors"

// Sentinel error kinds (stable for errors.Is and for mapping to API status codes).
var (
	ErrValidation         = errors.New("validation")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrToken              = errors.New("token")
	ErrStore              = errors.New("store")
	ErrInternal           = errors.New("internal")
	ErrConflict           = errors.New("conflict")
)
