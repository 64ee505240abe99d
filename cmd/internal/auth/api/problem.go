package authapi

import (
	"errors"
	"net/http"

	"authsvc/cmd/identity"
)

// Problem is the error body returned for every domain failure.
type Problem struct {
	Title         string            `json:"title"`
	Status        int               `json:"status"`
	Description   string            `json:"description"`
	InvalidParams map[string]string `json:"invalidParams" jsonschema:"description=Always empty"`
}

// Problem titles. Clients tell failure kinds apart by status + title.
const (
	TitleValidation         = "Validation Error"
	TitleInvalidCredentials = "Invalid credentials"
	TitleToken              = "JWT token error"
	TitleInternal           = "Internal Server Error"
)

// ProblemFor maps a domain error to its Problem. Causes of store and internal
// failures are never copied into the body.
func ProblemFor(err error) Problem {
	var (
		ve identity.ValidationError
		te identity.TokenError
	)
	switch {
	case errors.As(err, &ve):
		return newProblem(TitleValidation, http.StatusBadRequest, ve.Message)
	case errors.Is(err, identity.ErrInvalidCredentials):
		return newProblem(TitleInvalidCredentials, http.StatusBadRequest, "Invalid email or password specified")
	case errors.As(err, &te):
		return newProblem(TitleToken, http.StatusUnauthorized, te.Message)
	default:
		return newProblem(TitleInternal, http.StatusInternalServerError, "internal error")
	}
}

func newProblem(title string, status int, description string) Problem {
	return Problem{
		Title:         title,
		Status:        status,
		Description:   description,
		InvalidParams: map[string]string{},
	}
}
