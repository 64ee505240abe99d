package authapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"authsvc/cmd/identity"
	"authsvc/cmd/internal/auth/usecase"
	"authsvc/cmd/internal/observability"

	"github.com/samber/oops"
)

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Execute(ctx context.Context, creds identity.Credentials) (usecase.Result, error)
}

// UserLister returns the public view of every user.
type UserLister interface {
	Execute(ctx context.Context) ([]identity.PublicUser, error)
}

// Handler wires HTTP endpoints to the use cases.
type Handler struct {
	log *slog.Logger
	cfg Config

	authenticate Authenticator
	listUsers    UserLister
	metrics      *observability.Metrics
}

// HandlerOption configures optional handler dependencies.
type HandlerOption func(*Handler)

// WithMetrics records login outcomes.
func WithMetrics(m *observability.Metrics) HandlerOption {
	return func(h *Handler) { h.metrics = m }
}

// NewHandler constructs a Handler.
func NewHandler(log *slog.Logger, cfg Config, authenticate Authenticator, listUsers UserLister, opts ...HandlerOption) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if authenticate == nil || listUsers == nil {
		return nil, errors.New("authapi: nil use case")
	}

	h := &Handler{
		log:          log,
		cfg:          cfg.normalized(),
		authenticate: authenticate,
		listUsers:    listUsers,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}
	return h, nil
}

// Register wires the API routes onto mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/api/v1/authenticate", h.handleAuthenticate)
	mux.HandleFunc("/api/v1/users", h.handleListUsers)
}

func (h *Handler) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req authenticateRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		h.metrics.Login(usecase.Outcome(identity.ErrValidation))
		writeProblem(w, ProblemFor(identity.ValidationError{Message: "Invalid request body"}))
		return
	}

	res, err := h.authenticate.Execute(r.Context(), identity.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	outcome := usecase.Outcome(err)
	h.metrics.Login(outcome)
	if err != nil {
		h.logFailure(r.Context(), "auth.authenticate.fail", outcome, err)
		writeProblem(w, ProblemFor(err))
		return
	}

	writeJSON(w, http.StatusOK, authenticateResponse{
		Token:   res.Token,
		Expires: res.Expires,
	})
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// AuthFilter must have run; refuse if this route was mounted without it.
	if _, ok := UserIDFromContext(r.Context()); !ok {
		writeProblem(w, ProblemFor(identity.NewTokenError(identity.TokenInvalidOrExpired, "Token required")))
		return
	}

	users, err := h.listUsers.Execute(r.Context())
	if err != nil {
		h.logFailure(r.Context(), "users.list.fail", usecase.Outcome(err), err)
		writeProblem(w, ProblemFor(err))
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{ID: u.ID.String(), Email: u.Email})
	}
	writeJSON(w, http.StatusOK, out)
}

// logFailure logs client errors at info and everything else (with cause) at error.
func (h *Handler) logFailure(ctx context.Context, msg, outcome string, err error) {
	switch {
	case identity.IsValidation(err),
		errors.Is(err, identity.ErrInvalidCredentials),
		identity.IsToken(err):
		h.log.InfoContext(ctx, msg, "outcome", outcome)
	default:
		args := []any{"outcome", outcome, "err", err.Error()}
		if oopsErr, ok := oops.AsOops(err); ok {
			args = append(args, "code", oopsErr.Code())
			if extra := oopsErr.Context(); len(extra) > 0 {
				args = append(args, "context", extra)
			}
		}
		h.log.ErrorContext(ctx, msg, args...)
	}
}
