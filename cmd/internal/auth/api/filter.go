package authapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"authsvc/cmd/identity"
	"authsvc/cmd/internal/observability"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(raw string, now time.Time) (uuid.UUID, error)
}

// PathMatcher decides whether a request path is public.
//
// A pattern ending in "/*" matches any path starting with the pattern minus
// that suffix ("/swagger/*" matches "/swagger", "/swagger/ui.css").
// Any other pattern matches exactly.
type PathMatcher struct {
	globs []glob.Glob
}

// NewPathMatcher compiles patterns.
func NewPathMatcher(patterns []string) (*PathMatcher, error) {
	m := &PathMatcher{globs: make([]glob.Glob, 0, len(patterns))}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		expr := glob.QuoteMeta(p)
		if prefix, ok := strings.CutSuffix(p, "/*"); ok {
			expr = glob.QuoteMeta(prefix) + "*"
		}

		g, err := glob.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("authapi: public path %q: %w", p, err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Match reports whether path is public.
func (m *PathMatcher) Match(path string) bool {
	for _, g := range m.globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// AuthFilter enforces bearer authentication on every non-public path.
type AuthFilter struct {
	tokens  TokenVerifier
	public  *PathMatcher
	log     *slog.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// FilterOption configures optional AuthFilter dependencies.
type FilterOption func(*AuthFilter)

// WithFilterLogger sets the logger used for rejections.
func WithFilterLogger(log *slog.Logger) FilterOption {
	return func(f *AuthFilter) {
		if log != nil {
			f.log = log
		}
	}
}

// WithFilterMetrics records each decision.
func WithFilterMetrics(m *observability.Metrics) FilterOption {
	return func(f *AuthFilter) { f.metrics = m }
}

// WithFilterClock overrides time.Now for token expiry checks.
func WithFilterClock(now func() time.Time) FilterOption {
	return func(f *AuthFilter) {
		if now != nil {
			f.now = now
		}
	}
}

// NewAuthFilter builds the filter. publicPaths follow PathMatcher rules.
func NewAuthFilter(tokens TokenVerifier, publicPaths []string, opts ...FilterOption) (*AuthFilter, error) {
	if tokens == nil {
		return nil, errors.New("authapi: nil token verifier")
	}
	public, err := NewPathMatcher(publicPaths)
	if err != nil {
		return nil, err
	}

	f := &AuthFilter{
		tokens: tokens,
		public: public,
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f, nil
}

// Wrap returns next guarded by the filter. On rejection next is not called
// and a 401 Problem is written.
func (f *AuthFilter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.public.Match(r.URL.Path) {
			f.metrics.AuthFilter(observability.AuthExcluded)
			next.ServeHTTP(w, r)
			return
		}

		// An absent header is the same as an empty token.
		id, err := f.tokens.Verify(bearerToken(r), f.now())
		if err != nil {
			f.metrics.AuthFilter(observability.AuthRejected)

			var te identity.TokenError
			if !errors.As(err, &te) {
				// Verifier broke its contract; still refuse the request as a token failure.
				te = identity.NewTokenError(identity.TokenInvalidOrExpired, "")
				err = te
			}
			f.log.Info("auth.filter.reject", "path", r.URL.Path, "reason", string(te.Reason))
			writeProblem(w, ProblemFor(err))
			return
		}

		f.metrics.AuthFilter(observability.AuthAuthorized)
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
	})
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
