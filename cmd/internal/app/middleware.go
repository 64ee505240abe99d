package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	authapi "authsvc/cmd/internal/auth/api"
	"authsvc/cmd/internal/observability"

	"github.com/gobwas/glob"
	"github.com/mssola/user_agent"
	"github.com/oklog/ulid/v2"
)

// Filter wraps a handler with one pipeline stage.
type Filter func(http.Handler) http.Handler

// Chain applies filters so that filters[0] runs first.
func Chain(h http.Handler, filters ...Filter) http.Handler {
	for i := len(filters) - 1; i >= 0; i-- {
		h = filters[i](h)
	}
	return h
}

type requestIDKey struct{}

const headerRequestID = "X-Request-ID"

// RequestIDFromContext returns the id assigned by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithRequestID reuses a sane inbound X-Request-ID or assigns a new ULID, and
// echoes it on the response.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(headerRequestID))
		if !validRequestID(id) {
			id = newRequestID(time.Now())
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func newRequestID(now time.Time) string {
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return ulid.Make().String()
	}
	return id.String()
}

func validRequestID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c < 0x21 || c > 0x7e {
			return false
		}
	}
	return true
}

// WithRequestLogging logs one line per request and records request metrics.
func WithRequestLogging(next http.Handler, log *slog.Logger, metrics *observability.Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		elapsed := time.Since(start)
		route := routeLabel(r.URL.Path)
		metrics.ObserveRequest(methodLabel(r.Method), route, lrw.status, elapsed)

		level, result := requestLogMeta(lrw.status)
		attrs := []slog.Attr{
			slog.String("request_id", RequestIDFromContext(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("route", route),
			slog.Int("status", lrw.status),
			slog.String("status_class", statusClass(lrw.status)),
			slog.String("result", result),
			slog.Int64("duration_ms", elapsed.Milliseconds()),
			slog.Int64("bytes", lrw.bytes),
			slog.String("remote", r.RemoteAddr),
		}
		if ua := r.UserAgent(); ua != "" {
			attrs = append(attrs, clientAttrs(ua))
		}
		log.LogAttrs(r.Context(), level, "http.request", attrs...)
	})
}

// clientAttrs summarizes a User-Agent instead of logging the raw header.
func clientAttrs(raw string) slog.Attr {
	ua := user_agent.New(raw)
	browser, version := ua.Browser()
	kind := "desktop"
	switch {
	case ua.Bot():
		kind = "bot"
	case ua.Mobile():
		kind = "mobile"
	}
	return slog.Group("client",
		slog.String("browser", browser),
		slog.String("version", version),
		slog.String("os", ua.OS()),
		slog.String("kind", kind),
	)
}

func requestLogMeta(status int) (slog.Level, string) {
	switch {
	case status >= 500:
		return slog.LevelError, "server_error"
	case status >= 400:
		return slog.LevelWarn, "client_error"
	case status >= 300:
		return slog.LevelInfo, "redirect"
	default:
		return slog.LevelInfo, "success"
	}
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

// routeLabel keeps the metrics route label bounded.
func routeLabel(path string) string {
	switch path {
	case "/api/v1/authenticate", "/api/v1/users",
		"/health", "/health/live", "/health/ready",
		"/openapi.json", "/metrics":
		return path
	}
	if path == "/swagger" || strings.HasPrefix(path, "/swagger/") {
		return "/swagger/"
	}
	return "other"
}

// methodLabel keeps the metrics method label bounded; net/http accepts any token.
func methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodHead, http.MethodOptions,
		http.MethodPut, http.MethodDelete, http.MethodPatch:
		return method
	}
	return "other"
}

// WithRecover turns a panic into a 500 Problem. http.ErrAbortHandler is
// re-raised so net/http can abort the connection.
func WithRecover(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.ErrorContext(r.Context(), "http.panic",
				"request_id", RequestIDFromContext(r.Context()),
				"path", r.URL.Path,
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
			)
			authapi.WriteError(w, fmt.Errorf("panic: %v", rec))
		}()
		next.ServeHTTP(w, r)
	})
}

// WithSecurityHeaders sets the baseline response hardening headers.
func WithSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// WithCORS answers preflights and decorates cross-origin responses for
// allowed origins. Patterns may contain '*' wildcards ("http://127.0.0.1:*");
// a bare "*" allows any origin. Disallowed origins get 403.
func WithCORS(next http.Handler, cfg Config, log *slog.Logger) http.Handler {
	allowAny := false
	var patterns []glob.Glob
	for _, raw := range cfg.CORSAllowedOrigins {
		raw = strings.TrimSpace(raw)
		switch raw {
		case "":
			continue
		case "*":
			allowAny = true
			continue
		}
		g, err := compileOriginPattern(raw)
		if err != nil {
			log.Warn("cors.pattern.invalid", "pattern", raw, "err", err)
			continue
		}
		patterns = append(patterns, g)
	}

	allowed := func(origin string) bool {
		if allowAny {
			return true
		}
		for _, g := range patterns {
			if g.Match(origin) {
				return true
			}
		}
		return false
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Add("Vary", "Origin")
		if !allowed(origin) {
			log.Info("cors.origin.denied", "origin", origin, "path", r.URL.Path)
			http.Error(w, "origin not allowed", http.StatusForbidden)
			return
		}

		if allowAny && !cfg.CORSAllowCredentials {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
		}
		if cfg.CORSAllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		h.Set("Access-Control-Expose-Headers", headerRequestID)

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			reqHeaders := r.Header.Get("Access-Control-Request-Headers")
			if reqHeaders == "" {
				reqHeaders = "Authorization, Content-Type"
			}
			h.Set("Access-Control-Allow-Headers", reqHeaders)
			if cfg.CORSMaxAgeSeconds > 0 {
				h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.CORSMaxAgeSeconds))
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func compileOriginPattern(p string) (glob.Glob, error) {
	parts := strings.Split(p, "*")
	for i, part := range parts {
		parts[i] = glob.QuoteMeta(part)
	}
	return glob.Compile(strings.Join(parts, "*"))
}

// ContentTypePolicy decides which requests must carry an acceptable payload type.
type ContentTypePolicy struct {
	Acceptable      []string
	ExcludedPaths   []string
	ExcludedMethods []string
}

// DefaultContentTypePolicy accepts JSON bodies and skips bodiless methods and
// the documentation and health endpoints.
func DefaultContentTypePolicy() ContentTypePolicy {
	return ContentTypePolicy{
		Acceptable:      []string{"application/json"},
		ExcludedPaths:   []string{"/health", "/openapi.json", "/swagger"},
		ExcludedMethods: []string{http.MethodGet, http.MethodDelete, http.MethodHead, http.MethodOptions},
	}
}

func (p ContentTypePolicy) excluded(r *http.Request) bool {
	for _, m := range p.ExcludedMethods {
		if strings.EqualFold(r.Method, m) {
			return true
		}
	}
	for _, path := range p.ExcludedPaths {
		if r.URL.Path == path {
			return true
		}
	}
	return false
}

// accepts matches the raw header by case-sensitive prefix, so parameters
// ("; charset=utf-8") pass and "APPLICATION/JSON" does not.
func (p ContentTypePolicy) accepts(contentType string) bool {
	for _, a := range p.Acceptable {
		if strings.HasPrefix(contentType, a) {
			return true
		}
	}
	return false
}

// ContentTypeFilter rejects payloads of an unacceptable type with a
// plain-text 400 before authentication runs. A missing header passes; a
// present but empty one does not.
func ContentTypeFilter(policy ContentTypePolicy) Filter {
	rejection := "Content-Type must be one of: " + strings.Join(policy.Acceptable, ", ")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if policy.excluded(r) {
				next.ServeHTTP(w, r)
				return
			}
			values, present := r.Header["Content-Type"]
			if present && (len(values) == 0 || !policy.accepts(values[0])) {
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(rejection))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	status      int
	bytes       int64
	wroteHeader bool
}

func (w *loggingResponseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *loggingResponseWriter) Write(p []byte) (int, error) {
	w.wroteHeader = true
	n, err := w.ResponseWriter.Write(p)
	w.bytes += int64(n)
	return n, err
}

func (w *loggingResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *loggingResponseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
