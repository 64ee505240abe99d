// Package app wires the authsvc runtime: config, logging, the request filter
// chain, HTTP routes and server lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"authsvc/cmd/identity"
	authapi "authsvc/cmd/internal/auth/api"
	"authsvc/cmd/internal/auth/usecase"
	"authsvc/cmd/internal/observability"
	"authsvc/cmd/security/password"
	"authsvc/cmd/security/token"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// dummyPassword is hashed once at startup and verified for unknown emails.
const dummyPassword = "authsvc-timing-equalizer"

const shutdownTimeout = 10 * time.Second

// App is the authsvc runtime: it owns the store, the HTTP handler chain and
// the server lifecycle.
type App struct {
	cfg     Config
	log     Logger
	version string

	store identity.Store
	pool  *pgxpool.Pool
	db    Pinger

	auth    *authapi.Handler
	filter  *authapi.AuthFilter
	openapi []byte

	registry *prometheus.Registry
	metrics  *observability.Metrics

	handler http.Handler
}

// Option configures optional App dependencies.
type Option func(*App)

// WithStore replaces the configured store. The caller keeps ownership.
func WithStore(st identity.Store) Option {
	return func(a *App) { a.store = st }
}

// WithVersion sets the version reported in the OpenAPI document.
func WithVersion(v string) Option {
	return func(a *App) {
		if v != "" {
			a.version = v
		}
	}
}

// New constructs a fully wired App. With a database URL the PostgreSQL
// store is used and its table created; otherwise users live in memory.
func New(ctx context.Context, cfg Config, log Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	a := &App{cfg: cfg, log: log, version: "dev"}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}
	if err := a.wire(ctx); err != nil {
		a.closeStore()
		return nil, err
	}
	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	if a.store != nil {
		return nil
	}
	if a.cfg.DatabaseURL == "" {
		a.log.Info("db.disabled.inmemory_store")
		st, err := identity.NewMemoryStore()
		if err != nil {
			return err
		}
		a.store = st
		return nil
	}

	pool, err := NewDBPool(ctx, a.cfg, a.log)
	if err != nil {
		return err
	}
	st, err := identity.NewPostgresStore(pool, identity.WithSchema(a.cfg.DBSchema))
	if err != nil {
		pool.Close()
		return err
	}
	if err := st.EnsureSchema(ctx); err != nil {
		pool.Close()
		return err
	}
	a.log.Info("db.enabled.postgres_store", "schema", a.cfg.DBSchema)

	a.store, a.pool, a.db = st, pool, pool
	return nil
}

func (a *App) wire(ctx context.Context) error {
	hasher, err := password.New(password.Config{Cost: a.cfg.BcryptCost})
	if err != nil {
		return err
	}
	tokens, err := token.NewManager(token.Config{
		Secret: a.cfg.JWTSecret,
		Issuer: a.cfg.JWTIssuer,
		TTL:    a.cfg.JWTTTL(),
	})
	if err != nil {
		return err
	}
	a.log.Info("auth.tokens", "issuer", a.cfg.JWTIssuer, "ttl", tokens.TTL())

	if err := seedUser(ctx, a.store, hasher, a.cfg, a.log); err != nil {
		return err
	}
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return fmt.Errorf("app: dummy hash: %w", err)
	}

	a.registry, a.metrics = observability.NewRegistry()

	apiCfg := authapi.DefaultConfig()
	if a.cfg.MaxBodyBytes > 0 {
		apiCfg.MaxBodyBytes = a.cfg.MaxBodyBytes
	}
	a.auth, err = authapi.NewHandler(a.log, apiCfg,
		usecase.NewAuthenticate(a.store, hasher, tokens, usecase.WithDummyHash(dummyHash)),
		usecase.NewListUsers(a.store),
		authapi.WithMetrics(a.metrics),
	)
	if err != nil {
		return err
	}
	a.filter, err = authapi.NewAuthFilter(tokens, apiCfg.PublicPaths,
		authapi.WithFilterLogger(a.log),
		authapi.WithFilterMetrics(a.metrics),
	)
	if err != nil {
		return err
	}

	a.openapi, err = authapi.OpenAPI(a.cfg.ServiceName, a.version)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	a.registerHTTP(mux)
	a.handler = a.chain(mux)
	return nil
}

// chain builds the request pipeline around mux. ContentTypeFilter must run
// before AuthFilter so a bad payload type is reported even without a token.
func (a *App) chain(mux http.Handler) http.Handler {
	return Chain(mux,
		WithRequestID,
		func(next http.Handler) http.Handler { return WithRequestLogging(next, a.log, a.metrics) },
		func(next http.Handler) http.Handler { return WithRecover(next, a.log) },
		WithSecurityHeaders,
		func(next http.Handler) http.Handler { return WithCORS(next, a.cfg, a.log) },
		ContentTypeFilter(DefaultContentTypePolicy()),
		a.filter.Wrap,
	)
}

// Handler returns the complete HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

func (a *App) metricsHandler() http.Handler { return observability.Handler(a.registry) }

// Run listens on the configured address and serves until ctx is done.
func (a *App) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", a.cfg.HTTPAddr)
	if err != nil {
		a.closeStore()
		return fmt.Errorf("app: listen %s: %w", a.cfg.HTTPAddr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done or the server fails, then shuts down
// gracefully and releases the store.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	defer a.closeStore()

	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", ln.Addr().String(), "db_enabled", a.pool != nil)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		if err != nil {
			a.log.Error("server.fail", "err", err)
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}
	<-errCh

	a.log.Info("server.stopped")
	return nil
}

func (a *App) closeStore() {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
