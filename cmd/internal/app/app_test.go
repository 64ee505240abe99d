package app

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"authsvc/cmd/identity"

	"go.uber.org/goleak"
)

func TestServe_GracefulShutdown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	a := newTestApp(t, testConfig())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	tr := &http.Transport{}
	client := &http.Client{Transport: tr, Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	_ = resp.Body.Close()
	tr.CloseIdleConnections()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve: %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatalf("server did not stop")
	}
}

func TestRun_ListenError(t *testing.T) {
	cfg := testConfig()
	cfg.HTTPAddr = "127.0.0.1:-1"
	a := newTestApp(t, cfg)

	if err := a.Run(context.Background()); err == nil {
		t.Fatalf("expected listen error")
	}
}

func TestNew_RejectsBadSettings(t *testing.T) {
	cases := map[string]func(*Config){
		"bcrypt cost":  func(c *Config) { c.BcryptCost = 99 },
		"empty secret": func(c *Config) { c.JWTSecret = "" },
		"seed email":   func(c *Config) { c.SeedEmail = "not-an-email" },
	}

	for name, mutate := range cases {
		cfg := testConfig()
		mutate(&cfg)
		if _, err := New(context.Background(), cfg, discardLogger()); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestNew_UsesProvidedStore(t *testing.T) {
	st, err := identity.NewMemoryStore()
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	newTestApp(t, testConfig(), WithStore(st), WithVersion("1.2.3"))

	users, err := st.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(users) != 1 || users[0].Email != "admin@local.com" {
		t.Fatalf("seed not written to provided store: %+v", users)
	}
}
