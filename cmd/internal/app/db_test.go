package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
)

type flakyPinger struct {
	failures int
	calls    int
}

var errPing = errors.New("connection refused")

func (p *flakyPinger) Ping(context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errPing
	}
	return nil
}

func TestWaitForDB_RetriesUntilReachable(t *testing.T) {
	p := &flakyPinger{failures: 2}
	backoff := retry.WithMaxRetries(4, retry.NewConstant(time.Millisecond))

	if err := waitForDB(context.Background(), p, backoff, discardLogger()); err != nil {
		t.Fatalf("waitForDB: %v", err)
	}
	if p.calls != 3 {
		t.Fatalf("calls=%d want 3", p.calls)
	}
}

func TestWaitForDB_GivesUp(t *testing.T) {
	p := &flakyPinger{failures: 100}
	backoff := retry.WithMaxRetries(2, retry.NewConstant(time.Millisecond))

	err := waitForDB(context.Background(), p, backoff, discardLogger())
	if !errors.Is(err, errPing) {
		t.Fatalf("err=%v want wrapped ping error", err)
	}
	if p.calls != 3 {
		t.Fatalf("calls=%d want 3", p.calls)
	}
}

func TestNewDBPool_BadURL(t *testing.T) {
	cfg := testConfig()
	cfg.DatabaseURL = "postgres://%zz"

	if _, err := NewDBPool(context.Background(), cfg, discardLogger()); err == nil {
		t.Fatalf("expected parse error")
	}
}
