package app

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestValidateSecurityConfig(t *testing.T) {
	strong := strings.Repeat("k", minStrongSecretBytes)

	cases := []struct {
		name    string
		require bool
		secret  string
		wantErr string
	}{
		{name: "dev secret allowed when not required", secret: DevJWTSecret},
		{name: "strong secret", require: true, secret: strong},
		{name: "missing", require: true, secret: "  ", wantErr: "missing"},
		{name: "too short", require: true, secret: "short-secret", wantErr: "too short"},
		{name: "missing even when lax", secret: "", wantErr: "secret missing"},
		{name: "dev secret refused", require: true, secret: DevJWTSecret, wantErr: "too short"},
	}

	for _, tc := range cases {
		cfg := DefaultConfig()
		cfg.RequireStrongSecret = tc.require
		cfg.JWTSecret = tc.secret

		err := ValidateSecurityConfig(cfg, discardLogger())
		switch {
		case tc.wantErr == "" && err != nil:
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		case tc.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tc.wantErr)):
			t.Fatalf("%s: err=%v want %q", tc.name, err, tc.wantErr)
		}
	}
}

func TestValidateSecurityConfig_WarnsOnDevSecret(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	if err := ValidateSecurityConfig(DefaultConfig(), log); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "security.dev_secret") {
		t.Fatalf("expected warning, got %q", buf.String())
	}
}
