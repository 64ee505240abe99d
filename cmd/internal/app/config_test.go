package app

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "authsvc.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("AUTHSVC_CONFIG_FILE", "")

	cfg, err := LoadConfig("", nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Fatalf("cfg=%+v\nwant=%+v", cfg, DefaultConfig())
	}
	if cfg.JWTTTL() != 2*time.Minute {
		t.Fatalf("ttl=%v want 2m", cfg.JWTTTL())
	}
}

func TestLoadConfig_Layering(t *testing.T) {
	path := writeConfigFile(t, `
http:
  addr: "127.0.0.1:9000"
  read_timeout: 7s
jwt:
  issuer: from-file
  ttl_seconds: 300
cors:
  allowed_origins:
    - https://app.example.com
seed:
  email: ""
`)
	t.Setenv("AUTHSVC_JWT_ISSUER", "from-env")
	t.Setenv("AUTHSVC_JWT_TTL_SECONDS", "600")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	if err := flags.Parse([]string{"--jwt-ttl-seconds=900"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := LoadConfig(path, flags)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.HTTPAddr != "127.0.0.1:9000" {
		t.Fatalf("addr=%q want file value (unchanged flag must not override)", cfg.HTTPAddr)
	}
	if cfg.ReadTimeout != 7*time.Second {
		t.Fatalf("read timeout=%v want 7s", cfg.ReadTimeout)
	}
	if cfg.JWTIssuer != "from-env" {
		t.Fatalf("issuer=%q want env over file", cfg.JWTIssuer)
	}
	if cfg.JWTTTLSeconds != 900 {
		t.Fatalf("ttl=%d want flag over env", cfg.JWTTTLSeconds)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "https://app.example.com" {
		t.Fatalf("cors=%v", cfg.CORSAllowedOrigins)
	}
	if cfg.SeedEmail != "" {
		t.Fatalf("seed email=%q want empty from file", cfg.SeedEmail)
	}
	if cfg.JWTSecret != DevJWTSecret {
		t.Fatalf("untouched keys must keep defaults")
	}
}

func TestLoadConfig_PathFromEnv(t *testing.T) {
	path := writeConfigFile(t, "log:\n  format: pretty\n")
	t.Setenv("AUTHSVC_CONFIG_FILE", path)

	cfg, err := LoadConfig("", nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogFormat != "pretty" {
		t.Fatalf("format=%q want pretty", cfg.LogFormat)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Setenv("AUTHSVC_CONFIG_FILE", "")
	t.Setenv("AUTHSVC_LOG_FORMAT", "xml")

	_, err := LoadConfig("", nil)
	if err == nil || !strings.Contains(err.Error(), "log.format") {
		t.Fatalf("err=%v want log.format validation error", err)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "empty addr", mutate: func(c *Config) { c.HTTPAddr = " " }, want: "http.addr"},
		{name: "zero ttl", mutate: func(c *Config) { c.JWTTTLSeconds = 0 }, want: "jwt.ttl_seconds"},
		{name: "bad format", mutate: func(c *Config) { c.LogFormat = "xml" }, want: "log.format"},
		{name: "min over max", mutate: func(c *Config) { c.DBMinConns = 20 }, want: "db.min_conns"},
	}

	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: err=%v want mention of %q", tc.name, err, tc.want)
		}
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}
