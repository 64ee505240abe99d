package main

import (
	"io"
	"testing"
)

func TestNewRootCmd_Flags(t *testing.T) {
	cmd := NewRootCmd()

	if cmd.PersistentFlags().Lookup("config") == nil {
		t.Fatalf("missing --config flag")
	}
	for _, name := range []string{"addr", "log-level", "log-format", "database-url", "jwt-issuer", "jwt-ttl-seconds"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Fatalf("missing --%s flag", name)
		}
	}
}

func TestNewRootCmd_InvalidConfigFails(t *testing.T) {
	t.Setenv("AUTHSVC_CONFIG_FILE", "")

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"--log-format", "xml"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected config validation error")
	}
}
