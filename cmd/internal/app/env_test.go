package app

import (
	"reflect"
	"testing"
	"time"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("AUTHSVC_T_STRING", "  value  ")
	t.Setenv("AUTHSVC_T_BOOL", "true")
	t.Setenv("AUTHSVC_T_BAD_BOOL", "maybe")
	t.Setenv("AUTHSVC_T_INT", "42")
	t.Setenv("AUTHSVC_T_NEG_INT", "-1")
	t.Setenv("AUTHSVC_T_INT32", "0")
	t.Setenv("AUTHSVC_T_DURATION", "3s")
	t.Setenv("AUTHSVC_T_BAD_DURATION", "soon")

	if got := EnvString("AUTHSVC_T_STRING", "def"); got != "value" {
		t.Fatalf("EnvString=%q", got)
	}
	if got := EnvString("AUTHSVC_T_UNSET", "def"); got != "def" {
		t.Fatalf("EnvString unset=%q", got)
	}
	if !EnvBool("AUTHSVC_T_BOOL", false) || EnvBool("AUTHSVC_T_BAD_BOOL", false) {
		t.Fatalf("EnvBool mismatch")
	}
	if EnvInt("AUTHSVC_T_INT", 1) != 42 || EnvInt("AUTHSVC_T_NEG_INT", 7) != 7 {
		t.Fatalf("EnvInt mismatch")
	}
	if EnvInt32("AUTHSVC_T_INT32", 5) != 0 {
		t.Fatalf("EnvInt32 must accept zero")
	}
	if EnvDuration("AUTHSVC_T_DURATION", time.Second) != 3*time.Second ||
		EnvDuration("AUTHSVC_T_BAD_DURATION", time.Second) != time.Second {
		t.Fatalf("EnvDuration mismatch")
	}
}

func TestEnvStrings(t *testing.T) {
	def := []string{"*"}

	cases := []struct {
		raw  string
		want []string
	}{
		{raw: "", want: def},
		{raw: "https://a.example.com", want: []string{"https://a.example.com"}},
		{raw: " https://a.example.com , ,http://127.0.0.1:* ", want: []string{"https://a.example.com", "http://127.0.0.1:*"}},
		{raw: " , ", want: def},
	}

	for _, tc := range cases {
		t.Setenv("AUTHSVC_T_LIST", tc.raw)
		if got := EnvStrings("AUTHSVC_T_LIST", def); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("EnvStrings(%q)=%v want=%v", tc.raw, got, tc.want)
		}
	}
}
