// internal/config/resolver_test.go
//
// Unit-tests for Resolve: determinism, overlay-wins merge, env overrides,
// and CORS list splitting.
//
// Context
// -------
// Resolve reads the process environment, so every test pins the variables
// it cares about with t.Setenv (which also isolates the test from the
// host's environment for that key).

package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
)

// testSecrets returns a source with both secrets set to stable values, so
// two Resolve calls can be compared structurally.
func testSecrets() *SecretSource {
	return NewSecretSource(WithLookup(fakeEnv(map[string]string{
		"SESSION_SECRET": strings.Repeat("s", 64),
		"JWT_SECRET":     strings.Repeat("j", 64),
	})), WithoutVault())
}

// clearWellKnown unsets every deployment variable for the duration of one
// test.  t.Setenv first, so the original value is restored afterwards;
// os.Unsetenv then removes it, because CORS_ORIGINS distinguishes "absent"
// from "present and empty".
func clearWellKnown(t *testing.T) {
	t.Helper()
	for _, k := range []string{"HOST", "PORT", "LOG_LEVEL", "DATABASE_URL",
		"RATE_LIMIT_WINDOW_MS", "RATE_LIMIT_MAX", "CORS_ORIGINS", "TASKGATE_ROOT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestResolve_UnknownEnvironment(t *testing.T) {
	if _, err := Resolve("prod", testSecrets()); err == nil {
		t.Fatal("expected error for unknown environment name")
	}
}

func TestResolve_Deterministic(t *testing.T) {
	clearWellKnown(t)
	secrets := testSecrets()

	a, err := Resolve(EnvDevelopment, secrets)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	b, err := Resolve(EnvDevelopment, secrets)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("two resolves differ:\n%+v\n%+v", a, b)
	}
}

func TestResolve_OverlayWins(t *testing.T) {
	clearWellKnown(t)

	dev, err := Resolve(EnvDevelopment, testSecrets())
	if err != nil {
		t.Fatalf("resolve development: %v", err)
	}
	prod, err := Resolve(EnvProduction, testSecrets())
	if err != nil {
		t.Fatalf("resolve production: %v", err)
	}

	// Development overlay flips logging only; the base CORS list survives.
	if dev.Logging.Level != "debug" || !dev.Logging.Console {
		t.Fatalf("development logging overlay not applied: %+v", dev.Logging)
	}
	if len(dev.Security.CORSOrigins) == 0 {
		t.Fatal("development should inherit the base CORS list")
	}

	// Production overlay replaces the CORS list with an empty one (strict
	// by default) and switches the database type.
	if len(prod.Security.CORSOrigins) != 0 {
		t.Fatalf("production CORS list = %v, want empty", prod.Security.CORSOrigins)
	}
	if prod.Database.Type != "mysql" {
		t.Fatalf("production database.type = %q, want mysql", prod.Database.Type)
	}

	// Untouched leaves keep base values in every environment.
	if dev.Server.Port != 8080 || prod.Server.Port != 8080 {
		t.Fatalf("base port should survive both overlays: %d/%d",
			dev.Server.Port, prod.Server.Port)
	}
}

func TestResolve_WellKnownEnvOverrides(t *testing.T) {
	clearWellKnown(t)
	t.Setenv("PORT", "9090")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("RATE_LIMIT_WINDOW_MS", "900000")
	t.Setenv("RATE_LIMIT_MAX", "5")

	cfg, err := Resolve(EnvDevelopment, testSecrets())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Server.Host != "127.0.0.1" {
		t.Fatalf("server overrides not applied: %+v", cfg.Server)
	}
	if cfg.Logging.Level != "error" {
		t.Fatalf("LOG_LEVEL not lowered+applied: %q", cfg.Logging.Level)
	}
	if cfg.Security.RateLimitWindow.Milliseconds() != 900000 {
		t.Fatalf("window = %v, want 15m", cfg.Security.RateLimitWindow)
	}
	if cfg.Security.RateLimitMax != 5 {
		t.Fatalf("max = %d, want 5", cfg.Security.RateLimitMax)
	}
}

func TestResolve_BadPortIsAnError(t *testing.T) {
	clearWellKnown(t)
	t.Setenv("PORT", "eighty")

	if _, err := Resolve(EnvDevelopment, testSecrets()); err == nil {
		t.Fatal("expected error for non-numeric PORT")
	}
}

func TestResolve_CORSOriginsSplit(t *testing.T) {
	clearWellKnown(t)
	t.Setenv("CORS_ORIGINS", " https://a.example , https://b.example ,, ")

	cfg, err := Resolve(EnvProduction, testSecrets())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, want) {
		t.Fatalf("origins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
}

func TestSplitOrigins_Empty(t *testing.T) {
	if got := SplitOrigins(""); len(got) != 0 {
		t.Fatalf("SplitOrigins(\"\") = %v, want empty", got)
	}
}
