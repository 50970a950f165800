// internal/config/validator_test.go
//
// Unit-tests for Validate and Gate: the production rule set, the
// advisory/fatal split, and the end-to-end "missing secrets gate startup"
// scenario from the deployment contract.

package config

import (
	"strings"
	"testing"
)

// resolved returns a Resolve'd config for env with both secrets present.
func resolved(t *testing.T, env string) *Config {
	t.Helper()
	clearWellKnown(t)
	cfg, err := Resolve(env, testSecrets())
	if err != nil {
		t.Fatalf("resolve %s: %v", env, err)
	}
	return cfg
}

// kinds collects the error kinds for a field (empty field matches all).
func kinds(errs []ValidationError, field string) []ErrorKind {
	var out []ErrorKind
	for _, e := range errs {
		if field == "" || e.Field == field {
			out = append(out, e.Kind)
		}
	}
	return out
}

func contains(ks []ErrorKind, k ErrorKind) bool {
	for _, got := range ks {
		if got == k {
			return true
		}
	}
	return false
}

func TestValidate_DevelopmentDefaultsAreClean(t *testing.T) {
	cfg := resolved(t, EnvDevelopment)
	if errs := Validate(cfg, EnvDevelopment); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestValidate_ProductionMissingSecrets(t *testing.T) {
	cfg := resolved(t, EnvProduction)
	cfg.Security.SessionSecret = ""
	cfg.Security.JWTSecret = ""

	errs := Validate(cfg, EnvProduction)
	if !contains(kinds(errs, "security.session_secret"), KindMissingSecret) {
		t.Fatalf("no MissingSecret for session_secret in %v", errs)
	}
	if !contains(kinds(errs, "security.jwt_secret"), KindMissingSecret) {
		t.Fatalf("no MissingSecret for jwt_secret in %v", errs)
	}
}

func TestValidate_ProductionAcceptsStrongSecret(t *testing.T) {
	cfg := resolved(t, EnvProduction)
	cfg.Security.CORSOrigins = []string{"https://ok.example"}
	cfg.Database.URL = "user:pw@tcp(db:3306)/tasks"

	errs := Validate(cfg, EnvProduction)
	if len(errs) != 0 {
		t.Fatalf("expected clean production config, got %v", errs)
	}
}

func TestValidate_ProductionPlaceholderSecret(t *testing.T) {
	cfg := resolved(t, EnvProduction)
	cfg.Security.SessionSecret = "dev-secret-" + strings.Repeat("x", 40)

	errs := Validate(cfg, EnvProduction)
	if !contains(kinds(errs, "security.session_secret"), KindMissingSecret) {
		t.Fatalf("placeholder secret not rejected: %v", errs)
	}
}

func TestValidate_ProductionEmptyOrigins(t *testing.T) {
	cfg := resolved(t, EnvProduction)

	errs := Validate(cfg, EnvProduction)
	if !contains(kinds(errs, "security.cors_origins"), KindInvalidOrigin) {
		t.Fatalf("empty production CORS list not rejected: %v", errs)
	}

	// The same empty list is fine in development; the rule is not
	// registered there.
	dev := resolved(t, EnvDevelopment)
	dev.Security.CORSOrigins = nil
	if errs := Validate(dev, EnvDevelopment); contains(kinds(errs, "security.cors_origins"), KindInvalidOrigin) {
		t.Fatalf("development should not require origins: %v", errs)
	}
}

func TestValidate_PortRange(t *testing.T) {
	cfg := resolved(t, EnvDevelopment)
	cfg.Server.Port = 0
	if errs := Validate(cfg, EnvDevelopment); !contains(kinds(errs, "server.port"), KindInvalidPort) {
		t.Fatalf("port 0 not rejected: %v", errs)
	}

	cfg.Server.Port = 70000
	if errs := Validate(cfg, EnvDevelopment); !contains(kinds(errs, "server.port"), KindInvalidPort) {
		t.Fatalf("port 70000 not rejected: %v", errs)
	}
}

func TestValidate_RateLimitMax(t *testing.T) {
	cfg := resolved(t, EnvDevelopment)
	cfg.Security.RateLimitMax = 0
	errs := Validate(cfg, EnvDevelopment)
	if !contains(kinds(errs, "security.rate_limit_max"), KindInvalidRange) {
		t.Fatalf("rate_limit_max 0 not rejected: %v", errs)
	}
}

func TestValidate_DatabaseURLRequired(t *testing.T) {
	cfg := resolved(t, EnvDevelopment)
	cfg.Database.Type = "mysql"
	cfg.Database.URL = ""
	errs := Validate(cfg, EnvDevelopment)
	if !contains(kinds(errs, "database.url"), KindMissingRequiredURL) {
		t.Fatalf("mysql without URL not rejected: %v", errs)
	}

	cfg.Database.Type = "memory"
	errs = Validate(cfg, EnvDevelopment)
	if contains(kinds(errs, "database.url"), KindMissingRequiredURL) {
		t.Fatalf("memory store must not require a URL: %v", errs)
	}
}

func TestGate_FatalOnlyInProduction(t *testing.T) {
	errs := []ValidationError{{Kind: KindMissingSecret, Field: "security.jwt_secret", Message: "absent"}}

	if err := Gate(EnvProduction, errs); err == nil {
		t.Fatal("production gate should refuse startup")
	}
	if err := Gate(EnvDevelopment, errs); err != nil {
		t.Fatalf("development gate should be advisory, got %v", err)
	}
	if err := Gate(EnvProduction, nil); err != nil {
		t.Fatalf("clean production config should pass, got %v", err)
	}
}

// TestProductionStartupGate is the end-to-end scenario: production with no
// secrets set resolves (with empty secret fields), then validation lists a
// MissingSecret for both fields, and Gate refuses — all before any
// listener could exist.
func TestProductionStartupGate(t *testing.T) {
	clearWellKnown(t)
	empty := NewSecretSource(WithLookup(fakeEnv(nil)), WithoutVault())

	cfg, err := Resolve(EnvProduction, empty)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	errs := Validate(cfg, EnvProduction)
	got := kinds(errs, "")
	if !contains(got, KindMissingSecret) {
		t.Fatalf("expected MissingSecret in %v", errs)
	}
	if err := Gate(EnvProduction, errs); err == nil {
		t.Fatal("gate must refuse production startup without secrets")
	}
}
