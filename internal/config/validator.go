// internal/config/validator.go
//
// Configuration validator.
//
// Context
// -------
// `Validate(cfg, env)` checks a resolved Config against the rules
// registered for that environment and returns every problem at once, so an
// operator fixes one restart's worth of mistakes, not one mistake per
// restart.  Two sources feed the list:
//
//   • go-playground/validator struct tags on the model (ranges, oneof,
//     required), translated into our kinds, and
//   • the environment rule table below (secret strength, production CORS,
//     conditional database URL).
//
// The caller decides severity: `Gate` makes any error fatal in production
// and advisory elsewhere.  That split is intentional; development and test
// must stay usable without full secrets.
//
// Notes
// -----
//   • Validation errors never reach a client.  They gate startup only.
//   • Oxford commas, two spaces after periods.

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

//
// Error kinds
//

// ErrorKind classifies a ValidationError.
type ErrorKind string

const (
	KindMissingSecret      ErrorKind = "MissingSecret"
	KindInvalidRange       ErrorKind = "InvalidRange"
	KindInvalidOrigin      ErrorKind = "InvalidOrigin"
	KindInvalidPort        ErrorKind = "InvalidPort"
	KindMissingRequiredURL ErrorKind = "MissingRequiredURL"
)

// ValidationError is one startup-gating configuration problem.
type ValidationError struct {
	Kind    ErrorKind
	Field   string // dotted config path, e.g. "security.session_secret"
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Kind, e.Field, e.Message)
}

//
// validator instance (package-level singleton)
//

var v = newValidator()

// newValidator wires the struct validator to report koanf tag names, so
// translated paths match the config tree instead of Go field names.
func newValidator() *validator.Validate {
	val := validator.New()
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return strings.ToLower(fld.Name)
		}
		return tag
	})
	return val
}

//
// Environment rule table
//

// rule inspects a resolved Config and reports zero or more problems.
type rule func(cfg *Config) []ValidationError

// rulesFor returns the checks registered for the environment.  The struct
// tags run for every environment; this table adds the conditional ones.
func rulesFor(environment string) []rule {
	common := []rule{ruleDatabaseURL, ruleRateLimitMax}
	if environment == EnvProduction {
		return append(common, ruleSecrets, ruleCORSOrigins)
	}
	return common
}

// devPlaceholders are substrings that mark a secret as a development
// placeholder rather than a real credential.
var devPlaceholders = []string{"dev-secret", "changeme", "change-me", "insecure", "placeholder"}

func ruleSecrets(cfg *Config) []ValidationError {
	check := func(field, value string) *ValidationError {
		if len(value) < 32 {
			return &ValidationError{Kind: KindMissingSecret, Field: field,
				Message: "must be at least 32 characters"}
		}
		lower := strings.ToLower(value)
		for _, p := range devPlaceholders {
			if strings.Contains(lower, p) {
				return &ValidationError{Kind: KindMissingSecret, Field: field,
					Message: fmt.Sprintf("contains development placeholder %q", p)}
			}
		}
		return nil
	}

	var out []ValidationError
	if e := check("security.session_secret", cfg.Security.SessionSecret); e != nil {
		out = append(out, *e)
	}
	if e := check("security.jwt_secret", cfg.Security.JWTSecret); e != nil {
		out = append(out, *e)
	}
	return out
}

func ruleCORSOrigins(cfg *Config) []ValidationError {
	if len(cfg.Security.CORSOrigins) == 0 {
		return []ValidationError{{Kind: KindInvalidOrigin, Field: "security.cors_origins",
			Message: "production requires an explicit CORS origin list; set CORS_ORIGINS"}}
	}
	return nil
}

func ruleRateLimitMax(cfg *Config) []ValidationError {
	if cfg.Security.RateLimitMax < 1 {
		return []ValidationError{{Kind: KindInvalidRange, Field: "security.rate_limit_max",
			Message: "must be at least 1"}}
	}
	return nil
}

func ruleDatabaseURL(cfg *Config) []ValidationError {
	if cfg.Database.Type != "memory" && strings.TrimSpace(cfg.Database.URL) == "" {
		return []ValidationError{{Kind: KindMissingRequiredURL, Field: "database.url",
			Message: fmt.Sprintf("required when database.type is %q; set DATABASE_URL", cfg.Database.Type)}}
	}
	return nil
}

//
// Public API
//

// Validate returns every problem found; an empty slice means the config is
// fit to serve.
func Validate(cfg *Config, environment string) []ValidationError {
	var out []ValidationError

	if err := v.Struct(cfg); err != nil {
		var ferrs validator.ValidationErrors
		if errors.As(err, &ferrs) {
			for _, fe := range ferrs {
				out = append(out, translate(fe))
			}
		} else {
			out = append(out, ValidationError{Kind: KindInvalidRange, Field: "config",
				Message: err.Error()})
		}
	}

	for _, r := range rulesFor(environment) {
		out = append(out, r(cfg)...)
	}
	return out
}

// Gate applies the caller policy from the deployment contract: in
// production any validation error refuses startup; elsewhere the caller is
// expected to log the list and continue.
func Gate(environment string, errs []ValidationError) error {
	if len(errs) == 0 || environment != EnvProduction {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("configuration invalid for production:\n  %s", strings.Join(msgs, "\n  "))
}

//
// Struct-tag translation
//

// translate maps a go-playground field error onto our taxonomy.
func translate(fe validator.FieldError) ValidationError {
	path := strings.TrimPrefix(fe.Namespace(), "Config.")
	kind := KindInvalidRange
	if path == "server.port" {
		kind = KindInvalidPort
	}
	return ValidationError{
		Kind:    kind,
		Field:   path,
		Message: fmt.Sprintf("failed %q validation (value %v)", fe.Tag(), fe.Value()),
	}
}
