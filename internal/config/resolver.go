// internal/config/resolver.go
//
// Configuration resolver.
//
// Context
// -------
// `Resolve(env, secrets)` builds one immutable `Config` from four layers
// (highest precedence last):
//
//   1. Hard-coded base defaults (defaults.go) — every domain covered.
//   2. The overlay registered for the requested environment.
//   3. Optional `conf/local.yaml` under the runtime root — developer
//      overrides, skipped silently when absent.
//   4. Environment variables — `TASKGATE_`-prefixed generic overrides
//      (`TASKGATE_SERVER__PORT → server.port`), then the well-known names
//      from the deployment contract (PORT, HOST, LOG_LEVEL, DATABASE_URL,
//      CORS_ORIGINS, RATE_LIMIT_WINDOW_MS, RATE_LIMIT_MAX).
//
// Koanf performs the deep merge: nested maps merge recursively, everything
// else is replaced outright by the higher layer.  Secret fields resolve
// through SecretSource, never through a literal, so a missing production
// secret surfaces here as an error before any listener exists.
//
// Resolution is deterministic for a fixed environment and variable set,
// and all-or-nothing: the caller gets a fully-built tree or an error.
//
// Instrumentation
// ---------------
//   • DEBUG spans — layer loads, env overlay.
//   • ERROR spans — yaml parse, unmarshal, secret failures.
//   • Logs use the global sugared logger so early boot issues surface on
//     the bootstrap console before the file logger is installed.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// localOverride is the optional developer layer under the runtime root.
const localOverride = "conf/local.yaml"

/*──────────────────────────── root discovery ───────────────────────────────*/

// Root exposes the runtime root for consumers that build paths off it
// (logger, storage).
func Root() string { return rootDir() }

// rootDir resolves TASKGATE_ROOT, or falls back to the working directory.
// Logs, data, and the optional local override all hang off this path.
func rootDir() string {
	if r := os.Getenv("TASKGATE_ROOT"); r != "" {
		return r
	}
	wd, _ := os.Getwd()
	return wd
}

/*─────────────────────────────── resolver ──────────────────────────────────*/

// Resolve builds the effective configuration for the named environment.
// The returned Config is complete but not yet judged; run Validate on it
// before serving traffic.
func Resolve(environment string, secrets *SecretSource) (*Config, error) {
	if !ValidEnvironment(environment) {
		return nil, fmt.Errorf("unknown environment %q (want development, test, staging, or production)", environment)
	}

	root := rootDir()
	k := koanf.New(".")

	// Layer 1: base defaults.
	if err := k.Load(confmap.Provider(baseDefaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load base defaults: %w", err)
	}

	// Layer 2: environment overlay.
	if err := k.Load(confmap.Provider(overlays()[environment], "."), nil); err != nil {
		return nil, fmt.Errorf("load %s overlay: %w", environment, err)
	}
	zap.S().Debugw("config overlay merged", "environment", environment)

	// Layer 3: optional local override file.
	localPath := filepath.Join(root, localOverride)
	if _, err := os.Stat(localPath); err == nil {
		if err := k.Load(file.Provider(localPath), yaml.Parser()); err != nil {
			zap.S().Errorw("config local override load failed", "file", localPath, "err", err)
			return nil, err
		}
		zap.S().Debugw("config local override merged", "file", localPath)
	}

	// Layer 4a: generic env overrides, TASKGATE_SERVER__PORT → server.port.
	if err := k.Load(env.Provider("TASKGATE_", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, "TASKGATE_"), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	// Layer 4b: the well-known deployment variables.
	wellKnown, err := wellKnownEnv()
	if err != nil {
		return nil, err
	}
	if len(wellKnown) > 0 {
		if err := k.Load(confmap.Provider(wellKnown, "."), nil); err != nil {
			return nil, fmt.Errorf("load env overrides: %w", err)
		}
	}

	// Secret-backed fields go through SecretSource, never literals.  A
	// production refusal leaves the field empty rather than aborting, so
	// the validator can report EVERY missing secret in one pass; Gate
	// still refuses to serve.
	secretValues := map[string]any{}
	for _, f := range secretFields {
		v, err := secrets.RequireOrFail(f.envVar, environment)
		if err != nil {
			zap.S().Errorw("config secret resolution failed", "field", f.path, "err", err)
			continue
		}
		secretValues[f.path] = v
	}
	if err := k.Load(confmap.Provider(secretValues, "."), nil); err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}
	cfg.Environment = environment

	zap.S().Infow("config resolved",
		"environment", environment,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"database", cfg.Database.Type,
		"cors_origins", len(cfg.Security.CORSOrigins),
	)
	return &cfg, nil
}

/*───────────────────────── well-known variables ────────────────────────────*/

// wellKnownEnv maps the deployment contract's flat variable names onto
// config paths.  Unset variables contribute nothing; malformed numerics
// are errors, not silent fallbacks.
func wellKnownEnv() (map[string]any, error) {
	out := map[string]any{}

	if v := os.Getenv("HOST"); v != "" {
		out["server.host"] = v
	}
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("PORT must be an integer, got %q", v)
		}
		out["server.port"] = p
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		out["logging.level"] = strings.ToLower(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		out["database.url"] = v
	}
	if v := os.Getenv("RATE_LIMIT_WINDOW_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("RATE_LIMIT_WINDOW_MS must be an integer, got %q", v)
		}
		out["security.rate_limit_window"] = strconv.Itoa(ms) + "ms"
	}
	if v := os.Getenv("RATE_LIMIT_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("RATE_LIMIT_MAX must be an integer, got %q", v)
		}
		out["security.rate_limit_max"] = n
	}

	// CORS_ORIGINS: comma-separated, trimmed, empties dropped.  Absent
	// means "use the overlay's literal list" (empty in production).
	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok {
		out["security.cors_origins"] = SplitOrigins(v)
	}

	return out, nil
}

// SplitOrigins turns "a, b,,c" into ["a","b","c"].
func SplitOrigins(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
