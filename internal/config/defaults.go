// internal/config/defaults.go
//
// Base defaults and per-environment overlays, as data.
//
// Context
// -------
// The base tree covers every domain and option with a safe value; each
// environment registers one partial overlay that the resolver deep-merges
// on top (overlay wins at the leaf, nested maps merge recursively, no list
// concatenation).  Keeping the overlays as tables rather than code paths
// means adding an option touches exactly two places: the model struct and
// this file.
//
// Secret-bearing fields are deliberately absent here; see secretFields at
// the bottom and SecretSource in secrets.go.
//
// Notes
// -----
//   • Durations are strings ("15m", "500ms"); Koanf's unmarshal hook parses
//     them into time.Duration.
//   • The production CORS overlay is an EMPTY list on purpose: no origins
//     are permitted until CORS_ORIGINS is set explicitly.  The validator
//     enforces this as a hard startup failure.

package config

// baseDefaults returns the full defaults tree.  A fresh map per call, so a
// resolver run can never leak mutations into the next.
func baseDefaults() map[string]any {
	return map[string]any{
		"server": map[string]any{
			"host":           "0.0.0.0",
			"port":           8080,
			"trust_proxy":    false,
			"read_timeout":   "10s",
			"write_timeout":  "15s",
			"idle_timeout":   "60s",
			"shutdown_grace": "30s",
		},
		"security": map[string]any{
			"cors_origins":      []string{"http://localhost:3000"},
			"rate_limit_window": "1m",
			"rate_limit_max":    120,
			"strict_window":     "15m",
			"strict_max":        5,
			"strict_prefixes":   []string{"/auth"},
		},
		"logging": map[string]any{
			"level":        "info",
			"dir":          "logs",
			"max_size_mb":  50,
			"max_backups":  7,
			"max_age_days": 14,
			"console":      false,
		},
		"monitoring": map[string]any{
			"health_path":  "/health",
			"metrics_path": "/metrics",
			"slow_request": "500ms",
			"geoip_db":     "",
		},
		"performance": map[string]any{
			"max_body_bytes":  int64(1 << 20), // 1 MiB
			"max_param_count": 50,
		},
		"database": map[string]any{
			"type":           "memory",
			"url":            "",
			"max_open_conns": 10,
			"max_idle_conns": 5,
		},
		"storage": map[string]any{
			"data_dir":         "data",
			"max_upload_bytes": int64(10 << 20),
		},
		"features": map[string]any{
			"prometheus_endpoint": true,
			"request_logging":     true,
			"detailed_errors":     true,
		},
	}
}

// overlays maps environment name → partial tree merged over the base.
func overlays() map[string]map[string]any {
	return map[string]map[string]any{
		EnvDevelopment: {
			"logging": map[string]any{
				"level":   "debug",
				"console": true,
			},
		},
		EnvTest: {
			"logging": map[string]any{
				"level": "warn",
			},
			"security": map[string]any{
				"rate_limit_max": 1000, // keep test suites out of the limiter
			},
		},
		EnvStaging: {
			"security": map[string]any{
				"cors_origins": []string{},
			},
			"features": map[string]any{
				"detailed_errors": false,
			},
		},
		EnvProduction: {
			"security": map[string]any{
				"cors_origins": []string{}, // strict by default; set CORS_ORIGINS
			},
			"logging": map[string]any{
				"console": false,
			},
			"database": map[string]any{
				"type": "mysql",
			},
			"features": map[string]any{
				"detailed_errors": false,
			},
		},
	}
}

//
// Secret-backed fields
//

// secretField marks a config path whose value must come from SecretSource
// rather than a literal.  MinLen feeds the validator; the rejection policy
// (fail hard in production, generated fallback elsewhere) lives in
// SecretSource.RequireOrFail.
type secretField struct {
	path   string // dotted config path
	envVar string // process environment variable
	minLen int
}

var secretFields = []secretField{
	{path: "security.session_secret", envVar: "SESSION_SECRET", minLen: 32},
	{path: "security.jwt_secret", envVar: "JWT_SECRET", minLen: 32},
}
