// internal/config/model.go
//
// Typed configuration model for taskgate.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/resolver.go` builds from four overlay layers (highest
// precedence last):
//
//   • hard-coded base defaults            – every domain, safe values,
//   • per-environment overlay             – development/test/staging/production,
//   • optional `conf/local.yaml`          – developer overrides, never committed,
//   • environment variables               – TASKGATE_-prefixed plus the
//     well-known names (PORT, SESSION_SECRET, CORS_ORIGINS, …).
//
// Secret-bearing fields (`security.session_secret`, `security.jwt_secret`)
// are never stored as literals in the overlay tables; the resolver routes
// them through SecretSource, which consults Vault, then the process
// environment, then a generated fallback (forbidden in production).
//
// Validation happens right after unmarshal; `Validate` aggregates every
// problem into a list so operators see all of them at once instead of
// fixing one per restart.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Environment` field is filled at runtime; overlays must not set it.
//   • Once resolved, a Config is never mutated.  A changed environment means
//     a new process, and a new Resolve.
//   • Oxford commas, two spaces after periods.

package config

import "time"

//
// Environment names
//

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// ValidEnvironment reports whether name is one of the four supported
// environments.
func ValidEnvironment(name string) bool {
	switch name {
	case EnvDevelopment, EnvTest, EnvStaging, EnvProduction:
		return true
	}
	return false
}

//
// Server section
//

// Server holds listener and timeout tunables.
type Server struct {
	Host          string        `koanf:"host"           validate:"required"`
	Port          int           `koanf:"port"           validate:"min=1,max=65535"`
	TrustProxy    bool          `koanf:"trust_proxy"`
	ReadTimeout   time.Duration `koanf:"read_timeout"`
	WriteTimeout  time.Duration `koanf:"write_timeout"`
	IdleTimeout   time.Duration `koanf:"idle_timeout"`
	ShutdownGrace time.Duration `koanf:"shutdown_grace"`
}

//
// Security section
//

// Security holds secrets, the CORS allow-list, and rate-limit windows.
//
// SessionSecret and JWTSecret come from SecretSource, never from the
// overlay tables, so the values in a resolved Config are either operator
// supplied or freshly generated (non-production only).
type Security struct {
	SessionSecret   string        `koanf:"session_secret"`
	JWTSecret       string        `koanf:"jwt_secret"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	RateLimitMax    int           `koanf:"rate_limit_max"`
	StrictWindow    time.Duration `koanf:"strict_window"`
	StrictMax       int           `koanf:"strict_max"`
	StrictPrefixes  []string      `koanf:"strict_prefixes"`
}

//
// Logging section
//

// Logging mirrors the knobs internal/logger passes to zap and lumberjack.
type Logging struct {
	Level      string `koanf:"level" validate:"oneof=debug info warn error"`
	Dir        string `koanf:"dir"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Console    bool   `koanf:"console"`
}

//
// Monitoring section
//

// Monitoring covers the health/metrics surface and request-log thresholds.
type Monitoring struct {
	HealthPath  string        `koanf:"health_path"  validate:"required,startswith=/"`
	MetricsPath string        `koanf:"metrics_path" validate:"required,startswith=/"`
	SlowRequest time.Duration `koanf:"slow_request"`
	GeoIPDB     string        `koanf:"geoip_db"`
}

//
// Performance section
//

// Performance holds the request-shape ceilings the sanitize stage enforces.
type Performance struct {
	MaxBodyBytes  int64 `koanf:"max_body_bytes"  validate:"min=1"`
	MaxParamCount int   `koanf:"max_param_count" validate:"min=1"`
}

//
// Database section
//

// Database selects the task store backend.  "memory" needs no URL;
// anything else requires one (MissingRequiredURL otherwise).
type Database struct {
	Type         string `koanf:"type" validate:"oneof=memory mysql"`
	URL          string `koanf:"url"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
}

//
// Storage section
//

// Storage points at the on-disk working area (logs live under it too).
type Storage struct {
	DataDir        string `koanf:"data_dir" validate:"required"`
	MaxUploadBytes int64  `koanf:"max_upload_bytes"`
}

//
// Features section
//

// Features are coarse on/off switches; overlays flip them per environment.
type Features struct {
	PrometheusEndpoint bool `koanf:"prometheus_endpoint"`
	RequestLogging     bool `koanf:"request_logging"`
	DetailedErrors     bool `koanf:"detailed_errors"`
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Resolve.  It is passed by
// reference to every component constructor; nothing reads it ambiently.
type Config struct {
	Server      Server      `koanf:"server"`
	Security    Security    `koanf:"security"`
	Logging     Logging     `koanf:"logging"`
	Monitoring  Monitoring  `koanf:"monitoring"`
	Performance Performance `koanf:"performance"`
	Database    Database    `koanf:"database"`
	Storage     Storage     `koanf:"storage"`
	Features    Features    `koanf:"features"`

	Environment string `koanf:"-"` // set by Resolve, never by overlays
}

// Production reports whether the resolved environment is production.
func (c *Config) Production() bool { return c.Environment == EnvProduction }
