// cmd/web/main.go
//
// taskgate – HTTP entry point.
//
// Startup life-cycle
// ------------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Install the bootstrap console logger so resolver and validator
//     events are visible before the file logger exists.
//
//  3. Resolve configuration for the selected environment (base defaults →
//     overlay → local.yaml → env vars, secrets through SecretSource).
//
//  4. Validate.  Production refuses to continue on any error — the
//     process never binds a listener with bad production config.  Other
//     environments log the list as warnings and continue.
//
//  5. Start the daily rotating logger (tees to console in a TTY).
//
//  6. Build the security pipeline and the business router (task CRUD,
//     health, metrics), wrap one in the other, and serve until a
//     termination signal drains us.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/oschwald/geoip2-golang"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/taskgate/internal/config"
	"github.com/yanizio/taskgate/internal/database"
	"github.com/yanizio/taskgate/internal/health"
	"github.com/yanizio/taskgate/internal/logger"
	"github.com/yanizio/taskgate/internal/metrics"
	"github.com/yanizio/taskgate/internal/pipeline"
	"github.com/yanizio/taskgate/internal/server"
	"github.com/yanizio/taskgate/internal/task"
)

const serverEnvPath = "/usr/local/etc/taskgate/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// environmentName reads the environment selector; development is the
// default so a bare `go run ./cmd/web` just works.
func environmentName() string {
	if v := os.Getenv("TASKGATE_ENV"); v != "" {
		return v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		return v
	}
	return config.EnvDevelopment
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	boot := logger.Bootstrap()
	envName := environmentName()

	//
	// ── 1.  Resolve and validate configuration ─────────────────────────
	//
	secrets := config.NewSecretSource()
	cfg, err := config.Resolve(envName, secrets)
	if err != nil {
		boot.Fatalf("resolve config: %v", err)
	}

	errs := config.Validate(cfg, envName)
	if err := config.Gate(envName, errs); err != nil {
		// Production with bad config: fail before any listener exists.
		boot.Fatalf("%v", err)
	}
	for _, e := range errs {
		boot.Warnw("config validation (advisory outside production)",
			"kind", e.Kind, "field", e.Field, "detail", e.Message)
	}

	//
	// ── 2.  Real logger, from the logging domain ───────────────────────
	//
	log, err := logger.New(config.Root(), cfg.Logging, runningInTTY())
	if err != nil {
		boot.Fatalf("start logger: %v", err)
	}

	//
	// ── 3.  Optional GeoIP reader for the request log ──────────────────
	//
	var geo *geoip2.Reader
	if cfg.Monitoring.GeoIPDB != "" {
		if geo, err = geoip2.Open(cfg.Monitoring.GeoIPDB); err != nil {
			log.Warnw("geoip db unavailable, country field disabled",
				"path", cfg.Monitoring.GeoIPDB, "err", err)
			geo = nil
		} else {
			defer geo.Close()
		}
	}

	//
	// ── 4.  Task store: memory or MySQL per the database domain ───────
	//
	var store task.Store
	switch cfg.Database.Type {
	case "mysql":
		db, err := database.Open(cfg.Database)
		if err != nil {
			log.Fatalf("connect database: %v", err)
		}
		defer db.Close()
		store = task.NewSQLStore(db)
		log.Infow("task store online", "backend", "mysql")
	default:
		store = task.NewMemoryStore()
		log.Infow("task store online", "backend", "memory")
	}

	//
	// ── 5.  Pipeline + router ──────────────────────────────────────────
	//
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := metrics.NewRecorder()
	pipe := pipeline.Build(cfg, pipeline.Deps{Log: log, Recorder: rec, Geo: geo})
	pipe.StartJanitors(ctx)

	verbose := cfg.Features.DetailedErrors && !cfg.Production()

	router := chi.NewRouter()
	hh := &health.Handler{Environment: cfg.Environment, Recorder: rec}
	router.Get(cfg.Monitoring.HealthPath, hh.Health)
	router.Get(cfg.Monitoring.MetricsPath, hh.Metrics)
	if cfg.Features.PrometheusEndpoint {
		router.Method(http.MethodGet, metrics.PromPath, promhttp.Handler())
	}
	router.Mount("/tasks", task.NewHandlers(store, verbose).Routes())

	// Static assets live under the runtime root; the security stage marks
	// them immutable.
	staticDir := filepath.Join(config.Root(), "static")
	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	//
	// ── 6.  Serve until drained ────────────────────────────────────────
	//
	srv := server.New(cfg.Server, pipe.Chain(router))
	if err := server.Run(ctx, srv, cfg.Server.ShutdownGrace, log); err != nil {
		log.Fatalf("http server: %v", err)
	}
}
