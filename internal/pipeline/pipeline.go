// internal/pipeline/pipeline.go
//
// Security-pipeline builder.
//
// Context
// -------
// `Build` turns a resolved, validated Config into the ordered stage list
// every request passes through; `Chain` folds the list onto the business
// handler.  The order is fixed and content-independent:
//
//   1. origin     – cheap allow-list check, preflight short-circuit
//   2. ratelimit  – stateful fixed windows, health/metrics exempt
//   3. sanitize   – input scrubbing plus size/parameter ceilings
//   4. security   – response headers and cache directives
//   5. requestlog – one structured entry + counters per request
//   6. recover    – error normalization around the handler
//
// Cheap, blocking checks run first; expensive or stateful work follows;
// response shaping and accounting wrap the handler last.  Stage 6 sits
// innermost so everything the handler throws is normalized before stages
// 4–5 shape and record the response.
//
// Notes
// -----
//   • Stages are instantiated once at startup; RateLimit is the only one
//     holding mutable state, owned by its limiters.
//   • Oxford commas, two spaces after periods.

package pipeline

import (
	"context"
	"net/http"
	"time"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"

	"github.com/yanizio/taskgate/internal/clientid"
	"github.com/yanizio/taskgate/internal/config"
	"github.com/yanizio/taskgate/internal/metrics"
	"github.com/yanizio/taskgate/internal/middleware"
	"github.com/yanizio/taskgate/internal/ratelimit"
)

// janitorEvery is how often limiter state is swept for expired windows.
const janitorEvery = 5 * time.Minute

// Stage is one named unit of request processing.
type Stage struct {
	Name string
	Wrap func(http.Handler) http.Handler
}

// Pipeline owns the stage list and the limiter state behind it.
type Pipeline struct {
	stages  []Stage
	general *ratelimit.Limiter
	strict  *ratelimit.Limiter
}

// Deps are the process-wide collaborators the stages need.
type Deps struct {
	Log      *zap.SugaredLogger
	Recorder *metrics.Recorder
	Geo      *geoip2.Reader // optional
}

// Build constructs the pipeline from configuration.  Call once at startup,
// after validation.
func Build(cfg *config.Config, deps Deps) *Pipeline {
	general := ratelimit.New(cfg.Security.RateLimitWindow, cfg.Security.RateLimitMax)
	strict := ratelimit.New(cfg.Security.StrictWindow, cfg.Security.StrictMax)

	verbose := cfg.Features.DetailedErrors && !cfg.Production()
	trustProxy := cfg.Server.TrustProxy

	stages := []Stage{
		{Name: "origin", Wrap: middleware.Origin(cfg.Security.CORSOrigins)},
		{Name: "ratelimit", Wrap: middleware.RateLimit(middleware.RateLimitOptions{
			General: general,
			Strict:  strict,
			KeyFn: func(r *http.Request) string {
				return clientid.Key(r, trustProxy)
			},
			Recorder:       deps.Recorder,
			Exempt:         []string{cfg.Monitoring.HealthPath, cfg.Monitoring.MetricsPath, metrics.PromPath},
			StrictPrefixes: cfg.Security.StrictPrefixes,
		})},
		{Name: "sanitize", Wrap: middleware.Sanitize(middleware.SanitizeOptions{
			MaxBodyBytes:  cfg.Performance.MaxBodyBytes,
			MaxParamCount: cfg.Performance.MaxParamCount,
		})},
		{Name: "security", Wrap: middleware.Security},
	}

	if cfg.Features.RequestLogging {
		stages = append(stages, Stage{
			Name: "requestlog",
			Wrap: middleware.RequestLog(middleware.RequestLogOptions{
				Log:        deps.Log,
				Recorder:   deps.Recorder,
				Slow:       cfg.Monitoring.SlowRequest,
				TrustProxy: trustProxy,
				Geo:        deps.Geo,
			}),
		})
	}

	// Recover sits innermost so the logged status reflects the
	// normalized response.
	stages = append(stages, Stage{Name: "recover", Wrap: middleware.Recover(verbose, deps.Log)})

	return &Pipeline{stages: stages, general: general, strict: strict}
}

// Stages exposes the ordered list (read-only by convention).
func (p *Pipeline) Stages() []Stage { return p.stages }

// Chain wraps handler with every stage, first stage outermost.
func (p *Pipeline) Chain(handler http.Handler) http.Handler {
	h := handler
	for i := len(p.stages) - 1; i >= 0; i-- {
		h = p.stages[i].Wrap(h)
	}
	return h
}

// StartJanitors begins periodic eviction of expired limiter entries.
func (p *Pipeline) StartJanitors(ctx context.Context) {
	p.general.StartJanitor(ctx, janitorEvery)
	p.strict.StartJanitor(ctx, janitorEvery)
}
