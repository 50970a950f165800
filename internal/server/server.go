// internal/server/server.go
//
// HTTP server construction and process lifecycle.
//
// Context
// -------
// `New` centralises the hardened timeouts so cmd/web doesn't repeat
// boilerplate:
//
//   • ReadTimeout   – abort slow-loris headers
//   • WriteTimeout  – cap total response time
//   • IdleTimeout   – close keep-alives on idle clients
//
// `Run` owns the rest of the lifecycle: bind the listener (never before
// the caller has validated configuration), log readiness, serve, and on
// SIGINT/SIGTERM stop accepting, drain in-flight requests for the bounded
// grace period, then exit.  The first signal starts the one and only
// grace timer; a second signal drops the handler, so the OS default
// (immediate termination) applies instead of restarting the countdown.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/taskgate/internal/config"
)

// New constructs an *http.Server from the server config domain.
func New(cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		// TLSConfig may be injected by callers (e.g., behind autocert).
	}
}

// Run binds, serves, and shuts down gracefully.  It returns once the
// server has fully stopped, or with the bind/serve error.
func Run(ctx context.Context, srv *http.Server, grace time.Duration, log *zap.SugaredLogger) error {
	if grace <= 0 {
		grace = 30 * time.Second
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", srv.Addr, err)
	}
	log.Infow("listening", "addr", srv.Addr)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		// Drop the signal handler: a second signal now terminates the
		// process outright instead of restarting the grace timer.
		stop()

		log.Infow("shutdown started", "grace", grace)
		shCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		log.Infow("shutdown complete")
		return nil
	})

	return g.Wait()
}
