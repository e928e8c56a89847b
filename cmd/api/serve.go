package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"child-immunization-history/internal/middleware"
	"child-immunization-history/internal/router"
	"child-immunization-history/internal/worker/cleanup"
	"child-immunization-history/internal/worker/sweep"

	"github.com/spf13/cobra"
)

var withWorkers bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Levanta el API HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&withWorkers, "with-workers", false, "corre también el barrido y la purga en este proceso")
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RPS:   a.cfg.RateLimitRPS,
		Burst: a.cfg.RateLimitBurst,
	})
	defer limiter.Stop()
	a.opts.RateLimiter = limiter

	srv := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      router.NewRouter(a.opts, a.svcs),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	if withWorkers {
		go sweep.NewScheduler(a.svcs.Children, a.svcs.Notifications, a.log, a.opts.Metrics, a.cfg.SweepConcurrency).
			Start(ctx, a.cfg.SweepInterval)
		go cleanup.NewJob(a.svcs.Notifications, a.log, a.cfg.Retention()).Start(ctx, 24*time.Hour)
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
