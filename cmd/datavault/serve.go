package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"

	"github.com/erazemk/datavault/internal/api"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the JSON API and Prometheus metrics over HTTP" }
func (*serveCmd) Usage() string {
	return `datavault serve [-addr <host:port>]

  Serves the item API under /api/ and metrics under /metrics until SIGINT or
  SIGTERM, then shuts down gracefully.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "listen address (overrides the config)")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	addr := a.cfg.Addr
	if c.addr != "" {
		addr = c.addr
	}

	server := &http.Server{
		Addr: addr,
		Handler: api.NewRouter(api.Deps{
			DB:       a.db,
			Repo:     a.repo,
			Gateway:  a.gateway,
			Metrics:  a.metrics,
			Currency: a.cfg.Currency,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", addr, "items", a.repo.Len(), "suggestions", a.gateway != nil)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		return subcommands.ExitFailure
	}

	slog.Info("server stopped, closing database")
	return subcommands.ExitSuccess
}
