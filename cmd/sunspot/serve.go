package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ashishkumar256/sunspot/config"
	"github.com/ashishkumar256/sunspot/health"
	"github.com/ashishkumar256/sunspot/observe"
	"github.com/ashishkumar256/sunspot/server"
)

func serveCommand(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long:  "Serve the sunspot API until SIGINT or SIGTERM, then drain in-flight requests.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	authn, err := newAuthenticator(cfg.Auth)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(ctx); err != nil {
			a.logger.Warn(ctx, "shutdown incomplete", observe.Field{Key: "error", Value: err.Error()})
		}
	}()

	agg := health.NewAggregator(health.AggregatorConfig{})
	agg.Register(health.NewCacheChecker(a.store))
	agg.Register(health.NewMemoryChecker(health.MemoryCheckerConfig{}))

	opts := server.Options{
		Config: server.Config{
			Addr:            cfg.Server.Addr,
			ReadTimeout:     cfg.Server.ReadTimeout,
			WriteTimeout:    cfg.Server.WriteTimeout,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
			Diagnostics:     cfg.Server.Diagnostics,
		},
		Resolver:   a.resolver,
		Health:     agg,
		Auth:       authn,
		AuthPrefix: cfg.Auth.Prefix,
		Observer:   a.obs,
	}

	reporter, err := server.NewSentryReporter(server.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		Release:          "sunspot@" + config.Version,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
	})
	if err != nil {
		return err
	}
	if reporter != nil {
		opts.Reporter = reporter
		defer reporter.Flush(2 * time.Second)
	}

	srv, err := server.New(opts)
	if err != nil {
		return err
	}
	if authn == nil {
		a.logger.Warn(ctx, "API key gate disabled")
	}
	return srv.Run(ctx)
}
