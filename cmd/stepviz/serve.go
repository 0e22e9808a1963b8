package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/aretw0/stepviz"
	"github.com/aretw0/stepviz/internal/presentation/tui"
	httpAdapter "github.com/aretw0/stepviz/pkg/adapters/http"
	"github.com/aretw0/stepviz/pkg/adapters/redis"
	"github.com/aretw0/stepviz/pkg/observability"
	"github.com/aretw0/stepviz/pkg/session"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves surfaces over HTTP: each surface holds a step player, a live run and a
binary search tree, and streams its frames as Server-Sent Events.
Sequences are cached in Redis and surface locks are shared through it when
redis.addr is configured; otherwise everything stays in memory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if !cmd.Flags().Changed("addr") {
			addr = cfg.HTTP.Addr
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		metrics := observability.NewMetrics()
		var engineOpts []stepviz.Option
		managerOpts := []session.Option{session.WithLogger(logger)}
		if cfg.Redis.Addr != "" {
			client := goredis.NewClient(&goredis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer client.Close()
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis unavailable at %s: %w", cfg.Redis.Addr, err)
			}
			engineOpts = append(engineOpts, stepviz.WithCache(redis.NewFromClient(client,
				redis.WithPrefix(cfg.Redis.Prefix+"seq:"),
				redis.WithTTL(cfg.Redis.TTL),
			)))
			managerOpts = append(managerOpts, session.WithLocker(redis.NewLocker(client, cfg.Redis.Prefix)))
			logger.Info("using redis", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix)
		}

		eng := newEngine(metrics.Hooks(), engineOpts...)
		surfaces := session.NewManager(append(managerOpts, session.WithFactory(eng.SurfaceFactory()))...)
		srv := httpAdapter.NewServer(eng, surfaces,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetrics(metrics.Handler()),
			httpAdapter.WithDefaults(cfg.Params()),
		)

		httpServer := &http.Server{
			Addr:              addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(tui.NewOutput(os.Stdout), stepviz.Version)
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("stepviz server listening", "addr", addr)
			serverErrors <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				_ = httpServer.Close()
			}
			if err := surfaces.Close(shutdownCtx); err != nil {
				logger.Warn("failed to stop live runs", "err", err)
			}
		}
		logger.Info("stepviz server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on (default from config)")
}
