package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/toolrack/internal/server"
	"github.com/matzehuels/toolrack/pkg/cache"
	"github.com/matzehuels/toolrack/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr          string
	redisAddr     string
	redisPassword string
	redisDB       int
	maxBody       int64
	readTimeout   time.Duration
	writeTimeout  time.Duration
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:         ":8080",
		maxBody:      server.DefaultMaxBody,
		readTimeout:  30 * time.Second,
		writeTimeout: 60 * time.Second,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Plans and layouts are cached in memory, or in Redis when --redis is set so
that several instances share one cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "Redis address for the shared cache (host:port)")
	cmd.Flags().StringVar(&opts.redisPassword, "redis-password", "", "Redis password")
	cmd.Flags().IntVar(&opts.redisDB, "redis-db", 0, "Redis database number")
	cmd.Flags().Int64Var(&opts.maxBody, "max-body", opts.maxBody, "max request body size in bytes")
	cmd.Flags().DurationVar(&opts.readTimeout, "read-timeout", opts.readTimeout, "HTTP read timeout")
	cmd.Flags().DurationVar(&opts.writeTimeout, "write-timeout", opts.writeTimeout, "HTTP write timeout")

	return cmd
}

// serverCache picks the cache backing the API.
func serverCache(ctx context.Context, opts serveOpts) (cache.Cache, error) {
	if opts.redisAddr == "" {
		return cache.NewMemoryCache(), nil
	}
	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     opts.redisAddr,
		Password: opts.redisPassword,
		DB:       opts.redisDB,
	})
	if err != nil {
		return nil, err
	}
	return rc, nil
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	store, err := serverCache(ctx, opts)
	if err != nil {
		return fmt.Errorf("connect cache: %w", err)
	}
	runner := pipeline.NewRunner(store, nil, logger)
	defer runner.Close()

	srv := server.New(server.Config{Runner: runner, Logger: logger, MaxBody: opts.maxBody})
	httpServer := &http.Server{
		Addr:         opts.addr,
		Handler:      srv.Handler(),
		ReadTimeout:  opts.readTimeout,
		WriteTimeout: opts.writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	backend := "memory"
	if opts.redisAddr != "" {
		backend = "redis " + opts.redisAddr
	}
	printSuccess("Listening on %s", opts.addr)
	printDetail("Cache: %s", backend)

	select {
	case <-ctx.Done():
		printInfo("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	}
}
