package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	otelapi "go.opentelemetry.io/otel"

	"github.com/matzehuels/toolrack/internal/cli"
	tracing "github.com/matzehuels/toolrack/pkg/observability/otel"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var verbose bool

	// Pipeline, cache and HTTP hooks report to the global OpenTelemetry
	// providers, which are no-ops unless an SDK has been installed.
	hooks, err := tracing.New(
		otelapi.GetTracerProvider().Tracer("github.com/matzehuels/toolrack"),
		otelapi.GetMeterProvider().Meter("github.com/matzehuels/toolrack"),
	)
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	hooks.Register()

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	originalPreRun := root.PersistentPreRun
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := cli.LogInfo
		if verbose {
			level = cli.LogDebug
		}
		c.SetLogLevel(level)

		if originalPreRun != nil {
			originalPreRun(cmd, args)
		}
	}

	return root.ExecuteContext(ctx)
}
