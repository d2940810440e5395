package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	docpress "github.com/alnah/go-docpress"
	"github.com/alnah/go-docpress/internal/metrics"
	"github.com/alnah/go-docpress/internal/store"
)

func newGenerateCmd(a *app) *cobra.Command {
	f := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate every pending artifact and emit the registry",
		Long: `Generate scans the source roots, expands every document into its tier,
format and quality variants, renders what is missing or stale, and writes
the registry and manifest.

Examples:
  # Full run
  docpress generate

  # Only board documents, US Letter, regenerating fresh files
  docpress generate --only 'board-*' --formats Letter --force

  # Refresh registry.json without rendering
  docpress generate --scan-only`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runGenerate(cmd.Context(), f, cmd.Flags().Changed)
		},
	}
	addGenerateFlags(cmd, f)
	return cmd
}

// runGenerate performs one run and prints the summary.
func (a *app) runGenerate(ctx context.Context, f *generateFlags, changed func(string) bool) error {
	opts, err := f.runOptions()
	if err != nil {
		return err
	}
	if err := f.apply(a.cfg, changed); err != nil {
		return err
	}

	gen, cleanup, err := a.newGenerator(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := gen.Run(ctx, opts)
	if report != nil && !a.flags.quiet {
		report.WriteSummary(a.env.Stdout)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("interrupted: %w", err)
		}
		return err
	}
	if n := report.HardFailures(); n > 0 {
		return fmt.Errorf("%w: %d hard failure(s)", errHardFailures, n)
	}
	return nil
}

// newGenerator wires the generator with the CLI's logger, metrics and
// optional SQLite mirror. cleanup releases the browser and database.
func (a *app) newGenerator(ctx context.Context) (*docpress.Generator, func(), error) {
	cfg := a.cfg
	opts := []docpress.Option{
		docpress.WithConfig(cfg),
		docpress.WithLogger(a.logger),
		docpress.WithClock(a.env.Now),
		docpress.WithMetrics(metrics.New()),
	}
	if cfg.Generation.Workers > 0 {
		opts = append(opts, docpress.WithWorkers(docpress.ResolvePoolSize(cfg.Generation.Workers)))
	}

	var st *store.Store
	if path := cfg.Registry.Database; path != "" {
		var err error
		if st, err = store.Open(ctx, path); err != nil {
			return nil, nil, fmt.Errorf("opening registry database: %w", err)
		}
		opts = append(opts, docpress.WithStore(st))
	}

	gen, err := docpress.NewGenerator(opts...)
	if err != nil {
		if st != nil {
			_ = st.Close()
		}
		return nil, nil, err
	}

	cleanup := func() {
		if err := gen.Close(); err != nil {
			a.logger.Warn("closing generator", zap.Error(err))
		}
		if st != nil {
			if err := st.Close(); err != nil {
				a.logger.Warn("closing registry database", zap.Error(err))
			}
		}
	}
	return gen, cleanup, nil
}
