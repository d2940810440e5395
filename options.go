package docpress

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-docpress/internal/config"
	"github.com/alnah/go-docpress/internal/metrics"
	"github.com/alnah/go-docpress/internal/model"
	"github.com/alnah/go-docpress/internal/registry"
)

// Option configures a Generator.
type Option func(*Generator)

// Syncer mirrors registry entries into an external store.
type Syncer interface {
	Sync(ctx context.Context, entries []registry.Entry) error
}

// WithConfig replaces the default configuration. The config is validated
// by NewGenerator.
func WithConfig(cfg *config.Config) Option {
	return func(g *Generator) {
		if cfg != nil {
			g.cfg = cfg
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithRoutes replaces the default handler chain.
func WithRoutes(routes ...Route) Option {
	return func(g *Generator) {
		g.routes = append([]Route(nil), routes...)
	}
}

// WithClock injects the time source used for registry and PDF timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithMetrics records run metrics.
func WithMetrics(m *metrics.Recorder) Option {
	return func(g *Generator) { g.metrics = m }
}

// WithStore syncs registry entries after every run.
func WithStore(s Syncer) Option {
	return func(g *Generator) { g.store = s }
}

// WithWorkers sets how many tasks run at once.
// Panics if n <= 0 (programmer error, similar to time.NewTicker).
func WithWorkers(n int) Option {
	if n <= 0 {
		panic("docpress: WithWorkers count must be positive")
	}
	return func(g *Generator) {
		g.workers = n
	}
}

// CanonicalSettings selects the variant written to a document's canonical
// path. Zero fields fall back to the configuration.
type CanonicalSettings struct {
	Tier    model.Tier
	Format  model.Format
	Quality model.Quality
}

// RunOptions narrows a single run.
type RunOptions struct {
	// Only keeps documents whose id equals, or matches as a doublestar
	// pattern, one of the entries. Empty keeps all.
	Only          []string
	SkipCanonical bool
	SkipTiered    bool
	// Formats and Qualities filter layout tasks. Empty means all.
	Formats   []model.Format
	Qualities []model.Quality
	// Force regenerates fresh artifacts.
	Force bool
	// ScanOnly rebuilds the registry without dispatching.
	ScanOnly  bool
	Canonical CanonicalSettings
}
