package main

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	flag "github.com/spf13/pflag"

	docpress "github.com/alnah/go-docpress"
	"github.com/alnah/go-docpress/internal/config"
	"github.com/alnah/go-docpress/internal/model"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// canonicalFlags override the canonical variant.
type canonicalFlags struct {
	tier    string
	format  string
	quality string
}

// generateFlags holds all flags for generate and watch.
type generateFlags struct {
	only          []string
	skipCanonical bool
	skipTiered    bool
	formats       []string
	qualities     []string
	force         bool
	scanOnly      bool
	canonical     canonicalFlags
	workers       int
	output        string
	db            string
	metricsFile   string
}

// register adds the generation flags to fs.
func (f *generateFlags) register(fs *flag.FlagSet) {
	fs.StringSliceVar(&f.only, "only", nil, "only document ids matching these patterns (repeatable, comma-separated)")
	fs.BoolVar(&f.skipCanonical, "skip-canonical", false, "skip canonical artifacts")
	fs.BoolVar(&f.skipTiered, "skip-tiered", false, "skip tier artifacts")
	fs.StringSliceVar(&f.formats, "formats", nil, "restrict formats (A4,Letter,A3)")
	fs.StringSliceVar(&f.qualities, "quality", nil, "restrict qualities (draft,standard,premium,enterprise)")
	fs.BoolVar(&f.force, "force", false, "regenerate fresh artifacts")
	fs.BoolVar(&f.scanOnly, "scan-only", false, "scan sources and emit the registry without generating")
	fs.StringVar(&f.canonical.tier, "canonical-tier", "", "tier of the canonical artifact")
	fs.StringVar(&f.canonical.format, "canonical-format", "", "format of the canonical artifact")
	fs.StringVar(&f.canonical.quality, "canonical-quality", "", "quality of the canonical artifact")
	fs.IntVarP(&f.workers, "workers", "w", 0, fmt.Sprintf("parallel tasks, 1-%d (default from config)", config.MaxWorkers))
	fs.StringVarP(&f.output, "output", "o", "", "artifact output directory")
	fs.StringVar(&f.db, "db", "", "mirror the registry into this SQLite database")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
}

// runOptions parses the filter flags.
func (f *generateFlags) runOptions() (docpress.RunOptions, error) {
	opts := docpress.RunOptions{
		Only:          f.only,
		SkipCanonical: f.skipCanonical,
		SkipTiered:    f.skipTiered,
		Force:         f.force,
		ScanOnly:      f.scanOnly,
	}

	var err error
	if opts.Formats, err = model.ParseFormats(f.formats); err != nil {
		return opts, fmt.Errorf("--formats: %w", err)
	}
	if opts.Qualities, err = model.ParseQualities(f.qualities); err != nil {
		return opts, fmt.Errorf("--quality: %w", err)
	}
	if f.canonical.tier != "" {
		if opts.Canonical.Tier, err = model.ParseTier(f.canonical.tier); err != nil {
			return opts, fmt.Errorf("--canonical-tier: %w", err)
		}
	}
	if f.canonical.format != "" {
		if opts.Canonical.Format, err = model.ParseFormat(f.canonical.format); err != nil {
			return opts, fmt.Errorf("--canonical-format: %w", err)
		}
	}
	if f.canonical.quality != "" {
		if opts.Canonical.Quality, err = model.ParseQuality(f.canonical.quality); err != nil {
			return opts, fmt.Errorf("--canonical-quality: %w", err)
		}
	}
	for _, p := range opts.Only {
		if !doublestar.ValidatePattern(p) {
			return opts, fmt.Errorf("%w: --only: bad pattern %q", errUsage, p)
		}
	}
	return opts, nil
}

// apply overrides config values with explicitly set flags.
func (f *generateFlags) apply(cfg *config.Config, changed func(string) bool) error {
	if changed("workers") {
		if f.workers < 1 || f.workers > config.MaxWorkers {
			return fmt.Errorf("%w: --workers must be between 1 and %d, got %d", errUsage, config.MaxWorkers, f.workers)
		}
		cfg.Generation.Workers = f.workers
	}
	if f.output != "" {
		setOutputDir(cfg, f.output)
	}
	if f.db != "" {
		cfg.Registry.Database = f.db
	}
	if f.metricsFile != "" {
		cfg.Registry.MetricsFile = f.metricsFile
	}
	return nil
}

// setOutputDir moves the artifact root. Registry files stored directly
// in the old root move with it.
func setOutputDir(cfg *config.Config, dir string) {
	old := filepath.Clean(cfg.Output.Dir)
	cfg.Output.Dir = dir
	for _, p := range []*string{&cfg.Registry.Path, &cfg.Registry.Manifest} {
		if *p != "" && filepath.Dir(*p) == old {
			*p = filepath.Join(dir, filepath.Base(*p))
		}
	}
}
