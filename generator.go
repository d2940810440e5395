package docpress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-docpress/internal/assets"
	"github.com/alnah/go-docpress/internal/catalog"
	"github.com/alnah/go-docpress/internal/config"
	"github.com/alnah/go-docpress/internal/convert"
	"github.com/alnah/go-docpress/internal/fileutil"
	"github.com/alnah/go-docpress/internal/hints"
	"github.com/alnah/go-docpress/internal/metrics"
	"github.com/alnah/go-docpress/internal/model"
	"github.com/alnah/go-docpress/internal/registry"
	"github.com/alnah/go-docpress/internal/render"
)

// Generator runs the scan → matrix → dispatch → promote → registry
// pipeline. A Generator may run many times; runs must not overlap.
type Generator struct {
	cfg     *config.Config
	logger  *zap.Logger
	now     func() time.Time
	workers int
	metrics *metrics.Recorder
	store   Syncer
	catalog *catalog.Catalog

	mu      sync.Mutex
	routes  []Route
	closers []io.Closer
}

// NewGenerator validates the configuration and returns a Generator.
// Without WithRoutes, the default chain is built on the first run that
// has work to dispatch, so fresh runs never need font assets.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		cfg:     config.DefaultConfig(),
		logger:  zap.NewNop(),
		now:     time.Now,
		workers: 1,
	}
	for _, opt := range opts {
		opt(g)
	}

	if err := g.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	cat, err := catalog.New(catalog.Options{Ignore: g.cfg.Sources.Ignore, Author: g.brand().Author})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	g.catalog = cat
	return g, nil
}

// Close releases long-lived handler resources such as the browser.
func (g *Generator) Close() error {
	g.mu.Lock()
	closers := g.closers
	g.closers = nil
	g.mu.Unlock()

	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (g *Generator) brand() render.Brand {
	b := render.Brand{Name: g.cfg.Brand.Name, Author: g.cfg.Brand.Author, Site: g.cfg.Brand.Site}
	d := render.DefaultBrand()
	if b.Name == "" {
		b.Name = d.Name
	}
	if b.Author == "" {
		b.Author = d.Author
	}
	if b.Site == "" {
		b.Site = d.Site
	}
	return b
}

// Run executes one generation run. Configuration errors end the run
// immediately; task failures are collected in the report. On
// cancellation, tasks not yet started are recorded as canceled, the
// registry is still emitted, and ctx.Err() is returned with the report.
func (g *Generator) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := g.logger.With(zap.String("run", runID))
	stats := &runStats{}

	docs, err := g.scan(ctx, opts, stats, log)
	if err != nil {
		return nil, err
	}
	plan := g.resolveMatrix(docs, opts)
	log.Info("matrix resolved", zap.Int("documents", len(docs)), zap.Int("tasks", len(plan)))

	var runErr error
	if !opts.ScanOnly {
		pending := g.filterFresh(plan, opts.Force, stats)
		if len(pending) > 0 || len(g.cfg.Generation.Mandatory) > 0 {
			routes, err := g.resolveRoutes(log)
			if err != nil {
				return stats.report(runID), err
			}
			if err := checkMandatory(docs, g.cfg.Generation.Mandatory, routes); err != nil {
				return stats.report(runID), err
			}
			runErr = g.dispatchAll(ctx, pending, routes, stats, log)
			if errors.Is(runErr, ErrConfig) {
				return stats.report(runID), runErr
			}
		}
	}

	entries, err := g.emit(context.WithoutCancel(ctx), docs, runID, log)
	report := stats.report(runID)
	report.Duration = time.Since(start)
	if err != nil {
		return report, err
	}
	report.Entries = len(entries)
	for _, e := range entries {
		if e.Exists {
			report.Available++
		}
	}
	g.metrics.ObserveRun(report.Duration, g.now(), report.Entries, report.Available, report.HardFailures())
	if path := g.cfg.Registry.MetricsFile; path != "" {
		if err := fileutil.EnsureParent(path); err != nil {
			return report, fmt.Errorf("writing metrics: %w", err)
		}
		if err := g.metrics.WriteTextfile(path); err != nil {
			return report, fmt.Errorf("writing metrics: %w", err)
		}
	}

	log.Info("run finished",
		zap.Int("generated", report.Generated),
		zap.Int("skipped", report.Skipped),
		zap.Int("placeholder", report.Placeholder),
		zap.Int("failed", report.Failed),
		zap.Int("canceled", report.Canceled),
		zap.Duration("duration", report.Duration))
	return report, runErr
}

// scan discovers and describes sources, keeping those selected by opts.Only.
func (g *Generator) scan(ctx context.Context, opts RunOptions, stats *runStats, log *zap.Logger) ([]model.Document, error) {
	roots := make([]catalog.Root, 0, len(g.cfg.Sources.Roots))
	for _, r := range g.cfg.Sources.Roots {
		roots = append(roots, catalog.Root{Path: r.Path, Bucket: r.Bucket, Folder: r.Folder})
	}
	res, err := g.catalog.Scan(ctx, roots)
	if err != nil {
		return nil, err
	}

	warnings := res.Warnings
	docs := make([]model.Document, 0, len(res.Records))
	for _, rec := range res.Records {
		if len(opts.Only) > 0 && !matchID(opts.Only, rec.ID) {
			continue
		}
		meta, w := g.catalog.Describe(rec)
		warnings = append(warnings, w...)
		docs = append(docs, model.Document{Source: rec, Meta: meta})
	}
	for _, w := range warnings {
		log.Warn("discovery warning", zap.String("kind", string(w.Kind)), zap.String("path", w.Path), zap.String("message", w.Message))
		stats.warn("%s", w)
	}
	g.metrics.AddScanWarnings(len(warnings))
	log.Info("scan complete", zap.Int("sources", len(res.Records)), zap.Int("selected", len(docs)), zap.Int("warnings", len(warnings)))
	return docs, nil
}

// filterFresh records up-to-date tasks as fresh and returns the rest.
func (g *Generator) filterFresh(plan []plannedTask, force bool, stats *runStats) []plannedTask {
	if force {
		return plan
	}
	slack := g.cfg.FreshSlack()
	var pending []plannedTask
	for _, pt := range plan {
		info, err := fileutil.Stat(pt.final)
		if err == nil && g.isReal(info) && !pt.doc.Source.ModTime.After(info.ModTime.Add(slack)) {
			stats.record(TaskResult{Key: pt.task.Key(), Outcome: OutcomeFresh, Path: pt.final})
			g.metrics.ObserveTask(string(OutcomeFresh), "", 0)
			continue
		}
		pending = append(pending, pt)
	}
	return pending
}

func (g *Generator) isReal(info fileutil.Info) bool {
	return info.Exists && info.Header && info.Size >= g.cfg.Generation.RealFloor
}

// resolveRoutes returns the injected routes or builds the default chain.
func (g *Generator) resolveRoutes(log *zap.Logger) ([]Route, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.routes != nil {
		return g.routes, nil
	}

	cfg := g.cfg
	loader, err := assets.NewSearchLoader(append([]string{cfg.Fonts.Dir}, assets.DefaultFontDirs...)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	fonts, err := render.LoadFonts(loader, render.FontNames{
		Heading:     cfg.Fonts.HeadingRegular,
		HeadingBold: cfg.Fonts.HeadingBold,
		Body:        cfg.Fonts.BodyRegular,
		BodyBold:    cfg.Fonts.BodyBold,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w%s", ErrConfig, err, hints.ForFontsMissing(loader.Dirs()))
	}
	renderer, err := render.New(fonts, g.brand(),
		render.WithClock(g.now),
		render.WithCompression(cfg.Generation.Compression))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	deps := RouteDeps{Renderer: renderer, Brand: g.brand().Name, Now: g.now}
	if cfg.Generation.Webpage {
		w := convert.NewWebpage(cfg.Converters.Browser)
		deps.Webpage = w
		g.closers = append(g.closers, w)
	}
	if bin := convert.FindOffice(cfg.Converters.Soffice); bin != "" {
		deps.Office = convert.NewOffice(bin, convert.WithOfficeTimeout(cfg.OfficeTimeout()))
		log.Info("office converter found", zap.String("soffice", bin))
	} else {
		log.Info("office converter not found; spreadsheets and decks use text or placeholder routes")
	}

	g.routes = DefaultRoutes(cfg, deps)
	return g.routes, nil
}

// checkMandatory fails when a mandatory document could only ever get a
// placeholder.
func checkMandatory(docs []model.Document, patterns []string, routes []Route) error {
	if len(patterns) == 0 {
		return nil
	}
	for _, doc := range docs {
		if !matchID(patterns, doc.Source.ID) {
			continue
		}
		routable := false
		for _, r := range routes {
			if !r.IsPlaceholder() && r.Match(doc.Source, doc.Meta) {
				routable = true
				break
			}
		}
		if !routable {
			return fmt.Errorf("%w: %s (%s)%s", ErrMissingHandler, doc.Source.ID, doc.Source.RelPath, hints.ForMandatory())
		}
	}
	return nil
}

// dispatchAll runs pending tasks, sequentially or on a bounded pool.
// Handlers get a context that ignores cancellation so a started task
// finishes; cancellation is honoured between tasks.
func (g *Generator) dispatchAll(ctx context.Context, pending []plannedTask, routes []Route, stats *runStats, log *zap.Logger) error {
	hctx := context.WithoutCancel(ctx)

	var (
		fatalMu sync.Mutex
		fatal   error
	)
	stopped := func() bool {
		fatalMu.Lock()
		defer fatalMu.Unlock()
		return fatal != nil || ctx.Err() != nil
	}

	work := func(pt plannedTask) {
		if stopped() {
			stats.record(TaskResult{Key: pt.task.Key(), Outcome: OutcomeCanceled, Path: pt.final})
			g.metrics.ObserveTask(string(OutcomeCanceled), "", 0)
			return
		}
		res := g.runTask(hctx, pt, routes, stats, log.With(zap.String("task", pt.task.Key())))
		if res.Err != nil && isConfigError(res.Err) {
			fatalMu.Lock()
			if fatal == nil {
				fatal = res.Err
			}
			fatalMu.Unlock()
		}
		stats.record(res)
		g.metrics.ObserveTask(string(res.Outcome), res.Route, res.Duration)
	}

	if g.workers <= 1 {
		for _, pt := range pending {
			work(pt)
		}
	} else {
		var eg errgroup.Group
		eg.SetLimit(g.workers)
		for _, pt := range pending {
			eg.Go(func() error {
				work(pt)
				return nil
			})
		}
		_ = eg.Wait()
	}

	if fatal != nil {
		if errors.Is(fatal, ErrConfig) {
			return fatal
		}
		return fmt.Errorf("%w: %w", ErrConfig, fatal)
	}
	return ctx.Err()
}

func isConfigError(err error) bool {
	return errors.Is(err, ErrConfig) || errors.Is(err, render.ErrFontMissing)
}

// runTask walks the route chain for one task.
func (g *Generator) runTask(ctx context.Context, pt plannedTask, routes []Route, stats *runStats, log *zap.Logger) TaskResult {
	start := time.Now()
	key := pt.task.Key()
	staged := fileutil.TempPath(pt.final)
	res := TaskResult{Key: key, Path: pt.final}

	var reasons []string
	matched := false
	for _, r := range routes {
		if !r.Match(pt.doc.Source, pt.doc.Meta) {
			continue
		}
		matched = true
		res.Route = r.Name

		// A crashed run may have left a staged file behind.
		_ = os.Remove(staged)
		job := convert.Job{Doc: pt.doc, Task: pt.task, Output: staged, Reason: strings.Join(reasons, "; ")}
		err := r.Handler.Convert(ctx, job)
		if err == nil {
			err = validateStaged(staged)
		}
		if err != nil {
			_ = os.Remove(staged)
			if isConfigError(err) {
				res.Outcome, res.Err, res.Duration = OutcomeFailed, err, time.Since(start)
				return res
			}
			log.Warn("route failed", zap.String("route", r.Name), zap.Error(err))
			reasons = append(reasons, r.Name+": "+err.Error())
			continue
		}

		outcome, err := g.promote(pt, staged, r.IsPlaceholder(), log)
		if err != nil {
			res.Outcome, res.Err, res.Duration = OutcomeFailed, err, time.Since(start)
			log.Error("promote failed", zap.Error(err))
			return res
		}
		res.Outcome, res.Duration = outcome, time.Since(start)
		switch outcome {
		case OutcomePlaceholder:
			stats.warn("%s: placeholder written: %s", key, strings.Join(reasons, "; "))
		case OutcomeKept:
			stats.warn("%s: undersized %s output rejected; existing artifact kept", key, r.Name)
		}
		return res
	}

	res.Outcome, res.Duration = OutcomeFailed, time.Since(start)
	if !matched {
		res.Err = fmt.Errorf("%w: %s (%s)", ErrNoRoute, pt.doc.Source.RelPath, pt.doc.Source.Kind)
	} else {
		res.Err = fmt.Errorf("%w: %s", ErrAllRoutesFailed, strings.Join(reasons, "; "))
	}
	log.Error("task failed", zap.Error(res.Err))
	return res
}

// validateStaged checks the handler wrote a file starting with %PDF.
func validateStaged(path string) error {
	ok, err := fileutil.HasPDFHeader(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: nothing written", ErrInvalidOutput)
		}
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if !ok {
		return fmt.Errorf("%w: missing %%PDF header", ErrInvalidOutput)
	}
	return nil
}

// promote renames the staged file over the final path, unless that would
// replace a real artifact with an undersized render of a lossy source,
// or with a placeholder.
func (g *Generator) promote(pt plannedTask, staged string, placeholder bool, log *zap.Logger) (Outcome, error) {
	existing, err := fileutil.Stat(pt.final)
	if err != nil {
		_ = os.Remove(staged)
		return "", fmt.Errorf("checking %s: %w", pt.final, err)
	}
	out, err := fileutil.Stat(staged)
	if err != nil {
		_ = os.Remove(staged)
		return "", fmt.Errorf("checking %s: %w", staged, err)
	}

	if g.isReal(existing) && out.Size < g.cfg.Generation.RealFloor && (placeholder || pt.doc.Source.Kind.Lossy()) {
		_ = os.Remove(staged)
		log.Warn("regression rejected",
			zap.Int64("existing_bytes", existing.Size),
			zap.Int64("new_bytes", out.Size))
		return OutcomeKept, nil
	}

	if same, err := sameContent(existing, out, pt.final, staged); err == nil && same {
		_ = os.Remove(staged)
		log.Debug("artifact unchanged", zap.String("path", pt.final))
		return OutcomeFresh, nil
	}

	if err := fileutil.Promote(staged, pt.final); err != nil {
		_ = os.Remove(staged)
		return "", err
	}
	info, err := fileutil.Inspect(pt.final)
	if err != nil {
		return "", fmt.Errorf("inspecting %s: %w", pt.final, err)
	}
	log.Info("artifact written", zap.String("path", pt.final), zap.Int64("bytes", info.Size), zap.String("sha256", info.SHA256))

	if placeholder {
		return OutcomePlaceholder, nil
	}
	return OutcomeGenerated, nil
}

// sameContent reports whether the staged output is byte-identical to the
// committed artifact, in which case the artifact is left untouched.
func sameContent(existing, staged fileutil.Info, final, stagedPath string) (bool, error) {
	if !existing.Exists || existing.Size != staged.Size {
		return false, nil
	}
	a, err := fileutil.Inspect(final)
	if err != nil {
		return false, err
	}
	b, err := fileutil.Inspect(stagedPath)
	if err != nil {
		return false, err
	}
	return a.SHA256 == b.SHA256, nil
}

// emit builds the registry and manifest from what is on disk and writes
// them, then syncs the store.
func (g *Generator) emit(ctx context.Context, docs []model.Document, runID string, log *zap.Logger) ([]registry.Entry, error) {
	byID := make(map[string]model.Document, len(docs))
	for _, d := range docs {
		byID[d.Source.ID] = d
	}
	lookup := func(t model.Task) model.Artifact {
		return g.artifact(g.pathFor(byID[t.DocumentID], t), log)
	}

	emitDocs := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		if len(d.Meta.Tiers) == 0 {
			d.Meta.Tiers = tiersOf(d)
		}
		emitDocs = append(emitDocs, d)
	}

	now := g.now()
	entries := registry.Build(emitDocs, lookup, now)
	if path := g.cfg.Registry.Path; path != "" {
		if err := registry.WriteJSON(path, entries); err != nil {
			return nil, fmt.Errorf("writing registry: %w", err)
		}
	}
	if path := g.cfg.Registry.Manifest; path != "" {
		if err := registry.WriteJSON(path, registry.BuildManifest(entries, now, runID)); err != nil {
			return nil, fmt.Errorf("writing manifest: %w", err)
		}
	}
	if g.store != nil {
		if err := g.store.Sync(ctx, entries); err != nil {
			return nil, fmt.Errorf("syncing store: %w", err)
		}
	}
	log.Info("registry emitted", zap.Int("entries", len(entries)))
	return entries, nil
}

// artifact observes one path on disk.
func (g *Generator) artifact(path string, log *zap.Logger) model.Artifact {
	a := model.Artifact{Path: path, PublicPath: g.publicPath(path)}
	info, err := fileutil.Inspect(path)
	if err != nil {
		log.Warn("inspecting artifact", zap.String("path", path), zap.Error(err))
		return a
	}
	if !info.Exists || !info.Header {
		return a
	}
	a.Exists = true
	a.Size = info.Size
	a.ModTime = info.ModTime
	a.MD5 = info.MD5
	a.SHA256 = info.SHA256
	a.Real = info.Size >= g.cfg.Generation.RealFloor
	return a
}
