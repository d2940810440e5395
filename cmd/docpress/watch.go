package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	docpress "github.com/alnah/go-docpress"
	"github.com/alnah/go-docpress/internal/fileutil"
	"github.com/alnah/go-docpress/internal/frontmatter"
)

// watchDebounce coalesces editor save bursts into one run.
const watchDebounce = 500 * time.Millisecond

func newWatchCmd(a *app) *cobra.Command {
	f := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever a source changes",
		Long: `Watch runs generate once, then watches the source roots and runs again
500ms after the last change. Saves that leave a file's content
fingerprint unchanged do not trigger a run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runWatch(cmd.Context(), f, cmd.Flags().Changed)
		},
	}
	addGenerateFlags(cmd, f)
	return cmd
}

func (a *app) runWatch(ctx context.Context, f *generateFlags, changed func(string) bool) error {
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

	roots := make([]string, 0, len(a.cfg.Sources.Roots))
	for _, r := range a.cfg.Sources.Roots {
		roots = append(roots, r.Path)
	}
	watcher, err := setupWatcher(roots, a.logger)
	if err != nil {
		return err
	}
	defer watcher.Close()

	detector := newChangeDetector()
	detector.seed(roots)

	runOnce := func() error {
		report, err := gen.Run(ctx, opts)
		if report != nil && !a.flags.quiet {
			report.WriteSummary(a.env.Stdout)
		}
		return err
	}
	if err := runOnce(); err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, docpress.ErrConfig) {
			return err
		}
		a.logger.Warn("initial run failed", zap.Error(err))
	}

	rebuild, trigger := newDebouncer(watchDebounce)
	a.logger.Info("watching sources", zap.Strings("roots", roots))
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("watch stopped")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if handleEvent(watcher, ev, detector, a.logger) {
				trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("watcher error", zap.Error(err))
		case <-rebuild:
			a.logger.Info("change detected; regenerating")
			if err := runOnce(); err != nil && !errors.Is(err, context.Canceled) {
				// Config errors may be fixed by the next edit.
				a.logger.Error("run failed", zap.Error(err))
			}
		}
	}
}

// setupWatcher watches every directory under the existing roots.
func setupWatcher(roots []string, log *zap.Logger) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	watched := 0
	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			log.Warn("source root not watched", zap.String("root", root), zap.Error(err))
			continue
		}
		addDirsRecursive(watcher, root, log)
		watched++
	}
	if watched == 0 {
		_ = watcher.Close()
		return nil, fmt.Errorf("no source root to watch: %w", os.ErrNotExist)
	}
	return watcher, nil
}

func addDirsRecursive(w *fsnotify.Watcher, root string, log *zap.Logger) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				log.Warn("watch add failed", zap.String("dir", path), zap.Error(err))
			}
		}
		return nil
	})
}

// newDebouncer returns a channel that fires once per burst of trigger calls.
func newDebouncer(delay time.Duration) (<-chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	fire := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, func() {
			select {
			case fire <- struct{}{}:
			default:
			}
		})
	}
	return fire, trigger
}

// handleEvent reports whether ev changes the source set.
func handleEvent(w *fsnotify.Watcher, ev fsnotify.Event, d *changeDetector, log *zap.Logger) bool {
	if ignoredPath(ev.Name) {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			addDirsRecursive(w, ev.Name, log)
			return true
		}
	}
	if !d.changed(ev.Name) {
		log.Debug("content unchanged", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
		return false
	}
	log.Debug("source changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
	return true
}

// ignoredPath skips hidden, swap, backup and staged files.
func ignoredPath(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".tmp") ||
		fileutil.IsTempPath(path)
}

// changeDetector remembers content fingerprints so touches and no-op
// saves do not trigger runs.
type changeDetector struct {
	mu   sync.Mutex
	seen map[string]string
}

func newChangeDetector() *changeDetector {
	return &changeDetector{seen: make(map[string]string)}
}

// seed fingerprints every file currently under roots.
func (d *changeDetector) seed(roots []string) {
	for _, root := range roots {
		_ = filepath.WalkDir(root, func(path string, e fs.DirEntry, err error) error {
			if err != nil || e.IsDir() || ignoredPath(path) {
				return nil
			}
			if fp, err := fingerprintFile(path); err == nil {
				d.mu.Lock()
				d.seen[path] = fp
				d.mu.Unlock()
			}
			return nil
		})
	}
}

// changed records the current fingerprint of path and reports whether
// it differs from the last one. A removed file is a change.
func (d *changeDetector) changed(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	fp, err := fingerprintFile(path)
	if err != nil {
		delete(d.seen, path)
		return true
	}
	if prev, ok := d.seen[path]; ok && prev == fp {
		return false
	}
	d.seen[path] = fp
	return true
}

// fingerprintFile hashes front matter and body separately for documents,
// and the whole content for anything else.
func fingerprintFile(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the watched roots
	if err != nil {
		return "", err
	}
	front, body, _, err := frontmatter.Split(data)
	if err != nil {
		front, body = nil, data
	}
	return frontmatter.Fingerprint(front, body), nil
}
