package docpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-docpress/internal/config"
	"github.com/alnah/go-docpress/internal/convert"
	"github.com/alnah/go-docpress/internal/fileutil"
	"github.com/alnah/go-docpress/internal/metrics"
	"github.com/alnah/go-docpress/internal/model"
	"github.com/alnah/go-docpress/internal/registry"
	"github.com/alnah/go-docpress/internal/render"
	"github.com/alnah/go-docpress/internal/render/rendertest"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// testConfig returns a config rooted in a temp dir, with category
// grouping off and canonical defaults untouched.
func testConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	content := filepath.Join(dir, "content")
	require.NoError(t, os.MkdirAll(content, 0o750))

	cfg := config.DefaultConfig()
	cfg.Sources.Roots = []config.RootConfig{{Path: content, Bucket: "content"}}
	cfg.Output.Dir = filepath.Join(dir, "output")
	cfg.Output.GroupByCategory = false
	cfg.Registry.Path = filepath.Join(dir, "registry.json")
	cfg.Registry.Manifest = filepath.Join(dir, "manifest.json")
	return cfg, content
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const legacyCanvas = `---
title: "Legacy Canvas"
tiers:
  - slug: free
    formats: [A4]
    quality: [standard]
---
# Legacy Canvas

Body text.
`

func pdfOfSize(n int) []byte {
	b := []byte("%PDF-1.4\n")
	if n > len(b) {
		b = append(b, bytes.Repeat([]byte("x"), n-len(b))...)
	}
	return b
}

// fakeHandler writes a PDF of a fixed size, or fails.
type fakeHandler struct {
	mu    sync.Mutex
	size  int
	err   error
	body  []byte
	calls []string
}

func (h *fakeHandler) Convert(_ context.Context, job convert.Job) error {
	h.mu.Lock()
	h.calls = append(h.calls, job.Task.Key())
	h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	data := h.body
	if data == nil {
		data = pdfOfSize(h.size)
	}
	if err := fileutil.EnsureParent(job.Output); err != nil {
		return err
	}
	return os.WriteFile(job.Output, data, 0o600)
}

func (h *fakeHandler) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.calls)
}

func route(name string, h convert.Handler) Route {
	return Route{Name: name, Match: Always(), Handler: h}
}

func placeholderRoute() Route {
	return Route{Name: RoutePlaceholder, Match: Always(), Handler: convert.NewPlaceholder("", clock)}
}

func newTestGenerator(t *testing.T, cfg *config.Config, opts ...Option) *Generator {
	t.Helper()
	g, err := NewGenerator(append([]Option{WithConfig(cfg), WithClock(clock)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func readEntries(t *testing.T, path string) []registry.Entry {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries []registry.Entry
	require.NoError(t, json.Unmarshal(data, &entries))
	return entries
}

func TestRun_LegacyCanvasScenario(t *testing.T) {
	t.Parallel()

	cfg, content := testConfig(t)
	writeFile(t, content, "legacy-canvas.md", legacyCanvas)
	g := newTestGenerator(t, cfg, WithRoutes(placeholderRoute()))

	report, err := g.Run(context.Background(), RunOptions{SkipCanonical: true})
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	assert.Equal(t, "legacy-canvas/free/A4/standard", report.Results[0].Key)
	assert.Equal(t, 1, report.Placeholder)
	assert.Zero(t, report.HardFailures())

	out := filepath.Join(cfg.Output.Dir, "free", "A4", "standard", "legacy-canvas.pdf")
	ok, err := fileutil.HasPDFHeader(out)
	require.NoError(t, err)
	assert.True(t, ok)

	entries := readEntries(t, cfg.Registry.Path)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Exists)
	assert.Equal(t, "Legacy Canvas", entries[0].Title)
	assert.Equal(t, "/assets/downloads/free/A4/standard/legacy-canvas.pdf", entries[0].OutputPath)
	assert.Empty(t, entries[0].CanonicalPath)
}

func TestRun_LegacyCanvasWithDefaultRoutes(t *testing.T) {
	t.Parallel()
	fontsDir := rendertest.Dir(t)

	cfg, content := testConfig(t)
	cfg.Fonts.Dir = fontsDir
	writeFile(t, content, "legacy-canvas.md", legacyCanvas)
	g := newTestGenerator(t, cfg)

	report, err := g.Run(context.Background(), RunOptions{SkipCanonical: true})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, RouteCanvas, report.Results[0].Route)
	assert.Equal(t, OutcomeGenerated, report.Results[0].Outcome)
}

func TestRun_Idempotent(t *testing.T) {
	t.Parallel()

	cfg, content := testConfig(t)
	writeFile(t, content, "legacy-canvas.md", legacyCanvas)
	writeFile(t, content, "board-guide.md", "# Board\n\ntext\n")
	h := &fakeHandler{size: 20 << 10}
	g := newTestGenerator(t, cfg, WithRoutes(route("fake", h)))

	first, err := g.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, first.Generated)
	registryFirst, err := os.ReadFile(cfg.Registry.Path)
	require.NoError(t, err)

	second, err := g.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	registrySecond, err := os.ReadFile(cfg.Registry.Path)
	require.NoError(t, err)

	assert.Equal(t, 4, h.callCount(), "second run must not dispatch")
	assert.Zero(t, second.Generated)
	assert.Equal(t, 4, second.Skipped)
	for _, r := range second.Results {
		assert.Equal(t, OutcomeFresh, r.Outcome, r.Key)
	}
	assert.Equal(t, registryFirst, registrySecond)
}

// tickingClock advances by a minute on every call.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

func artifactModTimes(t *testing.T, dir string) map[string]time.Time {
	t.Helper()
	out := map[string]time.Time{}
	require.NoError(t, filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out[path] = info.ModTime()
		return nil
	}))
	return out
}

func TestRun_IdempotentForUndersizedArtifacts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		file   string
		body   []byte
		routes func(now func() time.Time) []Route
	}{
		{
			name: "placeholder only",
			file: "board-deck.pptx",
			body: []byte("PK\x03\x04 deck"),
			routes: func(now func() time.Time) []Route {
				return []Route{{Name: RoutePlaceholder, Match: Always(), Handler: convert.NewPlaceholder("", now)}}
			},
		},
		{
			name: "small pre-rendered pdf",
			file: "one-pager.pdf",
			body: pdfOfSize(2 << 10),
			routes: func(func() time.Time) []Route {
				return []Route{route(RoutePDFCopy, convert.PDFCopy{})}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, content := testConfig(t)
			require.NoError(t, os.WriteFile(filepath.Join(content, tt.file), tt.body, 0o600))
			c := &tickingClock{now: fixedNow}
			g, err := NewGenerator(WithConfig(cfg), WithClock(c.Now), WithRoutes(tt.routes(c.Now)...))
			require.NoError(t, err)
			t.Cleanup(func() { _ = g.Close() })

			first, err := g.Run(context.Background(), RunOptions{})
			require.NoError(t, err)
			require.Zero(t, first.Failed)
			registryFirst, err := os.ReadFile(cfg.Registry.Path)
			require.NoError(t, err)
			modFirst := artifactModTimes(t, cfg.Output.Dir)
			require.NotEmpty(t, modFirst)

			second, err := g.Run(context.Background(), RunOptions{})
			require.NoError(t, err)
			registrySecond, err := os.ReadFile(cfg.Registry.Path)
			require.NoError(t, err)

			assert.Zero(t, second.Generated)
			assert.Zero(t, second.Placeholder)
			for _, r := range second.Results {
				assert.Equal(t, OutcomeFresh, r.Outcome, r.Key)
			}
			assert.Equal(t, modFirst, artifactModTimes(t, cfg.Output.Dir))
			assert.Equal(t, string(registryFirst), string(registrySecond))
		})
	}
}

func TestRun_ForceRegenerates(t *testing.T) {
	t.Parallel()

	cfg, content := testConfig(t)
	writeFile(t, content, "legacy-canvas.md", legacyCanvas)
	h := &fakeHandler{size: 20 << 10}
	g := newTestGenerator(t, cfg, WithRoutes(route("fake", h)))

	_, err := g.Run(context.Background(), RunOptions{SkipCanonical: true})
	require.NoError(t, err)
	report, err := g.Run(context.Background(), RunOptions{SkipCanonical: true, Force: true})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Generated)
	assert.Equal(t, 2, h.callCount())
}

func TestRun_NonRegression(t *testing.T) {
	t.Parallel()

	cfg, content := testConfig(t)
	writeFile(t, content, "legacy-canvas.md", legacyCanvas)
	big := &fakeHandler{size: 20 << 10}
	_, err := newTestGenerator(t, cfg, WithRoutes(route("fake", big))).
		Run(context.Background(), RunOptions{SkipCanonical: true})
	require.NoError(t, err)

	out := filepath.Join(cfg.Output.Dir, "free", "A4", "standard", "legacy-canvas.pdf")
	before, err := os.ReadFile(out)
	require.NoError(t, err)

	small := &fakeHandler{size: 100}
	report, err := newTestGenerator(t, cfg, WithRoutes(route("fake", small))).
		Run(context.Background(), RunOptions{SkipCanonical: true, Force: true})
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	assert.Equal(t, OutcomeKept, report.Results[0].Outcome)
	assert.Equal(t, 1, report.Skipped)
	after, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.NoFileExists(t, fileutil.TempPath(out))
}

func TestRun_PlaceholderNeverReplacesRealPDF(t *testing.T) {
	t.Parallel()

	cfg, content := testConfig(t)
	src := writeFile(t, content, "guide.pdf", string(pdfOfSize(20<<10)))
	copyRoute := Route{Name: RoutePDFCopy, Match: KindIs(model.KindPDF), Handler: convert.PDFCopy{}}
	g := newTestGenerator(t, cfg, WithRoutes(copyRoute, placeholderRoute()))

	first, err := g.Run(context.Background(), RunOptions{SkipCanonical: true})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Generated)

	require.NoError(t, os.WriteFile(src, []byte("corrupted"), 0o600))
	second, err := g.Run(context.Background(), RunOptions{SkipCanonical: true, Force: true})
	require.NoError(t, err)

	require.Len(t, second.Results, 1)
	assert.Equal(t, OutcomeKept, second.Results[0].Outcome)
	out := filepath.Join(cfg.Output.Dir, "free", "A4", "standard", "guide.pdf")
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, int64(20<<10), info.Size())
}

func TestRun_FallsThroughChain(t *testing.T) {
	t.Parallel()

	cfg, content := testConfig(t)
	writeFile(t, content, "legacy-canvas.md", legacyCanvas)
	failing := &fakeHandler{err: errors.New("converter crashed")}
	notPDF := &fakeHandler{body: []byte("<html>")}
	good := &fakeHandler{size: 20 << 10}
	g := newTestGenerator(t, cfg, WithRoutes(route("first", failing), route("second", notPDF), route("third", good)))

	report, err := g.Run(context.Background(), RunOptions{SkipCanonical: true})
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	assert.Equal(t, "third", report.Results[0].Route)
	assert.Equal(t, OutcomeGenerated, report.Results[0].Outcome)
	assert.Equal(t, 1, failing.callCount())
	assert.Equal(t, 1, notPDF.callCount())
}

func TestRun_PlaceholderReasonIsWarning(t *testing.T) {
	t.Parallel()

	cfg, content := testConfig(t)
	writeFile(t, content, "legacy-canvas.md", legacyCanvas)
	failing := &fakeHandler{err: errors.New("soffice missing")}
	g := newTestGenerator(t, cfg, WithRoutes(route("office", failing), placeholderRoute()))

	report, err := g.Run(context.Background(), RunOptions{SkipCanonical: true})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Placeholder)
	assert.Zero(t, report.HardFailures())
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[len(report.Warnings)-1], "office: soffice missing")
}

func TestRun_HardFailure(t *testing.T) {
	t.Parallel()

	cfg, content := testConfig(t)
	writeFile(t, content, "legacy-canvas.md", legacyCanvas)
	g := newTestGenerator(t, cfg, WithRoutes(route("broken", &fakeHandler{err: errors.New("boom")})))

	report, err := g.Run(context.Background(), RunOptions{SkipCanonical: true})
	require.NoError(t, err)

	assert.Equal(t, 1, report.HardFailures())
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "legacy-canvas/free/A4/standard", report.Failures[0].Key)
	assert.ErrorIs(t, report.Failures[0].Cause, ErrAllRoutesFailed)

	var buf bytes.Buffer
	report.WriteSummary(&buf)
	assert.Contains(t, buf.String(), "failed 1")
	assert.Contains(t, buf.String(), "FAIL legacy-canvas/free/A4/standard")
}

func TestRun_NoMatchingRoute(t *testing.T) {
	t.Parallel()

	cfg, content := testConfig(t)
	writeFile(t, content, "legacy-canvas.md", legacyCanvas)
	pdfOnly := Route{Name: RoutePDFCopy, Match: KindIs(model.KindPDF), Handler: convert.PDFCopy{}}
	g := newTestGenerator(t, cfg, WithRoutes(pdfOnly))

	report, err := g.Run(context.Background(), RunOptions{SkipCanonical: true})
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	assert.ErrorIs(t, report.Failures[0].Cause, ErrNoRoute)
}

func TestRun_ConfigErrorEndsRun(t *testing.T) {
	t.Parallel()

	cfg, content := testConfig(t)
	writeFile(t, content, "a.md", "a\n")
	writeFile(t, content, "b.md", "b\n")
	h := &fakeHandler{err: render.ErrFontMissing}
	g := newTestGenerator(t, cfg, WithRoutes(route("doc", h), placeholderRoute()))

	report, err := g.Run(context.Background(), RunOptions{SkipCanonical: true})
	require.ErrorIs(t, err, ErrConfig)
	assert.ErrorIs(t, err, render.ErrFontMissing)
	assert.Equal(t, 1, h.callCount())
	assert.Equal(t, 1, report.Canceled)
	assert.NoFileExists(t, cfg.Registry.Path)
}

func TestRun_MissingFontsIsConfigError(t *testing.T) {
	t.Parallel()

	cfg, content := testConfig(t)
	cfg.Fonts.Dir = t.TempDir()
	cfg.Fonts.HeadingRegular = "NoSuchFace-Regular"
	writeFile(t, content, "legacy-canvas.md", legacyCanvas)
	g := newTestGenerator(t, cfg)

	_, err := g.Run(context.Background(), RunOptions{SkipCanonical: true})
	require.ErrorIs(t, err, ErrConfig)
	assert.ErrorIs(t, err, render.ErrFontMissing)
	assert.Contains(t, err.Error(), "hint:")
}

func TestRun_MandatoryWithoutHandler(t *testing.T) {
	t.Parallel()

	cfg, content := testConfig(t)
	cfg.Generation.Mandatory = []string{"legacy-*"}
	writeFile(t, content, "legacy-canvas.md", legacyCanvas)
	h := &fakeHandler{size: 20 << 10}
	pdfOnly := Route{Name: "pdf-only", Match: KindIs(model.KindPDF), Handler: h}
	g := newTestGenerator(t, cfg, WithRoutes(pdfOnly, placeholderRoute()))

	_, err := g.Run(context.Background(), RunOptions{})
	require.ErrorIs(t, err, ErrMissingHandler)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "legacy-canvas")
	assert.Zero(t, h.callCount())
}

// cancelingHandler cancels the run on its first call.
type cancelingHandler struct {
	fakeHandler
	cancel context.CancelFunc
}

func (h *cancelingHandler) Convert(ctx context.Context, job convert.Job) error {
	h.cancel()
	if err := ctx.Err(); err != nil {
		return err
	}
	return h.fakeHandler.Convert(ctx, job)
}

func TestRun_CancellationBetweenTasks(t *testing.T) {
	t.Parallel()

	cfg, content := testConfig(t)
	for _, name := range []string{"a.md", "b.md", "c.md"} {
		writeFile(t, content, name, "text\n")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := &cancelingHandler{fakeHandler: fakeHandler{size: 20 << 10}, cancel: cancel}
	g := newTestGenerator(t, cfg, WithRoutes(route("fake", h)))

	report, err := g.Run(ctx, RunOptions{SkipCanonical: true})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)

	assert.Equal(t, 1, report.Generated, "started task runs to completion")
	assert.Equal(t, 2, report.Canceled)
	assert.FileExists(t, cfg.Registry.Path)
	assert.Len(t, readEntries(t, cfg.Registry.Path), 3)
}

func TestRun_ScanOnly(t *testing.T) {
	t.Parallel()

	cfg, content := testConfig(t)
	writeFile(t, content, "legacy-canvas.md", legacyCanvas)
	h := &fakeHandler{size: 20 << 10}
	g := newTestGenerator(t, cfg, WithRoutes(route("fake", h)))

	report, err := g.Run(context.Background(), RunOptions{ScanOnly: true})
	require.NoError(t, err)

	assert.Zero(t, h.callCount())
	assert.Empty(t, report.Results)
	entries := readEntries(t, cfg.Registry.Path)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Exists)
	assert.Equal(t, "0 B", entries[0].FileSizeLabel)
}

func TestRun_OnlyFilter(t *testing.T) {
	t.Parallel()

	cfg, content := testConfig(t)
	writeFile(t, content, "legacy-canvas.md", legacyCanvas)
	writeFile(t, content, "board-guide.md", "text\n")
	writeFile(t, content, "board-minutes.md", "text\n")
	h := &fakeHandler{size: 20 << 10}
	g := newTestGenerator(t, cfg, WithRoutes(route("fake", h)))

	report, err := g.Run(context.Background(), RunOptions{Only: []string{"board-*"}, SkipCanonical: true})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Generated)
	assert.Len(t, readEntries(t, cfg.Registry.Path), 2)
}

func TestRun_Concurrent(t *testing.T) {
	t.Parallel()

	cfg, content := testConfig(t)
	for _, name := range []string{"a.md", "b.md", "c.md", "d.md", "e.md", "f.md"} {
		writeFile(t, content, name, "text\n")
	}
	h := &fakeHandler{size: 20 << 10}
	g := newTestGenerator(t, cfg, WithRoutes(route("fake", h)), WithWorkers(4))

	report, err := g.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 12, report.Generated)
	assert.Equal(t, 12, h.callCount())
	err = filepath.WalkDir(cfg.Output.Dir, func(path string, _ fs.DirEntry, err error) error {
		require.NoError(t, err)
		assert.False(t, fileutil.IsTempPath(path), "staged file left behind: %s", path)
		return nil
	})
	require.NoError(t, err)
}

// recordingStore captures synced entries.
type recordingStore struct {
	entries []registry.Entry
}

func (s *recordingStore) Sync(_ context.Context, entries []registry.Entry) error {
	s.entries = entries
	return nil
}

func TestRun_SyncsStoreAndMetrics(t *testing.T) {
	t.Parallel()

	cfg, content := testConfig(t)
	cfg.Registry.MetricsFile = filepath.Join(t.TempDir(), "metrics", "docpress.prom")
	writeFile(t, content, "legacy-canvas.md", legacyCanvas)
	st := &recordingStore{}
	g := newTestGenerator(t, cfg, WithRoutes(route("fake", &fakeHandler{size: 20 << 10})),
		WithStore(st), WithMetrics(metrics.New()))

	report, err := g.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Len(t, st.entries, 1)
	assert.Equal(t, 1, report.Entries)
	assert.Equal(t, 1, report.Available)
	assert.Equal(t, "/assets/downloads/legacy-canvas.pdf", st.entries[0].CanonicalPath)
	assert.FileExists(t, cfg.Registry.MetricsFile)
}

func TestNewGenerator_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Generation.Workers = -1

	_, err := NewGenerator(WithConfig(cfg))
	assert.ErrorIs(t, err, ErrConfig)
}

func TestWithWorkers_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { WithWorkers(0) })
	assert.Panics(t, func() { WithWorkers(-2) })
	assert.NotPanics(t, func() { WithWorkers(1) })
}

func TestRun_TierMapMatrix(t *testing.T) {
	t.Parallel()

	cfg, content := testConfig(t)
	writeFile(t, content, "board-guide.md", `---
title: Board Guide
tiers:
  free: [A4]
  member: [A4, Letter]
---
Body.
`)
	h := &fakeHandler{size: 20 << 10}
	g := newTestGenerator(t, cfg, WithRoutes(route("fake", h)))

	report, err := g.Run(context.Background(), RunOptions{SkipCanonical: true})
	require.NoError(t, err)

	got := make([]string, 0, len(report.Results))
	for _, r := range report.Results {
		got = append(got, r.Key)
	}
	assert.ElementsMatch(t, []string{
		"board-guide/free/A4/standard",
		"board-guide/member/A4/standard",
		"board-guide/member/Letter/standard",
	}, got)
	assert.Len(t, readEntries(t, cfg.Registry.Path), 2)
}
