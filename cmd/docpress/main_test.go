package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-docpress/internal/render/rendertest"
)

// testEnv returns an Environment capturing output.
func testEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Environment{
		Now:    func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
		Stdout: &stdout,
		Stderr: &stderr,
	}, &stdout, &stderr
}

// project lays out a content root and a config file in a temp dir.
type project struct {
	dir     string
	content string
	output  string
	config  string
}

func newProject(t *testing.T, fontsDir string) *project {
	t.Helper()
	dir := t.TempDir()
	p := &project{
		dir:     dir,
		content: filepath.Join(dir, "content"),
		output:  filepath.Join(dir, "public"),
		config:  filepath.Join(dir, "docpress.yaml"),
	}
	require.NoError(t, os.MkdirAll(p.content, 0o750))

	fonts := fmt.Sprintf("  dir: %q\n", fontsDir)
	if fontsDir == "" {
		fonts = fmt.Sprintf("  dir: %q\n  headingRegular: NoSuchFace-Regular\n", dir)
	}
	cfg := fmt.Sprintf(`sources:
  roots:
    - path: %q
      bucket: content
output:
  dir: %q
  groupByCategory: false
fonts:
%sregistry:
  path: %q
  manifest: %q
`, p.content, p.output, fonts,
		filepath.Join(p.output, "registry.json"),
		filepath.Join(p.output, "manifest.json"))
	require.NoError(t, os.WriteFile(p.config, []byte(cfg), 0o600))
	return p
}

func (p *project) write(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(p.content, name), []byte(content), 0o600))
}

func TestRun_Version(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv()
	code := run([]string{"version"}, env)

	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "docpress dev\n", stdout.String())
}

func TestRun_UsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"publish"}},
		{"unknown flag", []string{"generate", "--colour"}},
		{"bad format", []string{"generate", "--formats", "A5"}},
		{"bad quality", []string{"generate", "--quality", "ultra"}},
		{"bad canonical tier", []string{"generate", "--canonical-tier", "gold"}},
		{"workers out of range", []string{"generate", "--workers", "12"}},
		{"missing config", []string{"generate", "--config", "/nonexistent/docpress.yaml"}},
		{"stray argument", []string{"generate", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env, _, stderr := testEnv()
			code := run(append(tt.args, "--quiet"), env)
			assert.Equal(t, ExitUsage, code, stderr.String())
			assert.Contains(t, stderr.String(), "error:")
		})
	}
}

func TestRun_GenerateScanOnly(t *testing.T) {
	t.Parallel()

	p := newProject(t, "")
	p.write(t, "legacy-canvas.md", "---\ntitle: \"Legacy Canvas\"\n---\n# Legacy Canvas\n")
	env, stdout, stderr := testEnv()

	code := run([]string{"generate", "-c", p.config, "--scan-only", "--quiet"}, env)
	require.Equal(t, ExitSuccess, code, stderr.String())
	assert.Empty(t, stdout.String(), "quiet suppresses the summary")

	data, err := os.ReadFile(filepath.Join(p.output, "registry.json"))
	require.NoError(t, err)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Legacy Canvas", entries[0]["title"])
	assert.Equal(t, false, entries[0]["exists"])
}

func TestRun_GenerateMissingFontsIsConfigError(t *testing.T) {
	t.Parallel()

	p := newProject(t, "")
	p.write(t, "board-guide.md", "# Board\n\ntext\n")
	env, _, stderr := testEnv()

	code := run([]string{"generate", "-c", p.config, "--quiet"}, env)
	assert.Equal(t, ExitConfig, code)
	assert.Contains(t, stderr.String(), "hint:")
}

func TestRun_GenerateWithFonts(t *testing.T) {
	t.Parallel()

	p := newProject(t, rendertest.Dir(t))
	p.write(t, "legacy-canvas.md", `---
title: "Legacy Canvas"
tiers:
  - slug: free
    formats: [A4]
    quality: [standard]
---
# Legacy Canvas

## Purpose

- One
- Two
`)
	db := filepath.Join(p.dir, "registry.db")
	metricsFile := filepath.Join(p.dir, "docpress.prom")
	env, stdout, stderr := testEnv()

	code := run([]string{"generate", "-c", p.config, "--skip-canonical", "--db", db, "--metrics-file", metricsFile}, env)
	require.Equal(t, ExitSuccess, code, stderr.String())

	out := filepath.Join(p.output, "free", "A4", "standard", "legacy-canvas.pdf")
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.FileExists(t, db)
	assert.FileExists(t, metricsFile)
	assert.True(t, strings.HasPrefix(stdout.String(), "generated 1, skipped 0"), stdout.String())

	// Second run is a no-op.
	stdout.Reset()
	code = run([]string{"generate", "-c", p.config, "--skip-canonical"}, env)
	require.Equal(t, ExitSuccess, code)
	assert.True(t, strings.HasPrefix(stdout.String(), "generated 0, skipped 1"), stdout.String())
}

func TestRun_GenerateOutputFlagMovesRegistry(t *testing.T) {
	t.Parallel()

	p := newProject(t, "")
	p.write(t, "guide.md", "text\n")
	alt := filepath.Join(p.dir, "alt")
	env, _, stderr := testEnv()

	code := run([]string{"generate", "-c", p.config, "--scan-only", "-o", alt, "--quiet"}, env)
	require.Equal(t, ExitSuccess, code, stderr.String())
	assert.FileExists(t, filepath.Join(alt, "registry.json"))
	assert.FileExists(t, filepath.Join(alt, "manifest.json"))
	assert.NoFileExists(t, filepath.Join(p.output, "registry.json"))
}
