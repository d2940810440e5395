// Package rendertest provides font fixtures for tests that render real
// documents.
package rendertest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alnah/go-docpress/internal/render"
)

// EnvFontsDir names a directory holding the four brand faces.
const EnvFontsDir = "DOCPRESS_TEST_FONTS"

// systemFonts are TrueType files commonly present on CI images. Any one
// of them can stand in for all four faces.
var systemFonts = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
}

// Fonts returns a usable FontSet or skips the test.
func Fonts(t testing.TB) render.FontSet {
	t.Helper()

	if dir := os.Getenv(EnvFontsDir); dir != "" {
		names := render.DefaultFontNames
		set := render.FontSet{
			Heading:     read(t, filepath.Join(dir, names.Heading+".ttf")),
			HeadingBold: read(t, filepath.Join(dir, names.HeadingBold+".ttf")),
			Body:        read(t, filepath.Join(dir, names.Body+".ttf")),
			BodyBold:    read(t, filepath.Join(dir, names.BodyBold+".ttf")),
		}
		return set
	}

	for _, p := range systemFonts {
		b, err := os.ReadFile(p) // #nosec G304 -- fixed candidate list
		if err == nil && len(b) > 0 {
			return render.FontSet{Heading: b, HeadingBold: b, Body: b, BodyBold: b}
		}
	}
	t.Skipf("no TrueType fonts available; set %s to a directory with the brand fonts", EnvFontsDir)
	return render.FontSet{}
}

// Dir returns a directory holding the four brand faces by name, or skips.
func Dir(t testing.TB) string {
	t.Helper()

	if dir := os.Getenv(EnvFontsDir); dir != "" {
		return dir
	}
	set := Fonts(t)
	dir := t.TempDir()
	names := render.DefaultFontNames
	for name, data := range map[string][]byte{
		names.Heading:     set.Heading,
		names.HeadingBold: set.HeadingBold,
		names.Body:        set.Body,
		names.BodyBold:    set.BodyBold,
	} {
		if err := os.WriteFile(filepath.Join(dir, name+".ttf"), data, 0o644); err != nil {
			t.Fatalf("writing font fixture: %v", err)
		}
	}
	return dir
}

func read(t testing.TB, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path) // #nosec G304 -- test fixture path
	if err != nil {
		t.Skipf("font fixture unavailable: %v", err)
	}
	return b
}
