package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFont(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+FontExt), data, 0o644))
}

func TestNewFilesystemLoader(t *testing.T) {
	t.Parallel()

	t.Run("valid directory", func(t *testing.T) {
		t.Parallel()

		loader, err := NewFilesystemLoader(t.TempDir())
		require.NoError(t, err)
		assert.NotNil(t, loader)
	})

	t.Run("empty path returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewFilesystemLoader("")
		assert.ErrorIs(t, err, ErrInvalidBasePath)
	})

	t.Run("nonexistent directory returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewFilesystemLoader("/nonexistent/path/abc123xyz")
		assert.ErrorIs(t, err, ErrInvalidBasePath)
	})

	t.Run("file instead of directory returns error", func(t *testing.T) {
		t.Parallel()

		filePath := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(filePath, []byte("test"), 0o644))

		_, err := NewFilesystemLoader(filePath)
		assert.ErrorIs(t, err, ErrInvalidBasePath)
	})
}

func TestFilesystemLoader_LoadFont(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFont(t, dir, "NotoSans-Regular", []byte("ttf-bytes"))
	writeFont(t, dir, "Empty", nil)

	loader, err := NewFilesystemLoader(dir)
	require.NoError(t, err)

	t.Run("loads existing font", func(t *testing.T) {
		t.Parallel()

		got, err := loader.LoadFont("NotoSans-Regular")
		require.NoError(t, err)
		assert.Equal(t, []byte("ttf-bytes"), got)
	})

	t.Run("missing font", func(t *testing.T) {
		t.Parallel()

		_, err := loader.LoadFont("PlayfairDisplay-Bold")
		assert.ErrorIs(t, err, ErrFontNotFound)
	})

	t.Run("empty font", func(t *testing.T) {
		t.Parallel()

		_, err := loader.LoadFont("Empty")
		assert.ErrorIs(t, err, ErrEmptyFont)
	})

	t.Run("invalid name", func(t *testing.T) {
		t.Parallel()

		_, err := loader.LoadFont("../NotoSans-Regular")
		assert.ErrorIs(t, err, ErrInvalidAssetName)
	})
}

func TestFilesystemLoader_PathContainment(t *testing.T) {
	t.Parallel()

	outside := t.TempDir()
	writeFont(t, outside, "Secret", []byte("secret"))

	base := t.TempDir()
	if err := os.Symlink(filepath.Join(outside, "Secret"+FontExt), filepath.Join(base, "Escape"+FontExt)); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	loader, err := NewFilesystemLoader(base)
	require.NoError(t, err)

	_, err = loader.LoadFont("Escape")
	assert.ErrorIs(t, err, ErrPathTraversal)
}

func TestSearchLoader(t *testing.T) {
	t.Parallel()

	first := t.TempDir()
	second := t.TempDir()
	writeFont(t, first, "Heading", []byte("first"))
	writeFont(t, second, "Heading", []byte("second"))
	writeFont(t, second, "Body", []byte("body"))

	loader, err := NewSearchLoader("", filepath.Join(first, "missing"), first, second)
	require.NoError(t, err)

	got, err := loader.LoadFont("Heading")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got, "earlier directories win")

	got, err = loader.LoadFont("Body")
	require.NoError(t, err)
	assert.Equal(t, []byte("body"), got)

	_, err = loader.LoadFont("Absent")
	require.ErrorIs(t, err, ErrFontNotFound)
	assert.Contains(t, err.Error(), "Absent.ttf")
	assert.Len(t, loader.Dirs(), 3)
}

func TestNewSearchLoader_RejectsFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := NewSearchLoader(file)
	assert.ErrorIs(t, err, ErrInvalidBasePath)
}
