package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// DefaultFontDirs are searched, relative to the working directory, after
// any configured directory.
var DefaultFontDirs = []string{
	"fonts",
	"assets/fonts",
	"scripts/pdf/fonts",
	"public/fonts",
}

// SearchLoader tries each directory loader in order and returns the first
// font found.
type SearchLoader struct {
	loaders []*FilesystemLoader
	tried   []string
}

// NewSearchLoader builds a SearchLoader over dirs. Directories that do not
// exist are skipped; other invalid paths fail with ErrInvalidBasePath.
func NewSearchLoader(dirs ...string) (*SearchLoader, error) {
	s := &SearchLoader{}
	for _, d := range dirs {
		if strings.TrimSpace(d) == "" {
			continue
		}
		s.tried = append(s.tried, d)
		if _, err := os.Stat(d); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		l, err := NewFilesystemLoader(d)
		if err != nil {
			return nil, err
		}
		s.loaders = append(s.loaders, l)
	}
	return s, nil
}

// Dirs returns the directories that were searched, existing or not.
func (s *SearchLoader) Dirs() []string {
	return s.tried
}

// LoadFont returns the first match across the search path. Only
// not-found errors fall through to the next directory.
func (s *SearchLoader) LoadFont(name string) ([]byte, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}
	for _, l := range s.loaders {
		b, err := l.LoadFont(name)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, ErrFontNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s%s (searched %s)", ErrFontNotFound, name, FontExt, strings.Join(s.tried, ", "))
}

// Compile-time interface check.
var _ Loader = (*SearchLoader)(nil)
