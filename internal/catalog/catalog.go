// Package catalog discovers generation sources under configured roots,
// classifies them by kind and resolves their metadata.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alnah/go-docpress/internal/fileutil"
	"github.com/alnah/go-docpress/internal/model"
)

// ErrInvalidRoot is returned when a root exists but is not a directory.
var ErrInvalidRoot = errors.New("invalid source root")

// Root is one discovery root.
// Folder, when set, replaces the category folder in output paths.
type Root struct {
	Path   string
	Bucket string
	Folder string
}

// WarningKind classifies discovery warnings.
type WarningKind string

const (
	WarnDuplicate   WarningKind = "duplicate"
	WarnFrontMatter WarningKind = "frontmatter"
	WarnMetadata    WarningKind = "metadata"
)

// Warning is a non-fatal discovery problem.
type Warning struct {
	Kind    WarningKind
	Path    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.Kind, w.Path, w.Message)
}

// Result is the outcome of a scan.
type Result struct {
	Records  []model.SourceRecord
	Warnings []Warning
}

// Options configures a Catalog.
type Options struct {
	// Ignore holds doublestar patterns matched against slash-separated
	// paths relative to each root.
	Ignore []string
	// Author fills default descriptions and the author field.
	Author string
}

// Catalog scans roots and describes the sources it finds.
type Catalog struct {
	opts Options
}

// New validates ignore patterns and returns a Catalog.
func New(opts Options) (*Catalog, error) {
	for _, p := range opts.Ignore {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid ignore pattern %q", p)
		}
	}
	return &Catalog{opts: opts}, nil
}

type candidate struct {
	rec  model.SourceRecord
	root int
}

// Scan walks every root and returns one record per identifier.
// Missing roots are created empty. Dot-files, staged temp files and
// unsupported extensions are skipped without a warning. When two files
// share an identifier the higher fidelity rank wins and the other is
// reported as a duplicate.
func (c *Catalog) Scan(ctx context.Context, roots []Root) (*Result, error) {
	res := &Result{}
	best := make(map[string]candidate)

	for i, root := range roots {
		abs, err := filepath.Abs(root.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRoot, root.Path, err)
		}
		if err := ensureRoot(abs); err != nil {
			return nil, err
		}

		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if path == abs {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			rel, err := filepath.Rel(abs, path)
			if err != nil {
				return err
			}
			if c.ignored(filepath.ToSlash(rel)) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || fileutil.IsTempPath(name) {
				return nil
			}

			ext := filepath.Ext(name)
			kind, ok := model.KindForExt(ext)
			if !ok {
				return nil
			}
			base := strings.TrimSuffix(name, ext)
			id := NormalizeID(base)
			if id == "" {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return err
			}

			next := candidate{root: i, rec: model.SourceRecord{
				ID:       id,
				Path:     path,
				RelPath:  filepath.ToSlash(rel),
				Kind:     kind,
				Ext:      strings.ToLower(ext),
				BaseName: base,
				ModTime:  info.ModTime(),
				Size:     info.Size(),
				Bucket:   root.Bucket,
				Folder:   root.Folder,
			}}

			prev, seen := best[id]
			if !seen {
				best[id] = next
				return nil
			}
			winner, loser := prev, next
			if outranks(next, prev) {
				winner, loser = next, prev
			}
			best[id] = winner
			res.Warnings = append(res.Warnings, Warning{
				Kind:    WarnDuplicate,
				Path:    loser.rec.Path,
				Message: fmt.Sprintf("identifier %q also provided by %s (kept)", id, winner.rec.Path),
			})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", abs, err)
		}
	}

	res.Records = make([]model.SourceRecord, 0, len(best))
	for _, cand := range best {
		res.Records = append(res.Records, cand.rec)
	}
	sort.Slice(res.Records, func(i, j int) bool { return res.Records[i].ID < res.Records[j].ID })
	return res, nil
}

func (c *Catalog) ignored(rel string) bool {
	for _, p := range c.opts.Ignore {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// outranks reports whether a should replace b for the same identifier.
func outranks(a, b candidate) bool {
	ra, rb := model.FidelityRank(a.rec.Ext), model.FidelityRank(b.rec.Ext)
	if ra != rb {
		return ra > rb
	}
	if a.root != b.root {
		return a.root < b.root
	}
	return a.rec.Path < b.rec.Path
}

func ensureRoot(abs string) error {
	info, err := os.Stat(abs)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(abs, fileutil.DirPerm); err != nil {
			return fmt.Errorf("%w: creating %s: %v", ErrInvalidRoot, abs, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidRoot, abs, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: not a directory: %s", ErrInvalidRoot, abs)
	}
	return nil
}
