// Package fileutil provides the filesystem primitives the generator relies on:
// deterministic temp paths, atomic promotion, PDF header checks and checksums.
package fileutil

import (
	"bytes"
	"crypto/md5" // #nosec G501 -- md5 is a published content checksum, not a security control
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Permissions for directories and files created under the output root.
const (
	DirPerm  os.FileMode = 0o750
	FilePerm os.FileMode = 0o644
)

// tempMarker is inserted before the extension of a staged file.
const tempMarker = ".__tmp__"

// pdfHeader is the magic prefix of every PDF file.
var pdfHeader = []byte("%PDF")

// Sentinel errors for file operations.
var (
	ErrNotPDF      = errors.New("missing PDF header")
	ErrEmptyPath   = errors.New("path cannot be empty")
	ErrPromoteFile = errors.New("promoting staged file")
)

// TempPath derives the staging path for a final path:
// "out/x.pdf" becomes "out/x.__tmp__.pdf". Two distinct final paths
// never share a staging path.
func TempPath(final string) string {
	ext := filepath.Ext(final)
	return strings.TrimSuffix(final, ext) + tempMarker + ext
}

// IsTempPath reports whether path was produced by TempPath.
func IsTempPath(path string) bool {
	base := filepath.Base(path)
	return strings.Contains(base, tempMarker)
}

// EnsureParent creates the parent directory of path.
func EnsureParent(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	return os.MkdirAll(filepath.Dir(path), DirPerm)
}

// Promote atomically replaces final with staged using a single rename.
// Readers of final see either the old or the new content, never a mix.
func Promote(staged, final string) error {
	if err := EnsureParent(final); err != nil {
		return fmt.Errorf("%w: %v", ErrPromoteFile, err)
	}
	if err := os.Rename(staged, final); err != nil {
		return fmt.Errorf("%w: %v", ErrPromoteFile, err)
	}
	return nil
}

// HasPDFHeader reports whether the file at path starts with "%PDF".
func HasPDFHeader(path string) (bool, error) {
	f, err := os.Open(path) // #nosec G304 -- path derived from configured output root
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, len(pdfHeader))
	if _, err := io.ReadFull(f, head); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(head, pdfHeader), nil
}

// IsPDF reports whether data starts with "%PDF".
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfHeader)
}

// Info is the observed state of a file on disk.
type Info struct {
	Exists  bool
	Size    int64
	ModTime time.Time
	Header  bool
	MD5     string
	SHA256  string
}

// Stat returns size, mtime and header state without hashing.
func Stat(path string) (Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Info{}, nil
		}
		return Info{}, err
	}
	if st.IsDir() {
		return Info{}, nil
	}
	header, err := HasPDFHeader(path)
	if err != nil {
		return Info{}, err
	}
	return Info{Exists: true, Size: st.Size(), ModTime: st.ModTime(), Header: header}, nil
}

// Inspect is Stat plus MD5 and SHA-256 of the content.
func Inspect(path string) (Info, error) {
	info, err := Stat(path)
	if err != nil || !info.Exists {
		return info, err
	}

	f, err := os.Open(path) // #nosec G304 -- path derived from configured output root
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	m := md5.New() // #nosec G401 -- checksum only
	s := sha256.New()
	if _, err := io.Copy(io.MultiWriter(m, s), f); err != nil {
		return Info{}, fmt.Errorf("hashing %s: %w", path, err)
	}
	info.MD5 = hex.EncodeToString(m.Sum(nil))
	info.SHA256 = hex.EncodeToString(s.Sum(nil))
	return info, nil
}

// WriteAtomic writes data next to path and renames it into place.
func WriteAtomic(path string, data []byte) error {
	if err := EnsureParent(path); err != nil {
		return err
	}
	staged := TempPath(path)
	if err := os.WriteFile(staged, data, FilePerm); err != nil {
		return fmt.Errorf("writing %s: %w", staged, err)
	}
	if err := os.Rename(staged, path); err != nil {
		_ = os.Remove(staged)
		return fmt.Errorf("%w: %v", ErrPromoteFile, err)
	}
	return nil
}

// CopyFile copies src to dst, creating dst's parent directory.
func CopyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- src is a scanned source file
	if err != nil {
		return err
	}
	defer in.Close()

	if err := EnsureParent(dst); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, FilePerm) // #nosec G304 -- dst derived from output root
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
