package convert

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/alnah/go-docpress/internal/fileutil"
	"github.com/alnah/go-docpress/internal/hints"
	"github.com/alnah/go-docpress/internal/model"
	"github.com/alnah/go-docpress/internal/process"
)

// DefaultOfficeTimeout bounds one soffice conversion.
const DefaultOfficeTimeout = 120 * time.Second

// macOfficePath is where LibreOffice installs on macOS.
const macOfficePath = "/Applications/LibreOffice.app/Contents/MacOS/soffice"

// FindOffice locates the soffice binary: the configured path first, then
// SOFFICE_PATH, LIBREOFFICE_PATH, PATH, and the macOS bundle.
// It returns "" when none is found.
func FindOffice(configured string) string {
	for _, p := range []string{configured, os.Getenv("SOFFICE_PATH"), os.Getenv("LIBREOFFICE_PATH")} {
		if p != "" && fileutil.FileExists(p) {
			return p
		}
	}
	for _, name := range []string{"soffice", "libreoffice"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	if runtime.GOOS == "darwin" && fileutil.FileExists(macOfficePath) {
		return macOfficePath
	}
	return ""
}

// Office converts spreadsheets and slide decks with LibreOffice.
type Office struct {
	bin     string
	timeout time.Duration
	limiter *rate.Limiter
}

// OfficeOption configures an Office handler.
type OfficeOption func(*Office)

// WithOfficeTimeout sets the per-conversion deadline.
func WithOfficeTimeout(d time.Duration) OfficeOption {
	return func(o *Office) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLaunchRate limits how often soffice is started.
func WithLaunchRate(l *rate.Limiter) OfficeOption {
	return func(o *Office) { o.limiter = l }
}

// NewOffice returns the office handler for the soffice binary at bin.
// An empty bin makes every conversion fail with ErrUnavailable.
func NewOffice(bin string, opts ...OfficeOption) *Office {
	o := &Office{
		bin:     bin,
		timeout: DefaultOfficeTimeout,
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 1),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Available reports whether a binary was configured.
func (o *Office) Available() bool {
	return o.bin != ""
}

// Convert runs soffice headless into a scratch directory and copies the
// produced PDF to job.Output.
func (o *Office) Convert(ctx context.Context, job Job) error {
	src := job.Doc.Source
	if src.Kind != model.KindSpreadsheet && src.Kind != model.KindSlideDeck {
		return eris.Wrapf(ErrUnsupported, "office handler: %s is %s", src.ID, src.Kind)
	}
	if !o.Available() {
		return eris.Wrapf(ErrUnavailable, "soffice not found%s", hints.ForOfficeMissing())
	}
	if err := o.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "waiting for soffice slot")
	}

	work, err := os.MkdirTemp("", "docpress-soffice-*")
	if err != nil {
		return eris.Wrap(err, "creating soffice work dir")
	}
	defer os.RemoveAll(work)

	// A private profile per run lets conversions run side by side.
	profile := "file://" + filepath.ToSlash(filepath.Join(work, "profile"))
	outDir := filepath.Join(work, "out")
	cmd := exec.Command(o.bin, // #nosec G204 -- binary resolved by FindOffice
		"-env:UserInstallation="+profile,
		"--headless", "--norestore",
		"--convert-to", "pdf",
		"--outdir", outDir,
		src.Path,
	)
	res, err := process.Run(ctx, cmd, o.timeout)
	if errors.Is(err, process.ErrTimeout) {
		return eris.Wrapf(err, "soffice %s%s", src.RelPath, hints.ForTimeout())
	}
	if err != nil {
		return eris.Wrapf(err, "soffice %s: %s", src.RelPath, strings.TrimSpace(res.Stderr))
	}

	produced := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(src.Path), filepath.Ext(src.Path))+".pdf")
	if !fileutil.FileExists(produced) {
		return eris.Wrapf(ErrNoOutput, "soffice %s", src.RelPath)
	}
	if err := fileutil.CopyFile(produced, job.Output); err != nil {
		return eris.Wrapf(err, "copying %s", produced)
	}
	return nil
}
