package convert

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rotisserie/eris"

	"github.com/alnah/go-docpress/internal/hints"
	"github.com/alnah/go-docpress/internal/layout"
	"github.com/alnah/go-docpress/internal/model"
)

const pointsPerInch = 72.0

// Page load budgets by quality.
const (
	webpageTimeout           = 60 * time.Second
	webpageTimeoutPremium    = 120 * time.Second
	webpageTimeoutEnterprise = 90 * time.Second
)

// Webpage prints HTML sources with headless Chrome.
// Rod downloads Chromium on first use when ROD_BROWSER_BIN is unset.
type Webpage struct {
	mu      sync.Mutex
	browser *rod.Browser
	bin     string
}

// NewWebpage returns the webpage handler. bin overrides ROD_BROWSER_BIN.
func NewWebpage(bin string) *Webpage {
	return &Webpage{bin: bin}
}

func (w *Webpage) ensureBrowser() (*rod.Browser, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.browser != nil {
		return w.browser, nil
	}

	l := launcher.New()
	bin := w.bin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin)
	}
	// Containers and CI have no usable sandbox.
	if os.Getenv("CI") == "true" || bin != "" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, eris.Wrapf(ErrBrowserConnect, "launch: %v%s", err, hints.ForBrowserConnect())
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		return nil, eris.Wrapf(ErrBrowserConnect, "connect: %v%s", err, hints.ForBrowserConnect())
	}
	w.browser = b
	return b, nil
}

// Close releases the browser.
func (w *Webpage) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.browser == nil {
		return nil
	}
	err := w.browser.Close()
	w.browser = nil
	return err
}

// Convert opens the source file and prints it to job.Output.
func (w *Webpage) Convert(ctx context.Context, job Job) error {
	src := job.Doc.Source
	if src.Kind != model.KindWebpage {
		return eris.Wrapf(ErrUnsupported, "webpage handler: %s is %s", src.ID, src.Kind)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	abs, err := filepath.Abs(src.Path)
	if err != nil {
		return eris.Wrapf(err, "resolving %s", src.Path)
	}

	b, err := w.ensureBrowser()
	if err != nil {
		return err
	}
	page, err := b.Page(proto.TargetCreateTarget{URL: "file://" + filepath.ToSlash(abs)})
	if err != nil {
		return eris.Wrapf(ErrPageCreate, "%s: %v", src.ID, err)
	}
	defer page.Close()

	timeout, err := effectiveTimeout(ctx, pageTimeout(job.Task.Quality))
	if err != nil {
		return err
	}
	// One deadline covers loading, printing and reading the stream.
	bounded := page.Context(ctx).Timeout(timeout)
	defer bounded.CancelTimeout()

	if err := bounded.WaitLoad(); err != nil {
		return eris.Wrapf(ErrPageLoad, "%s: %v", src.ID, err)
	}

	reader, err := bounded.PDF(PrintOptions(job.Task.Format, job.Task.Quality))
	if err != nil {
		return eris.Wrapf(ErrPDFGeneration, "%s: %v", src.ID, err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return eris.Wrapf(ErrPDFGeneration, "reading PDF stream: %v", err)
	}
	return writeOutput(job.Output, data)
}

// PrintOptions maps a paper format and quality profile onto Chrome's print
// settings, in inches.
func PrintOptions(f model.Format, q model.Quality) *proto.PagePrintToPDF {
	g := layout.GeometryFor(f)
	p := layout.ProfileFor(q, f)
	in := func(pt float64) *float64 {
		v := pt / pointsPerInch
		return &v
	}
	return &proto.PagePrintToPDF{
		PaperWidth:      in(g.Width),
		PaperHeight:     in(g.Height),
		MarginTop:       in(p.MarginTop),
		MarginBottom:    in(p.MarginBottom),
		MarginLeft:      in(p.MarginX),
		MarginRight:     in(p.MarginX),
		PrintBackground: true,
	}
}

// effectiveTimeout shortens limit to ctx's deadline when that comes first.
func effectiveTimeout(ctx context.Context, limit time.Duration) (time.Duration, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return limit, nil
	}
	left := time.Until(deadline)
	if left <= 0 {
		return 0, context.DeadlineExceeded
	}
	return min(left, limit), nil
}

func pageTimeout(q model.Quality) time.Duration {
	switch q {
	case model.QualityPremium:
		return webpageTimeoutPremium
	case model.QualityEnterprise:
		return webpageTimeoutEnterprise
	}
	return webpageTimeout
}
