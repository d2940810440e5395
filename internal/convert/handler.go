// Package convert holds the handlers that turn one source into one PDF
// file. Each handler writes to the staging path it is given; validation,
// promotion and fallback between handlers belong to the caller.
package convert

import (
	"context"
	"errors"
	"os"

	"github.com/rotisserie/eris"

	"github.com/alnah/go-docpress/internal/fileutil"
	"github.com/alnah/go-docpress/internal/frontmatter"
	"github.com/alnah/go-docpress/internal/model"
	"github.com/alnah/go-docpress/internal/render"
)

// Sentinel errors for handler failures.
var (
	// ErrUnavailable means the handler's external tool is not installed.
	ErrUnavailable = errors.New("converter unavailable")

	// ErrUnsupported means the handler cannot convert this source.
	ErrUnsupported = errors.New("source not supported by handler")

	// ErrNoOutput means the tool finished without producing a file.
	ErrNoOutput = errors.New("converter produced no output")

	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)

// Job is one unit of handler work.
type Job struct {
	Doc  model.Document
	Task model.Task
	// Output is the staging path the handler must write.
	Output string
	// Reason explains earlier failures; only the placeholder reads it.
	Reason string
}

// Handler converts a source into a PDF at job.Output.
type Handler interface {
	Convert(ctx context.Context, job Job) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, job Job) error

// Convert calls f.
func (f HandlerFunc) Convert(ctx context.Context, job Job) error {
	return f(ctx, job)
}

// Renderer is the subset of *render.Renderer the handlers use.
type Renderer interface {
	Render(doc render.Document) ([]byte, error)
	RenderCanvas(doc render.Document) ([]byte, error)
}

var _ Renderer = (*render.Renderer)(nil)

// writeOutput writes data to the staging path.
func writeOutput(path string, data []byte) error {
	if err := fileutil.EnsureParent(path); err != nil {
		return eris.Wrapf(err, "creating directory for %s", path)
	}
	if err := os.WriteFile(path, data, fileutil.FilePerm); err != nil {
		return eris.Wrapf(err, "writing %s", path)
	}
	return nil
}

// readBody returns the source with any front matter removed. A broken
// front matter block is kept as body text.
func readBody(path string) ([]byte, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- scanned source file
	if err != nil {
		return nil, eris.Wrapf(err, "reading %s", path)
	}
	_, body, _, err := frontmatter.Split(content)
	if err != nil {
		return content, nil
	}
	return body, nil
}

// documentFor projects a job onto the renderer's input.
func documentFor(job Job) render.Document {
	m := job.Doc.Meta
	return render.Document{
		ID:          job.Doc.Source.ID,
		Title:       m.Title,
		Subtitle:    m.Subtitle,
		Description: m.Description,
		Category:    m.Category,
		Keywords:    m.Tags,
		Tier:        job.Task.Tier,
		Format:      job.Task.Format,
		Quality:     job.Task.Quality,
	}
}
