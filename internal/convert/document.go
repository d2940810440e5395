package convert

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/alnah/go-docpress/internal/blocks"
	"github.com/alnah/go-docpress/internal/model"
)

// Document renders markdown sources through the typesetting engine.
type Document struct {
	renderer Renderer
	contents bool
	quality  model.Quality
}

// DocumentOption configures a Document handler.
type DocumentOption func(*Document)

// WithContents adds a contents page.
func WithContents() DocumentOption {
	return func(d *Document) { d.contents = true }
}

// WithQuality pins the layout profile regardless of the task's quality.
func WithQuality(q model.Quality) DocumentOption {
	return func(d *Document) { d.quality = q }
}

// NewDocument returns the document handler.
func NewDocument(r Renderer, opts ...DocumentOption) *Document {
	d := &Document{renderer: r}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewEditorial returns the editorial handler: a document with a contents
// page set at enterprise geometry.
func NewEditorial(r Renderer) *Document {
	return NewDocument(r, WithContents(), WithQuality(model.QualityEnterprise))
}

// Convert renders the source body and writes it to job.Output.
func (d *Document) Convert(_ context.Context, job Job) error {
	if job.Doc.Source.Kind != model.KindDocument {
		return eris.Wrapf(ErrUnsupported, "document handler: %s is %s", job.Doc.Source.ID, job.Doc.Source.Kind)
	}
	body, err := readBody(job.Doc.Source.Path)
	if err != nil {
		return err
	}

	doc := documentFor(job)
	doc.Blocks = blocks.Parse(string(body))
	doc.Contents = d.contents
	if d.quality != "" {
		doc.Quality = d.quality
	}

	out, err := d.renderer.Render(doc)
	if err != nil {
		return eris.Wrapf(err, "rendering %s", job.Doc.Source.ID)
	}
	return writeOutput(job.Output, out)
}

// Canvas renders worksheet canvases: a cover and a grid of prompt boxes
// built from the document's level 2 sections.
type Canvas struct {
	renderer Renderer
}

// NewCanvas returns the canvas handler.
func NewCanvas(r Renderer) *Canvas {
	return &Canvas{renderer: r}
}

// Convert renders the canvas and writes it to job.Output.
func (c *Canvas) Convert(_ context.Context, job Job) error {
	if job.Doc.Source.Kind != model.KindDocument {
		return eris.Wrapf(ErrUnsupported, "canvas handler: %s is %s", job.Doc.Source.ID, job.Doc.Source.Kind)
	}
	body, err := readBody(job.Doc.Source.Path)
	if err != nil {
		return err
	}

	doc := documentFor(job)
	doc.Blocks = blocks.Parse(string(body))

	out, err := c.renderer.RenderCanvas(doc)
	if err != nil {
		return eris.Wrapf(err, "rendering canvas %s", job.Doc.Source.ID)
	}
	return writeOutput(job.Output, out)
}
