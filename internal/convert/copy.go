package convert

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/alnah/go-docpress/internal/fileutil"
	"github.com/alnah/go-docpress/internal/model"
	"github.com/alnah/go-docpress/internal/render"
)

// PDFCopy copies pre-rendered PDFs after checking their header.
type PDFCopy struct{}

// Convert copies the source to job.Output.
func (PDFCopy) Convert(_ context.Context, job Job) error {
	src := job.Doc.Source
	if src.Kind != model.KindPDF {
		return eris.Wrapf(ErrUnsupported, "pdf copy: %s is %s", src.ID, src.Kind)
	}
	ok, err := fileutil.HasPDFHeader(src.Path)
	if err != nil {
		return eris.Wrapf(err, "checking %s", src.RelPath)
	}
	if !ok {
		return eris.Wrapf(fileutil.ErrNotPDF, "%s", src.RelPath)
	}
	if err := fileutil.CopyFile(src.Path, job.Output); err != nil {
		return eris.Wrapf(err, "copying %s", src.RelPath)
	}
	return nil
}

// Placeholder writes a labelled stand-in PDF. It accepts every source.
type Placeholder struct {
	brand string
	now   func() time.Time
}

// NewPlaceholder returns the placeholder handler.
func NewPlaceholder(brand string, now func() time.Time) *Placeholder {
	if now == nil {
		now = time.Now
	}
	return &Placeholder{brand: brand, now: now}
}

// Convert draws the placeholder for job. It is stamped with the source's
// modification time, so an unchanged source yields identical bytes.
func (p *Placeholder) Convert(_ context.Context, job Job) error {
	doc := job.Doc
	stamp := doc.Source.ModTime
	if stamp.IsZero() {
		stamp = p.now()
	}
	data, err := render.Placeholder(render.PlaceholderInfo{
		ID:       doc.Source.ID,
		Title:    doc.Meta.Title,
		Source:   doc.Source.RelPath,
		Kind:     string(doc.Source.Kind),
		Tier:     string(job.Task.Tier),
		Category: doc.Meta.Category,
		Reason:   job.Reason,
		Brand:    p.brand,
	}, stamp)
	if err != nil {
		return eris.Wrapf(err, "placeholder %s", doc.Source.ID)
	}
	return writeOutput(job.Output, data)
}
