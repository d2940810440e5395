// Package render turns laid-out pages into PDF bytes with gofpdf. It owns
// font embedding, the cover, the running chrome and the watermark; page
// content itself comes from the layout package as draw commands.
package render

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/alnah/go-docpress/internal/blocks"
	"github.com/alnah/go-docpress/internal/layout"
	"github.com/alnah/go-docpress/internal/model"
)

const (
	familyHeading = "heading"
	familyBody    = "body"
	creator       = "docpress"
)

// Document is everything needed to render one artifact.
type Document struct {
	ID          string
	Title       string
	Subtitle    string
	Description string
	Category    string
	Keywords    []string
	Tier        model.Tier
	Format      model.Format
	Quality     model.Quality
	Blocks      []blocks.Block
	// Contents adds a contents page listing level 1 and 2 headings.
	Contents bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock sets the time source for creation dates and cover years.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// WithCompression toggles stream compression. On by default.
func WithCompression(on bool) Option {
	return func(r *Renderer) {
		r.compress = on
	}
}

// Renderer draws documents. It holds only immutable inputs, so one
// Renderer may serve concurrent calls.
type Renderer struct {
	fonts    FontSet
	brand    Brand
	now      func() time.Time
	compress bool
}

// New returns a Renderer over fonts. An incomplete set fails with
// ErrFontMissing.
func New(fonts FontSet, brand Brand, opts ...Option) (*Renderer, error) {
	if !fonts.complete() {
		return nil, fmt.Errorf("%w: font set is incomplete; expected %s",
			ErrFontMissing, strings.Join(expected(DefaultFontNames), ", "))
	}
	r := &Renderer{
		fonts:    fonts,
		brand:    brand.withDefaults(),
		now:      time.Now,
		compress: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Brand returns the brand the renderer stamps.
func (r *Renderer) Brand() Brand {
	return r.brand
}

// Render draws the cover, the optional contents page and the body.
func (r *Renderer) Render(doc Document) ([]byte, error) {
	pdf, geo := r.newPDF(doc)
	prof := layout.ProfileFor(doc.Quality, doc.Format)
	m := measurer{pdf}

	r.cover(pdf, doc, geo, prof, m)

	body := layout.Layout(doc.Blocks, geo, prof, m)

	offset := 0
	if doc.Contents {
		contents := layout.Contents(layout.Outline(body), geo, prof, m)
		offset = len(contents)
		for _, pg := range contents {
			r.page(pdf, doc, pg, pg.Number, geo, prof, m)
		}
	}

	topSeen := false
	for _, pg := range body {
		r.page(pdf, doc, pg, pg.Number+offset, geo, prof, m)
		for _, h := range pg.Headings {
			level := h.Level - 1
			if !topSeen {
				level = 0
			}
			topSeen = topSeen || level == 0
			pdf.Bookmark(h.Title, level, h.Y-prof.H1)
		}
	}

	return r.output(pdf)
}

// RenderCanvas draws a cover followed by the worksheet grid built from
// the document's level 2 sections.
func (r *Renderer) RenderCanvas(doc Document) ([]byte, error) {
	pdf, geo := r.newPDF(doc)
	prof := layout.ProfileFor(doc.Quality, doc.Format)
	m := measurer{pdf}

	r.cover(pdf, doc, geo, prof, m)

	info := layout.CanvasInfo{
		Title:    doc.Title,
		Subtitle: doc.Subtitle,
		Brand:    r.brand.Author,
		ID:       doc.ID,
		Format:   doc.Format,
	}
	for _, pg := range layout.Canvas(blocks.Sections(doc.Blocks), info, geo, m) {
		pdf.AddPage()
		drawAll(pdf, pg.Cmds)
		r.watermark(pdf, doc, geo, m)
	}

	return r.output(pdf)
}

func (r *Renderer) newPDF(doc Document) (*gofpdf.Fpdf, layout.Geometry) {
	geo := layout.GeometryFor(doc.Format)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: geo.Width, Ht: geo.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(r.compress)
	pdf.SetCatalogSort(true)

	pdf.AddUTF8FontFromBytes(familyHeading, "", r.fonts.Heading)
	pdf.AddUTF8FontFromBytes(familyHeading, "B", r.fonts.HeadingBold)
	pdf.AddUTF8FontFromBytes(familyBody, "", r.fonts.Body)
	pdf.AddUTF8FontFromBytes(familyBody, "B", r.fonts.BodyBold)

	now := r.now()
	pdf.SetTitle(doc.Title, true)
	pdf.SetAuthor(r.brand.Author, true)
	pdf.SetSubject(doc.Description, true)
	pdf.SetCreator(creator, true)
	if len(doc.Keywords) > 0 {
		pdf.SetKeywords(strings.Join(doc.Keywords, ", "), true)
	}
	pdf.SetCreationDate(now)
	return pdf, geo
}

func (r *Renderer) cover(pdf *gofpdf.Fpdf, doc Document, geo layout.Geometry, prof layout.Profile, m measurer) {
	pdf.AddPage()
	drawAll(pdf, layout.Cover(layout.CoverInfo{
		Title:       doc.Title,
		Subtitle:    doc.Subtitle,
		Description: doc.Description,
		Category:    doc.Category,
		Tier:        string(doc.Tier),
		Quality:     string(doc.Quality),
		Author:      r.brand.Author,
		Year:        r.now().Year(),
	}, geo, prof, m))
}

// page draws a finished content page: its commands, then chrome, then
// the watermark.
func (r *Renderer) page(pdf *gofpdf.Fpdf, doc Document, pg layout.Page, number int, geo layout.Geometry, prof layout.Profile, m measurer) {
	pdf.AddPage()
	drawAll(pdf, pg.Cmds)
	drawAll(pdf, layout.Chrome(layout.ChromeInfo{
		Brand:   r.brand.Name,
		Site:    r.brand.Site,
		Title:   doc.Title,
		Tier:    string(doc.Tier),
		Quality: string(doc.Quality),
	}, number, geo, prof, m))
	r.watermark(pdf, doc, geo, m)
}

func (r *Renderer) watermark(pdf *gofpdf.Fpdf, doc Document, geo layout.Geometry, m measurer) {
	if doc.Tier == "" || doc.Tier == model.TierFree {
		return
	}
	text := fmt.Sprintf("%s • %s", r.brand.Name, strings.ToUpper(string(doc.Tier)))
	draw(pdf, layout.WatermarkCmd(text, geo, m))
}

func (r *Renderer) output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// measurer measures text with the fonts registered on a document.
type measurer struct {
	pdf *gofpdf.Fpdf
}

func (m measurer) Width(text string, face layout.Face, size float64) float64 {
	setFont(m.pdf, face, size)
	return m.pdf.GetStringWidth(text)
}

func setFont(pdf *gofpdf.Fpdf, face layout.Face, size float64) {
	switch face {
	case layout.HeadingRegular:
		pdf.SetFont(familyHeading, "", size)
	case layout.HeadingBold:
		pdf.SetFont(familyHeading, "B", size)
	case layout.BodyBold:
		pdf.SetFont(familyBody, "B", size)
	default:
		pdf.SetFont(familyBody, "", size)
	}
}

func drawAll(pdf *gofpdf.Fpdf, cmds []layout.Cmd) {
	for _, c := range cmds {
		draw(pdf, c)
	}
}

func draw(pdf *gofpdf.Fpdf, c layout.Cmd) {
	switch c.Op {
	case layout.OpText:
		if c.Text == "" {
			return
		}
		setFont(pdf, c.Face, c.Size)
		pdf.SetTextColor(rgb(c.Color))
		if c.Alpha > 0 {
			pdf.SetAlpha(c.Alpha, "Normal")
			defer pdf.SetAlpha(1, "Normal")
		}
		if c.Angle != 0 {
			pdf.TransformBegin()
			pdf.TransformRotate(c.Angle, c.X, c.Y)
			pdf.Text(c.X, c.Y, c.Text)
			pdf.TransformEnd()
			return
		}
		pdf.Text(c.X, c.Y, c.Text)
	case layout.OpLine:
		pdf.SetDrawColor(rgb(c.Color))
		pdf.SetLineWidth(c.LineWidth)
		pdf.Line(c.X, c.Y, c.X2, c.Y2)
	case layout.OpRect:
		style := "F"
		switch c.Style {
		case layout.Stroke:
			style = "D"
		case layout.FillStroke:
			style = "FD"
		}
		pdf.SetFillColor(rgb(c.Fill))
		if c.Style != layout.Fill {
			pdf.SetDrawColor(rgb(c.Color))
			pdf.SetLineWidth(c.LineWidth)
		}
		pdf.Rect(c.X, c.Y, c.W, c.H, style)
	}
}

func rgb(c layout.Color) (int, int, int) {
	return channel(c.R), channel(c.G), channel(c.B)
}

func channel(v float64) int {
	return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
