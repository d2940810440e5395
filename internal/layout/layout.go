// Package layout places parsed blocks on pages. It produces draw commands
// in points and never touches a PDF library; a Measurer supplies text
// widths so the same layout can be driven by real fonts or by a stub.
package layout

import (
	"github.com/alnah/go-docpress/internal/blocks"
)

const (
	openerSpace = 40
	openerRule  = 2
	openerGap   = 18

	quoteSpace  = 44
	quoteIndent = 14
	quoteBarW   = 3
	quoteBarH   = 34

	listIndent    = 16
	listTextShift = 14
	listGap       = 4

	codePad      = 12
	codeBottom   = 10
	codeEmptyH   = 18
	codeMaxBoxH  = 360
	codeBoxLift  = 8
	codeBoxExtra = 14
)

type headingStyle struct {
	space float64
	face  Face
	color Color
	step  float64
	gap   float64
}

func (p Profile) heading(level int) (float64, headingStyle) {
	switch level {
	case 1:
		return p.H1, headingStyle{space: 44, face: HeadingBold, color: Charcoal, step: 1.15, gap: 10}
	case 2:
		return p.H2, headingStyle{space: 36, face: HeadingBold, color: Charcoal, step: 1.20, gap: 8}
	}
	return p.H3, headingStyle{space: 28, face: BodyBold, color: Slate, step: 1.22, gap: 6}
}

// engine tracks the page being filled and the baseline cursor.
type engine struct {
	geo     Geometry
	prof    Profile
	m       Measurer
	left    float64
	width   float64
	limit   float64
	pages   []Page
	current *Page
	cursor  float64
}

func newEngine(g Geometry, p Profile, m Measurer) *engine {
	e := &engine{
		geo:   g,
		prof:  p,
		m:     m,
		left:  p.MarginX,
		width: p.ContentWidth(g),
		limit: p.BottomLimit(g),
	}
	e.newPage()
	return e
}

func (e *engine) newPage() {
	e.pages = append(e.pages, Page{Number: len(e.pages) + 1})
	e.current = &e.pages[len(e.pages)-1]
	e.cursor = e.prof.MarginTop
}

// ensureSpace breaks the page when n more points would cross the limit.
func (e *engine) ensureSpace(n float64) {
	if e.cursor+n > e.limit {
		e.newPage()
	}
}

// usable is the vertical room of an empty page.
func (e *engine) usable() float64 {
	return e.limit - e.prof.MarginTop
}

func (e *engine) emit(c Cmd) {
	e.current.Cmds = append(e.current.Cmds, c)
}

// Layout places blocks on pages of geometry g using profile p. Pages are
// numbered from 1 and the first page opens with a heavy rule.
func Layout(bs []blocks.Block, g Geometry, p Profile, m Measurer) []Page {
	e := newEngine(g, p, m)

	e.ensureSpace(openerSpace)
	e.emit(Line(e.left, e.cursor, e.left+e.width, e.cursor, openerRule, RuleGrey))
	e.cursor += openerGap

	for _, b := range bs {
		switch b.Kind {
		case blocks.KindHeading:
			e.heading(b)
		case blocks.KindQuote:
			e.quote(b)
		case blocks.KindListItem:
			e.listItem(b)
		case blocks.KindCode:
			e.code(b)
		case blocks.KindParagraph:
			e.paragraph(b)
		}
	}
	return e.pages
}

func (e *engine) heading(b blocks.Block) {
	size, st := e.prof.heading(b.Level)
	step := size * st.step

	e.ensureSpace(st.space)
	if b.Level <= 2 {
		e.current.Headings = append(e.current.Headings, Entry{Title: b.Text, Level: b.Level, Page: e.current.Number, Y: e.cursor})
	}
	for i, ln := range Wrap(b.Text, st.face, size, e.width, e.m) {
		if i > 0 {
			e.ensureSpace(step)
		}
		e.emit(Text(e.left, e.cursor, ln, st.face, size, st.color))
		e.cursor += step
	}
	e.cursor += st.gap
}

func (e *engine) quote(b blocks.Block) {
	step := e.prof.BodyStep()

	e.ensureSpace(quoteSpace)
	e.emit(Rect(e.left, e.cursor-(quoteBarH-6), quoteBarW, quoteBarH, Gold))

	for _, ln := range Wrap(b.Text, BodyRegular, e.prof.Body, e.width-quoteIndent, e.m) {
		e.ensureSpace(step + 2)
		e.emit(Text(e.left+quoteIndent, e.cursor, ln, BodyRegular, e.prof.Body, Slate))
		e.cursor += step
	}
	e.cursor += e.prof.ParagraphGap
}

func (e *engine) listItem(b blocks.Block) {
	step := e.prof.BodyStep()
	indent := float64(min(blocks.MaxListLevel, max(0, b.Level))) * listIndent
	bulletX := e.left + indent
	textX := bulletX + listTextShift

	lines := Wrap(b.Text, BodyRegular, e.prof.Body, e.width-indent-listTextShift, e.m)

	e.ensureSpace(step + 2)
	e.emit(Text(bulletX, e.cursor, "•", BodyBold, e.prof.Body+2, Gold))

	for _, ln := range lines {
		e.ensureSpace(step + 2)
		e.emit(Text(textX, e.cursor, ln, BodyRegular, e.prof.Body, Charcoal))
		e.cursor += step
	}
	e.cursor += listGap
}

func (e *engine) code(b blocks.Block) {
	size := e.prof.Small + 0.5
	lineH := size * 1.35
	lines := b.Lines
	if len(lines) > blocks.MaxCodeLines {
		lines = lines[:blocks.MaxCodeLines]
	}
	boxH := float64(codeEmptyH)
	if n := len(lines); n > 0 {
		boxH = codePad + size + float64(n-1)*lineH + codeBottom
	}
	boxH = min(boxH, codeMaxBoxH)

	e.ensureSpace(boxH + codeBoxExtra)

	boxTop := e.cursor - codeBoxLift
	boxBottom := boxTop + boxH
	e.emit(BorderedRect(e.left, boxTop, e.width, boxH, CodeFill, RuleGrey))

	// Lines past the clamped box are dropped.
	fit := int((boxH-codePad-size-codeBottom)/lineH+1e-6) + 1
	y := boxTop + codePad + size
	for i, runs := range highlight(b.Lang, lines) {
		if i >= fit {
			break
		}
		x := e.left + codePad
		for _, r := range runs {
			e.emit(Text(x, y, r.text, BodyRegular, size, r.color))
			x += e.m.Width(r.text, BodyRegular, size)
		}
		y += lineH
	}

	e.cursor = boxBottom + e.prof.ParagraphGap
}

// paragraph keeps a paragraph that fits on one page together; longer
// paragraphs flow line by line.
func (e *engine) paragraph(b blocks.Block) {
	step := e.prof.BodyStep()
	lines := Wrap(b.Text, BodyRegular, e.prof.Body, e.width, e.m)

	if whole := float64(len(lines))*step + 2; whole <= e.usable() {
		e.ensureSpace(whole)
	}
	for _, ln := range lines {
		e.ensureSpace(step + 2)
		e.emit(Text(e.left, e.cursor, ln, BodyRegular, e.prof.Body, Charcoal))
		e.cursor += step
	}
	e.cursor += e.prof.ParagraphGap
}
