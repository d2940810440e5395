package layout

import (
	"strings"

	"github.com/alnah/go-docpress/internal/blocks"
	"github.com/alnah/go-docpress/internal/model"
)

// CanvasInfo is the header and footer content of a worksheet canvas.
type CanvasInfo struct {
	Title    string
	Subtitle string
	Brand    string
	ID       string
	Format   model.Format
}

type canvasGrid struct {
	marginX, gapX, gapY, top, cardH float64
}

func gridFor(f model.Format) canvasGrid {
	switch f {
	case model.FormatA3:
		return canvasGrid{marginX: 58, gapX: 22, gapY: 22, top: 170, cardH: 310}
	case model.FormatLetter:
		return canvasGrid{marginX: 52, gapX: 18, gapY: 18, top: 160, cardH: 245}
	}
	return canvasGrid{marginX: 52, gapX: 16, gapY: 18, top: 160, cardH: 245}
}

var (
	cardShadow = Color{0.965, 0.965, 0.966}
	cardBody   = Color{0.992, 0.992, 0.990}
	promptBox  = Color{1, 1, 1}
	promptEdge = Color{0.86, 0.86, 0.87}
)

const (
	canvasCols    = 2
	canvasFooterY = 38
	promptLabelH  = 10
	promptGap     = 10
	promptMinH    = 28
	cardTitleSize = 11.5
	cardNoteSize  = 8.5
	promptSize    = 8.8
)

// Canvas lays sections out as a two-column grid of worksheet cards. Each
// card is titled with the section heading, noted with its first
// paragraph, and holds one labelled writing box per list item. Cards
// that do not fit continue on a new page.
func Canvas(sections []blocks.Section, info CanvasInfo, g Geometry, m Measurer) []Page {
	grid := gridFor(info.Format)
	cardW := (g.Width - 2*grid.marginX - grid.gapX*(canvasCols-1)) / canvasCols
	bottom := g.Height - canvasFooterY - 28

	var pages []Page
	var cur *Page
	y := 0.0
	startPage := func() {
		pages = append(pages, Page{Number: len(pages) + 1})
		cur = &pages[len(pages)-1]
		cur.Cmds = append(cur.Cmds, canvasHeader(info, g, grid, m)...)
		y = grid.top
	}
	startPage()

	for i, s := range sections {
		col := i % canvasCols
		if col == 0 && i > 0 {
			y += grid.cardH + grid.gapY
		}
		if col == 0 && y+grid.cardH > bottom && y > grid.top {
			cur.Cmds = append(cur.Cmds, canvasFooter(info, g, grid)...)
			startPage()
		}
		x := grid.marginX + float64(col)*(cardW+grid.gapX)
		cur.Cmds = append(cur.Cmds, card(s, x, y, cardW, grid.cardH, m)...)
	}
	cur.Cmds = append(cur.Cmds, canvasFooter(info, g, grid)...)
	return pages
}

func canvasHeader(info CanvasInfo, g Geometry, grid canvasGrid, m Measurer) []Cmd {
	x := grid.marginX
	cmds := []Cmd{
		Rect(0, 0, g.Width, g.Height, Paper),
		Rect(0, 0, g.Width, 6, Gold),
		Text(x, 72, strings.ToUpper(info.Title), HeadingBold, 20, Charcoal),
	}
	if info.Subtitle != "" {
		cmds = append(cmds, Text(x, 94, info.Subtitle, BodyRegular, 10, Slate))
	}
	format := string(info.Format)
	cmds = append(cmds,
		Text(g.Width-x-m.Width(format, BodyBold, 9), 72, format, BodyBold, 9, Gold),
		Line(x, 116, g.Width-x, 116, 1, RuleGrey),
	)
	return cmds
}

func canvasFooter(info CanvasInfo, g Geometry, grid canvasGrid) []Cmd {
	left := grid.marginX
	y := g.Height - canvasFooterY
	return []Cmd{
		Line(left, y-18, g.Width-left, y-18, 1, RuleGrey),
		Text(left, y, info.Brand, BodyRegular, 8, Faint),
		Text(g.Width-left-140, y, info.ID, BodyRegular, 8, Faint),
	}
}

func card(s blocks.Section, x, y, w, h float64, m Measurer) []Cmd {
	cmds := []Cmd{
		Rect(x+1.5, y+1.5, w, h, cardShadow),
		BorderedRect(x, y, w, h, cardBody, RuleGrey),
		Line(x, y+36, x+w, y+36, 2, Gold),
		Text(x+12, y+26, Shorten(s.Title, BodyBold, cardTitleSize, w-24, m), BodyBold, cardTitleSize, Charcoal),
	}

	var note string
	var prompts []string
	for _, b := range s.Body {
		switch b.Kind {
		case blocks.KindParagraph:
			if note == "" {
				note = b.Text
			}
		case blocks.KindListItem:
			prompts = append(prompts, b.Text)
		}
	}
	if note != "" {
		cmds = append(cmds, Text(x+12, y+50, Shorten(note, BodyRegular, cardNoteSize, w-24, m), BodyRegular, cardNoteSize, Faint))
	}
	if len(prompts) == 0 {
		prompts = []string{"Notes"}
	}

	top := y + 62
	available := h - 62 - 16
	rows := float64(len(prompts))
	per := max(42, (available-promptGap*(rows-1))/rows)
	boxH := max(promptMinH, per-promptLabelH)
	for i, label := range prompts {
		blockTop := top + float64(i)*(per+promptGap)
		if blockTop+promptLabelH+boxH > y+h-8 {
			break
		}
		cmds = append(cmds,
			Text(x+12, blockTop+promptSize, Shorten(label, BodyBold, promptSize, w-24, m), BodyBold, promptSize, Charcoal),
			BorderedRect(x+12, blockTop+promptLabelH+2, w-24, boxH, promptBox, promptEdge),
		)
	}
	return cmds
}
