package layout

import "strconv"

const (
	contentsNumberRoom = 40
	contentsIndent     = 16
)

// Contents lays out a contents page listing entries with right-aligned
// page numbers. Listed numbers are shifted by the number of contents
// pages produced, so entries should carry body-relative page numbers.
func Contents(entries []Entry, g Geometry, p Profile, m Measurer) []Page {
	e := newEngine(g, p, m)

	e.emit(Text(e.left, e.cursor, "Contents", HeadingBold, p.H1, Charcoal))
	e.cursor += p.H1*1.15 + 10
	e.emit(Line(e.left, e.cursor, e.left+e.width, e.cursor, 1, RuleGrey))
	e.cursor += openerGap

	type slot struct {
		page, cmd int
		target    int
	}
	var numbers []slot

	step := e.prof.BodyStep()
	for _, en := range entries {
		e.ensureSpace(step + 2)

		face := BodyRegular
		indent := 0.0
		if en.Level <= 1 {
			face = BodyBold
		} else {
			indent = contentsIndent
		}
		title := Shorten(en.Title, face, p.Body, e.width-indent-contentsNumberRoom, m)
		e.emit(Text(e.left+indent, e.cursor, title, face, p.Body, Charcoal))

		numbers = append(numbers, slot{page: len(e.pages) - 1, cmd: len(e.current.Cmds), target: en.Page})
		e.emit(Text(0, e.cursor, "", BodyRegular, p.Body, Slate))
		e.cursor += step
	}

	offset := len(e.pages)
	right := e.left + e.width
	for _, s := range numbers {
		label := strconv.Itoa(s.target + offset)
		c := &e.pages[s.page].Cmds[s.cmd]
		c.Text = label
		c.X = right - m.Width(label, BodyRegular, p.Body)
	}
	return e.pages
}
