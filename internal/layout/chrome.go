package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// ChromeInfo is the running header and footer content of a page.
type ChromeInfo struct {
	Brand   string
	Site    string
	Title   string
	Tier    string
	Quality string
}

const titleShare = 0.62

// Chrome returns the header and footer of a content page: top rule, brand
// mark and shortened title above, bottom rule, site line and page number
// below.
func Chrome(info ChromeInfo, number int, g Geometry, p Profile, m Measurer) []Cmd {
	left := p.MarginX
	right := g.Width - p.MarginX
	headerY := p.MarginTop - 26
	footerY := g.Height - p.MarginBottom + 26

	cmds := []Cmd{
		Line(left, headerY+8, right, headerY+8, 1, RuleGrey),
		Text(left, headerY, info.Brand, BodyBold, p.Small, Slate),
	}

	if title := Shorten(info.Title, BodyRegular, p.Small, (right-left)*titleShare, m); title != "" {
		w := m.Width(title, BodyRegular, p.Small)
		cmds = append(cmds, Text(right-w, headerY, title, BodyRegular, p.Small, Faint))
	}

	site := fmt.Sprintf("%s • %s • %s", info.Site, strings.ToUpper(info.Tier), strings.ToUpper(info.Quality))
	label := strconv.Itoa(number)
	cmds = append(cmds,
		Line(left, footerY-10, right, footerY-10, 1, RuleGrey),
		Text(left, footerY, site, BodyRegular, p.Small, Faint),
		Text(right-m.Width(label, BodyRegular, p.Small), footerY, label, BodyRegular, p.Small, Faint),
	)
	return cmds
}

const (
	watermarkSize  = 32
	watermarkAngle = 25
	watermarkAlpha = 0.25
)

// WatermarkCmd returns the diagonal watermark stamped on gated pages.
func WatermarkCmd(text string, g Geometry, m Measurer) Cmd {
	tw := m.Width(text, HeadingRegular, watermarkSize)
	c := Text((g.Width-tw)/2, g.Height/2, text, HeadingRegular, watermarkSize, Watermark)
	c.Angle = watermarkAngle
	c.Alpha = watermarkAlpha
	return c
}

// CoverInfo is the content of a cover page.
type CoverInfo struct {
	Title       string
	Subtitle    string
	Description string
	Category    string
	Tier        string
	Quality     string
	Author      string
	Year        int
}

const (
	coverBarH   = 18
	badgeH      = 22
	badgePad    = 10
	coverTitleN = 4
	coverSubN   = 3
	coverDescN  = 6
)

// Cover returns the commands of a cover page.
func Cover(info CoverInfo, g Geometry, p Profile, m Measurer) []Cmd {
	x := p.MarginX
	width := p.ContentWidth(g)

	cmds := []Cmd{
		Rect(0, 0, g.Width, g.Height, Paper),
		Rect(0, 0, g.Width, coverBarH, Gold),
	}

	if cat := strings.TrimSpace(info.Category); cat != "" {
		cmds = append(cmds, Text(x, p.MarginTop+40, strings.ToUpper(cat), BodyBold, p.Small, Gold))
	}

	title := strings.TrimSpace(info.Title)
	if title == "" {
		title = "Document"
	}
	y := p.MarginTop + 90
	titleSize := p.H1 + 8
	for _, ln := range limit(Wrap(title, HeadingBold, titleSize, width, m), coverTitleN) {
		cmds = append(cmds, Text(x, y, ln, HeadingBold, titleSize, Charcoal))
		y += (p.H1 + 10) * 1.15
	}

	if sub := strings.TrimSpace(info.Subtitle); sub != "" {
		y += 12
		size := p.Body + 1.5
		for _, ln := range limit(Wrap(sub, BodyRegular, size, width, m), coverSubN) {
			cmds = append(cmds, Text(x, y, ln, BodyRegular, size, Slate))
			y += size * p.LineHeight
		}
	}

	if desc := strings.TrimSpace(info.Description); desc != "" {
		y += 10
		for _, ln := range limit(Wrap(desc, BodyRegular, p.Body, width, m), coverDescN) {
			cmds = append(cmds, Text(x, y, ln, BodyRegular, p.Body, Faint))
			y += p.BodyStep()
		}
	}

	badge := fmt.Sprintf("%s • %s", strings.ToUpper(info.Tier), strings.ToUpper(info.Quality))
	badgeSize := p.Small + 1
	badgeW := m.Width(badge, BodyBold, badgeSize) + 2*badgePad
	cmds = append(cmds,
		Rect(x, g.Height-p.MarginBottom-36-badgeH, badgeW, badgeH, Charcoal),
		Text(x+badgePad, g.Height-p.MarginBottom-42, badge, BodyBold, badgeSize, Paper),
		Text(x, g.Height-p.MarginBottom, fmt.Sprintf("© %d %s", info.Year, info.Author), BodyRegular, p.Small, Faint),
	)
	return cmds
}

func limit(lines []string, n int) []string {
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}
