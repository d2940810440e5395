package layout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-docpress/internal/blocks"
	"github.com/alnah/go-docpress/internal/model"
)

func TestChrome(t *testing.T) {
	t.Parallel()

	g := GeometryFor(model.FormatA4)
	p := ProfileFor(model.QualityPremium, model.FormatA4)
	m := monoMeasurer{}
	info := ChromeInfo{
		Brand:   "ABRAHAM OF LONDON",
		Site:    "abrahamoflondon.org",
		Title:   "A very long document title that cannot possibly fit in the header band at all",
		Tier:    "member",
		Quality: "premium",
	}

	cmds := Chrome(info, 7, g, p, m)
	require.Len(t, cmds, 6)

	assert.InDelta(t, p.MarginTop-18, cmds[0].Y, 1e-9)
	assert.Equal(t, "ABRAHAM OF LONDON", cmds[1].Text)
	assert.InDelta(t, p.MarginTop-26, cmds[1].Y, 1e-9)

	title := cmds[2]
	assert.Contains(t, title.Text, "…")
	assert.LessOrEqual(t, m.Width(title.Text, BodyRegular, p.Small), p.ContentWidth(g)*0.62+m.Width("…", BodyRegular, p.Small))
	assert.InDelta(t, g.Width-p.MarginX, title.X+m.Width(title.Text, BodyRegular, p.Small), 1e-9)

	assert.InDelta(t, g.Height-p.MarginBottom+16, cmds[3].Y, 1e-9)
	assert.Equal(t, "abrahamoflondon.org • MEMBER • PREMIUM", cmds[4].Text)
	assert.Equal(t, "7", cmds[5].Text)
	assert.InDelta(t, g.Height-p.MarginBottom+26, cmds[5].Y, 1e-9)
}

func TestWatermarkCmd(t *testing.T) {
	t.Parallel()

	g := GeometryFor(model.FormatA4)
	c := WatermarkCmd("ABRAHAM OF LONDON • MEMBER", g, monoMeasurer{})

	assert.Equal(t, HeadingRegular, c.Face)
	assert.InDelta(t, 32, c.Size, 1e-9)
	assert.InDelta(t, 25, c.Angle, 1e-9)
	assert.InDelta(t, 0.25, c.Alpha, 1e-9)
	assert.InDelta(t, g.Height/2, c.Y, 1e-9)
	assert.InDelta(t, g.Width/2, c.X+monoMeasurer{}.Width(c.Text, HeadingRegular, 32)/2, 1e-9)
}

func TestCover(t *testing.T) {
	t.Parallel()

	g := GeometryFor(model.FormatA4)
	p := ProfileFor(model.QualityStandard, model.FormatA4)
	cmds := Cover(CoverInfo{
		Title:    "Legacy Canvas",
		Category: "Frameworks",
		Tier:     "free",
		Quality:  "standard",
		Author:   "Abraham of London",
		Year:     2026,
	}, g, p, monoMeasurer{})

	var texts []string
	for _, c := range cmds {
		if c.Op == OpText {
			texts = append(texts, c.Text)
		}
	}
	assert.Equal(t, []string{"FRAMEWORKS", "Legacy Canvas", "FREE • STANDARD", "© 2026 Abraham of London"}, texts)

	assert.Equal(t, Paper, cmds[0].Fill)
	assert.InDelta(t, 18, cmds[1].H, 1e-9)
}

func TestCover_TitleLimitedToFourLines(t *testing.T) {
	t.Parallel()

	g := GeometryFor(model.FormatA4)
	p := ProfileFor(model.QualityStandard, model.FormatA4)
	cmds := Cover(CoverInfo{Title: words(200)}, g, p, monoMeasurer{})

	n := 0
	for _, c := range cmds {
		if c.Op == OpText && c.Face == HeadingBold {
			n++
		}
	}
	assert.Equal(t, 4, n)
}

func TestContents_NumbersShiftedByContentsPages(t *testing.T) {
	t.Parallel()

	g := GeometryFor(model.FormatA4)
	p := ProfileFor(model.QualityEnterprise, model.FormatA4)

	entries := make([]Entry, 80)
	for i := range entries {
		entries[i] = Entry{Title: fmt.Sprintf("Section %d", i), Level: 2, Page: i/10 + 1}
	}

	pages := Contents(entries, g, p, monoMeasurer{})
	require.Greater(t, len(pages), 1)
	offset := len(pages)

	first := textCmds(pages[0])
	require.GreaterOrEqual(t, len(first), 3)
	assert.Equal(t, "Contents", first[0].Text)
	assert.Equal(t, "Section 0", first[1].Text)
	assert.Equal(t, fmt.Sprint(1+offset), first[2].Text)
	assert.InDelta(t, g.Width-p.MarginX, first[2].X+monoMeasurer{}.Width(first[2].Text, BodyRegular, p.Body), 1e-9)

	var numbers int
	for _, pg := range pages {
		for _, c := range textCmds(pg) {
			assert.NotEmpty(t, c.Text)
			assert.LessOrEqual(t, c.Y, p.BottomLimit(g))
		}
		numbers += (len(textCmds(pg)) - 1) / 2
	}
	assert.GreaterOrEqual(t, numbers, 79)
}

func TestCanvas_GridAndPaging(t *testing.T) {
	t.Parallel()

	sections := blocks.Sections(blocks.Parse(`## Vision
Where the house is going.
- Ten-year picture
- Non-negotiables
## People
- Heirs
## Money
- Assets
## Faith
## Service
`))
	require.Len(t, sections, 5)

	g := GeometryFor(model.FormatA4)
	pages := Canvas(sections, CanvasInfo{Title: "Legacy Canvas", Brand: "Abraham of London", ID: "legacy-canvas", Format: model.FormatA4}, g, monoMeasurer{})

	require.Len(t, pages, 2)

	var titles []string
	for _, pg := range pages {
		for _, c := range pg.Cmds {
			if c.Op == OpText && c.Size == cardTitleSize {
				titles = append(titles, c.Text)
			}
		}
	}
	assert.Equal(t, []string{"Vision", "People", "Money", "Faith", "Service"}, titles)

	var prompts []string
	for _, c := range pages[0].Cmds {
		if c.Op == OpText && c.Size == promptSize {
			prompts = append(prompts, c.Text)
		}
	}
	assert.Equal(t, []string{"Ten-year picture", "Non-negotiables", "Heirs", "Assets", "Notes"}, prompts)
}
