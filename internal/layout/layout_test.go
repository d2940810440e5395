package layout

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-docpress/internal/blocks"
	"github.com/alnah/go-docpress/internal/model"
)

// monoMeasurer sets every rune half an em wide.
type monoMeasurer struct{}

func (monoMeasurer) Width(text string, _ Face, size float64) float64 {
	return float64(utf8.RuneCountInString(text)) * size * 0.5
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func textCmds(p Page) []Cmd {
	var out []Cmd
	for _, c := range p.Cmds {
		if c.Op == OpText {
			out = append(out, c)
		}
	}
	return out
}

func TestGeometryFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Geometry{595.28, 841.89}, GeometryFor(model.FormatA4))
	assert.Equal(t, Geometry{612, 792}, GeometryFor(model.FormatLetter))
	assert.Equal(t, Geometry{841.89, 1190.55}, GeometryFor(model.FormatA3))
	assert.Equal(t, GeometryFor(model.FormatA4), GeometryFor(model.FormatBundle))
}

func TestProfileFor(t *testing.T) {
	t.Parallel()

	std := ProfileFor(model.QualityStandard, model.FormatA4)
	assert.Equal(t, std, ProfileFor(model.QualityDraft, model.FormatA4))
	assert.InDelta(t, 10.75, std.Body, 1e-9)

	ent := ProfileFor(model.QualityEnterprise, model.FormatA4)
	assert.InDelta(t, 62, ent.MarginX, 1e-9)

	a3 := ProfileFor(model.QualityPremium, model.FormatA3)
	assert.InDelta(t, 66, a3.MarginX, 1e-9)
	assert.InDelta(t, 74, a3.MarginTop, 1e-9)
}

func TestLayout_PaginationOnePagePerParagraph(t *testing.T) {
	t.Parallel()

	g := GeometryFor(model.FormatA4)
	p := ProfileFor(model.QualityStandard, model.FormatA4)
	limit := p.BottomLimit(g)

	// 18 four-letter words fill one line; 30 lines are taller than half a
	// page and shorter than a full one.
	para := blocks.Paragraph(words(18 * 30))
	const n = 5
	bs := make([]blocks.Block, n)
	for i := range bs {
		bs[i] = para
	}

	pages := Layout(bs, g, p, monoMeasurer{})

	require.Len(t, pages, n)
	for i, pg := range pages {
		assert.Equal(t, i+1, pg.Number)
		lines := textCmds(pg)
		assert.Len(t, lines, 30, "page %d holds exactly one paragraph", pg.Number)
		for _, c := range lines {
			assert.LessOrEqual(t, c.Y, limit)
		}
	}
}

func TestLayout_LongParagraphFlowsWithinLimit(t *testing.T) {
	t.Parallel()

	g := GeometryFor(model.FormatLetter)
	p := ProfileFor(model.QualityPremium, model.FormatLetter)
	limit := p.BottomLimit(g)

	pages := Layout([]blocks.Block{blocks.Paragraph(words(4000))}, g, p, monoMeasurer{})

	require.Greater(t, len(pages), 2)
	for _, pg := range pages {
		for _, c := range textCmds(pg) {
			assert.LessOrEqual(t, c.Y, limit+p.BodyStep())
			assert.GreaterOrEqual(t, c.Y, p.MarginTop)
		}
	}
}

func TestLayout_OpenerAndHeadings(t *testing.T) {
	t.Parallel()

	g := GeometryFor(model.FormatA4)
	p := ProfileFor(model.QualityPremium, model.FormatA4)

	pages := Layout(blocks.Parse("# Title\n\n## Part\n\n### Detail\n\nBody."), g, p, monoMeasurer{})
	require.Len(t, pages, 1)

	cmds := pages[0].Cmds
	require.NotEmpty(t, cmds)
	assert.Equal(t, OpLine, cmds[0].Op)
	assert.InDelta(t, 2, cmds[0].LineWidth, 1e-9)

	texts := textCmds(pages[0])
	require.Len(t, texts, 4)
	assert.Equal(t, HeadingBold, texts[0].Face)
	assert.InDelta(t, p.H1, texts[0].Size, 1e-9)
	assert.InDelta(t, p.MarginTop+18, texts[0].Y, 1e-9)
	assert.InDelta(t, p.MarginTop+18+p.H1*1.15+10, texts[1].Y, 1e-9)
	assert.Equal(t, BodyBold, texts[2].Face)
	assert.Equal(t, Slate, texts[2].Color)

	outline := Outline(pages)
	require.Len(t, outline, 2)
	assert.Equal(t, Entry{Title: "Title", Level: 1, Page: 1, Y: texts[0].Y}, outline[0])
	assert.Equal(t, Entry{Title: "Part", Level: 2, Page: 1, Y: texts[1].Y}, outline[1])
}

func TestLayout_ListIndent(t *testing.T) {
	t.Parallel()

	g := GeometryFor(model.FormatA4)
	p := ProfileFor(model.QualityStandard, model.FormatA4)

	pages := Layout([]blocks.Block{blocks.ListItem("deep", 2)}, g, p, monoMeasurer{})
	texts := textCmds(pages[0])
	require.Len(t, texts, 2)

	bullet, text := texts[0], texts[1]
	assert.Equal(t, "•", bullet.Text)
	assert.Equal(t, Gold, bullet.Color)
	assert.InDelta(t, p.MarginX+32, bullet.X, 1e-9)
	assert.InDelta(t, p.MarginX+32+14, text.X, 1e-9)
	assert.InDelta(t, bullet.Y, text.Y, 1e-9)
}

func TestLayout_QuoteBar(t *testing.T) {
	t.Parallel()

	g := GeometryFor(model.FormatA4)
	p := ProfileFor(model.QualityStandard, model.FormatA4)

	pages := Layout([]blocks.Block{blocks.Quote("quoted")}, g, p, monoMeasurer{})
	cmds := pages[0].Cmds
	require.Len(t, cmds, 3)

	bar, text := cmds[1], cmds[2]
	assert.Equal(t, OpRect, bar.Op)
	assert.InDelta(t, 3, bar.W, 1e-9)
	assert.InDelta(t, 34, bar.H, 1e-9)
	assert.InDelta(t, text.Y-28, bar.Y, 1e-9)
	assert.InDelta(t, p.MarginX+14, text.X, 1e-9)
}

func TestLayout_CodeBoxTruncates(t *testing.T) {
	t.Parallel()

	g := GeometryFor(model.FormatA4)
	p := ProfileFor(model.QualityStandard, model.FormatA4)

	lines := make([]string, blocks.MaxCodeLines)
	for i := range lines {
		lines[i] = "x = 1"
	}
	pages := Layout([]blocks.Block{blocks.Code("python", lines...)}, g, p, monoMeasurer{})
	require.Len(t, pages, 1)

	var box *Cmd
	for i, c := range pages[0].Cmds {
		if c.Op == OpRect {
			box = &pages[0].Cmds[i]
			break
		}
	}
	require.NotNil(t, box)
	assert.InDelta(t, 360, box.H, 1e-9)
	assert.Equal(t, FillStroke, box.Style)

	size := p.Small + 0.5
	texts := textCmds(pages[0])
	require.NotEmpty(t, texts)
	assert.InDelta(t, box.Y+12+size, texts[0].Y, 1e-9)
	for _, c := range texts {
		assert.LessOrEqual(t, c.Y, box.Y+box.H-10+1e-6)
	}
}

func TestLayout_CodeBoxKeepsEveryLine(t *testing.T) {
	t.Parallel()

	g := GeometryFor(model.FormatA4)
	for _, q := range []model.Quality{model.QualityDraft, model.QualityStandard, model.QualityPremium, model.QualityEnterprise} {
		for _, n := range []int{1, 2, 3, 10} {
			t.Run(fmt.Sprintf("%s/%d", q, n), func(t *testing.T) {
				t.Parallel()
				p := ProfileFor(q, model.FormatA4)
				lines := make([]string, n)
				for i := range lines {
					lines[i] = fmt.Sprintf("line%d", i)
				}
				pages := Layout([]blocks.Block{blocks.Code("", lines...)}, g, p, monoMeasurer{})
				require.Len(t, pages, 1)

				var box Cmd
				for _, c := range pages[0].Cmds {
					if c.Op == OpRect {
						box = c
						break
					}
				}
				baselines := map[float64]bool{}
				for _, c := range textCmds(pages[0]) {
					baselines[c.Y] = true
					assert.LessOrEqual(t, c.Y, box.Y+box.H-10+1e-6)
				}
				assert.Len(t, baselines, n)
			})
		}
	}
}

func TestHighlight_PreservesText(t *testing.T) {
	t.Parallel()

	lines := []string{"func main() {", "\tprintln(\"hi\")", "}"}
	for _, lang := range []string{"go", "no-such-language", ""} {
		runs := highlight(lang, lines)
		require.Len(t, runs, 3, lang)

		var got []string
		for _, rs := range runs {
			var b strings.Builder
			for _, r := range rs {
				b.WriteString(r.text)
			}
			got = append(got, b.String())
		}
		assert.Equal(t, []string{"func main() {", "    println(\"hi\")", "}"}, got, lang)
	}
}
