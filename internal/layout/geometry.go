package layout

import "github.com/alnah/go-docpress/internal/model"

// Geometry is a page size in points.
type Geometry struct {
	Width  float64
	Height float64
}

var (
	geometryA4     = Geometry{Width: 595.28, Height: 841.89}
	geometryLetter = Geometry{Width: 612, Height: 792}
	geometryA3     = Geometry{Width: 841.89, Height: 1190.55}
)

// GeometryFor returns the page size of a format. Bundles print on A4.
func GeometryFor(f model.Format) Geometry {
	switch f {
	case model.FormatLetter:
		return geometryLetter
	case model.FormatA3:
		return geometryA3
	}
	return geometryA4
}

// Profile holds the margins and type scale of a quality level.
type Profile struct {
	MarginX      float64
	MarginTop    float64
	MarginBottom float64
	H1           float64
	H2           float64
	H3           float64
	Body         float64
	Small        float64
	LineHeight   float64
	ParagraphGap float64
}

var (
	profileEnterprise = Profile{
		MarginX: 62, MarginTop: 68, MarginBottom: 54,
		H1: 26, H2: 18, H3: 14, Body: 11.25, Small: 9,
		LineHeight: 1.45, ParagraphGap: 10,
	}
	profilePremium = Profile{
		MarginX: 56, MarginTop: 64, MarginBottom: 52,
		H1: 24, H2: 17, H3: 13.5, Body: 11, Small: 9,
		LineHeight: 1.42, ParagraphGap: 10,
	}
	profileStandard = Profile{
		MarginX: 52, MarginTop: 58, MarginBottom: 48,
		H1: 22, H2: 16, H3: 13, Body: 10.75, Small: 8.5,
		LineHeight: 1.40, ParagraphGap: 9,
	}
)

// ProfileFor returns the profile of a quality level. Draft shares the
// standard profile. A3 pages get wider side and top margins.
func ProfileFor(q model.Quality, f model.Format) Profile {
	p := profileStandard
	switch q {
	case model.QualityEnterprise:
		p = profileEnterprise
	case model.QualityPremium:
		p = profilePremium
	}
	if f == model.FormatA3 {
		p.MarginX += 10
		p.MarginTop += 10
	}
	return p
}

// footerClearance is kept free above the bottom margin for the footer.
const footerClearance = 34

// ContentWidth is the width between the side margins.
func (p Profile) ContentWidth(g Geometry) float64 {
	return g.Width - 2*p.MarginX
}

// BottomLimit is the lowest y a block may reach before a page break.
func (p Profile) BottomLimit(g Geometry) float64 {
	return g.Height - p.MarginBottom - footerClearance
}

// BodyStep is the baseline distance between two body lines.
func (p Profile) BodyStep() float64 {
	return p.Body * p.LineHeight
}
