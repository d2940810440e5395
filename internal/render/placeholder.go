package render

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PlaceholderInfo describes why a stand-in artifact was produced.
type PlaceholderInfo struct {
	ID       string
	Title    string
	Source   string
	Kind     string
	Tier     string
	Category string
	Reason   string
	Brand    string
}

// Placeholder draws a labelled one-page stand-in on A4 with the core
// Helvetica face, so it never depends on font assets.
func Placeholder(info PlaceholderInfo, now time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(50, 50, 50)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := strings.TrimSpace(info.Title)
	if title == "" {
		title = info.ID
	}
	brand := info.Brand
	if brand == "" {
		brand = DefaultBrand().Name
	}

	pdf.SetTitle(title, true)
	pdf.SetSubject("placeholder: "+strings.Join(strings.Fields(info.Reason), " "), true)
	pdf.SetCreator(creator, true)
	pdf.SetCreationDate(now)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(179, 128, 51)
	pdf.Text(50, 42, "PLACEHOLDER")

	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(26, 26, 26)
	pdf.SetXY(50, 70)
	pdf.MultiCell(495, 28, tr(strings.ToUpper(title)), "", "L", false)

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(102, 102, 102)
	pdf.SetX(50)
	pdf.MultiCell(495, 15, tr("This artifact is a stand-in. A full render was not available for this source."), "", "L", false)

	fields := [][2]string{
		{"ID", info.ID},
		{"Source", info.Source},
		{"Kind", info.Kind},
		{"Tier / Category", strings.Trim(info.Tier+" / "+info.Category, " /")},
		{"Reason", info.Reason},
		{"Generated", now.UTC().Format(time.RFC3339)},
	}
	y := pdf.GetY() + 24
	for _, f := range fields {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetTextColor(77, 82, 92)
		pdf.Text(50, y, tr(f[0]))
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(26, 26, 26)
		pdf.SetXY(150, y-9)
		pdf.MultiCell(395, 12, tr(f[1]), "", "L", false)
		y = max(y+18, pdf.GetY()+8)
	}

	pdf.SetDrawColor(224, 224, 224)
	pdf.SetLineWidth(1)
	pdf.Line(50, 790, 545, 790)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(26, 26, 26)
	pdf.Text(50, 805, tr(brand))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing placeholder: %w", err)
	}
	return buf.Bytes(), nil
}
