package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/alnah/go-docpress/internal/blocks"
	"github.com/alnah/go-docpress/internal/model"
)

// maxSheetRows bounds the rows listed per sheet.
const maxSheetRows = 500

// Spreadsheet renders an .xlsx workbook as text: one section per sheet
// and one list item per non-empty row.
type Spreadsheet struct {
	renderer Renderer
}

// NewSpreadsheet returns the spreadsheet-text handler.
func NewSpreadsheet(r Renderer) *Spreadsheet {
	return &Spreadsheet{renderer: r}
}

// Convert reads the workbook and renders its text.
func (s *Spreadsheet) Convert(_ context.Context, job Job) error {
	src := job.Doc.Source
	if src.Kind != model.KindSpreadsheet || !strings.EqualFold(src.Ext, ".xlsx") {
		return eris.Wrapf(ErrUnsupported, "spreadsheet handler: %s", src.RelPath)
	}

	bs, err := SheetBlocks(src.Path)
	if err != nil {
		return err
	}

	doc := documentFor(job)
	if doc.Description != "" {
		bs = append([]blocks.Block{blocks.Paragraph(doc.Description)}, bs...)
	}
	doc.Blocks = bs

	out, err := s.renderer.Render(doc)
	if err != nil {
		return eris.Wrapf(err, "rendering %s", src.ID)
	}
	return writeOutput(job.Output, out)
}

// SheetBlocks reads every sheet of an .xlsx workbook into blocks. Cells
// of a row are joined with " | "; empty rows are skipped.
func SheetBlocks(path string) ([]blocks.Block, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	var out []blocks.Block
	for _, sheet := range f.Sheets {
		out = append(out, blocks.Heading(2, sheet.Name))
		n := 0
		for _, row := range sheet.Rows {
			if row == nil {
				continue
			}
			line := rowText(row)
			if line == "" {
				continue
			}
			if n == maxSheetRows {
				out = append(out, blocks.Paragraph(fmt.Sprintf("(%d more rows omitted)", len(sheet.Rows)-n)))
				break
			}
			out = append(out, blocks.ListItem(line, 0))
			n++
		}
	}
	return out, nil
}

func rowText(row *xlsx.Row) string {
	cells := make([]string, 0, len(row.Cells))
	for _, cell := range row.Cells {
		if v := strings.TrimSpace(cell.String()); v != "" {
			cells = append(cells, v)
		}
	}
	return strings.Join(cells, " | ")
}
