// Package docpress turns a tree of markdown, spreadsheet, slide deck, web
// page and PDF sources into branded, tiered PDF downloads plus a JSON
// registry describing them.
//
// # Quick Start
//
// Create a generator and run it:
//
//	gen, err := docpress.NewGenerator(
//	    docpress.WithConfig(cfg),
//	    docpress.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gen.Close()
//
//	report, err := gen.Run(ctx, docpress.RunOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report.WriteSummary(os.Stdout)
//
// # Pipeline
//
// A run moves through these stages:
//
//  1. Scan: discover sources under the configured roots and resolve metadata
//  2. Matrix: expand each document into tier × format × quality tasks
//  3. Filter: skip tasks whose artifact is real and newer than the source
//  4. Dispatch: try each matching route until one writes a valid PDF
//  5. Promote: rename the staged file over the artifact, unless that would
//     replace a real render with an undersized one
//  6. Registry: rebuild registry.json and manifest.json from disk
//
// # Routes
//
// The default chain is editorial, canvas, document, webpage, office,
// spreadsheet-text, pdf-copy and placeholder. Replace it with WithRoutes:
//
//	gen, err := docpress.NewGenerator(docpress.WithRoutes(
//	    docpress.Route{Name: "copy", Match: docpress.KindIs(model.KindPDF), Handler: convert.PDFCopy{}},
//	))
//
// # Font Requirements
//
// Typeset output needs four TrueType faces (see fonts.* in the config).
// A missing face is a configuration error; no fallback font is used.
// The placeholder route needs no fonts.
//
// # Converters
//
// Spreadsheets and slide decks use LibreOffice when soffice is found
// (converters.soffice, SOFFICE_PATH, LIBREOFFICE_PATH or PATH). HTML
// sources use headless Chrome through go-rod when generation.webpage is
// set; ROD_BROWSER_BIN selects a custom binary.
package docpress
