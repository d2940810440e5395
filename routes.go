package docpress

import (
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alnah/go-docpress/internal/config"
	"github.com/alnah/go-docpress/internal/convert"
	"github.com/alnah/go-docpress/internal/model"
)

// Route names of the default chain.
const (
	RouteEditorial       = "editorial"
	RouteCanvas          = "canvas"
	RouteDocument        = "document"
	RouteWebpage         = "webpage"
	RouteOffice          = "office"
	RouteSpreadsheetText = "spreadsheet-text"
	RoutePDFCopy         = "pdf-copy"
	RoutePlaceholder     = "placeholder"
)

// Predicate selects sources for a route. Predicates must be pure.
type Predicate func(src model.SourceRecord, meta model.Metadata) bool

// Route pairs a predicate with the handler it guards. Routes are tried in
// order until one produces a valid PDF.
type Route struct {
	Name    string
	Match   Predicate
	Handler convert.Handler
}

// IsPlaceholder reports whether the route only ever produces stand-ins.
func (r Route) IsPlaceholder() bool {
	return r.Name == RoutePlaceholder
}

// KindIs matches any of kinds.
func KindIs(kinds ...model.Kind) Predicate {
	return func(src model.SourceRecord, _ model.Metadata) bool {
		for _, k := range kinds {
			if src.Kind == k {
				return true
			}
		}
		return false
	}
}

// IDMatches matches ids against doublestar patterns.
func IDMatches(patterns ...string) Predicate {
	return func(src model.SourceRecord, _ model.Metadata) bool {
		return matchID(patterns, src.ID)
	}
}

// TypeIs matches the resolved document type, case-insensitively.
func TypeIs(types ...string) Predicate {
	return func(_ model.SourceRecord, meta model.Metadata) bool {
		for _, t := range types {
			if strings.EqualFold(meta.Type, t) {
				return true
			}
		}
		return false
	}
}

// ExtIs matches file extensions, with or without the dot.
func ExtIs(exts ...string) Predicate {
	return func(src model.SourceRecord, _ model.Metadata) bool {
		ext := strings.TrimPrefix(strings.ToLower(src.Ext), ".")
		for _, e := range exts {
			if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
				return true
			}
		}
		return false
	}
}

// Always matches everything.
func Always() Predicate {
	return func(model.SourceRecord, model.Metadata) bool { return true }
}

// All matches when every predicate matches.
func All(ps ...Predicate) Predicate {
	return func(src model.SourceRecord, meta model.Metadata) bool {
		for _, p := range ps {
			if !p(src, meta) {
				return false
			}
		}
		return true
	}
}

// Any matches when one predicate matches.
func Any(ps ...Predicate) Predicate {
	return func(src model.SourceRecord, meta model.Metadata) bool {
		for _, p := range ps {
			if p(src, meta) {
				return true
			}
		}
		return false
	}
}

// matchID reports whether id equals or matches one of patterns.
// Patterns are validated by the config layer; a bad one never matches.
func matchID(patterns []string, id string) bool {
	for _, p := range patterns {
		if p == id {
			return true
		}
		if ok, err := doublestar.Match(p, id); err == nil && ok {
			return true
		}
	}
	return false
}

// RouteDeps are the handlers the default chain is built from.
// A nil Webpage or Office leaves that route out.
type RouteDeps struct {
	Renderer convert.Renderer
	Webpage  convert.Handler
	Office   convert.Handler
	Brand    string
	Now      func() time.Time
}

// DefaultRoutes returns the standard chain: editorial, canvas, document,
// webpage, office, spreadsheet text, PDF copy and placeholder.
func DefaultRoutes(cfg *config.Config, deps RouteDeps) []Route {
	var routes []Route
	if deps.Renderer != nil {
		routes = append(routes,
			Route{
				Name:    RouteEditorial,
				Match:   All(KindIs(model.KindDocument), IDMatches(cfg.Generation.Editorial...)),
				Handler: convert.NewEditorial(deps.Renderer),
			},
			Route{
				Name:    RouteCanvas,
				Match:   All(KindIs(model.KindDocument), Any(TypeIs("canvas"), IDMatches("*canvas*"))),
				Handler: convert.NewCanvas(deps.Renderer),
			},
			Route{
				Name:    RouteDocument,
				Match:   KindIs(model.KindDocument),
				Handler: convert.NewDocument(deps.Renderer),
			},
		)
	}
	if deps.Webpage != nil {
		routes = append(routes, Route{Name: RouteWebpage, Match: KindIs(model.KindWebpage), Handler: deps.Webpage})
	}
	if deps.Office != nil {
		routes = append(routes, Route{
			Name:    RouteOffice,
			Match:   KindIs(model.KindSpreadsheet, model.KindSlideDeck),
			Handler: deps.Office,
		})
	}
	if deps.Renderer != nil {
		routes = append(routes, Route{
			Name:    RouteSpreadsheetText,
			Match:   All(KindIs(model.KindSpreadsheet), ExtIs(".xlsx")),
			Handler: convert.NewSpreadsheet(deps.Renderer),
		})
	}
	routes = append(routes,
		Route{Name: RoutePDFCopy, Match: KindIs(model.KindPDF), Handler: convert.PDFCopy{}},
		Route{Name: RoutePlaceholder, Match: Always(), Handler: convert.NewPlaceholder(deps.Brand, deps.Now)},
	)
	return routes
}
