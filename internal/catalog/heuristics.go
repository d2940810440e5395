package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/alnah/go-docpress/internal/model"
)

// DefaultCategory is used when neither metadata nor heuristics decide.
const DefaultCategory = "downloads"

// knownCategories are tags that double as categories.
var knownCategories = map[string]bool{
	"legacy":              true,
	"leadership":          true,
	"theology":            true,
	"surrender-framework": true,
	"personal-growth":     true,
	"organizational":      true,
	"tools":               true,
	"templates":           true,
}

type keywordRule struct {
	keywords []string
	value    string
}

// categoryRules are evaluated in order against the identifier.
var categoryRules = []keywordRule{
	{[]string{"legacy", "architecture"}, "legacy"},
	{[]string{"leadership", "management"}, "leadership"},
	{[]string{"theology", "scripture"}, "theology"},
	{[]string{"personal", "alignment"}, "personal-growth"},
	{[]string{"board", "organizational"}, "organizational"},
	{[]string{"surrender", "framework"}, "surrender-framework"},
	{[]string{"template", "worksheet"}, "templates"},
	{[]string{"tool", "calculator"}, "tools"},
}

var tierRules = []keywordRule{
	{[]string{"elite", "enterprise"}, string(model.TierInnerCircle)},
	{[]string{"architect", "premium"}, string(model.TierArchitect)},
	{[]string{"member", "pro"}, string(model.TierMember)},
}

// documentTypes are matched as substrings of the identifier, first wins.
var documentTypes = []string{
	"canvas", "worksheet", "assessment", "tool", "journal", "tracker",
	"bundle", "framework", "editorial", "strategic", "academic",
}

func matchRules(id string, rules []keywordRule) (string, bool) {
	s := strings.ToLower(id)
	for _, r := range rules {
		for _, k := range r.keywords {
			if strings.Contains(s, k) {
				return r.value, true
			}
		}
	}
	return "", false
}

// DetectCategory prefers explicit metadata, then a known tag, then
// identifier keywords.
func DetectCategory(id string, tags []string, explicit string) string {
	if c := strings.TrimSpace(explicit); c != "" {
		return c
	}
	for _, t := range tags {
		if lt := strings.ToLower(strings.TrimSpace(t)); knownCategories[lt] {
			return lt
		}
	}
	if c, ok := matchRules(id, categoryRules); ok {
		return c
	}
	return DefaultCategory
}

// DetectTier guesses a tier from identifier keywords. Free by default.
func DetectTier(id string) model.Tier {
	if t, ok := matchRules(id, tierRules); ok {
		return model.Tier(t)
	}
	return model.TierFree
}

// DetectType prefers explicit metadata, then identifier keywords, then
// a per-kind default.
func DetectType(id string, kind model.Kind, explicit string) string {
	if t := strings.ToLower(strings.TrimSpace(explicit)); t != "" {
		return t
	}
	s := strings.ToLower(id)
	for _, t := range documentTypes {
		if strings.Contains(s, t) {
			return t
		}
	}
	switch kind {
	case model.KindPDF:
		return "tool"
	case model.KindSpreadsheet:
		return "worksheet"
	case model.KindSlideDeck:
		return "strategic"
	}
	return "other"
}

// DetectFormats reads paper format suffixes from the identifier.
// Spreadsheets are additionally offered as a bundle. A4 by default.
func DetectFormats(id string, kind model.Kind) []model.Format {
	s := strings.ToLower(id)
	var out []model.Format
	switch {
	case strings.HasSuffix(s, "-a4"):
		out = append(out, model.FormatA4)
	case strings.HasSuffix(s, "-letter"):
		out = append(out, model.FormatLetter)
	case strings.HasSuffix(s, "-a3"):
		out = append(out, model.FormatA3)
	}
	if len(out) == 0 {
		out = append(out, model.FormatA4)
	}
	if kind == model.KindSpreadsheet {
		out = append(out, model.FormatBundle)
	}
	return out
}

// TitleFromID turns "legacy-canvas" into "Legacy Canvas".
func TitleFromID(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '-' || r == '_' })
	return cases.Title(language.English).String(strings.Join(words, " "))
}

// DefaultPriority ranks architect material ahead of the rest.
func DefaultPriority(tier model.Tier) int {
	if tier == model.TierArchitect {
		return 5
	}
	return 10
}
