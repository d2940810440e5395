// Package model holds the vocabulary shared by the catalog, the typesetting
// engine and the orchestrator: source kinds, tiers, paper formats, quality
// levels and the records that flow between them.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for vocabulary parsing.
var (
	ErrInvalidTier    = errors.New("invalid tier")
	ErrInvalidFormat  = errors.New("invalid format")
	ErrInvalidQuality = errors.New("invalid quality")
)

// Kind classifies a source file.
type Kind string

const (
	KindDocument    Kind = "document"
	KindSpreadsheet Kind = "spreadsheet"
	KindSlideDeck   Kind = "slidedeck"
	KindPDF         Kind = "pdf"
	KindWebpage     Kind = "webpage"
)

// extensionKinds maps lower-case extensions (without dot) to kinds.
var extensionKinds = map[string]Kind{
	"md":   KindDocument,
	"mdx":  KindDocument,
	"xlsx": KindSpreadsheet,
	"xls":  KindSpreadsheet,
	"pptx": KindSlideDeck,
	"ppt":  KindSlideDeck,
	"pdf":  KindPDF,
	"html": KindWebpage,
	"htm":  KindWebpage,
}

// fidelityRanks orders extensions when two files share an identifier.
var fidelityRanks = map[string]int{
	"pdf":  100,
	"mdx":  90,
	"md":   80,
	"html": 70,
	"htm":  70,
	"pptx": 40,
	"ppt":  40,
	"xlsx": 30,
	"xls":  30,
}

// KindForExt returns the kind for an extension with or without its dot.
func KindForExt(ext string) (Kind, bool) {
	k, ok := extensionKinds[normalizeExt(ext)]
	return k, ok
}

// FidelityRank returns the dedupe rank of an extension. Unknown is 0.
func FidelityRank(ext string) int {
	return fidelityRanks[normalizeExt(ext)]
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Lossy reports whether re-rendering this kind may degrade output.
// Only pre-rendered PDFs are copied byte for byte.
func (k Kind) Lossy() bool {
	return k != KindPDF
}

// FixedLayout reports whether the source carries its own page layout,
// so format and quality variants would all be identical.
func (k Kind) FixedLayout() bool {
	switch k {
	case KindPDF, KindSpreadsheet, KindSlideDeck:
		return true
	}
	return false
}

// Tier is an access-level bucket.
type Tier string

const (
	TierFree        Tier = "free"
	TierMember      Tier = "member"
	TierArchitect   Tier = "architect"
	TierInnerCircle Tier = "inner-circle"
)

var tierRanks = map[Tier]int{
	TierFree:        0,
	TierMember:      1,
	TierArchitect:   2,
	TierInnerCircle: 3,
}

// ParseTier parses a tier slug case-insensitively.
// "inner_circle" and "innercircle" are accepted for inner-circle.
func ParseTier(s string) (Tier, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "inner_circle", "innercircle":
		v = string(TierInnerCircle)
	}
	t := Tier(v)
	if _, ok := tierRanks[t]; !ok {
		return "", fmt.Errorf("%w: %q (must be free, member, architect, or inner-circle)", ErrInvalidTier, s)
	}
	return t, nil
}

// Rank orders tiers from free (0) to inner-circle (3).
func (t Tier) Rank() int {
	if r, ok := tierRanks[t]; ok {
		return r
	}
	return len(tierRanks)
}

// RequiresAuth reports whether artifacts of this tier are gated.
func (t Tier) RequiresAuth() bool {
	return t != TierFree
}

// Format is a paper format.
type Format string

const (
	FormatA4     Format = "A4"
	FormatLetter Format = "Letter"
	FormatA3     Format = "A3"
	FormatBundle Format = "bundle"
)

// ParseFormat parses a paper format case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a4":
		return FormatA4, nil
	case "letter":
		return FormatLetter, nil
	case "a3":
		return FormatA3, nil
	case "bundle":
		return FormatBundle, nil
	}
	return "", fmt.Errorf("%w: %q (must be A4, Letter, A3, or bundle)", ErrInvalidFormat, s)
}

// Quality is a layout quality level.
type Quality string

const (
	QualityDraft      Quality = "draft"
	QualityStandard   Quality = "standard"
	QualityPremium    Quality = "premium"
	QualityEnterprise Quality = "enterprise"
)

// ParseQuality parses a quality level case-insensitively.
func ParseQuality(s string) (Quality, error) {
	q := Quality(strings.ToLower(strings.TrimSpace(s)))
	switch q {
	case QualityDraft, QualityStandard, QualityPremium, QualityEnterprise:
		return q, nil
	}
	return "", fmt.Errorf("%w: %q (must be draft, standard, premium, or enterprise)", ErrInvalidQuality, s)
}

// ParseFormats parses a list, dropping duplicates and keeping order.
func ParseFormats(values []string) ([]Format, error) {
	out := make([]Format, 0, len(values))
	seen := make(map[Format]bool, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		f, err := ParseFormat(v)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// ParseQualities parses a list, dropping duplicates and keeping order.
func ParseQualities(values []string) ([]Quality, error) {
	out := make([]Quality, 0, len(values))
	seen := make(map[Quality]bool, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		q, err := ParseQuality(v)
		if err != nil {
			return nil, err
		}
		if !seen[q] {
			seen[q] = true
			out = append(out, q)
		}
	}
	return out, nil
}

// TierConfig declares which artifacts a document produces for one tier.
type TierConfig struct {
	Slug             Tier
	GeneratePDF      bool
	GenerateFillable bool
	Formats          []Format
	Qualities        []Quality
}

// DefaultTierConfig returns a tier producing A4 at standard quality.
func DefaultTierConfig(slug Tier) TierConfig {
	return TierConfig{
		Slug:        slug,
		GeneratePDF: true,
		Formats:     []Format{FormatA4},
		Qualities:   []Quality{QualityStandard},
	}
}

// PrimaryFormat returns the first declared format, A4 when none.
func (c TierConfig) PrimaryFormat() Format {
	if len(c.Formats) == 0 {
		return FormatA4
	}
	return c.Formats[0]
}

// PrimaryQuality returns the first declared quality, standard when none.
func (c TierConfig) PrimaryQuality() Quality {
	if len(c.Qualities) == 0 {
		return QualityStandard
	}
	return c.Qualities[0]
}

// SourceRecord describes one discovered source file.
// Records are rebuilt on every scan and never mutated.
type SourceRecord struct {
	ID       string
	Path     string
	RelPath  string
	Kind     Kind
	Ext      string
	BaseName string
	ModTime  time.Time
	Size     int64
	Bucket   string
	Folder   string
}

// Metadata is the typed projection of a document's front matter,
// completed by heuristics when fields are absent.
type Metadata struct {
	Title       string
	Subtitle    string
	Description string
	Category    string
	Tags        []string
	Tier        Tier
	Version     string
	Priority    int
	Type        string
	Author      string
	Interactive bool
	Fillable    bool
	Formats     []Format
	Tiers       []TierConfig
	Fingerprint string
}

// Document pairs a source with its resolved metadata.
type Document struct {
	Source SourceRecord
	Meta   Metadata
}

// Task is the unit of generation work.
type Task struct {
	DocumentID string
	Tier       Tier
	Format     Format
	Quality    Quality
	Canonical  bool
}

// Key identifies a task uniquely within a run.
func (t Task) Key() string {
	if t.Canonical {
		return t.DocumentID + "/canonical"
	}
	return fmt.Sprintf("%s/%s/%s/%s", t.DocumentID, t.Tier, t.Format, t.Quality)
}

// Artifact is the observed state of one generated PDF.
type Artifact struct {
	Path       string
	PublicPath string
	Size       int64
	ModTime    time.Time
	MD5        string
	SHA256     string
	Exists     bool
	// Real is set when the file has a PDF header and reaches the
	// real-render size floor.
	Real bool
}
