package docpress

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/alnah/go-docpress/internal/catalog"
	"github.com/alnah/go-docpress/internal/model"
)

// plannedTask is a task bound to its document and final path.
type plannedTask struct {
	task  model.Task
	doc   model.Document
	final string
}

// resolveMatrix expands documents into unique tasks: the tier × format ×
// quality product for layout kinds, one task per tier for fixed-layout
// kinds, and one canonical task per document.
func (g *Generator) resolveMatrix(docs []model.Document, opts RunOptions) []plannedTask {
	var plan []plannedTask
	seen := make(map[string]bool)
	add := func(doc model.Document, t model.Task) {
		if seen[t.Key()] {
			return
		}
		seen[t.Key()] = true
		plan = append(plan, plannedTask{task: t, doc: doc, final: g.pathFor(doc, t)})
	}

	canonical := g.canonicalSettings(opts.Canonical)
	for _, doc := range docs {
		if !opts.SkipTiered {
			for _, t := range tieredTasks(doc, opts.Formats, opts.Qualities) {
				add(doc, t)
			}
		}
		if !opts.SkipCanonical {
			add(doc, canonicalTask(doc, canonical))
		}
	}
	return plan
}

// tieredTasks lists the tier tasks of one document.
func tieredTasks(doc model.Document, formats []model.Format, qualities []model.Quality) []model.Task {
	var out []model.Task
	for _, tier := range tiersOf(doc) {
		if !tier.GeneratePDF {
			continue
		}
		if doc.Source.Kind.FixedLayout() {
			out = append(out, model.Task{
				DocumentID: doc.Source.ID,
				Tier:       tier.Slug,
				Format:     tier.PrimaryFormat(),
				Quality:    tier.PrimaryQuality(),
			})
			continue
		}
		for _, f := range intersect(formatsOf(tier), formats) {
			for _, q := range intersect(qualitiesOf(tier), qualities) {
				out = append(out, model.Task{DocumentID: doc.Source.ID, Tier: tier.Slug, Format: f, Quality: q})
			}
		}
	}
	return out
}

// canonicalTask picks the canonical tier: the desired one if declared,
// then free, then the first declared, then a synthetic free tier.
func canonicalTask(doc model.Document, s CanonicalSettings) model.Task {
	tiers := tiersOf(doc)
	tier := model.TierFree
	switch {
	case hasTier(tiers, s.Tier):
		tier = s.Tier
	case hasTier(tiers, model.TierFree):
	case len(tiers) > 0:
		tier = tiers[0].Slug
	}
	return model.Task{
		DocumentID: doc.Source.ID,
		Tier:       tier,
		Format:     s.Format,
		Quality:    s.Quality,
		Canonical:  true,
	}
}

func (g *Generator) canonicalSettings(s CanonicalSettings) CanonicalSettings {
	if s.Tier == "" {
		s.Tier, _ = model.ParseTier(g.cfg.Canonical.Tier)
	}
	if s.Format == "" {
		s.Format, _ = model.ParseFormat(g.cfg.Canonical.Format)
	}
	if s.Quality == "" {
		s.Quality, _ = model.ParseQuality(g.cfg.Canonical.Quality)
	}
	// Configs are validated, but a zero CanonicalConfig still needs values.
	if s.Tier == "" {
		s.Tier = model.TierFree
	}
	if s.Format == "" {
		s.Format = model.FormatA4
	}
	if s.Quality == "" {
		s.Quality = model.QualityPremium
	}
	return s
}

// tiersOf returns declared tiers, or the default tier derived from the id.
func tiersOf(doc model.Document) []model.TierConfig {
	if len(doc.Meta.Tiers) > 0 {
		return doc.Meta.Tiers
	}
	def := model.DefaultTierConfig(catalog.DetectTier(doc.Source.ID))
	def.Formats = catalog.DetectFormats(doc.Source.ID, doc.Source.Kind)
	return []model.TierConfig{def}
}

func hasTier(tiers []model.TierConfig, t model.Tier) bool {
	if t == "" {
		return false
	}
	for _, c := range tiers {
		if c.Slug == t {
			return true
		}
	}
	return false
}

func formatsOf(c model.TierConfig) []model.Format {
	if len(c.Formats) == 0 {
		return []model.Format{c.PrimaryFormat()}
	}
	return c.Formats
}

func qualitiesOf(c model.TierConfig) []model.Quality {
	if len(c.Qualities) == 0 {
		return []model.Quality{c.PrimaryQuality()}
	}
	return c.Qualities
}

// intersect keeps values of have that appear in want; an empty want keeps all.
func intersect[T comparable](have, want []T) []T {
	if len(want) == 0 {
		return have
	}
	var out []T
	for _, v := range have {
		if slices.Contains(want, v) {
			out = append(out, v)
		}
	}
	return out
}

// folderFor returns the output folder of a document: the root's fixed
// folder, else its category when grouping by category.
func (g *Generator) folderFor(doc model.Document) string {
	if doc.Source.Folder != "" {
		return doc.Source.Folder
	}
	if g.cfg.Output.GroupByCategory {
		if c := catalog.NormalizeID(doc.Meta.Category); c != "" {
			return c
		}
		return "downloads"
	}
	return ""
}

// pathFor returns the final artifact path of a task.
func (g *Generator) pathFor(doc model.Document, t model.Task) string {
	parts := []string{g.cfg.Output.Dir}
	if f := g.folderFor(doc); f != "" {
		parts = append(parts, f)
	}
	if !t.Canonical {
		parts = append(parts, string(t.Tier), string(t.Format), string(t.Quality))
	}
	parts = append(parts, doc.Source.ID+".pdf")
	return filepath.Join(parts...)
}

// publicPath maps an artifact path under the output dir to its URL path.
func (g *Generator) publicPath(path string) string {
	rel, err := filepath.Rel(g.cfg.Output.Dir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return strings.TrimRight(g.cfg.Output.PublicBase, "/") + "/" + filepath.ToSlash(rel)
}
