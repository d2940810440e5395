package catalog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-docpress/internal/frontmatter"
	"github.com/alnah/go-docpress/internal/model"
)

// maxTags bounds the tag set carried from front matter.
const maxTags = 16

// maxHTMLHead is how much of a webpage is read for its title and description.
const maxHTMLHead = 64 << 10

// Describe resolves metadata for a record. Front matter wins over
// heuristics; problems are returned as warnings, never as errors.
func (c *Catalog) Describe(rec model.SourceRecord) (model.Metadata, []Warning) {
	var (
		fields   frontmatter.Fields
		warnings []Warning
		finger   string
	)

	switch rec.Kind {
	case model.KindDocument:
		content, err := os.ReadFile(rec.Path) // #nosec G304 -- scanned source path
		if err != nil {
			warnings = append(warnings, Warning{Kind: WarnFrontMatter, Path: rec.Path, Message: err.Error()})
			break
		}
		front, body, had, err := frontmatter.Split(content)
		if err != nil {
			warnings = append(warnings, Warning{Kind: WarnFrontMatter, Path: rec.Path, Message: err.Error()})
			body = content
		} else if had {
			fields, err = frontmatter.Decode(front)
			if err != nil {
				warnings = append(warnings, Warning{Kind: WarnFrontMatter, Path: rec.Path, Message: err.Error()})
				fields = frontmatter.Fields{}
			}
		}
		finger = frontmatter.Fingerprint(front, body)
	case model.KindWebpage:
		fields.Title, fields.Description = readHTMLHead(rec.Path)
	}

	meta, metaWarnings := c.resolve(rec, fields)
	meta.Fingerprint = finger
	return meta, append(warnings, metaWarnings...)
}

func (c *Catalog) resolve(rec model.SourceRecord, f frontmatter.Fields) (model.Metadata, []Warning) {
	var warnings []Warning
	warn := func(format string, args ...any) {
		warnings = append(warnings, Warning{Kind: WarnMetadata, Path: rec.Path, Message: fmt.Sprintf(format, args...)})
	}

	m := model.Metadata{
		Title:       strings.TrimSpace(f.Title),
		Subtitle:    strings.TrimSpace(f.Subtitle),
		Description: strings.TrimSpace(f.Description),
		Version:     string(f.Version),
		Author:      string(f.Author),
	}
	if m.Title == "" {
		m.Title = TitleFromID(rec.ID)
	}
	if m.Description == "" {
		m.Description = strings.TrimSpace(f.Excerpt)
	}
	if m.Description == "" {
		m.Description = fmt.Sprintf("%s - A resource from %s", m.Title, c.opts.Author)
	}
	if m.Version == "" {
		m.Version = "1.0.0"
	}
	if m.Author == "" {
		m.Author = c.opts.Author
	}

	m.Tags = mergeTags(f.Tags, f.Keywords)
	m.Category = DetectCategory(rec.ID, m.Tags, f.Category)
	m.Type = DetectType(rec.ID, rec.Kind, string(f.Type))

	m.Tier = DetectTier(rec.ID)
	for _, hint := range []frontmatter.Scalar{f.Tier, f.AccessLevel} {
		if hint == "" {
			continue
		}
		t, err := model.ParseTier(string(hint))
		if err != nil {
			warn("%v; using %s", err, m.Tier)
			continue
		}
		m.Tier = t
		break
	}

	if p, ok := f.PriorityValue(); ok {
		m.Priority = p
	} else {
		if f.Priority != "" {
			warn("priority %q is not a number", f.Priority)
		}
		m.Priority = DefaultPriority(m.Tier)
	}

	m.Formats = DetectFormats(rec.ID, rec.Kind)
	if len(f.Formats) > 0 {
		formats, err := model.ParseFormats(f.Formats)
		if err != nil {
			warn("%v", err)
		} else if len(formats) > 0 {
			m.Formats = formats
		}
	}

	id := strings.ToLower(rec.ID)
	m.Fillable = f.Fillable || strings.Contains(id, "fillable") || rec.Kind == model.KindSpreadsheet
	m.Interactive = f.Interactive || strings.Contains(id, "interactive") || m.Fillable

	m.Tiers = c.resolveTiers(f.Tiers, m, warn)
	return m, warnings
}

func (c *Catalog) resolveTiers(decls frontmatter.TierDecls, m model.Metadata, warn func(string, ...any)) []model.TierConfig {
	out := make([]model.TierConfig, 0, len(decls))
	seen := make(map[model.Tier]bool, len(decls))

	for _, d := range decls {
		slug, err := model.ParseTier(d.Slug)
		if err != nil {
			warn("tiers: %v", err)
			continue
		}
		if seen[slug] {
			warn("tiers: %s declared twice", slug)
			continue
		}
		seen[slug] = true

		cfg := model.TierConfig{
			Slug:             slug,
			GeneratePDF:      d.GeneratePDF == nil || *d.GeneratePDF,
			GenerateFillable: d.GenerateFillable,
			Formats:          m.Formats,
			Qualities:        []model.Quality{model.QualityStandard},
		}
		if formats, err := model.ParseFormats(d.Formats); err != nil {
			warn("tiers.%s: %v", slug, err)
		} else if len(formats) > 0 {
			cfg.Formats = formats
		}
		if qualities, err := model.ParseQualities(d.Quality); err != nil {
			warn("tiers.%s: %v", slug, err)
		} else if len(qualities) > 0 {
			cfg.Qualities = qualities
		}
		out = append(out, cfg)
	}

	if len(out) == 0 {
		def := model.DefaultTierConfig(m.Tier)
		def.Formats = m.Formats
		def.GenerateFillable = m.Fillable
		out = append(out, def)
	}
	return out
}

// mergeTags returns tags then keywords, de-duplicated case-insensitively
// and bounded to maxTags.
func mergeTags(lists ...[]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, t := range list {
			key := strings.ToLower(strings.TrimSpace(t))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, strings.TrimSpace(t))
			if len(out) == maxTags {
				return out
			}
		}
	}
	return out
}

// readHTMLHead returns the <title> text and the meta description of a
// webpage, reading no further than </head> or the first body content.
func readHTMLHead(path string) (title, description string) {
	f, err := os.Open(path) // #nosec G304 -- scanned source path
	if err != nil {
		return "", ""
	}
	defer f.Close()
	return parseHTMLHead(io.LimitReader(f, maxHTMLHead))
}

func parseHTMLHead(r io.Reader) (title, description string) {
	z := html.NewTokenizer(r)
	var inTitle bool
	var titleText strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(titleText.String()), description
		case html.TextToken:
			if inTitle {
				titleText.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Title:
				inTitle = true
			case atom.Meta:
				if description == "" && strings.EqualFold(attr(tok, "name"), "description") {
					description = strings.TrimSpace(attr(tok, "content"))
				}
			case atom.Body:
				return strings.TrimSpace(titleText.String()), description
			}
		case html.EndTagToken:
			switch tok := z.Token(); tok.DataAtom {
			case atom.Title:
				inTitle = false
			case atom.Head:
				return strings.TrimSpace(titleText.String()), description
			}
		}
	}
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
