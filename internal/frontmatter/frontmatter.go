// Package frontmatter separates a document's YAML front matter from its body
// and decodes it into typed fields. Unknown keys are dropped.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/inful/mdfp"

	"github.com/alnah/go-docpress/internal/yamlutil"
)

// ErrMissingClosingDelimiter indicates the document opened a front matter
// block with "---" but never closed it.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

// ErrInvalid wraps YAML decoding failures.
var ErrInvalid = errors.New("invalid front matter")

var utf8BOM = []byte("\xef\xbb\xbf")

// Split separates `---` delimited front matter from the body.
// When the content has no front matter, had is false and body is the input.
// CRLF line endings and a closing delimiter at end of file are accepted.
func Split(content []byte) (front, body []byte, had bool, err error) {
	content = bytes.TrimPrefix(content, utf8BOM)

	nl := []byte("\n")
	if bytes.HasPrefix(content, []byte("---\r\n")) {
		nl = []byte("\r\n")
	}
	open := append([]byte("---"), nl...)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}

	closeSeq := append(append([]byte{}, nl...), []byte("---")...)
	idx := bytes.Index(rest, closeSeq)
	for idx >= 0 {
		after := rest[idx+len(closeSeq):]
		switch {
		case len(after) == 0:
			return rest[:idx+len(nl)], nil, true, nil
		case bytes.HasPrefix(after, nl):
			return rest[:idx+len(nl)], after[len(nl):], true, nil
		}
		next := bytes.Index(after, closeSeq)
		if next < 0 {
			break
		}
		idx += len(closeSeq) + next
	}
	return nil, nil, false, ErrMissingClosingDelimiter
}

// Scalar is a YAML scalar read as text whatever its YAML type,
// so `version: 1.0` and `version: "1.0"` decode alike.
type Scalar string

// UnmarshalYAML implements the goccy/go-yaml interface unmarshaler.
func (s *Scalar) UnmarshalYAML(unmarshal func(any) error) error {
	var v any
	if err := unmarshal(&v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*s = ""
	case string:
		*s = Scalar(strings.TrimSpace(x))
	case bool, int, int64, uint64, float64:
		*s = Scalar(fmt.Sprint(x))
	case map[string]any:
		// author: {name: ...}
		if name, ok := x["name"].(string); ok {
			*s = Scalar(strings.TrimSpace(name))
		}
	}
	return nil
}

// List is a string list that also accepts a comma-separated scalar.
type List []string

// UnmarshalYAML implements the goccy/go-yaml interface unmarshaler.
func (l *List) UnmarshalYAML(unmarshal func(any) error) error {
	var v any
	if err := unmarshal(&v); err != nil {
		return err
	}
	var out []string
	switch x := v.(type) {
	case string:
		out = strings.Split(x, ",")
	case []any:
		for _, item := range x {
			if item != nil {
				out = append(out, fmt.Sprint(item))
			}
		}
	}
	cleaned := out[:0]
	for _, s := range out {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	*l = cleaned
	return nil
}

// TierDecl is one declared tier. Absent generatePdf means true.
type TierDecl struct {
	Slug             string `yaml:"slug"`
	GeneratePDF      *bool  `yaml:"generatePdf"`
	GenerateFillable bool   `yaml:"generateFillable"`
	Formats          List   `yaml:"formats"`
	Quality          List   `yaml:"quality"`
}

// TierDecls accepts either a list of tier objects or a map of slug to
// formats, e.g. `tiers: {free: [A4], member: [A4, Letter]}`.
type TierDecls []TierDecl

// UnmarshalYAML implements the goccy/go-yaml interface unmarshaler.
func (d *TierDecls) UnmarshalYAML(unmarshal func(any) error) error {
	var list []TierDecl
	if err := unmarshal(&list); err == nil {
		*d = list
		return nil
	}

	var byslug map[string]List
	if err := unmarshal(&byslug); err != nil {
		return fmt.Errorf("tiers: expected a list of tiers or a map of tier to formats: %w", err)
	}
	slugs := make([]string, 0, len(byslug))
	for slug := range byslug {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	out := make([]TierDecl, 0, len(slugs))
	for _, slug := range slugs {
		out = append(out, TierDecl{Slug: slug, Formats: byslug[slug]})
	}
	*d = out
	return nil
}

// Fields is the typed front matter.
type Fields struct {
	Title       string    `yaml:"title"`
	Subtitle    string    `yaml:"subtitle"`
	Description string    `yaml:"description"`
	Excerpt     string    `yaml:"excerpt"`
	Category    string    `yaml:"category"`
	Tags        List      `yaml:"tags"`
	Keywords    List      `yaml:"keywords"`
	Tier        Scalar    `yaml:"tier"`
	AccessLevel Scalar    `yaml:"accessLevel"`
	Version     Scalar    `yaml:"version"`
	Priority    Scalar    `yaml:"priority"`
	Type        Scalar    `yaml:"type"`
	Author      Scalar    `yaml:"author"`
	Interactive bool      `yaml:"interactive"`
	Fillable    bool      `yaml:"fillable"`
	Formats     List      `yaml:"formats"`
	Tiers       TierDecls `yaml:"tiers"`
}

// PriorityValue returns the priority as an int, and false when absent or not numeric.
func (f Fields) PriorityValue() (int, bool) {
	if f.Priority == "" {
		return 0, false
	}
	n, err := strconv.Atoi(string(f.Priority))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Decode parses raw front matter (without delimiters).
// Empty input yields zero Fields.
func Decode(front []byte) (Fields, error) {
	var f Fields
	if len(bytes.TrimSpace(front)) == 0 {
		return f, nil
	}
	if err := yamlutil.Unmarshal(front, &f); err != nil {
		return Fields{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return f, nil
}

// Parse splits content and decodes its front matter.
func Parse(content []byte) (Fields, []byte, error) {
	front, body, had, err := Split(content)
	if err != nil {
		return Fields{}, content, err
	}
	if !had {
		return Fields{}, body, nil
	}
	f, err := Decode(front)
	return f, body, err
}

// Fingerprint returns a stable content fingerprint over front matter and body.
func Fingerprint(front, body []byte) string {
	return mdfp.CalculateFingerprintFromParts(strings.TrimRight(string(front), "\r\n"), string(body))
}
