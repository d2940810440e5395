package blocks

import (
	"regexp"
	"strings"
)

// Precompiled patterns for the normalization pass.
var (
	crlfOrCR            = regexp.MustCompile(`\r\n?`)
	moduleDirective     = regexp.MustCompile(`(?m)^\s*(import|export)\s+.+$`)
	selfClosingTag      = regexp.MustCompile(`<[^>\n]+/>`)
	componentOpenTag    = regexp.MustCompile(`<([A-Z][A-Za-z0-9]*)[^>]*>`)
	htmlOpenTag         = regexp.MustCompile(`<([a-z][a-z0-9-]*)[^>]*>`)
	expressionBlock     = regexp.MustCompile(`(?s)\{.*?\}`)
	multipleBlankLines  = regexp.MustCompile(`\n{3,}`)
	fenceDelimiterStart = regexp.MustCompile("^\\s*```")
)

// Normalize strips what the renderer cannot reproduce: import/export
// directives, self-closing and paired markup tags, and {expressions}.
// Fenced code is left untouched. The transform is lossy on purpose.
func Normalize(raw string) string {
	raw = crlfOrCR.ReplaceAllString(raw, "\n")

	var out strings.Builder
	var prose []string
	flushProse := func() {
		if len(prose) == 0 {
			return
		}
		out.WriteString(normalizeProse(strings.Join(prose, "\n")))
		out.WriteByte('\n')
		prose = prose[:0]
	}

	inCode := false
	for _, line := range strings.Split(raw, "\n") {
		if fenceDelimiterStart.MatchString(line) {
			if !inCode {
				flushProse()
			}
			inCode = !inCode
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}
		if inCode {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}
		prose = append(prose, line)
	}
	flushProse()

	s := multipleBlankLines.ReplaceAllString(out.String(), "\n\n")
	return strings.TrimSpace(s)
}

func normalizeProse(s string) string {
	s = moduleDirective.ReplaceAllString(s, "")
	s = selfClosingTag.ReplaceAllString(s, "")
	s = removePaired(s, componentOpenTag)
	s = removePaired(s, htmlOpenTag)
	s = expressionBlock.ReplaceAllString(s, "")
	return s
}

// removePaired cuts every "<name ...>...</name>" span whose opening tag
// matches open, pairing each opening tag with the nearest closing tag.
// Opening tags without a closing tag are left in place.
func removePaired(s string, open *regexp.Regexp) string {
	var b strings.Builder
	for {
		loc := open.FindStringSubmatchIndex(s)
		if loc == nil {
			b.WriteString(s)
			return b.String()
		}
		name := s[loc[2]:loc[3]]
		closing := "</" + name + ">"
		end := strings.Index(s[loc[1]:], closing)
		if end < 0 {
			b.WriteString(s[:loc[1]])
			s = s[loc[1]:]
			continue
		}
		b.WriteString(s[:loc[0]])
		s = s[loc[1]+end+len(closing):]
	}
}
