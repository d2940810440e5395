package blocks

import (
	"regexp"
	"strings"
)

var (
	headingLine  = regexp.MustCompile(`^\s*(#{1,3})\s+(.+?)\s*$`)
	quoteLine    = regexp.MustCompile(`^\s*>\s?(.+?)\s*$`)
	listLine     = regexp.MustCompile(`^(\s*)([-*]|\d+\.)\s+(.+?)\s*$`)
	fenceOpening = regexp.MustCompile("^\\s*```\\s*([A-Za-z0-9_+#.-]*)")
)

// Parse normalizes raw and splits it into blocks. Consecutive non-blank
// prose lines are joined into one paragraph with single spaces. An
// unterminated fence runs to end of input.
func Parse(raw string) []Block {
	p := &parser{}
	for _, line := range strings.Split(Normalize(raw), "\n") {
		p.line(line)
	}
	p.flushParagraph()
	p.flushCode()
	return p.out
}

type parser struct {
	out []Block

	para []string

	inCode    bool
	codeLang  string
	codeLines []string
}

func (p *parser) line(line string) {
	if p.inCode {
		if fenceDelimiterStart.MatchString(line) {
			p.flushCode()
			return
		}
		if len(p.codeLines) < MaxCodeLines {
			p.codeLines = append(p.codeLines, line)
		}
		return
	}

	if m := fenceOpening.FindStringSubmatch(line); m != nil {
		p.flushParagraph()
		p.inCode = true
		p.codeLang = strings.ToLower(m[1])
		p.codeLines = nil
		return
	}

	if strings.TrimSpace(line) == "" {
		p.flushParagraph()
		return
	}

	if m := headingLine.FindStringSubmatch(line); m != nil {
		p.flushParagraph()
		p.emit(Heading(len(m[1]), StripInline(m[2])))
		return
	}

	if m := quoteLine.FindStringSubmatch(line); m != nil {
		p.flushParagraph()
		p.emit(Quote(StripInline(m[1])))
		return
	}

	if m := listLine.FindStringSubmatch(line); m != nil {
		p.flushParagraph()
		p.emit(ListItem(StripInline(m[3]), listLevel(m[1])))
		return
	}

	p.para = append(p.para, strings.TrimSpace(line))
}

// emit drops blocks whose text vanished after inline stripping.
func (p *parser) emit(b Block) {
	if b.Kind != KindCode && b.Text == "" {
		return
	}
	p.out = append(p.out, b)
}

func (p *parser) flushParagraph() {
	if len(p.para) == 0 {
		return
	}
	p.emit(Paragraph(StripInline(strings.Join(p.para, " "))))
	p.para = p.para[:0]
}

func (p *parser) flushCode() {
	if !p.inCode {
		return
	}
	lines := p.codeLines
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > 0 {
		p.out = append(p.out, Code(p.codeLang, lines...))
	}
	p.inCode = false
	p.codeLang = ""
	p.codeLines = nil
}

// listLevel is floor(indent/2) capped at MaxListLevel; a tab counts as two
// spaces.
func listLevel(indent string) int {
	width := 0
	for _, r := range indent {
		if r == '\t' {
			width += 2
			continue
		}
		width++
	}
	return min(width/2, MaxListLevel)
}
