package blocks

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// inlineParser only knows paragraphs, so leading markers such as "1." or
// "#" in an already classified line stay text. Safe for concurrent use.
var inlineParser = gmparser.NewParser(
	gmparser.WithBlockParsers(util.Prioritized(gmparser.NewParagraphParser(), 1000)),
	gmparser.WithInlineParsers(gmparser.DefaultInlineParsers()...),
)

// StripInline removes inline markup (emphasis, code spans, links, images,
// raw html) from a single line of text and returns the visible words.
// Link and image text is kept; their destinations are dropped.
func StripInline(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.ContainsAny(s, "*_`[]<>!\\&#") {
		return strings.Join(strings.Fields(s), " ")
	}

	src := []byte(s)
	doc := inlineParser.Parse(text.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.RawHTML, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			b.Write(visible(node.Segment.Value(src)))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.Write(node.Label(src))
		case *ast.CodeSpan:
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					b.Write(t.Segment.Value(src))
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(b.String()), " ")
}

// visible drops backslash escapes and resolves character references.
func visible(v []byte) []byte {
	v = util.UnescapePunctuations(v)
	v = util.ResolveNumericReferences(v)
	return util.ResolveEntityNames(v)
}
