// Package blocks turns a document body into a flat sequence of typed blocks
// the layout engine can place: headings, paragraphs, list items, quotes and
// fenced code. It covers a pragmatic subset of markdown; anything else is
// reduced to plain text or dropped.
package blocks

// Kind is the variant tag of a Block.
type Kind int

const (
	KindHeading Kind = iota + 1
	KindParagraph
	KindListItem
	KindQuote
	KindCode
)

func (k Kind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindParagraph:
		return "paragraph"
	case KindListItem:
		return "list-item"
	case KindQuote:
		return "quote"
	case KindCode:
		return "code"
	}
	return "unknown"
}

// MaxCodeLines caps the lines kept from a single fenced block.
const MaxCodeLines = 120

// MaxListLevel caps list nesting.
const MaxListLevel = 3

// Block is one unit of parsed content. Level is the heading level (1-3)
// for headings and the nesting level (0-3) for list items.
// Lines and Lang are only set for code.
type Block struct {
	Kind  Kind
	Level int
	Text  string
	Lines []string
	Lang  string
}

func Heading(level int, text string) Block {
	return Block{Kind: KindHeading, Level: level, Text: text}
}

func Paragraph(text string) Block {
	return Block{Kind: KindParagraph, Text: text}
}

func ListItem(text string, level int) Block {
	return Block{Kind: KindListItem, Level: level, Text: text}
}

func Quote(text string) Block {
	return Block{Kind: KindQuote, Text: text}
}

func Code(lang string, lines ...string) Block {
	return Block{Kind: KindCode, Lang: lang, Lines: lines}
}

// Headings returns the level 1 and 2 headings in order.
func Headings(bs []Block) []Block {
	var out []Block
	for _, b := range bs {
		if b.Kind == KindHeading && b.Level <= 2 {
			out = append(out, b)
		}
	}
	return out
}

// Sections groups blocks under each level 2 heading. Blocks before the
// first level 2 heading are discarded.
func Sections(bs []Block) []Section {
	var out []Section
	for _, b := range bs {
		if b.Kind == KindHeading && b.Level == 2 {
			out = append(out, Section{Title: b.Text})
			continue
		}
		if len(out) > 0 {
			out[len(out)-1].Body = append(out[len(out)-1].Body, b)
		}
	}
	return out
}

// Section is a level 2 heading and the blocks that follow it.
type Section struct {
	Title string
	Body  []Block
}
