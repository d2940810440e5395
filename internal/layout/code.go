package layout

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// codeStyle colours code tokens. Tokens the style leaves unset use Slate.
var codeStyle = styles.Get("github")

type run struct {
	text  string
	color Color
}

// highlight tokenises lines as one source so multi-line tokens keep
// their context, then splits the tokens back into per-line coloured runs.
// Tabs become four spaces. On a lexer error every line is one Slate run.
func highlight(lang string, lines []string) [][]run {
	out := make([][]run, len(lines))
	if len(lines) == 0 {
		return out
	}

	src := strings.ReplaceAll(strings.Join(lines, "\n"), "\t", "    ")
	it, err := chroma.Coalesce(lexerFor(lang)).Tokenise(nil, src)
	if err != nil {
		for i, ln := range strings.Split(src, "\n") {
			if i < len(out) && ln != "" {
				out[i] = []run{{text: ln, color: Slate}}
			}
		}
		return out
	}

	row := 0
	for _, tok := range it.Tokens() {
		c := tokenColor(tok.Type)
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				row++
			}
			if row >= len(out) {
				return out
			}
			if part != "" {
				out[row] = append(out[row], run{text: part, color: c})
			}
		}
	}
	return out
}

func lexerFor(lang string) chroma.Lexer {
	if lang != "" {
		if l := lexers.Get(lang); l != nil {
			return l
		}
	}
	return lexers.Fallback
}

func tokenColor(t chroma.TokenType) Color {
	if codeStyle == nil {
		return Slate
	}
	entry := codeStyle.Get(t)
	if !entry.Colour.IsSet() {
		return Slate
	}
	return Color{
		R: float64(entry.Colour.Red()) / 255,
		G: float64(entry.Colour.Green()) / 255,
		B: float64(entry.Colour.Blue()) / 255,
	}
}
