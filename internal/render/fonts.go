package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-docpress/internal/assets"
)

// ErrFontMissing indicates a required font file could not be loaded.
// No fallback face is ever substituted.
var ErrFontMissing = errors.New("required font missing")

// FontNames are the file names (without .ttf) of the four faces.
type FontNames struct {
	Heading     string
	HeadingBold string
	Body        string
	BodyBold    string
}

// DefaultFontNames is the brand type family.
var DefaultFontNames = FontNames{
	Heading:     "PlayfairDisplay-Regular",
	HeadingBold: "PlayfairDisplay-Bold",
	Body:        "NotoSans-Regular",
	BodyBold:    "NotoSans-Bold",
}

func (n FontNames) list() []string {
	return []string{n.Heading, n.HeadingBold, n.Body, n.BodyBold}
}

// FontSet holds the TrueType bytes of the four faces.
type FontSet struct {
	Heading     []byte
	HeadingBold []byte
	Body        []byte
	BodyBold    []byte
}

func (s FontSet) complete() bool {
	return len(s.Heading) > 0 && len(s.HeadingBold) > 0 && len(s.Body) > 0 && len(s.BodyBold) > 0
}

// LoadFonts reads every face through l. Blank names fall back to the
// defaults. All missing faces are reported together.
func LoadFonts(l assets.Loader, names FontNames) (FontSet, error) {
	names = names.withDefaults()

	var set FontSet
	targets := []*[]byte{&set.Heading, &set.HeadingBold, &set.Body, &set.BodyBold}
	var missing []string
	var cause error
	for i, name := range names.list() {
		b, err := l.LoadFont(assets.FontName(name))
		if err != nil {
			missing = append(missing, assets.FontName(name)+assets.FontExt)
			if cause == nil {
				cause = err
			}
			continue
		}
		*targets[i] = b
	}
	if len(missing) > 0 {
		return FontSet{}, fmt.Errorf("%w: %s; expected %s in the fonts directory: %w",
			ErrFontMissing, strings.Join(missing, ", "), strings.Join(expected(names), ", "), cause)
	}
	return set, nil
}

func (n FontNames) withDefaults() FontNames {
	if n.Heading == "" {
		n.Heading = DefaultFontNames.Heading
	}
	if n.HeadingBold == "" {
		n.HeadingBold = DefaultFontNames.HeadingBold
	}
	if n.Body == "" {
		n.Body = DefaultFontNames.Body
	}
	if n.BodyBold == "" {
		n.BodyBold = DefaultFontNames.BodyBold
	}
	return n
}

func expected(n FontNames) []string {
	out := make([]string, 0, 4)
	for _, name := range n.list() {
		out = append(out, assets.FontName(name)+assets.FontExt)
	}
	return out
}
