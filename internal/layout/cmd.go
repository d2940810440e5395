package layout

// Face selects one of the four font faces.
type Face int

const (
	HeadingRegular Face = iota
	HeadingBold
	BodyRegular
	BodyBold
)

func (f Face) String() string {
	switch f {
	case HeadingRegular:
		return "heading"
	case HeadingBold:
		return "heading-bold"
	case BodyRegular:
		return "body"
	case BodyBold:
		return "body-bold"
	}
	return "unknown"
}

// Color is an RGB colour with components in [0,1].
type Color struct {
	R, G, B float64
}

// Brand palette.
var (
	Charcoal  = Color{0.10, 0.10, 0.12}
	Slate     = Color{0.30, 0.32, 0.36}
	Faint     = Color{0.55, 0.55, 0.58}
	RuleGrey  = Color{0.88, 0.88, 0.88}
	Gold      = Color{0.78, 0.64, 0.30}
	Paper     = Color{0.98, 0.98, 0.975}
	CodeFill  = Color{0.965, 0.965, 0.97}
	Watermark = Color{0.88, 0.88, 0.90}
)

// Op is the kind of a draw command.
type Op int

const (
	OpText Op = iota + 1
	OpLine
	OpRect
)

// RectStyle selects how a rectangle is painted.
type RectStyle int

const (
	Fill RectStyle = iota
	Stroke
	FillStroke
)

// Cmd is one draw command. Coordinates are points from the top-left
// corner; a text command's Y is its baseline.
//
//   - OpText uses X, Y, Text, Face, Size, Color, and optionally Angle
//     (degrees counter-clockwise around X,Y) and Alpha.
//   - OpLine runs from X,Y to X2,Y2 with LineWidth and Color.
//   - OpRect covers X,Y,W,H; Fill is the fill colour, Color the border.
type Cmd struct {
	Op        Op
	X, Y      float64
	X2, Y2    float64
	W, H      float64
	Text      string
	Face      Face
	Size      float64
	Color     Color
	Fill      Color
	Style     RectStyle
	LineWidth float64
	Angle     float64
	Alpha     float64
}

// Text builds a text command.
func Text(x, y float64, s string, face Face, size float64, c Color) Cmd {
	return Cmd{Op: OpText, X: x, Y: y, Text: s, Face: face, Size: size, Color: c}
}

// Line builds a line command.
func Line(x1, y1, x2, y2, width float64, c Color) Cmd {
	return Cmd{Op: OpLine, X: x1, Y: y1, X2: x2, Y2: y2, LineWidth: width, Color: c}
}

// Rect builds a filled rectangle.
func Rect(x, y, w, h float64, fill Color) Cmd {
	return Cmd{Op: OpRect, X: x, Y: y, W: w, H: h, Fill: fill, Style: Fill}
}

// BorderedRect builds a filled rectangle with a 1pt border.
func BorderedRect(x, y, w, h float64, fill, border Color) Cmd {
	return Cmd{Op: OpRect, X: x, Y: y, W: w, H: h, Fill: fill, Color: border, Style: FillStroke, LineWidth: 1}
}

// Page is one laid-out content page.
type Page struct {
	Number   int
	Cmds     []Cmd
	Headings []Entry
}

// Entry is an outline entry: a heading, the page it starts on and its
// baseline on that page.
type Entry struct {
	Title string
	Level int
	Page  int
	Y     float64
}

// Outline collects the heading entries of pages in order.
func Outline(pages []Page) []Entry {
	var out []Entry
	for _, p := range pages {
		out = append(out, p.Headings...)
	}
	return out
}
