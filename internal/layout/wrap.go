package layout

import (
	"strings"
	"unicode/utf8"
)

// Measurer reports the advance width of text set in a face at a size.
type Measurer interface {
	Width(text string, face Face, size float64) float64
}

// Wrap breaks text into lines no wider than maxWidth, greedily. A word
// that is wider than maxWidth on its own gets a line to itself. Empty
// text yields a single empty line.
func Wrap(text string, face Face, size, maxWidth float64, m Measurer) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	line := ""
	for _, w := range words {
		trial := w
		if line != "" {
			trial = line + " " + w
		}
		if m.Width(trial, face, size) <= maxWidth {
			line = trial
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
		line = w
	}
	return append(lines, line)
}

// Shorten trims text one character at a time until it fits maxWidth or
// is down to six characters, then marks the cut with an ellipsis.
func Shorten(text string, face Face, size, maxWidth float64, m Measurer) string {
	text = strings.TrimSpace(text)
	shown := text
	for utf8.RuneCountInString(shown) > 6 && m.Width(shown, face, size) > maxWidth {
		_, n := utf8.DecodeLastRuneInString(shown)
		shown = shown[:len(shown)-n]
	}
	if shown != text {
		shown = strings.TrimRight(shown, " \t") + "…"
	}
	return shown
}
