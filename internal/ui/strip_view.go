package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-starfield/internal/strip"
)

const (
	stripCell   = "█"
	stripIndent = "  "
)

// Brightness glyphs, dimmest first. They make the strip readable on
// terminals without truecolor.
var brightnessGlyphs = []string{" ", "·", "∙", "•", "●"}

// renderStrip draws one cell per element in the element's device colour,
// with a brightness glyph row under each line of cells. Lines wrap at width.
func renderStrip(frame []strip.HSV, width int) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	if len(frame) == 0 {
		return stripIndent + dimStyle.Render("(no frame yet)")
	}

	perLine := cellsPerLine(width)

	var b strings.Builder
	for start := 0; start < len(frame); start += perLine {
		end := min(start+perLine, len(frame))

		b.WriteString(stripIndent)
		for _, px := range frame[start:end] {
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(px.Hex()))
			b.WriteString(style.Render(stripCell))
		}
		b.WriteString("\n")

		var glyphs strings.Builder
		for _, px := range frame[start:end] {
			glyphs.WriteString(brightnessGlyph(px.V))
		}
		b.WriteString(stripIndent)
		b.WriteString(dimStyle.Render(glyphs.String()))
		if end < len(frame) {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// stripRows is the number of terminal lines renderStrip uses.
func stripRows(n, width int) int {
	if n == 0 {
		return 1
	}
	perLine := cellsPerLine(width)
	return 2 * ((n + perLine - 1) / perLine)
}

func cellsPerLine(width int) int {
	if width < 1 {
		return 1
	}
	return width
}

// brightnessGlyph maps a value in [0, 1] to a glyph.
func brightnessGlyph(v float64) string {
	switch {
	case v <= 0.02:
		return brightnessGlyphs[0]
	case v < 0.15:
		return brightnessGlyphs[1]
	case v < 0.35:
		return brightnessGlyphs[2]
	case v < 0.7:
		return brightnessGlyphs[3]
	default:
		return brightnessGlyphs[4]
	}
}
