package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/suiwen/internal/annotate"
	"github.com/mattn/go-runewidth"
)

// wordWrap wraps space separated text to width cells.
func wordWrap(s string, width int) string {
	if width <= 0 {
		width = 60
	}
	var lines []string
	var currentLine strings.Builder
	currentWidth := 0

	for _, word := range strings.Fields(s) {
		wordWidth := runewidth.StringWidth(word)
		if currentWidth+wordWidth+1 > width && currentWidth > 0 {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentWidth = 0
		}
		if currentWidth > 0 {
			currentLine.WriteString(" ")
			currentWidth++
		}
		currentLine.WriteString(word)
		currentWidth += wordWidth
	}
	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}
	return strings.Join(lines, "\n")
}

// wrapTokens lays annotated text out in lines of at most width cells.
// Chinese has no spaces, so lines break at any rune. style picks the style of
// the marked token at index i; plain runs use plain.
func wrapTokens(tokens []annotate.Token, width int, plain lipgloss.Style, style func(i int) lipgloss.Style) string {
	if width <= 0 {
		width = 60
	}

	var out, run strings.Builder
	col := 0

	flush := func() {
		if run.Len() > 0 {
			out.WriteString(plain.Render(run.String()))
			run.Reset()
		}
	}
	newline := func() {
		flush()
		out.WriteString("\n")
		col = 0
	}

	for i, t := range tokens {
		if t.Kind == annotate.Marked {
			w := runewidth.StringWidth(t.Text)
			if col+w > width {
				newline()
			}
			flush()
			out.WriteString(style(i).Render(t.Text))
			col += w
			continue
		}

		for _, r := range t.Text {
			if r == '\n' {
				newline()
				continue
			}
			w := runewidth.RuneWidth(r)
			if col+w > width {
				newline()
			}
			run.WriteRune(r)
			col += w
		}
	}
	flush()

	return out.String()
}

// markedIndexes returns the positions of the marked tokens.
func markedIndexes(tokens []annotate.Token) []int {
	var out []int
	for i, t := range tokens {
		if t.Kind == annotate.Marked {
			out = append(out, i)
		}
	}
	return out
}

// truncate cuts s to width cells with an ellipsis.
func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}
