// Package annotate splits text into plain runs and marked dictionary characters.
package annotate

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/f3rmion/suiwen/internal/hanzi"
)

// Kind distinguishes plain text runs from marked characters.
type Kind int

const (
	Plain  Kind = iota // Text not in the dictionary
	Marked             // A single dictionary character
)

func (k Kind) String() string {
	if k == Marked {
		return "marked"
	}
	return "plain"
}

// MarshalText encodes the kind by name for JSON payloads.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Token is one slot of an annotated text. For marked tokens Glyph equals Text
// and is the dictionary key.
type Token struct {
	Kind  Kind   `json:"kind"`
	Text  string `json:"text"`
	Glyph string `json:"glyph,omitempty"`
}

// Lookup answers whether a single code point is a dictionary key.
type Lookup interface {
	HasRune(r rune) bool
}

// Entries resolves a glyph to its dictionary entry.
type Entries interface {
	Lookup(char string) *hanzi.DictionaryEntry
}

// Annotate scans text left to right. Every code point that is a key of dict
// becomes its own marked token; everything between is merged into plain runs.
// Bytes that are not valid UTF-8 stay in plain runs unchanged.
func Annotate(text string, dict Lookup) []Token {
	if text == "" {
		return []Token{}
	}

	var tokens []Token
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if (r == utf8.RuneError && size <= 1) || !dict.HasRune(r) {
			i += size
			continue
		}
		if start < i {
			tokens = append(tokens, Token{Kind: Plain, Text: text[start:i]})
		}
		glyph := text[i : i+size]
		tokens = append(tokens, Token{Kind: Marked, Text: glyph, Glyph: glyph})
		i += size
		start = i
	}
	if start < len(text) {
		tokens = append(tokens, Token{Kind: Plain, Text: text[start:]})
	}

	return tokens
}

// Text concatenates the token texts, reproducing the annotated input.
func Text(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

// Glyphs returns the distinct marked glyphs in first-seen order.
func Glyphs(tokens []Token) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range tokens {
		if t.Kind != Marked || seen[t.Glyph] {
			continue
		}
		seen[t.Glyph] = true
		out = append(out, t.Glyph)
	}
	return out
}

// ByLevel groups the distinct marked glyphs by dictionary level.
func ByLevel(tokens []Token, dict Entries) map[hanzi.Level][]string {
	out := make(map[hanzi.Level][]string)
	for _, g := range Glyphs(tokens) {
		if e := dict.Lookup(g); e != nil {
			out[e.Level] = append(out[e.Level], g)
		}
	}
	return out
}

// HTML renders the tokens as markup. Plain runs are escaped and each marked
// glyph is wrapped in a highlighted span carrying its data-char.
func HTML(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		if t.Kind != Marked {
			b.WriteString(html.EscapeString(t.Text))
			continue
		}
		g := html.EscapeString(t.Glyph)
		b.WriteString(`<span class="highlighted-char" data-char="`)
		b.WriteString(g)
		b.WriteString(`">`)
		b.WriteString(g)
		b.WriteString(`</span>`)
	}
	return b.String()
}
