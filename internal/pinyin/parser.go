// Package pinyin handles pinyin readings, tone extraction and tone-mark input.
package pinyin

import (
	"slices"
	"strings"
	"unicode"

	gopinyin "github.com/mozillazg/go-pinyin"
)

// Tone represents the four tones of Mandarin plus neutral tone.
type Tone int

const (
	ToneUnknown Tone = 0
	Tone1       Tone = 1 // First tone (high level) - ˉ
	Tone2       Tone = 2 // Second tone (rising) - ˊ
	Tone3       Tone = 3 // Third tone (dipping) - ˇ
	Tone4       Tone = 4 // Fourth tone (falling) - ˋ
	Tone5       Tone = 5 // Fifth tone (neutral)
)

// Parser looks up readings for characters.
type Parser struct {
	args gopinyin.Args
}

// NewParser creates a new pinyin parser.
func NewParser() *Parser {
	args := gopinyin.NewArgs()
	args.Style = gopinyin.Tone // Returns tone marks: zhōng
	args.Heteronym = true      // Return all possible readings
	return &Parser{args: args}
}

// Readings returns all tone-marked readings for a single character.
func (p *Parser) Readings(char string) []string {
	result := gopinyin.Pinyin(char, p.args)
	if len(result) == 0 {
		return nil
	}
	return result[0]
}

// Primary returns the first reading of a character, or "" when unknown.
func (p *Parser) Primary(char string) string {
	readings := p.Readings(char)
	if len(readings) == 0 {
		return ""
	}
	return readings[0]
}

// HasReading reports whether reading is one of the known readings of char.
// Characters unknown to the reading table report true so that callers only
// flag definite mismatches.
func (p *Parser) HasReading(char, reading string) bool {
	readings := p.Readings(char)
	if len(readings) == 0 {
		return true
	}
	for _, r := range readings {
		if r == reading {
			return true
		}
	}
	return false
}

var toneMarks = map[rune]struct {
	base rune
	tone Tone
}{
	'ā': {'a', Tone1}, 'á': {'a', Tone2}, 'ǎ': {'a', Tone3}, 'à': {'a', Tone4},
	'ē': {'e', Tone1}, 'é': {'e', Tone2}, 'ě': {'e', Tone3}, 'è': {'e', Tone4},
	'ī': {'i', Tone1}, 'í': {'i', Tone2}, 'ǐ': {'i', Tone3}, 'ì': {'i', Tone4},
	'ō': {'o', Tone1}, 'ó': {'o', Tone2}, 'ǒ': {'o', Tone3}, 'ò': {'o', Tone4},
	'ū': {'u', Tone1}, 'ú': {'u', Tone2}, 'ǔ': {'u', Tone3}, 'ù': {'u', Tone4},
	'ǖ': {'ü', Tone1}, 'ǘ': {'ü', Tone2}, 'ǚ': {'ü', Tone3}, 'ǜ': {'ü', Tone4},
}

// SplitTone returns the tone of a syllable and the syllable without tone marks.
// A syllable without marks is neutral tone.
func SplitTone(syllable string) (Tone, string) {
	tone := ToneUnknown
	var result strings.Builder

	for _, r := range syllable {
		lower := unicode.ToLower(r)
		if mark, ok := toneMarks[lower]; ok {
			base := mark.base
			if unicode.IsUpper(r) {
				base = unicode.ToUpper(base)
			}
			result.WriteRune(base)
			tone = mark.tone
		} else {
			result.WriteRune(r)
		}
	}

	if tone == ToneUnknown {
		tone = Tone5
	}

	return tone, result.String()
}

// marked holds the four tone-marked forms of each vowel, neutral tone last.
var marked = map[rune][5]rune{
	'a': {'ā', 'á', 'ǎ', 'à', 'a'},
	'e': {'ē', 'é', 'ě', 'è', 'e'},
	'i': {'ī', 'í', 'ǐ', 'ì', 'i'},
	'o': {'ō', 'ó', 'ǒ', 'ò', 'o'},
	'u': {'ū', 'ú', 'ǔ', 'ù', 'u'},
	'ü': {'ǖ', 'ǘ', 'ǚ', 'ǜ', 'ü'},
	'A': {'Ā', 'Á', 'Ǎ', 'À', 'A'},
	'E': {'Ē', 'É', 'Ě', 'È', 'E'},
	'I': {'Ī', 'Í', 'Ǐ', 'Ì', 'I'},
	'O': {'Ō', 'Ó', 'Ǒ', 'Ò', 'O'},
	'U': {'Ū', 'Ú', 'Ǔ', 'Ù', 'U'},
	'Ü': {'Ǖ', 'Ǘ', 'Ǚ', 'Ǜ', 'Ü'},
}

// Mark returns vowel carrying the given tone. "v" is read as "ü". Runes that
// are not vowels, or tones outside 1..5, come back unchanged.
func Mark(vowel rune, tone Tone) rune {
	switch vowel {
	case 'v':
		vowel = 'ü'
	case 'V':
		vowel = 'Ü'
	}
	forms, ok := marked[vowel]
	if !ok || tone < Tone1 || tone > Tone5 {
		return vowel
	}
	return forms[tone-1]
}

func isVowel(r rune) bool {
	r = unicode.ToLower(r)
	if mark, ok := toneMarks[r]; ok {
		r = mark.base
	}
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'v', 'ü':
		return true
	}
	return false
}

// ApplyTone puts a tone mark on the syllable that ends at rune position pos
// in text, choosing the vowel by the same rule as FromNumbered. A mark already
// on that syllable is replaced. It reports false when the syllable has no vowel.
func ApplyTone(text string, pos int, tone Tone) (string, bool) {
	runes := []rune(text)
	pos = max(min(pos, len(runes)), 0)

	start := syllableStart(runes, pos)
	syllable := runes[start:pos]
	if !slices.ContainsFunc(syllable, isVowel) {
		return text, false
	}

	_, bare := SplitTone(string(syllable))
	out := string(runes[:start]) + markSyllable([]rune(bare), tone) + string(runes[pos:])
	return out, true
}

// syllableStart finds where the syllable ending at pos begins. It is the run
// of letters before pos, cut after an earlier marked syllable so that
// "hǎoxue" only re-marks "xue".
func syllableStart(runes []rune, pos int) int {
	start := pos
	for start > 0 && unicode.IsLetter(runes[start-1]) {
		start--
	}

	lastMarked := -1
	for i := start; i < pos; i++ {
		if _, ok := toneMarks[unicode.ToLower(runes[i])]; ok {
			lastMarked = i
		}
	}
	if lastMarked < 0 {
		return start
	}

	cut := lastMarked + 1
	for cut < pos && isVowel(runes[cut]) {
		cut++
	}
	if slices.ContainsFunc(runes[cut:pos], isVowel) {
		return cut
	}
	return start
}

// FromNumbered converts numbered pinyin ("xue2", "lv4 shi1") to tone marks
// ("xué", "lǜ shī"). Syllables without a trailing digit keep their letters,
// with "v" rewritten to "ü".
func FromNumbered(s string) string {
	var out strings.Builder
	var syllable []rune

	flush := func(tone Tone) {
		if len(syllable) > 0 {
			out.WriteString(markSyllable(syllable, tone))
			syllable = syllable[:0]
		}
	}

	for _, r := range s {
		switch {
		case r >= '1' && r <= '5' && len(syllable) > 0:
			flush(Tone(r - '0'))
		case unicode.IsLetter(r) || r == 'ü' || r == 'Ü':
			syllable = append(syllable, r)
		default:
			flush(ToneUnknown)
			out.WriteRune(r)
		}
	}
	flush(ToneUnknown)

	return out.String()
}

// markSyllable places the tone following the standard rule: a or e take the
// mark, "ou" marks the o, otherwise the last vowel does.
func markSyllable(syllable []rune, tone Tone) string {
	runes := make([]rune, len(syllable))
	for i, r := range syllable {
		switch r {
		case 'v':
			r = 'ü'
		case 'V':
			r = 'Ü'
		}
		runes[i] = r
	}

	if tone < Tone1 || tone > Tone4 {
		return string(runes)
	}

	target := -1
	for i, r := range runes {
		switch unicode.ToLower(r) {
		case 'a', 'e':
			target = i
		}
		if target >= 0 {
			break
		}
	}
	if target < 0 {
		lower := strings.ToLower(string(runes))
		if idx := strings.Index(lower, "ou"); idx >= 0 {
			target = len([]rune(lower[:idx]))
		}
	}
	if target < 0 {
		for i := len(runes) - 1; i >= 0; i-- {
			if isVowel(runes[i]) {
				target = i
				break
			}
		}
	}
	if target < 0 {
		return string(runes)
	}

	runes[target] = Mark(runes[target], tone)
	return string(runes)
}
