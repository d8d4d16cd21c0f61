package pinyin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTone(t *testing.T) {
	tests := []struct {
		in   string
		tone Tone
		base string
	}{
		{"xué", Tone2, "xue"},
		{"jīng", Tone1, "jing"},
		{"hǎo", Tone3, "hao"},
		{"xì", Tone4, "xi"},
		{"lǜ", Tone4, "lü"},
		{"de", Tone5, "de"},
		{"Ān", Tone1, "An"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			tone, base := SplitTone(tt.in)
			assert.Equal(t, tt.tone, tone)
			assert.Equal(t, tt.base, base)
		})
	}
}

func TestMark(t *testing.T) {
	assert.Equal(t, 'á', Mark('a', Tone2))
	assert.Equal(t, 'ǚ', Mark('v', Tone3))
	assert.Equal(t, 'Ě', Mark('E', Tone3))
	assert.Equal(t, 'o', Mark('o', Tone5))
	assert.Equal(t, 'x', Mark('x', Tone1))
	assert.Equal(t, 'a', Mark('a', ToneUnknown))
}

func TestApplyTone(t *testing.T) {
	out, ok := ApplyTone("xue", 3, Tone2)
	require.True(t, ok)
	assert.Equal(t, "xué", out)

	// Re-toning an already marked vowel replaces the mark.
	out, ok = ApplyTone("xué", 3, Tone4)
	require.True(t, ok)
	assert.Equal(t, "xuè", out)

	// The nearest vowel before the cursor wins.
	out, ok = ApplyTone("hao", 2, Tone3)
	require.True(t, ok)
	assert.Equal(t, "hǎo", out)

	_, ok = ApplyTone("xyz", 3, Tone1)
	assert.False(t, ok)

	out, ok = ApplyTone("lv", 99, Tone4)
	require.True(t, ok)
	assert.Equal(t, "lǜ", out)
}

func TestApplyToneSyllableRule(t *testing.T) {
	tests := []struct {
		text string
		pos  int
		tone Tone
		want string
	}{
		{"hao", 3, Tone3, "hǎo"},
		{"mei", 3, Tone2, "méi"},
		{"lai", 3, Tone2, "lái"},
		{"gou", 3, Tone3, "gǒu"},
		{"liu", 3, Tone4, "liù"},
		{"hǎo", 3, Tone4, "hào"},
		{"hǎo", 3, Tone5, "hao"},
		{"hǎoxue", 6, Tone2, "hǎoxué"},
		{"ni hao", 6, Tone3, "ni hǎo"},
		{"haokan", 3, Tone3, "hǎokan"},
	}

	for _, tt := range tests {
		out, ok := ApplyTone(tt.text, tt.pos, tt.tone)
		require.True(t, ok, tt.text)
		assert.Equal(t, tt.want, out, tt.text)
	}
}

func TestFromNumbered(t *testing.T) {
	tests := map[string]string{
		"xue2":       "xué",
		"jing1":      "jīng",
		"lv4 shi1":   "lǜ shī",
		"gou3":       "gǒu",
		"liu2":       "liú",
		"hao3kan4":   "hǎokàn",
		"de":         "de",
		"xué":        "xué",
		"ma5":        "ma",
		"2":          "2",
		"chang4 ge1": "chàng gē",
	}
	for in, want := range tests {
		assert.Equal(t, want, FromNumbered(in), in)
	}
}

func TestParserReadings(t *testing.T) {
	p := NewParser()

	readings := p.Readings("学")
	require.NotEmpty(t, readings)
	assert.Contains(t, readings, "xué")
	assert.Equal(t, "xué", p.Primary("学"))

	assert.True(t, p.HasReading("好", "hǎo"))
	assert.True(t, p.HasReading("好", "hào"))
	assert.False(t, p.HasReading("好", "xué"))

	assert.Empty(t, p.Readings("a"))
	assert.Equal(t, "", p.Primary("a"))
	assert.True(t, p.HasReading("a", "anything"))
}
