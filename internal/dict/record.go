package dict

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/f3rmion/suiwen/internal/hanzi"
	"gopkg.in/yaml.v3"
)

// strokeSeparator joins stroke names in the older single-string form.
const strokeSeparator = "、"

// record is an entry as written in a data file, before validation.
// Strokes and level accept the older loose shapes and are migrated to the
// canonical entry fields by toEntry.
type record struct {
	Character   string      `yaml:"character" json:"character"`
	Pinyin      string      `yaml:"pinyin" json:"pinyin"`
	Meaning     string      `yaml:"meaning" json:"meaning"`
	Strokes     strokeField `yaml:"strokes" json:"strokes"`
	Examples    []string    `yaml:"examples" json:"examples"`
	Level       levelField  `yaml:"level" json:"level"`
	Difficulty  string      `yaml:"difficulty" json:"difficulty"`
	Radical     string      `yaml:"radical" json:"radical"`
	StrokeCount int         `yaml:"stroke_count" json:"stroke_count"`
	Structure   string      `yaml:"structure" json:"structure"`
	Sentence    string      `yaml:"sentence" json:"sentence"`
	Category    string      `yaml:"category" json:"category"`
}

type sourcedRecord struct {
	line int
	rec  record
	err  error
}

// toEntry migrates a record to the canonical entry. Unknown difficulties are
// kept verbatim so validation reports them.
func (r record) toEntry() hanzi.DictionaryEntry {
	difficulty, ok := hanzi.ParseDifficulty(strings.TrimSpace(r.Difficulty))
	if !ok {
		difficulty = hanzi.Difficulty(r.Difficulty)
	}

	return hanzi.DictionaryEntry{
		Character:   strings.TrimSpace(r.Character),
		Pinyin:      strings.TrimSpace(r.Pinyin),
		Meaning:     strings.TrimSpace(r.Meaning),
		Strokes:     []string(r.Strokes),
		Examples:    r.Examples,
		Level:       hanzi.Level(r.Level),
		Difficulty:  difficulty,
		Radical:     r.Radical,
		StrokeCount: r.StrokeCount,
		Structure:   r.Structure,
		Sentence:    r.Sentence,
		Category:    r.Category,
	}
}

// strokeField accepts either a list of stroke names or a single string with
// names separated by "、".
type strokeField []string

func splitStrokes(s string) []string {
	var out []string
	for _, part := range strings.Split(s, strokeSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (f *strokeField) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("strokes: want a list of names or a %q separated string", strokeSeparator)
	}
	*f = splitStrokes(s)
	return nil
}

func (f *strokeField) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*f = list
	case yaml.ScalarNode:
		*f = splitStrokes(node.Value)
	default:
		return fmt.Errorf("strokes: line %d: want a list or a string", node.Line)
	}
	return nil
}

// levelField accepts 2, "2" and "2级".
type levelField int

func parseLevel(s string) (levelField, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "级")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("level: %q is not a number", s)
	}
	return levelField(n), nil
}

func (l *levelField) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*l = levelField(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("level: want a number")
	}
	v, err := parseLevel(s)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

func (l *levelField) UnmarshalYAML(node *yaml.Node) error {
	v, err := parseLevel(node.Value)
	if err != nil {
		return err
	}
	*l = v
	return nil
}
