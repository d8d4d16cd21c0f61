// Package hanzi provides the core types shared by the reader, the practice
// generator and the export formats.
package hanzi

import "time"

// Level is the teaching grade of a character.
type Level int

const (
	LevelBasic        Level = 1 // 初级
	LevelIntermediate Level = 2 // 中级
	LevelAdvanced     Level = 3 // 高级
)

// Valid reports whether l is one of the three known levels.
func (l Level) Valid() bool {
	return l >= LevelBasic && l <= LevelAdvanced
}

// Label returns the Chinese label shown in the level tabs.
func (l Level) Label() string {
	switch l {
	case LevelBasic:
		return "初级"
	case LevelIntermediate:
		return "中级"
	case LevelAdvanced:
		return "高级"
	default:
		return "未知"
	}
}

// Difficulty is a coarse difficulty rating of a character.
type Difficulty string

const (
	DifficultySimple Difficulty = "simple" // 简单
	DifficultyMedium Difficulty = "medium" // 中等
	DifficultyHard   Difficulty = "hard"   // 困难
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultySimple, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Label returns the Chinese label for the difficulty.
func (d Difficulty) Label() string {
	switch d {
	case DifficultySimple:
		return "简单"
	case DifficultyMedium:
		return "中等"
	case DifficultyHard:
		return "困难"
	default:
		return string(d)
	}
}

// ParseDifficulty accepts both the English identifiers and the Chinese labels.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch s {
	case "simple", "简单":
		return DifficultySimple, true
	case "medium", "中等":
		return DifficultyMedium, true
	case "hard", "困难":
		return DifficultyHard, true
	}
	return "", false
}

// DictionaryEntry is the linguistic record of a single character.
// Entries are built once when the dictionary loads and never mutated afterwards.
type DictionaryEntry struct {
	Character  string     `yaml:"character" json:"character"`
	Pinyin     string     `yaml:"pinyin" json:"pinyin"`         // Tone-marked reading, e.g. "xué"
	Meaning    string     `yaml:"meaning" json:"meaning"`       // Gloss, numbered senses
	Strokes    []string   `yaml:"strokes" json:"strokes"`       // Stroke names in writing order
	Examples   []string   `yaml:"examples" json:"examples"`     // Example words
	Level      Level      `yaml:"level" json:"level"`           // 1..3
	Difficulty Difficulty `yaml:"difficulty" json:"difficulty"` // simple, medium, hard

	Radical     string `yaml:"radical,omitempty" json:"radical,omitempty"`
	StrokeCount int    `yaml:"stroke_count,omitempty" json:"stroke_count,omitempty"`
	Structure   string `yaml:"structure,omitempty" json:"structure,omitempty"` // e.g. 上下, 左右
	Sentence    string `yaml:"sentence,omitempty" json:"sentence,omitempty"`   // Example sentence
	Category    string `yaml:"category,omitempty" json:"category,omitempty"`
}

// VocabItem is one row of the vocabulary notebook.
type VocabItem struct {
	Char    string    `json:"char"`
	Pinyin  string    `json:"pinyin"`
	Meaning string    `json:"meaning"`
	AddedAt time.Time `json:"added_at"`
}

// PracticeMode selects how a practice question is asked and answered.
type PracticeMode string

const (
	ModeQuiz   PracticeMode = "quiz"   // Multiple choice, answer is a glyph
	ModeWrite  PracticeMode = "write"  // Type the pinyin
	ModeListen PracticeMode = "listen" // Hear the reading, answer is a glyph
)

// Valid reports whether m is a known practice mode.
func (m PracticeMode) Valid() bool {
	switch m {
	case ModeQuiz, ModeWrite, ModeListen:
		return true
	}
	return false
}

// Label returns the Chinese title of the mode.
func (m PracticeMode) Label() string {
	switch m {
	case ModeQuiz:
		return "选择题练习"
	case ModeWrite:
		return "书写练习"
	case ModeListen:
		return "听力练习"
	default:
		return string(m)
	}
}

// PracticeRecord is one answered practice question.
type PracticeRecord struct {
	Char      string       `json:"char"`
	Answer    string       `json:"answer"`
	Correct   bool         `json:"correct"`
	Mode      PracticeMode `json:"mode,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// Progress summarizes learning progress over the dictionary.
type Progress struct {
	Total    int `json:"total"`    // Characters in the dictionary
	Mastered int `json:"mastered"` // Characters marked as mastered
	InText   int `json:"in_text"`  // Distinct dictionary characters in the current text
	InVocab  int `json:"in_vocab"` // Notebook size
}

// Snapshot is the exportable learning data of a session.
type Snapshot struct {
	Text       string           `json:"text"`
	Mastered   []string         `json:"mastered"`
	Vocab      []VocabItem      `json:"vocab"`
	History    []PracticeRecord `json:"practice_history"`
	ExportDate time.Time        `json:"export_date"`
}
