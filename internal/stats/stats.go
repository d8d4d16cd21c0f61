// Package stats summarizes a learner's progress: mastery over the
// dictionary, practice accuracy, how the characters of the text spread over
// the levels, and the achievements unlocked so far.
package stats

import (
	"github.com/f3rmion/suiwen/internal/annotate"
	"github.com/f3rmion/suiwen/internal/hanzi"
	"github.com/f3rmion/suiwen/internal/practice"
	"github.com/f3rmion/suiwen/internal/session"
)

// Achievement thresholds.
const (
	BeginnerMastered = 5
	AdvancedMastered = 10
	PracticeCorrect  = 20
)

// Achievement is a milestone and whether it has been reached.
type Achievement struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Detail   string `json:"detail"`
	Unlocked bool   `json:"unlocked"`
}

// LevelCount lists the characters of the text at one level.
type LevelCount struct {
	Level hanzi.Level `json:"level"`
	Label string      `json:"label"`
	Chars []string    `json:"chars"`
}

// Report is a point-in-time summary of a session and its practice.
type Report struct {
	Progress     hanzi.Progress `json:"progress"`
	Answered     int            `json:"answered"`
	Correct      int            `json:"correct"`
	Accuracy     float64        `json:"accuracy"`
	Levels       []LevelCount   `json:"levels"`
	Achievements []Achievement  `json:"achievements"`
}

var levels = []hanzi.Level{hanzi.LevelBasic, hanzi.LevelIntermediate, hanzi.LevelAdvanced}

// Build summarizes sess and the answers recorded by gen. gen may be nil
// before any practice.
func Build(sess *session.Session, gen *practice.Generator) Report {
	r := Report{Progress: sess.Progress()}
	if gen != nil {
		r.Correct, r.Answered = gen.Score()
		r.Accuracy = gen.Accuracy()
	}

	byLevel := annotate.ByLevel(sess.Tokens(), sess.Dictionary())
	for _, l := range levels {
		chars := byLevel[l]
		if chars == nil {
			chars = []string{}
		}
		r.Levels = append(r.Levels, LevelCount{Level: l, Label: l.Label(), Chars: chars})
	}

	r.Achievements = Achievements(r.Progress.Mastered, r.Correct)
	return r
}

// Achievements returns every milestone, unlocked or not, in display order.
func Achievements(mastered, correct int) []Achievement {
	return []Achievement{
		{ID: "beginner", Name: "初学者", Detail: "掌握5个汉字", Unlocked: mastered >= BeginnerMastered},
		{ID: "advanced", Name: "进阶者", Detail: "掌握10个汉字", Unlocked: mastered >= AdvancedMastered},
		{ID: "practice", Name: "练习达人", Detail: "答对20题", Unlocked: correct >= PracticeCorrect},
	}
}

// Unlocked filters achievements down to the reached ones.
func Unlocked(all []Achievement) []Achievement {
	var out []Achievement
	for _, a := range all {
		if a.Unlocked {
			out = append(out, a)
		}
	}
	return out
}
