// Package practice picks practice questions from the characters of a text and
// keeps score of the answers.
package practice

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/f3rmion/suiwen/internal/dict"
	"github.com/f3rmion/suiwen/internal/hanzi"
)

// HistorySize is the number of answers kept, newest first.
const HistorySize = 10

// OptionCount is the number of choices in a quiz question.
const OptionCount = 4

// ErrNoQuestion means the text holds no dictionary characters to ask about.
var ErrNoQuestion = errors.New("no characters available for practice")

// Question is one practice prompt. Options is set in the multiple-choice
// modes, quiz and listen.
type Question struct {
	Char    string             `json:"char"`
	Mode    hanzi.PracticeMode `json:"mode"`
	Options []string           `json:"options,omitempty"`
}

// Generator asks questions and records answers. It is not safe for
// concurrent use.
type Generator struct {
	dict    *dict.Dictionary
	rng     *rand.Rand
	now     func() time.Time
	current *Question
	history []hanzi.PracticeRecord
	correct int
	total   int
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand sets the random source, for reproducible questions.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) { g.rng = rng }
}

// WithClock sets the clock used to stamp answers.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a generator drawing quiz distractors from d.
func NewGenerator(d *dict.Dictionary, opts ...Option) *Generator {
	g := &Generator{
		dict: d,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NextQuestion picks a character of sources uniformly at random. Sources are
// the distinct dictionary characters of the current text.
func (g *Generator) NextQuestion(sources []string, mode hanzi.PracticeMode) (Question, error) {
	if !mode.Valid() {
		return Question{}, fmt.Errorf("unknown practice mode %q", mode)
	}
	if len(sources) == 0 {
		return Question{}, ErrNoQuestion
	}

	q := Question{
		Char: sources[g.rng.Intn(len(sources))],
		Mode: mode,
	}
	if mode == hanzi.ModeQuiz || mode == hanzi.ModeListen {
		q.Options = g.options(q.Char, sources)
	}

	g.current = &q
	return q, nil
}

// Current returns the question awaiting an answer.
func (g *Generator) Current() (Question, bool) {
	if g.current == nil {
		return Question{}, false
	}
	return *g.current, true
}

// options returns up to OptionCount distinct glyphs including answer, in
// random order. Distractors come from sources first, then the dictionary.
func (g *Generator) options(answer string, sources []string) []string {
	used := map[string]bool{answer: true}
	opts := []string{answer}

	pick := func(pool []string) {
		pool = append([]string(nil), pool...)
		g.rng.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
		for _, c := range pool {
			if len(opts) >= OptionCount {
				return
			}
			if used[c] {
				continue
			}
			used[c] = true
			opts = append(opts, c)
		}
	}

	pick(sources)
	if g.dict != nil {
		pick(g.dict.Characters())
	}

	g.rng.Shuffle(len(opts), func(i, j int) {
		opts[i], opts[j] = opts[j], opts[i]
	})
	return opts
}

// SubmitAnswer compares actual to expected by exact string equality and
// records the outcome against the current question. There is no tone or
// case folding: "xue" does not match "xué".
func (g *Generator) SubmitAnswer(expected, actual string) bool {
	correct := expected == actual

	rec := hanzi.PracticeRecord{
		Char:      expected,
		Answer:    actual,
		Correct:   correct,
		Timestamp: g.now(),
	}
	if g.current != nil {
		rec.Char = g.current.Char
		rec.Mode = g.current.Mode
	}

	g.history = append([]hanzi.PracticeRecord{rec}, g.history...)
	if len(g.history) > HistorySize {
		g.history = g.history[:HistorySize]
	}

	g.total++
	if correct {
		g.correct++
	}
	g.current = nil

	return correct
}

// Expected returns the answer q wants: the glyph in quiz and listen modes,
// the dictionary pinyin in write mode.
func (g *Generator) Expected(q Question) string {
	if q.Mode == hanzi.ModeWrite && g.dict != nil {
		if e := g.dict.Lookup(q.Char); e != nil {
			return e.Pinyin
		}
	}
	return q.Char
}

// Answer submits actual against the expected value of q.
func (g *Generator) Answer(q Question, actual string) bool {
	g.current = &q
	return g.SubmitAnswer(g.Expected(q), actual)
}

// History returns the recorded answers, newest first.
func (g *Generator) History() []hanzi.PracticeRecord {
	out := make([]hanzi.PracticeRecord, len(g.history))
	copy(out, g.history)
	return out
}

// Score returns the number of correct answers and of all answers since the
// last Reset.
func (g *Generator) Score() (correct, total int) {
	return g.correct, g.total
}

// Accuracy returns the share of correct answers in [0,1], or 0 before any
// answer.
func (g *Generator) Accuracy() float64 {
	if g.total == 0 {
		return 0
	}
	return float64(g.correct) / float64(g.total)
}

// Reset clears the score, history and pending question.
func (g *Generator) Reset() {
	g.current = nil
	g.history = nil
	g.correct = 0
	g.total = 0
}
