// Package session holds the state of one reading session: the text being read,
// its annotation, the selected character, the mastered set and the vocabulary
// notebook.
package session

import (
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/f3rmion/suiwen/internal/annotate"
	"github.com/f3rmion/suiwen/internal/dict"
	"github.com/f3rmion/suiwen/internal/hanzi"
)

// DefaultText is the sample sentence every new session starts with.
const DefaultText = "我学京剧。京剧很好看。我跟老师学唱戏。"

// Session is the state of one reader. It is not safe for concurrent use.
type Session struct {
	dict     *dict.Dictionary
	text     string
	tokens   []annotate.Token
	selected string
	mastered map[string]struct{}
	vocab    []hanzi.VocabItem
	now      func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock used to stamp vocabulary items.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithText sets the starting text instead of DefaultText.
func WithText(text string) Option {
	return func(s *Session) { s.text = text }
}

// New creates a session over d holding DefaultText.
func New(d *dict.Dictionary, opts ...Option) *Session {
	s := &Session{
		dict:     d,
		text:     DefaultText,
		mastered: make(map[string]struct{}),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tokens = annotate.Annotate(s.text, d)
	return s
}

// Dictionary returns the dictionary the session annotates against.
func (s *Session) Dictionary() *dict.Dictionary {
	return s.dict
}

// Text returns the current input text.
func (s *Session) Text() string {
	return s.text
}

// Tokens returns the annotation of the current text.
func (s *Session) Tokens() []annotate.Token {
	out := make([]annotate.Token, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// Markup returns the highlighted HTML of the current text.
func (s *Session) Markup() string {
	return annotate.HTML(s.tokens)
}

// Glyphs returns the distinct dictionary characters of the current text in
// reading order. These are the practice sources.
func (s *Session) Glyphs() []string {
	return annotate.Glyphs(s.tokens)
}

// SetText replaces the text and re-annotates it. Selection, mastered set and
// notebook are left alone.
func (s *Session) SetText(text string) {
	s.text = text
	s.tokens = annotate.Annotate(text, s.dict)
}

// SelectCharacter selects glyph when it is a dictionary key and reports
// whether it did. Unknown glyphs leave the selection unchanged.
func (s *Session) SelectCharacter(glyph string) bool {
	if !s.dict.Has(glyph) {
		return false
	}
	s.selected = glyph
	return true
}

// ClearSelection closes the detail view.
func (s *Session) ClearSelection() {
	s.selected = ""
}

// Selected returns the selected glyph, if any.
func (s *Session) Selected() (string, bool) {
	return s.selected, s.selected != ""
}

// SelectedEntry returns the entry of the selected glyph, or nil.
func (s *Session) SelectedEntry() *hanzi.DictionaryEntry {
	if s.selected == "" {
		return nil
	}
	return s.dict.Lookup(s.selected)
}

// Search selects a single Han character typed into the search box and
// returns its entry. Anything else, or a character outside the dictionary,
// is not found and leaves the selection alone.
func (s *Session) Search(query string) (*hanzi.DictionaryEntry, bool) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) != 1 {
		return nil, false
	}
	r, _ := utf8.DecodeRuneInString(query)
	if !unicode.Is(unicode.Han, r) || !s.SelectCharacter(query) {
		return nil, false
	}
	return s.dict.Lookup(query), true
}

// ToggleMastered flips glyph in the mastered set and returns the new
// membership.
func (s *Session) ToggleMastered(glyph string) bool {
	if _, ok := s.mastered[glyph]; ok {
		delete(s.mastered, glyph)
		return false
	}
	s.mastered[glyph] = struct{}{}
	return true
}

// IsMastered reports whether glyph is in the mastered set.
func (s *Session) IsMastered(glyph string) bool {
	_, ok := s.mastered[glyph]
	return ok
}

// Mastered returns the mastered set sorted.
func (s *Session) Mastered() []string {
	out := make([]string, 0, len(s.mastered))
	for g := range s.mastered {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// AddToVocab appends glyph to the notebook with its dictionary reading and
// meaning. It reports false when glyph is unknown or already present.
func (s *Session) AddToVocab(glyph string) bool {
	e := s.dict.Lookup(glyph)
	if e == nil || s.InVocab(glyph) {
		return false
	}
	s.vocab = append(s.vocab, hanzi.VocabItem{
		Char:    glyph,
		Pinyin:  e.Pinyin,
		Meaning: e.Meaning,
		AddedAt: s.now(),
	})
	return true
}

// RemoveFromVocab removes glyph from the notebook and reports whether it was
// there.
func (s *Session) RemoveFromVocab(glyph string) bool {
	for i, item := range s.vocab {
		if item.Char == glyph {
			s.vocab = append(s.vocab[:i], s.vocab[i+1:]...)
			return true
		}
	}
	return false
}

// InVocab reports whether glyph is in the notebook.
func (s *Session) InVocab(glyph string) bool {
	for _, item := range s.vocab {
		if item.Char == glyph {
			return true
		}
	}
	return false
}

// Vocab returns the notebook in insertion order.
func (s *Session) Vocab() []hanzi.VocabItem {
	out := make([]hanzi.VocabItem, len(s.vocab))
	copy(out, s.vocab)
	return out
}

// FilterVocab returns the notebook items whose character, pinyin or meaning
// contains query. Pinyin and meaning are matched case-insensitively.
func (s *Session) FilterVocab(query string) []hanzi.VocabItem {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return s.Vocab()
	}
	var out []hanzi.VocabItem
	for _, item := range s.vocab {
		if strings.Contains(item.Char, query) ||
			strings.Contains(strings.ToLower(item.Pinyin), query) ||
			strings.Contains(strings.ToLower(item.Meaning), query) {
			out = append(out, item)
		}
	}
	return out
}

// Progress summarizes the session against the dictionary.
func (s *Session) Progress() hanzi.Progress {
	return hanzi.Progress{
		Total:    s.dict.Size(),
		Mastered: len(s.mastered),
		InText:   len(s.Glyphs()),
		InVocab:  len(s.vocab),
	}
}

// Snapshot captures the exportable learning data of the session.
func (s *Session) Snapshot(history []hanzi.PracticeRecord) hanzi.Snapshot {
	if history == nil {
		history = []hanzi.PracticeRecord{}
	}
	return hanzi.Snapshot{
		Text:       s.text,
		Mastered:   s.Mastered(),
		Vocab:      s.Vocab(),
		History:    history,
		ExportDate: s.now(),
	}
}

// Restore loads text, mastered set and notebook from a snapshot. Characters
// that are no longer dictionary keys are dropped, and notebook readings are
// refreshed from the dictionary.
func (s *Session) Restore(snap hanzi.Snapshot) {
	s.SetText(snap.Text)
	s.selected = ""

	s.mastered = make(map[string]struct{}, len(snap.Mastered))
	for _, g := range snap.Mastered {
		if s.dict.Has(g) {
			s.mastered[g] = struct{}{}
		}
	}

	s.vocab = nil
	for _, item := range snap.Vocab {
		e := s.dict.Lookup(item.Char)
		if e == nil || s.InVocab(item.Char) {
			continue
		}
		item.Pinyin = e.Pinyin
		item.Meaning = e.Meaning
		if item.AddedAt.IsZero() {
			item.AddedAt = s.now()
		}
		s.vocab = append(s.vocab, item)
	}
}
