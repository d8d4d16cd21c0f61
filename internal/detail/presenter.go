// Package detail presents a selected character: its entry, its reading and
// its stroke order.
package detail

import (
	"context"
	"fmt"

	"github.com/f3rmion/suiwen/internal/annotate"
	"github.com/f3rmion/suiwen/internal/dict"
	"github.com/f3rmion/suiwen/internal/hanzi"
	"github.com/f3rmion/suiwen/internal/session"
	"github.com/f3rmion/suiwen/internal/speech"
	"github.com/f3rmion/suiwen/internal/stroke"
)

// SpeechMode selects how a character is read aloud.
type SpeechMode string

const (
	SpeakModeOnce   SpeechMode = "once"
	SpeakModeRepeat SpeechMode = "repeat"
	SpeakModeSlow   SpeechMode = "slow"
)

// ParseSpeechMode accepts the wire names of the speech modes. Empty means once.
func ParseSpeechMode(s string) (SpeechMode, error) {
	switch m := SpeechMode(s); m {
	case "":
		return SpeakModeOnce, nil
	case SpeakModeOnce, SpeakModeRepeat, SpeakModeSlow:
		return m, nil
	}
	return "", fmt.Errorf("unknown speech mode %q", s)
}

// Directive is a speech instruction for a client that plays audio itself.
type Directive struct {
	speech.Utterance
	Repeat bool  `json:"repeat,omitempty"`
	Pause  int64 `json:"pause_ms,omitempty"`
}

// StrokeAnimator runs a stroke-order animation.
type StrokeAnimator interface {
	Run(ctx context.Context, glyph string, strokes []string, style stroke.Style,
		onStroke func(i int, name string), onComplete func()) error
}

// View is everything the detail panel shows for one character.
type View struct {
	Entry   *hanzi.DictionaryEntry `json:"entry"`
	Strokes []string               `json:"strokes"`
	Style   stroke.Style           `json:"style"`
}

// Presenter looks up characters and hands them to the speech player and the
// stroke animator. A nil player only produces directives.
type Presenter struct {
	dict     *dict.Dictionary
	player   *speech.Player
	animator StrokeAnimator
	style    stroke.Style
}

// NewPresenter creates a presenter. player may be nil.
func NewPresenter(d *dict.Dictionary, player *speech.Player, animator StrokeAnimator) *Presenter {
	if animator == nil {
		animator = stroke.Animator{}
	}
	return &Presenter{
		dict:     d,
		player:   player,
		animator: animator,
		style:    stroke.DefaultStyle(),
	}
}

// SetStyle replaces the stroke animation style.
func (p *Presenter) SetStyle(style stroke.Style) {
	p.style = style
}

// Present returns the view of glyph, or false when it is not a dictionary key.
func (p *Presenter) Present(glyph string) (View, bool) {
	e := p.dict.Lookup(glyph)
	if e == nil {
		return View{}, false
	}
	return View{Entry: e, Strokes: e.Strokes, Style: p.style}, true
}

// Directive returns the speech instruction for glyph in the given mode, or
// false when glyph is not a dictionary key.
func (p *Presenter) Directive(mode SpeechMode, glyph string) (Directive, bool) {
	if !p.dict.Has(glyph) {
		return Directive{}, false
	}
	switch mode {
	case SpeakModeSlow:
		return Directive{Utterance: speech.Slow(glyph)}, true
	case SpeakModeRepeat:
		return Directive{
			Utterance: speech.Once(glyph),
			Repeat:    true,
			Pause:     speech.RepeatPause.Milliseconds(),
		}, true
	default:
		return Directive{Utterance: speech.Once(glyph)}, true
	}
}

// Speak plays glyph in the given mode and returns the directive used.
func (p *Presenter) Speak(mode SpeechMode, glyph string) (Directive, bool) {
	d, ok := p.Directive(mode, glyph)
	if !ok || p.player == nil {
		return d, ok
	}
	if d.Repeat {
		p.player.Repeat(d.Utterance)
	} else {
		p.player.Play(d.Utterance)
	}
	return d, true
}

// SpeakOnce reads glyph once at normal rate.
func (p *Presenter) SpeakOnce(glyph string) bool {
	_, ok := p.Speak(SpeakModeOnce, glyph)
	return ok
}

// SpeakRepeat reads glyph over and over with a pause until stopped.
func (p *Presenter) SpeakRepeat(glyph string) bool {
	_, ok := p.Speak(SpeakModeRepeat, glyph)
	return ok
}

// SpeakSlow reads glyph once at the reduced rate.
func (p *Presenter) SpeakSlow(glyph string) bool {
	_, ok := p.Speak(SpeakModeSlow, glyph)
	return ok
}

// SpeakText reads a whole passage.
func (p *Presenter) SpeakText(text string) speech.Utterance {
	u := speech.Once(text)
	if p.player != nil && text != "" {
		p.player.Play(u)
	}
	return u
}

// Stop ends any playback.
func (p *Presenter) Stop() {
	if p.player != nil {
		p.player.Stop()
	}
}

// AnimateStrokes runs the stroke-order animation of glyph and blocks until it
// completes or ctx is done.
func (p *Presenter) AnimateStrokes(ctx context.Context, glyph string,
	onStroke func(i int, name string), onComplete func()) error {
	e := p.dict.Lookup(glyph)
	if e == nil {
		return fmt.Errorf("animating %q: not in dictionary", glyph)
	}
	return p.animator.Run(ctx, glyph, e.Strokes, p.style, onStroke, onComplete)
}

// Dispatch resolves a token event against s. A char event selects the glyph
// and reads it once; an audio-icon event only reads it. Events for glyphs
// outside the dictionary do nothing and report false.
func (p *Presenter) Dispatch(s *session.Session, ev annotate.Event) (Directive, bool) {
	switch ev.Kind {
	case annotate.EventChar:
		if !s.SelectCharacter(ev.Glyph) {
			return Directive{}, false
		}
		return p.Speak(SpeakModeOnce, ev.Glyph)
	case annotate.EventAudioIcon:
		return p.Speak(SpeakModeOnce, ev.Glyph)
	}
	return Directive{}, false
}
