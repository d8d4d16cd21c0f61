// Package stroke steps through the stroke order of a character.
package stroke

import (
	"context"
	"fmt"
	"time"
)

// Style configures how a stroke-order animation is drawn.
type Style struct {
	StrokeColor         string        `json:"stroke_color"`
	RadicalColor        string        `json:"radical_color"`
	DelayBetweenStrokes time.Duration `json:"delay_between_strokes"`
	Width               int           `json:"width"`
	Height              int           `json:"height"`
	Padding             int           `json:"padding"`
	ShowOutline         bool          `json:"show_outline"`
}

// DefaultStyle returns the detail panel animation style.
func DefaultStyle() Style {
	return Style{
		StrokeColor:         "#2b7cff",
		RadicalColor:        "#ff6b6b",
		DelayBetweenStrokes: 300 * time.Millisecond,
		Width:               200,
		Height:              200,
		Padding:             10,
		ShowOutline:         true,
	}
}

// Animation is the stepping state of one stroke-order run. Current is the
// number of strokes drawn so far.
type Animation struct {
	Glyph   string
	Strokes []string
	Current int
}

// NewAnimation starts an animation with no strokes drawn.
func NewAnimation(glyph string, strokes []string) *Animation {
	return &Animation{Glyph: glyph, Strokes: strokes}
}

// Step draws the next stroke and returns its index and name. It reports
// false once every stroke is drawn.
func (a *Animation) Step() (int, string, bool) {
	if a.Done() {
		return 0, "", false
	}
	i := a.Current
	a.Current++
	return i, a.Strokes[i], true
}

// Done reports whether every stroke has been drawn.
func (a *Animation) Done() bool {
	return a.Current >= len(a.Strokes)
}

// Reset clears the drawn strokes.
func (a *Animation) Reset() {
	a.Current = 0
}

// Drawn returns the names of the strokes drawn so far.
func (a *Animation) Drawn() []string {
	return a.Strokes[:a.Current]
}

// Progress returns "drawn/total".
func (a *Animation) Progress() string {
	return fmt.Sprintf("%d/%d", a.Current, len(a.Strokes))
}

// Animator drives animations in real time.
type Animator struct{}

// Run draws strokes one per DelayBetweenStrokes, calling onStroke after each
// and onComplete after the last. It blocks until done and returns ctx.Err()
// when cancelled first; onComplete is not called then.
func (Animator) Run(ctx context.Context, glyph string, strokes []string, style Style,
	onStroke func(i int, name string), onComplete func()) error {
	anim := NewAnimation(glyph, strokes)
	delay := style.DelayBetweenStrokes
	if delay <= 0 {
		delay = DefaultStyle().DelayBetweenStrokes
	}

	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for !anim.Done() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		i, name, _ := anim.Step()
		if onStroke != nil {
			onStroke(i, name)
		}
	}

	if onComplete != nil {
		onComplete()
	}
	return nil
}
