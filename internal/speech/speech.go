// Package speech plays characters and passages through a text-to-speech
// backend.
package speech

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// Lang is the language tag of every utterance.
	Lang = "zh-CN"

	NormalRate = 1.0
	SlowRate   = 0.7

	// RepeatPause is the gap between repetitions in repeat mode.
	RepeatPause = time.Second
)

// Utterance is what a synthesizer is asked to say. It doubles as the speech
// directive handed to browser clients.
type Utterance struct {
	Text string  `json:"text"`
	Lang string  `json:"lang"`
	Rate float64 `json:"rate"`
}

// Once returns an utterance of text at normal rate.
func Once(text string) Utterance {
	return Utterance{Text: text, Lang: Lang, Rate: NormalRate}
}

// Slow returns an utterance of text at the reduced rate.
func Slow(text string) Utterance {
	return Utterance{Text: text, Lang: Lang, Rate: SlowRate}
}

// Synthesizer speaks an utterance. Speak blocks until the utterance has
// finished or ctx is done.
type Synthesizer interface {
	Speak(ctx context.Context, u Utterance) error
}

// NopSynthesizer discards every utterance.
type NopSynthesizer struct{}

func (NopSynthesizer) Speak(ctx context.Context, u Utterance) error {
	return nil
}

// Player serializes playback on one synthesizer. Starting a new utterance
// cancels whatever is playing or queued.
type Player struct {
	synth Synthesizer
	log   *zap.Logger
	pause time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithLogger sets the logger for playback failures.
func WithLogger(log *zap.Logger) PlayerOption {
	return func(p *Player) { p.log = log }
}

// WithPause overrides RepeatPause.
func WithPause(d time.Duration) PlayerOption {
	return func(p *Player) { p.pause = d }
}

// NewPlayer creates a player on synth.
func NewPlayer(synth Synthesizer, opts ...PlayerOption) *Player {
	p := &Player{
		synth: synth,
		log:   zap.NewNop(),
		pause: RepeatPause,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play speaks u once.
func (p *Player) Play(u Utterance) {
	p.start(func(ctx context.Context) {
		p.speak(ctx, u)
	})
}

// Repeat speaks u, waits for the pause after each utterance ends, and speaks
// it again until Stop or the next Play.
func (p *Player) Repeat(u Utterance) {
	p.start(func(ctx context.Context) {
		for {
			if !p.speak(ctx, u) {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.pause):
			}
		}
	})
}

// Stop cancels playback and waits for it to end.
func (p *Player) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Wait blocks until the current playback ends by itself or is replaced.
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (p *Player) start(run func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	p.mu.Lock()
	prevCancel, prevDone := p.cancel, p.done
	p.cancel, p.done = cancel, done
	p.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
	}

	go func() {
		defer close(done)
		if prevDone != nil {
			<-prevDone
		}
		if ctx.Err() != nil {
			return
		}
		run(ctx)
	}()
}

// speak reports whether playback should go on.
func (p *Player) speak(ctx context.Context, u Utterance) bool {
	err := p.synth.Speak(ctx, u)
	switch {
	case err == nil:
		return ctx.Err() == nil
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		return false
	default:
		p.log.Warn("speech playback failed", zap.String("text", u.Text), zap.Error(err))
		return false
	}
}
