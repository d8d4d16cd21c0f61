package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder records utterances. When block is set, Speak waits for ctx.
type recorder struct {
	mu      sync.Mutex
	spoken  []Utterance
	block   bool
	err     error
	release chan struct{}
	started chan Utterance
}

func newRecorder(block bool) *recorder {
	return &recorder{block: block, started: make(chan Utterance, 100)}
}

func (r *recorder) Speak(ctx context.Context, u Utterance) error {
	r.mu.Lock()
	r.spoken = append(r.spoken, u)
	r.mu.Unlock()
	r.started <- u

	if r.block {
		<-ctx.Done()
		if r.release != nil {
			<-r.release
		}
		return ctx.Err()
	}
	return r.err
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.spoken)
}

func waitStarted(t *testing.T, r *recorder) Utterance {
	t.Helper()
	select {
	case u := <-r.started:
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("utterance did not start")
		return Utterance{}
	}
}

func TestUtterances(t *testing.T) {
	assert.Equal(t, Utterance{Text: "学", Lang: "zh-CN", Rate: 1.0}, Once("学"))
	assert.Equal(t, Utterance{Text: "学", Lang: "zh-CN", Rate: 0.7}, Slow("学"))
}

func TestPlayOnce(t *testing.T) {
	r := newRecorder(false)
	p := NewPlayer(r)

	p.Play(Once("学"))
	p.Wait()

	assert.Equal(t, 1, r.count())
}

func TestLastCallWins(t *testing.T) {
	r := newRecorder(true)
	p := NewPlayer(r)

	p.Play(Once("学"))
	assert.Equal(t, "学", waitStarted(t, r).Text)

	p.Play(Once("京"))
	assert.Equal(t, "京", waitStarted(t, r).Text)

	p.Stop()
	assert.Equal(t, 2, r.count())
}

func TestQueuedUtteranceDropped(t *testing.T) {
	r := newRecorder(true)
	r.release = make(chan struct{})
	p := NewPlayer(r)

	p.Play(Once("学"))
	waitStarted(t, r)

	// 京 is queued behind 学 and replaced by 剧 before it can start.
	p.Play(Once("京"))
	p.Play(Once("剧"))
	close(r.release)
	assert.Equal(t, "剧", waitStarted(t, r).Text)

	p.Stop()
	assert.Equal(t, 2, r.count())
}

func TestRepeat(t *testing.T) {
	r := newRecorder(false)
	p := NewPlayer(r, WithPause(5*time.Millisecond))

	p.Repeat(Slow("戏"))
	for i := 0; i < 3; i++ {
		u := waitStarted(t, r)
		assert.Equal(t, SlowRate, u.Rate)
	}
	p.Stop()

	n := r.count()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, r.count(), "no utterance after Stop")
}

func TestRepeatStopsOnError(t *testing.T) {
	r := newRecorder(false)
	r.err = errors.New("no audio device")
	p := NewPlayer(r, WithPause(time.Millisecond))

	p.Repeat(Once("学"))
	p.Wait()
	assert.Equal(t, 1, r.count())
}

func TestStopIdle(t *testing.T) {
	p := NewPlayer(NopSynthesizer{})
	p.Stop()
	p.Wait()
}

func TestCommandArgs(t *testing.T) {
	c := &CommandSynthesizer{path: "espeak-ng", voice: "cmn", wpm: 170}
	assert.Equal(t, []string{"-v", "cmn", "-s", "170", "学"}, c.Args(Once("学")))
	assert.Equal(t, []string{"-v", "cmn", "-s", "119", "学"}, c.Args(Slow("学")))

	c.voice = ""
	assert.Equal(t, []string{"-s", "170", "学"}, c.Args(Utterance{Text: "学"}))
}

func TestNewSynthesizerMissingCommand(t *testing.T) {
	s, err := NewSynthesizer("suiwen-no-such-tts", "cmn", 175)
	require.Error(t, err)
	assert.IsType(t, NopSynthesizer{}, s)

	_, err = NewSynthesizer("", "", 0)
	assert.Error(t, err)
}
