package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// CommandSynthesizer speaks through an external TTS program such as
// espeak-ng. The text is passed as the last argument.
type CommandSynthesizer struct {
	path  string
	voice string
	wpm   int
}

// NewCommandSynthesizer resolves command on PATH. voice is passed with -v and
// the rate scales wpm, which is passed with -s.
func NewCommandSynthesizer(command, voice string, wpm int) (*CommandSynthesizer, error) {
	if command == "" {
		return nil, fmt.Errorf("no speech command configured")
	}
	path, err := exec.LookPath(command)
	if err != nil {
		return nil, fmt.Errorf("speech command %q: %w", command, err)
	}
	if wpm <= 0 {
		wpm = 175
	}
	return &CommandSynthesizer{path: path, voice: voice, wpm: wpm}, nil
}

// Args returns the arguments the program is run with for u.
func (c *CommandSynthesizer) Args(u Utterance) []string {
	rate := u.Rate
	if rate <= 0 {
		rate = NormalRate
	}

	var args []string
	if c.voice != "" {
		args = append(args, "-v", c.voice)
	}
	args = append(args, "-s", strconv.Itoa(int(float64(c.wpm)*rate+0.5)))
	args = append(args, u.Text)
	return args
}

func (c *CommandSynthesizer) Speak(ctx context.Context, u Utterance) error {
	if strings.TrimSpace(u.Text) == "" {
		return nil
	}
	cmd := exec.CommandContext(ctx, c.path, c.Args(u)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("running %s: %w: %s", c.path, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// NewSynthesizer returns a CommandSynthesizer, or a NopSynthesizer and the
// reason when the command is unavailable.
func NewSynthesizer(command, voice string, wpm int) (Synthesizer, error) {
	s, err := NewCommandSynthesizer(command, voice, wpm)
	if err != nil {
		return NopSynthesizer{}, err
	}
	return s, nil
}
