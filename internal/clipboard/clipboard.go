// Package clipboard copies text to the system clipboard through the platform's
// copy program.
package clipboard

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrUnavailable is returned when no copy program is installed.
var ErrUnavailable = errors.New("no clipboard program found")

type candidate struct {
	name string
	args []string
}

// candidates lists the copy programs to try for goos, best first.
func candidates(goos string, wayland bool) []candidate {
	switch goos {
	case "darwin":
		return []candidate{{name: "pbcopy"}}
	case "windows":
		return []candidate{{name: "clip"}}
	}
	var out []candidate
	if wayland {
		out = append(out, candidate{name: "wl-copy"})
	}
	return append(out,
		candidate{name: "xclip", args: []string{"-selection", "clipboard"}},
		candidate{name: "xsel", args: []string{"--clipboard", "--input"}},
	)
}

// Copier writes to the clipboard.
type Copier struct {
	goos     string
	wayland  bool
	lookPath func(string) (string, error)
	run      func(cmd *exec.Cmd) error
}

// New returns a Copier for the running system.
func New() *Copier {
	return &Copier{
		goos:     runtime.GOOS,
		wayland:  os.Getenv("WAYLAND_DISPLAY") != "",
		lookPath: exec.LookPath,
		run:      (*exec.Cmd).Run,
	}
}

func (c *Copier) command() (*exec.Cmd, error) {
	for _, cand := range candidates(c.goos, c.wayland) {
		path, err := c.lookPath(cand.name)
		if err != nil {
			continue
		}
		return exec.Command(path, cand.args...), nil
	}
	return nil, ErrUnavailable
}

// Available reports whether a copy program is installed.
func (c *Copier) Available() bool {
	_, err := c.command()
	return err == nil
}

// Write copies text to the clipboard.
func (c *Copier) Write(text string) error {
	cmd, err := c.command()
	if err != nil {
		return err
	}
	cmd.Stdin = strings.NewReader(text)
	if err := c.run(cmd); err != nil {
		return fmt.Errorf("running %s: %w", cmd.Path, err)
	}
	return nil
}
