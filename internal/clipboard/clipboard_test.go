package clipboard

import (
	"errors"
	"io"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeCopier(goos string, wayland bool, installed ...string) (*Copier, *string) {
	var got string
	c := &Copier{
		goos:    goos,
		wayland: wayland,
		lookPath: func(name string) (string, error) {
			for _, n := range installed {
				if n == name {
					return "/usr/bin/" + name, nil
				}
			}
			return "", exec.ErrNotFound
		},
		run: func(cmd *exec.Cmd) error {
			data, err := io.ReadAll(cmd.Stdin)
			got = filepath.Base(cmd.Path) + ":" + string(data)
			return err
		},
	}
	return c, &got
}

func TestWritePicksProgram(t *testing.T) {
	tests := []struct {
		name      string
		goos      string
		wayland   bool
		installed []string
		want      string
	}{
		{"mac", "darwin", false, []string{"pbcopy"}, "pbcopy:学"},
		{"x11 xclip", "linux", false, []string{"xclip", "xsel"}, "xclip:学"},
		{"x11 xsel", "linux", false, []string{"xsel"}, "xsel:学"},
		{"wayland", "linux", true, []string{"wl-copy", "xclip"}, "wl-copy:学"},
		{"wayland without wl-copy", "linux", true, []string{"xclip"}, "xclip:学"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, got := fakeCopier(tt.goos, tt.wayland, tt.installed...)
			require.True(t, c.Available())
			require.NoError(t, c.Write("学"))
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestWriteUnavailable(t *testing.T) {
	c, _ := fakeCopier("linux", false)
	assert.False(t, c.Available())
	assert.True(t, errors.Is(c.Write("学"), ErrUnavailable))
}
