package bigchar

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageToHalfBlocks(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	img.SetGray(0, 0, color.Gray{Y: 255})
	img.SetGray(0, 1, color.Gray{Y: 255})
	img.SetGray(1, 0, color.Gray{Y: 255})
	img.SetGray(2, 1, color.Gray{Y: 255})

	assert.Equal(t, "█▀▄", imageToHalfBlocks(img, 3, 1))
	assert.Equal(t, "   \n   ", imageToHalfBlocks(image.NewGray(image.Rect(0, 0, 3, 4)), 3, 2))
}

func TestScaleDown(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 4))
	for x := 0; x < 2; x++ {
		for y := 0; y < 4; y++ {
			src.SetGray(x, y, color.Gray{Y: 200})
		}
	}

	dst := scaleDown(src, 2, 2)
	assert.Equal(t, uint8(200), dst.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), dst.GrayAt(1, 1).Y)
}

func TestNilRenderer(t *testing.T) {
	var r *Renderer
	assert.Equal(t, "", r.Render("学", 10, 5))
	assert.Equal(t, "", r.Path())
}

func TestNewRejectsBadFont(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.ttf")
	require.NoError(t, os.WriteFile(bad, []byte("not a font"), 0644))

	_, err := loadFace(bad)
	assert.Error(t, err)
}

func TestRenderWithSystemFont(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Skip("no CJK font installed")
	}

	out := r.Render("学", 12, 6)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, 12, len([]rune(lines[0])))
	assert.Equal(t, out, r.Render("学", 12, 6))
	assert.Equal(t, "", r.Render("", 12, 6))
}
