package screenshot_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/v0xg/a11yscan/internal/screenshot"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDownscale_Shrinks(t *testing.T) {
	t.Parallel()

	out, err := screenshot.Downscale(pngOf(t, 400, 200), 100)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestDownscale_SmallImageUntouched(t *testing.T) {
	t.Parallel()

	in := pngOf(t, 80, 60)
	out, err := screenshot.Downscale(in, 100)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDownscale_NotPNG(t *testing.T) {
	t.Parallel()

	_, err := screenshot.Downscale([]byte("not an image"), 100)
	require.Error(t, err)
}
