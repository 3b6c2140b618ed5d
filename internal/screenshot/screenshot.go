// Package screenshot prepares captured viewports for vision requests.
package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/nfnt/resize"
)

// DefaultMaxWidth bounds the width of images sent to the vision model.
const DefaultMaxWidth = 1024

// Downscale shrinks a PNG to at most maxWidth pixels wide, keeping the aspect
// ratio. Images already within bounds are returned untouched.
func Downscale(data []byte, maxWidth uint) ([]byte, error) {
	if maxWidth == 0 {
		maxWidth = DefaultMaxWidth
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}

	bounds := img.Bounds()
	if uint(bounds.Dx()) <= maxWidth {
		return data, nil
	}

	// Height 0 preserves the aspect ratio.
	resized := resize.Resize(maxWidth, 0, img, resize.Lanczos3)

	return encode(resized)
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode screenshot: %w", err)
	}
	return buf.Bytes(), nil
}
