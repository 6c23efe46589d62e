// Package ocr turns embedded page images into text. The recognition engine is
// pluggable; decoding and the preprocessing filter chain live here so every
// engine sees the same pixels.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Engine recognizes the text in a decoded image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image) (string, error)
}

var ErrEmptyImage = errors.New("ocr: empty image data")

// Decode decodes an encoded image resource. The format tag reported by the PDF
// extractor is advisory only; the codec is chosen from the data itself.
func Decode(data []byte, format string) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s image: %w", format, err)
	}
	return img, nil
}
