package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

func uniform(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestDecode_PNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, uniform(4, 3, color.White)))

	img, err := Decode(buf.Bytes(), "png")
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 3, img.Bounds().Dy())
}

func TestDecode_TIFF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, tiff.Encode(&buf, uniform(5, 2, color.Black), nil))

	img, err := Decode(buf.Bytes(), "tif")
	require.NoError(t, err)
	assert.Equal(t, 5, img.Bounds().Dx())
}

func TestDecode_Failures(t *testing.T) {
	_, err := Decode(nil, "jpg")
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = Decode([]byte("definitely not an image"), "jpx")
	assert.Error(t, err)
}

func TestGrayscale_NormalizesOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 13, 12))
	for y := 10; y < 12; y++ {
		for x := 10; x < 13; x++ {
			src.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	g := Grayscale(src)
	assert.Equal(t, image.Rect(0, 0, 3, 2), g.Bounds())
	assert.Equal(t, uint8(255), g.GrayAt(0, 0).Y)
}

func TestEnhanceContrast(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 1))
	g.Pix[0] = 100
	g.Pix[1] = 140
	// mean is 120, so values move 2x further from it
	out := EnhanceContrast(g, 2)
	assert.Equal(t, uint8(80), out.Pix[0])
	assert.Equal(t, uint8(160), out.Pix[1])

	g.Pix[0] = 0
	g.Pix[1] = 255
	out = EnhanceContrast(g, 3)
	assert.Equal(t, uint8(0), out.Pix[0])
	assert.Equal(t, uint8(255), out.Pix[1])
}

func TestEnhanceContrast_UniformUnchanged(t *testing.T) {
	g := Grayscale(uniform(3, 3, color.Gray{Y: 90}))
	out := EnhanceContrast(g, 2)
	for _, p := range out.Pix {
		assert.Equal(t, uint8(90), p)
	}
}

func TestMedianFilter_RemovesSpeckle(t *testing.T) {
	g := Grayscale(uniform(5, 5, color.White))
	g.SetGray(2, 2, color.Gray{Y: 0})

	out := MedianFilter(g)
	assert.Equal(t, uint8(255), out.GrayAt(2, 2).Y)
	assert.Equal(t, uint8(255), out.GrayAt(0, 0).Y)
}

func TestUpscale(t *testing.T) {
	g := Grayscale(uniform(4, 2, color.White))
	out := Upscale(g, 2)
	assert.Equal(t, image.Rect(0, 0, 8, 4), out.Bounds())
}

func TestPreprocess(t *testing.T) {
	img := uniform(6, 4, color.RGBA{R: 200, G: 10, B: 10, A: 255})

	out := Preprocess(img, Filter{Scale: 1.5, Contrast: 2, Median: true})
	assert.Equal(t, image.Rect(0, 0, 9, 6), out.Bounds())

	plain := Preprocess(img, Filter{})
	assert.Equal(t, Grayscale(img).Pix, plain.Pix)
}
