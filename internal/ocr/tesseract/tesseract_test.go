package tesseract

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/otiai10/gosseract/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/thywilljoshua/reqextract/internal/ocr"
)

// ensureTesseractAvailable checks that the tesseract binary is reachable.
func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

func renderText(s string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 240, 80))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 50),
	}
	d.DrawString(s)
	return img
}

func TestEngineRecognize(t *testing.T) {
	ensureTesseractAvailable(t)

	e := New(Options{Languages: []string{"eng"}, DPI: 300})
	assert.Equal(t, "tesseract", e.Name())

	img := ocr.Preprocess(renderText("Hello PDF"), ocr.Filter{Scale: 3})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	text, err := e.Recognize(ctx, img)
	require.NoError(t, err)
	got := strings.ToLower(text)
	assert.Contains(t, got, "hello")
	assert.Contains(t, got, "pdf")
}

func TestEngineRecognize_CanceledContext(t *testing.T) {
	ensureTesseractAvailable(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{}).Recognize(ctx, renderText("late"))
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestEngineRecognize_PanicBecomesError(t *testing.T) {
	e := New(Options{})
	e.clientFactory = func() *gosseract.Client { panic("native client exploded") }

	text, err := e.Recognize(context.Background(), renderText("boom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "native client exploded")
	assert.Empty(t, text)
}
