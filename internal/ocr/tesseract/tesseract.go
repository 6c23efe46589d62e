package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

type Options struct {
	Languages []string
	// PSM is the page segmentation mode; 0 keeps Tesseract's default.
	PSM int
	// DPI is passed as user_defined_dpi when positive.
	DPI int
}

// Engine runs Tesseract through gosseract. A client is created per image
// because gosseract clients are not safe for concurrent use.
type Engine struct {
	opts          Options
	clientFactory func() *gosseract.Client
}

func New(opts Options) *Engine {
	return &Engine{opts: opts, clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

type result struct {
	text string
	err  error
}

// Recognize encodes img as PNG and hands it to Tesseract. The call returns
// when ctx is done even though the native recognizer cannot be interrupted;
// the abandoned client is closed once it finishes.
func (e *Engine) Recognize(ctx context.Context, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}

	done := make(chan result, 1)
	go func() {
		done <- e.recognize(buf.Bytes())
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("tesseract: %w", ctx.Err())
	}
}

// recognize runs on its own goroutine, so a panic in the native client is
// turned into an error here rather than left to crash the process.
func (e *Engine) recognize(data []byte) (r result) {
	defer func() {
		if p := recover(); p != nil {
			r = result{err: fmt.Errorf("tesseract panic: %v", p)}
		}
	}()
	c := e.clientFactory()
	defer c.Close()
	text, err := e.recognizeWithClient(c, data)
	return result{text: text, err: err}
}

func (e *Engine) recognizeWithClient(c *gosseract.Client, data []byte) (string, error) {
	if len(e.opts.Languages) > 0 {
		if err := c.SetLanguage(e.opts.Languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	if e.opts.PSM > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(e.opts.PSM)); err != nil {
			return "", fmt.Errorf("set psm: %w", err)
		}
	}
	if e.opts.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(e.opts.DPI)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}
	if err := c.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}
