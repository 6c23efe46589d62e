package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/thywilljoshua/reqextract/internal/document"
	"github.com/thywilljoshua/reqextract/internal/ocr"
)

// ImageLayer is the part of a document the image OCR source reads.
type ImageLayer interface {
	NumPages() int
	PageImages(i int) ([]document.Image, error)
}

type ImageOptions struct {
	// Workers bounds the number of pages processed at once; <= 0 means 1.
	Workers int
	// Timeout bounds each recognize call; <= 0 means no timeout.
	Timeout    time.Duration
	Preprocess bool
	Filter     ocr.Filter
	Log        *zap.Logger
}

// ImageResult holds per-page OCR text in page order plus counters.
type ImageResult struct {
	Pages    []string
	Images   int
	Failures int
}

// Text concatenates the per-page OCR text with no separator.
func (r ImageResult) Text() string {
	return strings.Join(r.Pages, "")
}

type pageOCR struct {
	text     string
	images   int
	failures int
}

// ImageText runs OCR over every embedded image. Pages are spread across a
// bounded worker pool; each worker fills only its own page slot, so the output
// keeps page order whatever the completion order. A failing image or page
// contributes "" and never stops the rest of the document.
func ImageText(ctx context.Context, l ImageLayer, engine ocr.Engine, opts ImageOptions) (ImageResult, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	n := l.NumPages()
	slots := make([]pageOCR, n)

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			slots[i] = ocrPage(ctx, l, engine, opts, log.With(zap.Int("page", i)), i)
			return nil
		})
	}
	_ = g.Wait()

	res := ImageResult{Pages: make([]string, n)}
	for i, s := range slots {
		res.Pages[i] = s.text
		res.Images += s.images
		res.Failures += s.failures
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

func ocrPage(ctx context.Context, l ImageLayer, engine ocr.Engine, opts ImageOptions, log *zap.Logger, page int) pageOCR {
	imgs, err := l.PageImages(page)
	if err != nil {
		log.Warn("enumerate page images failed", zap.Error(err))
		return pageOCR{}
	}

	var out pageOCR
	var sb strings.Builder
	for _, img := range imgs {
		out.images++
		text, err := ocrImage(ctx, engine, opts, img)
		if err != nil {
			out.failures++
			log.Warn("ocr failed, substituting empty text",
				zap.Int("image", img.Index), zap.String("name", img.Name), zap.String("format", img.Format), zap.Error(err))
			continue
		}
		sb.WriteString(text)
	}
	out.text = sb.String()
	log.Debug("page ocr done", zap.Int("images", out.images), zap.Int("failures", out.failures))
	return out
}

func ocrImage(ctx context.Context, engine ocr.Engine, opts ImageOptions, img document.Image) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ocr panic: %v", r)
		}
	}()

	decoded, err := ocr.Decode(img.Data, img.Format)
	if err != nil {
		return "", err
	}
	if opts.Preprocess {
		decoded = ocr.Preprocess(decoded, opts.Filter)
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	return engine.Recognize(ctx, decoded)
}
