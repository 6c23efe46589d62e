// Package pipeline runs one extraction: page text, image OCR, merge,
// segmentation and export.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thywilljoshua/reqextract/internal/document"
	"github.com/thywilljoshua/reqextract/internal/export"
	"github.com/thywilljoshua/reqextract/internal/extract"
	"github.com/thywilljoshua/reqextract/internal/ocr"
	"github.com/thywilljoshua/reqextract/internal/requirement"
	"github.com/thywilljoshua/reqextract/internal/segment"
)

// Document is what a run needs from an opened PDF.
type Document interface {
	extract.TextLayer
	extract.ImageLayer
	Close() error
}

// Opener opens the source document. The default is document.Open.
type Opener func(path string, opts document.Options) (Document, error)

func openDocument(path string, opts document.Options) (Document, error) {
	d, err := document.Open(path, opts)
	if err != nil {
		return nil, err
	}
	return d, nil
}

type Config struct {
	// CSV and JSON are the export paths; an empty path skips that format.
	CSV  string
	JSON string

	TextMode document.TextMode
	Merge    extract.MergeMode

	// OCR enables the image stage. Engine must be set when it is on.
	OCR    bool
	Engine ocr.Engine
	Images extract.ImageOptions

	Segmenter segment.Segmenter

	Open    Opener
	Log     *zap.Logger
	Metrics *Metrics
}

type Result struct {
	RunID       string               `json:"run_id"`
	Source      string               `json:"source"`
	Pages       int                  `json:"pages"`
	Images      int                  `json:"images"`
	OCRFailures int                  `json:"ocr_failures"`
	Count       int                  `json:"records"`
	CSV         string               `json:"csv,omitempty"`
	JSON        string               `json:"json,omitempty"`
	Records     []requirement.Record `json:"-"`
}

// Run extracts requirement records from the PDF at pdfPath. The document is
// closed exactly once whatever stage fails. Export errors leave the records on
// the returned Result.
func Run(ctx context.Context, pdfPath string, cfg Config) (Result, error) {
	cfg = withDefaults(cfg)
	if cfg.Segmenter == nil {
		return Result{}, errors.New("pipeline: no segmenter configured")
	}
	if cfg.OCR && cfg.Engine == nil {
		return Result{}, errors.New("pipeline: OCR enabled without an engine")
	}

	res := Result{RunID: uuid.NewString(), Source: pdfPath}
	log := cfg.Log.With(zap.String("run_id", res.RunID), zap.String("source", pdfPath))
	log.Info("run started", zap.String("text_mode", string(cfg.TextMode)), zap.Bool("ocr", cfg.OCR))

	text, err := corpus(ctx, pdfPath, cfg, log, &res)
	if err != nil {
		return res, err
	}
	return res, finish(ctx, text, cfg, log, &res)
}

// RunText segments and exports an already extracted corpus.
func RunText(ctx context.Context, source, text string, cfg Config) (Result, error) {
	cfg = withDefaults(cfg)
	if cfg.Segmenter == nil {
		return Result{}, errors.New("pipeline: no segmenter configured")
	}
	res := Result{RunID: uuid.NewString(), Source: source}
	log := cfg.Log.With(zap.String("run_id", res.RunID), zap.String("source", source))
	return res, finish(ctx, extract.NormalizeNewlines(text), cfg, log, &res)
}

func withDefaults(cfg Config) Config {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics()
	}
	if cfg.Open == nil {
		cfg.Open = openDocument
	}
	if cfg.Images.Log == nil {
		cfg.Images.Log = cfg.Log
	}
	return cfg
}

func corpus(ctx context.Context, pdfPath string, cfg Config, log *zap.Logger, res *Result) (text string, err error) {
	doc, err := cfg.Open(pdfPath, document.Options{TextMode: cfg.TextMode, Log: log})
	if err != nil {
		return "", fmt.Errorf("open %s: %w", pdfPath, err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			log.Warn("close document", zap.Error(cerr))
			if err == nil {
				err = fmt.Errorf("close %s: %w", pdfPath, cerr)
			}
		}
	}()

	res.Pages = doc.NumPages()
	add(cfg.Metrics.Pages, res.Pages)

	start := time.Now()
	pageTexts, err := extract.PageTexts(doc)
	cfg.Metrics.observe("text", start)
	if err != nil {
		return "", err
	}

	var ocrTexts []string
	if cfg.OCR {
		start = time.Now()
		ir, err := extract.ImageText(ctx, doc, cfg.Engine, cfg.Images)
		cfg.Metrics.observe("ocr", start)
		if err != nil {
			return "", fmt.Errorf("image ocr: %w", err)
		}
		ocrTexts = ir.Pages
		res.Images, res.OCRFailures = ir.Images, ir.Failures
		add(cfg.Metrics.Images, ir.Images)
		add(cfg.Metrics.OCRFailures, ir.Failures)
		log.Info("image ocr finished", zap.Int("images", ir.Images), zap.Int("failures", ir.Failures))
	}

	return extract.Merge(cfg.Merge, pageTexts, ocrTexts)
}

func finish(ctx context.Context, text string, cfg Config, log *zap.Logger, res *Result) error {
	start := time.Now()
	records, err := cfg.Segmenter.Segment(ctx, text)
	cfg.Metrics.observe("segment", start)
	if err != nil {
		return fmt.Errorf("segment: %w", err)
	}
	res.Records = records
	res.Count = len(records)
	add(cfg.Metrics.Records, len(records))
	log.Info("segmented", zap.Int("chars", len(text)), zap.Int("records", len(records)))

	start = time.Now()
	err = Export(records, cfg.CSV, cfg.JSON)
	cfg.Metrics.observe("export", start)
	if cfg.CSV != "" && !failedFor(err, cfg.CSV) {
		res.CSV = cfg.CSV
	}
	if cfg.JSON != "" && !failedFor(err, cfg.JSON) {
		res.JSON = cfg.JSON
	}
	if err != nil {
		return err
	}
	log.Info("run finished", zap.String("csv", res.CSV), zap.String("json", res.JSON))
	return nil
}

// Export writes both formats. A CSV failure does not prevent the JSON write;
// the errors are joined.
func Export(records []requirement.Record, csvPath, jsonPath string) error {
	var errs []error
	if csvPath != "" {
		if err := export.CSV(records, csvPath); err != nil {
			errs = append(errs, err)
		}
	}
	if jsonPath != "" {
		if err := export.JSON(records, jsonPath); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func failedFor(err error, path string) bool {
	if err == nil {
		return false
	}
	var errs []error
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		errs = j.Unwrap()
	} else {
		errs = []error{err}
	}
	for _, e := range errs {
		var we *export.WriteError
		if errors.As(e, &we) && we.Path == path {
			return true
		}
	}
	return false
}
