package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thywilljoshua/reqextract/internal/config"
	"github.com/thywilljoshua/reqextract/internal/document"
	"github.com/thywilljoshua/reqextract/internal/extract"
	"github.com/thywilljoshua/reqextract/internal/ocr"
	"github.com/thywilljoshua/reqextract/internal/ocr/tesseract"
	"github.com/thywilljoshua/reqextract/internal/pipeline"
)

func extractCmd() *cobra.Command {
	var opts options
	var textMode string
	var merge string
	var useOCR bool
	var preprocess bool
	var ocrWorkers int
	var ocrTimeout time.Duration
	var ocrLang []string

	cmd := &cobra.Command{
		Use:   "extract <pdf>",
		Short: "Extract requirements from a PDF into CSV and JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			flagOverride(cmd, "text-mode", func() { cfg.TextMode = textMode })
			flagOverride(cmd, "merge", func() { cfg.Merge = merge })
			flagOverride(cmd, "ocr", func() { cfg.OCR.Enabled = useOCR })
			flagOverride(cmd, "preprocess", func() { cfg.OCR.Preprocess = preprocess })
			flagOverride(cmd, "ocr-workers", func() { cfg.OCR.Workers = ocrWorkers })
			flagOverride(cmd, "ocr-timeout", func() { cfg.OCR.Timeout = ocrTimeout })
			flagOverride(cmd, "ocr-lang", func() { cfg.OCR.Languages = ocrLang })
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runExtract(cmd, args[0], cfg)
		},
	}
	opts.bind(cmd)

	def := config.Default()
	cmd.Flags().StringVar(&textMode, "text-mode", def.TextMode, "native text extraction: plain|layout")
	cmd.Flags().StringVar(&merge, "merge", def.Merge, "corpus order: source (all text, then all OCR) | page (per page)")
	cmd.Flags().BoolVar(&useOCR, "ocr", def.OCR.Enabled, "OCR embedded images")
	cmd.Flags().BoolVar(&preprocess, "preprocess", def.OCR.Preprocess, "grayscale, contrast and median filter images before OCR")
	cmd.Flags().IntVar(&ocrWorkers, "ocr-workers", def.OCR.Workers, "pages OCR'd concurrently")
	cmd.Flags().DurationVar(&ocrTimeout, "ocr-timeout", def.OCR.Timeout, "timeout for each image recognition")
	cmd.Flags().StringSliceVar(&ocrLang, "ocr-lang", def.OCR.Languages, "Tesseract languages")
	return cmd
}

func flagOverride(cmd *cobra.Command, name string, apply func()) {
	if cmd.Flags().Changed(name) {
		apply()
	}
}

func runExtract(cmd *cobra.Command, pdfPath string, cfg config.Config) error {
	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()
	seg, closeSeg, err := newSegmenter(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSeg()

	pc := pipeline.Config{
		CSV:       cfg.Output.CSV,
		JSON:      cfg.Output.JSON,
		TextMode:  document.TextMode(cfg.TextMode),
		Merge:     extract.MergeMode(cfg.Merge),
		OCR:       cfg.OCR.Enabled,
		Segmenter: seg,
		Log:       log,
		Metrics:   pipeline.NewMetrics(),
		Images: extract.ImageOptions{
			Workers:    cfg.OCR.Workers,
			Timeout:    cfg.OCR.Timeout,
			Preprocess: cfg.OCR.Preprocess,
			Filter: ocr.Filter{
				Scale:    cfg.OCR.Scale,
				Contrast: cfg.OCR.Contrast,
				Median:   cfg.OCR.Median,
			},
		},
	}
	if cfg.OCR.Enabled {
		pc.Engine = tesseract.New(tesseract.Options{
			Languages: cfg.OCR.Languages,
			PSM:       cfg.OCR.PSM,
			DPI:       cfg.OCR.DPI,
		})
	}

	res, err := pipeline.Run(ctx, pdfPath, pc)
	writeMetrics(pc.Metrics, cfg.MetricsFile, log)
	if err != nil {
		log.Error("extraction failed", zap.String("source", pdfPath), zap.Error(err))
		return err
	}
	printSummary(cmd, res)
	return nil
}
