package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/reqextract/internal/config"
	"github.com/thywilljoshua/reqextract/internal/pipeline"
)

func segmentCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "segment <text-file>",
		Short: "Segment an already extracted text corpus into requirements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runSegment(cmd, args[0], cfg)
		},
	}
	opts.bind(cmd)
	return cmd
}

func runSegment(cmd *cobra.Command, path string, cfg config.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read corpus: %w", err)
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	seg, closeSeg, err := newSegmenter(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer closeSeg()

	metrics := pipeline.NewMetrics()
	res, err := pipeline.RunText(cmd.Context(), path, string(data), pipeline.Config{
		CSV:       cfg.Output.CSV,
		JSON:      cfg.Output.JSON,
		Segmenter: seg,
		Log:       log,
		Metrics:   metrics,
	})
	writeMetrics(metrics, cfg.MetricsFile, log)
	if err != nil {
		return err
	}
	printSummary(cmd, res)
	return nil
}
