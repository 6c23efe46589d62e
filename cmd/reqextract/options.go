package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/thywilljoshua/reqextract/internal/config"
	"github.com/thywilljoshua/reqextract/internal/llm"
	"github.com/thywilljoshua/reqextract/internal/nlp"
	"github.com/thywilljoshua/reqextract/internal/pipeline"
	"github.com/thywilljoshua/reqextract/internal/segment"
)

// options mirrors config.Config as flags. A flag only overrides the file when
// it was set explicitly.
type options struct {
	configPath string

	csv         string
	json        string
	segmenter   string
	keywords    []string
	modelPath   string
	metricsFile string
	logLevel    string
	logFormat   string

	llmProvider  string
	llmURL       string
	llmModel     string
	llmMaxTokens int
	llmTimeout   time.Duration
	llmRetries   int
}

func (o *options) bind(cmd *cobra.Command) {
	def := config.Default()
	f := cmd.Flags()
	f.StringVar(&o.configPath, "config", "", "YAML config file; flags override its values")
	f.StringVar(&o.csv, "csv", def.Output.CSV, "CSV output path (empty to skip)")
	f.StringVar(&o.json, "json", def.Output.JSON, "JSON output path (empty to skip)")
	f.StringVar(&o.segmenter, "segmenter", def.Segmenter, "segmentation backend: rules|llm")
	f.StringSliceVar(&o.keywords, "keywords", def.Rules.Keywords, "trigger keywords for the rules backend")
	f.StringVar(&o.modelPath, "sentence-model", "", "Punkt training JSON for sentence splitting (default: built-in English)")
	f.StringVar(&o.metricsFile, "metrics-file", "", "write run metrics in Prometheus textfile format")
	f.StringVar(&o.logLevel, "log-level", def.Log.Level, "log level: debug|info|warn|error")
	f.StringVar(&o.logFormat, "log-format", def.Log.Format, "log format: console|json")

	f.StringVar(&o.llmProvider, "llm-provider", def.LLM.Provider, "completion service: completion|openai|gemini")
	f.StringVar(&o.llmURL, "llm-url", "", "completion endpoint URL (base URL for openai and gemini)")
	f.StringVar(&o.llmModel, "llm-model", "", "model name (provider default when empty)")
	f.IntVar(&o.llmMaxTokens, "llm-max-tokens", def.LLM.MaxTokens, "generation budget for the llm backend")
	f.DurationVar(&o.llmTimeout, "llm-timeout", def.LLM.Timeout, "timeout for each completion call")
	f.IntVar(&o.llmRetries, "llm-retries", def.LLM.Retries, "retries for rate-limited or 5xx completion calls")
}

func (o *options) apply(cmd *cobra.Command, cfg *config.Config) {
	flagOverride(cmd, "csv", func() { cfg.Output.CSV = o.csv })
	flagOverride(cmd, "json", func() { cfg.Output.JSON = o.json })
	flagOverride(cmd, "segmenter", func() { cfg.Segmenter = o.segmenter })
	flagOverride(cmd, "keywords", func() { cfg.Rules.Keywords = o.keywords })
	flagOverride(cmd, "sentence-model", func() { cfg.Rules.ModelPath = o.modelPath })
	flagOverride(cmd, "metrics-file", func() { cfg.MetricsFile = o.metricsFile })
	flagOverride(cmd, "log-level", func() { cfg.Log.Level = o.logLevel })
	flagOverride(cmd, "log-format", func() { cfg.Log.Format = o.logFormat })
	flagOverride(cmd, "llm-provider", func() { cfg.LLM.Provider = o.llmProvider })
	flagOverride(cmd, "llm-url", func() { cfg.LLM.URL = o.llmURL })
	flagOverride(cmd, "llm-model", func() { cfg.LLM.Model = o.llmModel })
	flagOverride(cmd, "llm-max-tokens", func() { cfg.LLM.MaxTokens = o.llmMaxTokens })
	flagOverride(cmd, "llm-timeout", func() { cfg.LLM.Timeout = o.llmTimeout })
	flagOverride(cmd, "llm-retries", func() { cfg.LLM.Retries = o.llmRetries })
}

// load reads the config file and applies the shared flags. Callers validate
// after applying their own flags.
func (o *options) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	o.apply(cmd, &cfg)
	return cfg, nil
}

func newLogger(c config.Log) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	var zc zap.Config
	switch strings.ToLower(c.Format) {
	case "json":
		zc = zap.NewProductionConfig()
	case "console", "":
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// newSegmenter builds the configured backend. The returned closer releases
// the sentence model.
func newSegmenter(ctx context.Context, cfg config.Config, log *zap.Logger) (segment.Segmenter, func() error, error) {
	switch segment.Kind(cfg.Segmenter) {
	case segment.KindRules:
		tok, err := nlp.NewTokenizer(cfg.Rules.ModelPath)
		if err != nil {
			return nil, nil, err
		}
		return segment.NewRules(tok, cfg.Rules.Keywords), tok.Close, nil
	case segment.KindLLM:
		c, err := llm.New(ctx, llm.Options{
			Provider: llm.Provider(cfg.LLM.Provider),
			URL:      cfg.LLM.URL,
			APIKey:   cfg.APIKey(),
			Model:    cfg.LLM.Model,
			Timeout:  cfg.LLM.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		c = llm.WithRetry(c, cfg.LLM.Retries, log)
		return segment.NewLLM(c, cfg.LLM.MaxTokens), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown segmenter %q", cfg.Segmenter)
	}
}

func printSummary(cmd *cobra.Command, res pipeline.Result) {
	b, _ := json.MarshalIndent(res, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

func writeMetrics(m *pipeline.Metrics, path string, log *zap.Logger) {
	if path == "" {
		return
	}
	if err := m.WriteFile(path); err != nil {
		log.Warn("write metrics file", zap.String("path", path), zap.Error(err))
	}
}
