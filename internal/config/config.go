package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	TextMode    string `yaml:"text_mode"`
	Merge       string `yaml:"merge"`
	Segmenter   string `yaml:"segmenter"`
	MetricsFile string `yaml:"metrics_file"`

	OCR    OCR    `yaml:"ocr"`
	Rules  Rules  `yaml:"rules"`
	LLM    LLM    `yaml:"llm"`
	Output Output `yaml:"output"`
	Log    Log    `yaml:"log"`
}

type OCR struct {
	Enabled    bool          `yaml:"enabled"`
	Preprocess bool          `yaml:"preprocess"`
	Contrast   float64       `yaml:"contrast"`
	Median     bool          `yaml:"median"`
	Scale      float64       `yaml:"scale"`
	Workers    int           `yaml:"workers"`
	Timeout    time.Duration `yaml:"timeout"`
	Languages  []string      `yaml:"languages"`
	PSM        int           `yaml:"psm"`
	DPI        int           `yaml:"dpi"`
}

type Rules struct {
	Keywords []string `yaml:"keywords"`
	// ModelPath points at a Punkt training file; empty uses the built-in
	// English model.
	ModelPath string `yaml:"model_path"`
}

type LLM struct {
	Provider  string        `yaml:"provider"`
	URL       string        `yaml:"url"`
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
	Retries   int           `yaml:"retries"`
}

type Output struct {
	CSV  string `yaml:"csv"`
	JSON string `yaml:"json"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		TextMode:  "plain",
		Merge:     "source",
		Segmenter: "rules",
		OCR: OCR{
			Enabled:    true,
			Preprocess: true,
			Contrast:   2,
			Median:     true,
			Scale:      1,
			Workers:    4,
			Timeout:    60 * time.Second,
			Languages:  []string{"eng"},
			PSM:        3,
		},
		Rules: Rules{Keywords: []string{"requirement", "shall"}},
		LLM: LLM{
			Provider:  "completion",
			MaxTokens: 1000,
			Timeout:   2 * time.Minute,
		},
		Output: Output{CSV: "requirements.csv", JSON: "requirements.json"},
		Log:    Log{Level: "info", Format: "console"},
	}
}

// Load reads a YAML file over the defaults. Keys absent from the file keep
// their default value; an empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}
	check(oneOf(c.TextMode, "plain", "layout"), "text_mode %q must be plain or layout", c.TextMode)
	check(oneOf(c.Merge, "source", "page"), "merge %q must be source or page", c.Merge)
	check(oneOf(c.Segmenter, "rules", "llm"), "segmenter %q must be rules or llm", c.Segmenter)
	check(c.OCR.Workers > 0, "ocr.workers must be positive")
	check(c.OCR.Timeout >= 0, "ocr.timeout must not be negative")
	check(c.OCR.Scale >= 1, "ocr.scale must be at least 1")
	check(c.OCR.Contrast >= 0, "ocr.contrast must not be negative")
	check(c.LLM.Retries >= 0, "llm.retries must not be negative")
	check(c.LLM.Timeout >= 0, "llm.timeout must not be negative")
	if c.Segmenter == "llm" {
		check(oneOf(c.LLM.Provider, "completion", "openai", "gemini"), "llm.provider %q must be completion, openai or gemini", c.LLM.Provider)
		check(c.LLM.Provider != "completion" || c.LLM.URL != "", "llm.url is required for the completion provider")
		check(c.LLM.MaxTokens > 0, "llm.max_tokens must be positive")
	}
	check(c.Output.CSV != "" || c.Output.JSON != "", "at least one of output.csv and output.json is required")
	return errors.Join(errs...)
}

// APIKey returns the completion credential from the environment.
// REQEXTRACT_LLM_API_KEY wins over the provider's own variable.
func (c Config) APIKey() string {
	if v := os.Getenv("REQEXTRACT_LLM_API_KEY"); v != "" {
		return v
	}
	switch c.LLM.Provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	}
	return ""
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
