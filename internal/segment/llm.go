package segment

import (
	"context"
	"fmt"
	"strings"

	"github.com/thywilljoshua/reqextract/internal/extract"
	"github.com/thywilljoshua/reqextract/internal/llm"
	"github.com/thywilljoshua/reqextract/internal/requirement"
)

const (
	extractPrompt    = "Extract all requirements and their descriptions from the following text:\n\n"
	DefaultMaxTokens = 1000
)

// LLM delegates segmentation to a completion service and parses its answer
// with ParseCompletion.
type LLM struct {
	completer llm.Completer
	maxTokens int
}

func NewLLM(c llm.Completer, maxTokens int) *LLM {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &LLM{completer: c, maxTokens: maxTokens}
}

// Prompt returns the request sent for text.
func Prompt(text string) string {
	return extractPrompt + text
}

func (s *LLM) Segment(ctx context.Context, text string) ([]requirement.Record, error) {
	if strings.TrimSpace(text) == "" {
		return []requirement.Record{}, nil
	}
	out, err := s.completer.Complete(ctx, Prompt(text), s.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("llm segment: %w", err)
	}
	return ParseCompletion(out), nil
}

// ParseCompletion reads one "requirement: description" pair per line. The line
// is split on the first ": "; lines without it are dropped.
func ParseCompletion(s string) []requirement.Record {
	records := []requirement.Record{}
	for _, line := range strings.Split(extract.NormalizeNewlines(s), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		req, desc, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		records = append(records, requirement.Record{
			Requirement: strings.TrimSpace(req),
			Description: strings.TrimSpace(desc),
		})
	}
	return records
}
