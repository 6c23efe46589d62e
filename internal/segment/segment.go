// Package segment turns combined document text into requirement records.
package segment

import (
	"context"

	"github.com/thywilljoshua/reqextract/internal/requirement"
)

// Segmenter is a pluggable backend that partitions text into records.
type Segmenter interface {
	Segment(ctx context.Context, text string) ([]requirement.Record, error)
}

// Kind names a segmenter backend in configuration.
type Kind string

const (
	KindRules Kind = "rules"
	KindLLM   Kind = "llm"
)

var (
	// DefaultKeywords is the extended trigger set.
	DefaultKeywords = []string{"requirement", "shall"}
	// BasicKeywords triggers on "requirement" only.
	BasicKeywords = []string{"requirement"}
)
