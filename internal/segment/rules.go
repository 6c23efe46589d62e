package segment

import (
	"context"
	"fmt"
	"strings"

	"github.com/thywilljoshua/reqextract/internal/requirement"
)

// SentenceSplitter is the sentence-boundary collaborator. nlp.Tokenizer
// satisfies it.
type SentenceSplitter interface {
	Sentences(text string) ([]string, error)
}

// Rules sweeps the sentence stream once. A sentence containing any keyword
// (case-insensitive) opens a new record; the sentences after it, up to the
// next trigger, form its description. Sentences before the first trigger are
// discarded.
type Rules struct {
	splitter SentenceSplitter
	keywords []string
}

// NewRules builds a rule-based segmenter. An empty keyword list falls back to
// DefaultKeywords.
func NewRules(splitter SentenceSplitter, keywords []string) *Rules {
	kw := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			kw = append(kw, k)
		}
	}
	if len(kw) == 0 {
		kw = append(kw, DefaultKeywords...)
	}
	return &Rules{splitter: splitter, keywords: kw}
}

// Keywords returns the normalized trigger keywords.
func (r *Rules) Keywords() []string {
	return append([]string(nil), r.keywords...)
}

func (r *Rules) Segment(ctx context.Context, text string) ([]requirement.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sentences, err := r.splitter.Sentences(text)
	if err != nil {
		return nil, fmt.Errorf("split sentences: %w", err)
	}
	return r.Sweep(sentences), nil
}

// Sweep applies the trigger state machine to an already split sentence
// stream. It never returns nil.
func (r *Rules) Sweep(sentences []string) []requirement.Record {
	records := []requirement.Record{}
	var (
		current requirement.Record
		active  bool
		desc    []string
	)
	flush := func() {
		current.Description = strings.Join(desc, " ")
		records = append(records, current)
	}

	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if r.triggers(s) {
			if active {
				flush()
			}
			current = requirement.Record{Requirement: s}
			desc = desc[:0]
			active = true
			continue
		}
		if active {
			desc = append(desc, s)
		}
	}
	if active {
		flush()
	}
	return records
}

func (r *Rules) triggers(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, k := range r.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
