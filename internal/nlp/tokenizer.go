package nlp

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// ErrModelUnavailable means the sentence-boundary model could not be loaded.
var ErrModelUnavailable = errors.New("nlp: sentence model unavailable")

var errClosed = errors.New("nlp: tokenizer closed")

// Tokenizer splits text into sentences with a Punkt model. It is built once by
// the caller and shared by reference; Close releases the model.
type Tokenizer struct {
	mu  sync.RWMutex
	tok *sentences.DefaultSentenceTokenizer
}

// NewTokenizer loads the Punkt training data at modelPath, or the bundled
// English model when modelPath is empty.
func NewTokenizer(modelPath string) (*Tokenizer, error) {
	var training *sentences.Storage
	if modelPath != "" {
		b, err := os.ReadFile(modelPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
		}
		training, err = sentences.LoadTraining(b)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrModelUnavailable, modelPath, err)
		}
	}
	tok, err := english.NewSentenceTokenizer(training)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return &Tokenizer{tok: tok}, nil
}

// Sentences returns the sentences of text in order. Surrounding whitespace is
// kept as the model reports it.
func (t *Tokenizer) Sentences(text string) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.tok == nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, errClosed)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	sents := t.tok.Tokenize(text)
	out := make([]string, 0, len(sents))
	for _, s := range sents {
		out = append(out, s.Text)
	}
	return out, nil
}

func (t *Tokenizer) Close() error {
	t.mu.Lock()
	t.tok = nil
	t.mu.Unlock()
	return nil
}
