package segment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/reqextract/internal/llm"
	"github.com/thywilljoshua/reqextract/internal/nlp"
	"github.com/thywilljoshua/reqextract/internal/requirement"
)

type listSplitter []string

func (l listSplitter) Sentences(string) ([]string, error) { return l, nil }

type failingSplitter struct{ err error }

func (f failingSplitter) Sentences(string) ([]string, error) { return nil, f.err }

func TestRules_LeadingSentenceDiscarded(t *testing.T) {
	r := NewRules(nil, DefaultKeywords)
	got := r.Sweep([]string{
		"Intro text with no trigger.",
		"The system requirement is uptime.",
		"It must exceed 99.9%.",
	})
	assert.Equal(t, []requirement.Record{
		{Requirement: "The system requirement is uptime.", Description: "It must exceed 99.9%."},
	}, got)
}

func TestRules_EmitsOnEachTrigger(t *testing.T) {
	r := NewRules(nil, DefaultKeywords)
	got := r.Sweep([]string{
		"Requirement 1: the pump shall start.",
		"It runs at 5 bar.",
		"  It logs faults.  ",
		"The operator shall be alerted.",
	})
	assert.Equal(t, []requirement.Record{
		{Requirement: "Requirement 1: the pump shall start.", Description: "It runs at 5 bar. It logs faults."},
		{Requirement: "The operator shall be alerted.", Description: ""},
	}, got)
}

func TestRules_TrailingRequirementFlushed(t *testing.T) {
	r := NewRules(nil, BasicKeywords)
	got := r.Sweep([]string{"Nothing here.", "Final REQUIREMENT stands."})
	require.Len(t, got, 1)
	assert.Equal(t, "Final REQUIREMENT stands.", got[0].Requirement)
	assert.Empty(t, got[0].Description)
}

func TestRules_KeywordSets(t *testing.T) {
	sentences := []string{"The valve shall close.", "Within 2 s."}

	assert.Empty(t, NewRules(nil, BasicKeywords).Sweep(sentences))
	assert.Len(t, NewRules(nil, DefaultKeywords).Sweep(sentences), 1)
}

func TestRules_NoTriggers(t *testing.T) {
	got := NewRules(nil, nil).Sweep([]string{"a.", "b."})
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, NewRules(nil, nil).Sweep(nil))
}

func TestRules_KeywordNormalization(t *testing.T) {
	r := NewRules(nil, []string{" MUST ", ""})
	assert.Equal(t, []string{"must"}, r.Keywords())
	assert.Equal(t, DefaultKeywords, NewRules(nil, []string{" "}).Keywords())
}

func TestRules_Segment(t *testing.T) {
	split := listSplitter{"Requirement A.", "Detail."}
	got, err := NewRules(split, nil).Segment(context.Background(), "ignored")
	require.NoError(t, err)
	assert.Equal(t, []requirement.Record{{Requirement: "Requirement A.", Description: "Detail."}}, got)
}

func TestRules_SplitterError(t *testing.T) {
	_, err := NewRules(failingSplitter{err: nlp.ErrModelUnavailable}, nil).Segment(context.Background(), "x")
	assert.ErrorIs(t, err, nlp.ErrModelUnavailable)
}

func TestRules_WithTokenizer(t *testing.T) {
	tok, err := nlp.NewTokenizer("")
	require.NoError(t, err)
	defer tok.Close()

	text := "Welcome to the manual. The first requirement is availability. It must exceed 99.9 percent. " +
		"The system shall log every request. Logs are kept for a year."
	r := NewRules(tok, DefaultKeywords)

	first, err := r.Segment(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, []requirement.Record{
		{Requirement: "The first requirement is availability.", Description: "It must exceed 99.9 percent."},
		{Requirement: "The system shall log every request.", Description: "Logs are kept for a year."},
	}, first)

	second, err := r.Segment(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseCompletion(t *testing.T) {
	got := ParseCompletion("Req1: desc one\nReq2: desc two\nmalformed line\n")
	assert.Equal(t, []requirement.Record{
		{Requirement: "Req1", Description: "desc one"},
		{Requirement: "Req2", Description: "desc two"},
	}, got)
}

func TestParseCompletion_SplitsOnFirstSeparator(t *testing.T) {
	got := ParseCompletion("  R1 : a: b  \r\n\n   \nno-space:here")
	assert.Equal(t, []requirement.Record{{Requirement: "R1", Description: "a: b"}}, got)
	assert.Empty(t, ParseCompletion(""))
}

type fakeCompleter struct {
	prompt    string
	maxTokens int
	calls     int
	out       string
	err       error
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string, maxTokens int) (string, error) {
	f.calls++
	f.prompt, f.maxTokens = prompt, maxTokens
	return f.out, f.err
}

func TestLLM_Segment(t *testing.T) {
	c := &fakeCompleter{out: "Uptime: 99.9% monthly\n"}
	got, err := NewLLM(c, 0).Segment(context.Background(), "The uptime requirement.")
	require.NoError(t, err)
	assert.Equal(t, []requirement.Record{{Requirement: "Uptime", Description: "99.9% monthly"}}, got)
	assert.Equal(t, "Extract all requirements and their descriptions from the following text:\n\nThe uptime requirement.", c.prompt)
	assert.Equal(t, DefaultMaxTokens, c.maxTokens)
}

func TestLLM_BlankTextSkipsCall(t *testing.T) {
	c := &fakeCompleter{}
	got, err := NewLLM(c, 50).Segment(context.Background(), " \n ")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, c.calls)
}

func TestLLM_UpstreamError(t *testing.T) {
	c := &fakeCompleter{err: &llm.UpstreamError{Provider: llm.ProviderCompletion, StatusCode: 502, Err: errors.New("bad gateway")}}
	_, err := NewLLM(c, 50).Segment(context.Background(), "text")
	assert.ErrorIs(t, err, llm.ErrUpstream)
}

func TestParseCompletion_CarriageReturns(t *testing.T) {
	got := ParseCompletion("Req1: one\rReq2: two\r\n")
	assert.Equal(t, []requirement.Record{
		{Requirement: "Req1", Description: "one"},
		{Requirement: "Req2", Description: "two"},
	}, got)
}
