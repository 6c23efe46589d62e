package extract

import (
	"fmt"
	"strings"
)

type MergeMode string

const (
	// MergeSource places all native text before all OCR text.
	MergeSource MergeMode = "source"
	// MergePage places each page's OCR text right after its native text.
	MergePage MergeMode = "page"
)

// Assemble joins the two sources with native text fully first. A requirement
// that straddles a page's text and its images is therefore split apart.
func Assemble(pageText, ocrText string) string {
	return pageText + ocrText
}

// Interleave joins native and OCR text page by page. Both slices are indexed by
// page; a shorter slice contributes "" for the missing pages.
func Interleave(pageTexts, ocrTexts []string) string {
	n := max(len(pageTexts), len(ocrTexts))
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if i < len(pageTexts) {
			sb.WriteString(pageTexts[i])
		}
		if i < len(ocrTexts) {
			sb.WriteString(ocrTexts[i])
		}
	}
	return sb.String()
}

// Merge combines per-page native and OCR text according to mode. Line
// endings in the result are normalized to "\n".
func Merge(mode MergeMode, pageTexts, ocrTexts []string) (string, error) {
	switch mode {
	case "", MergeSource:
		return NormalizeNewlines(Assemble(strings.Join(pageTexts, ""), strings.Join(ocrTexts, ""))), nil
	case MergePage:
		return NormalizeNewlines(Interleave(pageTexts, ocrTexts)), nil
	default:
		return "", fmt.Errorf("unknown merge mode %q", mode)
	}
}

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeNewlines rewrites "\r\n" and bare "\r" as "\n", so no record built
// from the corpus carries a carriage return.
func NormalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	return newlines.Replace(s)
}
