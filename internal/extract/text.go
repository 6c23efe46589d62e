package extract

import (
	"fmt"
	"strings"
)

// TextLayer is the part of a document the page text source reads.
type TextLayer interface {
	NumPages() int
	PageText(i int) (string, error)
}

// PageTexts returns the native text of every page in index order. The first
// failing page aborts extraction.
func PageTexts(l TextLayer) ([]string, error) {
	n := l.NumPages()
	pages := make([]string, n)
	for i := 0; i < n; i++ {
		t, err := l.PageText(i)
		if err != nil {
			return nil, fmt.Errorf("page text: %w", err)
		}
		pages[i] = t
	}
	return pages, nil
}

// PageText concatenates the native text of all pages with no separator.
func PageText(l TextLayer) (string, error) {
	pages, err := PageTexts(l)
	if err != nil {
		return "", err
	}
	return strings.Join(pages, ""), nil
}
