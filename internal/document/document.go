package document

import (
	"errors"
	"fmt"
	"os"
	"sync"

	lpdf "github.com/ledongthuc/pdf"
	"go.uber.org/zap"
	rpdf "rsc.io/pdf"
)

var (
	// ErrOpen is returned when the source cannot be opened or parsed as a PDF.
	ErrOpen = errors.New("document: cannot open")
	// ErrPage is returned when a single page's text layer cannot be read.
	ErrPage = errors.New("document: cannot read page")
)

type TextMode string

const (
	// TextPlain extracts the text layer in content-stream order.
	TextPlain TextMode = "plain"
	// TextLayout rebuilds lines from positioned glyph runs.
	TextLayout TextMode = "layout"
)

type Options struct {
	TextMode TextMode
	Log      *zap.Logger
}

// Document is a read-only PDF handle. Both the text layer and the image
// resources are read through the same underlying file.
type Document struct {
	path string
	f    *os.File
	size int64
	mode TextMode
	log  *zap.Logger

	plain  *lpdf.Reader
	layout *rpdf.Reader
	pages  int

	imgOnce sync.Once
	images  [][]Image
	imgErr  error

	closeOnce sync.Once
	closeErr  error
}

// Open parses the PDF at path. Any failure is reported as ErrOpen and leaves
// no handle behind.
func Open(path string, opts Options) (*Document, error) {
	if opts.TextMode == "" {
		opts.TextMode = TextPlain
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.TextMode != TextPlain && opts.TextMode != TextLayout {
		return nil, fmt.Errorf("%w: unknown text mode %q", ErrOpen, opts.TextMode)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}

	d := &Document{path: path, f: f, size: info.Size(), mode: opts.TextMode, log: opts.Log}
	if err := d.init(); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, path, err)
	}
	return d, nil
}

func (d *Document) init() (err error) {
	// Both parsers panic on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	switch d.mode {
	case TextLayout:
		r, err := rpdf.NewReader(d.f, d.size)
		if err != nil {
			return err
		}
		d.layout = r
		d.pages = r.NumPage()
	default:
		r, err := lpdf.NewReader(d.f, d.size)
		if err != nil {
			return err
		}
		d.plain = r
		d.pages = r.NumPage()
	}
	return nil
}

// Path returns the file the document was opened from.
func (d *Document) Path() string { return d.path }

// NumPages returns the page count.
func (d *Document) NumPages() int { return d.pages }

// Close releases the file handle. Calling it more than once is safe.
func (d *Document) Close() error {
	d.closeOnce.Do(func() {
		d.closeErr = d.f.Close()
	})
	return d.closeErr
}
