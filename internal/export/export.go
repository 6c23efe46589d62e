// Package export writes requirement records as CSV and JSON.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/thywilljoshua/reqextract/internal/requirement"
)

// ErrWrite classifies every failure to write an export file.
var ErrWrite = errors.New("export: write failed")

var csvHeader = []string{"Requirement", "Description"}

// WriteError reports the destination that could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrWrite, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return target == ErrWrite }

// CSV writes records to path with a Requirement,Description header. The file
// is created or truncated; a partial file is left behind on failure.
//
// Rows end in "\r\n". Carriage returns inside a field do not survive a read
// back ("\r\n" becomes "\n"), so fields are expected to use "\n" line breaks,
// as the corpus built by extract.Merge does.
func CSV(records []requirement.Record, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteCSV(w, records) })
}

// JSON writes records to path as an indented array.
func JSON(records []requirement.Record, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteJSON(w, records) })
}

func WriteCSV(w io.Writer, records []requirement.Record) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.Requirement, r.Description}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteJSON(w io.Writer, records []requirement.Record) error {
	if records == nil {
		records = []requirement.Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := write(f); err != nil {
		f.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
