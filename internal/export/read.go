package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/thywilljoshua/reqextract/internal/requirement"
)

// ReadCSV parses a file written by CSV.
func ReadCSV(path string) ([]requirement.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeCSV(f)
}

func DecodeCSV(r io.Reader) ([]requirement.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0][0] != csvHeader[0] || rows[0][1] != csvHeader[1] {
		return nil, fmt.Errorf("missing %s,%s header", csvHeader[0], csvHeader[1])
	}
	records := make([]requirement.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, requirement.Record{Requirement: row[0], Description: row[1]})
	}
	return records, nil
}

// ReadJSON parses a file written by JSON.
func ReadJSON(path string) ([]requirement.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []requirement.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []requirement.Record{}
	}
	return records, nil
}
