package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/reqextract/internal/extract"
	"github.com/thywilljoshua/reqextract/internal/requirement"
)

var tricky = []requirement.Record{
	{Requirement: "The system requirement is uptime.", Description: "It must exceed 99.9%."},
	{Requirement: `Quote "this", please`, Description: "line one\nline two"},
	{Requirement: "Température ≥ 20 °C <ok> & done", Description: ""},
	{Requirement: "", Description: "  padded, with comma  "},
}

func TestCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, CSV(tricky, path))

	got, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, tricky, got)
}

func TestJSON_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, JSON(tricky, path))

	got, err := ReadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, tricky, got)
}

func TestWriteCSV_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []requirement.Record{{Requirement: "a,b", Description: "c"}}))
	assert.Equal(t, "Requirement,Description\r\n\"a,b\",c\r\n", buf.String())
}

func TestWriteJSON_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []requirement.Record{{Requirement: "<r>", Description: "d"}}))
	assert.Equal(t, "[\n    {\n        \"requirement\": \"<r>\",\n        \"description\": \"d\"\n    }\n]\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestEmptyExports(t *testing.T) {
	dir := t.TempDir()
	csvPath, jsonPath := filepath.Join(dir, "e.csv"), filepath.Join(dir, "e.json")
	require.NoError(t, CSV(nil, csvPath))
	require.NoError(t, JSON(nil, jsonPath))

	gotCSV, err := ReadCSV(csvPath)
	require.NoError(t, err)
	assert.Empty(t, gotCSV)

	gotJSON, err := ReadJSON(jsonPath)
	require.NoError(t, err)
	assert.NotNil(t, gotJSON)
	assert.Empty(t, gotJSON)
}

func TestWriteError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no", "such", "dir", "out")

	err := CSV(tricky, missing+".csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWrite)
	assert.ErrorIs(t, err, os.ErrNotExist)
	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, missing+".csv", we.Path)

	err = JSON(tricky, missing+".json")
	assert.ErrorIs(t, err, ErrWrite)
}

func TestDecodeCSV_MissingHeader(t *testing.T) {
	_, err := DecodeCSV(bytes.NewBufferString("a,b\r\n"))
	assert.Error(t, err)
}

func TestRoundTrip_CRLFCorpus(t *testing.T) {
	corpus := extract.NormalizeNewlines("The first requirement is\r\navailability.\rIt must exceed\r\n99.9 percent.\r\n")
	records := []requirement.Record{
		{Requirement: strings.TrimSpace(corpus[:strings.Index(corpus, ".")+1]), Description: "It must exceed\n99.9 percent."},
	}
	dir := t.TempDir()
	csvPath, jsonPath := filepath.Join(dir, "r.csv"), filepath.Join(dir, "r.json")
	require.NoError(t, CSV(records, csvPath))
	require.NoError(t, JSON(records, jsonPath))

	fromCSV, err := ReadCSV(csvPath)
	require.NoError(t, err)
	fromJSON, err := ReadJSON(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, records, fromCSV)
	assert.Equal(t, records, fromJSON)
	assert.Equal(t, "The first requirement is\navailability.", fromCSV[0].Requirement)
}
