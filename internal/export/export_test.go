package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/bookscan/internal/library"
)

func sampleBooks() []library.Book {
	return []library.Book{
		{
			ISBN:       "9780306406157",
			Title:      "Numerical Recipes, Third Edition",
			Author:     "Press, William",
			Genre:      "Science",
			Publisher:  "Cambridge",
			Categories: []string{"Mathematics", "Computing"},
			ScannedAt:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ISBN:  "0306406152",
			Title: "Shell Record",
		},
	}
}

func TestWriteCSVDefaultFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleBooks(), FormatCSV, nil))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)

	assert.Equal(t, "ISBN,Title,Author,Genre", string(lines[0]))
	// Embedded commas are quoted.
	assert.Equal(t, `9780306406157,"Numerical Recipes, Third Edition","Press, William",Science`, string(lines[1]))
	assert.Equal(t, "0306406152,Shell Record,,", string(lines[2]))
}

func TestWriteCSVFieldSelection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleBooks(), FormatCSV, []string{"title", "categories", "scannedat"}))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	assert.Equal(t, "Title,Categories,Scanned At", string(lines[0]))
	assert.Equal(t, `"Numerical Recipes, Third Edition",Mathematics; Computing,2024-05-01T12:00:00Z`, string(lines[1]))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleBooks(), FormatJSON, []string{"isbn", "genre"}))

	var records []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 2)

	assert.Equal(t, map[string]string{"ISBN": "9780306406157", "Genre": "Science"}, records[0])
	assert.Equal(t, map[string]string{"ISBN": "0306406152", "Genre": ""}, records[1])
}

func TestWriteUnknownField(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, sampleBooks(), FormatCSV, []string{"isbn", "rating"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rating")
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, sampleBooks(), Format("xml"), nil))
}

func TestWriteEmptyCatalog(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil, FormatCSV, nil))
	assert.Equal(t, "ISBN,Title,Author,Genre\n", buf.String())
}
