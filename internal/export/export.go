// Package export renders the book catalog as flat tabular data in CSV or
// JSON form with a caller-selected subset of fields.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lepinkainen/bookscan/internal/library"
)

// Format selects the output encoding.
type Format string

// Supported output formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// DefaultFields is the field set used when the caller picks none.
var DefaultFields = []string{"isbn", "title", "author", "genre"}

type fieldSpec struct {
	header  string
	extract func(library.Book) string
}

var fieldSpecs = map[string]fieldSpec{
	"isbn":      {"ISBN", func(b library.Book) string { return b.ISBN }},
	"title":     {"Title", func(b library.Book) string { return b.Title }},
	"author":    {"Author", func(b library.Book) string { return b.Author }},
	"genre":     {"Genre", func(b library.Book) string { return b.Genre }},
	"publisher": {"Publisher", func(b library.Book) string { return b.Publisher }},
	"coverurl":  {"Cover URL", func(b library.Book) string { return b.CoverURL }},
	"categories": {"Categories", func(b library.Book) string {
		return strings.Join(b.Categories, "; ")
	}},
	"scannedat": {"Scanned At", func(b library.Book) string {
		return b.ScannedAt.Format(time.RFC3339)
	}},
}

// Write renders books to w in the given format. An empty fields slice
// selects DefaultFields; unknown field names are an error.
func Write(w io.Writer, books []library.Book, format Format, fields []string) error {
	specs, err := resolveFields(fields)
	if err != nil {
		return err
	}

	switch format {
	case FormatCSV:
		return writeCSV(w, books, specs)
	case FormatJSON:
		return writeJSON(w, books, specs)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func resolveFields(fields []string) ([]fieldSpec, error) {
	if len(fields) == 0 {
		fields = DefaultFields
	}
	specs := make([]fieldSpec, 0, len(fields))
	for _, name := range fields {
		spec, ok := fieldSpecs[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown export field %q", name)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func writeCSV(w io.Writer, books []library.Book, specs []fieldSpec) error {
	writer := csv.NewWriter(w)

	header := make([]string, len(specs))
	for i, spec := range specs {
		header[i] = spec.header
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	row := make([]string, len(specs))
	for _, book := range books {
		for i, spec := range specs {
			row[i] = spec.extract(book)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeJSON(w io.Writer, books []library.Book, specs []fieldSpec) error {
	records := make([]map[string]string, 0, len(books))
	for _, book := range books {
		record := make(map[string]string, len(specs))
		for _, spec := range specs {
			record[spec.header] = spec.extract(book)
		}
		records = append(records, record)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}
