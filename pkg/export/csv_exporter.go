package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset defines tabular export content. Rows are keyed by header.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Sheet is a named dataset rendered as one worksheet.
type Sheet struct {
	Name string
	Data Dataset
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct {
	// Placeholder replaces empty cells when set.
	Placeholder string
}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter(placeholder string) *CSVExporter {
	return &CSVExporter{Placeholder: placeholder}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		if err := writer.Write(record(data.Headers, row, e.Placeholder)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func record(headers []string, row map[string]string, placeholder string) []string {
	out := make([]string, len(headers))
	for i, header := range headers {
		value := row[header]
		if value == "" {
			value = placeholder
		}
		out[i] = value
	}
	return out
}
