package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
)

// ErrNoHeaders is returned when a dataset has no columns to render.
var ErrNoHeaders = errors.New("dataset requires at least one header")

// Dataset defines tabular export content. Totals, when set, is rendered as a
// trailing summary row keyed by header like any other row.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
	Totals  map[string]string
}

func (d Dataset) record(row map[string]string) []string {
	out := make([]string, len(d.Headers))
	for i, header := range d.Headers {
		out[i] = row[header]
	}
	return out
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, ErrNoHeaders
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		if err := writer.Write(data.record(row)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	if data.Totals != nil {
		if err := writer.Write(data.record(data.Totals)); err != nil {
			return nil, fmt.Errorf("write csv totals: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
