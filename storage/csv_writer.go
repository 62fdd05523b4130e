package storage

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"listings-pipeline/models"
)

// EncodeCSV renders records under the fixed header, one row per record in
// input order. Fields are quoted only when they contain a delimiter, a quote
// or a line break.
func EncodeCSV(records []models.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(models.Header); err != nil {
		return nil, fmt.Errorf("csv: write header: %w", err)
	}

	for _, r := range records {
		if err := w.Write(r.Row()); err != nil {
			return nil, fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv: flush: %w", err)
	}
	return buf.Bytes(), nil
}
