package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/heimdex/prproj-export/internal/rows"
)

// WriteCSV writes a header and one record per row. Extended output adds
// the derived Title and StockID columns.
func WriteCSV(w io.Writer, rs []rows.Row, extended bool) error {
	cw := csv.NewWriter(w)

	header := rows.Header
	if extended {
		header = rows.ExtendedHeader
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, r := range rs {
		record := r.Record()
		if extended {
			record = r.ExtendedRecord()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
