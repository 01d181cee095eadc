package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/heimdex/prproj-export/internal/rows"
)

// Document is the JSON rendering of a conversion.
type Document struct {
	Sequence string     `json:"sequence"`
	FPS      int        `json:"fps"`
	RowCount int        `json:"row_count"`
	Rows     []rows.Row `json:"rows"`
}

func WriteJSON(w io.Writer, doc Document) error {
	if doc.Rows == nil {
		doc.Rows = []rows.Row{}
	}
	doc.RowCount = len(doc.Rows)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
