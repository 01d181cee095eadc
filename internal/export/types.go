package export

import (
	"fmt"
	"strings"
)

// Format names an output encoding for a converted row list.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatEDL  Format = "edl"
)

// ParseFormat accepts a format name case-insensitively. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatJSON, FormatEDL:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want csv, json or edl)", s)
	}
}

func (f Format) Ext() string {
	return "." + string(f)
}

func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatEDL:
		return "text/plain; charset=utf-8"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Options control rendering of a row list.
type Options struct {
	Format   Format
	Extended bool
	Title    string
	FPS      int
}
