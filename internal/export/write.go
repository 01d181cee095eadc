package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/heimdex/prproj-export/internal/rows"
)

const maxNameLen = 120

// Write renders rs to w in the requested format.
func Write(w io.Writer, rs []rows.Row, opts Options) error {
	switch opts.Format {
	case FormatCSV, "":
		return WriteCSV(w, rs, opts.Extended)
	case FormatJSON:
		return WriteJSON(w, Document{Sequence: opts.Title, FPS: opts.FPS, Rows: rs})
	case FormatEDL:
		_, err := io.WriteString(w, GenerateEDL(rs, opts.Title, opts.FPS))
		return err
	default:
		return fmt.Errorf("unsupported format %q", opts.Format)
	}
}

// OutputName derives a file name for a converted project: the project's
// base name, the sequence name when one was picked, and the format extension.
func OutputName(input, sequence string, f Format) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if sequence != "" {
		base += "_" + sequence
	}
	name := SanitizeName(base, maxNameLen)
	if name == "" {
		name = "export"
	}
	if f == "" {
		f = FormatCSV
	}
	return name + f.Ext()
}
