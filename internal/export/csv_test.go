package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/heimdex/prproj-export/internal/rows"
)

func sampleRows() []rows.Row {
	return []rows.Row{
		{Type: "Video", Track: 1, Name: "Intro, part 1", ClipType: "Video", Source: `/media/"intro".mov`, StartTC: "00:00:00:00", EndTC: "00:00:24:01", Title: "Intro, part 1", StartFrame: 0, EndFrame: 577},
		{Type: "Audio", Track: 1, Name: "Imago_12345678", ClipType: "Audio", Source: "/media/a.wav", StartTC: "00:00:01:00", EndTC: "00:00:02:00", StockID: "12345678", StartFrame: 24, EndFrame: 48},
	}
}

func TestWriteCSV_Basic(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRows(), false); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != "Type,Track,Name,ClipType,Source,StartTC,EndTC" {
		t.Fatalf("header mismatch: %v", records[0])
	}
	if records[1][2] != "Intro, part 1" || records[1][4] != `/media/"intro".mov` {
		t.Fatalf("quoted fields did not survive: %v", records[1])
	}
	if records[1][6] != "00:00:24:01" {
		t.Fatalf("end timecode mismatch: %v", records[1])
	}
}

func TestWriteCSV_Extended(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRows(), true); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records[0]) != len(rows.ExtendedHeader) {
		t.Fatalf("extended header has %d columns, want %d", len(records[0]), len(rows.ExtendedHeader))
	}
	if records[2][6] != "12345678" {
		t.Fatalf("stock id column mismatch: %v", records[2])
	}
}

func TestWriteCSV_EmptyRows(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil, false); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if buf.String() != "Type,Track,Name,ClipType,Source,StartTC,EndTC\n" {
		t.Fatalf("expected header only, got %q", buf.String())
	}
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, sampleRows(), Options{Format: FormatJSON, Title: "Main", FPS: 24})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc.Sequence != "Main" || doc.FPS != 24 || doc.RowCount != 2 {
		t.Fatalf("document metadata mismatch: %+v", doc)
	}
	if doc.Rows[0].EndFrame != 577 {
		t.Fatalf("row frames mismatch: %+v", doc.Rows[0])
	}
}

func TestWriteJSON_EmptyRowsIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, Document{Sequence: "Empty"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"rows": []`) {
		t.Fatalf("expected empty array, got %s", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatCSV},
		{in: "CSV", want: FormatCSV},
		{in: " json ", want: FormatJSON},
		{in: "edl", want: FormatEDL},
		{in: "xml", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseFormat(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseFormat(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseFormat(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		input, sequence string
		format          Format
		want            string
	}{
		{"/projects/My Edit.prproj", "", FormatCSV, "My Edit.csv"},
		{"/projects/My Edit.prproj", "Main Seq", FormatJSON, "My Edit_Main Seq.json"},
		{"cut<1>.prproj", "", FormatEDL, "cut_1_.edl"},
		{"", "", "", "export.csv"},
	}
	for _, tc := range tests {
		if got := OutputName(tc.input, tc.sequence, tc.format); got != tc.want {
			t.Fatalf("OutputName(%q, %q, %q) = %q, want %q", tc.input, tc.sequence, tc.format, got, tc.want)
		}
	}
}
