package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/heimdex/prproj-export/internal/rows"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, body [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range body {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// renderRows lays exported rows out for a terminal. Track is the only
// numeric column.
func renderRows(rs []rows.Row, extended bool) string {
	headers := rows.Header
	if extended {
		headers = rows.ExtendedHeader
	}
	body := make([][]string, 0, len(rs))
	for _, r := range rs {
		if extended {
			body = append(body, r.ExtendedRecord())
		} else {
			body = append(body, r.Record())
		}
	}
	aligns := make([]columnAlignment, len(headers))
	aligns[1] = alignRight
	return renderTable(headers, body, aligns)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
