package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// cellWidth wraps chunk text and answers so rows stay readable in a terminal.
const cellWidth = 72

// renderTable draws rows under headers. The first numericCols columns are
// right aligned; long cells wrap at cellWidth.
func renderTable(headers []string, rows [][]string, numericCols int) string {
	if len(headers) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(headers, len(headers)))
	for _, r := range rows {
		tw.AppendRow(toRow(r, len(headers)))
	}

	configs := make([]table.ColumnConfig, len(headers))
	for i := range configs {
		align := text.AlignLeft
		if i < numericCols {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft, WidthMax: cellWidth}
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

// toRow pads or cuts cells to n columns.
func toRow(cells []string, n int) table.Row {
	row := make(table.Row, n)
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}
