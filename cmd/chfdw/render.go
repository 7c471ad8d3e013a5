package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danthegoodman1/chfdw/cell"
	prettytable "github.com/jedib0t/go-pretty/v6/table"
)

func printRows(columns []string, rows []*cell.Row) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		for _, row := range rows {
			if err := enc.Encode(row); err != nil {
				return fmt.Errorf("error encoding row: %w", err)
			}
		}
		return nil
	}

	t := configureTable()
	t.AppendHeader(headerRow(columns, rows))
	for i, row := range rows {
		if limit > 0 && i >= limit {
			break
		}
		t.AppendRow(tableRow(row))
	}
	if limit > 0 && len(rows) > limit {
		t.AppendFooter(prettytable.Row{fmt.Sprintf("... (%d more rows)", len(rows)-limit)})
	}
	t.Render()
	fmt.Printf("(%d rows)\n", len(rows))
	return nil
}

func configureTable() prettytable.Writer {
	t := prettytable.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(prettytable.StyleRounded)
	t.SetAutoIndex(false)
	t.Style().Options.SeparateRows = false
	return t
}

// headerRow falls back to the first row's columns when none were requested
func headerRow(columns []string, rows []*cell.Row) prettytable.Row {
	if len(columns) == 0 && len(rows) > 0 {
		columns = rows[0].Cols
	}
	header := make(prettytable.Row, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	return header
}

func tableRow(row *cell.Row) prettytable.Row {
	r := make(prettytable.Row, row.Len())
	for i, c := range row.Cells {
		if c == nil {
			r[i] = "NULL"
			continue
		}
		if c.Kind == cell.KindTimestamp {
			r[i] = c.TS.Time.Format(cell.TimestampLayout)
			continue
		}
		r[i] = cell.Literal(c)
	}
	return r
}
