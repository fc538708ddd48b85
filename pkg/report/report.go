// Package report writes list rows as XLSX workbooks.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Column extracts one cell per row.
type Column[T any] struct {
	Header string
	Value  func(T) any
}

// Workbook builds a single-sheet workbook with a bold header row.
func Workbook[T any](sheet string, cols []Column[T], rows []T) (*excelize.File, error) {
	x := excelize.NewFile()
	if err := x.SetSheetName(x.GetSheetName(0), sheet); err != nil {
		x.Close()
		return nil, err
	}
	bold, err := x.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		x.Close()
		return nil, err
	}

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c.Header
	}
	if err := x.SetSheetRow(sheet, "A1", &header); err != nil {
		x.Close()
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(cols), 1)
	if err := x.SetCellStyle(sheet, "A1", last, bold); err != nil {
		x.Close()
		return nil, err
	}

	for r, row := range rows {
		vals := make([]any, len(cols))
		for i, c := range cols {
			vals[i] = c.Value(row)
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := x.SetSheetRow(sheet, cell, &vals); err != nil {
			x.Close()
			return nil, fmt.Errorf("row %d: %w", r+1, err)
		}
	}
	return x, nil
}

// Write streams the workbook to w and closes it.
func Write[T any](w io.Writer, sheet string, cols []Column[T], rows []T) error {
	x, err := Workbook(sheet, cols, rows)
	if err != nil {
		return err
	}
	defer x.Close()
	return x.Write(w)
}

// Row is one entry of a backend summary shown as a key/value table.
type Row struct {
	Key   string
	Value any
}

// Rows flattens a summary map into rows sorted by key.
func Rows(m map[string]any) []Row {
	out := make([]Row, 0, len(m))
	for k, v := range m {
		out = append(out, Row{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
