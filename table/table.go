// Copyright 2023 RSocrata Authors

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/stockparfait/errors"
)

// Value is an arbitrary value of a table cell.
type Value interface{}

// Column is a single named column of cells. Within a Table, all columns have
// the same number of cells, and cells with the same index form a row.
type Column struct {
	Name  string
	Cells []Value
}

// Table is an ordered sequence of named columns.
//
// A typical use:
//
//	t := NewTable("Station", "Opened")
//	t.AddRow("Harlem-148 St", "12/31/2013")
//	t.AddRow("Wakefield-241 St", "12/31/2013")
type Table struct {
	Columns []Column
}

// NewTable creates a new Table with zero rows and the given column names.
func NewTable(names ...string) *Table {
	t := &Table{Columns: make([]Column, len(names))}
	for i, n := range names {
		t.Columns[i].Name = n
	}
	return t
}

// NumColumns is the number of columns in the table.
func (t *Table) NumColumns() int { return len(t.Columns) }

// NumRows is the number of rows in the table.
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

// ColumnNames lists the column names in their table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column finds a column by its exact name, or returns nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// AddRow appends a single row of cells, one cell per column.
func (t *Table) AddRow(cells ...Value) error {
	if len(cells) != len(t.Columns) {
		return errors.Reason("row size [%d] != number of columns [%d]",
			len(cells), len(t.Columns))
	}
	for i, v := range cells {
		t.Columns[i].Cells = append(t.Columns[i].Cells, v)
	}
	return nil
}

// Row returns the i'th row of the table as a slice of cells.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.Cells[i]
	}
	return row
}

// Append adds all the rows of t2 to the receiver. The column names of t2 must
// match the receiver's exactly, by position. Appending an empty table is a
// no-op regardless of its columns, so that a headless empty table (e.g. an
// empty JSON page) merges into any table.
func (t *Table) Append(t2 *Table) error {
	if t2.NumRows() == 0 {
		return nil
	}
	if len(t2.Columns) != len(t.Columns) {
		return errors.Reason("cannot append table with %d columns to %d columns",
			len(t2.Columns), len(t.Columns))
	}
	for i := range t.Columns {
		if t.Columns[i].Name != t2.Columns[i].Name {
			return errors.Reason("column %d name mismatch: '%s' != '%s'",
				i, t.Columns[i].Name, t2.Columns[i].Name)
		}
		t.Columns[i].Cells = append(t.Columns[i].Cells, t2.Columns[i].Cells...)
	}
	return nil
}

// Format renders a single cell value as a string, for CSV or text output.
// Parsed temporal values print as "2006-01-02" when they carry no
// time-of-day, and as "2006-01-02 15:04:05" otherwise. A nil cell is empty.
func Format(v Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Params are parameters for pretty-printing or CSV export of Table data.
type Params struct {
	Rows        int  // max. number of rows to write; 0 = unlimited (default)
	NoHeader    bool // whether to print the header, default - yes
	MaxColWidth int  // for WriteText only; 0 = unlimited, otherwise must be >= 4
}

func (t *Table) formattedRow(i int) []string {
	row := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = Format(c.Cells[i])
	}
	return row
}

// WriteCSV writes the entire table to w in CSV format.
func (t *Table) WriteCSV(w io.Writer, p Params) error {
	cw := csv.NewWriter(w)
	if !p.NoHeader && len(t.Columns) > 0 {
		if err := cw.Write(t.ColumnNames()); err != nil {
			return errors.Annotate(err, "failed to write header")
		}
	}
	for i := 0; i < t.NumRows(); i++ {
		if p.Rows > 0 && i >= p.Rows {
			break
		}
		if err := cw.Write(t.formattedRow(i)); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Annotate(err, "failed to flush written rows")
	}
	return nil
}

// WriteText writes the table as a text formatted for ease of reading.
func (t *Table) WriteText(w io.Writer, p Params) error {
	if p.MaxColWidth != 0 && p.MaxColWidth < 4 {
		return errors.Reason("MaxColWidth [%d] must be 0 or >= 4", p.MaxColWidth)
	}
	if len(t.Columns) == 0 {
		return nil
	}
	widths := make([]int, len(t.Columns))
	update := func(row []string) {
		for i := range widths {
			if widths[i] < len(row[i]) {
				widths[i] = len(row[i])
				if p.MaxColWidth > 0 && widths[i] > p.MaxColWidth {
					widths[i] = p.MaxColWidth
				}
			}
		}
	}

	write := func(row []string) error {
		trimmed := make([]string, len(row))
		for i, s := range row {
			trimmed[i] = s
			if len([]rune(s)) > widths[i] {
				r := []rune(s)[:widths[i]-2]
				trimmed[i] = string(r) + ".."
			}
			trimmed[i] = fmt.Sprintf("%[2]*[1]s", trimmed[i], widths[i])
		}
		_, err := fmt.Fprintf(w, "%s\n", strings.Join(trimmed, " | "))
		return err
	}

	dashes := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = byte('-')
		}
		return string(b)
	}

	dashedRow := func() []string {
		row := make([]string, len(widths))
		for i, w := range widths {
			row[i] = dashes(w)
		}
		return row
	}

	if !p.NoHeader {
		update(t.ColumnNames())
	}
	for i := 0; i < t.NumRows(); i++ {
		if p.Rows > 0 && i >= p.Rows {
			break
		}
		update(t.formattedRow(i))
	}

	if !p.NoHeader {
		if err := write(t.ColumnNames()); err != nil {
			return errors.Annotate(err, "failed to write header")
		}
		if err := write(dashedRow()); err != nil {
			return errors.Annotate(err, "failed to write header separator")
		}
	}
	for i := 0; i < t.NumRows(); i++ {
		if p.Rows > 0 && i >= p.Rows {
			break
		}
		if err := write(t.formattedRow(i)); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
	}
	return nil
}
