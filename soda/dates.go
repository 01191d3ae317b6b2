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

package soda

import (
	"time"

	"github.com/Jerobie1/RSocrata/table"
	"github.com/stockparfait/errors"
)

// The two textual date formats used by calendar_date columns: a date-only
// form ("12/31/2013") and a 12-hour clock form ("12/31/2013 11:59:00 PM").
const (
	shortDateFormat = "1/2/2006"
	longDateFormat  = "1/2/2006 3:04:05 PM"
)

// ParseDate parses a calendar_date string, trying the short date-only format
// first and falling back to the long date-time format.
func ParseDate(s string) (time.Time, error) {
	if tm, err := time.Parse(shortDateFormat, s); err == nil {
		return tm, nil
	}
	tm, err := time.Parse(longDateFormat, s)
	if err != nil {
		return time.Time{}, errors.Annotate(ErrDateParse,
			"'%s' matches neither '%s' nor '%s'", s, shortDateFormat, longDateFormat)
	}
	return tm, nil
}

// NormalizeDates replaces, in place, the string cells of every column whose
// declared type is calendar_date with parsed time.Time values. The format is
// detected once per column from the first cell and applied to the whole
// column; datasets mixing both formats within one column fail. Empty and nil
// cells are left untouched as missing values. Columns absent from the schema,
// or declared as any other type, pass through unchanged.
func NormalizeDates(t *table.Table, schema Schema) error {
	for ci := range t.Columns {
		col := &t.Columns[ci]
		if schema.Type(col.Name) != CalendarDate || len(col.Cells) == 0 {
			continue
		}
		format := longDateFormat
		if first, ok := col.Cells[0].(string); ok {
			if _, err := time.Parse(shortDateFormat, first); err == nil {
				format = shortDateFormat
			}
		}
		for i, v := range col.Cells {
			s, ok := v.(string)
			if !ok || s == "" {
				continue
			}
			tm, err := time.Parse(format, s)
			if err != nil {
				return errors.Annotate(ErrDateParse,
					"column '%s' row %d: '%s' does not match '%s'",
					col.Name, i, s, format)
			}
			col.Cells[i] = tm
		}
	}
	return nil
}
