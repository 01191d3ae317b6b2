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
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"

	"github.com/Jerobie1/RSocrata/table"
	"github.com/stockparfait/errors"
)

// ParsePage converts one response body into a table, dispatching on the
// declared content type. Parameters after ';' in the content type are
// ignored.
func ParsePage(body []byte, contentType string) (*table.Table, error) {
	mediaType := strings.TrimSpace(strings.Split(contentType, ";")[0])
	switch mediaType {
	case "text/csv":
		return parseCSV(body)
	case "application/json":
		return parseJSON(body)
	}
	return nil, errors.Annotate(ErrUnsupportedFormat,
		"cannot parse content type '%s'", contentType)
}

// parseCSV reads an RFC-4180 body whose first row names the columns. A body
// with only a header row is a valid empty table that keeps its column names.
func parseCSV(body []byte) (*table.Table, error) {
	rows, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	if err != nil {
		return nil, errors.Annotate(err, "failed to parse CSV body")
	}
	if len(rows) == 0 {
		return table.NewTable(), nil
	}
	t := table.NewTable(rows[0]...)
	for i, row := range rows[1:] {
		cells := make([]table.Value, len(row))
		for j, s := range row {
			cells[j] = s
		}
		if err := t.AddRow(cells...); err != nil {
			return nil, errors.Annotate(err, "bad CSV row %d", i+1)
		}
	}
	return t, nil
}

// parseJSON reads a body that is either the literal empty array or an array
// of flat records. The first record's fields, in their original order, define
// the columns; every other record must carry exactly the same field set, or
// the rows would misalign silently.
func parseJSON(body []byte) (*table.Table, error) {
	if s := strings.TrimSpace(string(body)); s == "[]" || s == "[ ]" {
		return table.NewTable(), nil
	}
	var records []map[string]interface{}
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, errors.Annotate(err, "failed to parse JSON body")
	}
	if len(records) == 0 {
		return table.NewTable(), nil
	}
	names, err := firstRecordFields(body)
	if err != nil {
		return nil, errors.Annotate(err, "failed to read fields of the first record")
	}
	t := table.NewTable(names...)
	for i, rec := range records {
		if len(rec) != len(names) {
			return nil, errors.Annotate(ErrInconsistentColumns,
				"record %d has %d fields, expected %d", i, len(rec), len(names))
		}
		cells := make([]table.Value, len(names))
		for j, n := range names {
			v, ok := rec[n]
			if !ok {
				return nil, errors.Annotate(ErrInconsistentColumns,
					"record %d has no field '%s'", i, n)
			}
			cells[j] = v
		}
		if err := t.AddRow(cells...); err != nil {
			return nil, errors.Annotate(err, "bad JSON record %d", i)
		}
	}
	return t, nil
}

// firstRecordFields extracts the field names of the first JSON record in
// their original order, which a decoded map cannot preserve.
func firstRecordFields(body []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	expect := func(d json.Delim) error {
		tok, err := dec.Token()
		if err != nil {
			return errors.Annotate(err, "failed to read JSON token")
		}
		if tok != d {
			return errors.Reason("expected '%v', got '%v'", d, tok)
		}
		return nil
	}
	if err := expect(json.Delim('[')); err != nil {
		return nil, err
	}
	if err := expect(json.Delim('{')); err != nil {
		return nil, err
	}
	var names []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Annotate(err, "failed to read field name")
		}
		name, ok := tok.(string)
		if !ok {
			return nil, errors.Reason("field name '%v' is not a string", tok)
		}
		names = append(names, name)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, errors.Annotate(err, "failed to skip value of '%s'", name)
		}
	}
	return names, nil
}
