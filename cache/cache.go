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

// Package cache stores downloaded datasets on disk, one directory per
// dataset: data.csv with the table contents and metadata.json describing
// where and when it was fetched.
package cache

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/Jerobie1/RSocrata/table"
	"github.com/stockparfait/errors"
)

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04:05.999",
		"2006-01-02T15:04:05.999",
		"2006-01-02T15:04:05.999Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	var err error
	for _, f := range formats {
		var tm time.Time
		tm, err = time.Parse(f, s)
		if err == nil {
			return tm, nil
		}
	}
	return time.Time{}, err
}

// Time is a wrapper around time.Time with JSON methods.
type Time time.Time

var _ json.Marshaler = &Time{}
var _ json.Unmarshaler = &Time{}

func NewTime(year, month, day, hour, minute, second int) *Time {
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	return (*Time)(&t)
}

// Now is the current time in UTC, truncated to whole seconds.
func Now() *Time {
	t := time.Now().UTC().Truncate(time.Second)
	return (*Time)(&t)
}

// String representation of Time.
func (t *Time) String() string {
	return time.Time(*t).Format("2006-01-02 15:04:05")
}

// MarshalJSON implements json.Marshaler.
func (t *Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Annotate(err, "Time JSON must be a string")
	}
	tm, err := parseTime(s)
	if err != nil {
		return errors.Annotate(err, "failed to parse time string: '%s'", s)
	}
	*t = Time(tm)
	return nil
}

// Metadata is the schema for the metadata.json file.
type Metadata struct {
	SourceURL string            `json:"source_url"`
	Columns   []string          `json:"columns"`
	Schema    map[string]string `json:"schema,omitempty"` // field name -> type tag
	NumRows   int               `json:"num_rows"`
	FetchedAt *Time             `json:"fetched_at,omitempty"`
}

func datasetDir(cacheDir, name string) string {
	return filepath.Join(cacheDir, name)
}

func writeJSON(fileName string, v interface{}) error {
	f, err := os.OpenFile(fileName, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Annotate(err, "failed to open file for writing: '%s'", fileName)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err = enc.Encode(v); err != nil {
		return errors.Annotate(err, "failed to write to '%s'", fileName)
	}
	return nil
}

func readJSON(fileName string, v interface{}) error {
	f, err := os.Open(fileName)
	if err != nil {
		return errors.Annotate(err, "failed to open file for reading: '%s'", fileName)
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err = dec.Decode(v); err != nil {
		return errors.Annotate(err, "failed to read from '%s'", fileName)
	}
	return nil
}

// Writer saves one named dataset in the cache directory.
type Writer struct {
	cacheDir string
	name     string
	Metadata Metadata
}

// NewWriter creates a Writer for the dataset with the given cache name.
func NewWriter(cacheDir, name string) *Writer {
	return &Writer{cacheDir: cacheDir, name: name}
}

func (w *Writer) dataFile() string {
	return filepath.Join(datasetDir(w.cacheDir, w.name), "data.csv")
}

func (w *Writer) metadataFile() string {
	return filepath.Join(datasetDir(w.cacheDir, w.name), "metadata.json")
}

// WriteTable saves the table as data.csv and records its shape in the
// pending Metadata. Call WriteMetadata to persist the metadata.
func (w *Writer) WriteTable(t *table.Table) error {
	dir := datasetDir(w.cacheDir, w.name)
	if err := os.MkdirAll(dir, os.ModeDir|0755); err != nil {
		return errors.Annotate(err, "failed to create dataset dir '%s'", dir)
	}
	f, err := os.OpenFile(w.dataFile(), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Annotate(err, "failed to open file for writing: '%s'", w.dataFile())
	}
	defer f.Close()
	if err := t.WriteCSV(f, table.Params{}); err != nil {
		return errors.Annotate(err, "failed to write table to '%s'", w.dataFile())
	}
	w.Metadata.Columns = t.ColumnNames()
	w.Metadata.NumRows = t.NumRows()
	return nil
}

// WriteMetadata saves m as metadata.json and keeps it in w.Metadata.
func (w *Writer) WriteMetadata(m Metadata) error {
	dir := datasetDir(w.cacheDir, w.name)
	if err := os.MkdirAll(dir, os.ModeDir|0755); err != nil {
		return errors.Annotate(err, "failed to create dataset dir '%s'", dir)
	}
	w.Metadata = m
	if err := writeJSON(w.metadataFile(), &w.Metadata); err != nil {
		return errors.Annotate(err, "failed to write metadata")
	}
	return nil
}

// Reader reads back one named dataset from the cache directory.
type Reader struct {
	cacheDir string
	name     string
	metadata *Metadata
}

// NewReader creates a Reader for the dataset with the given cache name.
func NewReader(cacheDir, name string) *Reader {
	return &Reader{cacheDir: cacheDir, name: name}
}

func (r *Reader) dataFile() string {
	return filepath.Join(datasetDir(r.cacheDir, r.name), "data.csv")
}

func (r *Reader) metadataFile() string {
	return filepath.Join(datasetDir(r.cacheDir, r.name), "metadata.json")
}

// ReadMetadata reads and caches the dataset's metadata.json.
func (r *Reader) ReadMetadata() (Metadata, error) {
	if r.metadata == nil {
		var m Metadata
		if err := readJSON(r.metadataFile(), &m); err != nil {
			return Metadata{}, errors.Annotate(err, "failed to read metadata")
		}
		r.metadata = &m
	}
	return *r.metadata, nil
}

// ReadTable loads data.csv back into a table. All cells are raw strings; the
// cache does not retain parsed cell types.
func (r *Reader) ReadTable() (*table.Table, error) {
	f, err := os.Open(r.dataFile())
	if err != nil {
		return nil, errors.Annotate(err, "failed to open file for reading: '%s'", r.dataFile())
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Annotate(err, "failed to read table from '%s'", r.dataFile())
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
			return nil, errors.Annotate(err, "bad row %d in '%s'", i+1, r.dataFile())
		}
	}
	return t, nil
}
