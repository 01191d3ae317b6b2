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

package cache

import (
	"os"
	"testing"
	"time"

	"github.com/Jerobie1/RSocrata/table"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCache(t *testing.T) {
	t.Parallel()

	tmpdir, tmpdirErr := os.MkdirTemp("", "test_cache")
	defer os.RemoveAll(tmpdir)

	Convey("Setup succeeded", t, func() {
		So(tmpdirErr, ShouldBeNil)
	})

	Convey("Write and read back a dataset", t, func() {
		tbl := table.NewTable("station", "opened")
		So(tbl.AddRow("Harlem", time.Date(2013, 12, 31, 0, 0, 0, 0, time.UTC)),
			ShouldBeNil)
		So(tbl.AddRow("Wakefield", time.Date(2014, 1, 2, 0, 0, 0, 0, time.UTC)),
			ShouldBeNil)

		w := NewWriter(tmpdir, "stations")
		So(w.WriteTable(tbl), ShouldBeNil)
		So(w.Metadata.Columns, ShouldResemble, []string{"station", "opened"})
		So(w.Metadata.NumRows, ShouldEqual, 2)

		meta := w.Metadata
		meta.SourceURL = "http://host/resource/abcd-1234.csv"
		meta.Schema = map[string]string{"station": "text", "opened": "calendar_date"}
		meta.FetchedAt = NewTime(2023, 6, 1, 12, 30, 0)
		So(w.WriteMetadata(meta), ShouldBeNil)

		r := NewReader(tmpdir, "stations")
		m, err := r.ReadMetadata()
		So(err, ShouldBeNil)
		So(m.SourceURL, ShouldEqual, "http://host/resource/abcd-1234.csv")
		So(m.NumRows, ShouldEqual, 2)
		So(m.Schema["opened"], ShouldEqual, "calendar_date")
		So(m.FetchedAt.String(), ShouldEqual, "2023-06-01 12:30:00")

		read, err := r.ReadTable()
		So(err, ShouldBeNil)
		So(read.ColumnNames(), ShouldResemble, []string{"station", "opened"})
		// Cells come back as the strings written to CSV.
		So(read.Column("opened").Cells, ShouldResemble,
			[]table.Value{"2013-12-31", "2014-01-02"})
	})

	Convey("Reading a missing dataset fails", t, func() {
		r := NewReader(tmpdir, "nosuch")
		_, err := r.ReadMetadata()
		So(err, ShouldNotBeNil)
		_, err = r.ReadTable()
		So(err, ShouldNotBeNil)
	})

	Convey("Time round-trips through JSON", t, func() {
		tm := NewTime(2023, 6, 1, 12, 30, 0)
		js, err := tm.MarshalJSON()
		So(err, ShouldBeNil)
		So(string(js), ShouldEqual, `"2023-06-01 12:30:00"`)
		var tm2 Time
		So(tm2.UnmarshalJSON(js), ShouldBeNil)
		So(tm2.String(), ShouldEqual, tm.String())
	})
}
