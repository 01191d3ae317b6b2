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
	"bytes"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTable(t *testing.T) {
	t.Parallel()

	Convey("Table methods work", t, func() {
		tbl := NewTable("Make", "Model")

		So(tbl.ColumnNames(), ShouldResemble, []string{"Make", "Model"})
		So(tbl.NumRows(), ShouldEqual, 0)
		So(tbl.AddRow("Toyota", "Prius"), ShouldBeNil)
		So(tbl.AddRow("Honda", "Clarity"), ShouldBeNil)

		Convey("AddRow worked", func() {
			So(tbl.NumRows(), ShouldEqual, 2)
			So(tbl.Row(1), ShouldResemble, []Value{"Honda", "Clarity"})
		})

		Convey("AddRow checks the row size", func() {
			So(tbl.AddRow("just one"), ShouldNotBeNil)
		})

		Convey("Column lookup", func() {
			So(tbl.Column("Model").Cells, ShouldResemble, []Value{"Prius", "Clarity"})
			So(tbl.Column("nosuch"), ShouldBeNil)
		})

		Convey("Append", func() {
			t2 := NewTable("Make", "Model")
			So(t2.AddRow("Tesla", "Model 3"), ShouldBeNil)
			So(tbl.Append(t2), ShouldBeNil)
			So(tbl.NumRows(), ShouldEqual, 3)
			So(tbl.Column("Make").Cells, ShouldResemble,
				[]Value{"Toyota", "Honda", "Tesla"})

			Convey("empty table is a no-op regardless of columns", func() {
				So(tbl.Append(NewTable()), ShouldBeNil)
				So(tbl.NumRows(), ShouldEqual, 3)
			})

			Convey("mismatched columns fail", func() {
				t3 := NewTable("Make", "Year")
				So(t3.AddRow("Ford", "2020"), ShouldBeNil)
				So(tbl.Append(t3), ShouldNotBeNil)
			})
		})

		Convey("WriteCSV", func() {
			Convey("Default Params", func() {
				var buf bytes.Buffer
				So(tbl.WriteCSV(&buf, Params{}), ShouldBeNil)
				So("\n"+buf.String(), ShouldEqual, `
Make,Model
Toyota,Prius
Honda,Clarity
`)
			})

			Convey("Limited rows, no header", func() {
				var buf bytes.Buffer
				So(tbl.WriteCSV(&buf, Params{Rows: 1, NoHeader: true}), ShouldBeNil)
				So("\n"+buf.String(), ShouldEqual, `
Toyota,Prius
`)
			})
		})

		Convey("WriteText", func() {
			var buf bytes.Buffer
			So(tbl.WriteText(&buf, Params{}), ShouldBeNil)
			So("\n"+buf.String(), ShouldEqual, `
  Make |   Model
------ | -------
Toyota |   Prius
 Honda | Clarity
`)
		})
	})

	Convey("Format renders cell values", t, func() {
		So(Format(nil), ShouldEqual, "")
		So(Format("str"), ShouldEqual, "str")
		So(Format(2.5), ShouldEqual, "2.5")
		So(Format(true), ShouldEqual, "true")
		So(Format(time.Date(2013, 12, 31, 0, 0, 0, 0, time.UTC)),
			ShouldEqual, "2013-12-31")
		So(Format(time.Date(2013, 12, 31, 23, 59, 0, 0, time.UTC)),
			ShouldEqual, "2013-12-31 23:59:00")
	})
}
