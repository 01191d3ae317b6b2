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
	"net/http"
	"testing"

	"github.com/stockparfait/errors"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSchema(t *testing.T) {
	t.Parallel()

	Convey("FieldName normalizes human-readable names", t, func() {
		So(FieldName("Number.of.Stations"), ShouldEqual, "number_of_stations")
		So(FieldName("Station"), ShouldEqual, "station")
		So(FieldName("already_normal"), ShouldEqual, "already_normal")
	})

	Convey("ReadSchema", t, func() {
		header := func(fields, types string) http.Header {
			h := make(http.Header)
			if fields != "" {
				h.Set("X-SODA2-Fields", fields)
			}
			if types != "" {
				h.Set("X-SODA2-Types", types)
			}
			return h
		}

		Convey("zips fields with types", func() {
			s, err := ReadSchema(header(
				`["station","opened","num_lines"]`,
				`["text","calendar_date","number"]`))
			So(err, ShouldBeNil)
			So(s, ShouldResemble, Schema{
				"station":   Text,
				"opened":    CalendarDate,
				"num_lines": Number,
			})
			So(s.Type("Opened"), ShouldEqual, CalendarDate)
			So(s.Type("station"), ShouldEqual, Text)
			So(s.Type("nosuch"), ShouldEqual, TypeTag(""))
		})

		Convey("fails without the field header", func() {
			_, err := ReadSchema(header("", `["text"]`))
			So(errors.Is(err, ErrMissingSchema), ShouldBeTrue)
		})

		Convey("fails without the type header", func() {
			_, err := ReadSchema(header(`["station"]`, ""))
			So(errors.Is(err, ErrMissingSchema), ShouldBeTrue)
		})

		Convey("fails on length mismatch", func() {
			_, err := ReadSchema(header(`["station","opened"]`, `["text"]`))
			So(errors.Is(err, ErrMissingSchema), ShouldBeTrue)
		})

		Convey("fails on malformed header JSON", func() {
			_, err := ReadSchema(header(`station`, `["text"]`))
			So(errors.Is(err, ErrMissingSchema), ShouldBeTrue)
		})
	})
}
