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
	"context"
	"testing"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/testutil"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCatalog(t *testing.T) {
	t.Parallel()

	Convey("ListDatasets", t, func() {
		server := testutil.NewTestServer()
		defer server.Close()
		ctx := fetch.UseClient(context.Background(), server.Client())

		Convey("fetches and decodes the discovery catalog", func() {
			catalogJSON := `
				{"@context": "https://project-open-data.cio.gov/v1.1/schema/catalog.jsonld",
				 "@id": "https://data.cityofchicago.org/data.json",
				 "@type": "dcat:Catalog",
				 "conformsTo": "https://project-open-data.cio.gov/v1.1/schema",
				 "dataset": [
					{"@type": "dcat:Dataset",
					 "title": "CTA - List of CTA Datasets",
					 "identifier": "https://data.cityofchicago.org/api/views/pnau-cf66",
					 "keyword": ["cta", "transit"],
					 "publisher": {"name": "data.cityofchicago.org"},
					 "landingPage": "https://data.cityofchicago.org/d/pnau-cf66",
					 "distribution": [
						{"@type": "dcat:Distribution",
						 "downloadURL": "https://data.cityofchicago.org/api/views/pnau-cf66/rows.csv",
						 "mediaType": "text/csv"}]}]}`
			server.ResponseBody = []string{catalogJSON}
			c, err := ListDatasets(ctx, server.URL())
			So(err, ShouldBeNil)
			So(server.RequestPath, ShouldEqual, "/data.json")
			So(c.Type, ShouldEqual, "dcat:Catalog")
			So(len(c.Datasets), ShouldEqual, 1)
			ds := c.Datasets[0]
			So(ds.Title, ShouldEqual, "CTA - List of CTA Datasets")
			So(ds.Keywords, ShouldResemble, []string{"cta", "transit"})
			So(ds.Publisher.Name, ShouldEqual, "data.cityofchicago.org")
			So(len(ds.Distribution), ShouldEqual, 1)
			So(ds.Distribution[0].MediaType, ShouldEqual, "text/csv")
		})

		Convey("only the scheme and host of the URL matter", func() {
			server.ResponseBody = []string{`{"@type": "dcat:Catalog", "dataset": []}`}
			_, err := ListDatasets(ctx, server.URL()+"/resource/abcd-1234.csv?x=1")
			So(err, ShouldBeNil)
			So(server.RequestPath, ShouldEqual, "/data.json")
		})

		Convey("rejects a URL without a scheme or host", func() {
			_, err := ListDatasets(ctx, "data.cityofchicago.org")
			So(errors.Is(err, ErrInvalidURL), ShouldBeTrue)
		})
	})
}
