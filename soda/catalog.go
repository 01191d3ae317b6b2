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
	"net/url"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
)

// Publisher of a catalog dataset.
type Publisher struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// Distribution is one downloadable rendition of a catalog dataset.
type Distribution struct {
	Type        string `json:"@type"`
	DownloadURL string `json:"downloadURL"`
	MediaType   string `json:"mediaType"`
}

// CatalogDataset describes one dataset in a domain's discovery catalog.
type CatalogDataset struct {
	Type         string         `json:"@type"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Identifier   string         `json:"identifier"`
	Issued       string         `json:"issued"`
	Modified     string         `json:"modified"`
	Keywords     []string       `json:"keyword"`
	Publisher    Publisher      `json:"publisher"`
	LandingPage  string         `json:"landingPage"`
	Distribution []Distribution `json:"distribution"`
}

// Catalog is the data.json discovery document published by an Open Data
// domain, in the DCAT format.
type Catalog struct {
	Context     string           `json:"@context"`
	ID          string           `json:"@id"`
	Type        string           `json:"@type"`
	ConformsTo  string           `json:"conformsTo"`
	DescribedBy string           `json:"describedBy"`
	Datasets    []CatalogDataset `json:"dataset"`
}

// ListDatasets downloads the discovery catalog of the domain hosting the
// given URL. Only the URL's scheme and host are used; the catalog always
// lives at "<scheme>://<host>/data.json".
func ListDatasets(ctx context.Context, domainURL string) (*Catalog, error) {
	u, err := url.Parse(domainURL)
	if err != nil {
		return nil, errors.Annotate(ErrInvalidURL, "cannot parse '%s': %s", domainURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Annotate(ErrInvalidURL,
			"'%s' must have a scheme and host", domainURL)
	}
	uri := u.Scheme + "://" + u.Host + "/data.json"
	var c Catalog
	if err := fetch.FetchJSON(ctx, uri, &c, nil, nil); err != nil {
		return nil, errors.Annotate(err, "failed to fetch catalog '%s'", uri)
	}
	return &c, nil
}
