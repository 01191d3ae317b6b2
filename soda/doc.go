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

// Package soda downloads tabular datasets from Socrata Open Data API (SODA)
// endpoints.
//
// A dataset is addressed either by its canonical resource URL,
// "https://host/resource/xxxx-yyyy.csv", or by a human-friendly URL whose
// last path segment is the dataset's 4x4 identifier. Either form is accepted
// by FetchDataset, which resolves it to the canonical CSV resource endpoint.
//
// The API caps the number of rows returned by a single request, and expects
// clients to page through large datasets with an offset query parameter.
// FetchDataset issues bounded requests sequentially, appending pages until
// the server returns an empty page, and assembles the result into a single
// table.Table. Column types are discovered from the X-SODA2-Fields and
// X-SODA2-Types response headers of the first page; cells of columns declared
// as calendar_date are converted to time.Time values.
//
// HTTP requests go through a Transport taken from the context (see
// UseTransport); the default transport uses the stockparfait/fetch package
// and therefore honors an http.Client injected with fetch.UseClient.
package soda
