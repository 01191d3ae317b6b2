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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Jerobie1/RSocrata/table"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"
)

type contextKey int

const (
	transportContextKey contextKey = iota
	diagnosticContextKey
)

// Transport issues a single HTTP GET and returns the raw response. It is the
// package's only collaborator for network access. Implementations own
// timeouts, throttling and any retry policy; this package issues requests
// strictly sequentially and never retries.
type Transport interface {
	Get(ctx context.Context, uri string) (*http.Response, error)
}

// httpTransport is the default Transport, built on the fetch package. It
// honors an http.Client injected into the context with fetch.UseClient.
type httpTransport struct{}

var _ Transport = httpTransport{}

func (httpTransport) Get(ctx context.Context, uri string) (*http.Response, error) {
	return fetch.GetRetry(ctx, uri, nil, nil)
}

// UseTransport injects a custom Transport into the context.
func UseTransport(ctx context.Context, t Transport) context.Context {
	return context.WithValue(ctx, transportContextKey, t)
}

func getTransport(ctx context.Context) Transport {
	t, ok := ctx.Value(transportContextKey).(Transport)
	if !ok {
		return httpTransport{}
	}
	return t
}

// Diagnostic is an event reported on the error path of a fetch.
type Diagnostic struct {
	Timestamp time.Time
	Origin    string // the operation that produced the event
	Message   string
}

// DiagnosticFunc observes Diagnostic events. It must not block.
type DiagnosticFunc func(Diagnostic)

// UseDiagnostics injects an observer for error-path events into the context.
// Without one, events are dropped; they never alter control flow.
func UseDiagnostics(ctx context.Context, f DiagnosticFunc) context.Context {
	return context.WithValue(ctx, diagnosticContextKey, f)
}

func diagnose(ctx context.Context, origin, format string, args ...interface{}) {
	f, ok := ctx.Value(diagnosticContextKey).(DiagnosticFunc)
	if !ok {
		return
	}
	f(Diagnostic{Timestamp: time.Now(), Origin: origin,
		Message: fmt.Sprintf(format, args...)})
}

// FetchDataset downloads the complete dataset behind the given URL - either a
// canonical "https://host/resource/xxxx-yyyy.csv" resource URL or a
// human-friendly URL ending in the dataset identifier - and returns it as a
// single table with calendar_date columns converted to time.Time values.
//
// The returned error wraps one of the package's sentinel errors, or a
// *TransportError for a non-2xx response anywhere in the pagination loop.
// No partial table is ever returned.
func FetchDataset(ctx context.Context, datasetURL string) (*table.Table, error) {
	t, _, err := Fetch(ctx, datasetURL)
	return t, err
}

// Fetch is FetchDataset that also returns the dataset's schema, as read from
// the first page's response headers.
func Fetch(ctx context.Context, datasetURL string) (*table.Table, Schema, error) {
	resolved, err := Resolve(datasetURL)
	if err != nil {
		return nil, nil, errors.Annotate(err, "failed to resolve dataset URL")
	}
	t, schema, err := fetchAll(ctx, resolved)
	if err != nil {
		return nil, nil, errors.Annotate(err, "failed to fetch dataset '%s'", resolved)
	}
	return t, schema, nil
}

// fetchAll runs the pagination loop over the resolved query URL. Each page
// after the first is requested at an offset equal to the number of rows
// accumulated so far; an empty page terminates the loop. The offset sequence
// depends on the accumulated row count, so pages cannot be fetched
// concurrently.
func fetchAll(ctx context.Context, resolved string) (*table.Table, Schema, error) {
	if err := checkResourceFormat(resolved); err != nil {
		return nil, nil, err
	}
	var total *table.Table
	var schema Schema
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, errors.Annotate(err, "fetch canceled before page %d", page)
		}
		uri := resolved
		if page > 1 {
			sep := "?"
			if strings.Contains(resolved, "?") {
				sep = "&"
			}
			uri = fmt.Sprintf("%s%soffset=%d", resolved, sep, total.NumRows())
		}
		t, header, err := fetchPage(ctx, uri)
		if err != nil {
			return nil, nil, errors.Annotate(err, "failed to fetch page %d", page)
		}
		if page == 1 {
			if schema, err = ReadSchema(header); err != nil {
				return nil, nil, errors.Annotate(err, "failed to read dataset schema")
			}
			total = t
		} else if err := total.Append(t); err != nil {
			return nil, nil, errors.Annotate(err, "page %d does not match the dataset columns", page)
		}
		logging.Infof(ctx, "fetched page %d with %d rows; %d rows total",
			page, t.NumRows(), total.NumRows())
		if t.NumRows() == 0 {
			break
		}
	}
	if err := NormalizeDates(total, schema); err != nil {
		return nil, nil, errors.Annotate(err, "failed to normalize date columns")
	}
	return total, schema, nil
}

// fetchPage issues one GET and parses the response into a page table.
func fetchPage(ctx context.Context, uri string) (*table.Table, http.Header, error) {
	resp, err := getTransport(ctx).Get(ctx, uri)
	if err != nil {
		diagnose(ctx, "get", "GET %s: %s", uri, err.Error())
		return nil, nil, errors.Annotate(err, "GET %s failed", uri)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errors.Annotate(err, "failed to read response body of %s", uri)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		terr := &TransportError{StatusCode: resp.StatusCode}
		var server struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &server) == nil {
			terr.Code = server.Code
			terr.Message = server.Message
		}
		diagnose(ctx, "get", "GET %s: %s", uri, terr.Error())
		return nil, nil, errors.Annotate(terr, "GET %s", uri)
	}
	t, err := ParsePage(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, nil, errors.Annotate(err, "failed to parse response of %s", uri)
	}
	return t, resp.Header, nil
}
