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
	"fmt"

	"github.com/stockparfait/errors"
)

// Sentinel errors returned (possibly annotated) by this package. All of them
// are terminal for the current fetch; nothing is retried internally. Match
// with errors.Is.
var (
	// ErrInvalidURL - the input is not a well-formed URL with a scheme, host
	// and path.
	ErrInvalidURL = errors.Reason("invalid dataset URL")
	// ErrInvalidIdentifier - the URL's last path segment is not a 4x4 dataset
	// identifier.
	ErrInvalidIdentifier = errors.Reason("invalid dataset identifier")
	// ErrUnsupportedFormat - the resource format is neither CSV nor JSON.
	ErrUnsupportedFormat = errors.Reason("unsupported data format")
	// ErrMissingSchema - the X-SODA2-Fields / X-SODA2-Types headers are absent
	// or inconsistent.
	ErrMissingSchema = errors.Reason("missing schema headers")
	// ErrDateParse - a calendar_date cell does not match the column's detected
	// date format.
	ErrDateParse = errors.Reason("unparseable date value")
	// ErrInconsistentColumns - records within one JSON page carry different
	// field sets, which would silently misalign columns.
	ErrInconsistentColumns = errors.Reason("inconsistent record fields")
	// ErrTransport matches any *TransportError.
	ErrTransport = errors.Reason("transport failure")
)

// TransportError is returned when the server responds with a non-2xx HTTP
// status. Code and Message carry the server's structured error body when one
// was decodable.
type TransportError struct {
	StatusCode int
	Code       string
	Message    string
}

var _ error = &TransportError{}

func (e *TransportError) Error() string {
	s := fmt.Sprintf("HTTP %d", e.StatusCode)
	if e.Code != "" {
		s += fmt.Sprintf(" [%s]", e.Code)
	}
	if e.Message != "" {
		s += ": " + e.Message
	}
	return s
}

// Unwrap makes errors.Is(err, ErrTransport) match any TransportError.
func (e *TransportError) Unwrap() error { return ErrTransport }
