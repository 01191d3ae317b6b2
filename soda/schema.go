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
	"encoding/json"
	"net/http"
	"strings"

	"github.com/stockparfait/errors"
)

// Response headers carrying the dataset schema: parallel JSON arrays of field
// names and of their declared types.
const (
	fieldsHeader = "X-SODA2-Fields"
	typesHeader  = "X-SODA2-Types"
)

// TypeTag is a column type as declared by the API. Only CalendarDate carries
// behavior in this package; every other tag passes through untouched.
type TypeTag string

// Known type tags. The server vocabulary is larger (text, number, money,
// checkbox, location, ...); unknown tags are preserved as-is.
const (
	CalendarDate = TypeTag("calendar_date")
	Text         = TypeTag("text")
	Number       = TypeTag("number")
)

// Schema maps an API field name to its declared type tag. It is built once
// from the first page of a dataset query and never recomputed; the API keeps
// the schema stable across pagination.
type Schema map[string]TypeTag

// FieldName converts a human-readable column name, as it appears in CSV
// headers, to the normalized API field name: lower case, '.' replaced by '_'.
func FieldName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, ".", "_"))
}

// Type looks up the declared type of a column by its (human-readable or
// already normalized) name. Returns "" for columns absent from the schema.
func (s Schema) Type(column string) TypeTag {
	return s[FieldName(column)]
}

// ReadSchema extracts the dataset schema from a query response's headers.
// Field names are taken exactly as provided; the server sends them already
// normalized.
func ReadSchema(h http.Header) (Schema, error) {
	fjs := h.Get(fieldsHeader)
	tjs := h.Get(typesHeader)
	if fjs == "" || tjs == "" {
		return nil, errors.Annotate(ErrMissingSchema,
			"response carries no %s / %s headers", fieldsHeader, typesHeader)
	}
	var fields []string
	if err := json.Unmarshal([]byte(fjs), &fields); err != nil {
		return nil, errors.Annotate(ErrMissingSchema,
			"failed to parse %s header '%s': %s", fieldsHeader, fjs, err)
	}
	var types []TypeTag
	if err := json.Unmarshal([]byte(tjs), &types); err != nil {
		return nil, errors.Annotate(ErrMissingSchema,
			"failed to parse %s header '%s': %s", typesHeader, tjs, err)
	}
	if len(fields) != len(types) {
		return nil, errors.Annotate(ErrMissingSchema,
			"%d fields but %d types", len(fields), len(types))
	}
	s := make(Schema, len(fields))
	for i, f := range fields {
		s[f] = types[i]
	}
	return s, nil
}
