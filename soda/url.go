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
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/stockparfait/errors"
)

// resourcePrefix is the path namespace of canonical dataset resource
// endpoints.
const resourcePrefix = "/resource/"

var fourByFour = regexp.MustCompile(`^[A-Za-z0-9]{4}-[A-Za-z0-9]{4}$`)

// ValidIdentifier checks whether s is a well-formed dataset identifier: four
// alphanumerics, a hyphen, four alphanumerics.
func ValidIdentifier(s string) bool {
	return len(s) == 9 && fourByFour.MatchString(s)
}

// Resolve validates a dataset URL and normalizes it into the canonical query
// URL of the dataset's CSV resource endpoint.
//
// A URL already under the /resource/ namespace is returned as-is, save for
// dropping a pre-existing offset parameter, which the pagination loop owns.
// Otherwise the last path segment must be a valid dataset identifier, and the
// path is rewritten to "/resource/<id>.csv", preserving the query string.
func Resolve(input string) (string, error) {
	u, err := url.Parse(input)
	if err != nil {
		return "", errors.Annotate(ErrInvalidURL, "cannot parse '%s': %s", input, err)
	}
	if u.Scheme == "" || u.Host == "" || u.Path == "" || u.Path == "/" {
		return "", errors.Annotate(ErrInvalidURL,
			"'%s' must have a scheme, host and path", input)
	}
	if q := u.Query(); q.Has("offset") {
		q.Del("offset")
		u.RawQuery = q.Encode()
	}
	if strings.HasPrefix(u.Path, resourcePrefix) {
		return u.String(), nil
	}
	id := path.Base(u.Path)
	if !ValidIdentifier(id) {
		return "", errors.Annotate(ErrInvalidIdentifier,
			"'%s' in URL '%s' is not a valid xxxx-yyyy dataset identifier", id, input)
	}
	u.Path = resourcePrefix + id + ".csv"
	return u.String(), nil
}

// checkResourceFormat verifies that the resolved URL points at a resource in
// one of the two supported formats, before any request is issued.
func checkResourceFormat(resolved string) error {
	u, err := url.Parse(resolved)
	if err != nil {
		return errors.Annotate(ErrInvalidURL, "cannot parse '%s': %s", resolved, err)
	}
	switch path.Ext(u.Path) {
	case ".csv", ".json":
		return nil
	}
	return errors.Annotate(ErrUnsupportedFormat,
		"resource '%s' is neither CSV nor JSON", resolved)
}
