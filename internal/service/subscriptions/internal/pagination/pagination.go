/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package pagination

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	typederrors "github.com/openshift-kni/oran-dsapi/internal/typed-errors"
)

// Query parameters and their defaults
const (
	SkipParam   = "skip"
	TopParam    = "top"
	DefaultSkip = 0
	DefaultTop  = 50

	// MaxValue bounds skip and top so that their sum can't overflow
	MaxValue = math.MaxInt32
)

// Window is the offset and size of a page
type Window struct {
	Skip int
	Top  int
}

// FromQuery reads the window from the query of the request. Absent values take their defaults and
// a top of zero is treated as absent.
func FromQuery(query url.Values) (Window, error) {
	window := Window{Skip: DefaultSkip, Top: DefaultTop}

	skip, err := parseParam(query, SkipParam)
	if err != nil {
		return window, err
	}
	if skip != nil {
		window.Skip = *skip
	}

	top, err := parseParam(query, TopParam)
	if err != nil {
		return window, err
	}
	if top != nil && *top > 0 {
		window.Top = *top
	}
	return window, nil
}

func parseParam(query url.Values, name string) (*int, error) {
	raw := query.Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 || value > MaxValue {
		return nil, typederrors.NewValidationError(err,
			"Query parameter %q must be an integer between 0 and %d", name, MaxValue)
	}
	return &value, nil
}

// Next returns the link to the page following the current one, or nil when the page read fewer
// rows than requested. A full page always gets a link, so a result whose size is a multiple of top
// ends with an empty page.
func Next(r *http.Request, window Window, rows int) *string {
	if rows != window.Top {
		return nil
	}

	query := r.URL.Query()
	query.Set(SkipParam, strconv.Itoa(window.Skip+window.Top))
	query.Set(TopParam, strconv.Itoa(window.Top))

	next := url.URL{
		Scheme:   scheme(r),
		Host:     host(r),
		Path:     r.URL.Path,
		RawQuery: query.Encode(),
	}
	link := next.String()
	return &link
}

func scheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		proto, _, _ = strings.Cut(proto, ",")
		return strings.TrimSpace(proto)
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func host(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-Host"); forwarded != "" {
		forwarded, _, _ = strings.Cut(forwarded, ",")
		return strings.TrimSpace(forwarded)
	}
	return r.Host
}

// String is used in log messages
func (w Window) String() string {
	return fmt.Sprintf("skip=%d top=%d", w.Skip, w.Top)
}
