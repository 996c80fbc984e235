// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil extracts parameters from HTTP requests.

It hides the router's URL parameter API and the page/query parsing rules
shared by every listing endpoint.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/promptlib/internal/platform/validate"
	"github.com/taibuivan/promptlib/pkg/convert"
	"github.com/taibuivan/promptlib/pkg/pagination"
	"github.com/taibuivan/promptlib/pkg/query"
)

// DecodeJSON reads the request body into target.
// It returns [validate.ErrInvalidJSON] when decoding fails.
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Page reads the 1-indexed "page" query parameter.
// Missing, malformed or non-positive values fall back to 1; values above
// [pagination.MaxPage] are capped so each page has one cache key.
func Page(request *http.Request) int {
	return pagination.Clamp(convert.ToIntD(request.URL.Query().Get("page"), 1))
}

// SearchQuery returns the trimmed "q" query parameter.
func SearchQuery(request *http.Request) string {
	return strings.TrimSpace(request.URL.Query().Get("q"))
}

// List parses a comma-separated query parameter such as "tags=a,b".
func List(request *http.Request, name string) []string {
	return query.StringSlice(request.URL.Query().Get(name))
}
