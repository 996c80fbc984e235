// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package query parses list-shaped URL query parameters.
package query

import (
	"strings"
)

// StringSlice parses a single comma-separated query string into a trimmed,
// de-duplicated slice of strings. Order of first appearance is kept.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}

	var res []string
	seen := make(map[string]struct{})
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean == "" {
			continue
		}
		if _, dup := seen[clean]; dup {
			continue
		}
		seen[clean] = struct{}{}
		res = append(res, clean)
	}
	return res
}
