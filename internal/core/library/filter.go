// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/taibuivan/promptlib/internal/platform/validate"
	"github.com/taibuivan/promptlib/pkg/slice"
)

// SortField selects the prompt attribute to order by.
type SortField string

// SortDirection selects ascending or descending order.
type SortDirection string

const (
	SortByTitle     SortField = "title"
	SortByCreatedAt SortField = "createdAt"

	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortOption orders a filtered prompt list.
type SortOption struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// DefaultSort shows the newest prompts first.
func DefaultSort() SortOption {
	return SortOption{Field: SortByCreatedAt, Direction: SortDesc}
}

// ParseSortOption validates field and direction. Empty values take the
// [DefaultSort] value.
func ParseSortOption(field, direction string) (SortOption, error) {
	option := DefaultSort()
	if field != "" {
		option.Field = SortField(field)
	}
	if direction != "" {
		option.Direction = SortDirection(direction)
	}

	validator := &validate.Validator{}
	validator.OneOf("sort", string(option.Field), string(SortByTitle), string(SortByCreatedAt)).
		OneOf("order", string(option.Direction), string(SortAsc), string(SortDesc))
	return option, validator.Err()
}

// matcher holds a normalised text query and a required tag set.
type matcher struct {
	query  string
	tagIDs []string
}

func newMatcher(query string, tagIDs []string) matcher {
	return matcher{query: strings.ToLower(strings.TrimSpace(query)), tagIDs: tagIDs}
}

// matches reports whether prompt contains the query in its title or markdown
// and carries every required tag.
func (m matcher) matches(prompt Prompt) bool {
	if m.query != "" &&
		!strings.Contains(strings.ToLower(prompt.Title), m.query) &&
		!strings.Contains(strings.ToLower(prompt.Markdown), m.query) {
		return false
	}

	for _, tagID := range m.tagIDs {
		if !slices.Contains(prompt.TagIDs, tagID) {
			return false
		}
	}
	return true
}

// Filter returns the prompts matching query and every tag in tagIDs, ordered
// by option. The input slice is left untouched.
//
// Titles compare with the Unicode collation order, so "apple" sorts before
// "Banana" and "Éclair" sorts next to "eclair".
func Filter(prompts []Prompt, query string, tagIDs []string, option SortOption) []Prompt {
	filtered := slice.Filter(prompts, newMatcher(query, tagIDs).matches)
	if filtered == nil {
		filtered = []Prompt{}
	}

	var compare func(a, b Prompt) int
	switch option.Field {
	case SortByTitle:
		collator := collate.New(language.Und)
		compare = func(a, b Prompt) int { return collator.CompareString(a.Title, b.Title) }
	default:
		compare = func(a, b Prompt) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}

	slices.SortStableFunc(filtered, func(a, b Prompt) int {
		if option.Direction == SortDesc {
			return -compare(a, b)
		}
		return compare(a, b)
	})
	return filtered
}
