// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides the page arithmetic shared by directory listings.
//
// Pages are 1-indexed and sizes are fixed per listing (authors, author
// prompts, search results); clients only choose the page number.
package pagination

// MaxPage is the highest page number served. Larger requests resolve to it so
// the offset never overflows.
const MaxPage = 10_000

// Window is a resolved LIMIT/OFFSET pair for one page of a listing.
type Window struct {
	Page   int
	Limit  int
	Offset int
}

// For resolves the window for page at the given page size.
// Pages below 1 are treated as page 1 and pages above [MaxPage] as MaxPage.
func For(page, size int) Window {
	page = Clamp(page)
	return Window{
		Page:   page,
		Limit:  size,
		Offset: (page - 1) * size,
	}
}

// Clamp bounds page to [1, MaxPage].
func Clamp(page int) int {
	return min(max(page, 1), MaxPage)
}

// TotalPages returns ceil(total / size), or 0 when there is nothing to page.
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
