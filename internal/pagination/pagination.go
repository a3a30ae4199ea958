// Package pagination derives page and cursor metadata for a collection page.
package pagination

import (
	"github.com/rpattn/contentql/internal/domain"
)

// Calculate computes pagination metadata for a page starting at skip with the
// given page size. It panics if limit is zero; callers validate limit first.
//
// The current page is derived from the distance to the end of the collection,
// totalPages - ceil((total-skip)/limit) + 1, and clamped to [1, totalPages].
// This differs from the floor-based totalPages - floor((total-skip)/limit)
// when total-skip is an exact multiple of limit, where the floor form is one
// page short (32 items, skip 0, limit 4 would be page 0).
func Calculate(total, skip, limit int) domain.PaginationInfo {
	totalPages := ceilDiv(total, limit)
	currentPage := totalPages - ceilDiv(total-skip, limit) + 1

	lastPage := totalPages
	if lastPage < 1 {
		lastPage = 1
	}
	if currentPage < 1 {
		currentPage = 1
	}
	if currentPage > lastPage {
		currentPage = lastPage
	}

	info := domain.PaginationInfo{
		Total:       total,
		PageSize:    limit,
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		HasNext:     totalPages > currentPage,
		HasPrev:     currentPage > 1,
		Cursor:      skip,
		NextSkip:    skip,
		PrevSkip:    skip,
	}
	if info.HasNext {
		info.NextSkip = skip + limit
	}
	if info.HasPrev {
		info.PrevSkip = skip - limit
	}
	return info
}

// CountOnly returns metadata for a page fetched with a zero limit, where only
// the total is known.
func CountOnly(total, skip int) domain.PaginationInfo {
	return domain.PaginationInfo{
		Total:    total,
		Cursor:   skip,
		NextSkip: skip,
		PrevSkip: skip,
	}
}

// ceilDiv divides rounding toward positive infinity.
func ceilDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}
