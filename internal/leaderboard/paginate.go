package leaderboard

import (
	"runhub/internal/constants"
	"runhub/internal/domain"
)

// Paginate slices an ordered list into one page with metadata. Invalid page
// or limit values clamp to the defaults (1 and 10) rather than erroring; a
// page past the end yields empty results with the metadata intact.
func Paginate[T any](items []T, page, limit int) domain.Page[T] {
	if page < 1 {
		page = constants.DefaultPage
	}
	if limit < 1 {
		limit = constants.DefaultLimit
	}

	total := len(items)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return domain.Page[T]{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		Results:    items[start:end],
	}
}
