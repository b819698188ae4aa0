package utils

import "strconv"

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// Window is one page cut out of an already materialised collection.
type Window struct {
	Page       int
	Limit      int
	Start      int
	End        int
	TotalCount int
	TotalPages int
}

// ParsePageParams reads page/limit query values.
// Absent, non-numeric or zero values fall back to the defaults; page is clamped to >= 1
// and a negative limit falls back to DefaultLimit.
func ParsePageParams(rawPage, rawLimit string) (page, limit int) {
	page = atoiOr(rawPage, DefaultPage)
	limit = atoiOr(rawLimit, DefaultLimit)
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return page, limit
}

// Paginate computes the slice bounds [Start, End) of page within total items.
// Pages past the end yield an empty window (Start == End == total).
func Paginate(total, page, limit int) Window {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	// Bounds are derived without multiplying past total, so any limit is safe.
	start := total
	if page-1 <= total/limit {
		start = min((page-1)*limit, total)
	}
	end := start + min(limit, total-start)

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	return Window{
		Page:       page,
		Limit:      limit,
		Start:      start,
		End:        end,
		TotalCount: total,
		TotalPages: totalPages,
	}
}

func atoiOr(raw string, def int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v == 0 {
		return def
	}
	return v
}
