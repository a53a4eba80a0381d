package product

import (
	"math"
	"strconv"
	"strings"
)

// ListingPlan is what PlanListing decides from the query string. An
// unpaginated plan returns every product.
type ListingPlan struct {
	Paginated bool
	Page      int
	Limit     int
}

// PlanListing reads the raw page and limit query values. Only the leading
// integer of each value counts, so "10abc" is 10 and "2.5" is 2. A limit
// that is missing, not a number, or not positive means "everything";
// otherwise page defaults to 1 and is clamped to at least 1. Limit has no
// upper bound.
func PlanListing(pageParam, limitParam string) ListingPlan {
	limit, ok := leadingInt(limitParam)
	if !ok || limit <= 0 {
		return ListingPlan{Page: 1}
	}

	page, ok := leadingInt(pageParam)
	if !ok || page < 1 {
		page = 1
	}

	return ListingPlan{Paginated: true, Page: page, Limit: limit}
}

// leadingInt parses an optional sign and the digits that follow it after
// leading whitespace, ignoring the rest. Values that overflow int are
// rejected.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Skip is the number of products before the requested page, saturating
// instead of overflowing for absurd page numbers.
func (p ListingPlan) Skip() int {
	if !p.Paginated || p.Page <= 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// TotalPages is ceil(total/limit); zero products means zero pages.
func TotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	l := int64(limit)
	return (total + l - 1) / l
}
