package product

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanListing(t *testing.T) {
	tests := []struct {
		name  string
		page  string
		limit string
		want  ListingPlan
	}{
		{name: "no params", want: ListingPlan{Page: 1}},
		{name: "limit only", limit: "10", want: ListingPlan{Paginated: true, Page: 1, Limit: 10}},
		{name: "page and limit", page: "3", limit: "5", want: ListingPlan{Paginated: true, Page: 3, Limit: 5}},
		{name: "page without limit", page: "2", want: ListingPlan{Page: 1}},
		{name: "zero limit", page: "2", limit: "0", want: ListingPlan{Page: 1}},
		{name: "negative limit", limit: "-4", want: ListingPlan{Page: 1}},
		{name: "non-numeric limit", limit: "ten", want: ListingPlan{Page: 1}},
		{name: "page zero clamps", page: "0", limit: "10", want: ListingPlan{Paginated: true, Page: 1, Limit: 10}},
		{name: "negative page clamps", page: "-7", limit: "10", want: ListingPlan{Paginated: true, Page: 1, Limit: 10}},
		{name: "non-numeric page", page: "abc", limit: "10", want: ListingPlan{Paginated: true, Page: 1, Limit: 10}},
		{name: "large limit allowed", limit: "100000", want: ListingPlan{Paginated: true, Page: 1, Limit: 100000}},
		{name: "limit with trailing text", limit: "10abc", want: ListingPlan{Paginated: true, Page: 1, Limit: 10}},
		{name: "fractional limit truncates", page: "2.9", limit: "2.5", want: ListingPlan{Paginated: true, Page: 2, Limit: 2}},
		{name: "padded limit", limit: " 7", want: ListingPlan{Paginated: true, Page: 1, Limit: 7}},
		{name: "signed limit", limit: "+3", want: ListingPlan{Paginated: true, Page: 1, Limit: 3}},
		{name: "sign without digits", limit: "-", want: ListingPlan{Page: 1}},
		{name: "fraction without integer part", limit: ".5", want: ListingPlan{Page: 1}},
		{name: "overflowing limit", limit: "99999999999999999999999", want: ListingPlan{Page: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlanListing(tt.page, tt.limit))
		})
	}
}

func TestListingPlan_Skip(t *testing.T) {
	assert.Equal(t, 0, ListingPlan{Page: 1}.Skip())
	assert.Equal(t, 0, ListingPlan{Paginated: true, Page: 1, Limit: 10}.Skip())
	assert.Equal(t, 20, ListingPlan{Paginated: true, Page: 3, Limit: 10}.Skip())
	assert.Equal(t, math.MaxInt, ListingPlan{Paginated: true, Page: math.MaxInt, Limit: 10}.Skip())
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, int64(0), TotalPages(0, 10))
	assert.Equal(t, int64(1), TotalPages(1, 10))
	assert.Equal(t, int64(1), TotalPages(10, 10))
	assert.Equal(t, int64(2), TotalPages(11, 10))
	assert.Equal(t, int64(3), TotalPages(7, 3))
	assert.Equal(t, int64(0), TotalPages(7, 0))
}
