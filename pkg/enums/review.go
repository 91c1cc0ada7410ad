package enums

import "slices"

// ReviewFilter narrows review listings by author type.
type ReviewFilter string

const (
	ReviewFilterAll      ReviewFilter = "all"
	ReviewFilterCustomer ReviewFilter = "customer"
	ReviewFilterAdmin    ReviewFilter = "admin"
)

var reviewFilters = []ReviewFilter{ReviewFilterAll, ReviewFilterCustomer, ReviewFilterAdmin}

func (f ReviewFilter) IsValid() bool { return slices.Contains(reviewFilters, f) }

// ParseReviewFilter treats an empty value as "all".
func ParseReviewFilter(value string) (ReviewFilter, error) {
	if value == "" {
		return ReviewFilterAll, nil
	}
	return parseMember("review filter", value, reviewFilters)
}
