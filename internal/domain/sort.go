package domain

import "fmt"

// SortOrder selects how the visible list is ordered. Tagged recipes are
// always placed first regardless of the order.
type SortOrder int

const (
	SortRecommendation SortOrder = iota
	SortRecipebook
	SortAlphabetical
	SortMadeCount
	SortRating
)

// String returns the wire name of the sort order.
func (s SortOrder) String() string {
	switch s {
	case SortRecommendation:
		return "recommendation"
	case SortRecipebook:
		return "recipebook"
	case SortAlphabetical:
		return "alphabetical"
	case SortMadeCount:
		return "madecount"
	case SortRating:
		return "rating"
	default:
		return "unknown"
	}
}

var sortNames = map[string]SortOrder{
	"recommendation": SortRecommendation,
	"recipebook":     SortRecipebook,
	"alphabetical":   SortAlphabetical,
	"madecount":      SortMadeCount,
	"rating":         SortRating,
}

// SortOrders lists every order in menu order.
var SortOrders = []SortOrder{SortRecommendation, SortRecipebook, SortAlphabetical, SortMadeCount, SortRating}

// ParseSortOrder converts a wire name into a SortOrder.
func ParseSortOrder(name string) (SortOrder, error) {
	if s, ok := sortNames[name]; ok {
		return s, nil
	}
	return SortRecommendation, fmt.Errorf("%w: %q", ErrUnknownSortOrder, name)
}
