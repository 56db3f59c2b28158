package domain

import (
	"slices"
	"time"
)

// DateLayout is the calendar-date format used for cook history.
const DateLayout = "2006-01-02"

// EngagementRecord is the user's data for one recipe. The JSON shape is the
// persisted schema and must stay stable.
type EngagementRecord struct {
	UserRating *int       `json:"userRating"`
	MadeDates  []string   `json:"madeDates"`
	LastViewed *time.Time `json:"lastViewed"`
	ViewCount  int        `json:"viewCount"`
	Favorite   bool       `json:"favorite"`
	Tagged     bool       `json:"tagged"`
	TaggedAt   *time.Time `json:"taggedAt"`
}

// NewEngagementRecord returns the zero record with an empty cook history.
func NewEngagementRecord() EngagementRecord {
	return EngagementRecord{MadeDates: []string{}}
}

// Rating returns the user rating, 0 when unrated.
func (r EngagementRecord) Rating() int {
	if r.UserRating == nil {
		return 0
	}
	return *r.UserRating
}

// MadeCount returns how many distinct days the recipe was cooked.
func (r EngagementRecord) MadeCount() int {
	return len(r.MadeDates)
}

// MadeOn reports whether the recipe was cooked on the given date.
func (r EngagementRecord) MadeOn(date string) bool {
	return slices.Contains(r.MadeDates, date)
}

// Viewed reports whether a view was ever recorded.
func (r EngagementRecord) Viewed() bool {
	return r.LastViewed != nil
}

// Clone returns a deep copy so callers can't mutate store-owned state.
func (r EngagementRecord) Clone() EngagementRecord {
	out := r
	if r.UserRating != nil {
		v := *r.UserRating
		out.UserRating = &v
	}
	if r.LastViewed != nil {
		v := *r.LastViewed
		out.LastViewed = &v
	}
	if r.TaggedAt != nil {
		v := *r.TaggedAt
		out.TaggedAt = &v
	}
	out.MadeDates = slices.Clone(r.MadeDates)
	if out.MadeDates == nil {
		out.MadeDates = []string{}
	}
	return out
}

// MadeResult is returned by the made-today toggle.
type MadeResult struct {
	MadeToday bool
	MadeCount int
}
