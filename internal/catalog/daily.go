package catalog

import (
	"fmt"
	"time"
)

// DailyImage picks one image per calendar day. The choice is a stable hash
// of "year-month-day" with a zero-based month, so every client shows the
// same picture on the same day.
func DailyImage(images []string, day time.Time) string {
	if len(images) == 0 {
		return ""
	}
	key := fmt.Sprintf("%d-%d-%d", day.Year(), int(day.Month())-1, day.Day())

	var h int32
	for _, c := range key {
		h = (h << 5) - h + int32(c)
	}
	idx := int64(h)
	if idx < 0 {
		idx = -idx
	}
	return images[idx%int64(len(images))]
}
