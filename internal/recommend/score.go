// Package recommend computes recommendation scores from engagement data
// and the calendar, and caches them per recipe.
package recommend

import (
	"math"
	"time"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

// RecencyBand multiplies the score when the last view is younger than
// Within.
type RecencyBand struct {
	Within     time.Duration
	Multiplier float64
}

// SeasonalRule scales recipes of one canonical category. Months not in
// ByMonth use Default.
type SeasonalRule struct {
	CategoryKey string
	ByMonth     map[time.Month]float64
	Default     float64
}

// Multiplier returns the factor for the given month.
func (r SeasonalRule) Multiplier(m time.Month) float64 {
	if f, ok := r.ByMonth[m]; ok {
		return f
	}
	return r.Default
}

// Weights holds every tunable of the score.
type Weights struct {
	Base           float64
	PerRatingStar  float64
	NeverViewed    float64
	Recency        []RecencyBand // checked in order, first match wins
	NostalgiaAfter time.Duration
	Nostalgia      float64
	PerMade        float64
	MadeCap        int
	Seasonal       []SeasonalRule
}

// DefaultWeights returns the standard scoring table.
func DefaultWeights() Weights {
	day := 24 * time.Hour
	return Weights{
		Base:          20,
		PerRatingStar: 10,
		NeverViewed:   30,
		Recency: []RecencyBand{
			{Within: 1 * day, Multiplier: 0.5},
			{Within: 3 * day, Multiplier: 0.7},
			{Within: 7 * day, Multiplier: 0.85},
		},
		NostalgiaAfter: 30 * day,
		Nostalgia:      10,
		PerMade:        0.5,
		MadeCap:        10,
		Seasonal: []SeasonalRule{
			{
				CategoryKey: "julekaker",
				ByMonth: map[time.Month]float64{
					time.November: 1.5,
					time.December: 1.5,
					time.January:  1.2,
				},
				Default: 0.05,
			},
			{CategoryKey: "slakteveiledning", Default: 0.01},
		},
	}
}

// Score computes the recommendation score of one recipe. The steps run in
// a fixed order: additive signals, the recency multiplier, the nostalgia
// and cook-count bonuses, then seasonal multipliers. The result is never
// negative. A nil recipe scores from engagement data alone, without
// seasonal rules.
func Score(r *domain.Recipe, rec domain.EngagementRecord, tax *domain.Taxonomy, now time.Time, w Weights) float64 {
	score := w.Base

	if rec.UserRating != nil {
		score += float64(*rec.UserRating) * w.PerRatingStar
	}

	if rec.LastViewed == nil {
		score += w.NeverViewed
	} else {
		since := now.Sub(*rec.LastViewed)
		for _, band := range w.Recency {
			if since < band.Within {
				score *= band.Multiplier
				break
			}
		}
		if since > w.NostalgiaAfter {
			score += w.Nostalgia
		}
	}

	made := rec.MadeCount()
	if made > w.MadeCap {
		made = w.MadeCap
	}
	score += float64(made) * w.PerMade

	if r != nil {
		category := categoryKey(r, tax)
		for _, rule := range w.Seasonal {
			if rule.CategoryKey == category {
				score *= rule.Multiplier(now.Month())
			}
		}
	}

	return math.Max(0, score)
}

func categoryKey(r *domain.Recipe, tax *domain.Taxonomy) string {
	if key, ok := tax.Canonical(domain.DimensionCategory, r.Category); ok {
		return key
	}
	return domain.CanonicalKey(r.Category)
}
