package filter

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

// query is a snapshot of the engine state that drives one ranking pass.
type query struct {
	filters   *domain.ActiveFilterSet
	search    string
	order     domain.SortOrder
	collation language.Tag
}

type enriched struct {
	recipe *domain.Recipe
	score  float64
	rating int
	made   int
	page   int
}

// rank runs the filter pipeline and returns the ordered ids: tagged
// recipes first by tag time, newest first, then the rest in the requested
// order.
func rank(recipes []domain.Recipe, q query, records Records, scores Scores) []string {
	matched := make([]*domain.Recipe, 0, len(recipes))
	for i := range recipes {
		if passesFilters(&recipes[i], q.filters) {
			matched = append(matched, &recipes[i])
		}
	}

	if q.search != "" {
		fold := cases.Fold()
		needle := fold.String(q.search)
		kept := matched[:0]
		for _, r := range matched {
			if matchesSearch(r, needle, fold) {
				kept = append(kept, r)
			}
		}
		matched = kept
	}

	type taggedRecipe struct {
		id       string
		taggedAt time.Time
	}
	var tagged []taggedRecipe
	var rest []enriched
	for _, r := range matched {
		rec := records.Get(r.ID)
		if rec.Tagged {
			var at time.Time
			if rec.TaggedAt != nil {
				at = *rec.TaggedAt
			}
			tagged = append(tagged, taggedRecipe{id: r.ID, taggedAt: at})
			continue
		}
		page := math.MaxInt
		if p, ok := r.Page(); ok && p != 0 {
			page = p
		}
		rest = append(rest, enriched{
			recipe: r,
			score:  scores.GetScore(r.ID),
			rating: rec.Rating(),
			made:   rec.MadeCount(),
			page:   page,
		})
	}

	slices.SortStableFunc(tagged, func(a, b taggedRecipe) int {
		return b.taggedAt.Compare(a.taggedAt)
	})
	slices.SortStableFunc(rest, comparator(q))

	out := make([]string, 0, len(matched))
	for _, t := range tagged {
		out = append(out, t.id)
	}
	for _, e := range rest {
		out = append(out, e.recipe.ID)
	}
	return out
}

// passesFilters applies OR within a dimension and AND across dimensions.
// A dimension with no enabled value doesn't restrict.
func passesFilters(r *domain.Recipe, filters *domain.ActiveFilterSet) bool {
	for _, dim := range domain.FilterDimensions {
		values := filters.EnabledValues(dim)
		if len(values) > 0 && !slices.Contains(values, dim.Value(r)) {
			return false
		}
	}
	return true
}

func matchesSearch(r *domain.Recipe, needle string, fold cases.Caser) bool {
	if strings.Contains(fold.String(r.Title), needle) {
		return true
	}
	for _, line := range r.IngredientLines() {
		if strings.Contains(fold.String(line), needle) {
			return true
		}
	}
	return false
}

func byPage(a, b enriched) int {
	if c := cmp.Compare(a.page, b.page); c != 0 {
		return c
	}
	return strings.Compare(a.recipe.ID, b.recipe.ID)
}

func byRecommendation(a, b enriched) int {
	if c := cmp.Compare(b.score, a.score); c != 0 {
		return c
	}
	return byPage(a, b)
}

func comparator(q query) func(a, b enriched) int {
	switch q.order {
	case domain.SortRecipebook:
		return byPage
	case domain.SortAlphabetical:
		col := collate.New(q.collation)
		return func(a, b enriched) int {
			return col.CompareString(a.recipe.Title, b.recipe.Title)
		}
	case domain.SortMadeCount:
		return func(a, b enriched) int {
			if c := cmp.Compare(b.made, a.made); c != 0 {
				return c
			}
			return byRecommendation(a, b)
		}
	case domain.SortRating:
		return func(a, b enriched) int {
			if c := cmp.Compare(b.rating, a.rating); c != 0 {
				return c
			}
			return byRecommendation(a, b)
		}
	default:
		return byRecommendation
	}
}
