package domain

import (
	"sort"
	"strings"
	"unicode"
)

// Dimension names a recipe attribute that can be filtered on or looked up
// in the taxonomy.
type Dimension string

const (
	DimensionCategory Dimension = "category"
	DimensionMeal     Dimension = "meal"
	DimensionCuisine  Dimension = "cuisine"
	DimensionSource   Dimension = "source"
)

// FilterDimensions are the dimensions an ActiveFilterSet may contain, in
// pipeline order.
var FilterDimensions = []Dimension{DimensionCategory, DimensionMeal, DimensionCuisine}

// ParseDimension returns the filterable dimension named s.
func ParseDimension(s string) (Dimension, bool) {
	for _, d := range FilterDimensions {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

// Value returns the recipe's display value for this dimension.
func (d Dimension) Value(r *Recipe) string {
	switch d {
	case DimensionCategory:
		return r.Category
	case DimensionMeal:
		return r.Meal
	case DimensionCuisine:
		return r.Cuisine
	case DimensionSource:
		return r.Reference
	default:
		return ""
	}
}

// CanonicalKey derives the language-independent key for a display string:
// lower-cased with all whitespace and hyphens removed.
func CanonicalKey(display string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, strings.ToLower(display))
}

// Taxonomy maps canonical keys to the display strings of the currently
// loaded language, per dimension. It is rebuilt on every catalog load.
type Taxonomy struct {
	entries map[Dimension]map[string]string
}

// NewTaxonomy derives the taxonomy from the recipes. When two display
// strings collapse to the same key, the later recipe wins.
func NewTaxonomy(recipes []Recipe) *Taxonomy {
	t := &Taxonomy{entries: map[Dimension]map[string]string{
		DimensionCategory: {},
		DimensionMeal:     {},
		DimensionCuisine:  {},
		DimensionSource:   {},
	}}
	for i := range recipes {
		for dim, m := range t.entries {
			if v := dim.Value(&recipes[i]); v != "" {
				m[CanonicalKey(v)] = v
			}
		}
	}
	return t
}

// Localize returns the display string for a canonical key.
func (t *Taxonomy) Localize(dim Dimension, key string) (string, bool) {
	if t == nil {
		return "", false
	}
	v, ok := t.entries[dim][key]
	return v, ok
}

// Canonical returns the canonical key currently mapped to a display string.
// A display string whose key was taken over by a different spelling has no
// canonical key.
func (t *Taxonomy) Canonical(dim Dimension, display string) (string, bool) {
	if t == nil {
		return "", false
	}
	key := CanonicalKey(display)
	if v, ok := t.entries[dim][key]; ok && v == display {
		return key, true
	}
	return "", false
}

// Values returns the sorted display strings for a dimension.
func (t *Taxonomy) Values(dim Dimension) []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.entries[dim]))
	for _, v := range t.entries[dim] {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of keys in a dimension.
func (t *Taxonomy) Len(dim Dimension) int {
	if t == nil {
		return 0
	}
	return len(t.entries[dim])
}
