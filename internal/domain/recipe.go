// Package domain defines the core types and interfaces for the recipe book.
// All other packages depend on domain; domain depends on nothing.
package domain

// Recipe is a single catalog entry. Recipes are immutable once the catalog
// is loaded, and the ID is the same across every language of the catalog.
type Recipe struct {
	ID           string
	Title        string
	Description  string
	Category     string // localized display string
	Meal         string
	Cuisine      string
	Reference    string // source book or person
	PageNumber   *int   // nil when the recipe is not in the printed book
	Image        string
	Ingredients  []IngredientGroup
	Instructions []InstructionGroup
}

// IngredientGroup is a titled block of ingredient lines. Ungrouped lines
// live in a group with an empty title.
type IngredientGroup struct {
	Title string
	Items []string
}

// InstructionGroup is a titled block of instruction steps.
type InstructionGroup struct {
	Title string
	Steps []string
}

// IngredientLines returns every ingredient line, flattening groups in order.
func (r *Recipe) IngredientLines() []string {
	var out []string
	for _, g := range r.Ingredients {
		out = append(out, g.Items...)
	}
	return out
}

// Page returns the page number, or ok=false when the recipe has none.
func (r *Recipe) Page() (int, bool) {
	if r.PageNumber == nil {
		return 0, false
	}
	return *r.PageNumber, true
}
