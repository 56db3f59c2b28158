package catalog

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

// recipesDocument is the top level of data/recipes-{lang}.json.
type recipesDocument struct {
	Recipes []recipeDocument `json:"recipes"`
}

type recipeDocument struct {
	ID           string          `json:"id" validate:"required"`
	Title        string          `json:"title" validate:"required"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Meal         string          `json:"meal"`
	Cuisine      string          `json:"cuisine"`
	Reference    string          `json:"reference"`
	PageNumber   *int            `json:"pageNumber" validate:"omitempty,gte=0"`
	Image        string          `json:"image"`
	Ingredients  ingredientList  `json:"ingredients"`
	Instructions instructionList `json:"instructions"`
}

func (d recipeDocument) toDomain() domain.Recipe {
	return domain.Recipe{
		ID:           d.ID,
		Title:        d.Title,
		Description:  d.Description,
		Category:     d.Category,
		Meal:         d.Meal,
		Cuisine:      d.Cuisine,
		Reference:    d.Reference,
		PageNumber:   d.PageNumber,
		Image:        d.Image,
		Ingredients:  d.Ingredients,
		Instructions: d.Instructions,
	}
}

// ingredientList decodes a list whose entries are either plain lines or
// {"group": ..., "items": [...]} blocks. Consecutive plain lines share one
// untitled group.
type ingredientList []domain.IngredientGroup

func (l *ingredientList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("ingredients: %w", err)
	}
	var out []domain.IngredientGroup
	for _, entry := range raw {
		var line string
		if err := json.Unmarshal(entry, &line); err == nil {
			if n := len(out); n > 0 && out[n-1].Title == "" {
				out[n-1].Items = append(out[n-1].Items, line)
			} else {
				out = append(out, domain.IngredientGroup{Items: []string{line}})
			}
			continue
		}
		var g struct {
			Group string   `json:"group"`
			Items []string `json:"items"`
		}
		if err := json.Unmarshal(entry, &g); err != nil {
			return fmt.Errorf("ingredient entry: %w", err)
		}
		out = append(out, domain.IngredientGroup{Title: g.Group, Items: g.Items})
	}
	*l = out
	return nil
}

// instructionList is the instruction counterpart of ingredientList, with
// "steps" in place of "items".
type instructionList []domain.InstructionGroup

func (l *instructionList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("instructions: %w", err)
	}
	var out []domain.InstructionGroup
	for _, entry := range raw {
		var step string
		if err := json.Unmarshal(entry, &step); err == nil {
			if n := len(out); n > 0 && out[n-1].Title == "" {
				out[n-1].Steps = append(out[n-1].Steps, step)
			} else {
				out = append(out, domain.InstructionGroup{Steps: []string{step}})
			}
			continue
		}
		var g struct {
			Group string   `json:"group"`
			Steps []string `json:"steps"`
		}
		if err := json.Unmarshal(entry, &g); err != nil {
			return fmt.Errorf("instruction entry: %w", err)
		}
		out = append(out, domain.InstructionGroup{Title: g.Group, Steps: g.Steps})
	}
	*l = out
	return nil
}
