package display

import (
	"fmt"
	"strings"

	"github.com/hammamikhairi/recipebook/internal/catalog"
	"github.com/hammamikhairi/recipebook/internal/domain"
)

// tipPrefix marks an instruction line that is a serving tip rather than a
// step.
const tipPrefix = "TIPS:"

// FormatRecipe renders the detail view of one recipe, labelled with the
// catalog's UI text.
func FormatRecipe(r *domain.Recipe, rec domain.EngagementRecord, ui catalog.UIText, plain bool) string {
	pal := colorPalette
	if plain {
		pal = plainPalette
	}

	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	line(pal.title(r.Title))
	if r.Description != "" {
		line(r.Description)
	}
	source := r.Reference
	if p, ok := r.Page(); ok && p > 0 {
		source = joinNonEmpty(", ", source, fmt.Sprintf("%s %d", ui.T("recipe.page"), p))
	}
	if meta := joinNonEmpty(" · ", r.Category, r.Meal, r.Cuisine, source); meta != "" {
		line(pal.meta(meta))
	}

	status := []string{fmt.Sprintf("%s: %d", ui.T("recipe.made"), rec.MadeCount())}
	if rec.UserRating != nil {
		status = append([]string{pal.accent(stars(*rec.UserRating))}, status...)
	}
	if rec.Tagged {
		status = append(status, pal.accent("⚑ "+ui.T("recipe.mark")))
	}
	line(strings.Join(status, "   "))

	if len(r.Ingredients) > 0 {
		line("")
		line(pal.title(ui.T("recipe.ingredients")))
		for _, g := range r.Ingredients {
			if g.Title != "" {
				line("  " + pal.meta(g.Title))
			}
			for _, item := range g.Items {
				line("  - " + item)
			}
		}
	}

	if len(r.Instructions) > 0 {
		line("")
		line(pal.title(ui.T("recipe.instructions")))
		n := 0
		for _, g := range r.Instructions {
			if g.Title != "" {
				line("  " + pal.meta(g.Title))
			}
			for _, step := range g.Steps {
				if tip, ok := cutTip(step); ok {
					line("  " + pal.accent(ui.T("recipe.tip")) + " " + tip)
					continue
				}
				n++
				line(fmt.Sprintf("  %d. %s", n, step))
			}
		}
	}
	return b.String()
}

func cutTip(step string) (string, bool) {
	if len(step) < len(tipPrefix) || !strings.EqualFold(step[:len(tipPrefix)], tipPrefix) {
		return "", false
	}
	return strings.TrimSpace(step[len(tipPrefix):]), true
}
