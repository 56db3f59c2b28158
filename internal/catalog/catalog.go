// Package catalog loads the localized recipe catalog and its interface
// text, and derives the taxonomy used for canonical filter keys.
package catalog

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

// Catalog is the loaded recipe set for one language. The app holds a single
// Catalog for its lifetime; a language switch swaps the contents in place
// so every component sees the new language. Safe for concurrent reads.
type Catalog struct {
	mu       sync.RWMutex
	lang     string
	recipes  []domain.Recipe
	byID     map[string]int
	taxonomy *domain.Taxonomy
	ui       UIText
}

// New builds a catalog from already-decoded recipes. Duplicate ids keep the
// first occurrence.
func New(lang string, recipes []domain.Recipe, ui UIText) *Catalog {
	c := &Catalog{
		lang: lang,
		byID: make(map[string]int, len(recipes)),
		ui:   ui,
	}
	for _, r := range recipes {
		if _, dup := c.byID[r.ID]; dup {
			continue
		}
		c.byID[r.ID] = len(c.recipes)
		c.recipes = append(c.recipes, r)
	}
	c.taxonomy = domain.NewTaxonomy(c.recipes)
	if c.ui == nil {
		c.ui = UIText{}
	}
	return c
}

// Swap replaces this catalog's contents with next's.
func (c *Catalog) Swap(next *Catalog) {
	next.mu.RLock()
	lang, recipes, byID, tax, ui := next.lang, next.recipes, next.byID, next.taxonomy, next.ui
	next.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lang, c.recipes, c.byID, c.taxonomy, c.ui = lang, recipes, byID, tax, ui
}

// Language returns the catalog language code.
func (c *Catalog) Language() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lang
}

// Len returns the number of recipes.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.recipes)
}

// Recipes returns every recipe in file order.
func (c *Catalog) Recipes() []domain.Recipe {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.recipes)
}

// IDs returns every recipe id in file order.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.recipes))
	for i := range c.recipes {
		out[i] = c.recipes[i].ID
	}
	return out
}

// Get returns the recipe with the given id.
func (c *Catalog) Get(id string) (*domain.Recipe, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("recipe %q: %w", id, domain.ErrNotFound)
	}
	r := c.recipes[i]
	return &r, nil
}

// FindByTitle returns the first recipe whose title matches, ignoring case.
func (c *Catalog) FindByTitle(title string) (*domain.Recipe, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.recipes {
		if strings.EqualFold(c.recipes[i].Title, title) {
			r := c.recipes[i]
			return &r, nil
		}
	}
	return nil, fmt.Errorf("recipe titled %q: %w", title, domain.ErrNotFound)
}

// Taxonomy returns the taxonomy derived from the loaded recipes.
func (c *Catalog) Taxonomy() *domain.Taxonomy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.taxonomy
}

// UIText returns the localized interface strings.
func (c *Catalog) UIText() UIText {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ui
}

// Filters returns the selectable values per filterable dimension, sorted.
func (c *Catalog) Filters() map[domain.Dimension][]string {
	tax := c.Taxonomy()
	out := make(map[domain.Dimension][]string, len(domain.FilterDimensions))
	for _, dim := range domain.FilterDimensions {
		out[dim] = tax.Values(dim)
	}
	return out
}
