package catalog_test

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/recipebook/internal/catalog"
	"github.com/hammamikhairi/recipebook/internal/catalog/catalogtest"
	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

func TestLoadFixture(t *testing.T) {
	c := catalogtest.Load(t, "no")

	assert.Equal(t, "no", c.Language())
	assert.Equal(t, 6, c.Len())
	assert.Equal(t, []string{"fiskesuppe", "ertesuppe", "pepperkaker", "lammestek", "tacos", "eplekake"}, c.IDs())

	r, err := c.Get("fiskesuppe")
	require.NoError(t, err)
	assert.Equal(t, "Fiskesuppe", r.Title)
	page, ok := r.Page()
	assert.True(t, ok)
	assert.Equal(t, 12, page)

	require.Len(t, r.Ingredients, 2)
	assert.Equal(t, "", r.Ingredients[0].Title)
	assert.Equal(t, []string{"400 g torsk", "200 g laks"}, r.Ingredients[0].Items)
	assert.Equal(t, "Kraft", r.Ingredients[1].Title)
	assert.Len(t, r.IngredientLines(), 4)

	p, err := c.Get("pepperkaker")
	require.NoError(t, err)
	require.Len(t, p.Instructions, 2)
	assert.Equal(t, "Steking", p.Instructions[1].Title)

	_, err = c.Get("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	l, err := c.Get("lammestek")
	require.NoError(t, err)
	_, ok = l.Page()
	assert.False(t, ok)
}

func TestFindByTitleIgnoresCase(t *testing.T) {
	c := catalogtest.Load(t, "no")

	r, err := c.FindByTitle("ærtesuppe")
	require.NoError(t, err)
	assert.Equal(t, "ertesuppe", r.ID)

	_, err = c.FindByTitle("lutefisk")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTaxonomyAndFilters(t *testing.T) {
	c := catalogtest.Load(t, "no")
	tax := c.Taxonomy()

	v, ok := tax.Localize(domain.DimensionCategory, "slakteveiledning")
	require.True(t, ok)
	assert.Equal(t, "Slakteveiledning", v)

	key, ok := tax.Canonical(domain.DimensionCuisine, "Meksikansk")
	require.True(t, ok)
	assert.Equal(t, "meksikansk", key)

	assert.Equal(t, []string{"Dessert", "Lunsj", "Middag"}, c.Filters()[domain.DimensionMeal])
	assert.Equal(t, 2, tax.Len(domain.DimensionSource))
}

func TestUIText(t *testing.T) {
	c := catalogtest.Load(t, "pb")
	ui := c.UIText()

	assert.Equal(t, "Avaliação", ui.T("sort.rating"))
	assert.Equal(t, "Categoria", ui.T("filter.categories.category"))
	assert.Equal(t, "sort.nothing", ui.T("sort.nothing"))
	assert.Equal(t, "filter", ui.T("filter"), "non-string leaf falls back to the path")
}

func TestLoadFallsBackToDefault(t *testing.T) {
	fsys := fstest.MapFS{
		"ui-no.json":      {Data: []byte(`{"header":{"title":"Kokebok"}}`)},
		"recipes-no.json": {Data: []byte(`{"recipes":[{"id":"a","title":"A"}]}`)},
		"ui-pb.json":      {Data: []byte(`{"header":{"title":"Livro"}}`)},
		"recipes-pb.json": {Data: []byte(`{not json`)},
	}
	l := catalog.NewLoader(fsys, "no", []string{"no", "pb"}, logger.Nop())

	c, err := l.Load(context.Background(), "pb")
	require.NoError(t, err)
	assert.Equal(t, "no", c.Language())
	assert.Equal(t, "Kokebok", c.UIText().T("header.title"))
}

func TestLoadUnsupportedUsesDefault(t *testing.T) {
	c, err := catalogtest.Loader(logger.Nop()).Load(context.Background(), "sv")
	require.NoError(t, err)
	assert.Equal(t, "no", c.Language())
}

func TestLoadFailsWhenDefaultBroken(t *testing.T) {
	fsys := fstest.MapFS{
		"ui-no.json": {Data: []byte(`{}`)},
	}
	l := catalog.NewLoader(fsys, "no", []string{"no", "pb"}, logger.Nop())

	_, err := l.Load(context.Background(), "pb")
	assert.ErrorIs(t, err, catalog.ErrLoadFailed)
}

func TestLoadSkipsInvalidAndDuplicateRecipes(t *testing.T) {
	fsys := fstest.MapFS{
		"ui-no.json": {Data: []byte(`{}`)},
		"recipes-no.json": {Data: []byte(`{"recipes":[
			{"id":"a","title":"A"},
			{"id":"","title":"no id"},
			{"id":"a","title":"dup"},
			{"id":"b","title":"B","pageNumber":-3}
		]}`)},
	}
	l := catalog.NewLoader(fsys, "no", []string{"no"}, logger.Nop())

	c, err := l.Load(context.Background(), "no")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, c.IDs())
}

func TestSwapReplacesContents(t *testing.T) {
	c := catalogtest.Load(t, "no")
	c.Swap(catalogtest.Load(t, "pb"))

	assert.Equal(t, "pb", c.Language())
	r, err := c.Get("eplekake")
	require.NoError(t, err)
	assert.Equal(t, "Bolo de maçã", r.Title)
	_, ok := c.Taxonomy().Localize(domain.DimensionMeal, "sobremesa")
	assert.True(t, ok)
}

func TestDailyImage(t *testing.T) {
	images := []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg", "f.jpg"}

	christmasEve := time.Date(2024, time.December, 24, 8, 0, 0, 0, time.Local)
	assert.Equal(t, "c.jpg", catalog.DailyImage(images, christmasEve))
	assert.Equal(t, "c.jpg", catalog.DailyImage(images, christmasEve.Add(10*time.Hour)), "stable within a day")

	newYear := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.Local)
	assert.Equal(t, "a.jpg", catalog.DailyImage(images, newYear))

	assert.Equal(t, "", catalog.DailyImage(nil, newYear))
}
