package display

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/hammamikhairi/recipebook/internal/catalog/catalogtest"
	"github.com/hammamikhairi/recipebook/internal/domain"
)

type stubRecords map[string]domain.EngagementRecord

func (s stubRecords) Record(id string) domain.EngagementRecord {
	if r, ok := s[id]; ok {
		return r
	}
	return domain.NewEngagementRecord()
}

func rated(n int) domain.EngagementRecord {
	r := domain.NewEngagementRecord()
	r.UserRating = &n
	return r
}

func TestListFormat(t *testing.T) {
	cat := catalogtest.Load(t, "no")
	tacos := rated(4)
	tacos.MadeDates = []string{"2024-03-01", "2024-03-08"}
	tacos.Tagged = true

	var printed []string
	l := NewListRenderer(func(s string) { printed = append(printed, s) }, WithPlain())
	l.Bind(cat, stubRecords{"tacos": tacos, "eplekake": rated(5)})

	out := l.Format([]string{"tacos", "fiskesuppe", "lammestek", "eplekake"})
	goldie.New(t).Assert(t, "list", []byte(out))

	assert.Equal(t, "  no recipes match\n", l.Format(nil))
	assert.Empty(t, printed)
}

func TestListRendererSkipsRepeats(t *testing.T) {
	cat := catalogtest.Load(t, "no")
	var printed int
	l := NewListRenderer(func(string) { printed++ }, WithPlain())

	l.RenderRecipes([]string{"tacos"})
	assert.Zero(t, printed, "renders before Bind are dropped")

	l.Bind(cat, stubRecords{})
	l.RenderRecipes([]string{"tacos", "eplekake"})
	l.RenderRecipes([]string{"tacos", "eplekake"})
	assert.Equal(t, 1, printed)

	l.RenderRecipes([]string{"eplekake", "tacos"})
	assert.Equal(t, 2, printed)

	l.Show([]string{"eplekake", "tacos"})
	assert.Equal(t, 3, printed, "Show always prints")
}

func TestFormatRecipe(t *testing.T) {
	cat := catalogtest.Load(t, "no")
	g := goldie.New(t)

	fisk, err := cat.Get("fiskesuppe")
	assert.NoError(t, err)
	rec := rated(3)
	rec.MadeDates = []string{"2024-03-01"}
	g.Assert(t, "detail_fiskesuppe", []byte(FormatRecipe(fisk, rec, cat.UIText(), true)))

	pepper, err := cat.Get("pepperkaker")
	assert.NoError(t, err)
	tagged := domain.NewEngagementRecord()
	tagged.Tagged = true
	g.Assert(t, "detail_pepperkaker", []byte(FormatRecipe(pepper, tagged, cat.UIText(), true)))
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "★★☆☆☆", stars(2))
	assert.Equal(t, "★★★★★", stars(9))
	assert.Equal(t, "a · c", joinNonEmpty(" · ", "a", "", "c"))

	tip, ok := cutTip("Tips: server kald")
	assert.True(t, ok)
	assert.Equal(t, "server kald", tip)
	_, ok = cutTip("Kok i to timer.")
	assert.False(t, ok)
}
