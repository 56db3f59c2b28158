package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

func TestLocationQuery(t *testing.T) {
	tests := []struct {
		name string
		loc  Location
		want string
	}{
		{"empty", Location{Language: "no"}, ""},
		{"default language omitted", Location{Language: "no", RecipeID: "tacos"}, "recipe=tacos"},
		{"fixed order", Location{
			Language: "pb",
			Filters:  []string{"category:supper", "meal:middag"},
			Search:   "grønn salat",
			RecipeID: "fiskesuppe",
		}, "lang=pb&filter=category:supper,meal:middag&search=gr%C3%B8nn%20salat&recipe=fiskesuppe"},
		{"reserved characters", Location{Search: "a&b=c"}, "search=a%26b%3Dc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.loc.Query("no"))
		})
	}
}

func TestParseLocation(t *testing.T) {
	got := ParseLocation("?recipe=fiskesuppe&search=Gr%C3%B8nn%20Salat&utm=x&filter=category:supper,broken,meal:middag&lang=pb")
	assert.Equal(t, Location{
		Language: "pb",
		Filters:  []string{"category:supper", "meal:middag"},
		Search:   "grønn salat",
		RecipeID: "fiskesuppe",
	}, got)

	assert.Equal(t, Location{}, ParseLocation(""))
	assert.Equal(t, "100%", ParseLocation("search=100%").Search, "malformed escapes stay literal")
}

func TestLocationRoundTrip(t *testing.T) {
	loc := Location{
		Language: "pb",
		Filters:  []string{"category:julekaker", "cuisine:meksikansk"},
		Search:   "fløte, laks",
		RecipeID: "eplekake",
	}
	assert.Equal(t, loc, ParseLocation(loc.Query("no")))
}

func TestLanguageFromQuery(t *testing.T) {
	supported := []string{"no", "pb"}
	assert.Equal(t, "pb", LanguageFromQuery("lang=pb", supported, "no"))
	assert.Equal(t, "no", LanguageFromQuery("lang=de", supported, "no"))
	assert.Equal(t, "no", LanguageFromQuery("", supported, "no"))
}

func TestCanonicalTranslation(t *testing.T) {
	tax := domain.NewTaxonomy([]domain.Recipe{
		{ID: "a", Category: "Hverdags mat", Meal: "Middag"},
	})

	got := toCanonical([]domain.FilterEntry{
		{Key: "category:Hverdags mat", Enabled: true},
		{Key: "meal:Middag", Enabled: false},
		{Key: "cuisine:Thai", Enabled: true},
	}, tax)
	assert.Equal(t, []string{"category:hverdagsmat", "cuisine:Thai"}, got)

	back := toLocalized([]string{"category:hverdagsmat", "meal:frokost", "nonsense"}, tax)
	assert.Equal(t, []domain.FilterEntry{
		{Key: "category:Hverdags mat", Enabled: true},
		{Key: "meal:frokost", Enabled: true},
	}, back)
}
