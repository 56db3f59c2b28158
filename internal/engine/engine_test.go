package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/hammamikhairi/recipebook/internal/catalog"
	"github.com/hammamikhairi/recipebook/internal/catalog/catalogtest"
	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/engagement"
	"github.com/hammamikhairi/recipebook/internal/logger"
	"github.com/hammamikhairi/recipebook/internal/navigation"
	"github.com/hammamikhairi/recipebook/internal/storage"
	"github.com/hammamikhairi/recipebook/internal/timer"
)

var start = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.Local)

// Under recommendation order in March, every never-viewed recipe scores
// 50 except the seasonal ones, so ties fall back to book order.
var initialOrder = []string{"ertesuppe", "fiskesuppe", "tacos", "eplekake", "pepperkaker", "lammestek"}

type fixture struct {
	app     *App
	clock   *timer.ManualClock
	kv      *storage.MemoryKV
	history *navigation.MemoryHistory
}

func setupApp(t *testing.T, loader *catalog.Loader, query string, opts ...Option) *fixture {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	f := &fixture{
		clock:   timer.NewManualClock(start),
		kv:      storage.NewMemoryKV(log),
		history: navigation.NewMemoryHistory(query),
	}
	app, err := New(context.Background(), Deps{
		Loader:  loader,
		KV:      f.kv,
		History: f.history,
		Clock:   f.clock,
		Log:     log,
	}, query, opts...)
	if err != nil {
		t.Fatalf("building app: %v", err)
	}
	t.Cleanup(app.Close)
	f.app = app
	return f
}

func setupFixtureApp(t *testing.T, query string, opts ...Option) *fixture {
	t.Helper()
	return setupApp(t, catalogtest.Loader(logger.Nop()), query, opts...)
}

func equalIDs(t *testing.T, want, got []string) {
	t.Helper()
	if strings.Join(want, ",") != strings.Join(got, ",") {
		t.Fatalf("ids:\n  want %v\n  got  %v", want, got)
	}
}

// dessertLoader serves a two-recipe catalog with no engagement data.
func dessertLoader() *catalog.Loader {
	fsys := fstest.MapFS{
		"ui-no.json": {Data: []byte(`{}`)},
		"recipes-no.json": {Data: []byte(`{"recipes": [
			{"id": "a1", "title": "Sjokoladekake", "category": "Dessert", "pageNumber": 5},
			{"id": "a2", "title": "Riskrem", "category": "Dessert", "pageNumber": 2}
		]}`)},
	}
	return catalog.NewLoader(fsys, "no", []string{"no"}, logger.Nop())
}

func TestNewRequiresStorage(t *testing.T) {
	_, err := New(context.Background(), Deps{Loader: dessertLoader()}, "")
	if err == nil {
		t.Fatal("expected error without a key/value store")
	}
}

func TestNewFailsWhenCatalogMissing(t *testing.T) {
	loader := catalog.NewLoader(fstest.MapFS{}, "no", []string{"no"}, logger.Nop())
	_, err := New(context.Background(), Deps{Loader: loader, KV: storage.NewMemoryKV(logger.Nop())}, "")
	if !errors.Is(err, catalog.ErrLoadFailed) {
		t.Fatalf("expected ErrLoadFailed, got %v", err)
	}
}

func TestNewReplaysLocation(t *testing.T) {
	f := setupFixtureApp(t, "recipe=fiskesuppe&lang=pb&filter=category:supper")
	st := f.app.Status()

	if st.Language != "pb" {
		t.Fatalf("expected pb, got %q", st.Language)
	}
	if st.OpenRecipe != "fiskesuppe" {
		t.Fatalf("expected fiskesuppe open, got %q", st.OpenRecipe)
	}
	equalIDs(t, []string{"ertesuppe", "fiskesuppe"}, st.Visible)
	if want := "lang=pb&filter=category:supper&recipe=fiskesuppe"; st.Query != want {
		t.Fatalf("query: want %q, got %q", want, st.Query)
	}
	if f.history.Len() != 1 {
		t.Fatalf("expected only the baseline entry, got %d", f.history.Len())
	}
}

func TestScenarioBookOrder(t *testing.T) {
	f := setupApp(t, dessertLoader(), "")
	equalIDs(t, []string{"a2", "a1"}, f.app.ChangeSortOrder(domain.SortRecipebook))
}

func TestScenarioTaggedFirst(t *testing.T) {
	ctx := context.Background()
	f := setupApp(t, dessertLoader(), "")

	if err := f.app.Rate(ctx, "a1", 5); err != nil {
		t.Fatalf("rate: %v", err)
	}
	res, err := f.app.ToggleMadeToday(ctx, "a1")
	if err != nil || !res.MadeToday || res.MadeCount != 1 {
		t.Fatalf("first toggle: %+v, %v", res, err)
	}
	res, err = f.app.ToggleMadeToday(ctx, "a1")
	if err != nil || res.MadeToday || res.MadeCount != 0 {
		t.Fatalf("second toggle: %+v, %v", res, err)
	}

	// The re-sort is held back under recommendation order.
	equalIDs(t, []string{"a2", "a1"}, f.app.Visible())
	f.clock.Advance(filterDelay)
	equalIDs(t, []string{"a1", "a2"}, f.app.Visible())

	tagged, err := f.app.ToggleTag(ctx, "a2")
	if err != nil || !tagged {
		t.Fatalf("tag: %v, %v", tagged, err)
	}
	f.clock.Advance(filterDelay)
	equalIDs(t, []string{"a2", "a1"}, f.app.Visible())
	if f.app.Score("a1") <= f.app.Score("a2") {
		t.Fatalf("a1 should still outscore a2: %v vs %v", f.app.Score("a1"), f.app.Score("a2"))
	}
}

const filterDelay = 10 * time.Second

func TestViewFlushReSorts(t *testing.T) {
	f := setupFixtureApp(t, "")
	equalIDs(t, initialOrder, f.app.Visible())

	if _, err := f.app.OpenRecipe("Tacos"); err != nil {
		t.Fatalf("open: %v", err)
	}
	f.clock.Advance(engagement.DefaultViewDebounce - time.Second)
	if f.app.Record("tacos").ViewCount != 0 {
		t.Fatal("view recorded before the quiet period ended")
	}
	equalIDs(t, initialOrder, f.app.Visible())

	f.clock.Advance(time.Second)
	if f.app.Record("tacos").ViewCount != 1 {
		t.Fatal("view not recorded")
	}
	equalIDs(t, []string{"ertesuppe", "fiskesuppe", "eplekake", "tacos", "pepperkaker", "lammestek"}, f.app.Visible())
}

func TestActivateFilterClosesRecipe(t *testing.T) {
	f := setupFixtureApp(t, "")

	if _, err := f.app.OpenRecipe("fiskesuppe"); err != nil {
		t.Fatalf("open: %v", err)
	}
	f.clock.Advance(0)
	if _, err := f.app.ActivateFilter(domain.DimensionMeal, "Dessert"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	f.clock.Advance(0)

	if _, open := f.app.CurrentRecipe(); open {
		t.Fatal("recipe still open")
	}
	if f.history.Len() != 3 {
		t.Fatalf("expected close and filter in one entry, got %d entries", f.history.Len())
	}
	equalIDs(t, []string{"eplekake", "pepperkaker"}, f.app.Visible())

	if !f.app.Back() {
		t.Fatal("back failed")
	}
	f.clock.Advance(0)
	st := f.app.Status()
	if st.OpenRecipe != "fiskesuppe" || len(st.Filters) != 0 {
		t.Fatalf("back should reopen fiskesuppe without filters, got %+v", st)
	}
	if f.history.Len() != 3 {
		t.Fatalf("back must not write history, got %d entries", f.history.Len())
	}

	if !f.app.Forward() {
		t.Fatal("forward failed")
	}
	equalIDs(t, []string{"eplekake", "pepperkaker"}, f.app.Visible())
}

func TestResortPolicy(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		order       domain.SortOrder
		mutate      func(a *App) error
		wantPending bool
		wantFirst   string
	}{
		{"rating under rating order", domain.SortRating,
			func(a *App) error { return a.Rate(ctx, "lammestek", 5) }, false, "lammestek"},
		{"rating under recommendation order", domain.SortRecommendation,
			func(a *App) error { return a.Rate(ctx, "lammestek", 5) }, true, "ertesuppe"},
		{"made under made-count order", domain.SortMadeCount,
			func(a *App) error { _, err := a.ToggleMadeToday(ctx, "eplekake"); return err }, false, "eplekake"},
		{"made under rating order", domain.SortRating,
			func(a *App) error { _, err := a.ToggleMadeToday(ctx, "eplekake"); return err }, false, "ertesuppe"},
		{"tag under alphabetical order", domain.SortAlphabetical,
			func(a *App) error { _, err := a.ToggleTag(ctx, "tacos"); return err }, false, "tacos"},
		{"tag under recommendation order", domain.SortRecommendation,
			func(a *App) error { _, err := a.ToggleTag(ctx, "tacos"); return err }, true, "ertesuppe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupFixtureApp(t, "")
			f.app.ChangeSortOrder(tt.order)
			if err := tt.mutate(f.app); err != nil {
				t.Fatalf("mutate: %v", err)
			}
			st := f.app.Status()
			if st.ResortPending != tt.wantPending {
				t.Fatalf("pending: want %v, got %v", tt.wantPending, st.ResortPending)
			}
			if st.Visible[0] != tt.wantFirst {
				t.Fatalf("first: want %s, got %v", tt.wantFirst, st.Visible)
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	ctx := context.Background()
	f := setupFixtureApp(t, "")

	if err := f.app.CloseRecipe(); !errors.Is(err, domain.ErrNoRecipeOpen) {
		t.Fatalf("close: expected ErrNoRecipeOpen, got %v", err)
	}
	if _, err := f.app.OpenRecipe("surstrømming"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("open: expected ErrNotFound, got %v", err)
	}
	if err := f.app.Rate(ctx, "tacos", 6); !errors.Is(err, domain.ErrInvalidRating) {
		t.Fatalf("rate: expected ErrInvalidRating, got %v", err)
	}
	if err := f.app.Rate(ctx, "nope", 3); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("rate: expected ErrNotFound, got %v", err)
	}
	if _, err := f.app.ActivateFilter("colour", "red"); !errors.Is(err, domain.ErrInvalidFilterKey) {
		t.Fatalf("filter: expected ErrInvalidFilterKey, got %v", err)
	}
	if err := f.app.SwitchLanguage(ctx, "de"); !errors.Is(err, domain.ErrUnsupportedLanguage) {
		t.Fatalf("language: expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestEngagementIsPersisted(t *testing.T) {
	ctx := context.Background()
	f := setupFixtureApp(t, "")

	if err := f.app.Rate(ctx, "tacos", 4); err != nil {
		t.Fatalf("rate: %v", err)
	}
	data, err := f.kv.Get(ctx, engagement.StorageKey)
	if err != nil {
		t.Fatalf("reading store: %v", err)
	}
	if !strings.Contains(string(data), `"userRating":4`) {
		t.Fatalf("rating not persisted: %s", data)
	}

	if err := f.app.ClearRating(ctx, "tacos"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if f.app.Record("tacos").UserRating != nil {
		t.Fatal("rating not cleared")
	}
}

func TestSwitchLanguageKeepsFilters(t *testing.T) {
	ctx := context.Background()
	f := setupFixtureApp(t, "")

	if _, err := f.app.ActivateFilter(domain.DimensionCategory, "Supper"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	f.clock.Advance(0)
	if err := f.app.SwitchLanguage(ctx, "pb"); err != nil {
		t.Fatalf("switch: %v", err)
	}
	f.clock.Advance(0)

	st := f.app.Status()
	if st.Language != "pb" {
		t.Fatalf("expected pb, got %q", st.Language)
	}
	if want := "lang=pb&filter=category:supper"; st.Query != want {
		t.Fatalf("query: want %q, got %q", want, st.Query)
	}
	equalIDs(t, []string{"ertesuppe", "fiskesuppe"}, st.Visible)
	if f.history.Len() != 3 {
		t.Fatalf("expected the switch to push an entry, got %d", f.history.Len())
	}
	if r, _ := f.app.Catalog().Get("eplekake"); r.Title != "Bolo de maçã" {
		t.Fatalf("catalog not swapped, got %q", r.Title)
	}
}

type memClipboard struct{ text string }

func (c *memClipboard) WriteAll(text string) error {
	c.text = text
	return nil
}

func TestShareLinks(t *testing.T) {
	clip := &memClipboard{}
	log := logger.Nop()
	app, err := New(context.Background(), Deps{
		Loader:    catalogtest.Loader(log),
		KV:        storage.NewMemoryKV(log),
		Clipboard: clip,
		Clock:     timer.NewManualClock(start),
	}, "", WithBaseURL("https://example.org/recipebook/"))
	if err != nil {
		t.Fatalf("building app: %v", err)
	}
	defer app.Close()

	app.Search("Torsk")
	link, ok := app.CopyShareURL()
	if !ok || link != "https://example.org/recipebook/?search=torsk" || clip.text != link {
		t.Fatalf("copy: %q %v (clipboard %q)", link, ok, clip.text)
	}
	if got := app.RecipeURL("tacos"); got != "https://example.org/recipebook/?recipe=tacos" {
		t.Fatalf("recipe url: %q", got)
	}
}

func TestCloseDropsPendingViews(t *testing.T) {
	f := setupFixtureApp(t, "")
	if _, err := f.app.OpenRecipe("tacos"); err != nil {
		t.Fatalf("open: %v", err)
	}
	f.app.Close()
	f.clock.Advance(time.Minute)
	if f.app.Record("tacos").ViewCount != 0 {
		t.Fatal("view flushed after close")
	}
}
