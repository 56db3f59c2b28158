// Package engine wires the catalog, engagement store, scoring, filtering
// and navigation into one application context. Every user command and
// every timer callback runs under the context's lock, one at a time.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/hammamikhairi/recipebook/internal/catalog"
	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/engagement"
	"github.com/hammamikhairi/recipebook/internal/filter"
	"github.com/hammamikhairi/recipebook/internal/logger"
	"github.com/hammamikhairi/recipebook/internal/navigation"
	"github.com/hammamikhairi/recipebook/internal/recommend"
	"github.com/hammamikhairi/recipebook/internal/timer"
)

// Deps are the collaborators the application context is built from.
// Loader and KV are required. A nil History starts a fresh in-memory
// history for the initial query; a nil Clock uses wall time.
type Deps struct {
	Loader    *catalog.Loader
	KV        domain.KVStore
	Renderer  domain.Renderer
	History   domain.History
	Clipboard domain.Clipboard
	Clock     timer.Clock
	Log       *logger.Logger
}

// Option configures the application context.
type Option func(*settings)

type settings struct {
	viewDebounce time.Duration
	resortDelay  time.Duration
	baseURL      string
	collation    func(lang string) language.Tag
	weights      *recommend.Weights
}

// WithViewDebounce sets the quiet period before a view is recorded.
func WithViewDebounce(d time.Duration) Option {
	return func(s *settings) { s.viewDebounce = d }
}

// WithResortDelay sets how long recommendation re-sorts are held back
// after an engagement change.
func WithResortDelay(d time.Duration) Option {
	return func(s *settings) { s.resortDelay = d }
}

// WithBaseURL sets the prefix of shareable links.
func WithBaseURL(u string) Option {
	return func(s *settings) { s.baseURL = u }
}

// WithCollation picks the collation locale for alphabetical order.
func WithCollation(fn func(lang string) language.Tag) Option {
	return func(s *settings) { s.collation = fn }
}

// WithWeights overrides the scoring weights.
func WithWeights(w recommend.Weights) Option {
	return func(s *settings) { s.weights = &w }
}

// App is the application context. The zero value is not usable; build
// one with New.
type App struct {
	mu  sync.Mutex
	log *logger.Logger

	loader  *catalog.Loader
	catalog *catalog.Catalog
	clock   timer.Clock
	timers  *timer.Table
	store   *engagement.Store
	scores  *recommend.Engine
	filters *filter.Engine
	nav     *navigation.Synchronizer
	history domain.History
	view    *detailView
}

// New loads the catalog for the language named in query, builds every
// component and replays query into the initial state.
func New(ctx context.Context, deps Deps, query string, opts ...Option) (*App, error) {
	if deps.Loader == nil || deps.KV == nil {
		return nil, fmt.Errorf("engine: loader and key/value store are required")
	}

	s := settings{
		viewDebounce: engagement.DefaultViewDebounce,
		resortDelay:  filter.DefaultResortDelay,
	}
	for _, opt := range opts {
		opt(&s)
	}

	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = timer.Real()
	}
	history := deps.History
	if history == nil {
		history = navigation.NewMemoryHistory(query)
	}

	lang := navigation.LanguageFromQuery(query, deps.Loader.Languages(), deps.Loader.DefaultLanguage())
	cat, err := deps.Loader.Load(ctx, lang)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	a := &App{
		log:     log.With("app"),
		loader:  deps.Loader,
		catalog: cat,
		clock:   clock,
		history: history,
	}
	a.timers = timer.NewTable(clock, timer.WithDispatcher(a.dispatch), timer.WithLogger(log.With("timer")))
	a.store = engagement.New(ctx, deps.KV, a.timers, log.With("engagement"), engagement.WithViewDebounce(s.viewDebounce))

	var scoreOpts []recommend.Option
	if s.weights != nil {
		scoreOpts = append(scoreOpts, recommend.WithWeights(*s.weights))
	}
	a.scores = recommend.NewEngine(cat, a.store, clock.Now, log.With("recommend"), scoreOpts...)

	filterOpts := []filter.Option{filter.WithResortDelay(s.resortDelay)}
	if s.collation != nil {
		filterOpts = append(filterOpts, filter.WithCollation(s.collation))
	}
	a.filters = filter.NewEngine(cat, a.store, a.scores, deps.Renderer, a.timers, log.With("filter"), filterOpts...)

	navOpts := []navigation.Option{
		navigation.WithBaseURL(s.baseURL),
		navigation.WithDefaultLanguage(deps.Loader.DefaultLanguage()),
	}
	if deps.Clipboard != nil {
		navOpts = append(navOpts, navigation.WithClipboard(deps.Clipboard))
	}
	a.nav = navigation.NewSynchronizer(cat, a.filters, history, a.timers, log.With("navigation"), navOpts...)

	a.view = &detailView{app: a}
	a.nav.SetViewer(a.view)
	a.filters.OnChange(func() { a.nav.RequestUpdate(false) })
	a.store.OnViewFlushed(a.viewFlushed)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.scores.CalculateAllScores()
	a.nav.InitializeFromLocation(query)

	a.log.Info("started in %q with %d recipes", cat.Language(), cat.Len())
	return a, nil
}

// dispatch runs timer callbacks under the command lock.
func (a *App) dispatch(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn()
}

func (a *App) viewFlushed(id string) {
	a.scores.UpdateScoreForRecipe(id)
	if a.filters.SortOrder() == domain.SortRecommendation {
		a.filters.ApplyFilters()
	}
}

// Close abandons every pending timer. Pending view records are dropped,
// not flushed. The key/value store stays open.
func (a *App) Close() {
	a.timers.StopAll()
	a.log.Debug("closed")
}

// Catalog returns the loaded catalog. It stays the same pointer across
// language switches.
func (a *App) Catalog() *catalog.Catalog {
	return a.catalog
}

// ── Filtering and search ─────────────────────────────────────────

// Search sets the search query.
func (a *App) Search(q string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.filters.SetSearch(q)
	return a.filters.Visible()
}

// ClearSearch empties the search query.
func (a *App) ClearSearch() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.filters.ClearSearch()
	return a.filters.Visible()
}

// ActivateFilter closes an open recipe and enables dim:value if it isn't
// active yet.
func (a *App) ActivateFilter(dim domain.Dimension, value string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.view.CurrentRecipeID() != "" {
		a.view.CloseRecipe(false)
	}
	return a.filters.ActivateFilter(dim, value)
}

// ToggleFilter removes the filter if present and adds it otherwise.
func (a *App) ToggleFilter(key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.filters.ToggleFilter(key)
}

// RemoveFilter drops the filter with the given key.
func (a *App) RemoveFilter(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.filters.RemoveFilter(key)
}

// ClearFilters drops every filter.
func (a *App) ClearFilters() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.filters.ClearAllFilters()
}

// ChangeSortOrder switches the order and returns the re-ranked ids.
func (a *App) ChangeSortOrder(order domain.SortOrder) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.filters.ChangeSortOrder(order)
}

// Visible returns the ids currently listed, in order.
func (a *App) Visible() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.filters.Visible()
}

// ── Detail view ──────────────────────────────────────────────────

// OpenRecipe opens a recipe by id or case-insensitive title.
func (a *App) OpenRecipe(ref string) (*domain.Recipe, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, err := a.resolve(ref)
	if err != nil {
		return nil, err
	}
	a.view.ShowRecipe(r.ID, false)
	return r, nil
}

// CloseRecipe closes the open recipe.
func (a *App) CloseRecipe() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.view.CurrentRecipeID() == "" {
		return domain.ErrNoRecipeOpen
	}
	a.view.CloseRecipe(false)
	return nil
}

// CurrentRecipe returns the open recipe, if any.
func (a *App) CurrentRecipe() (*domain.Recipe, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.view.CurrentRecipeID()
	if id == "" {
		return nil, false
	}
	r, err := a.catalog.Get(id)
	if err != nil {
		return nil, false
	}
	return r, true
}

func (a *App) resolve(ref string) (*domain.Recipe, error) {
	if r, err := a.catalog.Get(ref); err == nil {
		return r, nil
	}
	return a.catalog.FindByTitle(ref)
}

// ── Engagement ───────────────────────────────────────────────────

// Rate stores a 1-5 rating for the recipe.
func (a *App) Rate(ctx context.Context, id string, rating int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.catalog.Get(id); err != nil {
		return fmt.Errorf("rating %q: %w", id, err)
	}
	if err := a.store.SetRating(ctx, id, rating); err != nil {
		return err
	}
	a.scores.UpdateScoreForRecipe(id)
	a.resortAfter(domain.SortRating)
	return nil
}

// ClearRating removes the recipe's rating.
func (a *App) ClearRating(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.catalog.Get(id); err != nil {
		return fmt.Errorf("clearing rating of %q: %w", id, err)
	}
	a.store.ClearRating(ctx, id)
	a.scores.UpdateScoreForRecipe(id)
	a.resortAfter(domain.SortRating)
	return nil
}

// ToggleMadeToday records or un-records a cook for today.
func (a *App) ToggleMadeToday(ctx context.Context, id string) (domain.MadeResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.catalog.Get(id); err != nil {
		return domain.MadeResult{}, fmt.Errorf("marking %q made: %w", id, err)
	}
	res := a.store.ToggleMadeToday(ctx, id, a.clock.Now())
	a.scores.UpdateScoreForRecipe(id)
	a.resortAfter(domain.SortMadeCount)
	return res, nil
}

// ToggleTag pins or unpins the recipe at the top of the list.
func (a *App) ToggleTag(ctx context.Context, id string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.catalog.Get(id); err != nil {
		return false, fmt.Errorf("tagging %q: %w", id, err)
	}
	tagged := a.store.ToggleTag(ctx, id, a.clock.Now())
	if a.filters.SortOrder() == domain.SortRecommendation {
		a.filters.ScheduleRecommendationUpdate()
	} else {
		a.filters.ApplyFilters()
	}
	return tagged, nil
}

// resortAfter reacts to an engagement change: a delayed re-sort under
// recommendation order, an immediate one under the order that sorts by
// the changed value, nothing otherwise.
func (a *App) resortAfter(affected domain.SortOrder) {
	switch a.filters.SortOrder() {
	case domain.SortRecommendation:
		a.filters.ScheduleRecommendationUpdate()
	case affected:
		a.filters.ApplyFilters()
	}
}

// Record returns the engagement record of a recipe.
func (a *App) Record(id string) domain.EngagementRecord {
	return a.store.Get(id)
}

// Score returns the cached recommendation score of a recipe.
func (a *App) Score(id string) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scores.GetScore(id)
}

// ── Navigation ───────────────────────────────────────────────────

// Back replays the previous history entry.
func (a *App) Back() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nav.Back()
}

// Forward replays the next history entry.
func (a *App) Forward() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nav.Forward()
}

// ShareURL returns a link that reproduces the current filters, search and
// open recipe.
func (a *App) ShareURL() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nav.ShareableURL()
}

// RecipeURL returns a link to a single recipe.
func (a *App) RecipeURL(id string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nav.RecipeURL(id)
}

// CopyShareURL copies the share link and returns it with the outcome.
func (a *App) CopyShareURL() (string, bool) {
	link := a.ShareURL()
	return link, a.CopyLink(link)
}

// CopyLink puts link on the clipboard. It reports false when no clipboard
// is available or the write fails.
func (a *App) CopyLink(link string) bool {
	return a.nav.CopyToClipboard(link)
}

// Query returns the current location query.
func (a *App) Query() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nav.Query()
}

// SwitchLanguage reloads the catalog in lang and carries the active
// filters over through their canonical keys.
func (a *App) SwitchLanguage(ctx context.Context, lang string) error {
	if !a.loader.Supports(lang) {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedLanguage, lang)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if lang == a.catalog.Language() {
		return nil
	}

	err := a.nav.Relocalize(func() error {
		next, err := a.loader.Load(ctx, lang)
		if err != nil {
			return err
		}
		a.catalog.Swap(next)
		a.scores.CalculateAllScores()
		return nil
	})
	if err != nil {
		return fmt.Errorf("switching to %q: %w", lang, err)
	}
	a.log.Info("switched to %q", a.catalog.Language())
	return nil
}

// ── Status ───────────────────────────────────────────────────────

// Status is a snapshot of what the user currently sees.
type Status struct {
	Language      string
	SortOrder     domain.SortOrder
	Filters       []domain.FilterEntry
	Search        string
	Visible       []string
	OpenRecipe    string
	Query         string
	ResortPending bool
}

// Status returns the current state.
func (a *App) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Status{
		Language:      a.catalog.Language(),
		SortOrder:     a.filters.SortOrder(),
		Filters:       a.filters.Filters(),
		Search:        a.filters.Search(),
		Visible:       a.filters.Visible(),
		OpenRecipe:    a.view.CurrentRecipeID(),
		Query:         a.nav.Query(),
		ResortPending: a.filters.RecommendationUpdatePending(),
	}
}

// ── Detail view (runs under the App lock) ────────────────────────

type detailView struct {
	app     *App
	current string
}

func (v *detailView) CurrentRecipeID() string { return v.current }

func (v *detailView) ShowRecipe(id string, skipLocation bool) bool {
	a := v.app
	if _, err := a.catalog.Get(id); err != nil {
		return false
	}
	v.current = id
	a.store.TrackView(id)
	a.scores.UpdateScoreForRecipe(id)
	if !skipLocation {
		a.nav.RequestUpdate(false)
	}
	a.log.Debug("opened %s", id)
	return true
}

func (v *detailView) CloseRecipe(skipLocation bool) {
	v.current = ""
	if !skipLocation {
		v.app.nav.RequestUpdate(false)
	}
}
