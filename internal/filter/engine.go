// Package filter owns the active filters, the search query and the sort
// order, and turns them into the ordered list of visible recipe ids.
package filter

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
	"github.com/hammamikhairi/recipebook/internal/timer"
)

// DefaultResortDelay is how long a recommendation re-sort waits after an
// engagement change.
const DefaultResortDelay = 10 * time.Second

const resortKey = "resort"

// norwegian collates Æ, Ø and Å after Z. The x/text tables for "nb" and
// "no" fall back to the root order, "nn" carries the Norwegian tailoring.
var norwegian = language.MustParse("nn")

// Recipes is the catalog view the engine needs.
type Recipes interface {
	Recipes() []domain.Recipe
	Language() string
}

// Records is the engagement view the engine needs.
type Records interface {
	Get(id string) domain.EngagementRecord
}

// Scores is the recommendation view the engine needs.
type Scores interface {
	GetScore(id string) float64
	CalculateAllScores()
}

// Option configures the engine.
type Option func(*Engine)

// WithResortDelay sets the delay of ScheduleRecommendationUpdate.
func WithResortDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.resortDelay = d
	}
}

// WithCollation sets how a catalog language maps to a collation locale for
// alphabetical order.
func WithCollation(fn func(lang string) language.Tag) Option {
	return func(e *Engine) {
		e.collation = fn
	}
}

// Engine holds the filter state. Every mutation re-ranks and renders;
// mutations that change the navigable state also fire the change listener.
// Listener and renderer run without the engine lock held.
type Engine struct {
	recipes     Recipes
	records     Records
	scores      Scores
	renderer    domain.Renderer
	timers      *timer.Table
	log         *logger.Logger
	resortDelay time.Duration
	collation   func(lang string) language.Tag

	mu       sync.Mutex
	filters  *domain.ActiveFilterSet
	search   string
	order    domain.SortOrder
	visible  []string
	onChange func()
}

// NewEngine creates an engine with no filters, no search and
// recommendation order. renderer may be nil.
func NewEngine(recipes Recipes, records Records, scores Scores, renderer domain.Renderer, timers *timer.Table, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		recipes:     recipes,
		records:     records,
		scores:      scores,
		renderer:    renderer,
		timers:      timers,
		log:         log,
		resortDelay: DefaultResortDelay,
		collation:   func(string) language.Tag { return norwegian },
		filters:     domain.NewActiveFilterSet(),
		order:       domain.SortRecommendation,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnChange registers the listener fired after user-driven changes to
// filters or search.
func (e *Engine) OnChange(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = fn
}

func (e *Engine) changed() {
	e.mu.Lock()
	fn := e.onChange
	e.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// ApplyFilters ranks the catalog under the current state, renders the
// result and returns it.
func (e *Engine) ApplyFilters() []string {
	e.mu.Lock()
	q := query{
		filters:   domain.NewActiveFilterSet(e.filters.Entries()...),
		search:    e.search,
		order:     e.order,
		collation: e.collation(e.recipes.Language()),
	}
	e.mu.Unlock()

	ids := rank(e.recipes.Recipes(), q, e.records, e.scores)

	e.mu.Lock()
	e.visible = ids
	e.mu.Unlock()

	e.log.Debug("applied filters: %d visible (order=%s, filters=%d, search=%q)", len(ids), q.order, q.filters.Len(), q.search)
	if e.renderer != nil {
		e.renderer.RenderRecipes(ids)
	}
	return ids
}

// Visible returns the ids from the last ApplyFilters.
func (e *Engine) Visible() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.visible...)
}

// Filters returns the active filter entries in insertion order.
func (e *Engine) Filters() []domain.FilterEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filters.Entries()
}

// Search returns the current search query.
func (e *Engine) Search() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.search
}

// SortOrder returns the current sort order.
func (e *Engine) SortOrder() domain.SortOrder {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.order
}

func checkKey(key string) error {
	dim, _, err := domain.SplitFilterKey(key)
	if err != nil {
		return err
	}
	if _, ok := domain.ParseDimension(string(dim)); !ok {
		return fmt.Errorf("%w: unknown dimension %q", domain.ErrInvalidFilterKey, dim)
	}
	return nil
}

// ActivateFilter enables dim:value if it isn't present yet. It reports
// whether the set changed; an existing key, enabled or not, is left alone.
func (e *Engine) ActivateFilter(dim domain.Dimension, value string) (bool, error) {
	key := domain.FilterKey(dim, value)
	if err := checkKey(key); err != nil {
		return false, err
	}

	e.mu.Lock()
	if e.filters.Has(key) {
		e.mu.Unlock()
		return false, nil
	}
	e.filters.Set(key, true)
	e.mu.Unlock()

	e.ApplyFilters()
	e.changed()
	return true, nil
}

// ToggleFilter removes key if present and adds it enabled otherwise.
func (e *Engine) ToggleFilter(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	e.mu.Lock()
	if !e.filters.Delete(key) {
		e.filters.Set(key, true)
	}
	e.mu.Unlock()

	e.ApplyFilters()
	e.changed()
	return nil
}

// RemoveFilter deletes key.
func (e *Engine) RemoveFilter(key string) {
	e.mu.Lock()
	e.filters.Delete(key)
	e.mu.Unlock()

	e.ApplyFilters()
	e.changed()
}

// ClearAllFilters empties the filter set.
func (e *Engine) ClearAllFilters() {
	e.mu.Lock()
	e.filters.Clear()
	e.mu.Unlock()

	e.ApplyFilters()
	e.changed()
}

// SetSearch sets the query, trimmed and lower-cased.
func (e *Engine) SetSearch(q string) {
	e.mu.Lock()
	e.search = strings.ToLower(strings.TrimSpace(q))
	e.mu.Unlock()

	e.ApplyFilters()
	e.changed()
}

// ClearSearch empties the query.
func (e *Engine) ClearSearch() {
	e.SetSearch("")
}

// ChangeSortOrder switches the order. Switching into recommendation order
// recomputes every score first.
func (e *Engine) ChangeSortOrder(order domain.SortOrder) []string {
	e.mu.Lock()
	prev := e.order
	e.order = order
	e.mu.Unlock()

	if order == domain.SortRecommendation && prev != domain.SortRecommendation {
		e.scores.CalculateAllScores()
	}
	e.log.Debug("sort order %s -> %s", prev, order)
	return e.ApplyFilters()
}

// ScheduleRecommendationUpdate re-sorts after the resort delay, restarting
// the delay if one is already pending. The re-sort only happens if the
// order is still recommendation when the delay ends.
func (e *Engine) ScheduleRecommendationUpdate() {
	e.timers.Schedule(resortKey, e.resortDelay, func() {
		if e.SortOrder() == domain.SortRecommendation {
			e.ApplyFilters()
		}
	})
}

// RecommendationUpdatePending reports whether a re-sort is scheduled.
func (e *Engine) RecommendationUpdatePending() bool {
	return e.timers.Pending(resortKey)
}

// ReplaceFilters sets the filter set wholesale without re-ranking or
// notifying. Used when replaying navigation state.
func (e *Engine) ReplaceFilters(entries []domain.FilterEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filters = domain.NewActiveFilterSet(entries...)
}

// ReplaceSearch sets the query as given without re-ranking or notifying.
func (e *Engine) ReplaceSearch(q string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.search = q
}
