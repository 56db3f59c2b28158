package navigation

import (
	"sync"

	"github.com/google/uuid"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
	"github.com/hammamikhairi/recipebook/internal/timer"
)

// Mode tells whether the synchronizer is replaying a location into state.
type Mode int

const (
	// ModeIdle writes state changes to the history.
	ModeIdle Mode = iota
	// ModeReplaying drops write requests while an entry is replayed.
	ModeReplaying
)

// String returns "idle" or "replaying".
func (m Mode) String() string {
	if m == ModeReplaying {
		return "replaying"
	}
	return "idle"
}

const locationKey = "location"

// Filters is the slice of the filter engine the synchronizer reads and
// replays into. ReplaceFilters and ReplaceSearch must not notify.
type Filters interface {
	Filters() []domain.FilterEntry
	Search() string
	ReplaceFilters(entries []domain.FilterEntry)
	ReplaceSearch(q string)
	ApplyFilters() []string
	ClearAllFilters()
}

// Catalog resolves recipes and the taxonomy of the loaded language.
type Catalog interface {
	Language() string
	Taxonomy() *domain.Taxonomy
	Get(id string) (*domain.Recipe, error)
	FindByTitle(title string) (*domain.Recipe, error)
}

// Viewer is the recipe detail view. With skipLocation set, opening or
// closing must not request a location write.
type Viewer interface {
	CurrentRecipeID() string
	ShowRecipe(id string, skipLocation bool) bool
	CloseRecipe(skipLocation bool)
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithBaseURL sets the prefix for shareable links.
func WithBaseURL(base string) Option {
	return func(s *Synchronizer) { s.baseURL = base }
}

// WithDefaultLanguage sets the language omitted from written locations.
func WithDefaultLanguage(lang string) Option {
	return func(s *Synchronizer) { s.defaultLang = lang }
}

// WithClipboard sets where CopyToClipboard writes links. Without one,
// copying always fails.
func WithClipboard(c domain.Clipboard) Option {
	return func(s *Synchronizer) { s.clipboard = c }
}

// Synchronizer writes state changes to the history and replays history
// entries into state.
type Synchronizer struct {
	catalog Catalog
	filters Filters
	history domain.History
	timers  *timer.Table
	log     *logger.Logger

	baseURL     string
	defaultLang string
	clipboard   domain.Clipboard

	mu     sync.Mutex
	mode   Mode
	viewer Viewer
}

// NewSynchronizer creates an idle synchronizer. Call SetViewer before the
// first replay so recipes can be opened and closed.
func NewSynchronizer(catalog Catalog, filters Filters, history domain.History, timers *timer.Table, log *logger.Logger, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		catalog: catalog,
		filters: filters,
		history: history,
		timers:  timers,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetViewer wires the detail view. The viewer itself calls RequestUpdate,
// so it is set after construction.
func (s *Synchronizer) SetViewer(v Viewer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewer = v
}

// Mode returns the current replay mode.
func (s *Synchronizer) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Synchronizer) setMode(m Mode) {
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
}

func (s *Synchronizer) currentViewer() Viewer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewer
}

// RequestUpdate asks for the current state to be written to the history
// on the next tick. Calls made while replaying are dropped. Of several
// calls before the tick, only the last one is written.
func (s *Synchronizer) RequestUpdate(replace bool) {
	if s.Mode() == ModeReplaying {
		return
	}
	s.timers.Schedule(locationKey, 0, func() { s.write(replace) })
}

// Pending reports whether a location write is scheduled.
func (s *Synchronizer) Pending() bool {
	return s.timers.Pending(locationKey)
}

func (s *Synchronizer) write(replace bool) {
	if s.Mode() == ModeReplaying {
		return
	}
	entry := s.entry()
	if replace {
		s.history.Replace(entry)
		s.log.Debug("location replaced: ?%s", entry.Query)
		return
	}
	s.history.Push(entry)
	s.log.Debug("location pushed: ?%s", entry.Query)
}

// entry snapshots the current state into a history entry.
func (s *Synchronizer) entry() domain.HistoryEntry {
	st := &domain.HistoryState{
		Filters: s.filters.Filters(),
		Search:  s.filters.Search(),
	}
	if v := s.currentViewer(); v != nil {
		st.RecipeID = v.CurrentRecipeID()
	}
	return domain.HistoryEntry{
		ID:    uuid.NewString(),
		Query: s.Query(),
		State: st,
	}
}

// Location returns the current state in location form.
func (s *Synchronizer) Location() Location {
	loc := Location{
		Language: s.catalog.Language(),
		Filters:  toCanonical(s.filters.Filters(), s.catalog.Taxonomy()),
		Search:   s.filters.Search(),
	}
	if v := s.currentViewer(); v != nil {
		loc.RecipeID = v.CurrentRecipeID()
	}
	return loc
}

// Query returns the encoded current location without the leading "?".
func (s *Synchronizer) Query() string {
	return s.Location().Query(s.defaultLang)
}

// InitializeFromLocation replays a query string into state on startup.
func (s *Synchronizer) InitializeFromLocation(query string) {
	s.setMode(ModeReplaying)
	defer s.setMode(ModeIdle)

	loc := ParseLocation(query)
	if len(loc.Filters) > 0 {
		set := domain.NewActiveFilterSet(s.filters.Filters()...)
		for _, e := range toLocalized(loc.Filters, s.catalog.Taxonomy()) {
			if !set.Has(e.Key) {
				set.Set(e.Key, true)
			}
		}
		s.filters.ReplaceFilters(set.Entries())
	}
	if loc.Search != "" {
		s.filters.ReplaceSearch(loc.Search)
	}
	s.filters.ApplyFilters()

	if loc.RecipeID != "" {
		if id, ok := s.resolveRecipe(loc.RecipeID); ok {
			if v := s.currentViewer(); v != nil {
				v.ShowRecipe(id, true)
			}
		} else {
			s.log.Warn("recipe %q in location not found", loc.RecipeID)
		}
	}

	if cur, ok := s.history.Current(); !ok || cur.State == nil {
		s.history.Replace(s.entry())
	}
}

// resolveRecipe finds a recipe by id, then by case-insensitive title.
func (s *Synchronizer) resolveRecipe(ref string) (string, bool) {
	if r, err := s.catalog.Get(ref); err == nil {
		return r.ID, true
	}
	if r, err := s.catalog.FindByTitle(ref); err == nil {
		return r.ID, true
	}
	return "", false
}

// HandlePopState replays a history entry. The entry's state, not its
// query, is authoritative.
func (s *Synchronizer) HandlePopState(entry domain.HistoryEntry) {
	s.setMode(ModeReplaying)
	defer s.setMode(ModeIdle)

	v := s.currentViewer()
	if entry.State == nil {
		s.filters.ReplaceSearch("")
		s.filters.ClearAllFilters()
		if v != nil && v.CurrentRecipeID() != "" {
			v.CloseRecipe(true)
		}
		return
	}

	s.filters.ReplaceFilters(entry.State.Filters)
	s.filters.ReplaceSearch(entry.State.Search)
	s.filters.ApplyFilters()
	if v == nil {
		return
	}
	switch {
	case entry.State.RecipeID != "":
		if !v.ShowRecipe(entry.State.RecipeID, true) {
			s.log.Warn("recipe %q in history not found", entry.State.RecipeID)
		}
	case v.CurrentRecipeID() != "":
		v.CloseRecipe(true)
	}
}

// Back moves one entry back and replays it. It returns false at the start.
func (s *Synchronizer) Back() bool {
	e, ok := s.history.Back()
	if !ok {
		return false
	}
	s.HandlePopState(e)
	return true
}

// Forward moves one entry forward and replays it.
func (s *Synchronizer) Forward() bool {
	e, ok := s.history.Forward()
	if !ok {
		return false
	}
	s.HandlePopState(e)
	return true
}

// ShareableURL returns an absolute link to the current state.
func (s *Synchronizer) ShareableURL() string {
	if q := s.Query(); q != "" {
		return s.baseURL + "?" + q
	}
	return s.baseURL
}

// RecipeURL returns an absolute link that opens a single recipe in the
// loaded language.
func (s *Synchronizer) RecipeURL(id string) string {
	return s.baseURL + "?" + Location{Language: s.catalog.Language(), RecipeID: id}.Query(s.defaultLang)
}

// CopyToClipboard writes the link to the clipboard. Failures are logged.
func (s *Synchronizer) CopyToClipboard(link string) bool {
	if s.clipboard == nil {
		s.log.Warn("no clipboard available")
		return false
	}
	if err := s.clipboard.WriteAll(link); err != nil {
		s.log.Warn("copying link: %v", err)
		return false
	}
	return true
}

// Relocalize runs swap, which replaces the loaded catalog, then re-keys
// the enabled filters into the new language through their canonical
// keys and pushes the new location.
func (s *Synchronizer) Relocalize(swap func() error) error {
	pairs := toCanonical(s.filters.Filters(), s.catalog.Taxonomy())
	if err := swap(); err != nil {
		return err
	}

	s.setMode(ModeReplaying)
	s.filters.ReplaceFilters(toLocalized(pairs, s.catalog.Taxonomy()))
	s.filters.ApplyFilters()
	s.setMode(ModeIdle)

	s.RequestUpdate(false)
	return nil
}
