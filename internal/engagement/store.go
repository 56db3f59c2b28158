// Package engagement keeps the per-recipe user data: ratings, cook
// history, tags and views. Every mutation is persisted as one JSON document
// under the "userData" key.
package engagement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
	"github.com/hammamikhairi/recipebook/internal/timer"
)

// StorageKey is the key the whole engagement map is persisted under.
const StorageKey = "userData"

// DefaultViewDebounce is how long a recipe must stay open before the view
// counts.
const DefaultViewDebounce = 10 * time.Second

// Option configures the store.
type Option func(*Store)

// WithViewDebounce sets the view-tracking window.
func WithViewDebounce(d time.Duration) Option {
	return func(s *Store) {
		s.viewDelay = d
	}
}

// Store holds engagement records. Safe for concurrent use; callbacks are
// never invoked with the lock held.
type Store struct {
	kv        domain.KVStore
	timers    *timer.Table
	log       *logger.Logger
	viewDelay time.Duration

	mu      sync.Mutex
	records map[string]*domain.EngagementRecord
	onView  func(id string)
}

// New creates a store and loads any persisted records. Corrupt or missing
// data starts the store empty.
func New(ctx context.Context, kv domain.KVStore, timers *timer.Table, log *logger.Logger, opts ...Option) *Store {
	s := &Store{
		kv:        kv,
		timers:    timers,
		log:       log,
		viewDelay: DefaultViewDebounce,
		records:   make(map[string]*domain.EngagementRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load(ctx)
	return s
}

// OnViewFlushed registers fn to run after a debounced view is recorded.
func (s *Store) OnViewFlushed(fn func(id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onView = fn
}

func (s *Store) load(ctx context.Context) {
	data, err := s.kv.Get(ctx, StorageKey)
	if errors.Is(err, domain.ErrNotFound) {
		s.log.Debug("no stored engagement data")
		return
	}
	if err != nil {
		s.log.Warn("reading engagement data: %v", err)
		return
	}

	var records map[string]*domain.EngagementRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.log.Warn("engagement data is corrupt, starting empty: %v", err)
		return
	}
	for id, r := range records {
		if r == nil {
			continue
		}
		if r.MadeDates == nil {
			r.MadeDates = []string{}
		}
		s.records[id] = r
	}
	s.log.Info("loaded engagement data for %d recipes", len(s.records))
}

// persist writes the whole map. Callers hold s.mu. A failed write is
// logged and the in-memory state stays authoritative.
func (s *Store) persist(ctx context.Context) {
	data, err := json.Marshal(s.records)
	if err != nil {
		s.log.Error("encoding engagement data: %v", err)
		return
	}
	if err := s.kv.Set(ctx, StorageKey, data); err != nil {
		s.log.Error("saving engagement data: %v", err)
	}
}

// record returns the record for id, creating it. Callers hold s.mu.
func (s *Store) record(id string) *domain.EngagementRecord {
	r, ok := s.records[id]
	if !ok {
		nr := domain.NewEngagementRecord()
		r = &nr
		s.records[id] = r
	}
	return r
}

// Get returns a copy of the record for id, or the zero record.
func (s *Store) Get(id string) domain.EngagementRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[id]; ok {
		return r.Clone()
	}
	return domain.NewEngagementRecord()
}

// Snapshot returns copies of every stored record.
func (s *Store) Snapshot() map[string]domain.EngagementRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.EngagementRecord, len(s.records))
	for id, r := range s.records {
		out[id] = r.Clone()
	}
	return out
}

// SetRating stores a 1-5 rating.
func (s *Store) SetRating(ctx context.Context, id string, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: got %d", domain.ErrInvalidRating, rating)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record(id).UserRating = &rating
	s.persist(ctx)
	s.log.Debug("rated %s: %d", id, rating)
	return nil
}

// ClearRating removes the rating.
func (s *Store) ClearRating(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record(id).UserRating = nil
	s.persist(ctx)
	s.log.Debug("cleared rating for %s", id)
}

// ToggleTag flips the tag and returns the new state. Tagging stamps the
// time; untagging clears it.
func (s *Store) ToggleTag(ctx context.Context, id string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.record(id)
	r.Tagged = !r.Tagged
	if r.Tagged {
		t := now
		r.TaggedAt = &t
	} else {
		r.TaggedAt = nil
	}
	s.persist(ctx)
	s.log.Debug("tag %s: %v", id, r.Tagged)
	return r.Tagged
}

// ToggleMadeToday adds or removes today's date from the cook history.
// "Today" is the local calendar date of now.
func (s *Store) ToggleMadeToday(ctx context.Context, id string, now time.Time) domain.MadeResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := now.Format(domain.DateLayout)
	r := s.record(id)

	made := false
	kept := r.MadeDates[:0]
	for _, d := range r.MadeDates {
		if d == today {
			made = true
			continue
		}
		kept = append(kept, d)
	}
	r.MadeDates = kept
	if !made {
		r.MadeDates = append(r.MadeDates, today)
	}

	s.persist(ctx)
	s.log.Debug("made %s today: %v (total %d)", id, !made, len(r.MadeDates))
	return domain.MadeResult{MadeToday: !made, MadeCount: len(r.MadeDates)}
}

func viewKey(id string) string { return "view:" + id }

// TrackView schedules a view for id. Calling again within the window
// restarts it; the view is only recorded once the window passes.
func (s *Store) TrackView(id string) {
	s.timers.Schedule(viewKey(id), s.viewDelay, func() {
		s.flushView(id)
	})
}

// CancelView drops a pending view for id.
func (s *Store) CancelView(id string) bool {
	return s.timers.Cancel(viewKey(id))
}

func (s *Store) flushView(id string) {
	now := s.timers.Clock().Now()

	s.mu.Lock()
	r := s.record(id)
	r.LastViewed = &now
	r.ViewCount++
	count := r.ViewCount
	s.persist(context.Background())
	hook := s.onView
	s.mu.Unlock()

	s.log.Debug("view recorded for %s (count %d)", id, count)
	if hook != nil {
		hook(id)
	}
}
