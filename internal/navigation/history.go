package navigation

import (
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

var _ domain.History = (*MemoryHistory)(nil)

// MemoryHistory is a browser-style history stack. Push drops every entry
// after the cursor.
type MemoryHistory struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
	index   int
}

// NewMemoryHistory starts with one stateless entry for the initial query.
func NewMemoryHistory(initialQuery string) *MemoryHistory {
	return &MemoryHistory{
		entries: []domain.HistoryEntry{{ID: uuid.NewString(), Query: initialQuery}},
	}
}

// Push appends an entry after the current one and drops every entry
// ahead of the cursor.
func (h *MemoryHistory) Push(e domain.HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.index+1], e)
	h.index++
}

// Replace overwrites the current entry.
func (h *MemoryHistory) Replace(e domain.HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.index] = e
}

// Current returns the entry under the cursor.
func (h *MemoryHistory) Current() (domain.HistoryEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return domain.HistoryEntry{}, false
	}
	return h.entries[h.index], true
}

// Back moves the cursor one entry back. It reports false at the oldest
// entry.
func (h *MemoryHistory) Back() (domain.HistoryEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == 0 {
		return domain.HistoryEntry{}, false
	}
	h.index--
	return h.entries[h.index], true
}

// Forward moves the cursor one entry ahead. It reports false at the
// newest entry.
func (h *MemoryHistory) Forward() (domain.HistoryEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index >= len(h.entries)-1 {
		return domain.HistoryEntry{}, false
	}
	h.index++
	return h.entries[h.index], true
}

// Len returns the number of entries.
func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Index returns the cursor position.
func (h *MemoryHistory) Index() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index
}

// statePayload is the serialized history state:
// {"filters": [[key, enabled], ...], "search": "...", "recipeId": id|null}.
type statePayload struct {
	Filters  []filterPair `json:"filters"`
	Search   string       `json:"search"`
	RecipeID *string      `json:"recipeId"`
}

type filterPair domain.FilterEntry

func (p filterPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.Key, p.Enabled})
}

func (p *filterPair) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("filter pair: %w", err)
	}
	if err := json.Unmarshal(raw[0], &p.Key); err != nil {
		return fmt.Errorf("filter key: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Enabled); err != nil {
		return fmt.Errorf("filter flag: %w", err)
	}
	return nil
}

type entryPayload struct {
	ID    string        `json:"id"`
	Query string        `json:"query"`
	State *statePayload `json:"state"`
}

type historyPayload struct {
	Index   int            `json:"index"`
	Entries []entryPayload `json:"entries"`
}

// MarshalJSON encodes the whole stack and cursor.
func (h *MemoryHistory) MarshalJSON() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	p := historyPayload{Index: h.index, Entries: make([]entryPayload, 0, len(h.entries))}
	for _, e := range h.entries {
		ep := entryPayload{ID: e.ID, Query: e.Query}
		if e.State != nil {
			sp := &statePayload{Search: e.State.Search, Filters: make([]filterPair, 0, len(e.State.Filters))}
			for _, f := range e.State.Filters {
				sp.Filters = append(sp.Filters, filterPair(f))
			}
			if e.State.RecipeID != "" {
				id := e.State.RecipeID
				sp.RecipeID = &id
			}
			ep.State = sp
		}
		p.Entries = append(p.Entries, ep)
	}
	return json.Marshal(p)
}

// UnmarshalJSON restores a stack written by MarshalJSON.
func (h *MemoryHistory) UnmarshalJSON(data []byte) error {
	var p historyPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decoding history: %w", err)
	}
	if len(p.Entries) == 0 || p.Index < 0 || p.Index >= len(p.Entries) {
		return fmt.Errorf("decoding history: cursor %d out of range for %d entries", p.Index, len(p.Entries))
	}

	entries := make([]domain.HistoryEntry, 0, len(p.Entries))
	for _, ep := range p.Entries {
		e := domain.HistoryEntry{ID: ep.ID, Query: ep.Query}
		if ep.State != nil {
			st := &domain.HistoryState{Search: ep.State.Search}
			for _, f := range ep.State.Filters {
				st.Filters = append(st.Filters, domain.FilterEntry(f))
			}
			if ep.State.RecipeID != nil {
				st.RecipeID = *ep.State.RecipeID
			}
			e.State = st
		}
		entries = append(entries, e)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = entries
	h.index = p.Index
	return nil
}
