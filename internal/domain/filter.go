package domain

import (
	"fmt"
	"strings"
)

// FilterKey joins a dimension and a value into "dimension:value".
func FilterKey(dim Dimension, value string) string {
	return string(dim) + ":" + value
}

// SplitFilterKey splits a filter key at its first colon.
func SplitFilterKey(key string) (Dimension, string, error) {
	dim, value, ok := strings.Cut(key, ":")
	if !ok || dim == "" || value == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidFilterKey, key)
	}
	return Dimension(dim), value, nil
}

// FilterEntry is one member of an ActiveFilterSet.
type FilterEntry struct {
	Key     string
	Enabled bool
}

// ActiveFilterSet is an insertion-ordered map from filter key to enabled
// flag. Updating an existing key keeps its position.
type ActiveFilterSet struct {
	order   []string
	enabled map[string]bool
}

// NewActiveFilterSet builds a set from entries, in order.
func NewActiveFilterSet(entries ...FilterEntry) *ActiveFilterSet {
	s := &ActiveFilterSet{enabled: make(map[string]bool)}
	for _, e := range entries {
		s.Set(e.Key, e.Enabled)
	}
	return s
}

// Set adds or updates a key.
func (s *ActiveFilterSet) Set(key string, enabled bool) {
	if _, ok := s.enabled[key]; !ok {
		s.order = append(s.order, key)
	}
	s.enabled[key] = enabled
}

// Has reports whether the key is present, enabled or not.
func (s *ActiveFilterSet) Has(key string) bool {
	_, ok := s.enabled[key]
	return ok
}

// Enabled reports whether the key is present and enabled.
func (s *ActiveFilterSet) Enabled(key string) bool {
	return s.enabled[key]
}

// Delete removes a key. It reports whether the key was present.
func (s *ActiveFilterSet) Delete(key string) bool {
	if _, ok := s.enabled[key]; !ok {
		return false
	}
	delete(s.enabled, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear empties the set.
func (s *ActiveFilterSet) Clear() {
	s.order = nil
	s.enabled = make(map[string]bool)
}

// Len returns the number of keys, enabled or not.
func (s *ActiveFilterSet) Len() int {
	return len(s.order)
}

// Entries returns every entry in insertion order.
func (s *ActiveFilterSet) Entries() []FilterEntry {
	out := make([]FilterEntry, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, FilterEntry{Key: k, Enabled: s.enabled[k]})
	}
	return out
}

// EnabledValues returns the enabled values for one dimension.
func (s *ActiveFilterSet) EnabledValues(dim Dimension) []string {
	var out []string
	prefix := string(dim) + ":"
	for _, k := range s.order {
		if s.enabled[k] && strings.HasPrefix(k, prefix) {
			out = append(out, k[len(prefix):])
		}
	}
	return out
}
