// Package navigation keeps the application state and a navigable location
// (a query string plus history entries) in step with each other, in both
// directions, without either direction re-triggering the other.
package navigation

import (
	"net/url"
	"slices"
	"strings"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

// Location is the decoded form of a query string. Filters hold
// "dimension:canonicalKey" pairs.
type Location struct {
	Language string
	Filters  []string
	Search   string
	RecipeID string
}

// ParseLocation decodes a query string. Parameter order doesn't matter and
// unknown parameters are ignored. The search term is lower-cased.
func ParseLocation(query string) Location {
	var loc Location
	for _, part := range strings.Split(strings.TrimPrefix(query, "?"), "&") {
		name, raw, _ := strings.Cut(part, "=")
		switch name {
		case "lang":
			loc.Language = unescape(raw)
		case "filter":
			for _, f := range strings.Split(raw, ",") {
				dim, key, ok := strings.Cut(f, ":")
				if !ok {
					continue
				}
				loc.Filters = append(loc.Filters, unescape(dim)+":"+unescape(key))
			}
		case "search":
			loc.Search = strings.ToLower(unescape(raw))
		case "recipe":
			loc.RecipeID = unescape(raw)
		}
	}
	return loc
}

// Query encodes the location in the fixed order lang, filter, search,
// recipe. The language is omitted when it equals defaultLang; empty parts
// are omitted.
func (l Location) Query(defaultLang string) string {
	var parts []string
	if l.Language != "" && l.Language != defaultLang {
		parts = append(parts, "lang="+escape(l.Language))
	}
	if len(l.Filters) > 0 {
		enc := make([]string, 0, len(l.Filters))
		for _, f := range l.Filters {
			dim, key, _ := strings.Cut(f, ":")
			enc = append(enc, escape(dim)+":"+escape(key))
		}
		parts = append(parts, "filter="+strings.Join(enc, ","))
	}
	if l.Search != "" {
		parts = append(parts, "search="+escape(l.Search))
	}
	if l.RecipeID != "" {
		parts = append(parts, "recipe="+escape(l.RecipeID))
	}
	return strings.Join(parts, "&")
}

// LanguageFromQuery returns the lang parameter when it names a supported
// language, and defaultLang otherwise.
func LanguageFromQuery(query string, supported []string, defaultLang string) string {
	if lang := ParseLocation(query).Language; slices.Contains(supported, lang) {
		return lang
	}
	return defaultLang
}

// escape percent-encodes like a URI component: spaces become %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// unescape decodes a component, keeping the raw text when it is malformed.
func unescape(s string) string {
	if v, err := url.QueryUnescape(s); err == nil {
		return v
	}
	return s
}

// toCanonical turns the enabled entries of an in-memory filter set into
// canonical pairs. Values the taxonomy doesn't know pass through as-is.
func toCanonical(entries []domain.FilterEntry, tax *domain.Taxonomy) []string {
	var out []string
	for _, e := range entries {
		if !e.Enabled {
			continue
		}
		dim, value, err := domain.SplitFilterKey(e.Key)
		if err != nil {
			continue
		}
		if key, ok := tax.Canonical(dim, value); ok {
			value = key
		}
		out = append(out, domain.FilterKey(dim, value))
	}
	return out
}

// toLocalized turns canonical pairs into enabled filter entries in the
// loaded language. Keys the taxonomy doesn't know are used literally.
func toLocalized(pairs []string, tax *domain.Taxonomy) []domain.FilterEntry {
	out := make([]domain.FilterEntry, 0, len(pairs))
	for _, p := range pairs {
		dim, key, err := domain.SplitFilterKey(p)
		if err != nil {
			continue
		}
		if v, ok := tax.Localize(dim, key); ok {
			key = v
		}
		out = append(out, domain.FilterEntry{Key: domain.FilterKey(dim, key), Enabled: true})
	}
	return out
}
