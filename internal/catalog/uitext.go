package catalog

import "strings"

// UIText holds the localized interface strings from data/ui-{lang}.json.
// Sections nest arbitrarily; lookups use dotted paths like "sort.rating".
type UIText map[string]any

// T returns the string at path, or the path itself when it is missing.
func (u UIText) T(path string) string {
	var cur any = map[string]any(u)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return path
		}
		if cur, ok = m[part]; !ok {
			return path
		}
	}
	if s, ok := cur.(string); ok {
		return s
	}
	return path
}
