package domain

// HistoryState is the structured payload stored alongside a history entry.
// Filter keys are in the display form of the language that wrote them.
type HistoryState struct {
	Filters  []FilterEntry
	Search   string
	RecipeID string // empty when no recipe was open
}

// HistoryEntry is one position in the navigation history.
type HistoryEntry struct {
	ID    string
	Query string        // encoded location without the leading "?"
	State *HistoryState // nil for entries the app didn't write
}
