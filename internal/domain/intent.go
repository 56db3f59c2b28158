package domain

// IntentType classifies what the user wants to do.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentList
	IntentSearch
	IntentClearSearch
	IntentFilter // toggle or activate a filter; payload is "dimension:value"
	IntentRemoveFilter
	IntentClearFilters
	IntentSort
	IntentOpen
	IntentClose
	IntentRate // payload is the rating; targets the open recipe
	IntentClearRating
	IntentMade
	IntentTag
	IntentBack
	IntentForward
	IntentShare
	IntentLanguage
	IntentFilters // list the available filter values
	IntentHelp
	IntentQuit
)

// String returns a human-readable intent type.
func (i IntentType) String() string {
	for name, t := range intentNames {
		if t == i {
			return name
		}
	}
	return "unknown"
}

// Intent represents a parsed user action.
type Intent struct {
	Type    IntentType
	Payload string
}

// intentNames maps snake_case names to IntentType values.
var intentNames = map[string]IntentType{
	"list":          IntentList,
	"search":        IntentSearch,
	"clear_search":  IntentClearSearch,
	"filter":        IntentFilter,
	"remove_filter": IntentRemoveFilter,
	"clear_filters": IntentClearFilters,
	"sort":          IntentSort,
	"open":          IntentOpen,
	"close":         IntentClose,
	"rate":          IntentRate,
	"clear_rating":  IntentClearRating,
	"made":          IntentMade,
	"tag":           IntentTag,
	"back":          IntentBack,
	"forward":       IntentForward,
	"share":         IntentShare,
	"language":      IntentLanguage,
	"filters":       IntentFilters,
	"help":          IntentHelp,
	"quit":          IntentQuit,
	"unknown":       IntentUnknown,
}

// IntentFromString converts a snake_case intent name to an IntentType.
// Returns IntentUnknown for unrecognized names.
func IntentFromString(name string) IntentType {
	if t, ok := intentNames[name]; ok {
		return t
	}
	return IntentUnknown
}
