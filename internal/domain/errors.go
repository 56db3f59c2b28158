package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrUnknownSortOrder    = errors.New("unknown sort order")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrInvalidFilterKey    = errors.New("invalid filter key")
	ErrNoRecipeOpen        = errors.New("no recipe is open")
)
