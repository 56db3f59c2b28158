package domain

import "context"

// KVStore is the persistent key-value area behind the engagement store.
// Get returns ErrNotFound for a missing key. Implementations can be
// in-memory, a directory of files, SQLite or Badger.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Renderer draws the visible recipe list. It receives ordered recipe ids.
type Renderer interface {
	RenderRecipes(ids []string)
}

// History is the navigation history the synchronizer writes to. Back and
// Forward move the cursor and return the entry now current, the way a
// browser delivers a popstate.
type History interface {
	Push(entry HistoryEntry)
	Replace(entry HistoryEntry)
	Current() (HistoryEntry, bool)
	Back() (HistoryEntry, bool)
	Forward() (HistoryEntry, bool)
}

// Clipboard receives shareable links.
type Clipboard interface {
	WriteAll(text string) error
}

// IntentParser converts raw user input into structured intents.
type IntentParser interface {
	Parse(ctx context.Context, input string) (*Intent, error)
}

// Notifier delivers messages to the user.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}
