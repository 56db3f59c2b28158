package timer

import (
	"sync"
	"time"

	"github.com/hammamikhairi/recipebook/internal/logger"
)

// Option configures the table.
type Option func(*Table)

// WithDispatcher routes every fired task through dispatch. The app uses it
// to run timer callbacks under the same lock as user commands.
func WithDispatcher(dispatch func(func())) Option {
	return func(t *Table) {
		t.dispatch = dispatch
	}
}

// WithLogger sets the table's logger.
func WithLogger(log *logger.Logger) Option {
	return func(t *Table) {
		t.log = log
	}
}

// Table holds at most one pending task per key. Scheduling a key that is
// already pending cancels the old task first, which makes every key a
// trailing-edge debounce.
type Table struct {
	clock    Clock
	log      *logger.Logger
	dispatch func(func())

	mu      sync.Mutex
	seq     uint64
	tasks   map[string]*task
	stopped bool
}

type task struct {
	id   uint64
	stop Stopper
}

// NewTable creates an empty table on the given clock.
func NewTable(clock Clock, opts ...Option) *Table {
	t := &Table{
		clock:    clock,
		log:      logger.Nop(),
		dispatch: func(f func()) { f() },
		tasks:    make(map[string]*task),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Clock returns the table's clock.
func (t *Table) Clock() Clock { return t.clock }

// Schedule arms fn to run after delay under key, replacing any task
// already pending for that key.
func (t *Table) Schedule(key string, delay time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}
	if old, ok := t.tasks[key]; ok {
		old.stop.Stop()
		t.log.Debug("rescheduled %s", key)
	}

	t.seq++
	id := t.seq
	tk := &task{id: id}
	t.tasks[key] = tk
	tk.stop = t.clock.AfterFunc(delay, func() { t.fire(key, id, fn) })
}

// fire runs fn if the task is still the current one for key. A timer whose
// Stop lost the race against expiry finds a newer id and does nothing.
func (t *Table) fire(key string, id uint64, fn func()) {
	t.mu.Lock()
	cur, ok := t.tasks[key]
	if !ok || cur.id != id {
		t.mu.Unlock()
		return
	}
	delete(t.tasks, key)
	t.mu.Unlock()

	t.dispatch(fn)
}

// Cancel drops the pending task for key. It reports whether one existed.
func (t *Table) Cancel(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	tk, ok := t.tasks[key]
	if !ok {
		return false
	}
	tk.stop.Stop()
	delete(t.tasks, key)
	return true
}

// Pending reports whether a task is armed for key.
func (t *Table) Pending(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.tasks[key]
	return ok
}

// Len returns the number of armed tasks.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tasks)
}

// StopAll cancels every pending task and refuses new ones. Nothing is
// flushed.
func (t *Table) StopAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key, tk := range t.tasks {
		tk.stop.Stop()
		delete(t.tasks, key)
	}
	t.stopped = true
	t.log.Debug("timer table stopped")
}
