package engine

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrLocked means the same id set is already being mutated; the duplicate
// invocation is a no-op.
var ErrLocked = errors.New("action already in flight")

// ActionLocks guards mutating actions keyed by the set of order-line ids they
// touch, so a rapid double-invocation cannot fire the same mutation twice.
type ActionLocks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewActionLocks() *ActionLocks {
	return &ActionLocks{held: make(map[string]struct{})}
}

// LockKey derives the lock key from an id set: sorted, comma-joined, so the
// same set always yields the same key regardless of order.
func LockKey(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// Do runs fn while holding the lock for the given id set. A second call with
// the same set while the first is in flight returns ErrLocked immediately.
func (l *ActionLocks) Do(ids []string, fn func() error) error {
	key := LockKey(ids)
	l.mu.Lock()
	if _, ok := l.held[key]; ok {
		l.mu.Unlock()
		return ErrLocked
	}
	l.held[key] = struct{}{}
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}()
	return fn()
}
