package reconcile

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Guard keeps runs over the same scope from overlapping: a caller arriving while
// a run is in flight waits for it and shares its outcome. The last successful
// outcome per scope is kept for later lookups.
type Guard[T any] struct {
	mu   sync.RWMutex
	last map[string]guardEntry[T]
	sf   singleflight.Group
}

type guardEntry[T any] struct {
	value T
	at    time.Time
}

// NewGuard creates an empty Guard.
func NewGuard[T any]() *Guard[T] {
	return &Guard[T]{last: make(map[string]guardEntry[T])}
}

// Do runs fn for scope unless a run for scope is already in flight, in which case
// it waits for that run. shared reports whether the result came from another caller's run.
func (g *Guard[T]) Do(scope string, fn func() (T, error)) (value T, shared bool, err error) {
	v, err, shared := g.sf.Do(scope, func() (any, error) {
		res, err := fn()
		if err != nil {
			return res, err
		}
		g.mu.Lock()
		g.last[scope] = guardEntry[T]{value: res, at: time.Now()}
		g.mu.Unlock()
		return res, nil
	})
	if v != nil {
		value = v.(T)
	}
	return value, shared, err
}

// Last returns the most recent successful outcome for scope.
func (g *Guard[T]) Last(scope string) (value T, at time.Time, ok bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	entry, ok := g.last[scope]
	return entry.value, entry.at, ok
}
