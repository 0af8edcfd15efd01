// ABOUTME: Snapshot holder shared by the state stores
// ABOUTME: Swaps immutable snapshots under a lock and publishes outside it
package state

import (
	"sync"

	"github.com/harperreed/keyaccounts/observe"
)

// cell holds the current snapshot. clone must return a copy that shares no
// mutable backing arrays with its input.
type cell[S any] struct {
	mu    sync.Mutex
	snap  S
	clone func(S) S
	subs  observe.Broadcaster[S]
}

func (c *cell[S]) get() S {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clone(c.snap)
}

// update applies fn to a copy of the snapshot, installs the result and
// notifies subscribers with a further copy.
func (c *cell[S]) update(fn func(S) S) {
	c.mu.Lock()
	next := fn(c.clone(c.snap))
	c.snap = next
	out := c.clone(next)
	c.mu.Unlock()

	c.subs.Publish(out)
}

func (c *cell[S]) subscribe(fn func(S)) func() {
	return c.subs.Subscribe(fn)
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append(make([]T, 0, len(in)), in...)
}

// cloneRecords copies list and every record in it with clone.
func cloneRecords[T any](list []T, clone func(T) T) []T {
	if list == nil {
		return nil
	}
	out := make([]T, len(list))
	for i, item := range list {
		out[i] = clone(item)
	}
	return out
}

// replaceByID returns a copy of list with the element whose id matches replaced by v.
// A missing id leaves the list unchanged.
func replaceByID[T any](list []T, id string, idOf func(T) string, v T) []T {
	out := make([]T, len(list))
	for i, item := range list {
		if idOf(item) == id {
			out[i] = v
			continue
		}
		out[i] = item
	}
	return out
}

// upsertByID replaces the element whose id matches, or appends v when none does.
func upsertByID[T any](list []T, id string, idOf func(T) string, v T) []T {
	if _, ok := findByID(list, id, idOf); ok {
		return replaceByID(list, id, idOf, v)
	}
	return append(cloneSlice(list), v)
}

// removeByID returns a copy of list without the elements whose id matches.
func removeByID[T any](list []T, id string, idOf func(T) string) []T {
	out := make([]T, 0, len(list))
	for _, item := range list {
		if idOf(item) != id {
			out = append(out, item)
		}
	}
	return out
}

func findByID[T any](list []T, id string, idOf func(T) string) (T, bool) {
	for _, item := range list {
		if idOf(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return cloneSlice(ids)
		}
	}
	return append(cloneSlice(ids), id)
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
