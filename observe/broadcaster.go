// ABOUTME: Generic subscriber list used by the state stores and the graph editor
// ABOUTME: Handlers are called in subscription order, outside the lock
package observe

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Broadcaster fans a value out to subscribers. It is safe for concurrent use.
type Broadcaster[T any] struct {
	mu       sync.RWMutex
	next     uint64
	order    []uint64
	handlers map[uint64]func(T)
}

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (b *Broadcaster[T]) Subscribe(fn func(T)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers == nil {
		b.handlers = make(map[uint64]func(T))
	}
	b.next++
	id := b.next
	b.handlers[id] = fn
	b.order = append(b.order, id)

	return func() { b.unsubscribe(id) }
}

func (b *Broadcaster[T]) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.handlers[id]; !ok {
		return
	}
	delete(b.handlers, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i:i], b.order[i+1:]...)
			break
		}
	}
}

// Len reports the number of live subscribers.
func (b *Broadcaster[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// Publish delivers v to every subscriber. A panicking handler is logged and
// does not stop delivery to the rest.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.RLock()
	fns := make([]func(T), 0, len(b.order))
	for _, id := range b.order {
		fns = append(fns, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		deliver(fn, v)
	}
}

func deliver[T any](fn func(T), v T) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("subscriber panicked", "panic", r)
		}
	}()
	fn(v)
}
