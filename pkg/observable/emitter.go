// Package observable provides a minimal synchronous publish/subscribe
// primitive. Stores notify an Emitter after every cache mutation so that
// derived views and UI bindings can recompute.
package observable

import "sync"

// Emitter delivers change notifications to registered subscribers.
// Delivery is synchronous and happens on the notifying goroutine.
type Emitter struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{subs: make(map[int]func())}
}

// Subscribe registers fn to be invoked on every Notify. The returned
// function removes the subscription.
func (e *Emitter) Subscribe(fn func()) (unsubscribe func()) {
	e.mu.Lock()
	id := e.next
	e.next++
	e.subs[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// Notify invokes every subscriber. Subscribers registered or removed while
// a notification is in flight take effect on the next Notify.
func (e *Emitter) Notify() {
	e.mu.Lock()
	fns := make([]func(), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len returns the number of active subscriptions.
func (e *Emitter) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}
