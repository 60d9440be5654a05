package events

import (
	"sync"
)

// Topic is a type-safe publish/subscribe hub. Subscribers are either
// callbacks or channels; both forms can be mixed on one Topic.
//
// Delivery rules:
//   - callbacks are invoked outside the Topic's lock, on the publisher's
//     goroutine
//   - channel sends are non-blocking; a full channel misses that value
//   - with replayLast, a new subscriber immediately receives the most
//     recently published value, if any
type Topic[T any] struct {
	mu         sync.RWMutex
	callbacks  map[uint64]func(T)
	channels   map[uint64]chan<- T
	nextID     uint64
	replayLast bool
	last       *T
}

// NewTopic creates a Topic. replayLast controls whether late subscribers are
// handed the last published value on registration.
func NewTopic[T any](replayLast bool) *Topic[T] {
	return &Topic[T]{
		callbacks:  make(map[uint64]func(T)),
		channels:   make(map[uint64]chan<- T),
		replayLast: replayLast,
	}
}

// Subscribe registers a callback and returns a function that removes it.
// Unsubscribing more than once is safe.
func (t *Topic[T]) Subscribe(fn func(T)) func() {
	if fn == nil {
		panic("events: callback cannot be nil")
	}

	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.callbacks[id] = fn
	replay := t.pendingReplayLocked()
	t.mu.Unlock()

	// Replay outside the lock so the callback may re-enter the Topic.
	if replay != nil {
		fn(*replay)
	}

	return func() {
		t.mu.Lock()
		delete(t.callbacks, id)
		t.mu.Unlock()
	}
}

// SubscribeChan registers a receive channel and returns a function that
// removes it. The Topic never closes the channel.
func (t *Topic[T]) SubscribeChan(ch chan<- T) func() {
	if ch == nil {
		panic("events: channel cannot be nil")
	}

	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.channels[id] = ch
	replay := t.pendingReplayLocked()
	t.mu.Unlock()

	if replay != nil {
		select {
		case ch <- *replay:
		default:
		}
	}

	return func() {
		t.mu.Lock()
		delete(t.channels, id)
		t.mu.Unlock()
	}
}

// Publish delivers value to every current subscriber.
func (t *Topic[T]) Publish(value T) {
	t.mu.Lock()
	if t.replayLast {
		v := value
		t.last = &v
	}
	cbs := make([]func(T), 0, len(t.callbacks))
	for _, fn := range t.callbacks {
		cbs = append(cbs, fn)
	}
	chs := make([]chan<- T, 0, len(t.channels))
	for _, ch := range t.channels {
		chs = append(chs, ch)
	}
	t.mu.Unlock()

	for _, fn := range cbs {
		fn(value)
	}
	for _, ch := range chs {
		select {
		case ch <- value:
		default:
		}
	}
}

// SubscriberCount returns the number of registered subscribers of both kinds.
func (t *Topic[T]) SubscriberCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.callbacks) + len(t.channels)
}

// pendingReplayLocked returns a copy of the last value when replay applies.
// Must be called with mu held.
func (t *Topic[T]) pendingReplayLocked() *T {
	if !t.replayLast || t.last == nil {
		return nil
	}
	v := *t.last
	return &v
}
