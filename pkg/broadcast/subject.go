// Package broadcast provides a small typed publish/subscribe subject.
package broadcast

import "sync"

// Subject fans every published value out to its subscribers in publish order.
// A subject created with NewBehavior also remembers the latest value and
// replays it to new subscribers.
type Subject[T any] struct {
	mu      sync.Mutex
	emitMu  sync.Mutex
	nextID  uint64
	subs    map[uint64]func(T)
	current T
	hasLast bool
	replay  bool
}

// New returns a subject that does not replay.
func New[T any]() *Subject[T] {
	return &Subject[T]{subs: make(map[uint64]func(T))}
}

// NewBehavior returns a subject seeded with initial that replays the latest
// value on subscribe.
func NewBehavior[T any](initial T) *Subject[T] {
	return &Subject[T]{
		subs:    make(map[uint64]func(T)),
		current: initial,
		hasLast: true,
		replay:  true,
	}
}

// Subscribe registers fn and returns a function that detaches it. Detaching
// twice is harmless.
func (s *Subject[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	// emitMu keeps a replay from interleaving with a concurrent Publish.
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	replay, value := s.replay && s.hasLast, s.current
	s.mu.Unlock()

	if replay {
		fn(value)
	}

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Publish records value and delivers it to every current subscriber.
// Callbacks run on the publishing goroutine, outside the subscriber lock; they
// may unsubscribe but must not publish to or subscribe on the same subject.
func (s *Subject[T]) Publish(value T) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	s.current = value
	s.hasLast = true
	targets := s.orderedLocked()
	s.mu.Unlock()

	for _, fn := range targets {
		fn(value)
	}
}

// Value returns the latest published value.
func (s *Subject[T]) Value() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.hasLast
}

// Len reports the number of attached subscribers.
func (s *Subject[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// orderedLocked returns callbacks in subscription order.
func (s *Subject[T]) orderedLocked() []func(T) {
	out := make([]func(T), 0, len(s.subs))
	for id := uint64(0); id < s.nextID; id++ {
		if fn, ok := s.subs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

// Source is the read side of a subject, handed to consumers that must not
// publish.
type Source[T any] interface {
	Subscribe(fn func(T)) (unsubscribe func())
	Value() (T, bool)
}

var _ Source[int] = (*Subject[int])(nil)
