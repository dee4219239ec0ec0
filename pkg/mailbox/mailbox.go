// Package mailbox provides single-slot "latest value" handoff between tasks.
package mailbox

import "sync"

// Publisher accepts values.
type Publisher[T any] interface {
	Publish(T)
}

// Mailbox holds at most one pending value. Publishing overwrites an
// unconsumed value, there is no queueing and no backpressure.
type Mailbox[T any] struct {
	lock    sync.Mutex
	value   T
	pending bool
}

// New creates an empty Mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{}
}

// Publish implements Publisher.
func (m *Mailbox[T]) Publish(v T) {
	m.lock.Lock()
	m.value, m.pending = v, true
	m.lock.Unlock()
}

// TryTake takes the pending value if any.
func (m *Mailbox[T]) TryTake() (v T, ok bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.pending {
		v, ok = m.value, true
		var zero T
		m.value, m.pending = zero, false
	}
	return
}

// Fanout publishes each value to all Publishers.
type Fanout[T any] []Publisher[T]

// Publish implements Publisher.
func (f Fanout[T]) Publish(v T) {
	for _, p := range f {
		p.Publish(v)
	}
}

// Latest is the consumer side cache of a Mailbox: it reuses the
// last taken value when nothing is pending. Not safe for concurrent use,
// it belongs to a single consumer.
type Latest[T any] struct {
	Source *Mailbox[T]

	value T
	valid bool
}

// NewLatest creates a Latest on a Mailbox, starting from the zero value.
func NewLatest[T any](source *Mailbox[T]) *Latest[T] {
	return &Latest[T]{Source: source}
}

// Get returns the latest value, and whether any value was ever received.
func (l *Latest[T]) Get() (T, bool) {
	if v, ok := l.Source.TryTake(); ok {
		l.value, l.valid = v, true
	}
	return l.value, l.valid
}
