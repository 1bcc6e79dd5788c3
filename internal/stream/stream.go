package stream

import (
	"context"
	"sync"
)

// Stream is a latest-value stream of T. It is safe for concurrent use.
// Callbacks must not publish to the stream that is delivering to them.
type Stream[T any] struct {
	// deliver serializes deliveries so every subscriber sees values in order.
	deliver sync.Mutex

	mu     sync.Mutex
	latest T
	nextID uint64
	subs   []subscriber[T]
}

// subscriber is one registered callback.
type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// New creates a stream whose current value is initial.
func New[T any](initial T) *Stream[T] {
	return &Stream[T]{latest: initial}
}

// Latest returns the current value.
func (s *Stream[T]) Latest() T {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.latest
}

// Publish makes v the current value and delivers it to every subscriber.
func (s *Stream[T]) Publish(v T) {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	s.latest = v
	subs := make([]subscriber[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(v)
	}
}

// Subscribe delivers the current value to fn, then every later value, until
// the returned cancel function is called. Cancel is idempotent.
func (s *Stream[T]) Subscribe(fn func(T)) (cancel func()) {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber[T]{id: id, fn: fn})
	latest := s.latest
	s.mu.Unlock()

	fn(latest)

	var once sync.Once

	return func() {
		once.Do(func() { s.remove(id) })
	}
}

// Subscribers returns the number of active subscriptions.
func (s *Stream[T]) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.subs)
}

// Watch returns a channel carrying the current value and later ones until ctx
// is done, when the channel is closed. A reader that falls behind only ever
// sees the most recent value.
func (s *Stream[T]) Watch(ctx context.Context) <-chan T {
	var (
		ch     = make(chan T, 1)
		mu     sync.Mutex
		closed bool
	)

	cancel := s.Subscribe(func(v T) {
		mu.Lock()
		defer mu.Unlock()

		if closed {
			return
		}

		select {
		case ch <- v:
		default:
			// Replace the value the reader has not taken yet.
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	})

	go func() {
		<-ctx.Done()
		cancel()

		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()

	return ch
}

// remove drops the subscriber with id.
func (s *Stream[T]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// Map derives a stream whose values are fn applied to every value of src.
// The derived stream follows src for the lifetime of src.
func Map[T, U any](src *Stream[T], fn func(T) U) *Stream[U] {
	dst := New(fn(src.Latest()))

	src.Subscribe(func(v T) {
		dst.Publish(fn(v))
	})

	return dst
}
