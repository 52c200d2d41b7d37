// Package stream provides a small broadcast primitive used for call event
// fan-out. Streams are multi-subscriber: attaching an observer never affects
// delivery to others, and publishing with zero subscribers is a no-op.
package stream

import "sync"

const subscriberBuffer = 32

// Stream fans published values out to every live subscriber.
type Stream[T any] struct {
	mu     sync.Mutex
	subs   map[int]chan T
	nextID int
	closed bool
}

func New[T any]() *Stream[T] {
	return &Stream[T]{subs: make(map[int]chan T)}
}

// Subscription receives values on C until the stream closes or Cancel is
// called; C is closed in either case.
type Subscription[T any] struct {
	C      <-chan T
	cancel func()
}

// Cancel detaches the subscriber. Safe to call more than once.
func (s *Subscription[T]) Cancel() { s.cancel() }

// Subscribe attaches a new subscriber. Subscribing to a closed stream
// returns an already-closed subscription.
func (s *Stream[T]) Subscribe() *Subscription[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan T, subscriberBuffer)
	if s.closed {
		close(ch)
		return &Subscription[T]{C: ch, cancel: func() {}}
	}

	id := s.nextID
	s.nextID++
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
		})
	}
	return &Subscription[T]{C: ch, cancel: cancel}
}

// Publish delivers v to every subscriber. A subscriber that has fallen
// behind its buffer misses the value rather than blocking the publisher.
// Publishing after Close is a no-op, never a failure.
func (s *Stream[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for _, ch := range s.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

// Close ends the stream. Subscribers see end-of-stream once buffered values
// are drained. Safe to call more than once.
func (s *Stream[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
