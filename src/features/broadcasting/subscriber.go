package broadcasting

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Subscriber is the notification handle shared by the Registry and one
// session. Notifications carry no payload, so the queue is a counter of
// pending wake-ups plus a single-slot channel to unblock the session.
type Subscriber struct {
	ID string

	mu       sync.Mutex
	pending  int
	closed   bool
	coalesce bool
	wake     chan struct{}
}

// NewSubscriber creates an open subscriber. With coalesce set, pending
// notifications collapse into one.
func NewSubscriber(coalesce bool) *Subscriber {
	return &Subscriber{
		ID:       uuid.New().String(),
		coalesce: coalesce,
		wake:     make(chan struct{}, 1),
	}
}

// Notify queues one notification. It never blocks and reports false once the
// owning session has ended.
func (s *Subscriber) Notify() bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if !s.coalesce || s.pending == 0 {
		s.pending++
	}
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

// next blocks until a notification is pending and consumes it. It returns
// false when ctx is done.
func (s *Subscriber) next(ctx context.Context) bool {
	for {
		s.mu.Lock()
		if s.pending > 0 {
			s.pending--
			s.mu.Unlock()
			return true
		}
		s.mu.Unlock()

		select {
		case <-s.wake:
		case <-ctx.Done():
			return false
		}
	}
}

// close makes every later Notify fail.
func (s *Subscriber) close() {
	s.mu.Lock()
	s.closed = true
	s.pending = 0
	s.mu.Unlock()
}
