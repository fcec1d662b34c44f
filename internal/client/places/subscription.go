package places

import "sync"

// Subscription is a single-slot channel of place selections. A user action
// produces at most one Selection; publishing while the slot is full drops the
// newcomer, and closing the subscription is the teardown/unsubscribe step for
// the view that was listening.
type Subscription struct {
	mu     sync.Mutex
	ch     chan Selection
	closed bool
}

// NewSubscription constructs an open subscription.
func NewSubscription() *Subscription {
	return &Subscription{ch: make(chan Selection, 1)}
}

// Publish offers a selection to the subscriber. It reports whether the
// selection was accepted; a full slot or a closed subscription drops it.
func (s *Subscription) Publish(selection Selection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- selection:
		return true
	default:
		return false
	}
}

// Selections exposes the receive side.
func (s *Subscription) Selections() <-chan Selection {
	return s.ch
}

// Close tears the subscription down. Safe to call more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
