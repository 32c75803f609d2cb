// Package notify provides the single-slot readiness signal bridging the
// acquisition source's asynchronous completion context to the consumer task.
package notify

// Signal is a single-slot, coalescing wake primitive. Any number of Notify
// calls between consumer wakeups collapse into one pending notification;
// Wait consumes it. There is exactly one consumer.
type Signal struct {
	ch chan struct{}
}

// New creates a Signal with no pending notification.
func New() *Signal {
	return &Signal{ch: make(chan struct{}, 1)}
}

// Notify marks the signal pending and wakes the blocked waiter, if any.
// It never blocks and never allocates, so it is safe to call from the
// source's completion callback. Concurrent calls coalesce: if a
// notification is already pending, Notify is a no-op.
func (s *Signal) Notify() {
	select {
	case s.ch <- struct{}{}:
	default:
		// Already pending; coalesce.
	}
}

// Wait blocks the calling goroutine until a notification is pending, then
// clears it and returns. There is deliberately no timeout variant; the
// consumer is expected to block here for as long as no data arrives.
func (s *Signal) Wait() {
	<-s.ch
}

// Pending reports whether a notification is currently pending without
// consuming it.
func (s *Signal) Pending() bool {
	return len(s.ch) > 0
}
