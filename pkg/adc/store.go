package adc

import "sync"

// frameStore is the bounded internal frame buffer shared by the source
// implementations. It models the sampling engine's conversion store: pushes
// come from the producer context, pops from the consumer's drain loop, and
// when the store is full the oldest unread frame is flushed to make room.
type frameStore struct {
	mu     sync.Mutex
	frames [][]byte
	max    int

	onReady    func()
	onOverflow func()
}

func newFrameStore(max int) *frameStore {
	return &frameStore{
		frames: make([][]byte, 0, max),
		max:    max,
	}
}

// push appends a frame, flushing the oldest one first if the store is full.
// The store takes ownership of frame. After the store is updated the
// batch-ready callback fires; on a flush the overflow callback fires first.
// Neither callback is invoked under the lock.
func (s *frameStore) push(frame []byte) {
	var overflowed bool

	s.mu.Lock()
	if len(s.frames) >= s.max {
		// Flush-on-overflow: drop the oldest unread frame.
		copy(s.frames, s.frames[1:])
		s.frames = s.frames[:len(s.frames)-1]
		overflowed = true
	}
	s.frames = append(s.frames, frame)
	s.mu.Unlock()

	if overflowed && s.onOverflow != nil {
		s.onOverflow()
	}
	if s.onReady != nil {
		s.onReady()
	}
}

// pop removes and returns the oldest frame, or false if the store is empty.
func (s *frameStore) pop() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.frames) == 0 {
		return nil, false
	}
	frame := s.frames[0]
	copy(s.frames, s.frames[1:])
	s.frames = s.frames[:len(s.frames)-1]
	return frame, true
}

// depth returns the number of buffered frames.
func (s *frameStore) depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}
