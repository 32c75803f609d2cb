package adc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/gotherm/pkg/config"
)

// Sim simulates the sampling MCU for development and tests. It produces
// frames of codes centered on a configured level with deterministic
// sinusoidal noise, at a configured frame interval, through the same
// bounded store and callback path as the real source.
type Sim struct {
	channel        uint8
	level          uint16
	noise          float32
	codeMax        uint16
	samplesPerRead int
	frameInterval  time.Duration

	store *frameStore

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	stopped bool
	closed  bool

	seq uint32 // sample counter driving the noise phase
}

// Ensure Sim implements Source.
var _ Source = (*Sim)(nil)

// NewSim creates a simulated source from the configuration.
func NewSim(cfg *config.Config) *Sim {
	ctx, cancel := context.WithCancel(context.Background())

	return &Sim{
		channel:        cfg.Acquisition.Channel,
		level:          cfg.Sim.Level,
		noise:          float32(cfg.Sim.NoiseCodes),
		codeMax:        uint16(1)<<cfg.Acquisition.BitWidth - 1,
		samplesPerRead: cfg.Acquisition.SamplesPerRead,
		frameInterval:  cfg.Sim.FrameInterval,
		store:          newFrameStore(cfg.Acquisition.MaxStoreFrames),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// OnBatchReady registers the batch-ready callback. Must be called before Start.
func (m *Sim) OnBatchReady(fn func()) {
	m.store.onReady = fn
}

// OnOverflow registers the store overflow callback. Must be called before Start.
func (m *Sim) OnOverflow(fn func()) {
	m.store.onOverflow = fn
}

// Start begins generating frames.
func (m *Sim) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("start after close: %w", ErrStopped)
	}
	if m.started {
		return fmt.Errorf("already started")
	}

	m.started = true
	go m.generateFrames()

	return nil
}

// Stop ends frame generation and wakes the blocked consumer, if any.
func (m *Sim) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started || m.stopped {
		return fmt.Errorf("stop without start: %w", ErrStopped)
	}

	m.cancel()
	m.stopped = true

	if m.store.onReady != nil {
		m.store.onReady()
	}

	return nil
}

// Close releases the simulated source. Must follow Stop.
func (m *Sim) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	if m.started && !m.stopped {
		return fmt.Errorf("close without stop: %w", ErrStopped)
	}
	m.closed = true

	return nil
}

// TryReadBatch pops one buffered frame and decodes it into dst. Never blocks.
func (m *Sim) TryReadBatch(dst []RawSample) (int, error) {
	if frame, ok := m.store.pop(); ok {
		return DecodeFrame(dst, frame)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started || m.stopped || m.closed {
		return 0, ErrStopped
	}
	return 0, ErrNoData
}

// generateFrames produces one frame per tick.
func (m *Sim) generateFrames() {
	ticker := time.NewTicker(m.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.store.push(m.generateFrame())
		}
	}
}

// generateFrame synthesizes one frame of codes around the configured level.
func (m *Sim) generateFrame() []byte {
	samples := make([]RawSample, m.samplesPerRead)
	for i := range samples {
		phase := float32(m.seq)
		m.seq++

		noise := (math32.Sin(phase*0.37) + math32.Cos(phase*0.91)) * m.noise * 0.5

		code := float32(m.level) + noise
		if code < 0 {
			code = 0
		} else if code > float32(m.codeMax) {
			code = float32(m.codeMax)
		}

		samples[i] = RawSample{
			Channel: m.channel,
			Code:    uint16(code),
		}
	}

	return EncodeFrame(make([]byte, 0, len(samples)*BytesPerSample), samples)
}
