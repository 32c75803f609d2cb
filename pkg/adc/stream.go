package adc

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"go.bug.st/serial"

	"github.com/itohio/gotherm/pkg/config"
)

// DefaultBaudRate is the standard baud rate for the sampling MCU link.
const DefaultBaudRate = 460800

// Stream reads sample frames from the sampling MCU over a serial port.
// The MCU performs the continuous conversions and ships one fixed-size
// frame per conversion burst; the reader goroutine plays the role of the
// hardware's completion context, pushing frames into the bounded store
// and firing the batch-ready callback.
type Stream struct {
	port       string
	baudRate   int
	frameBytes int

	store *frameStore

	conn    serial.Port
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	stopped bool
	closed  bool
	readErr error
}

// Ensure Stream implements Source.
var _ Source = (*Stream)(nil)

// NewStream creates a serial-attached source from the configuration. The
// configuration must already have passed config.Validate.
func NewStream(cfg *config.Config) *Stream {
	baud := cfg.Serial.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Stream{
		port:       cfg.Serial.Port,
		baudRate:   baud,
		frameBytes: cfg.Acquisition.SamplesPerRead * BytesPerSample,
		store:      newFrameStore(cfg.Acquisition.MaxStoreFrames),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// OnBatchReady registers the batch-ready callback. Must be called before Start.
func (d *Stream) OnBatchReady(fn func()) {
	d.store.onReady = fn
}

// OnOverflow registers the store overflow callback. Must be called before Start.
func (d *Stream) OnOverflow(fn func()) {
	d.store.onOverflow = fn
}

// Start opens the serial port and begins assembling frames.
func (d *Stream) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return fmt.Errorf("start after close: %w", ErrStopped)
	}
	if d.started {
		return fmt.Errorf("already started")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	conn, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = conn
	d.started = true

	go d.readFrames()

	return nil
}

// Stop ends acquisition. The reader goroutine is cancelled and the blocked
// consumer, if any, is woken so it can observe ErrStopped. Frames already
// buffered remain readable until drained.
func (d *Stream) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started || d.stopped {
		return fmt.Errorf("stop without start: %w", ErrStopped)
	}

	d.cancel()
	d.stopped = true

	// Wake the consumer so the drain loop can see the stop.
	if d.store.onReady != nil {
		d.store.onReady()
	}

	return nil
}

// Close releases the serial port. Must follow Stop.
func (d *Stream) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	if d.started && !d.stopped {
		return fmt.Errorf("close without stop: %w", ErrStopped)
	}

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}
	d.closed = true

	return nil
}

// TryReadBatch pops one buffered frame and decodes it into dst. It never
// blocks. Buffered frames are served even after Stop, so a stop never
// truncates data that already arrived.
func (d *Stream) TryReadBatch(dst []RawSample) (int, error) {
	if frame, ok := d.store.pop(); ok {
		return DecodeFrame(dst, frame)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.readErr != nil {
		return 0, d.readErr
	}
	if !d.started || d.stopped || d.closed {
		return 0, ErrStopped
	}
	return 0, ErrNoData
}

// readFrames assembles fixed-size frames from the serial port and pushes
// them into the store. A read failure is recorded as the session-fatal
// error surfaced by the next TryReadBatch.
func (d *Stream) readFrames() {
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
		}

		frame := make([]byte, d.frameBytes)
		if _, err := io.ReadFull(d.conn, frame); err != nil {
			select {
			case <-d.ctx.Done():
				// Stop closed the port under us; not a failure.
				return
			default:
			}

			d.mu.Lock()
			if err == io.EOF {
				d.readErr = fmt.Errorf("serial link closed: %w", err)
			} else {
				d.readErr = fmt.Errorf("serial read failed: %w", err)
			}
			onReady := d.store.onReady
			d.mu.Unlock()

			// Wake the consumer so it observes the error.
			if onReady != nil {
				onReady()
			}
			return
		}

		d.store.push(frame)
	}
}
