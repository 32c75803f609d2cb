// Package adc defines the acquisition source contract for continuous
// single-channel sampling, plus a serial-attached implementation reading
// sample frames from the sampling MCU and a simulated implementation for
// development and tests.
package adc

import "errors"

// BytesPerSample is the size of one conversion record on the wire.
const BytesPerSample = 2

// CodeMask selects the conversion code bits of a wire record. The upper
// nibble carries the channel tag.
const CodeMask = 0x0FFF

var (
	// ErrNoData is returned by TryReadBatch when no complete frame is
	// buffered. It is not a failure: it is the normal signal for the
	// consumer to stop draining and re-block on the readiness signal.
	ErrNoData = errors.New("adc: no data available")

	// ErrStopped is returned once the source has been stopped or closed.
	ErrStopped = errors.New("adc: source stopped")
)

// RawSample is one hardware conversion result.
type RawSample struct {
	Channel uint8
	Code    uint16
}

// Source is an opaque producer of raw-sample batches.
//
// TryReadBatch fills dst with at most one frame's worth of samples and
// returns the count. It never blocks: when no complete frame is available
// it returns ErrNoData immediately. After Stop or Close it returns
// ErrStopped. Any other error is a session-fatal hardware failure.
//
// The batch-ready callback registered with OnBatchReady is invoked from the
// source's internal producer context every time a new frame becomes
// available; it must not block. OnOverflow is invoked when the bounded
// internal store discards its oldest frame to make room. Both callbacks
// must be registered before Start.
//
// Lifecycle is strict: Start, then Stop, then Close.
type Source interface {
	Start() error
	TryReadBatch(dst []RawSample) (int, error)
	Stop() error
	Close() error
	OnBatchReady(fn func())
	OnOverflow(fn func())
}

// DecodeFrame decodes wire records from frame into dst and returns the
// number of samples decoded. The frame length must be a multiple of
// BytesPerSample and must fit dst.
func DecodeFrame(dst []RawSample, frame []byte) (int, error) {
	if len(frame)%BytesPerSample != 0 {
		return 0, errors.New("adc: frame length is not a whole number of samples")
	}
	n := len(frame) / BytesPerSample
	if n > len(dst) {
		return 0, errors.New("adc: frame larger than destination batch")
	}
	for i := 0; i < n; i++ {
		word := uint16(frame[2*i]) | uint16(frame[2*i+1])<<8
		dst[i] = RawSample{
			Channel: uint8(word >> 12),
			Code:    word & CodeMask,
		}
	}
	return n, nil
}

// EncodeFrame appends wire records for samples to dst and returns the
// extended slice. Codes wider than CodeMask are truncated.
func EncodeFrame(dst []byte, samples []RawSample) []byte {
	for _, s := range samples {
		word := uint16(s.Channel)<<12 | s.Code&CodeMask
		dst = append(dst, byte(word), byte(word>>8))
	}
	return dst
}
