// Package monitor runs the consumer side of the acquisition pipeline: it
// blocks on the readiness signal, drains the acquisition source until it is
// empty, reduces each batch to its mean, calibrates the mean and emits a
// paced report line.
package monitor

import (
	"errors"
	"fmt"
	"time"

	"github.com/itohio/gotherm/pkg/adc"
	"github.com/itohio/gotherm/pkg/calib"
	"github.com/itohio/gotherm/pkg/config"
	"github.com/itohio/gotherm/pkg/notify"
)

// The drain loop is a two-state machine: Idle blocks on the readiness
// signal, Draining pulls batches until the source reports no data.
type state int

const (
	stateIdle state = iota
	stateDraining
)

// Monitor consumes batches from a single acquisition source.
type Monitor struct {
	src      adc.Source
	sig      *notify.Signal
	policy   calib.Policy
	reporter Reporter
	pace     *pacer
	bitWidth uint

	// batch is the scratch buffer for one drain iteration. It is owned by
	// the loop and its contents are dead once the iteration's mean has
	// been taken.
	batch []adc.RawSample

	now func() time.Time
}

// New wires a monitor to the source: the source's batch-ready callback is
// bound to the readiness signal. The pool-overflow callback is deliberately
// left unregistered, since the source's flush-on-overflow policy already
// bounds the backlog. Call before src.Start.
func New(cfg *config.Config, src adc.Source, policy calib.Policy, reporter Reporter) *Monitor {
	sig := notify.New()
	src.OnBatchReady(sig.Notify)

	return &Monitor{
		src:      src,
		sig:      sig,
		policy:   policy,
		reporter: reporter,
		pace:     newPacer(cfg.Reporting.Interval),
		bitWidth: cfg.Acquisition.BitWidth,
		batch:    make([]adc.RawSample, cfg.Acquisition.SamplesPerRead),
		now:      time.Now,
	}
}

// Run executes the drain loop until the source stops or fails. It returns
// nil on a clean stop and the source's error on a hardware failure; no
// internal retry is attempted. Run must only be called once, from a single
// goroutine.
func (m *Monitor) Run() error {
	st := stateIdle

	for {
		switch st {
		case stateIdle:
			m.sig.Wait()
			st = stateDraining

		case stateDraining:
			n, err := m.src.TryReadBatch(m.batch)
			switch {
			case err == nil:
				m.process(m.batch[:n])
			case errors.Is(err, adc.ErrNoData):
				// Source exhausted; go back to blocking.
				st = stateIdle
			case errors.Is(err, adc.ErrStopped):
				return nil
			default:
				return fmt.Errorf("acquisition failed: %w", err)
			}
		}
	}
}

// process reduces one non-empty batch and emits a paced report.
func (m *Monitor) process(batch []adc.RawSample) {
	mean := reduceBatch(batch)
	result := m.policy.Calibrate(mean, m.bitWidth)

	if m.pace.allow(m.now()) {
		m.reporter.Report(m.policy.Line(result))
	}
}

// reduceBatch returns the truncating integer mean of the batch codes.
// Callers guarantee the batch is non-empty: TryReadBatch reports ErrNoData
// instead of ever producing an empty read.
func reduceBatch(batch []adc.RawSample) uint32 {
	var sum uint32
	for _, s := range batch {
		sum += uint32(s.Code)
	}
	return sum / uint32(len(batch))
}
