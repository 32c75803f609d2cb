package monitor

import "time"

// pacer throttles report emission to at most one per interval. Statistics
// arriving inside the interval are still consumed upstream; only the report
// is suppressed. The gate operates per drain iteration, so the emission
// cadence is independent of how fast batches arrive.
type pacer struct {
	interval time.Duration
	last     time.Time
}

func newPacer(interval time.Duration) *pacer {
	return &pacer{interval: interval}
}

// allow reports whether an emission may happen at time t, and latches t as
// the new emission time if so. The first call always allows.
func (p *pacer) allow(t time.Time) bool {
	if !p.last.IsZero() && t.Sub(p.last) < p.interval {
		return false
	}
	p.last = t
	return true
}
