package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPacer_FirstEmissionAllowed(t *testing.T) {
	p := newPacer(time.Second)

	now := time.Unix(1000, 0)
	assert.True(t, p.allow(now))
}

func TestPacer_ThrottlesWithinInterval(t *testing.T) {
	p := newPacer(time.Second)

	start := time.Unix(1000, 0)
	assert.True(t, p.allow(start))

	// A burst of statistics inside the interval yields no further emissions.
	for ms := 1; ms < 1000; ms += 50 {
		assert.False(t, p.allow(start.Add(time.Duration(ms)*time.Millisecond)),
			"emission at +%dms should be suppressed", ms)
	}

	assert.True(t, p.allow(start.Add(time.Second)), "emission at the interval boundary is allowed")
}

func TestPacer_AtMostOnePerInterval(t *testing.T) {
	p := newPacer(time.Second)

	start := time.Unix(1000, 0)
	emitted := 0
	// 10 statistics per simulated second for 5 seconds.
	for i := 0; i < 50; i++ {
		if p.allow(start.Add(time.Duration(i) * 100 * time.Millisecond)) {
			emitted++
		}
	}

	assert.Equal(t, 5, emitted)
}

func TestPacer_IdleIntervalsEmitNothing(t *testing.T) {
	p := newPacer(time.Second)

	start := time.Unix(1000, 0)
	assert.True(t, p.allow(start))

	// No statistics arrive for a long gap; the next one is emitted
	// immediately, with no catch-up burst.
	assert.True(t, p.allow(start.Add(10*time.Second)))
	assert.False(t, p.allow(start.Add(10*time.Second+time.Millisecond)))
}
