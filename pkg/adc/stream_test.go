package adc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gotherm/pkg/config"
)

func TestNewStream_Defaults(t *testing.T) {
	cfg := config.Default()
	cfg.Serial.BaudRate = 0

	d := NewStream(cfg)
	assert.Equal(t, DefaultBaudRate, d.baudRate)
	assert.Equal(t, cfg.Acquisition.SamplesPerRead*BytesPerSample, d.frameBytes)
}

func TestStream_TryReadBatchBeforeStart(t *testing.T) {
	d := NewStream(config.Default())

	batch := make([]RawSample, 4)
	_, err := d.TryReadBatch(batch)
	assert.ErrorIs(t, err, ErrStopped)
}

func TestStream_LifecycleMisuse(t *testing.T) {
	d := NewStream(config.Default())

	assert.Error(t, d.Stop(), "Stop before start must fail")
	assert.NoError(t, d.Close(), "Close before start releases nothing")
	assert.Error(t, d.Start(), "Start after close must fail")
}

func TestStream_StartBadPort(t *testing.T) {
	cfg := config.Default()
	cfg.Serial.Port = "/dev/nonexistent-gotherm-port"

	d := NewStream(cfg)
	err := d.Start()
	require.Error(t, err, "Opening a missing port must fail startup")
}
