package calib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gotherm/pkg/config"
)

func defaultPolynomial() Polynomial {
	return Polynomial{
		C0: 40.4597, C1: 0.976323, C2: 0.000163748, C3: -1.76614e-7,
		T0: 129.85, T1: -0.150499, T2: 0.0000343308,
		VRef: 3.3,
	}
}

func TestPolynomial_Calibrate(t *testing.T) {
	p := defaultPolynomial()

	tests := []struct {
		name     string
		mean     uint32
		bitWidth uint
	}{
		{name: "midscale 10-bit", mean: 512, bitWidth: 10},
		{name: "zero code", mean: 0, bitWidth: 10},
		{name: "full scale 10-bit", mean: 1023, bitWidth: 10},
		{name: "midscale 12-bit", mean: 2048, bitWidth: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Calibrate(tt.mean, tt.bitWidth)

			// Expectations computed from the coefficient definitions.
			m := float64(tt.mean)
			wantCorrected := p.C0 + p.C1*m + p.C2*m*m + p.C3*m*m*m
			wantTemp := p.T0 + p.T1*wantCorrected + p.T2*wantCorrected*wantCorrected
			wantVolt := wantCorrected * p.VRef / float64(uint64(1)<<tt.bitWidth)

			assert.Equal(t, tt.mean, got.Raw)
			assert.InDelta(t, wantCorrected, got.Corrected, 1e-9)
			assert.InDelta(t, wantTemp, got.TemperatureC, 1e-9)
			assert.InDelta(t, wantVolt, got.VoltageV, 1e-9)
		})
	}
}

func TestPolynomial_MidscaleGolden(t *testing.T) {
	p := defaultPolynomial()

	got := p.Calibrate(512, 10)
	assert.InDelta(t, 559.558, got.Corrected, 0.001)
	assert.InDelta(t, 1.8033, got.VoltageV, 0.0001)
	assert.InDelta(t, 56.386, got.TemperatureC, 0.001)
}

func TestLinear_Calibrate(t *testing.T) {
	l := Linear{Slope: -0.11373, Offset: 121.657, VRef: 3.3}

	tests := []struct {
		name     string
		mean     uint32
		bitWidth uint
		wantTemp float64
		wantVolt float64
	}{
		{
			name:     "reference point",
			mean:     300,
			bitWidth: 10,
			wantTemp: 300*-0.11373 + 121.657, // 87.538
			wantVolt: 300 * 3.3 / 1024,       // 0.9668
		},
		{
			name:     "zero code",
			mean:     0,
			bitWidth: 10,
			wantTemp: 121.657,
			wantVolt: 0,
		},
		{
			name:     "full scale",
			mean:     1023,
			bitWidth: 10,
			wantTemp: 1023*-0.11373 + 121.657,
			wantVolt: 1023 * 3.3 / 1024,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := l.Calibrate(tt.mean, tt.bitWidth)

			assert.Equal(t, tt.mean, got.Raw)
			assert.Equal(t, float64(tt.mean), got.Corrected, "Linear policy applies no correction")
			assert.InDelta(t, tt.wantTemp, got.TemperatureC, 1e-9)
			assert.InDelta(t, tt.wantVolt, got.VoltageV, 1e-9)
		})
	}
}

func TestCalibrate_Deterministic(t *testing.T) {
	policies := map[string]Policy{
		"polynomial": defaultPolynomial(),
		"linear":     Linear{Slope: -0.11373, Offset: 121.657, VRef: 3.3},
	}

	for name, p := range policies {
		t.Run(name, func(t *testing.T) {
			first := p.Calibrate(417, 10)
			for i := 0; i < 10; i++ {
				assert.Equal(t, first, p.Calibrate(417, 10))
			}
		})
	}
}

func TestPolynomial_Line(t *testing.T) {
	p := defaultPolynomial()

	line := p.Line(Result{Raw: 512, Corrected: 559.5577, TemperatureC: 56.3864, VoltageV: 1.80334})
	assert.Equal(t, "Avg reading: 512 corrected 559 (56.4) [1.8033V]", line)
}

func TestLinear_Line(t *testing.T) {
	l := Linear{Slope: -0.11373, Offset: 121.657, VRef: 3.3}

	line := l.Line(Result{Raw: 300, Corrected: 300, TemperatureC: 87.538, VoltageV: 0.96680})
	assert.Equal(t, "Avg reading: 300 (87) [0.9668V]", line)
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()

	policy, err := FromConfig(&cfg.Calibration)
	require.NoError(t, err)

	poly, ok := policy.(Polynomial)
	require.True(t, ok, "Default configuration selects the polynomial policy")
	assert.Equal(t, cfg.Calibration.Correction.C0, poly.C0)
	assert.Equal(t, cfg.Calibration.Temperature.T2, poly.T2)
	assert.Equal(t, cfg.Calibration.VRef, poly.VRef)

	cfg.Calibration.Policy = config.PolicyLinear
	policy, err = FromConfig(&cfg.Calibration)
	require.NoError(t, err)

	lin, ok := policy.(Linear)
	require.True(t, ok)
	assert.Equal(t, cfg.Calibration.Slope, lin.Slope)
	assert.Equal(t, cfg.Calibration.Offset, lin.Offset)

	cfg.Calibration.Policy = "spline"
	_, err = FromConfig(&cfg.Calibration)
	assert.Error(t, err)
}
