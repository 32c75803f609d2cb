// Package calib maps averaged raw codes to engineering units. Two
// interchangeable policies exist: a polynomial policy that first corrects
// for converter nonlinearity, and a plain linear policy. The policy is
// chosen once at configuration time; both are pure functions of the mean.
package calib

import (
	"fmt"

	"github.com/itohio/gotherm/pkg/config"
)

// Result holds the calibrated values derived from one averaged raw code.
type Result struct {
	Raw          uint32  // Averaged raw code
	Corrected    float64 // Nonlinearity-corrected code (equals Raw under the linear policy)
	TemperatureC float64
	VoltageV     float64
}

// Policy converts an averaged raw code to a Result and formats the
// corresponding report line. Implementations are pure and deterministic.
type Policy interface {
	Calibrate(mean uint32, bitWidth uint) Result
	Line(r Result) string
}

// Polynomial corrects converter nonlinearity with a cubic polynomial of the
// mean, then maps the corrected code to temperature with a quadratic.
type Polynomial struct {
	C0, C1, C2, C3 float64 // corrected = C0 + C1·m + C2·m² + C3·m³
	T0, T1, T2     float64 // °C = T0 + T1·c + T2·c²
	VRef           float64
}

var _ Policy = Polynomial{}

// Calibrate implements Policy.
func (p Polynomial) Calibrate(mean uint32, bitWidth uint) Result {
	m := float64(mean)
	m2 := m * m
	m3 := m2 * m
	corrected := p.C0 + p.C1*m + p.C2*m2 + p.C3*m3

	c2 := corrected * corrected
	temp := p.T0 + p.T1*corrected + p.T2*c2

	voltage := corrected * p.VRef / float64(uint64(1)<<bitWidth)

	return Result{
		Raw:          mean,
		Corrected:    corrected,
		TemperatureC: temp,
		VoltageV:     voltage,
	}
}

// Line implements Policy. The corrected code is printed truncated to an
// integer, the temperature to one decimal and the voltage to four.
func (p Polynomial) Line(r Result) string {
	return fmt.Sprintf("Avg reading: %d corrected %d (%.1f) [%.4fV]",
		r.Raw, uint32(r.Corrected), r.TemperatureC, r.VoltageV)
}

// Linear maps the mean straight to temperature with a slope and offset and
// applies no nonlinearity correction.
type Linear struct {
	Slope, Offset float64
	VRef          float64
}

var _ Policy = Linear{}

// Calibrate implements Policy.
func (l Linear) Calibrate(mean uint32, bitWidth uint) Result {
	m := float64(mean)

	return Result{
		Raw:          mean,
		Corrected:    m,
		TemperatureC: m*l.Slope + l.Offset,
		VoltageV:     m * l.VRef / float64(uint64(1)<<bitWidth),
	}
}

// Line implements Policy. Temperature is printed truncated to an integer.
func (l Linear) Line(r Result) string {
	return fmt.Sprintf("Avg reading: %d (%d) [%.4fV]",
		r.Raw, int64(r.TemperatureC), r.VoltageV)
}

// FromConfig builds the configured policy.
func FromConfig(cfg *config.CalibrationConfig) (Policy, error) {
	switch cfg.Policy {
	case config.PolicyPolynomial:
		return Polynomial{
			C0:   cfg.Correction.C0,
			C1:   cfg.Correction.C1,
			C2:   cfg.Correction.C2,
			C3:   cfg.Correction.C3,
			T0:   cfg.Temperature.T0,
			T1:   cfg.Temperature.T1,
			T2:   cfg.Temperature.T2,
			VRef: cfg.VRef,
		}, nil
	case config.PolicyLinear:
		return Linear{
			Slope:  cfg.Slope,
			Offset: cfg.Offset,
			VRef:   cfg.VRef,
		}, nil
	default:
		return nil, fmt.Errorf("unknown calibration policy %q", cfg.Policy)
	}
}
