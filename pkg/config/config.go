package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported continuous-mode sample rate range of the sampling engine.
// Rates outside this range are rejected at configuration time.
const (
	SampleRateMinHz = 20_000
	SampleRateMaxHz = 2_000_000
)

// Supported conversion resolutions.
const (
	BitWidthMin = 9
	BitWidthMax = 12
)

// Policy names accepted by calibration.policy.
const (
	PolicyPolynomial = "polynomial"
	PolicyLinear     = "linear"
)

// Config represents the application configuration.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	Acquisition AcquisitionConfig `yaml:"acquisition"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Reporting   ReportingConfig   `yaml:"reporting"`
	Sim         SimConfig         `yaml:"sim"`
}

// SerialConfig contains serial port configuration for the sampling MCU link.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// AcquisitionConfig contains the static acquisition parameters. These are
// fixed for the lifetime of the process; there is no runtime reconfiguration.
type AcquisitionConfig struct {
	Channel        uint8  `yaml:"channel"`          // ADC channel index
	Unit           uint8  `yaml:"unit"`             // ADC unit index
	AttenuationDB  int    `yaml:"attenuation_db"`   // Input attenuation (dB)
	BitWidth       uint   `yaml:"bit_width"`        // Conversion resolution (bits)
	SampleRateHz   uint32 `yaml:"sample_rate_hz"`   // Continuous sampling rate
	SamplesPerRead int    `yaml:"samples_per_read"` // Samples per frame / per drain read
	MaxStoreFrames int    `yaml:"max_store_frames"` // Bounded frame store depth (flush-on-overflow)
}

// CalibrationConfig selects the calibration policy and its coefficients.
type CalibrationConfig struct {
	Policy      string          `yaml:"policy"`
	VRef        float64         `yaml:"vref"`
	Correction  CubicConfig     `yaml:"correction"`  // polynomial policy: code nonlinearity correction
	Temperature QuadraticConfig `yaml:"temperature"` // polynomial policy: corrected code to °C
	Slope       float64         `yaml:"slope"`       // linear policy: mean to °C
	Offset      float64         `yaml:"offset"`
}

// CubicConfig contains cubic polynomial coefficients c0 + c1*x + c2*x² + c3*x³.
type CubicConfig struct {
	C0 float64 `yaml:"c0"`
	C1 float64 `yaml:"c1"`
	C2 float64 `yaml:"c2"`
	C3 float64 `yaml:"c3"`
}

// QuadraticConfig contains quadratic polynomial coefficients t0 + t1*x + t2*x².
type QuadraticConfig struct {
	T0 float64 `yaml:"t0"`
	T1 float64 `yaml:"t1"`
	T2 float64 `yaml:"t2"`
}

// ReportingConfig contains the report pacing parameters.
type ReportingConfig struct {
	Interval time.Duration `yaml:"interval"` // Minimum time between emitted reports
}

// SimConfig contains simulated source configuration.
type SimConfig struct {
	Level         uint16        `yaml:"level"`          // Center raw code
	NoiseCodes    float64       `yaml:"noise_codes"`    // Noise amplitude (codes)
	FrameInterval time.Duration `yaml:"frame_interval"` // Time between generated frames
}

// ValidationError describes a statically invalid configuration value. It is
// returned by Validate before any hardware resource is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			BaudRate: 460800, // Must match the firmware's UART_BAUD_RATE
		},
		Acquisition: AcquisitionConfig{
			Channel:        6,
			Unit:           1,
			AttenuationDB:  12,
			BitWidth:       10,
			SampleRateHz:   20_000,
			SamplesPerRead: 100,
			MaxStoreFrames: 5,
		},
		Calibration: CalibrationConfig{
			Policy: PolicyPolynomial,
			VRef:   3.3,
			Correction: CubicConfig{
				C0: 40.4597,
				C1: 0.976323,
				C2: 0.000163748,
				C3: -1.76614e-7,
			},
			Temperature: QuadraticConfig{
				T0: 129.85,
				T1: -0.150499,
				T2: 0.0000343308,
			},
			Slope:  -0.11373,
			Offset: 121.657,
		},
		Reporting: ReportingConfig{
			Interval: time.Second,
		},
		Sim: SimConfig{
			Level:         512,
			NoiseCodes:    4.0,
			FrameInterval: 5 * time.Millisecond, // 100 samples at 20 kHz
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values. The result has passed Validate;
// a *ValidationError means the file holds a value the sampling engine cannot
// honor, and the caller must not proceed to acquisition.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate performs the static capability checks. Values are never clamped
// silently; an unsupported value fails here, before start.
func (c *Config) Validate() error {
	a := c.Acquisition

	if a.SampleRateHz < SampleRateMinHz || a.SampleRateHz > SampleRateMaxHz {
		return &ValidationError{
			Field:  "acquisition.sample_rate_hz",
			Reason: fmt.Sprintf("%d Hz outside supported range [%d, %d]", a.SampleRateHz, SampleRateMinHz, SampleRateMaxHz),
		}
	}
	if a.BitWidth < BitWidthMin || a.BitWidth > BitWidthMax {
		return &ValidationError{
			Field:  "acquisition.bit_width",
			Reason: fmt.Sprintf("%d bits outside supported range [%d, %d]", a.BitWidth, BitWidthMin, BitWidthMax),
		}
	}
	if a.SamplesPerRead <= 0 {
		return &ValidationError{
			Field:  "acquisition.samples_per_read",
			Reason: "must be positive",
		}
	}
	if a.MaxStoreFrames <= 0 {
		return &ValidationError{
			Field:  "acquisition.max_store_frames",
			Reason: "must be positive",
		}
	}

	if c.Reporting.Interval <= 0 {
		return &ValidationError{
			Field:  "reporting.interval",
			Reason: "must be positive",
		}
	}

	switch c.Calibration.Policy {
	case PolicyPolynomial, PolicyLinear:
	default:
		return &ValidationError{
			Field:  "calibration.policy",
			Reason: fmt.Sprintf("unknown policy %q (want %q or %q)", c.Calibration.Policy, PolicyPolynomial, PolicyLinear),
		}
	}
	if c.Calibration.VRef <= 0 {
		return &ValidationError{
			Field:  "calibration.vref",
			Reason: "must be positive",
		}
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Acquisition.BitWidth == 0 {
		c.Acquisition.BitWidth = def.Acquisition.BitWidth
	}
	if c.Acquisition.SampleRateHz == 0 {
		c.Acquisition.SampleRateHz = def.Acquisition.SampleRateHz
	}
	if c.Acquisition.SamplesPerRead == 0 {
		c.Acquisition.SamplesPerRead = def.Acquisition.SamplesPerRead
	}
	if c.Acquisition.MaxStoreFrames == 0 {
		c.Acquisition.MaxStoreFrames = def.Acquisition.MaxStoreFrames
	}
	if c.Acquisition.AttenuationDB == 0 {
		c.Acquisition.AttenuationDB = def.Acquisition.AttenuationDB
	}

	if c.Calibration.Policy == "" {
		c.Calibration.Policy = def.Calibration.Policy
	}
	if c.Calibration.VRef == 0 {
		c.Calibration.VRef = def.Calibration.VRef
	}
	if (c.Calibration.Correction == CubicConfig{}) {
		c.Calibration.Correction = def.Calibration.Correction
	}
	if (c.Calibration.Temperature == QuadraticConfig{}) {
		c.Calibration.Temperature = def.Calibration.Temperature
	}
	if c.Calibration.Slope == 0 && c.Calibration.Offset == 0 {
		c.Calibration.Slope = def.Calibration.Slope
		c.Calibration.Offset = def.Calibration.Offset
	}

	if c.Reporting.Interval == 0 {
		c.Reporting.Interval = def.Reporting.Interval
	}

	if c.Sim.Level == 0 {
		c.Sim.Level = def.Sim.Level
	}
	if c.Sim.NoiseCodes == 0 {
		c.Sim.NoiseCodes = def.Sim.NoiseCodes
	}
	if c.Sim.FrameInterval == 0 {
		c.Sim.FrameInterval = def.Sim.FrameInterval
	}
}
