//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"
)

var (
	adcSensor machine.ADC
	uart      = machine.UART0

	// Frame assembly - one wire record per conversion
	frame    [NUM_SAMPLES * 2]byte
	framePos int

	// Timing
	lastSample time.Time
)

func main() {
	// Configure ADC pin and set up the ADC
	PIN_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})

	adcSensor = machine.ADC{Pin: PIN_ADC}
	adcSensor.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	// Configure UART for the frame stream
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	// Initialize timing
	lastSample = time.Now()

	// Main loop
	for {
		now := time.Now()

		// Sample at the fixed rate
		if now.Sub(lastSample) >= time.Duration(SAMPLE_INTERVAL_US)*time.Microsecond {
			sampleADC()
			lastSample = now
		}

		// Ship the frame once it is full
		if framePos >= len(frame) {
			uart.Write(frame[:])
			framePos = 0
		}

		// Small delay to prevent tight loop (but still allow precise timing)
		time.Sleep(10 * time.Microsecond)
	}
}

func sampleADC() {
	// machine.ADC.Get returns a left-aligned 16-bit value; shift down to
	// the configured code width.
	code := adcSensor.Get() >> (16 - ADC_BITS)

	// Wire record: bits [11:0] code, bits [15:12] channel tag, little endian.
	word := uint16(ADC_CHANNEL)<<12 | code&0x0FFF

	frame[framePos] = byte(word)
	frame[framePos+1] = byte(word >> 8)
	framePos += 2
}
