//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_US = 50  // ADC read interval in microseconds (20 kHz)
	NUM_SAMPLES        = 100 // Samples per frame

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // Configured converter resolution in bits
	ADC_BITS         = 10   // Code width shipped on the wire (0-1023)
	ADC_CHANNEL      = 6    // Channel tag carried in each wire record

	// ADC pin
	PIN_ADC = machine.A1

	// Serial configuration
	// Baud rate calculation: one frame = 100 records * 2 bytes = 200 bytes,
	// shipped every 5 ms = 40,000 bytes/sec. UART 8N1: 10 bits/byte =
	// 400,000 baud minimum; 460800 provides headroom, 115200 does not keep
	// up at full rate (frames then coalesce in the store and the oldest
	// are flushed, which the host side tolerates).
	UART_BAUD_RATE = 460800
)
