// internal/sim/timing.go
package sim

import "time"

// ditDuration is the PARIS dit length at wpm.
func ditDuration(wpm uint8) time.Duration {
	if wpm == 0 {
		wpm = 1
	}
	return 1200 * time.Millisecond / time.Duration(wpm)
}

// farnsworthExtra is the spacing added to one character gap so that the
// effective speed drops to farns while characters stay at wpm.
// Zero when Farnsworth is off or not slower than wpm.
func farnsworthExtra(wpm, farns uint8) time.Duration {
	if farns == 0 || farns >= wpm {
		return 0
	}
	c := float64(wpm)
	s := float64(farns)

	// total word spacing (19 units) in seconds
	ta := (60*c - 37.2*s) / (c * s)
	gap := time.Duration(3 * ta / 19 * float64(time.Second))

	extra := gap - 3*ditDuration(wpm)
	if extra < 0 {
		return 0
	}
	return extra
}
