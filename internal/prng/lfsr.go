// internal/prng/lfsr.go
package prng

// Seed is the power-on register value. Must be non-zero.
const Seed uint16 = 0xACE1

// taps is the Galois feedback mask.
const taps uint16 = 0xB400

// LFSR is a 16-bit Galois linear-feedback shift register.
// The zero value is not usable; construct with New.
type LFSR struct {
	reg uint16
}

// New returns a register holding Seed.
func New() *LFSR {
	return &LFSR{reg: Seed}
}

// State returns the current register value.
func (l *LFSR) State() uint16 { return l.reg }

// Byte advances the register once and returns its high byte.
func (l *LFSR) Byte() uint8 {
	out := l.reg & 1
	l.reg >>= 1
	if out == 1 {
		l.reg ^= taps
	}
	return uint8(l.reg >> 8)
}

// Intn advances the register once and returns a value in [0, n).
// The reduction subtracts n until the byte fits, so values are biased
// toward the low end when 256 is not a multiple of n. For n below 2 the
// only possible value is 0.
func (l *LFSR) Intn(n uint8) uint8 {
	r := l.Byte()
	if n < 2 {
		return 0
	}
	for r >= n {
		r -= n
	}
	return r
}
