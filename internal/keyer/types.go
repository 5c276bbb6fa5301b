// internal/keyer/types.go
package keyer

import "fmt"

// Mode is the paddle keying mode.
type Mode uint8

const (
	IambicA Mode = iota
	IambicB
	Ultimatic
	DahPriority
)

func (m Mode) String() string {
	switch m {
	case IambicA:
		return "iambic_a"
	case IambicB:
		return "iambic_b"
	case Ultimatic:
		return "ultimatic"
	case DahPriority:
		return "dah_priority"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ParseMode maps a config name onto a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "iambic_a":
		return IambicA, nil
	case "iambic_b":
		return IambicB, nil
	case "ultimatic":
		return Ultimatic, nil
	case "dah_priority":
		return DahPriority, nil
	}
	return 0, fmt.Errorf("keyer: unknown mode %q", s)
}

// Flag names one persisted boolean setting.
// Flags double as bit positions in the persisted flag word.
type Flag uint8

const (
	FlagPaddleSwap Flag = iota
	FlagSidetone
	FlagTXKey
	FlagTXInvert
	FlagConfigLock
)

func (f Flag) String() string {
	switch f {
	case FlagPaddleSwap:
		return "paddle_swap"
	case FlagSidetone:
		return "sidetone"
	case FlagTXKey:
		return "tx_key"
	case FlagTXInvert:
		return "tx_invert"
	case FlagConfigLock:
		return "config_lock"
	default:
		return fmt.Sprintf("flag(%d)", uint8(f))
	}
}

// Mask returns the bit for f inside a flag word.
func (f Flag) Mask() uint16 { return 1 << uint(f) }

// Direction of a one-step adjustment.
type Direction int8

const (
	Down Direction = -1
	Up   Direction = 1
)

// SpeedParam selects which speed value Speed adjusts.
type SpeedParam uint8

const (
	SpeedOverall SpeedParam = iota
	SpeedFarnsworth
)

// Element is a raw Morse element.
type Element uint8

const (
	Dit Element = iota
	Dah
)

// Contacts is the raw, undebounced state of both paddle contacts.
type Contacts struct {
	Dit bool
	Dah bool
}

// Timing in dit units.
const (
	DahLen     = 3
	ElementGap = 1
	CharGap    = 3
	WordGap    = 7
)

// UserBeaconInterval is the persisted user scalar holding the beacon interval in seconds.
const UserBeaconInterval uint8 = 1

// MaxBeaconInterval is the largest accepted beacon interval.
const MaxBeaconInterval = 9999

// MacroSlots is the number of message memories. The last one is the beacon payload.
const MacroSlots = 4

// BeaconSlot is the macro played by the beacon.
const BeaconSlot = MacroSlots
