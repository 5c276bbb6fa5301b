// internal/store/encode.go
package store

import (
	"errors"
	"fmt"

	"github.com/tamzrod/cw-keyer/internal/keyer"
)

var errBlankMedia = errors.New("store: block has no magic")

// Encode converts a Record into a full persisted block.
// No IO. No side effects.
func Encode(r Record) []uint16 {
	regs := make([]uint16, BlockSize)

	regs[SlotMagic] = BlockMagic
	regs[SlotMode] = uint16(r.Mode)
	regs[SlotFlags] = r.Flags
	regs[SlotPitch] = r.PitchHz
	regs[SlotWPM] = uint16(r.WPM)
	regs[SlotFarnsworth] = uint16(r.FarnsworthWPM)

	for i := 0; i < UserSlots; i++ {
		regs[SlotUserStart+i] = r.User[i]
	}

	// Slots SlotReservedStart..SlotReservedEnd are RESERVED → left as zero

	for slot := 1; slot <= keyer.MacroSlots; slot++ {
		base := macroBase(slot)
		text := sanitizeMacro(r.Macros[slot-1])
		regs[base] = uint16(len(text))
		copy(regs[base+1:base+1+MacroDataSlots], encodeTextRegs(text))
	}

	return regs
}

// Decode is the inverse of Encode.
func Decode(regs []uint16) (Record, error) {
	if len(regs) < BlockSize {
		return Record{}, fmt.Errorf("store: short block: got=%d want=%d", len(regs), BlockSize)
	}
	if regs[SlotMagic] != BlockMagic {
		return Record{}, errBlankMedia
	}
	if regs[SlotMode] > uint16(keyer.DahPriority) {
		return Record{}, fmt.Errorf("store: invalid mode %d", regs[SlotMode])
	}

	r := Record{
		Mode:          keyer.Mode(regs[SlotMode]),
		Flags:         regs[SlotFlags],
		PitchHz:       regs[SlotPitch],
		WPM:           uint8(regs[SlotWPM]),
		FarnsworthWPM: uint8(regs[SlotFarnsworth]),
	}
	for i := 0; i < UserSlots; i++ {
		r.User[i] = regs[SlotUserStart+i]
	}

	for slot := 1; slot <= keyer.MacroSlots; slot++ {
		base := macroBase(slot)
		n := int(regs[base])
		if n > MacroMaxChars {
			return Record{}, fmt.Errorf("store: macro %d length %d exceeds %d", slot, n, MacroMaxChars)
		}
		r.Macros[slot-1] = decodeTextRegs(regs[base+1:base+1+MacroDataSlots], n)
	}

	return r, nil
}

// encodeTextRegs packs up to MacroMaxChars ASCII characters into registers.
// Each register stores two ASCII bytes in big-endian order.
func encodeTextRegs(text string) []uint16 {
	out := make([]uint16, MacroDataSlots)

	b := []byte(text)
	for i := 0; i < MacroMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}

func decodeTextRegs(regs []uint16, n int) string {
	b := make([]byte, 0, n)
	for _, r := range regs {
		b = append(b, byte(r>>8), byte(r))
	}
	return string(b[:n])
}

// sanitizeMacro truncates to MacroMaxChars and maps anything that is not
// printable ASCII to '?'.
func sanitizeMacro(s string) string {
	b := []byte(s)
	if len(b) > MacroMaxChars {
		b = b[:MacroMaxChars]
	}
	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}
	return string(b)
}
