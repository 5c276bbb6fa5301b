// internal/store/layout.go
package store

import "github.com/tamzrod/cw-keyer/internal/keyer"

// Persisted block layout constants.
// These values define the on-media format and MUST NOT be configurable.

// ---- HEADER ----

// SlotMagic holds BlockMagic. A block without it is treated as blank media.
const SlotMagic = 0

// BlockMagic identifies layout version 1 ("K1").
const BlockMagic uint16 = 0x4B31

// ---- SCALARS ----

const SlotMode = 1
const SlotFlags = 2
const SlotPitch = 3
const SlotWPM = 4
const SlotFarnsworth = 5

// ---- USER SCALARS ----

// SlotUserStart is the first user scalar. User id N lives at SlotUserStart+N.
const SlotUserStart = 6

// UserSlots is the number of user scalars.
const UserSlots = 4

// ---- RESERVED RANGE ----

// Slots 10-15 are reserved.
const SlotReservedStart = SlotUserStart + UserSlots
const SlotReservedEnd = 15

// ---- MACROS ----

// SlotMacroStart is the first macro slot. Each macro holds one length
// register followed by MacroDataSlots registers, two ASCII bytes each.
const SlotMacroStart = 16

const MacroDataSlots = 16

// MacroMaxChars is the longest storable macro.
const MacroMaxChars = MacroDataSlots * 2

const macroStride = 1 + MacroDataSlots

// BlockSize is the total number of registers in a persisted block.
const BlockSize = SlotMacroStart + keyer.MacroSlots*macroStride

// macroBase returns the length register of macro slot (1-based).
func macroBase(slot int) int {
	return SlotMacroStart + (slot-1)*macroStride
}
