// internal/keyer/engine.go
package keyer

// Sender emits Morse output. Every call blocks until the output is fully sent.
type Sender interface {
	Char(c byte)
	String(s string)
	Element(e Element) // followed by one element gap
	Delay(dits int)
	Farns() // extra Farnsworth spacing per current settings
	Error()
	Number(n uint16)
	Tune()
	Inhibit(on bool) // true: sidetone only, TX line not keyed
	PlayMessage(slot int)
	RecordMessage(slot int)
}

// Paddle exposes operator input.
type Paddle interface {
	// Decode returns a decoded symbol if one is ready. It never blocks.
	// suppress keeps the TX line quiet while still decoding.
	Decode(suppress bool) (byte, bool)

	// CtrlKey reports the control key. With requireRelease the press is
	// consumed and reported again only after the key was released.
	CtrlKey(requireRelease bool) bool

	// Contacts bypasses the decoder.
	Contacts() Contacts
}

// Clock is the engine heartbeat. Whoever owns the thread must call Beat
// once per wait-loop iteration; the engine's timing depends on it.
type Clock interface {
	Beat()
}

// Settings mutates and queries persisted configuration. Every mutating call
// marks the configuration dirty; Save writes only when dirty.
type Settings interface {
	SetMode(m Mode)
	Toggle(f Flag)
	Flag(f Flag) bool
	SetFlag(f Flag, on bool)
	Pitch(d Direction)
	Speed(d Direction, p SpeedParam)
	WPM() uint8
	User(id uint8) uint16
	SetUser(id uint8, v uint16) error
	Reset()
	Save() error
}

// Power receives low-power hints.
type Power interface {
	Sleep(allow bool)
}

// Engine is the full capability set the controller consumes.
type Engine interface {
	Sender
	Paddle
	Clock
	Settings
	Power
}
