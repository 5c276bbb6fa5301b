// internal/sim/engine.go
package sim

import (
	"log/slog"
	"strconv"
	"time"

	cfg "github.com/tamzrod/cw-keyer/internal/config"
	"github.com/tamzrod/cw-keyer/internal/keyer"
	"github.com/tamzrod/cw-keyer/internal/store"
)

// tuneSeconds caps one tune carrier.
const tuneSeconds = 10

// Options configure the simulator. Timeouts are in beats.
type Options struct {
	Realtime     bool
	Heartbeat    time.Duration
	MacroTimeout int
	TuneLimit    int
}

// OptionsFromConfig derives simulator options from a normalized config.
func OptionsFromConfig(c cfg.Config) Options {
	bps := c.Keyer.BeatsPerSecond()
	return Options{
		Realtime:     c.Sim.Realtime,
		Heartbeat:    time.Duration(c.Keyer.HeartbeatMs) * time.Millisecond,
		MacroTimeout: c.Keyer.MacroTimeoutS * bps,
		TuneLimit:    tuneSeconds * bps,
	}
}

// Engine is a host-side keyer engine. Operator input arrives on a channel
// and is only ever drained by the polling calls, so everything else runs
// on the caller's goroutine.
type Engine struct {
	st   *store.Store
	in   <-chan Event
	sink Sink
	opts Options
	log  *slog.Logger

	tick  *time.Ticker
	pause func(time.Duration)

	queue    []Event // symbols and control presses, in arrival order
	contacts keyer.Contacts
	inhibit  bool
	sleepOK  bool
	beats    uint64
}

var _ keyer.Engine = (*Engine)(nil)

func New(st *store.Store, in <-chan Event, sink Sink, opts Options, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if sink == nil {
		sink = Sinks(nil)
	}

	e := &Engine{
		st:      st,
		in:      in,
		sink:    sink,
		opts:    opts,
		log:     log.With("component", "sim"),
		pause:   time.Sleep,
		sleepOK: true,
	}
	if opts.Realtime && opts.Heartbeat > 0 {
		e.tick = time.NewTicker(opts.Heartbeat)
	}
	return e
}

// Close stops the heartbeat ticker.
func (e *Engine) Close() {
	if e.tick != nil {
		e.tick.Stop()
	}
}

// Beats returns the number of heartbeats so far.
func (e *Engine) Beats() uint64 { return e.beats }

// SleepAllowed reports the last power hint.
func (e *Engine) SleepAllowed() bool { return e.sleepOK }

// ---- input ----

func (e *Engine) poll() {
	for {
		select {
		case ev, ok := <-e.in:
			if !ok {
				e.in = nil
				return
			}
			e.accept(ev)
		default:
			return
		}
	}
}

// accept latches paddle contacts at once. Symbols and control presses are
// queued so each is seen only after everything typed before it.
func (e *Engine) accept(ev Event) {
	switch ev.Kind {
	case EventSymbol, EventCtrl:
		e.queue = append(e.queue, ev)
	case EventDit:
		e.contacts.Dit = true
	case EventDah:
		e.contacts.Dah = true
	}
}

// ctrlAtHead reports a control press that is next in line.
func (e *Engine) ctrlAtHead() bool {
	return len(e.queue) > 0 && e.queue[0].Kind == EventCtrl
}

// takeContacts returns and clears the latched contacts, honoring paddle swap.
func (e *Engine) takeContacts() keyer.Contacts {
	c := e.contacts
	e.contacts = keyer.Contacts{}
	if e.st.Flag(keyer.FlagPaddleSwap) {
		c.Dit, c.Dah = c.Dah, c.Dit
	}
	return c
}

// Decode returns the next decoded symbol. Unsuppressed, the symbol and any
// latched paddle contacts are keyed as they arrive. A pending control press
// blocks later symbols until CtrlKey consumes it.
func (e *Engine) Decode(suppress bool) (byte, bool) {
	e.poll()

	if !suppress {
		e.keyPaddle(e.takeContacts())
	}

	if len(e.queue) == 0 || e.ctrlAtHead() {
		return 0, false
	}
	sym := e.queue[0].Sym
	e.queue = e.queue[1:]

	if !suppress {
		e.Char(sym)
	}
	return sym, true
}

// keyPaddle keys raw contacts. Squeezes alternate starting with dit,
// except in dah priority mode.
func (e *Engine) keyPaddle(c keyer.Contacts) {
	switch {
	case c.Dit && c.Dah:
		if e.st.Mode() == keyer.DahPriority {
			e.Element(keyer.Dah)
			return
		}
		e.Element(keyer.Dit)
		e.Element(keyer.Dah)
	case c.Dit:
		e.Element(keyer.Dit)
	case c.Dah:
		e.Element(keyer.Dah)
	}
}

func (e *Engine) CtrlKey(requireRelease bool) bool {
	e.poll()
	if !e.ctrlAtHead() {
		return false
	}
	if requireRelease {
		e.queue = e.queue[1:]
	}
	return true
}

func (e *Engine) Contacts() keyer.Contacts {
	e.poll()
	return e.takeContacts()
}

// ---- clock / power ----

func (e *Engine) Beat() {
	e.beats++
	if e.tick != nil {
		<-e.tick.C
	}
	e.poll()
}

func (e *Engine) Sleep(allow bool) {
	if allow != e.sleepOK {
		e.log.Debug("sim: sleep hint", "allow", allow)
	}
	e.sleepOK = allow
}

// ---- output ----

// publish hands an emission to the sink without pacing.
func (e *Engine) publish(label string, segs []Segment) Emission {
	dit := ditDuration(e.st.WPM())
	for i := range segs {
		if segs[i].Units > 0 {
			segs[i].Dur = time.Duration(segs[i].Units) * dit
		}
	}

	em := Emission{
		Label:    label,
		Segments: segs,
		PitchHz:  e.st.PitchHz(),
		Sidetone: e.st.Flag(keyer.FlagSidetone),
		Transmit: !e.inhibit && e.st.Flag(keyer.FlagTXKey),
	}
	e.sink.Emit(em)
	return em
}

// key publishes and, in realtime mode, blocks for the emission's length.
func (e *Engine) key(label string, segs []Segment) {
	em := e.publish(label, segs)
	if e.opts.Realtime {
		e.pause(em.Duration())
	}
}

func (e *Engine) Char(c byte) {
	if c == ' ' {
		e.key(" ", []Segment{{Units: keyer.WordGap - keyer.CharGap}})
		return
	}

	p, ok := pattern(c)
	if !ok {
		e.log.Debug("sim: no morse for symbol", "symbol", string(c))
		return
	}
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	e.key(string(c), segments(p))
}

func (e *Engine) String(s string) {
	for i := 0; i < len(s); i++ {
		e.Char(s[i])
	}
}

func (e *Engine) Element(el keyer.Element) {
	label, units := ".", 1
	if el == keyer.Dah {
		label, units = "-", keyer.DahLen
	}
	e.key(label, []Segment{{On: true, Units: units}, {Units: keyer.ElementGap}})
}

func (e *Engine) Delay(dits int) {
	if dits <= 0 {
		return
	}
	e.key("", []Segment{{Units: dits}})
}

func (e *Engine) Farns() {
	extra := farnsworthExtra(e.st.WPM(), e.st.FarnsworthWPM())
	if extra == 0 {
		return
	}
	e.key("", []Segment{{Dur: extra}})
}

func (e *Engine) Error() {
	e.key("<err>", segments(errorPattern))
}

func (e *Engine) Number(n uint16) {
	e.String(strconv.FormatUint(uint64(n), 10))
}

// Tune holds the carrier until a paddle contact, a control-key press or
// the tune limit. The stopping press is consumed.
func (e *Engine) Tune() {
	n := 0
	for n < e.opts.TuneLimit {
		e.poll()
		if c := e.takeContacts(); c.Dit || c.Dah {
			break
		}
		if e.ctrlAtHead() {
			e.queue = e.queue[1:]
			break
		}
		e.Beat()
		n++
	}

	// the ticker already paced the carrier
	e.publish("<tune>", []Segment{{On: true, Dur: time.Duration(n) * e.opts.Heartbeat}})
}

func (e *Engine) Inhibit(on bool) {
	e.inhibit = on
}

func (e *Engine) PlayMessage(slot int) {
	text, err := e.st.Macro(slot)
	if err != nil {
		e.log.Warn("sim: play macro", "slot", slot, "err", err)
		return
	}
	e.log.Debug("sim: play macro", "slot", slot, "text", text)
	e.String(text)
}

// RecordMessage collects decoded symbols into a macro slot until the macro
// timeout or a full slot. Symbols are echoed as they arrive. A control-key
// press abandons the recording; it and an empty recording keep the
// previous text.
func (e *Engine) RecordMessage(slot int) {
	var rec []byte
	timer := e.opts.MacroTimeout

	for timer > 0 && len(rec) < store.MacroMaxChars {
		if e.CtrlKey(true) {
			e.log.Debug("sim: recording abandoned", "slot", slot, "symbols", len(rec))
			return
		}
		timer--

		sym, ok := e.Decode(true)
		e.Beat()
		if !ok {
			continue
		}

		rec = append(rec, sym)
		e.Char(sym)
		timer = e.opts.MacroTimeout
	}

	if len(rec) == 0 {
		e.log.Debug("sim: empty recording ignored", "slot", slot)
		return
	}
	if err := e.st.SetMacro(slot, string(rec)); err != nil {
		e.log.Warn("sim: record macro", "slot", slot, "err", err)
		return
	}
	e.log.Info("sim: macro recorded", "slot", slot, "text", string(rec))
}

// ---- settings ----

func (e *Engine) SetMode(m keyer.Mode) { e.st.SetMode(m) }
func (e *Engine) Toggle(f keyer.Flag) { e.st.Toggle(f) }
func (e *Engine) Flag(f keyer.Flag) bool { return e.st.Flag(f) }
func (e *Engine) SetFlag(f keyer.Flag, on bool) { e.st.SetFlag(f, on) }
func (e *Engine) Pitch(d keyer.Direction) { e.st.AdjustPitch(d) }
func (e *Engine) WPM() uint8 { return e.st.WPM() }
func (e *Engine) User(id uint8) uint16 { return e.st.User(id) }
func (e *Engine) SetUser(id uint8, v uint16) error {
	return e.st.SetUser(id, v)
}
func (e *Engine) Reset() { e.st.Reset() }
func (e *Engine) Save() error { return e.st.Save() }

func (e *Engine) Speed(d keyer.Direction, p keyer.SpeedParam) {
	if p == keyer.SpeedFarnsworth {
		e.st.AdjustFarnsworth(d)
		return
	}
	e.st.AdjustWPM(d)
}
