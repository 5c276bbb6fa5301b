// internal/control/engine_test.go
package control

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tamzrod/cw-keyer/internal/keyer"
	"github.com/tamzrod/cw-keyer/internal/store"
)

// ---- fake engine ----

// input is a decoded symbol that becomes available once beats >= at.
type input struct {
	at  int
	sym byte
}

type fakeEngine struct {
	st *store.Store
	mb *store.MemoryBackend

	beats    int
	inputs   []input
	ctrl     []int // beats at which the control key is pressed
	contacts []keyer.Contacts

	// ctrlOnCall presses the control key on the Nth CtrlKey call (1-based),
	// for loops that never beat
	ctrlOnCall map[int]bool
	ctrlCalls  int

	events       []string
	normalDecode int
	sleepHints   int
	saveErr      error
	onBeat       func(beats int)
}

func newFakeEngine(t *testing.T) *fakeEngine {
	t.Helper()
	mb := store.NewMemoryBackend()
	st, err := store.Open(mb, store.Record{
		Mode:    keyer.IambicB,
		Flags:   keyer.FlagSidetone.Mask() | keyer.FlagTXKey.Mask(),
		PitchHz: 600,
		WPM:     20,
	}, discardLogger())
	require.NoError(t, err)
	return &fakeEngine{st: st, mb: mb}
}

// feed queues symbols, one per beat starting at beat `from`.
func (f *fakeEngine) feed(from int, syms string) {
	for i := 0; i < len(syms); i++ {
		f.inputs = append(f.inputs, input{at: from + i, sym: syms[i]})
	}
}

func (f *fakeEngine) emit(format string, args ...any) {
	f.events = append(f.events, fmt.Sprintf(format, args...))
}

func (f *fakeEngine) count(event string) int {
	n := 0
	for _, e := range f.events {
		if e == event {
			n++
		}
	}
	return n
}

// chars returns every emitted character, in order.
func (f *fakeEngine) chars() string {
	var b strings.Builder
	for _, e := range f.events {
		if c, ok := strings.CutPrefix(e, "char:"); ok {
			b.WriteString(c)
		}
	}
	return b.String()
}

func (f *fakeEngine) Char(c byte) { f.emit("char:%c", c) }
func (f *fakeEngine) String(s string) { f.emit("string:%s", s) }
func (f *fakeEngine) Delay(dits int) { f.emit("delay:%d", dits) }
func (f *fakeEngine) Farns() { f.emit("farns") }
func (f *fakeEngine) Error() { f.emit("error") }
func (f *fakeEngine) Number(n uint16) { f.emit("number:%d", n) }
func (f *fakeEngine) Tune() { f.emit("tune") }
func (f *fakeEngine) Inhibit(on bool) { f.emit("inhibit:%t", on) }
func (f *fakeEngine) PlayMessage(slot int) { f.emit("play:%d", slot) }

func (f *fakeEngine) Element(e keyer.Element) {
	if e == keyer.Dit {
		f.emit("dit")
	} else {
		f.emit("dah")
	}
}

func (f *fakeEngine) RecordMessage(slot int) {
	f.emit("record:%d", slot)
	_ = f.st.SetMacro(slot, fmt.Sprintf("MSG%d", slot))
}

func (f *fakeEngine) Decode(suppress bool) (byte, bool) {
	if !suppress {
		f.normalDecode++
	}
	if len(f.inputs) == 0 || f.beats < f.inputs[0].at {
		return 0, false
	}
	sym := f.inputs[0].sym
	f.inputs = f.inputs[1:]
	return sym, true
}

func (f *fakeEngine) CtrlKey(requireRelease bool) bool {
	f.ctrlCalls++
	if f.ctrlOnCall[f.ctrlCalls] {
		return true
	}
	for i, at := range f.ctrl {
		if f.beats >= at {
			if requireRelease {
				f.ctrl = append(f.ctrl[:i], f.ctrl[i+1:]...)
			}
			return true
		}
	}
	return false
}

func (f *fakeEngine) Contacts() keyer.Contacts {
	if len(f.contacts) == 0 {
		return keyer.Contacts{}
	}
	c := f.contacts[0]
	f.contacts = f.contacts[1:]
	return c
}

func (f *fakeEngine) Beat() {
	f.beats++
	if f.onBeat != nil {
		f.onBeat(f.beats)
	}
}

func (f *fakeEngine) SetMode(m keyer.Mode) { f.st.SetMode(m) }
func (f *fakeEngine) Toggle(fl keyer.Flag) { f.st.Toggle(fl) }
func (f *fakeEngine) Flag(fl keyer.Flag) bool { return f.st.Flag(fl) }
func (f *fakeEngine) SetFlag(fl keyer.Flag, on bool) { f.st.SetFlag(fl, on) }
func (f *fakeEngine) Pitch(d keyer.Direction) { f.st.AdjustPitch(d) }
func (f *fakeEngine) WPM() uint8 { return f.st.WPM() }
func (f *fakeEngine) User(id uint8) uint16 { return f.st.User(id) }
func (f *fakeEngine) SetUser(id uint8, v uint16) error {
	return f.st.SetUser(id, v)
}
func (f *fakeEngine) Reset() { f.st.Reset() }

func (f *fakeEngine) Speed(d keyer.Direction, p keyer.SpeedParam) {
	if p == keyer.SpeedFarnsworth {
		f.st.AdjustFarnsworth(d)
		return
	}
	f.st.AdjustWPM(d)
}

func (f *fakeEngine) Save() error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.st.Save()
}

func (f *fakeEngine) Sleep(allow bool) {
	if !allow {
		f.sleepHints++
	}
}

var _ keyer.Engine = (*fakeEngine)(nil)

// ---- helpers ----

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testOptions uses 10 beats per second so timeouts stay short.
func testOptions() Options {
	return Options{
		BeatsPerSecond: 10,
		CommandTimeout: 1,
		MacroTimeout:   3,
		TrainTimeout:   1,
		PitchRepeat:    4,
		FarnsRepeat:    4,
		VersionText:    "V0.87",
	}
}
