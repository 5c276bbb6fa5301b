// internal/control/dispatcher_test.go
package control

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/cw-keyer/internal/keyer"
	"github.com/tamzrod/cw-keyer/internal/prng"
)

func newTestDispatcher(f *fakeEngine, opts Options) *Dispatcher {
	log := discardLogger()
	rng := prng.New()
	return NewDispatcher(f, rng, NewBeacon(f, opts, log), NewTrainer(f, rng, opts, log), opts, log)
}

func TestDispatcher_IdleTimeoutSignsOffOnce(t *testing.T) {
	f := newFakeEngine(t)
	d := newTestDispatcher(f, testOptions())

	d.Run()

	assert.Equal(t, []string{"inhibit:true", "char:?", "string:#", "inhibit:false"}, f.events)
	assert.Equal(t, 10, f.beats)
}

func TestDispatcher_ControlKeyExitsImmediately(t *testing.T) {
	f := newFakeEngine(t)
	f.ctrl = []int{3}
	d := newTestDispatcher(f, testOptions())

	d.Run()

	assert.Equal(t, 3, f.beats)
	assert.Equal(t, 1, f.count("string:#"))
	assert.Equal(t, "inhibit:false", f.events[len(f.events)-1])
}

func TestDispatcher_InputRearmsTimeout(t *testing.T) {
	f := newFakeEngine(t)
	f.inputs = []input{{at: 8, sym: 'W'}}
	d := newTestDispatcher(f, testOptions())

	d.Run()

	// symbol decoded in the 9th iteration, then a full timeout
	assert.Equal(t, 9+10, f.beats)
}

func TestDispatcher_ModeCommandAcksAndSaves(t *testing.T) {
	f := newFakeEngine(t)
	f.feed(0, "A")
	d := newTestDispatcher(f, testOptions())

	d.Run()

	assert.Equal(t, keyer.IambicA, f.st.Mode())
	assert.Equal(t, 1, f.mb.Writes)
	assert.False(t, f.st.Dirty())
	assert.Equal(t, []string{
		"inhibit:true", "char:?",
		"delay:9", "string:R",
		"string:#", "inhibit:false",
	}, f.events)
}

func TestDispatcher_LockBlocksEveryLockableCommand(t *testing.T) {
	f := newFakeEngine(t)
	f.st.SetFlag(keyer.FlagConfigLock, true)
	require.NoError(t, f.st.Save())
	before := f.st.Snapshot()

	f.feed(0, "RABLDXSKFZ1234N")
	d := newTestDispatcher(f, testOptions())

	d.Run()

	assert.Equal(t, before, f.st.Snapshot())
	assert.Equal(t, 15, f.count("error"))
	assert.Zero(t, f.count("string:R"))
	assert.Equal(t, 1, f.mb.Writes)
	for _, e := range f.events {
		assert.NotContains(t, e, "record:")
		assert.NotEqual(t, "dit", e, "farnsworth calibration must not run")
	}
}

func TestDispatcher_LockKeepsAlwaysAvailableCommands(t *testing.T) {
	f := newFakeEngine(t)
	f.st.SetFlag(keyer.FlagConfigLock, true)
	require.NoError(t, f.st.Save())

	f.feed(0, "WV0A")
	d := newTestDispatcher(f, testOptions())

	d.Run()

	assert.Zero(t, f.count("error"))
	assert.Equal(t, 1, f.count("number:20"))
	assert.Equal(t, 1, f.count("string:V0.87"))
	assert.Equal(t, 4, f.count("string:R"))

	// '0' released the lock, so the following 'A' went through
	assert.False(t, f.st.Flag(keyer.FlagConfigLock))
	assert.Equal(t, keyer.IambicA, f.st.Mode())
}

func TestDispatcher_UnknownSymbolSignalsError(t *testing.T) {
	f := newFakeEngine(t)
	f.feed(0, "Q")
	d := newTestDispatcher(f, testOptions())

	d.Run()

	assert.Equal(t, 1, f.count("error"))
	assert.Zero(t, f.count("string:R"))
}

func TestDispatcher_MacroPlaybackIsSilentAndRearmsMacroTimeout(t *testing.T) {
	f := newFakeEngine(t)
	f.feed(0, "E")
	opts := testOptions()
	d := newTestDispatcher(f, opts)

	d.Run()

	assert.Equal(t, []string{
		"inhibit:true", "char:?",
		"inhibit:false", "play:1", "inhibit:true",
		"string:#", "inhibit:false",
	}, f.events)
	assert.Equal(t, 1+opts.beats(opts.MacroTimeout), f.beats)
}

func TestDispatcher_MacroPlaySlots(t *testing.T) {
	f := newFakeEngine(t)
	f.feed(0, "EITM")
	d := newTestDispatcher(f, testOptions())

	d.Run()

	for _, ev := range []string{"play:1", "play:2", "play:3", "play:4"} {
		assert.Equal(t, 1, f.count(ev), ev)
	}
	assert.Zero(t, f.count("string:R"))
}

func TestDispatcher_RecordMacroEchoesSlot(t *testing.T) {
	f := newFakeEngine(t)
	f.feed(0, "2")
	d := newTestDispatcher(f, testOptions())

	d.Run()

	assert.Equal(t, []string{
		"inhibit:true", "char:?",
		"char:2", "record:2",
		"delay:9", "string:R",
		"string:#", "inhibit:false",
	}, f.events)
	got, err := f.st.Macro(2)
	require.NoError(t, err)
	assert.Equal(t, "MSG2", got)
	assert.Equal(t, 1, f.mb.Writes)
}

func TestDispatcher_TuneEnablesTransmitter(t *testing.T) {
	f := newFakeEngine(t)
	f.feed(0, "U")
	d := newTestDispatcher(f, testOptions())

	d.Run()

	assert.Equal(t, []string{
		"inhibit:true", "char:?",
		"inhibit:false", "tune", "inhibit:true",
		"delay:9", "string:R",
		"string:#", "inhibit:false",
	}, f.events)
}

func TestDispatcher_FlagToggles(t *testing.T) {
	f := newFakeEngine(t)
	f.feed(0, "XSKF")
	d := newTestDispatcher(f, testOptions())

	d.Run()

	assert.True(t, f.st.Flag(keyer.FlagPaddleSwap))
	assert.False(t, f.st.Flag(keyer.FlagSidetone))
	assert.False(t, f.st.Flag(keyer.FlagTXKey))
	assert.True(t, f.st.Flag(keyer.FlagTXInvert))
	assert.Equal(t, 4, f.mb.Writes)
}

func TestDispatcher_ResetRestoresDefaults(t *testing.T) {
	f := newFakeEngine(t)
	f.st.SetMode(keyer.Ultimatic)
	require.NoError(t, f.st.SetUser(keyer.UserBeaconInterval, 30))
	require.NoError(t, f.st.Save())

	f.feed(0, "R")
	d := newTestDispatcher(f, testOptions())

	d.Run()

	assert.Equal(t, keyer.IambicB, f.st.Mode())
	assert.Zero(t, f.st.User(keyer.UserBeaconInterval))
	assert.Zero(t, d.beacon.Interval())
}

func TestDispatcher_BeaconProgramFromCommandMode(t *testing.T) {
	f := newFakeEngine(t)
	f.feed(0, "N1234")
	d := newTestDispatcher(f, testOptions())

	d.Run()

	assert.Equal(t, uint16(1234), f.st.User(keyer.UserBeaconInterval))
	assert.Equal(t, 1, f.count("char:N"))
	assert.Equal(t, 1, f.count("number:1234"))
	assert.Equal(t, 1, f.count("string:R"))
	assert.Equal(t, 1, f.mb.Writes)
}

func TestDispatcher_SaveFailureDoesNotHalt(t *testing.T) {
	f := newFakeEngine(t)
	f.saveErr = errors.New("eeprom busy")
	f.feed(0, "AB")
	d := newTestDispatcher(f, testOptions())

	d.Run()

	assert.Equal(t, 2, f.count("string:R"))
	assert.Equal(t, keyer.IambicB, f.st.Mode())
	assert.True(t, f.st.Dirty())
	assert.Equal(t, 1, f.count("string:#"))
}

func TestDispatcher_ReseedsPRNGEveryIteration(t *testing.T) {
	f := newFakeEngine(t)
	d := newTestDispatcher(f, testOptions())

	d.Run()

	want := prng.New()
	for i := 0; i < f.beats; i++ {
		want.Intn(255)
	}
	assert.Equal(t, want.State(), d.rng.State())
}

func TestDispatcher_CommandSetsAreDisjoint(t *testing.T) {
	for sym := range lockableCommands {
		_, dup := alwaysCommands[sym]
		assert.False(t, dup, "symbol %q is in both command sets", sym)
	}
}

func TestDispatcher_LockableSetMatchesLockInvariant(t *testing.T) {
	want := "RABLDXSKFZ1234N"
	require.Len(t, lockableCommands, len(want))
	for i := 0; i < len(want); i++ {
		_, ok := lockableCommands[want[i]]
		assert.True(t, ok, "missing lockable %q", want[i])
	}

	always := "VPUC0EITMW"
	require.Len(t, alwaysCommands, len(always))
	for i := 0; i < len(always); i++ {
		_, ok := alwaysCommands[always[i]]
		assert.True(t, ok, "missing always-available %q", always[i])
	}
}

func TestCombine(t *testing.T) {
	ack := Result{Outcome: HandledWithAck, Symbol: 'A'}
	silent := Result{Outcome: HandledSilently, Symbol: 'E'}
	none := Result{Outcome: Unhandled, Symbol: 'Q'}

	assert.Equal(t, ack, combine(ack, none))
	assert.Equal(t, silent, combine(none, silent))
	assert.Equal(t, none, combine(none, none))
}

func TestDispatcher_TrainerControlKeyReturnsToCommandMode(t *testing.T) {
	f := newFakeEngine(t)
	f.feed(0, "C")
	f.ctrl = []int{3} // lands while the first callsign is being copied
	d := newTestDispatcher(f, testOptions())

	d.Run()

	// command mode drew once before the trainer started
	assert.Equal(t, "?JE8OX", f.chars())
	assert.Equal(t, 1, f.count("string:R"))
	assert.Equal(t, 1, f.count("string:#"))
	assert.Zero(t, f.count("error"))
	// press at beat 3, then a full command timeout
	assert.Equal(t, 3+10, f.beats)
}

func TestDispatcher_FarnsworthControlKeyAcksAndSaves(t *testing.T) {
	f := newFakeEngine(t)
	f.feed(0, "Z")
	f.contacts = []keyer.Contacts{{Dit: true}}
	// call 1 is the dispatcher's own check; calls 2 and 3 are calibration passes
	f.ctrlOnCall = map[int]bool{3: true}
	d := newTestDispatcher(f, testOptions())

	d.Run()

	assert.Equal(t, uint8(19), f.st.FarnsworthWPM())
	assert.Equal(t, 1, f.count("dit"))
	assert.Equal(t, 1, f.count("string:R"))
	assert.Equal(t, 1, f.mb.Writes)
	assert.False(t, f.st.Dirty())
	assert.Equal(t, 1, f.count("string:#"))
	assert.Equal(t, 1+10, f.beats)
}
