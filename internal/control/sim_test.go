// internal/control/sim_test.go
package control

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/cw-keyer/internal/keyer"
	"github.com/tamzrod/cw-keyer/internal/sim"
	"github.com/tamzrod/cw-keyer/internal/store"
)

func newSimRig(t *testing.T) (*Scheduler, *store.Store, *store.MemoryBackend, chan sim.Event, *sim.Recorder) {
	t.Helper()
	mb := store.NewMemoryBackend()
	st, err := store.Open(mb, store.Record{
		Mode:    keyer.IambicB,
		Flags:   keyer.FlagSidetone.Mask() | keyer.FlagTXKey.Mask(),
		PitchHz: 600,
		WPM:     20,
	}, discardLogger())
	require.NoError(t, err)

	in := make(chan sim.Event, 32)
	rec := &sim.Recorder{}
	eng := sim.New(st, in, rec, sim.Options{
		Heartbeat:    5 * time.Millisecond,
		MacroTimeout: 30,
		TuneLimit:    20,
	}, discardLogger())
	t.Cleanup(eng.Close)

	s, err := New(eng, testOptions(), discardLogger())
	require.NoError(t, err)
	return s, st, mb, in, rec
}

// Drives the scheduler through the host simulator, as cmd/keyer does.
func TestScheduler_WithSimulator(t *testing.T) {
	s, st, mb, in, rec := newSimRig(t)
	s.Greet()

	// normal keying, then command mode: mode A, WPM query, exit
	for _, c := range []byte("TEST") {
		in <- sim.Event{Kind: sim.EventSymbol, Sym: c}
	}
	for i := 0; i < 4; i++ {
		s.Step()
	}

	in <- sim.Event{Kind: sim.EventCtrl}
	in <- sim.Event{Kind: sim.EventSymbol, Sym: 'A'}
	in <- sim.Event{Kind: sim.EventSymbol, Sym: 'W'}
	s.Step()

	assert.Equal(t, keyer.IambicA, st.Mode())
	assert.False(t, st.Dirty())
	assert.Equal(t, 1, mb.Writes)

	// greeting, keyed text, prompt, two acks with the speed in between, sign-off
	assert.Equal(t, "73TEST?R20R#", rec.Text())
}

// Console "!A!": the command runs before the second press ends command mode.
func TestScheduler_SimulatorKeepsControlKeyOrder(t *testing.T) {
	s, st, mb, in, rec := newSimRig(t)

	in <- sim.Event{Kind: sim.EventCtrl}
	in <- sim.Event{Kind: sim.EventSymbol, Sym: 'A'}
	in <- sim.Event{Kind: sim.EventCtrl}
	s.Step()

	assert.Equal(t, keyer.IambicA, st.Mode())
	assert.Equal(t, 1, mb.Writes)
	assert.Equal(t, "?R#", rec.Text())

	// nothing is left over for normal keying
	s.Step()
	assert.Equal(t, "?R#", rec.Text())
}
