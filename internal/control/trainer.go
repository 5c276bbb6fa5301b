// internal/control/trainer.go
package control

import (
	"log/slog"

	"github.com/tamzrod/cw-keyer/internal/keyer"
	"github.com/tamzrod/cw-keyer/internal/prng"
)

// Callsign is a training callsign: letter, letter, digit, letter, letter.
type Callsign [5]byte

func (c Callsign) String() string { return string(c[:]) }

// NewCallsign draws one callsign from rng.
func NewCallsign(rng *prng.LFSR) Callsign {
	var c Callsign
	for i := range c {
		if i == 2 {
			c[i] = '0' + rng.Intn(10)
		} else {
			c[i] = 'A' + rng.Intn(26)
		}
	}
	return c
}

// Trainer plays random callsigns and checks the operator's copy.
type Trainer struct {
	eng  keyer.Engine
	rng  *prng.LFSR
	opts Options
	log  *slog.Logger
}

func NewTrainer(eng keyer.Engine, rng *prng.LFSR, opts Options, log *slog.Logger) *Trainer {
	return &Trainer{eng: eng, rng: rng, opts: opts, log: log}
}

// Run trains until a character times out or the control key is pressed.
func (t *Trainer) Run() {
	for {
		call := NewCallsign(t.rng)
		t.log.Debug("control: training callsign", "call", call.String())

		if !t.play(call) {
			return
		}
		if !t.verify(call) {
			return
		}

		t.eng.Char('R')
	}
}

// play sends the callsign. Returns false on control-key abort.
func (t *Trainer) play(call Callsign) bool {
	t.eng.Delay(2 * keyer.WordGap)

	for _, c := range call {
		t.eng.Char(c)
		t.eng.Farns()
		if t.eng.CtrlKey(true) {
			return false
		}
	}
	return true
}

// verify waits for the full callsign. A wrong character costs an error
// prosign and restarts the copy from the first character.
func (t *Trainer) verify(call Callsign) bool {
	i := 0
	for i < len(call) {
		sym, ok := t.next()
		if !ok {
			return false
		}

		if sym == call[i] {
			i++
			continue
		}

		t.eng.Error()
		i = 0
	}
	return true
}

// next waits for one decoded character within the training timeout.
func (t *Trainer) next() (byte, bool) {
	timer := t.opts.beats(t.opts.TrainTimeout)

	for timer > 0 {
		if t.eng.CtrlKey(true) {
			return 0, false
		}
		timer--

		sym, ok := t.eng.Decode(true)
		t.eng.Beat()
		if ok {
			return sym, true
		}
	}
	return 0, false
}
