// internal/control/dispatcher.go
package control

import (
	"log/slog"

	"github.com/tamzrod/cw-keyer/internal/keyer"
	"github.com/tamzrod/cw-keyer/internal/prng"
)

// Fixed texts sent by command mode.
const (
	greetingChar = '?'
	ackText      = "R"
	signOffText  = "#" // SK, sent without inter-character gap
)

// ackPause keeps the acknowledgment from running into trailing command output.
const ackPause = 3 * keyer.DahLen

// session is the state of one command-mode visit.
type session struct {
	timer int // beats left before timeout
}

type command func(d *Dispatcher, s *session) Outcome

// lockableCommands are refused while the config lock is set.
var lockableCommands = map[byte]command{
	'R': func(d *Dispatcher, _ *session) Outcome {
		d.eng.Reset()
		d.beacon.Reload()
		return HandledWithAck
	},
	'A': setMode(keyer.IambicA),
	'B': setMode(keyer.IambicB),
	'L': setMode(keyer.Ultimatic),
	'D': setMode(keyer.DahPriority),
	'X': toggle(keyer.FlagPaddleSwap),
	'S': toggle(keyer.FlagSidetone),
	'K': toggle(keyer.FlagTXKey),
	'F': toggle(keyer.FlagTXInvert),
	'Z': func(d *Dispatcher, _ *session) Outcome {
		Farnsworth(d.eng, d.opts.FarnsRepeat)
		return HandledWithAck
	},
	'1': recordMacro(1),
	'2': recordMacro(2),
	'3': recordMacro(3),
	'4': recordMacro(4),
	'N': func(d *Dispatcher, _ *session) Outcome {
		d.beacon.Program()
		return HandledWithAck
	},
}

// alwaysCommands work regardless of the config lock.
var alwaysCommands = map[byte]command{
	'V': func(d *Dispatcher, _ *session) Outcome {
		d.eng.String(d.opts.VersionText)
		return HandledWithAck
	},
	'P': func(d *Dispatcher, _ *session) Outcome {
		Pitch(d.eng, d.opts.PitchRepeat)
		return HandledWithAck
	},
	'U': func(d *Dispatcher, _ *session) Outcome {
		d.eng.Inhibit(false)
		d.eng.Tune()
		d.eng.Inhibit(true)
		return HandledWithAck
	},
	'C': func(d *Dispatcher, _ *session) Outcome {
		d.trainer.Run()
		return HandledWithAck
	},
	'0': toggle(keyer.FlagConfigLock),
	'E': playMacro(1),
	'I': playMacro(2),
	'T': playMacro(3),
	'M': playMacro(4),
	'W': func(d *Dispatcher, _ *session) Outcome {
		d.eng.Number(uint16(d.eng.WPM()))
		return HandledWithAck
	},
}

func setMode(m keyer.Mode) command {
	return func(d *Dispatcher, _ *session) Outcome {
		d.eng.SetMode(m)
		return HandledWithAck
	}
}

func toggle(f keyer.Flag) command {
	return func(d *Dispatcher, _ *session) Outcome {
		d.eng.Toggle(f)
		return HandledWithAck
	}
}

func recordMacro(slot int) command {
	return func(d *Dispatcher, _ *session) Outcome {
		d.eng.Char(byte('0' + slot))
		d.eng.RecordMessage(slot)
		return HandledWithAck
	}
}

// playMacro keys the transmitter for the playback. The playback is its own
// feedback, so no acknowledgment follows.
func playMacro(slot int) command {
	return func(d *Dispatcher, s *session) Outcome {
		d.eng.Inhibit(false)
		d.eng.PlayMessage(slot)
		d.eng.Inhibit(true)
		s.timer = d.opts.beats(d.opts.MacroTimeout)
		return HandledSilently
	}
}

// Dispatcher is command mode. It owns the thread from Run until exit.
type Dispatcher struct {
	eng     keyer.Engine
	rng     *prng.LFSR
	beacon  *Beacon
	trainer *Trainer
	opts    Options
	log     *slog.Logger
}

func NewDispatcher(eng keyer.Engine, rng *prng.LFSR, beacon *Beacon, trainer *Trainer, opts Options, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		eng:     eng,
		rng:     rng,
		beacon:  beacon,
		trainer: trainer,
		opts:    opts,
		log:     log,
	}
}

// Run executes command mode until the timeout elapses without input or the
// control key is pressed again.
func (d *Dispatcher) Run() {
	d.log.Debug("control: command mode enter")

	d.eng.Inhibit(true)
	d.eng.Char(greetingChar)

	full := d.opts.beats(d.opts.CommandTimeout)
	s := &session{timer: full}

	for !d.eng.CtrlKey(true) && s.timer > 0 {
		s.timer--

		sym, ok := d.eng.Decode(true)
		if ok {
			s.timer = full
		}

		d.eng.Beat()

		// keeps the trainer's callsigns decorrelated from key presses
		d.rng.Intn(255)

		if !ok {
			continue
		}

		res := d.evaluate(sym, s)
		d.log.Debug("control: command", "symbol", string(sym), "outcome", res.Outcome.String())
		d.respond(res)
	}

	d.eng.String(signOffText)
	d.eng.Inhibit(false)

	d.log.Debug("control: command mode exit")
}

// evaluate runs sym through both command tiers. Both tiers are always
// consulted; the lockable tier only when the config lock is clear.
func (d *Dispatcher) evaluate(sym byte, s *session) Result {
	lockable := Result{Outcome: Unhandled, Symbol: sym}
	if !d.eng.Flag(keyer.FlagConfigLock) {
		if cmd, ok := lockableCommands[sym]; ok {
			lockable.Outcome = cmd(d, s)
		}
	}

	always := Result{Outcome: Unhandled, Symbol: sym}
	if cmd, ok := alwaysCommands[sym]; ok {
		always.Outcome = cmd(d, s)
	}

	return combine(lockable, always)
}

func (d *Dispatcher) respond(res Result) {
	switch res.Outcome {
	case HandledWithAck:
		if err := d.eng.Save(); err != nil {
			d.log.Warn("control: save failed", "err", err)
		}
		d.eng.Delay(ackPause)
		d.eng.String(ackText)

	case HandledSilently:
		// nothing

	default:
		d.eng.Error()
	}
}
