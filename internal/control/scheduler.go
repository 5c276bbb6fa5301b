// internal/control/scheduler.go
package control

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tamzrod/cw-keyer/internal/keyer"
	"github.com/tamzrod/cw-keyer/internal/prng"
)

const aliveText = "73"

var errNilEngine = errors.New("control: engine required")

// Scheduler is the top-level loop. It keeps the engine heartbeat going and
// hands the thread to command mode when the control key is pressed.
type Scheduler struct {
	eng    keyer.Engine
	rng    *prng.LFSR
	beacon *Beacon
	cmd    *Dispatcher
	log    *slog.Logger
}

// New wires the controller around eng. All mutable controller state
// (PRNG register, beacon timers) is owned by the returned Scheduler.
func New(eng keyer.Engine, opts Options, log *slog.Logger) (*Scheduler, error) {
	if eng == nil {
		return nil, errNilEngine
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "control")

	rng := prng.New()
	beacon := NewBeacon(eng, opts, log)
	trainer := NewTrainer(eng, rng, opts, log)

	return &Scheduler{
		eng:    eng,
		rng:    rng,
		beacon: beacon,
		cmd:    NewDispatcher(eng, rng, beacon, trainer, opts, log),
		log:    log,
	}, nil
}

// Greet sends the power-on signal on sidetone only.
func (s *Scheduler) Greet() {
	s.eng.Inhibit(true)
	s.eng.String(aliveText)
	s.eng.Inhibit(false)
}

// Step runs one loop iteration.
func (s *Scheduler) Step() {
	if s.eng.CtrlKey(true) {
		s.cmd.Run()
		return
	}

	s.eng.Beat()
	s.beacon.Play()
	s.eng.Decode(false)
}

// Run greets, then loops until ctx is done. One Step per iteration;
// pacing comes from the engine's Beat.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Greet()
	s.log.Info("control: running")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.Step()
	}
}
