// internal/control/beacon.go
package control

import (
	"log/slog"

	"github.com/tamzrod/cw-keyer/internal/keyer"
)

const beaconPrompt = 'N'

// Beacon plays the beacon macro every programmed interval.
// It owns the running interval copy and the one-second countdown.
type Beacon struct {
	eng  keyer.Engine
	opts Options
	log  *slog.Logger

	seeded    bool
	interval  uint16 // seconds left until playback
	countdown int    // beats left in the current second
}

func NewBeacon(eng keyer.Engine, opts Options, log *slog.Logger) *Beacon {
	return &Beacon{eng: eng, opts: opts, log: log}
}

// Interval returns the seconds left until the next playback.
func (b *Beacon) Interval() uint16 { return b.interval }

// Reload re-seeds the running state from the persisted interval.
func (b *Beacon) Reload() {
	b.interval = b.eng.User(keyer.UserBeaconInterval)
	b.countdown = b.opts.BeatsPerSecond
	b.seeded = true
}

// Play advances the beacon by one beat. It must be called once per
// Scheduler iteration; the countdown assumes that cadence.
func (b *Beacon) Play() {
	if !b.seeded {
		b.Reload()
	}
	if b.interval == 0 {
		return
	}

	// a playback is pending; keep the CPU awake
	if b.opts.PowerSave {
		b.eng.Sleep(false)
	}

	b.countdown--
	if b.countdown > 0 {
		return
	}
	b.countdown = b.opts.BeatsPerSecond

	b.interval--
	if b.interval > 0 {
		return
	}

	b.interval = b.eng.User(keyer.UserBeaconInterval)
	b.log.Debug("control: beacon fired", "next_s", b.interval)
	b.eng.PlayMessage(keyer.BeaconSlot)
}

// Program reads a decimal interval from the paddle. Digits are accepted
// until the command timeout passes with no new digit. A control-key press
// discards the entry.
func (b *Beacon) Program() {
	full := b.opts.beats(b.opts.CommandTimeout)
	timer := full

	// saturates above the limit so it cannot wrap back into range
	var acc uint32

	b.eng.Char(beaconPrompt)

	for timer > 0 {
		if b.eng.CtrlKey(true) {
			b.log.Debug("control: beacon program aborted")
			return
		}
		timer--

		sym, ok := b.eng.Decode(true)
		b.eng.Beat()

		if ok && sym >= '0' && sym <= '9' {
			if acc <= keyer.MaxBeaconInterval {
				acc = acc*10 + uint32(sym-'0')
			}
			timer = full
		}
	}

	if acc > keyer.MaxBeaconInterval {
		b.log.Debug("control: beacon interval rejected", "value", acc)
		b.eng.Error()
		return
	}

	if err := b.eng.SetUser(keyer.UserBeaconInterval, uint16(acc)); err != nil {
		b.log.Warn("control: beacon interval not stored", "err", err)
		b.eng.Error()
		return
	}

	b.Reload()
	b.eng.Number(uint16(acc))
}
