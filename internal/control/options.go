// internal/control/options.go
package control

import (
	"errors"

	cfg "github.com/tamzrod/cw-keyer/internal/config"
)

// Options is the immutable runtime config of the controller.
// Timeouts are in seconds and converted to beats with BeatsPerSecond.
type Options struct {
	BeatsPerSecond int
	CommandTimeout int
	MacroTimeout   int
	TrainTimeout   int
	PitchRepeat    int
	FarnsRepeat    int
	PowerSave      bool
	VersionText    string
}

// OptionsFromConfig maps a normalized keyer section onto Options.
func OptionsFromConfig(k cfg.KeyerConfig) Options {
	return Options{
		BeatsPerSecond: k.BeatsPerSecond(),
		CommandTimeout: k.CommandTimeoutS,
		MacroTimeout:   k.MacroTimeoutS,
		TrainTimeout:   k.TrainTimeoutS,
		PitchRepeat:    k.PitchRepeat,
		FarnsRepeat:    k.FarnsRepeat,
		PowerSave:      k.PowerSave,
		VersionText:    k.VersionText,
	}
}

func (o Options) validate() error {
	if o.BeatsPerSecond <= 0 {
		return errors.New("control: beats per second must be > 0")
	}
	if o.CommandTimeout <= 0 || o.MacroTimeout <= 0 || o.TrainTimeout <= 0 {
		return errors.New("control: timeouts must be > 0")
	}
	if o.PitchRepeat <= 0 || o.FarnsRepeat <= 0 {
		return errors.New("control: repeat counts must be > 0")
	}
	return nil
}

// beats converts seconds into heartbeat counts.
func (o Options) beats(secs int) int {
	return secs * o.BeatsPerSecond
}
