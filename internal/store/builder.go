// internal/store/builder.go
package store

import (
	"fmt"
	"time"

	cfg "github.com/tamzrod/cw-keyer/internal/config"
	"github.com/tamzrod/cw-keyer/internal/keyer"
	smodbus "github.com/tamzrod/cw-keyer/internal/store/modbus"
)

// BuildBackend constructs the configured persistence backend.
// Assumes config has already passed Validate and Normalize.
// The modbus backend connects once here (fail fast at startup).
func BuildBackend(c cfg.StoreConfig) (Backend, error) {
	switch c.Backend {
	case cfg.BackendMemory, "":
		return NewMemoryBackend(), nil

	case cfg.BackendPebble:
		return OpenPebble(c.Pebble.Path)

	case cfg.BackendModbus:
		cli, err := smodbus.Dial(c.Modbus.Endpoint, time.Duration(c.Modbus.TimeoutMs)*time.Millisecond)
		if err != nil {
			return nil, err
		}
		b, err := NewRegisterBackend(cli, c.Modbus.UnitID, c.Modbus.BaseAddress)
		if err != nil {
			_ = cli.Close()
			return nil, err
		}
		return b, nil
	}

	return nil, fmt.Errorf("store: unknown backend %q", c.Backend)
}

// DefaultsRecord converts the factory defaults section into a Record.
func DefaultsRecord(d cfg.DefaultsConfig) (Record, error) {
	mode, err := keyer.ParseMode(d.Mode)
	if err != nil {
		return Record{}, err
	}

	r := Record{
		Mode:          mode,
		PitchHz:       uint16(d.PitchHz),
		WPM:           uint8(d.WPM),
		FarnsworthWPM: uint8(d.FarnsworthWPM),
	}

	flags := []struct {
		f  keyer.Flag
		on bool
	}{
		{keyer.FlagSidetone, d.Sidetone == nil || *d.Sidetone},
		{keyer.FlagTXKey, d.TXKey == nil || *d.TXKey},
		{keyer.FlagPaddleSwap, d.PaddleSwap},
		{keyer.FlagTXInvert, d.TXInvert},
	}
	for _, fl := range flags {
		if fl.on {
			r.Flags |= fl.f.Mask()
		}
	}

	return r, nil
}
