// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/tamzrod/cw-keyer/internal/keyer"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// Zero values are accepted: they mean "use default" and are filled by Normalize.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	// ------------------------------------------------------------
	// KEYER TIMING
	// ------------------------------------------------------------

	k := cfg.Keyer

	if k.HeartbeatMs != 0 {
		if k.HeartbeatMs < 1 || k.HeartbeatMs > 1000 {
			return fmt.Errorf("keyer.heartbeat_ms must be in 1..1000, got %d", k.HeartbeatMs)
		}
		// seconds must map onto a whole number of beats
		if 1000%k.HeartbeatMs != 0 {
			return fmt.Errorf("keyer.heartbeat_ms must divide 1000, got %d", k.HeartbeatMs)
		}
	}

	timeouts := []struct {
		name string
		v    int
	}{
		{"keyer.command_timeout_s", k.CommandTimeoutS},
		{"keyer.macro_timeout_s", k.MacroTimeoutS},
		{"keyer.train_timeout_s", k.TrainTimeoutS},
	}
	for _, t := range timeouts {
		if t.v < 0 || t.v > 3600 {
			return fmt.Errorf("%s must be in 0..3600, got %d", t.name, t.v)
		}
	}

	if k.PitchRepeat < 0 || k.PitchRepeat > 255 {
		return fmt.Errorf("keyer.pitch_repeat must be in 0..255, got %d", k.PitchRepeat)
	}
	if k.FarnsRepeat < 0 || k.FarnsRepeat > 255 {
		return fmt.Errorf("keyer.farns_repeat must be in 0..255, got %d", k.FarnsRepeat)
	}

	for i := 0; i < len(k.VersionText); i++ {
		if k.VersionText[i] < 0x20 || k.VersionText[i] > 0x7E {
			return fmt.Errorf("keyer.version_text must contain printable ASCII characters only")
		}
	}

	// ------------------------------------------------------------
	// STORE BACKEND
	// ------------------------------------------------------------

	switch cfg.Store.Backend {
	case "", BackendMemory:
	case BackendPebble:
		if cfg.Store.Pebble.Path == "" {
			return fmt.Errorf("store.pebble.path is required for backend %q", BackendPebble)
		}
	case BackendModbus:
		if cfg.Store.Modbus.Endpoint == "" {
			return fmt.Errorf("store.modbus.endpoint is required for backend %q", BackendModbus)
		}
		if cfg.Store.Modbus.TimeoutMs < 0 {
			return fmt.Errorf("store.modbus.timeout_ms must be >= 0, got %d", cfg.Store.Modbus.TimeoutMs)
		}
	default:
		return fmt.Errorf("store.backend %q is not one of memory, pebble, modbus", cfg.Store.Backend)
	}

	// ------------------------------------------------------------
	// FACTORY DEFAULTS
	// ------------------------------------------------------------

	d := cfg.Defaults

	if d.Mode != "" {
		if _, err := keyer.ParseMode(d.Mode); err != nil {
			return fmt.Errorf("defaults.mode: %w", err)
		}
	}
	if d.WPM != 0 && (d.WPM < 5 || d.WPM > 50) {
		return fmt.Errorf("defaults.wpm must be in 5..50, got %d", d.WPM)
	}
	if d.PitchHz != 0 && (d.PitchHz < 300 || d.PitchHz > 1200) {
		return fmt.Errorf("defaults.pitch_hz must be in 300..1200, got %d", d.PitchHz)
	}
	if d.FarnsworthWPM != 0 {
		wpm := d.WPM
		if wpm == 0 {
			wpm = DefaultWPM
		}
		if d.FarnsworthWPM < 5 || d.FarnsworthWPM >= wpm {
			return fmt.Errorf(
				"defaults.farnsworth_wpm must be 0 or in 5..%d, got %d",
				wpm-1,
				d.FarnsworthWPM,
			)
		}
	}

	// ------------------------------------------------------------
	// SIMULATOR + LOG
	// ------------------------------------------------------------

	if sr := cfg.Sim.SampleRate; sr != 0 && (sr < 8000 || sr > 192000) {
		return fmt.Errorf("sim.sample_rate must be in 8000..192000, got %d", sr)
	}

	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format %q is not one of text, json", cfg.Log.Format)
	}

	return nil
}
