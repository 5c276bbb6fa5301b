// internal/config/normalize.go
package config

// Default values applied by Normalize.
const (
	DefaultHeartbeatMs     = 5
	DefaultCommandTimeoutS = 5
	DefaultMacroTimeoutS   = 15
	DefaultTrainTimeoutS   = 10
	DefaultPitchRepeat     = 10
	DefaultFarnsRepeat     = 10
	DefaultVersionText     = "V0.87"

	DefaultModbusTimeoutMs = 1000

	DefaultMode    = "iambic_b"
	DefaultWPM     = 20
	DefaultPitchHz = 600

	DefaultSampleRate = 44100

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	k := &cfg.Keyer
	setInt(&k.HeartbeatMs, DefaultHeartbeatMs)
	setInt(&k.CommandTimeoutS, DefaultCommandTimeoutS)
	setInt(&k.MacroTimeoutS, DefaultMacroTimeoutS)
	setInt(&k.TrainTimeoutS, DefaultTrainTimeoutS)
	setInt(&k.PitchRepeat, DefaultPitchRepeat)
	setInt(&k.FarnsRepeat, DefaultFarnsRepeat)
	if k.VersionText == "" {
		k.VersionText = DefaultVersionText
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = BackendMemory
	}
	setInt(&cfg.Store.Modbus.TimeoutMs, DefaultModbusTimeoutMs)

	d := &cfg.Defaults
	if d.Mode == "" {
		d.Mode = DefaultMode
	}
	setInt(&d.WPM, DefaultWPM)
	setInt(&d.PitchHz, DefaultPitchHz)
	if d.Sidetone == nil {
		on := true
		d.Sidetone = &on
	}
	if d.TXKey == nil {
		on := true
		d.TXKey = &on
	}

	setInt(&cfg.Sim.SampleRate, DefaultSampleRate)

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

func setInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}
