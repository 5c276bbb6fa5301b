// internal/config/config.go
package config

type Config struct {
	Keyer    KeyerConfig    `yaml:"keyer"`
	Store    StoreConfig    `yaml:"store"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Sim      SimConfig      `yaml:"sim"`
	Log      LogConfig      `yaml:"log"`
}

// ---- KEYER ----

type KeyerConfig struct {
	HeartbeatMs     int    `yaml:"heartbeat_ms"`
	CommandTimeoutS int    `yaml:"command_timeout_s"`
	MacroTimeoutS   int    `yaml:"macro_timeout_s"`
	TrainTimeoutS   int    `yaml:"train_timeout_s"`
	PitchRepeat     int    `yaml:"pitch_repeat"`
	FarnsRepeat     int    `yaml:"farns_repeat"`
	PowerSave       bool   `yaml:"power_save"`
	VersionText     string `yaml:"version_text"`
}

// BeatsPerSecond converts the heartbeat period into beats per second.
// Valid only after Normalize.
func (k KeyerConfig) BeatsPerSecond() int {
	return 1000 / k.HeartbeatMs
}

// ---- STORE ----

const (
	BackendMemory = "memory"
	BackendPebble = "pebble"
	BackendModbus = "modbus"
)

type StoreConfig struct {
	Backend string       `yaml:"backend"`
	Pebble  PebbleConfig `yaml:"pebble"`
	Modbus  ModbusConfig `yaml:"modbus"`
}

type PebbleConfig struct {
	Path string `yaml:"path"`
}

type ModbusConfig struct {
	Endpoint    string `yaml:"endpoint"`
	UnitID      uint8  `yaml:"unit_id"`
	BaseAddress uint16 `yaml:"base_address"`
	TimeoutMs   int    `yaml:"timeout_ms"`
}

// ---- FACTORY DEFAULTS ----

type DefaultsConfig struct {
	Mode          string `yaml:"mode"`
	WPM           int    `yaml:"wpm"`
	PitchHz       int    `yaml:"pitch_hz"`
	FarnsworthWPM int    `yaml:"farnsworth_wpm"`
	Sidetone      *bool  `yaml:"sidetone"` // nil => on
	TXKey         *bool  `yaml:"tx_key"`   // nil => on
	PaddleSwap    bool   `yaml:"paddle_swap"`
	TXInvert      bool   `yaml:"tx_invert"`
}

// ---- SIMULATOR ----

type SimConfig struct {
	Realtime   bool   `yaml:"realtime"`
	WavPath    string `yaml:"wav_path"`
	SampleRate int    `yaml:"sample_rate"`
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
