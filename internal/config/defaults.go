package config

import "time"

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile, then environment.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Server      ServerConfig      `json:"server"`
	Device      DeviceConfig      `json:"device"`
	Camera      CameraConfig      `json:"camera"`
	Reasoning   ReasoningConfig   `json:"reasoning"`
	Analysis    AnalysisConfig    `json:"analysis"`
	Fabrication FabricationConfig `json:"fabrication"`
	Log         LogConfig         `json:"log"`
}

type ServerConfig struct {
	Host string `json:"host"` // Default: 0.0.0.0
	Port int    `json:"port"` // Default: 3109

	// Status feed
	StatusIntervalMs int `json:"status_interval_ms"` // Default: 2000
}

type DeviceConfig struct {
	// Simulated forces the in-memory printer. An empty Host also selects it.
	Simulated bool   `json:"simulated"`
	Host      string `json:"host"`
	APIKey    string `json:"api_key"`
	Storage   string `json:"storage"` // Default: usb

	TimeoutMs     int     `json:"timeout_ms"`      // Default: 5000
	RatePerSecond float64 `json:"rate_per_second"` // Default: 4
	Burst         int     `json:"burst"`           // Default: 4
}

type CameraConfig struct {
	URL       string `json:"url"`
	TimeoutMs int    `json:"timeout_ms"` // Default: 10000
}

type ReasoningConfig struct {
	APIKey    string `json:"api_key"`
	Model     string `json:"model"`      // Default: gemini-3-flash-preview
	TimeoutMs int    `json:"timeout_ms"` // Default: 120000
}

type AnalysisConfig struct {
	MaxTurns      int      `json:"max_turns"`      // Default: 5
	DefaultEffort string   `json:"default_effort"` // Default: LOW
	DefaultTools  []string `json:"default_tools"`  // Default: get_device_status, get_device_info
}

type FabricationConfig struct {
	SlicerPath   string `json:"slicer_path"`   // Default: prusa-slicer
	OpenSCADPath string `json:"openscad_path"` // Default: openscad
	ModelsDir    string `json:"models_dir"`    // Default: assets/models

	TimeoutMs      int `json:"timeout_ms"`       // Default: 300000 (5 minutes)
	MaxOutputBytes int `json:"max_output_bytes"` // Default: 1 MiB
}

type LogConfig struct {
	Level string `json:"level"` // Default: info
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             3109,
			StatusIntervalMs: 2000,
		},
		Device: DeviceConfig{
			Storage:       "usb",
			TimeoutMs:     5000,
			RatePerSecond: 4,
			Burst:         4,
		},
		Camera: CameraConfig{
			TimeoutMs: 10000,
		},
		Reasoning: ReasoningConfig{
			Model:     "gemini-3-flash-preview",
			TimeoutMs: 120000,
		},
		Analysis: AnalysisConfig{
			MaxTurns:      5,
			DefaultEffort: "LOW",
			DefaultTools:  []string{"get_device_status", "get_device_info"},
		},
		Fabrication: FabricationConfig{
			SlicerPath:     "prusa-slicer",
			OpenSCADPath:   "openscad",
			ModelsDir:      "assets/models",
			TimeoutMs:      300000,
			MaxOutputBytes: 1 << 20,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// UseSimulatedDevice reports whether the in-memory printer should be used.
func (c *Config) UseSimulatedDevice() bool {
	return c.Device.Simulated || c.Device.Host == ""
}

// Millis converts a millisecond setting to a Duration.
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
