package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// ConfigDir is the directory name under ~/.config
	ConfigDir = "genfab"
	// ConfigFile is the config file name
	ConfigFile = "config.json"
	// PathEnv overrides the config file location.
	PathEnv = "GENFAB_CONFIG"
)

// Environment abstracts the process environment for testability.
type Environment interface {
	UserHomeDir() (string, error)
	ReadFile(path string) ([]byte, error)
	LookupEnv(key string) (string, bool)
}

// OSEnvironment implements Environment using the real OS.
type OSEnvironment struct{}

func (OSEnvironment) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

func (OSEnvironment) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (OSEnvironment) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Loader handles configuration loading with injected dependencies.
type Loader struct {
	env Environment
}

// NewLoader creates a production Loader using the real environment.
func NewLoader() *Loader {
	return &Loader{env: OSEnvironment{}}
}

// NewLoaderWithEnv creates a Loader with a custom environment (for testing).
func NewLoaderWithEnv(env Environment) *Loader {
	return &Loader{env: env}
}

// Path returns the config file location: $GENFAB_CONFIG, else ~/.config/genfab/config.json.
// It returns "" when neither can be determined.
func (l *Loader) Path() string {
	if p, ok := l.env.LookupEnv(PathEnv); ok && p != "" {
		return p
	}
	homeDir, err := l.env.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", ConfigDir, ConfigFile)
}

// Load reads the config file, merges it over defaults, applies environment
// overrides and validates the result. A missing file is not an error.
//
// NOTE: The file is unmarshalled directly over the default configuration,
// so explicit zero values (0, false, "") in the file override defaults.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if path := l.Path(); path != "" {
		data, err := l.env.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Defaults only
		default:
			return nil, err
		}
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overlays the environment variables the deployment scripts set.
func (l *Loader) applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"GEMINI_API_KEY":   &cfg.Reasoning.APIKey,
		"PRINTER_IP":       &cfg.Device.Host,
		"PRINTER_API_KEY":  &cfg.Device.APIKey,
		"CAMERA_URL":       &cfg.Camera.URL,
		"HOST":             &cfg.Server.Host,
		"OPENSCAD_PATH":    &cfg.Fabrication.OpenSCADPath,
		"SLICER_PATH":      &cfg.Fabrication.SlicerPath,
		"GENFAB_LOG_LEVEL": &cfg.Log.Level,
	}
	for key, dst := range strs {
		if v, ok := l.env.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := l.env.LookupEnv("PORT"); ok && v != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}

	if v, ok := l.env.LookupEnv("GENFAB_SIMULATED"); ok && v != "" {
		sim, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid GENFAB_SIMULATED %q: %w", v, err)
		}
		cfg.Device.Simulated = sim
	}

	return nil
}

// Load is a convenience function using the default loader.
func Load() (*Config, error) {
	return NewLoader().Load()
}
