// Package config loads the settingkit application configuration.
//
// Configuration comes from three layers, lowest priority first: built-in
// defaults, a TOML file and SETTINGKIT_* environment variables. The merged
// result is validated before use.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix of configuration environment variables.
const EnvPrefix = "SETTINGKIT_"

// Config is the application configuration.
type Config struct {
	Log     LogConfig      `toml:"log"`
	Session SessionConfig  `toml:"session"`
	File    FileConfig     `toml:"file"`
	Badger  BadgerConfig   `toml:"badger"`
	Env     EnvConfig      `toml:"env"`
	Watch   WatchConfig    `toml:"watch"`
	Scripts []ScriptConfig `toml:"scripts" validate:"dive"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=trace debug info warn error"`
	Format string `toml:"format" validate:"oneof=json console"`
}

// SessionConfig selects the session store.
type SessionConfig struct {
	// Backend is "memory" or "redis".
	Backend string      `toml:"backend" validate:"oneof=memory redis"`
	Prefix  string      `toml:"prefix"`
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig configures the Redis session store.
type RedisConfig struct {
	Address   string   `toml:"address" validate:"omitempty,hostname_port"`
	Password  string   `toml:"password"`
	Database  int      `toml:"database" validate:"gte=0,lte=15"`
	Namespace string   `toml:"namespace"`
	SessionID string   `toml:"session_id" validate:"omitempty,uuid"`
	TTL       Duration `toml:"ttl" validate:"gte=0"`
}

// FileConfig configures the durable settings file.
type FileConfig struct {
	Path string `toml:"path" validate:"required"`
	// Format overrides detection by extension.
	Format string `toml:"format" validate:"omitempty,oneof=json toml yaml"`
}

// BadgerConfig configures the optional Badger store.
type BadgerConfig struct {
	Enabled  bool   `toml:"enabled"`
	Path     string `toml:"path"`
	InMemory bool   `toml:"in_memory"`
	Prefix   string `toml:"prefix"`
}

// EnvConfig configures read-only environment overrides of settings.
type EnvConfig struct {
	Enabled bool   `toml:"enabled"`
	Prefix  string `toml:"prefix" validate:"required_if=Enabled true"`
}

// WatchConfig configures live reload of the settings file.
type WatchConfig struct {
	Enabled  bool     `toml:"enabled"`
	Debounce Duration `toml:"debounce" validate:"gte=0"`
}

// ScriptConfig attaches a Lua streamline script to a setting.
type ScriptConfig struct {
	Setting string   `toml:"setting" validate:"required"`
	Deps    []string `toml:"deps"`
	File    string   `toml:"file" validate:"required"`
}

// Duration is a time.Duration written as a string ("500ms") in TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in configuration.
func Default() *Config {
	dir := DefaultDir()
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Session: SessionConfig{
			Backend: "memory",
			Redis: RedisConfig{
				Address:   "localhost:6379",
				Namespace: "settingkit",
				TTL:       Duration(24 * time.Hour),
			},
		},
		File: FileConfig{
			Path: filepath.Join(dir, "settings.json"),
		},
		Badger: BadgerConfig{
			Path:   filepath.Join(dir, "badger"),
			Prefix: "settings/",
		},
		Env: EnvConfig{
			Prefix: "SETTINGKIT_SETTING_",
		},
		Watch: WatchConfig{
			Debounce: Duration(100 * time.Millisecond),
		},
	}
}

// DefaultDir returns the directory holding settingkit files.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "settingkit")
	}
	return ".settingkit"
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.toml")
}

// loadOptions holds Load options.
type loadOptions struct {
	lookupEnv func(string) (string, bool)
	readFile  func(string) ([]byte, error)
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(fn func(string) (string, bool)) LoadOption {
	return func(o *loadOptions) {
		o.lookupEnv = fn
	}
}

// WithReadFile replaces os.ReadFile.
func WithReadFile(fn func(string) ([]byte, error)) LoadOption {
	return func(o *loadOptions) {
		o.readFile = fn
	}
}

// Load builds the configuration from defaults, the TOML file at path and
// the environment, then validates it. A missing file is not an error; an
// empty path skips the file.
func Load(path string, opts ...LoadOption) (*Config, error) {
	o := loadOptions{
		lookupEnv: os.LookupEnv,
		readFile:  os.ReadFile,
	}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := Default()

	if path != "" {
		data, err := o.readFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := decode(path, data, cfg); err != nil {
				return nil, err
			}
		}
	}

	if err := applyEnv(cfg, o.lookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode overlays the TOML document onto cfg. Unknown keys are rejected.
func decode(path string, data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(cfg); err != nil {
		perr := &ParseError{Path: path, Message: err.Error(), Err: err}

		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
			perr.Message = derr.Error()
		}

		var serr *toml.StrictMissingError
		if errors.As(err, &serr) && len(serr.Errors) > 0 {
			perr.Line, perr.Column = serr.Errors[0].Position()
			perr.Message = "unknown key " + strings.Join(serr.Errors[0].Key(), ".")
		}
		return perr
	}
	return nil
}

// Marshal encodes cfg as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
