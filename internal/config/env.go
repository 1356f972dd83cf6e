package config

import (
	"fmt"
	"strconv"
	"time"
)

// envBinding maps one environment variable onto a configuration field.
type envBinding struct {
	name string
	set  func(c *Config, value string) error
}

func stringVar(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func boolVar(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func intVar(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func durationVar(field func(*Config) *Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = Duration(d)
		return nil
	}
}

// envBindings lists the supported overrides, without EnvPrefix.
var envBindings = []envBinding{
	{"LOG_LEVEL", stringVar(func(c *Config) *string { return &c.Log.Level })},
	{"LOG_FORMAT", stringVar(func(c *Config) *string { return &c.Log.Format })},
	{"SESSION_BACKEND", stringVar(func(c *Config) *string { return &c.Session.Backend })},
	{"SESSION_PREFIX", stringVar(func(c *Config) *string { return &c.Session.Prefix })},
	{"REDIS_ADDRESS", stringVar(func(c *Config) *string { return &c.Session.Redis.Address })},
	{"REDIS_PASSWORD", stringVar(func(c *Config) *string { return &c.Session.Redis.Password })},
	{"REDIS_DATABASE", intVar(func(c *Config) *int { return &c.Session.Redis.Database })},
	{"REDIS_SESSION_ID", stringVar(func(c *Config) *string { return &c.Session.Redis.SessionID })},
	{"REDIS_TTL", durationVar(func(c *Config) *Duration { return &c.Session.Redis.TTL })},
	{"FILE_PATH", stringVar(func(c *Config) *string { return &c.File.Path })},
	{"FILE_FORMAT", stringVar(func(c *Config) *string { return &c.File.Format })},
	{"BADGER_ENABLED", boolVar(func(c *Config) *bool { return &c.Badger.Enabled })},
	{"BADGER_PATH", stringVar(func(c *Config) *string { return &c.Badger.Path })},
	{"BADGER_IN_MEMORY", boolVar(func(c *Config) *bool { return &c.Badger.InMemory })},
	{"ENV_ENABLED", boolVar(func(c *Config) *bool { return &c.Env.Enabled })},
	{"ENV_PREFIX", stringVar(func(c *Config) *string { return &c.Env.Prefix })},
	{"WATCH_ENABLED", boolVar(func(c *Config) *bool { return &c.Watch.Enabled })},
	{"WATCH_DEBOUNCE", durationVar(func(c *Config) *Duration { return &c.Watch.Debounce })},
}

// EnvNames returns the supported environment variable names.
func EnvNames() []string {
	names := make([]string, len(envBindings))
	for i, b := range envBindings {
		names[i] = EnvPrefix + b.name
	}
	return names
}

// applyEnv overlays set environment variables onto cfg. Empty values are
// treated as set.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, b := range envBindings {
		name := EnvPrefix + b.name
		v, ok := lookup(name)
		if !ok {
			continue
		}
		if err := b.set(cfg, v); err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidEnv, name, v, err)
		}
	}
	return nil
}
