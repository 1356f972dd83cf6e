package stream

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/dshills/settingkit/internal/setting"
)

// Env reads overrides from environment variables named
// "<prefix><UPPER_SNAKE_NAME>", e.g. SETTINGKIT_FILE_EXTENSION for the
// setting "file_extension". It is read-only.
type Env struct {
	tracker
	prefix string
	lookup func(string) (string, bool)
}

// NewEnv creates an environment stream. The prefix should include the
// trailing underscore.
func NewEnv(prefix string) *Env {
	return &Env{prefix: prefix, lookup: os.LookupEnv}
}

// VarName returns the environment variable consulted for a setting name.
func (e *Env) VarName(name string) string {
	name = strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(name)
	return e.prefix + strings.ToUpper(name)
}

// Read implements Stream. String settings receive the variable verbatim;
// all others receive the parsed scalar.
func (e *Env) Read(_ context.Context, settings []*setting.Setting) error {
	verbatim := make(map[string]bool, len(settings))
	for _, s := range settings {
		if _, ok := s.Kind().(setting.String); ok {
			verbatim[s.Name()] = true
		}
	}

	return e.apply(settings, func(name string) (any, bool, error) {
		raw, ok := e.lookup(e.VarName(name))
		if !ok {
			return nil, false, nil
		}
		if verbatim[name] {
			return raw, true, nil
		}
		return parseEnvValue(raw), true, nil
	})
}

// Write implements Stream. It always fails.
func (e *Env) Write(context.Context, []*setting.Setting) error {
	return &Error{
		Op: "write", Location: e.prefix, Kind: ErrWriteFailed,
		Message: "environment stream " + e.prefix + "* is read-only",
	}
}

// parseEnvValue converts a variable to the most specific scalar it parses
// as. Numbers stay numbers so that integer and enum settings accept them.
func parseEnvValue(s string) any {
	if s == "" {
		return s
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}

	return s
}
