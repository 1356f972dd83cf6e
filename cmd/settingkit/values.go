package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/settingkit/internal/setting"
)

// parseAssignment splits "name=value".
func parseAssignment(arg string) (name, value string, err error) {
	name, value, ok := strings.Cut(arg, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid assignment %q: expected NAME=VALUE", arg)
	}
	return name, value, nil
}

// parseValue converts command-line text to a value for s. Enum values may
// be given by option ID or by number. Range and emptiness checks are left
// to the setting.
func parseValue(s *setting.Setting, raw string) (any, error) {
	switch k := s.Kind().(type) {
	case setting.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a boolean", s.Name(), raw)
		}
		return b, nil
	case *setting.Enum:
		if v, ok := k.Value(raw); ok {
			return v, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: unknown option %q; must be one of %s",
				s.Name(), raw, strings.Join(k.IDs(), ", "))
		}
		return n, nil
	case *setting.Numeric:
		if k.Name() == "int" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not an integer", s.Name(), raw)
			}
			return n, nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", s.Name(), raw)
		}
		return f, nil
	case setting.String:
		return raw, nil
	default:
		return nil, fmt.Errorf("%s: %s settings cannot be set from the command line", s.Name(), k.Name())
	}
}

// formatValue renders the value of s for display. Enums show their
// option ID.
func formatValue(s *setting.Setting) string {
	if e := s.EnumKind(); e != nil {
		if id, ok := e.ID(s.IntValue()); ok {
			return id
		}
	}
	return fmt.Sprint(s.Value())
}
