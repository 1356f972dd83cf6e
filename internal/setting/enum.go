package setting

import (
	"fmt"
	"strconv"
	"strings"
)

// Choice is one option of an enumerated setting.
type Choice struct {
	// ID uniquely identifies the option.
	ID string
	// DisplayName is shown in the UI.
	DisplayName string
	// Value is the explicit numeric value. When nil, values are assigned
	// from 0 in input order; either every choice sets it or none does.
	Value *int
}

// NewChoice returns a choice with an implicit value.
func NewChoice(id, displayName string) Choice {
	return Choice{ID: id, DisplayName: displayName}
}

// NewValueChoice returns a choice with an explicit value.
func NewValueChoice(id, displayName string, value int) Choice {
	return Choice{ID: id, DisplayName: displayName, Value: &value}
}

// Enum restricts values to a fixed set of options.
type Enum struct {
	choices []Choice
	byID    map[string]int
	byValue map[int]string
}

// NewEnum creates an enumerated setting. defaultID selects the default
// option by ID. Construction fails if explicit values are mixed with
// implicit ones, repeat, or if defaultID is unknown.
func NewEnum(name, defaultID string, choices []Choice, opts ...Option) (*Setting, error) {
	kind, err := newEnumKind(name, choices)
	if err != nil {
		return nil, err
	}

	def, ok := kind.byID[defaultID]
	if !ok {
		return nil, fmt.Errorf("%w: %s: invalid identifier %q for the default value; must be one of %v",
			ErrInvalidDefaultValue, name, defaultID, kind.IDs())
	}

	return newSetting(name, kind, def, RegInt32, opts), nil
}

func newEnumKind(name string, choices []Choice) (*Enum, error) {
	if len(choices) == 0 {
		return nil, fmt.Errorf("%w: %s: enum requires at least one option", ErrInvalidArgument, name)
	}

	explicit := choices[0].Value != nil
	kind := &Enum{
		choices: make([]Choice, 0, len(choices)),
		byID:    make(map[string]int, len(choices)),
		byValue: make(map[int]string, len(choices)),
	}

	for i, c := range choices {
		if (c.Value != nil) != explicit {
			return nil, fmt.Errorf("%w: %s: either all options or none must specify a value", ErrInvalidArgument, name)
		}
		if _, dup := kind.byID[c.ID]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate option id %q", ErrInvalidArgument, name, c.ID)
		}

		value := i
		if explicit {
			value = *c.Value
		}
		if _, dup := kind.byValue[value]; dup {
			return nil, fmt.Errorf("%w: %s: cannot set the same value %d for multiple options", ErrInvalidArgument, name, value)
		}

		v := value
		kind.choices = append(kind.choices, Choice{ID: c.ID, DisplayName: c.DisplayName, Value: &v})
		kind.byID[c.ID] = value
		kind.byValue[value] = c.ID
	}

	return kind, nil
}

// Name implements Kind.
func (e *Enum) Name() string { return "enum" }

// AllowedRegistrationTypes implements Kind.
func (e *Enum) AllowedRegistrationTypes() []RegistrationType {
	return []RegistrationType{RegInt8, RegInt16, RegInt32}
}

func (e *Enum) initMessages(s *Setting) {
	s.errorMessages[MsgInvalidValue] = fmt.Sprintf("invalid option value; valid values: %v", e.Values())
	s.errorMessages[MsgInvalidDefaultValue] = fmt.Sprintf("invalid identifier for the default value; must be one of %v", e.IDs())
}

// Coerce implements Kind.
func (e *Enum) Coerce(s *Setting, v any) (any, error) {
	n, ok := toInt(v)
	if !ok {
		return nil, s.valueError(MsgInvalidValue, v)
	}
	if _, ok := e.byValue[n]; !ok {
		return nil, s.valueError(MsgInvalidValue, v)
	}
	return n, nil
}

// Choices returns the options in input order with resolved values.
func (e *Enum) Choices() []Choice {
	out := make([]Choice, len(e.choices))
	copy(out, e.choices)
	return out
}

// IDs returns option IDs in input order.
func (e *Enum) IDs() []string {
	ids := make([]string, len(e.choices))
	for i, c := range e.choices {
		ids[i] = c.ID
	}
	return ids
}

// Values returns option values in input order.
func (e *Enum) Values() []int {
	values := make([]int, len(e.choices))
	for i, c := range e.choices {
		values[i] = *c.Value
	}
	return values
}

// Value returns the value of the option with the given ID.
func (e *Enum) Value(id string) (int, bool) {
	v, ok := e.byID[id]
	return v, ok
}

// ID returns the ID of the option with the given value.
func (e *Enum) ID(value int) (string, bool) {
	id, ok := e.byValue[value]
	return id, ok
}

// DisplayName returns the display name of the option with the given ID.
func (e *Enum) DisplayName(id string) (string, bool) {
	for _, c := range e.choices {
		if c.ID == id {
			return c.DisplayName, true
		}
	}
	return "", false
}

// Index returns the position of the option with the given value.
func (e *Enum) Index(value int) int {
	for i, c := range e.choices {
		if *c.Value == value {
			return i
		}
	}
	return -1
}

func (e *Enum) shortDescription(s *Setting) string {
	parts := make([]string, len(e.choices))
	for i, c := range e.choices {
		parts[i] = c.DisplayName + " (" + strconv.Itoa(*c.Value) + ")"
	}
	return s.displayName + " { " + strings.Join(parts, ", ") + " }"
}
