package setting

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the validation behavior shared by all settings of one value type.
type Kind interface {
	// Name identifies the kind (e.g. "int", "enum").
	Name() string

	// Coerce validates v for s and returns the normalized value to store.
	// Errors are *ValueError built from s's error messages.
	Coerce(s *Setting, v any) (any, error)

	// AllowedRegistrationTypes lists accepted registration tags.
	// A nil slice accepts any tag.
	AllowedRegistrationTypes() []RegistrationType
}

// Generic accepts any value.
type Generic struct{}

// Name implements Kind.
func (Generic) Name() string { return "generic" }

// Coerce implements Kind.
func (Generic) Coerce(_ *Setting, v any) (any, error) { return v, nil }

// AllowedRegistrationTypes implements Kind.
func (Generic) AllowedRegistrationTypes() []RegistrationType { return nil }

// Numeric validates integers or floats against optional inclusive bounds.
type Numeric struct {
	float bool
	min   *float64
	max   *float64
}

// NewInt creates an integer setting. Values are stored as int.
func NewInt(name string, defaultValue int, opts ...Option) *Setting {
	return newSetting(name, &Numeric{}, defaultValue, RegInt32, opts)
}

// NewFloat creates a floating-point setting. Values are stored as float64.
func NewFloat(name string, defaultValue float64, opts ...Option) *Setting {
	return newSetting(name, &Numeric{float: true}, defaultValue, RegFloat, opts)
}

// WithMin sets the inclusive lower bound of a numeric setting.
// It panics on settings of other kinds.
func WithMin(min float64) Option {
	return func(s *Setting) {
		mustNumeric(s).SetMin(s, min)
	}
}

// WithMax sets the inclusive upper bound of a numeric setting.
// It panics on settings of other kinds.
func WithMax(max float64) Option {
	return func(s *Setting) {
		mustNumeric(s).SetMax(s, max)
	}
}

func mustNumeric(s *Setting) *Numeric {
	n, ok := s.kind.(*Numeric)
	if !ok {
		panic(fmt.Sprintf("setting %s: bounds require a numeric kind, got %s", s.name, s.kind.Name()))
	}
	return n
}

// Name implements Kind.
func (n *Numeric) Name() string {
	if n.float {
		return "float"
	}
	return "int"
}

// AllowedRegistrationTypes implements Kind.
func (n *Numeric) AllowedRegistrationTypes() []RegistrationType {
	if n.float {
		return []RegistrationType{RegFloat}
	}
	return []RegistrationType{RegInt8, RegInt16, RegInt32}
}

// Min returns the lower bound, if any.
func (n *Numeric) Min() (float64, bool) {
	if n.min == nil {
		return 0, false
	}
	return *n.min, true
}

// Max returns the upper bound, if any.
func (n *Numeric) Max() (float64, bool) {
	if n.max == nil {
		return 0, false
	}
	return *n.max, true
}

// SetMin sets the inclusive lower bound. The below_min message is
// regenerated unless it was customized.
func (n *Numeric) SetMin(s *Setting, min float64) {
	n.refreshMessage(s, MsgBelowMin, minMessage(n.min), minMessage(&min))
	n.min = &min
}

// SetMax sets the inclusive upper bound. The above_max message is
// regenerated unless it was customized.
func (n *Numeric) SetMax(s *Setting, max float64) {
	n.refreshMessage(s, MsgAboveMax, maxMessage(n.max), maxMessage(&max))
	n.max = &max
}

// ClearMin removes the lower bound.
func (n *Numeric) ClearMin() { n.min = nil }

// ClearMax removes the upper bound.
func (n *Numeric) ClearMax() { n.max = nil }

func (n *Numeric) refreshMessage(s *Setting, key, oldAuto, newAuto string) {
	if cur, ok := s.errorMessages[key]; !ok || cur == oldAuto {
		s.errorMessages[key] = newAuto
	}
}

func (n *Numeric) initMessages(s *Setting) {
	s.errorMessages[MsgBelowMin] = minMessage(nil)
	s.errorMessages[MsgAboveMax] = maxMessage(nil)
	s.errorMessages[MsgTypeMismatch] = "value must be a number"
	if !n.float {
		s.errorMessages[MsgTypeMismatch] = "value must be an integer"
	}
}

func minMessage(min *float64) string {
	return "value cannot be less than the minimum value " + formatBound(min)
}

func maxMessage(max *float64) string {
	return "value cannot be greater than the maximum value " + formatBound(max)
}

func formatBound(b *float64) string {
	if b == nil {
		return "<none>"
	}
	return strconv.FormatFloat(*b, 'g', -1, 64)
}

// Coerce implements Kind.
func (n *Numeric) Coerce(s *Setting, v any) (any, error) {
	var (
		stored any
		f      float64
	)
	if n.float {
		x, ok := toFloat(v)
		if !ok {
			return nil, s.valueError(MsgTypeMismatch, v)
		}
		stored, f = x, x
	} else {
		x, ok := toInt(v)
		if !ok {
			return nil, s.valueError(MsgTypeMismatch, v)
		}
		stored, f = x, float64(x)
	}

	if n.min != nil && f < *n.min {
		return nil, s.valueError(MsgBelowMin, v)
	}
	if n.max != nil && f > *n.max {
		return nil, s.valueError(MsgAboveMax, v)
	}
	return stored, nil
}

// Bool validates boolean values.
type Bool struct{}

// NewBool creates a boolean setting.
func NewBool(name string, defaultValue bool, opts ...Option) *Setting {
	return newSetting(name, Bool{}, defaultValue, RegInt32, opts)
}

// Name implements Kind.
func (Bool) Name() string { return "bool" }

// AllowedRegistrationTypes implements Kind.
func (Bool) AllowedRegistrationTypes() []RegistrationType {
	return []RegistrationType{RegInt8, RegInt16, RegInt32}
}

func (Bool) initMessages(s *Setting) {
	s.errorMessages[MsgTypeMismatch] = "value must be a boolean"
}

// Coerce implements Kind.
func (Bool) Coerce(s *Setting, v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, s.valueError(MsgTypeMismatch, v)
	}
	return b, nil
}

// String validates text values. With nonEmpty set, empty strings are
// rejected.
type String struct {
	nonEmpty bool
}

// NewString creates a string setting.
func NewString(name, defaultValue string, opts ...Option) *Setting {
	return newSetting(name, String{}, defaultValue, RegString, opts)
}

// NewNonEmptyString creates a string setting that rejects empty strings.
func NewNonEmptyString(name, defaultValue string, opts ...Option) *Setting {
	return newSetting(name, String{nonEmpty: true}, defaultValue, RegString, opts)
}

// Name implements Kind.
func (k String) Name() string {
	if k.nonEmpty {
		return "non_empty_string"
	}
	return "string"
}

// AllowedRegistrationTypes implements Kind.
func (String) AllowedRegistrationTypes() []RegistrationType {
	return []RegistrationType{RegString}
}

func (k String) initMessages(s *Setting) {
	s.errorMessages[MsgTypeMismatch] = "value must be a string"
	if k.nonEmpty {
		s.errorMessages[MsgInvalidValue] = "string is empty or not specified"
	}
}

// Coerce implements Kind.
func (k String) Coerce(s *Setting, v any) (any, error) {
	str, ok := v.(string)
	if !ok {
		if k.nonEmpty && v == nil {
			return nil, s.valueError(MsgInvalidValue, v)
		}
		return nil, s.valueError(MsgTypeMismatch, v)
	}
	if k.nonEmpty && str == "" {
		return nil, s.valueError(MsgInvalidValue, v)
	}
	return str, nil
}

// Checker reports whether a reference to a host object is still valid.
type Checker interface {
	Valid(ref any) bool
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ref any) bool

// Valid implements Checker.
func (f CheckerFunc) Valid(ref any) bool { return f(ref) }

// Reference validates handles to live host objects by asking a Checker.
type Reference struct {
	name    string
	regType RegistrationType
	checker Checker
	invalid string
}

// NewReference creates a reference setting validated by checker.
func NewReference(name string, defaultValue any, kindName string, regType RegistrationType, checker Checker, opts ...Option) *Setting {
	kind := &Reference{
		name:    kindName,
		regType: regType,
		checker: checker,
		invalid: "invalid " + kindName,
	}
	return newSetting(name, kind, defaultValue, regType, opts)
}

// NewImage creates a setting referring to a host image.
func NewImage(name string, defaultValue any, checker Checker, opts ...Option) *Setting {
	return NewReference(name, defaultValue, "image", RegImage, checker, opts...)
}

// NewDrawable creates a setting referring to a host drawable.
func NewDrawable(name string, defaultValue any, checker Checker, opts ...Option) *Setting {
	return NewReference(name, defaultValue, "drawable", RegDrawable, checker, opts...)
}

// Name implements Kind.
func (r *Reference) Name() string { return r.name }

// AllowedRegistrationTypes implements Kind.
func (r *Reference) AllowedRegistrationTypes() []RegistrationType {
	return []RegistrationType{r.regType}
}

func (r *Reference) initMessages(s *Setting) {
	s.errorMessages[MsgInvalidValue] = r.invalid
}

// Coerce implements Kind.
func (r *Reference) Coerce(s *Setting, v any) (any, error) {
	if v == nil || r.checker == nil || !r.checker.Valid(v) {
		return nil, s.valueError(MsgInvalidValue, v)
	}
	return v, nil
}

// toInt converts Go integers and integral floats to int.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint:
		if uint64(n) > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return 0, false
	}
	if f < math.MinInt || f > math.MaxInt {
		return 0, false
	}
	return int(f), true
}

// toFloat converts any Go number to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		i, ok := toInt(v)
		if !ok {
			return 0, false
		}
		return float64(i), true
	}
}
