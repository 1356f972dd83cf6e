package setting

// IntValue returns the value as an int, or 0 if it is not an integer.
func (s *Setting) IntValue() int {
	n, _ := toInt(s.value)
	return n
}

// FloatValue returns the value as a float64, or 0 if it is not a number.
func (s *Setting) FloatValue() float64 {
	f, _ := toFloat(s.value)
	return f
}

// BoolValue returns the value as a bool, or false if it is not a bool.
func (s *Setting) BoolValue() bool {
	b, _ := s.value.(bool)
	return b
}

// StringValue returns the value as a string, or "" if it is not a string.
func (s *Setting) StringValue() string {
	str, _ := s.value.(string)
	return str
}

// EnumKind returns the enum kind of s, or nil for other kinds.
func (s *Setting) EnumKind() *Enum {
	e, _ := s.kind.(*Enum)
	return e
}

// NumericKind returns the numeric kind of s, or nil for other kinds.
func (s *Setting) NumericKind() *Numeric {
	n, _ := s.kind.(*Numeric)
	return n
}
