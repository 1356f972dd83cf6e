package setting

import "strings"

// Attribute identifies a tracked setting attribute.
type Attribute uint8

const (
	// AttrValue is the setting value.
	AttrValue Attribute = 1 << iota
	// AttrUIEnabled is the advisory enabled flag.
	AttrUIEnabled
	// AttrUIVisible is the advisory visible flag.
	AttrUIVisible
)

// String returns the attribute name.
func (a Attribute) String() string {
	switch a {
	case AttrValue:
		return "value"
	case AttrUIEnabled:
		return "ui_enabled"
	case AttrUIVisible:
		return "ui_visible"
	default:
		return "unknown"
	}
}

// allAttributes lists attributes in a fixed order.
var allAttributes = []Attribute{AttrValue, AttrUIEnabled, AttrUIVisible}

// AttrSet is a set of attributes.
type AttrSet uint8

// Has reports whether a is in the set.
func (s AttrSet) Has(a Attribute) bool {
	return s&AttrSet(a) != 0
}

// With returns the set with a added.
func (s AttrSet) With(a Attribute) AttrSet {
	return s | AttrSet(a)
}

// Union returns the union of both sets.
func (s AttrSet) Union(other AttrSet) AttrSet {
	return s | other
}

// IsEmpty reports whether the set has no attributes.
func (s AttrSet) IsEmpty() bool {
	return s == 0
}

// Attributes returns the members in value, ui_enabled, ui_visible order.
func (s AttrSet) Attributes() []Attribute {
	attrs := make([]Attribute, 0, len(allAttributes))
	for _, a := range allAttributes {
		if s.Has(a) {
			attrs = append(attrs, a)
		}
	}
	return attrs
}

// String returns e.g. "{value ui_enabled}".
func (s AttrSet) String() string {
	names := make([]string, 0, len(allAttributes))
	for _, a := range s.Attributes() {
		names = append(names, a.String())
	}
	return "{" + strings.Join(names, " ") + "}"
}

// Changes maps settings to the attributes that changed during streamlining.
// Iteration order is the order in which settings were first recorded.
// The zero value is ready to use.
type Changes struct {
	order []*Setting
	attrs map[*Setting]AttrSet
}

// Add records attrs for s, merging with anything already recorded.
func (c *Changes) Add(s *Setting, attrs AttrSet) {
	if attrs.IsEmpty() {
		return
	}
	if c.attrs == nil {
		c.attrs = make(map[*Setting]AttrSet)
	}
	existing, ok := c.attrs[s]
	if !ok {
		c.order = append(c.order, s)
	}
	c.attrs[s] = existing.Union(attrs)
}

// Merge unions every entry of other into c.
func (c *Changes) Merge(other Changes) {
	for _, s := range other.order {
		c.Add(s, other.attrs[s])
	}
}

// Get returns the attributes recorded for s.
func (c Changes) Get(s *Setting) (AttrSet, bool) {
	attrs, ok := c.attrs[s]
	return attrs, ok
}

// Settings returns the recorded settings in order.
func (c Changes) Settings() []*Setting {
	out := make([]*Setting, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of settings recorded.
func (c Changes) Len() int {
	return len(c.order)
}

// Each calls fn for every recorded setting in order.
func (c Changes) Each(fn func(s *Setting, attrs AttrSet)) {
	for _, s := range c.order {
		fn(s, c.attrs[s])
	}
}
