package setting

import (
	"fmt"
	"slices"
)

// RegistrationType is an opaque tag describing how a setting may be exposed
// to the host's procedure registration mechanism.
type RegistrationType string

// Registration types understood by the built-in kinds.
const (
	// NoRegistration means the setting cannot be registered.
	NoRegistration RegistrationType = ""

	RegInt8     RegistrationType = "int8"
	RegInt16    RegistrationType = "int16"
	RegInt32    RegistrationType = "int32"
	RegFloat    RegistrationType = "float"
	RegString   RegistrationType = "string"
	RegImage    RegistrationType = "image"
	RegDrawable RegistrationType = "drawable"
)

// StreamlineFunc adjusts s and its dependencies based on their current state.
// deps is the ordered list passed to SetStreamlineFunc.
type StreamlineFunc func(s *Setting, deps []*Setting) error

// Setting is a named, typed, validated configuration value.
//
// Settings are not safe for concurrent use.
type Setting struct {
	name string
	kind Kind

	defaultValue any
	value        any

	registrationType RegistrationType
	canBeRegistered  bool

	displayName   string
	description   string
	errorMessages map[string]string

	uiEnabled bool
	uiVisible bool

	canBeResetByContainer bool

	changed AttrSet

	streamlineFn   StreamlineFunc
	streamlineDeps []*Setting
}

// Option configures a Setting at construction.
type Option func(*Setting)

// WithDisplayName sets the human-readable name.
func WithDisplayName(name string) Option {
	return func(s *Setting) {
		s.displayName = name
	}
}

// WithDescription sets the description used for tooltips and documentation.
func WithDescription(desc string) Option {
	return func(s *Setting) {
		s.description = desc
	}
}

// WithErrorMessage overrides the message stored under key.
func WithErrorMessage(key, message string) Option {
	return func(s *Setting) {
		s.errorMessages[key] = message
	}
}

// WithoutContainerReset excludes the setting from container resets.
func WithoutContainerReset() Option {
	return func(s *Setting) {
		s.canBeResetByContainer = false
	}
}

// WithUIHidden starts the setting with ui_visible false.
func WithUIHidden() Option {
	return func(s *Setting) {
		s.uiVisible = false
	}
}

// WithUIDisabled starts the setting with ui_enabled false.
func WithUIDisabled() Option {
	return func(s *Setting) {
		s.uiEnabled = false
	}
}

// newSetting builds a setting of the given kind. The default value is not
// validated.
func newSetting(name string, kind Kind, defaultValue any, regType RegistrationType, opts []Option) *Setting {
	s := &Setting{
		name:                  name,
		kind:                  kind,
		defaultValue:          defaultValue,
		value:                 defaultValue,
		registrationType:      regType,
		canBeRegistered:       regType != NoRegistration,
		errorMessages:         make(map[string]string),
		uiEnabled:             true,
		uiVisible:             true,
		canBeResetByContainer: true,
	}
	if init, ok := kind.(interface{ initMessages(*Setting) }); ok {
		init.initMessages(s)
	}
	for _, opt := range opts {
		opt(s)
	}
	s.changed = 0
	return s
}

// New creates a setting of the Generic kind, which accepts any value.
func New(name string, defaultValue any, opts ...Option) *Setting {
	return newSetting(name, Generic{}, defaultValue, NoRegistration, opts)
}

// Name returns the setting name.
func (s *Setting) Name() string {
	return s.name
}

// Kind returns the setting kind.
func (s *Setting) Kind() Kind {
	return s.kind
}

// DefaultValue returns the default value.
func (s *Setting) DefaultValue() any {
	return s.defaultValue
}

// Value returns the current value.
func (s *Setting) Value() any {
	return s.value
}

// SetValue validates v and stores it. On failure the current value is kept
// and a *ValueError is returned.
func (s *Setting) SetValue(v any) error {
	coerced, err := s.kind.Coerce(s, v)
	if err != nil {
		return err
	}
	s.value = coerced
	s.changed = s.changed.With(AttrValue)
	return nil
}

// Reset restores the default value without validation.
func (s *Setting) Reset() {
	s.value = s.defaultValue
}

// RegistrationType returns the registration tag.
func (s *Setting) RegistrationType() RegistrationType {
	return s.registrationType
}

// SetRegistrationType sets the registration tag. NoRegistration is always
// accepted; other tags must be in the kind's allow-list.
func (s *Setting) SetRegistrationType(rt RegistrationType) error {
	if rt != NoRegistration {
		allowed := s.kind.AllowedRegistrationTypes()
		if allowed != nil && !slices.Contains(allowed, rt) {
			return fmt.Errorf("%w: %q for %s (allowed: %v)", ErrInvalidRegistrationType, rt, s.name, allowed)
		}
	}
	s.registrationType = rt
	s.canBeRegistered = rt != NoRegistration
	return nil
}

// CanBeRegistered reports whether the setting may be registered with the host.
func (s *Setting) CanBeRegistered() bool {
	return s.canBeRegistered
}

// SetCanBeRegistered toggles registration. Enabling it without a
// registration type fails with ErrInvalidState.
func (s *Setting) SetCanBeRegistered(can bool) error {
	if can && s.registrationType == NoRegistration {
		return fmt.Errorf("%w: %s has no registration type", ErrInvalidState, s.name)
	}
	s.canBeRegistered = can
	return nil
}

// DisplayName returns the human-readable name.
func (s *Setting) DisplayName() string {
	return s.displayName
}

// SetDisplayName sets the human-readable name.
func (s *Setting) SetDisplayName(name string) {
	s.displayName = name
}

// Description returns the description.
func (s *Setting) Description() string {
	return s.description
}

// SetDescription sets the description.
func (s *Setting) SetDescription(desc string) {
	s.description = desc
}

// ShortDescription returns the display name, extended by kinds that have
// more to say (enums list their options).
func (s *Setting) ShortDescription() string {
	if d, ok := s.kind.(interface{ shortDescription(*Setting) string }); ok {
		return d.shortDescription(s)
	}
	return s.displayName
}

// ErrorMessages returns the live error message map keyed by Msg* constants.
// Writing to it customizes the text of future errors.
func (s *Setting) ErrorMessages() map[string]string {
	return s.errorMessages
}

// UIEnabled reports whether the setting should accept user input.
func (s *Setting) UIEnabled() bool {
	return s.uiEnabled
}

// SetUIEnabled sets the advisory enabled flag and marks it changed.
func (s *Setting) SetUIEnabled(enabled bool) {
	s.uiEnabled = enabled
	s.changed = s.changed.With(AttrUIEnabled)
}

// UIVisible reports whether the setting should be shown.
func (s *Setting) UIVisible() bool {
	return s.uiVisible
}

// SetUIVisible sets the advisory visible flag and marks it changed.
func (s *Setting) SetUIVisible(visible bool) {
	s.uiVisible = visible
	s.changed = s.changed.With(AttrUIVisible)
}

// CanBeResetByContainer reports whether container resets apply.
func (s *Setting) CanBeResetByContainer() bool {
	return s.canBeResetByContainer
}

// SetCanBeResetByContainer controls whether container resets apply.
func (s *Setting) SetCanBeResetByContainer(can bool) {
	s.canBeResetByContainer = can
}

// ChangedAttributes returns attributes written since the last streamline.
func (s *Setting) ChangedAttributes() AttrSet {
	return s.changed
}

// ClearChangedAttributes forgets pending changes.
func (s *Setting) ClearChangedAttributes() {
	s.changed = 0
}

// CanStreamline reports whether a streamline function is set.
func (s *Setting) CanStreamline() bool {
	return s.streamlineFn != nil
}

// SetStreamlineFunc sets the function run by Streamline. deps are the
// settings the function may modify; they are reported in Streamline results.
func (s *Setting) SetStreamlineFunc(fn StreamlineFunc, deps ...*Setting) error {
	if fn == nil {
		return fmt.Errorf("%w: streamline function for %s is nil", ErrInvalidArgument, s.name)
	}
	s.streamlineFn = fn
	s.streamlineDeps = slices.Clone(deps)
	return nil
}

// RemoveStreamlineFunc removes the streamline function.
func (s *Setting) RemoveStreamlineFunc() error {
	if s.streamlineFn == nil {
		return fmt.Errorf("%w: %s has no streamline function", ErrInvalidState, s.name)
	}
	s.streamlineFn = nil
	s.streamlineDeps = nil
	return nil
}

// StreamlineDeps returns the dependencies bound to the streamline function.
func (s *Setting) StreamlineDeps() []*Setting {
	return slices.Clone(s.streamlineDeps)
}

// Streamline runs the streamline function if any tracked attribute changed
// or force is set. It returns the settings (this one and its dependencies)
// whose attributes were written, and clears their change tracking.
// With nothing to do it returns empty Changes and touches nothing.
//
// If the function fails, change tracking is left as is.
func (s *Setting) Streamline(force bool) (Changes, error) {
	var changes Changes

	if s.streamlineFn == nil {
		return changes, fmt.Errorf("%w: %s has no streamline function", ErrInvalidState, s.name)
	}
	if s.changed.IsEmpty() && !force {
		return changes, nil
	}

	if err := s.streamlineFn(s, s.streamlineDeps); err != nil {
		return changes, &StreamlineError{Name: s.name, Err: err}
	}

	changes.Add(s, s.changed)
	s.changed = 0

	for _, dep := range s.streamlineDeps {
		if dep == nil || dep.changed.IsEmpty() {
			continue
		}
		changes.Add(dep, dep.changed)
		dep.changed = 0
	}

	return changes, nil
}

// message returns the configured text for key.
func (s *Setting) message(key string) string {
	if msg, ok := s.errorMessages[key]; ok {
		return msg
	}
	return key
}

// valueError builds a *ValueError from the message stored under key.
func (s *Setting) valueError(key string, v any) error {
	return &ValueError{
		Name:    s.name,
		Key:     key,
		Message: s.message(key),
		Value:   v,
	}
}

// String implements fmt.Stringer.
func (s *Setting) String() string {
	return fmt.Sprintf("%s=%v", s.name, s.value)
}
