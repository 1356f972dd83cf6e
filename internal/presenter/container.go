package presenter

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dshills/settingkit/internal/setting"
)

// ValidationErrors collects every rejected element value of one bulk
// assignment.
type ValidationErrors struct {
	Errors []error
}

// Error joins all messages with newlines.
func (e *ValidationErrors) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// Unwrap returns the individual errors.
func (e *ValidationErrors) Unwrap() []error {
	return e.Errors
}

// ErrorHandler receives errors raised inside element event handlers, where
// there is no caller to return them to.
type ErrorHandler func(p Presenter, err error)

// Container holds presenters keyed by setting identity, in insertion order.
// Settings with equal names from different setting containers may coexist.
//
// A Container is not safe for concurrent use; call it from the UI thread.
type Container struct {
	order     []Presenter
	bySetting map[*setting.Setting]Presenter

	eventsConnected bool

	logger  zerolog.Logger
	onError ErrorHandler
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used by the default error handler.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Container) {
		c.logger = logger
	}
}

// WithErrorHandler replaces the default handler, which logs a warning.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *Container) {
		c.onError = h
	}
}

// NewContainer creates an empty presenter container.
func NewContainer(opts ...Option) *Container {
	c := &Container{
		bySetting: make(map[*setting.Setting]Presenter),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.onError == nil {
		c.onError = func(p Presenter, err error) {
			c.logger.Warn().Err(err).Str("setting", p.Setting().Name()).Msg("element value rejected")
		}
	}
	return c
}

// Add registers p under its setting.
func (c *Container) Add(p Presenter) error {
	if p == nil || p.Setting() == nil {
		return fmt.Errorf("%w: presenter without setting", setting.ErrInvalidArgument)
	}
	if _, ok := c.bySetting[p.Setting()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePresenter, p.Setting().Name())
	}
	c.bySetting[p.Setting()] = p
	c.order = append(c.order, p)
	return nil
}

// Get returns the presenter of s.
func (c *Container) Get(s *setting.Setting) (Presenter, error) {
	p, ok := c.bySetting[s]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Name())
	}
	return p, nil
}

// Set always fails; use Add.
func (c *Container) Set(s *setting.Setting, _ Presenter) error {
	return fmt.Errorf("%w: cannot replace presenter of %s; use Add", ErrImmutableContainer, s.Name())
}

// Delete always fails.
func (c *Container) Delete(s *setting.Setting) error {
	return fmt.Errorf("%w: cannot delete presenter of %s", ErrImmutableContainer, s.Name())
}

// Len returns the number of presenters.
func (c *Container) Len() int {
	return len(c.order)
}

// Presenters returns the presenters in insertion order.
func (c *Container) Presenters() []Presenter {
	return append([]Presenter(nil), c.order...)
}

// Settings returns the presented settings in insertion order.
// It implements setting.Group.
func (c *Container) Settings() []*setting.Setting {
	out := make([]*setting.Setting, len(c.order))
	for i, p := range c.order {
		out[i] = p.Setting()
	}
	return out
}

// EventsConnected reports whether ConnectValueChangedEvents has run.
func (c *Container) EventsConnected() bool {
	return c.eventsConnected
}

// AssignSettingValuesToElements pushes every setting value to its element,
// then force-streamlines all settings and applies the resulting changes to
// the elements. Use it to initialize or reset the UI.
func (c *Container) AssignSettingValuesToElements() error {
	for _, p := range c.order {
		p.SetValue(p.Setting().Value())
	}

	changes, err := c.streamline(true)
	c.apply(changes)
	return err
}

// AssignElementValuesToSettings pulls every element value into its setting.
// Rejected values are collected and returned together as *ValidationErrors.
//
// With events connected, settings were streamlined as they were edited, so
// change tracking is cleared instead of streamlining again. Otherwise all
// settings are streamlined once, unless a value was rejected.
func (c *Container) AssignElementValuesToSettings() error {
	var verrs []error
	for _, p := range c.order {
		if err := p.Setting().SetValue(p.Value()); err != nil {
			verrs = append(verrs, err)
		}
	}

	if c.eventsConnected {
		for _, p := range c.order {
			p.Setting().ClearChangedAttributes()
		}
	} else if len(verrs) == 0 {
		if _, err := c.streamline(false); err != nil {
			return err
		}
	}

	if len(verrs) > 0 {
		return &ValidationErrors{Errors: verrs}
	}
	return nil
}

// ConnectValueChangedEvents connects a handler to every element that has a
// value-changed signal. The handler copies the element value to the
// setting; for settings with a streamline function it also streamlines and
// updates the affected elements. Calling it again does nothing.
func (c *Container) ConnectValueChangedEvents() error {
	if c.eventsConnected {
		return nil
	}

	for _, p := range c.order {
		if p.ValueChangedSignal() == "" {
			continue
		}

		var handler func()
		if p.Setting().CanStreamline() {
			handler = c.onValueChangedStreamline(p)
		} else {
			handler = c.onValueChanged(p)
		}
		if err := p.ConnectEvent(handler); err != nil {
			return err
		}
	}

	c.eventsConnected = true
	return nil
}

// SetTooltips sets the tooltip of every element.
func (c *Container) SetTooltips() {
	for _, p := range c.order {
		p.SetTooltip()
	}
}

func (c *Container) onValueChanged(p Presenter) func() {
	return func() {
		if err := p.Setting().SetValue(p.Value()); err != nil {
			c.onError(p, err)
		}
	}
}

func (c *Container) onValueChangedStreamline(p Presenter) func() {
	return func() {
		s := p.Setting()
		if err := s.SetValue(p.Value()); err != nil {
			c.onError(p, err)
			return
		}
		changes, err := s.Streamline(false)
		if err != nil {
			c.onError(p, err)
			return
		}
		c.apply(changes)
	}
}

// streamline streamlines every presented setting that can be and unions the
// results.
func (c *Container) streamline(force bool) (setting.Changes, error) {
	var changes setting.Changes
	for _, p := range c.order {
		s := p.Setting()
		if !s.CanStreamline() {
			continue
		}
		changed, err := s.Streamline(force)
		if err != nil {
			return changes, err
		}
		changes.Merge(changed)
	}
	return changes, nil
}

// apply copies changed attributes onto elements: value to value,
// ui_enabled to enabled, ui_visible to visible. Settings without a
// presenter are skipped.
func (c *Container) apply(changes setting.Changes) {
	changes.Each(func(s *setting.Setting, attrs setting.AttrSet) {
		p, ok := c.bySetting[s]
		if !ok {
			return
		}
		if attrs.Has(setting.AttrValue) {
			p.SetValue(s.Value())
		}
		if attrs.Has(setting.AttrUIEnabled) {
			p.SetEnabled(s.UIEnabled())
		}
		if attrs.Has(setting.AttrUIVisible) {
			p.SetVisible(s.UIVisible())
		}
	})
}
