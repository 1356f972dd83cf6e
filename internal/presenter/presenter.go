// Package presenter binds settings to UI elements.
//
// A Presenter pairs one setting with one element. A Container holds
// presenters keyed by setting identity, copies values between settings and
// elements in bulk, and wires element change events so that user edits are
// validated, streamlined and reflected on dependent elements.
package presenter

import (
	"errors"
	"fmt"

	"github.com/dshills/settingkit/internal/setting"
)

// Errors returned by presenter operations.
var (
	// ErrNoSignal is returned by ConnectEvent when the element has no
	// value-changed signal.
	ErrNoSignal = errors.New("element has no value-changed signal")

	// ErrDuplicatePresenter is returned when a setting already has a
	// presenter in the container.
	ErrDuplicatePresenter = errors.New("setting already has a presenter")

	// ErrNotFound is returned when a setting has no presenter.
	ErrNotFound = errors.New("presenter not found")

	// ErrImmutableContainer is returned by Set and Delete.
	ErrImmutableContainer = errors.New("presenter container is immutable")
)

// Element is the widget capability a presenter drives. Value need not be
// a widget's literal content; it is whatever the widget represents for the
// setting (checked state, selected index, text).
type Element interface {
	Value() any
	SetValue(v any)
	Enabled() bool
	SetEnabled(enabled bool)
	Visible() bool
	SetVisible(visible bool)
	SetTooltip(text string)

	// Connect registers handler for the named signal.
	Connect(signal string, handler func())
}

// Presenter pairs a setting with an element. Value, Enabled and Visible
// proxy to the element without validation.
type Presenter interface {
	Setting() *setting.Setting
	Element() Element

	Value() any
	SetValue(v any)
	Enabled() bool
	SetEnabled(enabled bool)
	Visible() bool
	SetVisible(visible bool)

	// ValueChangedSignal names the element event fired on user edits,
	// or "" if the element has none.
	ValueChangedSignal() string

	// ConnectEvent registers handler for the value-changed signal.
	// It fails with ErrNoSignal when there is no signal.
	ConnectEvent(handler func()) error

	// SetTooltip shows the setting description on the element.
	SetTooltip()
}

// ElementPresenter is the Presenter for any Element.
type ElementPresenter struct {
	setting *setting.Setting
	element Element
	signal  string
}

// New creates a presenter. signal is the element's value-changed signal,
// or "" if edits should not be tracked.
func New(s *setting.Setting, e Element, signal string) *ElementPresenter {
	return &ElementPresenter{setting: s, element: e, signal: signal}
}

// Setting implements Presenter.
func (p *ElementPresenter) Setting() *setting.Setting { return p.setting }

// Element implements Presenter.
func (p *ElementPresenter) Element() Element { return p.element }

// Value implements Presenter.
func (p *ElementPresenter) Value() any { return p.element.Value() }

// SetValue implements Presenter.
func (p *ElementPresenter) SetValue(v any) { p.element.SetValue(v) }

// Enabled implements Presenter.
func (p *ElementPresenter) Enabled() bool { return p.element.Enabled() }

// SetEnabled implements Presenter.
func (p *ElementPresenter) SetEnabled(enabled bool) { p.element.SetEnabled(enabled) }

// Visible implements Presenter.
func (p *ElementPresenter) Visible() bool { return p.element.Visible() }

// SetVisible implements Presenter.
func (p *ElementPresenter) SetVisible(visible bool) { p.element.SetVisible(visible) }

// ValueChangedSignal implements Presenter.
func (p *ElementPresenter) ValueChangedSignal() string { return p.signal }

// ConnectEvent implements Presenter.
func (p *ElementPresenter) ConnectEvent(handler func()) error {
	if p.signal == "" {
		return fmt.Errorf("%w: %s", ErrNoSignal, p.setting.Name())
	}
	p.element.Connect(p.signal, handler)
	return nil
}

// SetTooltip implements Presenter.
func (p *ElementPresenter) SetTooltip() {
	p.element.SetTooltip(p.setting.Description())
}
