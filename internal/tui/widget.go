// Package tui renders settings as an interactive terminal form.
//
// Widgets implement presenter.Element, so a presenter.Container can drive
// them exactly like any other toolkit. User edits fire SignalChanged.
package tui

import (
	"strconv"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/settingkit/internal/setting"
)

// SignalChanged is fired by every widget after a user edit.
const SignalChanged = "changed"

// Widget is a focusable form control.
type Widget interface {
	Value() any
	SetValue(v any)
	Enabled() bool
	SetEnabled(enabled bool)
	Visible() bool
	SetVisible(visible bool)
	SetTooltip(text string)
	Connect(signal string, handler func())

	// Tooltip returns the text set by SetTooltip.
	Tooltip() string

	// Text renders the current value.
	Text(focused bool) string

	// HandleKey applies a key press. It reports whether the key was
	// consumed.
	HandleKey(ev *tcell.EventKey) bool
}

// base holds the state shared by all widgets.
type base struct {
	enabled  bool
	visible  bool
	tooltip  string
	handlers map[string][]func()
}

func newBase() base {
	return base{enabled: true, visible: true, handlers: make(map[string][]func())}
}

func (b *base) Enabled() bool { return b.enabled }
func (b *base) SetEnabled(enabled bool) { b.enabled = enabled }
func (b *base) Visible() bool { return b.visible }
func (b *base) SetVisible(visible bool) { b.visible = visible }
func (b *base) Tooltip() string { return b.tooltip }
func (b *base) SetTooltip(text string) { b.tooltip = text }

func (b *base) Connect(signal string, handler func()) {
	b.handlers[signal] = append(b.handlers[signal], handler)
}

func (b *base) emit(signal string) {
	for _, h := range b.handlers[signal] {
		h()
	}
}

// CheckBox edits a bool. Space or Enter toggles it.
type CheckBox struct {
	base
	checked bool
}

// NewCheckBox creates a check box.
func NewCheckBox(checked bool) *CheckBox {
	return &CheckBox{base: newBase(), checked: checked}
}

// Value returns the checked state.
func (c *CheckBox) Value() any { return c.checked }

// SetValue sets the checked state. Non-bool values are ignored.
func (c *CheckBox) SetValue(v any) {
	if b, ok := v.(bool); ok {
		c.checked = b
	}
}

// Text implements Widget.
func (c *CheckBox) Text(bool) string {
	if c.checked {
		return "[x]"
	}
	return "[ ]"
}

// HandleKey implements Widget.
func (c *CheckBox) HandleKey(ev *tcell.EventKey) bool {
	if !c.enabled {
		return false
	}
	if ev.Key() == tcell.KeyEnter || (ev.Key() == tcell.KeyRune && ev.Rune() == ' ') {
		c.checked = !c.checked
		c.emit(SignalChanged)
		return true
	}
	return false
}

// Spinner edits an integer. Left/Right or -/+ step it; values are not
// clamped here so that the setting's bounds report violations.
type Spinner struct {
	base
	value int
	step  int
}

// NewSpinner creates a spinner stepping by step.
func NewSpinner(value, step int) *Spinner {
	if step <= 0 {
		step = 1
	}
	return &Spinner{base: newBase(), value: value, step: step}
}

// Value returns the integer value.
func (s *Spinner) Value() any { return s.value }

// SetValue sets the value. Non-integer values are ignored.
func (s *Spinner) SetValue(v any) {
	switch n := v.(type) {
	case int:
		s.value = n
	case int64:
		s.value = int(n)
	case float64:
		s.value = int(n)
	}
}

// Text implements Widget.
func (s *Spinner) Text(bool) string {
	return "< " + strconv.Itoa(s.value) + " >"
}

// HandleKey implements Widget.
func (s *Spinner) HandleKey(ev *tcell.EventKey) bool {
	if !s.enabled {
		return false
	}
	switch {
	case ev.Key() == tcell.KeyLeft || (ev.Key() == tcell.KeyRune && ev.Rune() == '-'):
		s.value -= s.step
	case ev.Key() == tcell.KeyRight || (ev.Key() == tcell.KeyRune && ev.Rune() == '+'):
		s.value += s.step
	default:
		return false
	}
	s.emit(SignalChanged)
	return true
}

// TextInput edits a string. Typed runes append; Backspace deletes.
type TextInput struct {
	base
	text []rune
}

// NewTextInput creates a text input.
func NewTextInput(text string) *TextInput {
	return &TextInput{base: newBase(), text: []rune(text)}
}

// Value returns the text.
func (t *TextInput) Value() any { return string(t.text) }

// SetValue sets the text. Non-string values are ignored.
func (t *TextInput) SetValue(v any) {
	if s, ok := v.(string); ok {
		t.text = []rune(s)
	}
}

// Text implements Widget.
func (t *TextInput) Text(focused bool) string {
	if focused && t.enabled {
		return string(t.text) + "_"
	}
	return string(t.text)
}

// HandleKey implements Widget.
func (t *TextInput) HandleKey(ev *tcell.EventKey) bool {
	if !t.enabled {
		return false
	}
	switch ev.Key() {
	case tcell.KeyRune:
		t.text = append(t.text, ev.Rune())
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(t.text) == 0 {
			return true
		}
		t.text = t.text[:len(t.text)-1]
	default:
		return false
	}
	t.emit(SignalChanged)
	return true
}

// Choice selects one option of an enum. Its value is the option value;
// Left/Right or Space cycle through the options.
type Choice struct {
	base
	choices []setting.Choice
	index   int
}

// NewChoice creates a choice over choices with value selected.
func NewChoice(choices []setting.Choice, value int) *Choice {
	c := &Choice{base: newBase(), choices: choices}
	c.SetValue(value)
	return c
}

// Value returns the value of the selected option, or nil without options.
func (c *Choice) Value() any {
	if len(c.choices) == 0 {
		return nil
	}
	return choiceValue(c.choices[c.index], c.index)
}

// SetValue selects the option with value v. Unknown values are ignored.
func (c *Choice) SetValue(v any) {
	n, ok := v.(int)
	if !ok {
		return
	}
	for i, ch := range c.choices {
		if choiceValue(ch, i) == n {
			c.index = i
			return
		}
	}
}

// Selected returns the selected option.
func (c *Choice) Selected() (setting.Choice, bool) {
	if len(c.choices) == 0 {
		return setting.Choice{}, false
	}
	return c.choices[c.index], true
}

// Text implements Widget.
func (c *Choice) Text(bool) string {
	ch, ok := c.Selected()
	if !ok {
		return "< >"
	}
	return "< " + ch.DisplayName + " >"
}

// HandleKey implements Widget.
func (c *Choice) HandleKey(ev *tcell.EventKey) bool {
	if !c.enabled || len(c.choices) == 0 {
		return false
	}
	switch {
	case ev.Key() == tcell.KeyLeft:
		c.index = (c.index + len(c.choices) - 1) % len(c.choices)
	case ev.Key() == tcell.KeyRight || (ev.Key() == tcell.KeyRune && ev.Rune() == ' '):
		c.index = (c.index + 1) % len(c.choices)
	default:
		return false
	}
	c.emit(SignalChanged)
	return true
}

func choiceValue(ch setting.Choice, index int) int {
	if ch.Value != nil {
		return *ch.Value
	}
	return index
}
