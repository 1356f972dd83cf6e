package presenter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/settingkit/internal/setting"
)

// fakeElement is an in-memory Element that records connections.
type fakeElement struct {
	value    any
	enabled  bool
	visible  bool
	tooltip  string
	handlers map[string][]func()
}

func newFakeElement() *fakeElement {
	return &fakeElement{enabled: true, visible: true, handlers: make(map[string][]func())}
}

func (e *fakeElement) Value() any              { return e.value }
func (e *fakeElement) SetValue(v any)          { e.value = v }
func (e *fakeElement) Enabled() bool           { return e.enabled }
func (e *fakeElement) SetEnabled(enabled bool) { e.enabled = enabled }
func (e *fakeElement) Visible() bool           { return e.visible }
func (e *fakeElement) SetVisible(visible bool) { e.visible = visible }
func (e *fakeElement) SetTooltip(text string)  { e.tooltip = text }

func (e *fakeElement) Connect(signal string, handler func()) {
	e.handlers[signal] = append(e.handlers[signal], handler)
}

// edit simulates a user edit.
func (e *fakeElement) edit(v any) {
	e.value = v
	for _, h := range e.handlers["changed"] {
		h()
	}
}

func TestElementPresenter_Proxies(t *testing.T) {
	s := setting.NewInt("n", 1, setting.WithDescription("How many"))
	e := newFakeElement()
	p := New(s, e, "changed")

	p.SetValue(5)
	p.SetEnabled(false)
	p.SetVisible(false)
	p.SetTooltip()

	assert.Equal(t, 5, p.Value())
	assert.False(t, p.Enabled())
	assert.False(t, p.Visible())
	assert.Equal(t, "How many", e.tooltip)
	assert.Equal(t, 1, s.Value(), "presenter writes never touch the setting")
	assert.Same(t, s, p.Setting())
	assert.Equal(t, "changed", p.ValueChangedSignal())
}

func TestElementPresenter_ConnectEventWithoutSignal(t *testing.T) {
	p := New(setting.NewInt("n", 1), newFakeElement(), "")
	assert.ErrorIs(t, p.ConnectEvent(func() {}), ErrNoSignal)
}

func TestElementPresenter_ConnectEvent(t *testing.T) {
	e := newFakeElement()
	p := New(setting.NewInt("n", 1), e, "changed")

	called := 0
	require.NoError(t, p.ConnectEvent(func() { called++ }))
	e.edit(3)
	assert.Equal(t, 1, called)
}

func TestContainer_AddGet(t *testing.T) {
	c := NewContainer()
	a1 := setting.NewInt("a", 0)
	a2 := setting.NewInt("a", 0)

	require.NoError(t, c.Add(New(a1, newFakeElement(), "")))
	require.NoError(t, c.Add(New(a2, newFakeElement(), "")), "same name, different identity")
	assert.ErrorIs(t, c.Add(New(a1, newFakeElement(), "")), ErrDuplicatePresenter)
	assert.Equal(t, 2, c.Len())

	p, err := c.Get(a2)
	require.NoError(t, err)
	assert.Same(t, a2, p.Setting())

	_, err = c.Get(setting.NewInt("other", 0))
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, c.Set(a1, New(a1, newFakeElement(), "")), ErrImmutableContainer)
	assert.ErrorIs(t, c.Delete(a1), ErrImmutableContainer)
	assert.Equal(t, []*setting.Setting{a1, a2}, c.Settings())
}

func TestContainer_AddNil(t *testing.T) {
	assert.ErrorIs(t, NewContainer().Add(nil), setting.ErrInvalidArgument)
}

// exportFixture wires "merge" so that enabling it disables and clears
// "folders", and hides "suffix".
type exportFixture struct {
	merge, folders, suffix, count *setting.Setting
	eMerge, eFolders, eSuffix     *fakeElement
	eCount                        *fakeElement
	c                             *Container
}

func newExportFixture(t *testing.T, opts ...Option) *exportFixture {
	t.Helper()

	f := &exportFixture{
		merge:    setting.NewBool("merge", false),
		folders:  setting.NewBool("folders", true),
		suffix:   setting.NewString("suffix", "_m"),
		count:    setting.NewInt("count", 1, setting.WithMin(0), setting.WithMax(9)),
		eMerge:   newFakeElement(),
		eFolders: newFakeElement(),
		eSuffix:  newFakeElement(),
		eCount:   newFakeElement(),
	}
	require.NoError(t, f.merge.SetStreamlineFunc(func(s *setting.Setting, deps []*setting.Setting) error {
		on := s.BoolValue()
		deps[0].SetUIEnabled(!on)
		deps[1].SetUIVisible(on)
		if on {
			return deps[0].SetValue(false)
		}
		return nil
	}, f.folders, f.suffix))

	f.c = NewContainer(opts...)
	require.NoError(t, f.c.Add(New(f.merge, f.eMerge, "changed")))
	require.NoError(t, f.c.Add(New(f.folders, f.eFolders, "changed")))
	require.NoError(t, f.c.Add(New(f.suffix, f.eSuffix, "")))
	require.NoError(t, f.c.Add(New(f.count, f.eCount, "changed")))
	return f
}

func TestContainer_AssignSettingValuesToElements(t *testing.T) {
	f := newExportFixture(t)
	require.NoError(t, f.merge.SetValue(true))

	require.NoError(t, f.c.AssignSettingValuesToElements())

	assert.Equal(t, true, f.eMerge.value)
	assert.Equal(t, false, f.eFolders.value, "post-streamline value is pushed")
	assert.Equal(t, false, f.folders.Value())
	assert.False(t, f.eFolders.enabled)
	assert.True(t, f.eSuffix.visible)
	assert.Equal(t, "_m", f.eSuffix.value)
	assert.Equal(t, 1, f.eCount.value)
}

func TestContainer_AssignSettingValuesForcesStreamline(t *testing.T) {
	f := newExportFixture(t)
	f.eSuffix.visible = true

	require.NoError(t, f.c.AssignSettingValuesToElements())

	assert.False(t, f.eSuffix.visible, "initial state is derived even without edits")
	assert.True(t, f.eFolders.enabled)
}

func TestContainer_AssignElementValuesToSettings(t *testing.T) {
	f := newExportFixture(t)
	require.NoError(t, f.c.AssignSettingValuesToElements())

	f.eMerge.value = true
	f.eCount.value = 4

	require.NoError(t, f.c.AssignElementValuesToSettings())
	assert.Equal(t, true, f.merge.Value())
	assert.Equal(t, 4, f.count.Value())
	assert.False(t, f.folders.UIEnabled(), "streamlined when events are not connected")
	assert.True(t, f.merge.ChangedAttributes().IsEmpty())
}

func TestContainer_AssignElementValuesCollectsErrors(t *testing.T) {
	f := newExportFixture(t)
	require.NoError(t, f.c.AssignSettingValuesToElements())

	f.eMerge.value = true
	f.eCount.value = 99
	f.eSuffix.value = 7

	err := f.c.AssignElementValuesToSettings()
	require.Error(t, err)

	var verrs *ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs.Errors, 2)
	assert.ErrorIs(t, err, setting.ErrInvalidValue)
	assert.Contains(t, err.Error(), "suffix")
	assert.Contains(t, err.Error(), "count")
	assert.Contains(t, err.Error(), "\n")

	assert.Equal(t, true, f.merge.Value(), "valid values are still applied")
	assert.True(t, f.folders.UIEnabled(), "no streamlining after a rejected value")
	assert.False(t, f.merge.ChangedAttributes().IsEmpty())
}

func TestContainer_ConnectValueChangedEvents(t *testing.T) {
	f := newExportFixture(t)
	require.NoError(t, f.c.AssignSettingValuesToElements())
	require.NoError(t, f.c.ConnectValueChangedEvents())
	assert.True(t, f.c.EventsConnected())

	f.eMerge.edit(true)
	assert.Equal(t, true, f.merge.Value())
	assert.False(t, f.eFolders.enabled, "dependent element updated by streamlining handler")
	assert.Equal(t, false, f.eFolders.value)
	assert.True(t, f.eSuffix.visible)

	f.eCount.edit(3)
	assert.Equal(t, 3, f.count.Value(), "plain handler copies the value")

	assert.Empty(t, f.eSuffix.handlers, "elements without a signal are not connected")
}

func TestContainer_ConnectValueChangedEventsIdempotent(t *testing.T) {
	f := newExportFixture(t)
	require.NoError(t, f.c.ConnectValueChangedEvents())
	require.NoError(t, f.c.ConnectValueChangedEvents())

	assert.Len(t, f.eMerge.handlers["changed"], 1)
	assert.Len(t, f.eCount.handlers["changed"], 1)
}

func TestContainer_EventErrorsGoToHandler(t *testing.T) {
	var got []error
	f := newExportFixture(t, WithErrorHandler(func(p Presenter, err error) {
		got = append(got, err)
	}))
	require.NoError(t, f.c.ConnectValueChangedEvents())

	f.eCount.edit(42)
	f.eMerge.edit("yes")

	require.Len(t, got, 2)
	assert.ErrorIs(t, got[0], setting.ErrInvalidValue)
	assert.Equal(t, 1, f.count.Value())
	assert.Equal(t, false, f.merge.Value())
}

func TestContainer_AssignElementValuesWithEventsClearsFlags(t *testing.T) {
	f := newExportFixture(t)
	require.NoError(t, f.c.ConnectValueChangedEvents())

	f.eMerge.value = true
	f.eFolders.value = true
	f.eSuffix.value = "_x"
	f.eCount.value = 2

	require.NoError(t, f.c.AssignElementValuesToSettings())
	for _, s := range f.c.Settings() {
		assert.True(t, s.ChangedAttributes().IsEmpty(), s.Name())
	}
	assert.True(t, f.folders.UIEnabled(), "no streamlining when events are connected")
	assert.Equal(t, true, f.folders.Value())
}

func TestContainer_SetTooltips(t *testing.T) {
	f := newExportFixture(t)
	f.count.SetDescription("Number of copies")

	f.c.SetTooltips()
	assert.Equal(t, "Number of copies", f.eCount.tooltip)
}
