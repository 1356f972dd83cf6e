package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/settingkit/internal/container"
	"github.com/dshills/settingkit/internal/exportopts"
	"github.com/dshills/settingkit/internal/presenter"
	"github.com/dshills/settingkit/internal/setting"
)

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func char(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 20)
	t.Cleanup(screen.Fini)
	return screen
}

func screenLine(screen tcell.Screen, y int) string {
	width, _ := screen.Size()
	var b strings.Builder
	for x := 0; x < width; x++ {
		r, _, _, _ := screen.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

func screenText(screen tcell.Screen) string {
	_, height := screen.Size()
	lines := make([]string, height)
	for y := range lines {
		lines[y] = screenLine(screen, y)
	}
	return strings.Join(lines, "\n")
}

func TestCheckBox(t *testing.T) {
	cb := NewCheckBox(false)
	fired := 0
	cb.Connect(SignalChanged, func() { fired++ })

	assert.True(t, cb.HandleKey(char(' ')))
	assert.Equal(t, true, cb.Value())
	assert.Equal(t, "[x]", cb.Text(false))
	assert.True(t, cb.HandleKey(key(tcell.KeyEnter)))
	assert.Equal(t, false, cb.Value())
	assert.Equal(t, 2, fired)

	assert.False(t, cb.HandleKey(char('a')))

	cb.SetEnabled(false)
	assert.False(t, cb.HandleKey(char(' ')))
	assert.Equal(t, 2, fired)

	cb.SetValue("not a bool")
	assert.Equal(t, false, cb.Value())
}

func TestSpinner(t *testing.T) {
	sp := NewSpinner(5, 0)
	fired := 0
	sp.Connect(SignalChanged, func() { fired++ })

	sp.HandleKey(key(tcell.KeyRight))
	sp.HandleKey(char('+'))
	sp.HandleKey(key(tcell.KeyLeft))
	assert.Equal(t, 6, sp.Value())
	assert.Equal(t, "< 6 >", sp.Text(true))
	assert.Equal(t, 3, fired)

	sp.SetValue(float64(9))
	assert.Equal(t, 9, sp.Value())
}

func TestTextInput(t *testing.T) {
	ti := NewTextInput("pn")
	var values []any
	ti.Connect(SignalChanged, func() { values = append(values, ti.Value()) })

	ti.HandleKey(char('g'))
	ti.HandleKey(key(tcell.KeyBackspace2))
	ti.HandleKey(key(tcell.KeyBackspace2))
	ti.HandleKey(key(tcell.KeyBackspace2))
	ti.HandleKey(key(tcell.KeyBackspace2))

	assert.Equal(t, []any{"png", "pn", "p", ""}, values)
	assert.Equal(t, "_", ti.Text(true))
	assert.False(t, ti.HandleKey(key(tcell.KeyF1)))
}

func TestChoice(t *testing.T) {
	choices := []setting.Choice{
		setting.NewValueChoice("low", "Low", 10),
		setting.NewValueChoice("mid", "Mid", 20),
		setting.NewValueChoice("high", "High", 30),
	}
	ch := NewChoice(choices, 20)
	assert.Equal(t, 20, ch.Value())
	assert.Equal(t, "< Mid >", ch.Text(false))

	ch.HandleKey(key(tcell.KeyRight))
	assert.Equal(t, 30, ch.Value())
	ch.HandleKey(char(' '))
	assert.Equal(t, 10, ch.Value())
	ch.HandleKey(key(tcell.KeyLeft))
	assert.Equal(t, 30, ch.Value())

	ch.SetValue(99)
	assert.Equal(t, 30, ch.Value())

	empty := NewChoice(nil, 0)
	assert.Nil(t, empty.Value())
	assert.False(t, empty.HandleKey(char(' ')))
}

func TestWidgetFor(t *testing.T) {
	c, err := exportopts.New()
	require.NoError(t, err)

	assert.IsType(t, &TextInput{}, WidgetFor(c.MustGet(exportopts.FileExtension)))
	assert.IsType(t, &Choice{}, WidgetFor(c.MustGet(exportopts.OverwriteMode)))
	assert.IsType(t, &CheckBox{}, WidgetFor(c.MustGet(exportopts.Autocrop)))
	assert.IsType(t, &Spinner{}, WidgetFor(setting.NewInt("n", 1)))
	assert.Nil(t, WidgetFor(setting.NewFloat("f", 1)))
	assert.Nil(t, WidgetFor(setting.New("g", nil)))

	hidden := setting.NewBool("b", false, setting.WithUIHidden(), setting.WithUIDisabled())
	w := WidgetFor(hidden)
	assert.False(t, w.Visible())
	assert.False(t, w.Enabled())
}

type formFixture struct {
	screen tcell.SimulationScreen
	form   *Form
	pc     *presenter.Container
	saves  int
}

func newFormFixture(t *testing.T) (*formFixture, *container.Container) {
	t.Helper()

	c, err := exportopts.New()
	require.NoError(t, err)

	fx := &formFixture{screen: newScreen(t)}
	fx.form = NewForm(fx.screen, "Export Layers", WithSaveFunc(func() error {
		fx.saves++
		return fx.pc.AssignElementValuesToSettings()
	}))
	fx.pc, err = Bind(fx.form, c, presenter.WithErrorHandler(func(_ presenter.Presenter, err error) {
		fx.form.SetStatus(err.Error())
	}))
	require.NoError(t, err)
	return fx, c
}

func (fx *formFixture) press(evs ...*tcell.EventKey) {
	for _, ev := range evs {
		fx.form.HandleEvent(ev)
	}
	fx.form.Draw()
}

func TestBindBuildsRows(t *testing.T) {
	fx, _ := newFormFixture(t)

	assert.Len(t, fx.form.Rows(), 8)
	assert.Equal(t, 8, fx.pc.Len())
	assert.True(t, fx.pc.EventsConnected())

	fx.form.Draw()
	text := screenText(fx.screen)
	assert.Contains(t, text, "Export Layers")
	assert.Contains(t, text, "File extension")
	assert.Contains(t, text, "png_")
	assert.Contains(t, text, "< Rename new file >")
	assert.Contains(t, text, "Format of the exported images")
}

func TestEditStreamlinesDependents(t *testing.T) {
	fx, c := newFormFixture(t)

	folders := fx.form.Rows()[3].Widget
	fx.press(key(tcell.KeyDown), key(tcell.KeyDown), key(tcell.KeyDown), char(' '))
	assert.Equal(t, true, folders.Value())
	assert.True(t, c.MustGet(exportopts.LayerGroupsAsFolders).BoolValue())

	fx.press(key(tcell.KeyDown), char(' '))
	assert.True(t, c.MustGet(exportopts.MergeLayerGroups).BoolValue())
	assert.False(t, c.MustGet(exportopts.LayerGroupsAsFolders).BoolValue())
	assert.Equal(t, false, folders.Value())
	assert.False(t, folders.Enabled())

	fx.press(char(' '))
	assert.True(t, folders.Enabled())
}

func TestHiddenRowsAreSkipped(t *testing.T) {
	fx, c := newFormFixture(t)

	for range 7 {
		fx.press(key(tcell.KeyDown))
	}
	require.Same(t, fx.form.Rows()[7].Widget, fx.form.Focused())

	fx.press(char(' '))
	assert.True(t, c.MustGet(exportopts.UseImageSize).BoolValue())
	assert.False(t, fx.form.Rows()[6].Widget.Visible())
	assert.NotContains(t, screenText(fx.screen), "Autocrop")

	fx.press(key(tcell.KeyUp))
	assert.Same(t, fx.form.Rows()[5].Widget, fx.form.Focused())
}

func TestInvalidEditShowsStatus(t *testing.T) {
	fx, c := newFormFixture(t)

	fx.form.HandleEvent(key(tcell.KeyBackspace2))
	fx.form.HandleEvent(key(tcell.KeyBackspace2))
	fx.form.HandleEvent(key(tcell.KeyBackspace2))
	assert.Equal(t, "you need to specify a file extension", fx.form.Status())
	assert.Equal(t, "png", c.MustGet(exportopts.FileExtension).Value())

	fx.form.HandleEvent(key(tcell.KeyCtrlS))
	assert.Equal(t, 1, fx.saves)
	assert.Contains(t, fx.form.Status(), "you need to specify a file extension")

	fx.press(char('j'), char('p'), char('g'), key(tcell.KeyCtrlS))
	assert.Equal(t, "saved", fx.form.Status())
	assert.Equal(t, "jpg", c.MustGet(exportopts.FileExtension).Value())
}

func TestRunQuitsOnEscape(t *testing.T) {
	fx, _ := newFormFixture(t)

	fx.screen.InjectKey(tcell.KeyDown, 0, tcell.ModNone)
	fx.screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)

	require.NoError(t, fx.form.Run(context.Background()))
	assert.Same(t, fx.form.Rows()[1].Widget, fx.form.Focused())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	fx, _ := newFormFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fx.form.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestPostRunsOnLoop(t *testing.T) {
	fx, _ := newFormFixture(t)

	ran := false
	require.NoError(t, fx.form.Post(func() {
		ran = true
		fx.form.SetStatus("reloaded")
	}))
	fx.screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)

	require.NoError(t, fx.form.Run(context.Background()))
	assert.True(t, ran)
}

func TestEmptyFormIgnoresKeys(t *testing.T) {
	screen := newScreen(t)
	form := NewForm(screen, "Empty")

	assert.NotPanics(t, func() {
		for _, ev := range []*tcell.EventKey{key(tcell.KeyDown), key(tcell.KeyUp), key(tcell.KeyTab), char('x'), key(tcell.KeyCtrlS)} {
			assert.False(t, form.HandleEvent(ev))
		}
	})
	assert.Nil(t, form.Focused())
}
