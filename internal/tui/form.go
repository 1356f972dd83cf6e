package tui

import (
	"context"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// Row is one labeled widget of a form.
type Row struct {
	Label  string
	Widget Widget
}

// Form lays out rows on a screen and routes keys to the focused widget.
// All methods must be called from the goroutine running Run; other
// goroutines use Post.
type Form struct {
	screen tcell.Screen
	title  string
	rows   []Row
	focus  int
	status string

	onSave func() error
	styles Styles
}

// Styles controls form colors.
type Styles struct {
	Normal   tcell.Style
	Focused  tcell.Style
	Disabled tcell.Style
	Title    tcell.Style
	Status   tcell.Style
}

// DefaultStyles returns the default color scheme.
func DefaultStyles() Styles {
	return Styles{
		Normal:   tcell.StyleDefault,
		Focused:  tcell.StyleDefault.Reverse(true),
		Disabled: tcell.StyleDefault.Dim(true),
		Title:    tcell.StyleDefault.Bold(true),
		Status:   tcell.StyleDefault.Foreground(tcell.ColorYellow),
	}
}

// FormOption configures a Form.
type FormOption func(*Form)

// WithSaveFunc sets the handler for Ctrl-S. Its error, if any, is shown in
// the status line.
func WithSaveFunc(fn func() error) FormOption {
	return func(f *Form) {
		f.onSave = fn
	}
}

// WithStyles sets the color scheme.
func WithStyles(s Styles) FormOption {
	return func(f *Form) {
		f.styles = s
	}
}

// NewForm creates a form drawing on screen. The screen must already be
// initialized.
func NewForm(screen tcell.Screen, title string, opts ...FormOption) *Form {
	f := &Form{
		screen: screen,
		title:  title,
		styles: DefaultStyles(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// AddRow appends a labeled widget.
func (f *Form) AddRow(label string, w Widget) {
	f.rows = append(f.rows, Row{Label: label, Widget: w})
	if len(f.rows) == 1 || !f.rows[f.focus].Widget.Visible() {
		f.focus = len(f.rows) - 1
	}
}

// Rows returns the rows in insertion order.
func (f *Form) Rows() []Row {
	return f.rows
}

// Focused returns the focused widget, or nil if no row is visible.
func (f *Form) Focused() Widget {
	if len(f.rows) == 0 || !f.rows[f.focus].Widget.Visible() {
		return nil
	}
	return f.rows[f.focus].Widget
}

// SetStatus shows msg in the status line until the next key press.
func (f *Form) SetStatus(msg string) {
	f.status = msg
}

// Status returns the status line text.
func (f *Form) Status() string {
	return f.status
}

// Post runs fn on the goroutine running Run and redraws.
func (f *Form) Post(fn func()) error {
	return f.screen.PostEvent(tcell.NewEventInterrupt(fn))
}

type quitSignal struct{}

// Run draws the form and processes events until Esc, Ctrl-C or ctx is
// done.
func (f *Form) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = f.screen.PostEvent(tcell.NewEventInterrupt(quitSignal{}))
	})
	defer stop()

	f.Draw()
	for {
		ev := f.screen.PollEvent()
		if ev == nil {
			return ctx.Err()
		}
		if f.HandleEvent(ev) {
			return ctx.Err()
		}
		f.Draw()
	}
}

// HandleEvent processes one event and reports whether the form should
// quit.
func (f *Form) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return f.handleKey(ev)
	case *tcell.EventInterrupt:
		switch data := ev.Data().(type) {
		case quitSignal:
			return true
		case func():
			data()
		}
	case *tcell.EventResize:
		f.screen.Sync()
	}
	return false
}

func (f *Form) handleKey(ev *tcell.EventKey) bool {
	f.status = ""

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp, tcell.KeyBacktab:
		f.moveFocus(-1)
		return false
	case tcell.KeyDown, tcell.KeyTab:
		f.moveFocus(1)
		return false
	case tcell.KeyCtrlS:
		f.save()
		return false
	}

	if w := f.Focused(); w != nil {
		w.HandleKey(ev)
	}
	// A streamline may have hidden the focused row.
	if f.Focused() == nil {
		f.moveFocus(1)
	}
	return false
}

func (f *Form) save() {
	if f.onSave == nil {
		return
	}
	if err := f.onSave(); err != nil {
		f.status = err.Error()
		return
	}
	f.status = "saved"
}

// moveFocus moves to the next visible row in direction dir, wrapping.
func (f *Form) moveFocus(dir int) {
	n := len(f.rows)
	if n == 0 {
		return
	}
	for i := 1; i <= n; i++ {
		next := ((f.focus+dir*i)%n + n) % n
		if f.rows[next].Widget.Visible() {
			f.focus = next
			return
		}
	}
}

// Draw renders the form.
func (f *Form) Draw() {
	if len(f.rows) > 0 && f.Focused() == nil {
		f.moveFocus(1)
	}
	f.screen.Clear()

	drawText(f.screen, 0, 0, f.title, f.styles.Title)

	labelWidth := 0
	for _, r := range f.rows {
		labelWidth = max(labelWidth, uniseg.StringWidth(r.Label))
	}

	y := 2
	for i, r := range f.rows {
		if !r.Widget.Visible() {
			continue
		}
		focused := i == f.focus

		style := f.styles.Normal
		if !r.Widget.Enabled() {
			style = f.styles.Disabled
		}
		drawText(f.screen, 0, y, r.Label, style)

		if focused {
			style = f.styles.Focused
		}
		drawText(f.screen, labelWidth+2, y, r.Widget.Text(focused), style)
		y++
	}

	status := f.status
	if status == "" {
		if w := f.Focused(); w != nil {
			status = w.Tooltip()
		}
	}
	_, height := f.screen.Size()
	status = strings.ReplaceAll(status, "\n", "; ")
	drawText(f.screen, 0, max(y+1, height-1), status, f.styles.Status)

	f.screen.Show()
}

// drawText writes s at (x, y) and returns the column after it.
func drawText(screen tcell.Screen, x, y int, s string, style tcell.Style) int {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, style)
		x += max(uniseg.StringWidth(string(r)), 1)
	}
	return x
}
