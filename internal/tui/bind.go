package tui

import (
	"github.com/dshills/settingkit/internal/container"
	"github.com/dshills/settingkit/internal/presenter"
	"github.com/dshills/settingkit/internal/setting"
)

// WidgetFor returns a widget suited to the kind of s, or nil if the kind
// has no terminal representation.
func WidgetFor(s *setting.Setting) Widget {
	var w Widget
	switch k := s.Kind().(type) {
	case setting.Bool:
		w = NewCheckBox(s.BoolValue())
	case *setting.Enum:
		w = NewChoice(k.Choices(), s.IntValue())
	case *setting.Numeric:
		if k.Name() != "int" {
			return nil
		}
		w = NewSpinner(s.IntValue(), 1)
	case setting.String:
		w = NewTextInput(s.StringValue())
	default:
		return nil
	}
	w.SetEnabled(s.UIEnabled())
	w.SetVisible(s.UIVisible())
	return w
}

// Bind adds a row for every setting of c that has a widget and returns a
// presenter container driving them. Settings are synced to the widgets,
// tooltips set and value-changed events connected.
func Bind(form *Form, c *container.Container, opts ...presenter.Option) (*presenter.Container, error) {
	pc := presenter.NewContainer(opts...)

	for _, s := range c.Settings() {
		w := WidgetFor(s)
		if w == nil {
			continue
		}
		if err := pc.Add(presenter.New(s, w, SignalChanged)); err != nil {
			return nil, err
		}

		label := s.DisplayName()
		if label == "" {
			label = s.Name()
		}
		form.AddRow(label, w)
	}

	pc.SetTooltips()
	if err := pc.AssignSettingValuesToElements(); err != nil {
		return nil, err
	}
	if err := pc.ConnectValueChangedEvents(); err != nil {
		return nil, err
	}
	return pc, nil
}
