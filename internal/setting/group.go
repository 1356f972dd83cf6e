package setting

// Group is anything that yields an ordered set of settings: containers,
// or plain lists.
type Group interface {
	Settings() []*Setting
}

// List is a Group backed by a slice.
type List []*Setting

// Settings implements Group.
func (l List) Settings() []*Setting {
	return l
}

// Flatten concatenates the settings of all groups in order.
func Flatten(groups ...Group) []*Setting {
	var out []*Setting
	for _, g := range groups {
		if g == nil {
			continue
		}
		out = append(out, g.Settings()...)
	}
	return out
}
