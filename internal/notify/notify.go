// Package notify delivers setting change events to observers.
//
// Events are addressed by dotted path, "<container>.<setting>". Observers
// subscribe either to every event or to a path; a path subscription also
// receives events for paths below it, so subscribing to "export" observes
// "export.file_extension". Reload events reach every observer.
package notify

import (
	"sync"

	"github.com/dshills/settingkit/internal/setting"
)

// ChangeType classifies a change event.
type ChangeType int

const (
	// ChangeValue indicates a setting value was written.
	ChangeValue ChangeType = iota

	// ChangeUI indicates only ui_enabled or ui_visible changed.
	ChangeUI

	// ChangeReset indicates settings were restored to defaults.
	ChangeReset

	// ChangeReload indicates settings were reloaded from their streams.
	ChangeReload
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeValue:
		return "value"
	case ChangeUI:
		return "ui"
	case ChangeReset:
		return "reset"
	case ChangeReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Change is one change event.
type Change struct {
	// Path is "<container>.<setting>". Empty for container-wide events.
	Path string

	// Type is the kind of change.
	Type ChangeType

	// Attributes lists the setting attributes that changed.
	Attributes setting.AttrSet

	// OldValue is the previous value, when known.
	OldValue any

	// NewValue is the current value.
	NewValue any

	// Source identifies the origin, e.g. "streamline", "cli", "reload".
	Source string

	// Status carries the persistence status of reload events.
	Status string
}

// Observer is called for each delivered change.
type Observer func(change Change)

// Subscription is an active observer registration.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes the observer. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier fans change events out to observers.
// It is safe for concurrent use.
type Notifier struct {
	mu sync.RWMutex

	global map[uint64]Observer
	byPath map[string]map[uint64]Observer
	nextID uint64
	closed bool
}

// New creates a Notifier. Changes are delivered synchronously on the
// goroutine that sends them.
func New() *Notifier {
	return &Notifier{
		global: make(map[uint64]Observer),
		byPath: make(map[string]map[uint64]Observer),
	}
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.global[id] = observer

	return &Subscription{id: id, notifier: n}
}

// SubscribePath registers an observer for path and everything below it.
func (n *Notifier) SubscribePath(path string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	if n.byPath[path] == nil {
		n.byPath[path] = make(map[uint64]Observer)
	}
	n.byPath[path][id] = observer

	return &Subscription{id: id, notifier: n}
}

// Notify delivers change. Changes sent after Close are dropped.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	closed := n.closed
	n.mu.RUnlock()
	if closed {
		return
	}
	n.deliver(change)
}

// NotifyValue reports a single value write.
func (n *Notifier) NotifyValue(path string, oldValue, newValue any, source string) {
	n.Notify(Change{
		Path:       path,
		Type:       ChangeValue,
		Attributes: setting.AttrSet(setting.AttrValue),
		OldValue:   oldValue,
		NewValue:   newValue,
		Source:     source,
	})
}

// NotifyChanges reports the result of a streamline pass. Each setting
// becomes one event under "<container>.<name>".
func (n *Notifier) NotifyChanges(container string, changes setting.Changes, source string) {
	changes.Each(func(s *setting.Setting, attrs setting.AttrSet) {
		typ := ChangeUI
		if attrs.Has(setting.AttrValue) {
			typ = ChangeValue
		}
		n.Notify(Change{
			Path:       Path(container, s.Name()),
			Type:       typ,
			Attributes: attrs,
			NewValue:   s.Value(),
			Source:     source,
		})
	})
}

// NotifyReset reports that a container was reset to defaults.
func (n *Notifier) NotifyReset(container, source string) {
	n.Notify(Change{Path: container, Type: ChangeReset, Source: source})
}

// NotifyReload reports a reload with its persistence status.
func (n *Notifier) NotifyReload(source, status string) {
	n.Notify(Change{Type: ChangeReload, Source: source, Status: status})
}

// Close stops delivery. It is safe to call Close more than once.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
}

// Path joins a container name and a setting name.
func Path(container, name string) string {
	if container == "" {
		return name
	}
	return container + "." + name
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.global, id)
	for path, observers := range n.byPath {
		delete(observers, id)
		if len(observers) == 0 {
			delete(n.byPath, path)
		}
	}
}

func (n *Notifier) deliver(change Change) {
	n.mu.RLock()
	var observers []Observer
	for _, obs := range n.global {
		observers = append(observers, obs)
	}
	for path, pathObs := range n.byPath {
		if change.Type == ChangeReload || path == change.Path || isParentPath(path, change.Path) {
			for _, obs := range pathObs {
				observers = append(observers, obs)
			}
		}
	}
	n.mu.RUnlock()

	// Observers run outside the lock so they may subscribe or unsubscribe.
	for _, obs := range observers {
		obs(change)
	}
}

// isParentPath reports whether parent is a proper dotted prefix of child.
func isParentPath(parent, child string) bool {
	if parent == "" {
		return child != ""
	}
	return len(child) > len(parent) && child[:len(parent)] == parent && child[len(parent)] == '.'
}
