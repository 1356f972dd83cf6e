// Package container groups settings into an ordered, read-only collection.
//
// A Container is built once through a factory function and never changes
// shape afterwards: settings are looked up by name, streamlined together and
// reset together.
package container

import (
	"errors"
	"fmt"
	"iter"

	"github.com/dshills/settingkit/internal/setting"
)

// Errors returned by container operations.
var (
	// ErrNotFound is returned when no setting has the requested name.
	ErrNotFound = errors.New("setting not found")

	// ErrDuplicateSetting is returned when a factory adds a name twice.
	ErrDuplicateSetting = errors.New("duplicate setting")

	// ErrImmutableContainer is returned by Set and Delete.
	ErrImmutableContainer = errors.New("container is immutable")
)

// Builder collects settings while a container is being created.
type Builder struct {
	c *Container
}

// Add appends s. Names must be unique within the container.
func (b *Builder) Add(s *setting.Setting) error {
	if s == nil {
		return fmt.Errorf("%w: nil setting", setting.ErrInvalidArgument)
	}
	if _, ok := b.c.byName[s.Name()]; ok {
		return fmt.Errorf("%w: %s in %s", ErrDuplicateSetting, s.Name(), b.c.name)
	}
	b.c.byName[s.Name()] = s
	b.c.order = append(b.c.order, s)
	return nil
}

// MustAdd adds every setting and panics on the first failure.
// It is intended for factories with statically known names.
func (b *Builder) MustAdd(settings ...*setting.Setting) {
	for _, s := range settings {
		if err := b.Add(s); err != nil {
			panic(err)
		}
	}
}

// Lookup returns a setting added earlier in the same factory, so that
// streamline functions can be bound to their dependencies.
func (b *Builder) Lookup(name string) (*setting.Setting, bool) {
	s, ok := b.c.byName[name]
	return s, ok
}

// FactoryFunc populates a container.
type FactoryFunc func(b *Builder) error

// Container is an immutable, ordered collection of settings keyed by name.
//
// Containers are not safe for concurrent use.
type Container struct {
	name   string
	order  []*setting.Setting
	byName map[string]*setting.Setting
}

// New creates a container by running create. Insertion order is the order
// in which create adds settings.
func New(name string, create FactoryFunc) (*Container, error) {
	c := &Container{
		name:   name,
		byName: make(map[string]*setting.Setting),
	}
	if create != nil {
		if err := create(&Builder{c: c}); err != nil {
			return nil, fmt.Errorf("create container %s: %w", name, err)
		}
	}
	return c, nil
}

// Name returns the container name.
func (c *Container) Name() string {
	return c.name
}

// Get returns the setting with the given name.
func (c *Container) Get(name string) (*setting.Setting, error) {
	s, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return s, nil
}

// MustGet is like Get but panics if the setting does not exist.
func (c *Container) MustGet(name string) *setting.Setting {
	s, err := c.Get(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Set always fails; settings cannot be replaced after creation.
func (c *Container) Set(name string, _ *setting.Setting) error {
	return fmt.Errorf("%w: cannot set %s", ErrImmutableContainer, name)
}

// Delete always fails; settings cannot be removed after creation.
func (c *Container) Delete(name string) error {
	return fmt.Errorf("%w: cannot delete %s", ErrImmutableContainer, name)
}

// Len returns the number of settings.
func (c *Container) Len() int {
	return len(c.order)
}

// Settings returns the settings in insertion order. It implements
// setting.Group.
func (c *Container) Settings() []*setting.Setting {
	out := make([]*setting.Setting, len(c.order))
	copy(out, c.order)
	return out
}

// All iterates over name/setting pairs in insertion order.
func (c *Container) All() iter.Seq2[string, *setting.Setting] {
	return func(yield func(string, *setting.Setting) bool) {
		for _, s := range c.order {
			if !yield(s.Name(), s) {
				return
			}
		}
	}
}

// Streamline streamlines every setting that has a streamline function and
// unions the results. The first failure stops the pass and is returned
// together with the changes collected so far.
func (c *Container) Streamline(force bool) (setting.Changes, error) {
	var changes setting.Changes
	for _, s := range c.order {
		if !s.CanStreamline() {
			continue
		}
		changed, err := s.Streamline(force)
		if err != nil {
			return changes, fmt.Errorf("container %s: %w", c.name, err)
		}
		changes.Merge(changed)
	}
	return changes, nil
}

// Reset restores defaults of every setting that allows container resets.
func (c *Container) Reset() {
	for _, s := range c.order {
		if s.CanBeResetByContainer() {
			s.Reset()
		}
	}
}
