// Package stream reads and writes setting values from one backing location.
//
// A Stream is bound to a single location: a session store under a key
// prefix, a file, an embedded key/value database or the process
// environment. Reading applies stored values through each setting's
// validated setter; values that fail validation reset the setting to its
// default instead of failing the read. Settings without a stored value are
// reported through a *NotFoundError and remembered until the next Read.
//
// Streams are not safe for concurrent use.
package stream

import (
	"context"

	"github.com/dshills/settingkit/internal/setting"
)

// Stream is one backing location for setting values.
type Stream interface {
	// Read assigns stored values to settings. Settings absent from the
	// location are recorded and reported with a *NotFoundError after all
	// others have been applied.
	Read(ctx context.Context, settings []*setting.Setting) error

	// Write stores the name and value of every setting, overwriting
	// existing entries.
	Write(ctx context.Context, settings []*setting.Setting) error

	// SettingsNotFound returns the settings missing from the last Read.
	SettingsNotFound() []*setting.Setting
}

// lookupFunc returns the stored value for a setting name.
type lookupFunc func(name string) (value any, ok bool, err error)

// tracker holds the not-found list shared by all stream implementations.
type tracker struct {
	notFound []*setting.Setting
}

// SettingsNotFound implements Stream.
func (t *tracker) SettingsNotFound() []*setting.Setting {
	out := make([]*setting.Setting, len(t.notFound))
	copy(out, t.notFound)
	return out
}

// apply resolves every setting through lookup. Invalid stored values reset
// the setting. A lookup error aborts the pass and is returned as is.
func (t *tracker) apply(settings []*setting.Setting, lookup lookupFunc) error {
	t.notFound = nil

	for _, s := range settings {
		v, ok, err := lookup(s.Name())
		if err != nil {
			return err
		}
		if !ok {
			t.notFound = append(t.notFound, s)
			continue
		}
		if err := s.SetValue(v); err != nil {
			s.Reset()
		}
	}

	if len(t.notFound) > 0 {
		return newNotFoundError(t.notFound)
	}
	return nil
}

// reset clears the not-found list before a read that fails early.
func (t *tracker) reset() {
	t.notFound = nil
}

// valueMap builds the name to value document written by document-based
// streams.
func valueMap(settings []*setting.Setting) map[string]any {
	doc := make(map[string]any, len(settings))
	for _, s := range settings {
		doc[s.Name()] = s.Value()
	}
	return doc
}
