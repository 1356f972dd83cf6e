package stream

import (
	"context"

	"github.com/dshills/settingkit/internal/session"
	"github.com/dshills/settingkit/internal/setting"
)

// Session stores values in a session.Store under "<prefix><name>" keys.
// Values last as long as the store does.
type Session struct {
	tracker
	store  session.Store
	prefix string
}

// NewSession creates a session stream over store.
func NewSession(store session.Store, prefix string) *Session {
	return &Session{store: store, prefix: prefix}
}

// Prefix returns the key prefix.
func (s *Session) Prefix() string {
	return s.prefix
}

// Read implements Stream.
func (s *Session) Read(ctx context.Context, settings []*setting.Setting) error {
	return s.apply(settings, func(name string) (any, bool, error) {
		v, ok, err := s.store.Get(ctx, s.prefix+name)
		if err != nil {
			return nil, false, &Error{Op: "read", Location: s.prefix, Kind: ErrReadFailed, Err: err}
		}
		return v, ok, nil
	})
}

// Write implements Stream.
func (s *Session) Write(ctx context.Context, settings []*setting.Setting) error {
	for _, st := range settings {
		if err := s.store.Set(ctx, s.prefix+st.Name(), st.Value()); err != nil {
			return &Error{Op: "write", Location: s.prefix, Kind: ErrWriteFailed, Err: err}
		}
	}
	return nil
}
