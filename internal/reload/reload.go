// Package reload reloads settings when their files change on disk.
package reload

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dshills/settingkit/internal/notify"
	"github.com/dshills/settingkit/internal/persist"
	"github.com/dshills/settingkit/internal/setting"
	"github.com/dshills/settingkit/internal/watcher"
)

// Loader loads settings. *persist.Persistor implements it.
type Loader interface {
	Load(ctx context.Context, groups ...setting.Group) persist.Status
	StatusMessage() string
}

// Saver writes settings back. *persist.Persistor implements it.
type Saver interface {
	Save(ctx context.Context, groups ...setting.Group) persist.Status
	StatusMessage() string
}

// EventSource delivers file change events. *watcher.Watcher implements it.
type EventSource interface {
	Events() <-chan watcher.Event
}

// Reloader runs Load whenever a watched file changes and publishes a
// notify.ChangeReload event with the resulting status.
type Reloader struct {
	loader   Loader
	source   EventSource
	notifier *notify.Notifier
	groups   []setting.Group
	logger   zerolog.Logger
	dispatch func(func())
	saver    Saver
}

// Option configures a Reloader.
type Option func(*Reloader)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Reloader) {
		r.logger = logger
	}
}

// WithDispatch runs each reload through dispatch, e.g. to move it onto the
// UI goroutine. dispatch must eventually call the function it is given.
// By default reloads run on the Run goroutine.
func WithDispatch(dispatch func(func())) Option {
	return func(r *Reloader) {
		r.dispatch = dispatch
	}
}

// WithWriteBack saves the reloaded values through saver after every load
// that did not fail, so that streams read ahead of the changed file agree
// with it on the next load.
func WithWriteBack(saver Saver) Option {
	return func(r *Reloader) {
		r.saver = saver
	}
}

// New creates a Reloader. notifier may be nil.
func New(loader Loader, source EventSource, notifier *notify.Notifier, groups []setting.Group, opts ...Option) *Reloader {
	r := &Reloader{
		loader:   loader,
		source:   source,
		notifier: notifier,
		groups:   groups,
		logger:   zerolog.Nop(),
		dispatch: func(fn func()) { fn() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run handles events until ctx is done or the event channel closes.
func (r *Reloader) Run(ctx context.Context) error {
	events := r.source.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !ev.Op.Changed() {
				r.logger.Debug().Str("path", ev.Path).Stringer("op", ev.Op).Msg("ignoring file event")
				continue
			}
			r.dispatch(func() { r.Reload(ctx, ev.Path) })
		}
	}
}

// Reload loads all groups once, writes them back if configured, and
// publishes the outcome. A failed write-back is logged and reported as the
// resulting status.
func (r *Reloader) Reload(ctx context.Context, source string) persist.Status {
	status := r.loader.Load(ctx, r.groups...)

	if r.saver != nil && (status == persist.Success || status == persist.NotAllSettingsFound) {
		if saved := r.saver.Save(ctx, r.groups...); saved != persist.Success {
			r.logger.Warn().Str("source", source).Stringer("status", saved).Str("message", r.saver.StatusMessage()).Msg("write-back failed")
			status = saved
		}
	}

	ev := r.logger.Info()
	if status == persist.ReadFailed || status == persist.WriteFailed {
		ev = r.logger.Warn()
	}
	ev.Str("source", source).Stringer("status", status).Str("message", r.loader.StatusMessage()).Msg("settings reloaded")

	if r.notifier != nil {
		r.notifier.NotifyReload(source, status.String())
	}
	return status
}
