package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/dshills/settingkit/internal/config"
	"github.com/dshills/settingkit/internal/container"
	"github.com/dshills/settingkit/internal/exportopts"
	"github.com/dshills/settingkit/internal/logging"
	"github.com/dshills/settingkit/internal/notify"
	"github.com/dshills/settingkit/internal/persist"
	"github.com/dshills/settingkit/internal/script"
	"github.com/dshills/settingkit/internal/session"
	"github.com/dshills/settingkit/internal/stream"
)

// app is the runtime shared by all commands.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	settings  *container.Container
	persistor *persist.Persistor
	reloader  *persist.Persistor
	notifier  *notify.Notifier
	file      *stream.File

	closers []func() error
}

// newApp builds the settings container and its streams from cfg.
// Read priority: environment, session, Badger, file. Writes go to every
// stream but the environment.
func newApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*app, error) {
	a := &app{
		cfg: cfg,
		logger: logging.New(logging.Config{
			Level:     cfg.Log.Level,
			Format:    cfg.Log.Format,
			Output:    logOut,
			Component: "settingkit",
		}),
		notifier: notify.New(),
	}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close()
		}
	}()

	var err error
	a.settings, err = exportopts.New()
	if err != nil {
		return nil, err
	}
	if err := a.bindScripts(); err != nil {
		return nil, err
	}

	var read, write, overrides, caches []stream.Stream

	if cfg.Env.Enabled {
		env := stream.NewEnv(cfg.Env.Prefix)
		read = append(read, env)
		overrides = append(overrides, env)
	}

	store, err := a.openSession(ctx)
	if err != nil {
		return nil, err
	}
	sess := stream.NewSession(store, cfg.Session.Prefix)
	read = append(read, sess)
	write = append(write, sess)
	caches = append(caches, sess)

	if cfg.Badger.Enabled {
		logger := a.logger.With().Str("component", "badger").Logger()
		db, err := stream.OpenBadger(stream.BadgerConfig{
			Path:     cfg.Badger.Path,
			InMemory: cfg.Badger.InMemory,
			Logger:   &logger,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		kv := stream.NewBadger(db, cfg.Badger.Prefix)
		read = append(read, kv)
		write = append(write, kv)
		caches = append(caches, kv)
	}

	var fileOpts []stream.FileOption
	if codec, ok := codecByName(cfg.File.Format); ok {
		fileOpts = append(fileOpts, stream.WithCodec(codec))
	}
	a.file = stream.NewFile(cfg.File.Path, fileOpts...)
	read = append(read, a.file)
	write = append(write, a.file)

	a.persistor = persist.New(read, write, persist.WithLogger(a.logger))

	// On file changes the file outranks the session and Badger, which are
	// refreshed from it.
	a.reloader = persist.New(append(overrides, a.file), caches, persist.WithLogger(a.logger))

	a.notifier.Subscribe(func(c notify.Change) {
		a.logger.Debug().
			Str("path", c.Path).
			Stringer("type", c.Type).
			Stringer("attributes", c.Attributes).
			Interface("value", c.NewValue).
			Str("source", c.Source).
			Msg("setting changed")
	})

	ok = true
	return a, nil
}

func (a *app) openSession(ctx context.Context) (session.Store, error) {
	if a.cfg.Session.Backend != "redis" {
		return session.NewMemoryStore(), nil
	}

	rc := a.cfg.Session.Redis
	store, err := session.NewRedisStore(ctx, session.RedisConfig{
		Address:   rc.Address,
		Password:  rc.Password,
		Database:  rc.Database,
		Namespace: rc.Namespace,
		SessionID: rc.SessionID,
		TTL:       rc.TTL.Std(),
	})
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	a.closers = append(a.closers, store.Close)
	a.logger.Debug().Str("key", store.Key()).Msg("using redis session")
	return store, nil
}

// bindScripts compiles the configured Lua streamline scripts.
func (a *app) bindScripts() error {
	for _, sc := range a.cfg.Scripts {
		src, err := os.ReadFile(sc.File)
		if err != nil {
			return fmt.Errorf("read script %s: %w", sc.File, err)
		}
		prog, err := script.Compile(string(src))
		if err != nil {
			return fmt.Errorf("%s: %w", sc.File, err)
		}
		a.closers = append(a.closers, func() error {
			prog.Close()
			return nil
		})
		if err := script.Bind(a.settings, script.Binding{
			Setting: sc.Setting,
			Deps:    sc.Deps,
			Program: prog,
		}); err != nil {
			return err
		}
	}
	return nil
}

// load reads all settings. A partial load is reported but not fatal.
func (a *app) load(ctx context.Context) error {
	status := a.persistor.Load(ctx, a.settings)
	switch status {
	case persist.Success:
		return nil
	case persist.NotAllSettingsFound:
		a.logger.Debug().Str("message", a.persistor.StatusMessage()).Msg("using defaults for missing settings")
		return nil
	default:
		return fmt.Errorf("%s: %s", status, a.persistor.StatusMessage())
	}
}

// save writes all settings.
func (a *app) save(ctx context.Context) error {
	if status := a.persistor.Save(ctx, a.settings); status != persist.Success {
		return fmt.Errorf("%s: %s", status, a.persistor.StatusMessage())
	}
	return nil
}

// streamline runs every streamline function and publishes the changes.
func (a *app) streamline(force bool, source string) error {
	changes, err := a.settings.Streamline(force)
	a.notifier.NotifyChanges(a.settings.Name(), changes, source)
	return err
}

// Close releases stores in reverse order of opening.
func (a *app) Close() error {
	a.notifier.Close()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func codecByName(name string) (stream.Codec, bool) {
	switch name {
	case "json":
		return stream.JSON{}, true
	case "toml":
		return stream.TOML{}, true
	case "yaml":
		return stream.YAML{}, true
	default:
		return nil, false
	}
}
