package main

import (
	"context"
	"errors"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/settingkit/internal/notify"
	"github.com/dshills/settingkit/internal/presenter"
	"github.com/dshills/settingkit/internal/reload"
	"github.com/dshills/settingkit/internal/setting"
	"github.com/dshills/settingkit/internal/tui"
	"github.com/dshills/settingkit/internal/watcher"
)

func newEditCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit settings in an interactive terminal form",
		Long: `Edit settings in an interactive terminal form.

Keys: Up/Down move, Space/Left/Right/typing edit, Ctrl-S saves, Esc quits.
With watch.enabled the form reloads when the settings file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				screen, err := tcell.NewScreen()
				if err != nil {
					return err
				}
				if err := screen.Init(); err != nil {
					return err
				}
				defer screen.Fini()

				return runEditor(cmd.Context(), a, screen)
			})
		},
	}
}

// runEditor binds the settings to a form on screen and runs it until the
// user quits.
func runEditor(ctx context.Context, a *app, screen tcell.Screen) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var pc *presenter.Container
	form := tui.NewForm(screen, "Export Layers", tui.WithSaveFunc(func() error {
		if err := pc.AssignElementValuesToSettings(); err != nil {
			return err
		}
		return a.save(ctx)
	}))

	pc, err := tui.Bind(form, a.settings,
		presenter.WithLogger(a.logger),
		presenter.WithErrorHandler(func(p presenter.Presenter, err error) {
			var verr *setting.ValueError
			if errors.As(err, &verr) {
				form.SetStatus(p.Setting().DisplayName() + ": " + verr.Message)
				return
			}
			form.SetStatus(err.Error())
		}))
	if err != nil {
		return err
	}

	if a.cfg.Watch.Enabled {
		stop, err := watchFile(ctx, a, form, pc)
		if err != nil {
			return err
		}
		defer stop()
	}

	err = form.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// watchFile reloads the form when the settings file changes. Reloads run
// on the form goroutine.
func watchFile(ctx context.Context, a *app, form *tui.Form, pc *presenter.Container) (func(), error) {
	w, err := watcher.New(
		watcher.WithDebounce(a.cfg.Watch.Debounce.Std()),
		watcher.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}
	if err := w.WatchFile(a.file.Path()); err != nil {
		_ = w.Close()
		return nil, err
	}

	sub := subscribeReload(a, form, pc)

	r := reload.New(a.reloader, w, a.notifier, []setting.Group{a.settings},
		reload.WithLogger(a.logger),
		reload.WithWriteBack(a.reloader),
		reload.WithDispatch(func(fn func()) {
			if err := form.Post(fn); err != nil {
				a.logger.Warn().Err(err).Msg("dropping reload")
			}
		}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()

	return func() {
		sub.Unsubscribe()
		_ = w.Close()
		<-done
	}, nil
}

// subscribeReload refreshes the form widgets after each reload of the
// settings container.
func subscribeReload(a *app, form *tui.Form, pc *presenter.Container) *notify.Subscription {
	return a.notifier.SubscribePath(a.settings.Name(), func(c notify.Change) {
		if c.Type != notify.ChangeReload {
			return
		}
		if err := pc.AssignSettingValuesToElements(); err != nil {
			form.SetStatus(err.Error())
			return
		}
		form.SetStatus("reloaded (" + c.Status + ")")
	})
}
