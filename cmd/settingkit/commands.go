package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/settingkit/internal/notify"
	"github.com/dshills/settingkit/internal/setting"
)

// withApp loads settings and runs fn with the app, closing it afterwards.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(a *app) error) (err error) {
	a, err := newApp(cmd.Context(), opts.cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := a.load(cmd.Context()); err != nil {
		return err
	}
	return fn(a)
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				if err := a.streamline(true, "cli"); err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), a.settings.Settings())
				}
				return writeTable(cmd.OutOrStdout(), a.settings.Settings())
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func writeTable(w io.Writer, settings []*setting.Setting) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVALUE\tENABLED\tVISIBLE\tDESCRIPTION")
	for _, s := range settings {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%t\t%s\n",
			s.Name(), formatValue(s), s.UIEnabled(), s.UIVisible(), s.ShortDescription())
	}
	return tw.Flush()
}

type settingView struct {
	Name    string `json:"name"`
	Value   any    `json:"value"`
	Display string `json:"display"`
	Enabled bool   `json:"enabled"`
	Visible bool   `json:"visible"`
}

func writeJSON(w io.Writer, settings []*setting.Setting) error {
	views := make([]settingView, len(settings))
	for i, s := range settings {
		views[i] = settingView{
			Name:    s.Name(),
			Value:   s.Value(),
			Display: formatValue(s),
			Enabled: s.UIEnabled(),
			Visible: s.UIVisible(),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(views)
}

func newSetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set NAME=VALUE...",
		Short: "Change settings and save them",
		Long: `Change one or more settings and save them to every writable source.

Enum settings accept an option ID or its number. Dependent settings are
updated by their streamline rules before saving. Nothing is saved if any
value is rejected.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				for _, arg := range args {
					name, raw, err := parseAssignment(arg)
					if err != nil {
						return err
					}
					s, err := a.settings.Get(name)
					if err != nil {
						return err
					}
					v, err := parseValue(s, raw)
					if err != nil {
						return err
					}
					old := s.Value()
					if err := s.SetValue(v); err != nil {
						return err
					}
					a.notifier.NotifyValue(notify.Path(a.settings.Name(), name), old, s.Value(), "cli")
				}

				if err := a.streamline(false, "streamline"); err != nil {
					return err
				}
				if err := a.save(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %d setting(s) to %s\n", len(args), a.file.Path())
				return nil
			})
		},
	}
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset [NAME...]",
		Short: "Restore default values and save them",
		Long: `Restore default values and save them. Without names, every setting
that allows container resets is restored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				if len(args) == 0 {
					a.settings.Reset()
					a.notifier.NotifyReset(a.settings.Name(), "cli")
				}
				for _, name := range args {
					s, err := a.settings.Get(name)
					if err != nil {
						return err
					}
					s.Reset()
					a.notifier.NotifyReset(notify.Path(a.settings.Name(), name), "cli")
				}

				if err := a.streamline(true, "streamline"); err != nil {
					return err
				}
				if err := a.save(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "settings reset")
				return nil
			})
		},
	}
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := opts.cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
