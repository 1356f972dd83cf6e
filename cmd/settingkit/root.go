package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/settingkit/internal/config"
)

// rootOptions holds the persistent flags.
type rootOptions struct {
	configPath string
	filePath   string
	logLevel   string
	logFormat  string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "settingkit",
		Short: "Inspect and edit persisted layer export settings",
		Long: `settingkit manages the layer export settings.

Settings are read from the highest-priority source that has them
(environment overrides, the session store, Badger, the settings file)
and written to every writable source.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.filePath != "" {
				cfg.File.Path = opts.filePath
			}
			if opts.logLevel != "" {
				cfg.Log.Level = opts.logLevel
			}
			if opts.logFormat != "" {
				cfg.Log.Format = opts.logFormat
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", config.DefaultPath(), "Path to configuration file")
	flags.StringVarP(&opts.filePath, "file", "f", "", "Settings file (overrides file.path)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log format: json or console")

	cmd.AddCommand(
		newShowCmd(opts),
		newSetCmd(opts),
		newResetCmd(opts),
		newEditCmd(opts),
		newConfigCmd(opts),
	)
	return cmd
}
