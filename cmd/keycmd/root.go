package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/keycmd/internal/app"
	"github.com/dshills/keycmd/internal/config"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	prefsPath  string
	scriptsDir string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "keycmd",
		Short:         "Command registry, key bindings and an emacs-style repeat prefix",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default is "+config.Dir()+"/config.toml)")
	flags.StringVar(&opts.prefsPath, "prefs", "", "preference file holding key bindings")
	flags.StringVar(&opts.scriptsDir, "scripts", "", "directory of Lua command scripts")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newRunCmd(opts),
		newBindCmd(opts),
		newUnbindCmd(opts),
		newUsedByCmd(opts),
		newListCmd(opts),
		newCommandsCmd(opts),
	)
	return root
}

// loadConfig reads the config file and applies flag overrides.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		path = config.Dir() + "/config.toml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if o.prefsPath != "" {
		cfg.Prefs.Path = o.prefsPath
	}
	if o.scriptsDir != "" {
		cfg.Scripts.Dir = o.scriptsDir
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, cfg.Validate()
}

// openApp builds the application for a one-shot subcommand.
func (o *globalOptions) openApp(cmd *cobra.Command, scripts bool) (*app.Application, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	if o.logLevel == "" {
		cfg.Log.Level = "warn"
	}
	return app.New(cfg, app.Options{
		LogOutput: cmd.ErrOrStderr(),
		NoWatch:   true,
		NoScripts: !scripts,
	})
}
