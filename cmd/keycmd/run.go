package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dshills/keycmd/internal/app"
	"github.com/dshills/keycmd/internal/notify"
	"github.com/dshills/keycmd/internal/ui"
)

func newRunCmd(opts *globalOptions) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the terminal editor (Ctrl+Q quits)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Log.File == "" {
				// the terminal is busy; keep logs off the screen
				cfg.Log.File = filepath.Join(filepath.Dir(cfg.Prefs.Path), "keycmd.log")
			}

			application, err := app.New(cfg, app.Options{})
			if err != nil {
				return err
			}
			defer application.Close()
			if text != "" {
				application.Buffer().Reset(text)
			}

			term, err := ui.New(nil, application,
				ui.WithLogger(app.WithComponent(application.Logger(), "ui")))
			if err != nil {
				return err
			}

			sub := application.Notifier().Subscribe(func(notify.Change) { term.Refresh() })
			defer sub.Unsubscribe()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			err = term.Run(ctx)
			logSession(application)
			return err
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "initial buffer contents")
	return cmd
}

// logSession records the most used commands of the session.
func logSession(application *app.Application) {
	metrics := application.Dispatcher().Metrics()
	log := app.WithComponent(application.Logger(), "session")
	for _, cm := range metrics.TopCommands(5) {
		log.WithFields(logrus.Fields{
			"command":     cm.Name,
			"invocations": cm.Invocations,
			"errors":      cm.ErrorCount,
			"max":         cm.MaxDuration,
		}).Info("command usage")
	}
	log.WithFields(logrus.Fields{
		"invocations": metrics.TotalInvocations(),
		"errors":      metrics.TotalErrors(),
	}).Info("session ended")
}
