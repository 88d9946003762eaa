package app

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/dshills/keycmd/internal/command"
	"github.com/dshills/keycmd/internal/dispatch"
	"github.com/dshills/keycmd/internal/editor"
	"github.com/dshills/keycmd/internal/input/key"
	"github.com/dshills/keycmd/internal/keybind"
	"github.com/dshills/keycmd/internal/notify"
	lua "github.com/dshills/keycmd/internal/plugin/lua"
	"github.com/dshills/keycmd/internal/prefs"
	"github.com/dshills/keycmd/internal/repeat"
	"github.com/dshills/keycmd/internal/watcher"
)

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap(opts Options) error {
	var err error

	// 1. Logging
	app.log, app.logCloser, err = NewLogger(app.cfg.Log, opts.LogOutput)
	if err != nil {
		return &InitError{Component: "logging", Err: err}
	}
	app.entry = WithComponent(app.log, "app")
	base := logrus.NewEntry(app.log)

	// 2. Notifications
	app.notifier = notify.New()
	app.statusSub = app.notifier.SubscribeTopic(notify.TopicStatus, app.setStatus)

	// 3. Preferences
	app.store = opts.Store
	if app.store == nil {
		app.file, err = prefs.Open(app.cfg.Prefs.Path)
		if err != nil {
			return &InitError{Component: "preferences", Err: err}
		}
		app.store = app.file
	}

	// 4. Key bindings, user bindings first so defaults never displace them
	app.bindings = keybind.NewManager(
		keybind.WithStore(app.store),
		keybind.WithNotifier(app.notifier),
		keybind.WithLogger(base),
	)
	if err := app.bindings.Load(); err != nil {
		app.entry.WithError(err).Warn("stored key bindings ignored")
	}

	// 5. Commands
	app.registry = command.NewRegistry(
		command.WithBinder(app.bindings),
		command.WithNotifier(app.notifier),
		command.WithLogger(base),
	)

	// 6. Text surface
	app.buffer = editor.NewBuffer("")

	// 7. Repeat prefix and dispatcher
	app.repeat = repeat.New(repeat.Config{
		DefaultMultiplier: app.cfg.Repeat.DefaultMultiplier,
		MaxCount:          app.cfg.Repeat.MaxCount,
		CancelKey:         app.cfg.CancelKey(),
	},
		repeat.WithSurface(func() repeat.Surface { return app.buffer }),
		repeat.WithStatus(func(msg string) { app.notifier.Status("repeat", msg) }),
		repeat.WithActivationMatcher(app.isRepeatKey),
		repeat.WithLogger(base),
	)
	app.dispatcher = dispatch.New(dispatch.Config{
		MaxSequence: app.cfg.Keys.MaxSequence,
		CancelKey:   app.cfg.CancelKey(),
	}, app.registry, app.bindings,
		dispatch.WithRepeat(app.repeat),
		dispatch.WithSurface(func() command.Surface { return app.buffer }),
		dispatch.WithStatus(func(msg string) { app.notifier.Status("dispatch", msg) }),
		dispatch.WithLogger(base),
	)

	// 8. Builtin commands
	if !opts.NoBuiltins {
		if err := app.dispatcher.RegisterCommands(); err != nil {
			return &InitError{Component: "commands", Err: err}
		}
		if err := editor.RegisterCommands(app.registry, app.buffer, opts.Clipboard); err != nil {
			return &InitError{Component: "commands", Err: err}
		}
	}

	// 9. Scripts
	if !opts.NoScripts {
		app.scripts = lua.NewHost(app.registry, app.bindings,
			lua.WithSurface(func() command.Surface { return app.buffer }),
			lua.WithStatus(func(msg string) { app.notifier.Status("script", msg) }),
			lua.WithLogger(base),
		)
		n, err := app.scripts.LoadDir(app.cfg.Scripts.Dir)
		if err != nil {
			app.entry.WithError(err).Warn("scripts not loaded")
		} else if n > 0 {
			app.entry.WithField("count", n).Info("scripts loaded")
		}
	}

	// 10. Live reload of the preference file
	if app.file != nil && !opts.NoWatch {
		app.watcher, err = watcher.New(watcher.WithLogger(base))
		if err != nil {
			app.entry.WithError(err).Warn("file watching unavailable")
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(app.file.Path()), 0o755); err != nil {
			app.entry.WithError(err).Warn("preferences not watched")
			return nil
		}
		if err := app.watcher.Watch(app.file.Path()); err != nil {
			app.entry.WithError(err).Warn("preferences not watched")
			return nil
		}
		app.watcher.OnChange(func(watcher.Event) {
			if err := app.ReloadBindings(); err != nil {
				app.entry.WithError(err).Warn("reloading key bindings")
				return
			}
			app.entry.Debug("key bindings reloaded")
		})
	}

	app.entry.WithFields(logrus.Fields{
		"commands": app.registry.Len(),
		"bindings": app.bindings.Len(),
	}).Debug("application ready")
	return nil
}

// isRepeatKey reports whether ev is currently bound to the repeat prefix.
func (app *Application) isRepeatKey(ev key.Event) bool {
	b, match := app.bindings.Lookup(key.NewSequenceFrom(ev))
	return match == keybind.MatchExact && b.Command == dispatch.CmdRepeatPrefix
}
