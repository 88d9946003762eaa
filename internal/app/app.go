// Package app wires the keycmd components together: preferences, the
// command registry, key bindings, the repeat prefix, the dispatcher, the
// text buffer and user scripts.
package app

import (
	"errors"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dshills/keycmd/internal/command"
	"github.com/dshills/keycmd/internal/config"
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

// Application owns every component and their lifecycle.
type Application struct {
	cfg       *config.Config
	log       *logrus.Logger
	logCloser io.Closer
	entry     *logrus.Entry

	notifier *notify.Notifier
	store    prefs.Store
	file     *prefs.FileStore
	watcher  *watcher.Watcher

	registry   *command.Registry
	bindings   *keybind.Manager
	buffer     *editor.Buffer
	repeat     *repeat.Controller
	dispatcher *dispatch.Dispatcher
	scripts    *lua.Host

	statusMu  sync.RWMutex
	status    string
	statusSub *notify.Subscription

	closeOnce sync.Once
	closeErr  error
}

// Options configures the application.
type Options struct {
	// Store replaces the preference file, e.g. with a prefs.MemoryStore.
	Store prefs.Store

	// Clipboard replaces the system clipboard used by cmd_paste.
	Clipboard editor.Clipboard

	// LogOutput receives log output when no log file is configured.
	LogOutput io.Writer

	// NoWatch disables reloading bindings on external prefs edits.
	NoWatch bool

	// NoScripts skips loading Lua scripts.
	NoScripts bool

	// NoBuiltins skips registering the builtin commands, for tools that
	// only inspect or edit bindings.
	NoBuiltins bool
}

// New builds the application. On failure everything already built is
// released.
func New(cfg *config.Config, opts Options) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	app := &Application{cfg: cfg}
	if err := app.bootstrap(opts); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

// Config returns the configuration.
func (app *Application) Config() *config.Config { return app.cfg }

// Logger returns the application logger.
func (app *Application) Logger() *logrus.Logger { return app.log }

// Registry returns the command registry.
func (app *Application) Registry() *command.Registry { return app.registry }

// Bindings returns the key binding manager.
func (app *Application) Bindings() *keybind.Manager { return app.bindings }

// Buffer returns the text buffer.
func (app *Application) Buffer() *editor.Buffer { return app.buffer }

// Repeat returns the repeat prefix controller.
func (app *Application) Repeat() *repeat.Controller { return app.repeat }

// Dispatcher returns the key dispatcher.
func (app *Application) Dispatcher() *dispatch.Dispatcher { return app.dispatcher }

// Scripts returns the Lua host, or nil when scripts are disabled.
func (app *Application) Scripts() *lua.Host { return app.scripts }

// Notifier returns the change notifier.
func (app *Application) Notifier() *notify.Notifier { return app.notifier }

// HandleKey dispatches a key event.
func (app *Application) HandleKey(ev key.Event) dispatch.Result {
	return app.dispatcher.HandleKey(ev)
}

// Status returns the current status line message.
func (app *Application) Status() string {
	app.statusMu.RLock()
	defer app.statusMu.RUnlock()
	return app.status
}

func (app *Application) setStatus(c notify.Change) {
	app.statusMu.Lock()
	app.status = c.Detail
	app.statusMu.Unlock()
}

// ReloadBindings re-reads the preference file and the binding table.
func (app *Application) ReloadBindings() error {
	if app.file != nil {
		if err := app.file.Reload(); err != nil {
			return err
		}
	}
	return app.bindings.Load()
}

// Close tears the components down in reverse order. Bindings stay in the
// preference store: commands are removed without touching their keys.
func (app *Application) Close() error {
	app.closeOnce.Do(func() {
		var errs []error
		if app.watcher != nil {
			errs = append(errs, app.watcher.Close())
		}
		if app.registry != nil {
			app.registry.SetBinder(nil)
		}
		if app.scripts != nil {
			errs = append(errs, app.scripts.Close())
		}
		if app.registry != nil {
			app.registry.Close()
		}
		if app.statusSub != nil {
			app.statusSub.Unsubscribe()
		}
		if app.notifier != nil {
			app.notifier.Close()
		}
		if app.entry != nil {
			app.entry.Debug("closed")
		}
		if app.logCloser != nil {
			errs = append(errs, app.logCloser.Close())
		}
		app.closeErr = errors.Join(errs...)
	})
	return app.closeErr
}

// Pending returns the keys typed towards an unfinished sequence.
func (app *Application) Pending() string {
	return app.dispatcher.Pending()
}
