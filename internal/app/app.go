package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/tweakrunner/internal/config"
	"github.com/vk/tweakrunner/internal/ctxlog"
	"github.com/vk/tweakrunner/internal/demohost"
	"github.com/vk/tweakrunner/internal/host"
	"github.com/vk/tweakrunner/internal/resolver"
	"github.com/vk/tweakrunner/internal/runner"
	"github.com/vk/tweakrunner/internal/settings"
)

// Module is a compiled-in set of tweaks.
type Module interface {
	Register(r *runner.Runner) error
}

// App encapsulates the session's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	ctx      context.Context
	logger   *slog.Logger
	config   *config.Config
	game     *demohost.Game
	patcher  *host.Patcher
	settings *settings.Registry
	runner   *runner.Runner
}

// NewApp builds a session. With no modules given, the core modules are
// registered. The runner is attached to the demo host but not started.
func NewApp(outW io.Writer, cfg *config.Config, modules ...Module) (*App, error) {
	logger := newLogger(cfg.Log.Level, cfg.Log.Format, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	game := demohost.New(cfg.HostVersion)
	patcher := host.NewPatcher()
	reg := settings.NewRegistry(settings.NewHCLStore(cfg.SettingsDir))
	r := runner.New(ctx, runner.Config{
		Finder:    resolver.New(game.Universe()),
		Installer: patcher,
		Settings:  reg,
		Version:   game.Version(),
		PreGUI:    cfg.PreGUI,
	})
	logger.Debug("Runner created.", "session", r.Session(), "host_version", game.Version(), "settings_dir", cfg.SettingsDir)

	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		if err := mod.Register(r); err != nil {
			return nil, fmt.Errorf("failed to register module %T: %w", mod, err)
		}
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	r.Attach(game.Entry())

	return &App{
		outW:     outW,
		ctx:      ctx,
		logger:   logger,
		config:   cfg,
		game:     game,
		patcher:  patcher,
		settings: reg,
		runner:   r,
	}, nil
}

// Runner returns the session's runner.
func (a *App) Runner() *runner.Runner { return a.runner }

// Game returns the demo host.
func (a *App) Game() *demohost.Game { return a.game }

// Context returns the session context carrying the logger.
func (a *App) Context() context.Context { return a.ctx }

// Start toggles the framework on through the host.
func (a *App) Start() error {
	if !a.game.Toggle(true) {
		return fmt.Errorf("tweaks failed to start, see the log for the registration error")
	}
	return nil
}

// Stop toggles the framework off, which reverts every override and saves
// settings.
func (a *App) Stop() {
	a.game.Toggle(false)
}

// Status starts the framework, captures the tweak tree and stops again.
func (a *App) Status() ([]runner.Status, error) {
	if err := a.Start(); err != nil {
		return nil, err
	}
	defer a.Stop()
	return a.runner.Status(), nil
}

// SetEnabled flips a tweak's persisted flag through a start/stop cycle.
func (a *App) SetEnabled(name string, on bool) error {
	if err := a.Start(); err != nil {
		return err
	}
	defer a.Stop()
	return a.runner.SetEnabled(name, on)
}
