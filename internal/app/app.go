package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/dev-someuser/shared-clipboard/internal/clipboard"
	"github.com/dev-someuser/shared-clipboard/internal/sync"
)

// App wires config, clipboard capability, sync loop and lifecycle manager
// into the client daemon. UI collaborators talk to it through the command
// channel and the manager's event stream; the engine never calls into a UI.
type App struct {
	config  *Config
	manager *sync.Manager
	loop    *sync.Loop
	logger  *slog.Logger

	commands chan sync.Command
}

// New creates the client application
func New(logger *slog.Logger) (*App, error) {
	config, err := LoadConfig()
	if err != nil {
		logger.Warn("failed to load config, using defaults", "err", err)
		config = DefaultConfig()
	}

	clip := newClipboard(config, logger)
	cls := clipboard.NewClassifier(time.Duration(config.GraceSeconds) * time.Second)

	loop := sync.NewLoop(clip, cls, logger, sync.LoopConfig{
		PollInterval:    time.Duration(config.PollIntervalMS) * time.Millisecond,
		PushMinInterval: time.Duration(config.PushMinIntervalMS) * time.Millisecond,
		ReadRetries:     config.ReadRetries,
	})
	loop.SetPaused(config.SyncPaused)

	manager := sync.NewManager(loop, logger, sync.ManagerConfig{URL: config.ServerURL})

	return &App{
		config:   config,
		manager:  manager,
		loop:     loop,
		logger:   logger,
		commands: make(chan sync.Command, 16),
	}, nil
}

// newClipboard selects the capability implementation from config
func newClipboard(config *Config, logger *slog.Logger) clipboard.Clipboard {
	if config.ClipboardBackend == "memory" {
		return clipboard.NewMemory()
	}
	clip, err := clipboard.NewCommand()
	if err != nil {
		logger.Warn("platform clipboard unavailable, falling back to in-memory", "err", err)
		return clipboard.NewMemory()
	}
	return clip
}

// Commands is the channel UI collaborators deliver commands on
func (a *App) Commands() chan<- sync.Command {
	return a.commands
}

// Manager exposes the lifecycle manager, mainly for its event stream
func (a *App) Manager() *sync.Manager {
	return a.manager
}

// SetURL applies a new relay URL, as if a set-url command arrived
func (a *App) SetURL(url string) error {
	return a.manager.SetURL(url)
}

// Run starts the engine and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.consumeEvents(ctx)
	go a.pumpCommands(ctx)

	if a.config.ServerURL != "" {
		go a.probe(ctx, a.config.ServerURL)
	}

	return a.manager.Run(ctx)
}

// consumeEvents logs engine events and persists confirmed URL changes
func (a *App) consumeEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-a.manager.Events():
			a.logger.Info("engine event", "kind", ev.Kind.String(), "url", ev.URL)
			if ev.Kind == sync.EventURLChanged {
				a.config.ServerURL = ev.URL
				if err := SaveConfig(a.config); err != nil {
					a.logger.Error("failed to save config", "err", err)
				}
			}
		}
	}
}

// pumpCommands feeds UI commands into the lifecycle manager
func (a *App) pumpCommands(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-a.commands:
			if err := a.manager.Handle(cmd); err != nil {
				// Configuration failures stay with the UI; nothing to retry
				a.logger.Error("command rejected", "err", err)
			}
		}
	}
}

// probe checks relay reachability once at startup. Informational only.
func (a *App) probe(ctx context.Context, url string) {
	snap, err := sync.NewHTTPPusher(url).Probe(ctx)
	if err != nil {
		a.logger.Warn("relay probe failed", "url", url, "err", err)
		return
	}
	a.logger.Info("relay reachable", "url", url, "current_type", snap.ContentType)
}
