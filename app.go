package main

import (
	"context"
	"log"
	"sync"
	"time"

	"ghostcode/internal/clock"
	"ghostcode/internal/config"
	"ghostcode/internal/eventhub"
	"ghostcode/internal/library"
	"ghostcode/internal/player"
	"ghostcode/internal/watcher"
)

// App wires the playback engine together and is the surface both
// frontends talk to: Wails binds its exported methods directly, the
// WebSocket server routes RPC calls to them by name.
type App struct {
	ctx    context.Context
	mu     sync.Mutex
	config *config.Config

	hub     *eventhub.Hub
	media   *clock.Media
	player  *player.Player
	library *library.Manager

	// watches the source file of the currently loaded cast
	fileWatcher *watcher.FileWatcher
}

// NewApp creates a new App application struct.
func NewApp() *App {
	return &App{}
}

// startup is called by the Wails runtime.
func (a *App) startup(ctx context.Context) {
	a.startupCommon(ctx)
}

// Startup is the exported version for the standalone server.
func (a *App) Startup(ctx context.Context) {
	a.startupCommon(ctx)
}

func (a *App) startupCommon(ctx context.Context) {
	a.ctx = ctx

	cfg, err := config.Load()
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return
	}
	a.config = cfg

	a.hub = eventhub.New(cfg.Settings.CursorEventsPerSecond)
	a.media = clock.NewMedia()
	a.player = player.New(a.media, a.hub, player.Options{
		TickInterval: time.Duration(cfg.Settings.TickIntervalMs) * time.Millisecond,
		ToleranceMs:  cfg.Settings.ToleranceMs,
	})

	lib, err := library.NewManager(cfg.DatabasePath, cfg.LibraryDir)
	if err != nil {
		log.Printf("failed to open cast library: %v", err)
	} else {
		a.library = lib
	}
}

// SetBroadcaster attaches the frontend event transport.
func (a *App) SetBroadcaster(b eventhub.Broadcaster) {
	a.hub.SetBroadcaster(b)
}

// Shutdown releases everything. Safe when startup partially failed.
func (a *App) Shutdown(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.fileWatcher != nil {
		a.fileWatcher.Close()
		a.fileWatcher = nil
	}
	if a.player != nil {
		a.player.Close()
	}
	if a.library != nil {
		a.library.Close()
	}
}

// shutdown is the Wails-side callback.
func (a *App) shutdown(ctx context.Context) {
	a.Shutdown(ctx)
}

// watchSource replaces the hot-reload watcher with one for path. An empty
// path just stops watching.
func (a *App) watchSource(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.fileWatcher != nil {
		a.fileWatcher.Close()
		a.fileWatcher = nil
	}
	if path == "" {
		return
	}

	fw, err := watcher.New(path, 200*time.Millisecond, func() {
		log.Printf("timeline %s changed, reloading", path)
		if err := a.player.LoadFile(path); err != nil {
			log.Printf("reload failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("cannot watch %s: %v", path, err)
		return
	}
	if err := fw.Start(); err != nil {
		log.Printf("cannot start watcher: %v", err)
		fw.Close()
		return
	}
	a.fileWatcher = fw
}
