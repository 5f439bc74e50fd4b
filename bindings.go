package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"ghostcode/internal/library"
	"ghostcode/internal/player"
	"ghostcode/internal/recorder"
)

// Exported App methods below form the frontend surface: Wails binds them
// directly, and the WebSocket router exposes them by name.

var errNoLibrary = errors.New("cast library unavailable")

// ===== Playback =====

// LoadTimeline loads a timeline file into the player and starts watching
// it for authoring hot-reloads. On a malformed file the fallback cast is
// substituted and the load error is returned alongside.
func (a *App) LoadTimeline(path string) error {
	err := a.player.LoadFile(path)
	a.watchSource(path)
	return err
}

// LoadLibraryCast loads a stored library entry into the player.
func (a *App) LoadLibraryCast(id string) error {
	if a.library == nil {
		return errNoLibrary
	}
	actions, err := a.library.Actions(id)
	if err != nil {
		return err
	}
	cast, err := a.library.Get(id)
	if err != nil {
		return err
	}
	a.watchSource("")
	a.player.Load(actions, "library:"+cast.Title, false)
	return nil
}

// Play starts playback.
func (a *App) Play() {
	a.player.Play()
}

// Pause halts playback, freezing any typing animation in place.
func (a *App) Pause() {
	a.player.Pause()
}

// ResetPlayback rewinds derived state to the clock's current position.
func (a *App) ResetPlayback() {
	a.player.Reset()
}

// SeekTo jumps playback to ms and rebuilds editor state there.
func (a *App) SeekTo(ms float64) error {
	return a.player.SeekTo(ms)
}

// ReportMediaTime is pushed by the frontend audio element on timeupdate.
func (a *App) ReportMediaTime(positionMs float64, playing bool) error {
	return a.player.ReportMediaTime(positionMs, playing)
}

// MediaEnded is pushed when the narration audio finishes.
func (a *App) MediaEnded() {
	a.player.MediaEnded()
}

// PlaybackStatus snapshots the session for the transport UI.
func (a *App) PlaybackStatus() player.Status {
	return a.player.Status()
}

// FileContent returns a buffer's full text, for frontend pulls after a
// seek rebuild.
func (a *App) FileContent(path string) (string, error) {
	content, ok := a.player.FileContent(path)
	if !ok {
		return "", fmt.Errorf("no such file: %s", path)
	}
	return content, nil
}

// ===== Window =====

// ToggleFullscreen toggles presentation fullscreen. Native on macOS,
// no-op elsewhere.
func (a *App) ToggleFullscreen() {
	ToggleNativeFullscreen()
}

// IsFullscreen reports whether the window is in fullscreen mode.
func (a *App) IsFullscreen() bool {
	return IsNativeFullscreen()
}

// ===== Cast library =====

// ImportCast copies a timeline file into the library.
func (a *App) ImportCast(path, title, audioPath string) (*library.Cast, error) {
	if a.library == nil {
		return nil, errNoLibrary
	}
	return a.library.Import(path, title, audioPath)
}

// ListCasts returns all library entries, newest first.
func (a *App) ListCasts() ([]library.Cast, error) {
	if a.library == nil {
		return nil, errNoLibrary
	}
	return a.library.List()
}

// DeleteCast removes a library entry and its archive.
func (a *App) DeleteCast(id string) error {
	if a.library == nil {
		return errNoLibrary
	}
	return a.library.Delete(id)
}

// ExportCast writes a library entry out as a compressed .cast.zst file.
func (a *App) ExportCast(id, destPath string) error {
	if a.library == nil {
		return errNoLibrary
	}
	return a.library.Export(id, destPath)
}

// ===== Recorder =====

// RecordFromGit synthesizes a cast from a git repository's history and
// stores it as a library entry.
func (a *App) RecordFromGit(repoPath, title string) (*library.Cast, error) {
	if a.library == nil {
		return nil, errNoLibrary
	}
	actions, err := recorder.RecordFromGit(repoPath, recorder.Options{
		CharsPerSecond: a.config.Settings.DefaultCharsPerSecond,
	})
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = filepath.Base(repoPath) + " history"
	}
	return a.library.ImportActions(actions, title, "git:"+repoPath, "")
}
