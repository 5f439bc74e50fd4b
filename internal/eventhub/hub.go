// Package eventhub is the single dispatch point for engine notifications.
// The playback core pushes typed events through the hub; whatever frontend
// is attached (Wails runtime or the WebSocket server) receives them as
// named events with JSON payloads.
package eventhub

import (
	"golang.org/x/time/rate"

	"ghostcode/internal/document"
	"ghostcode/internal/timeline"
)

// Broadcaster delivers an event to the attached frontend.
type Broadcaster interface {
	BroadcastEvent(eventType string, payload interface{})
}

// Hub fans engine notifications out to the broadcaster. Cursor events can
// arrive once per animation chunk, so they pass through a rate limiter;
// every other event type is delivered unconditionally.
type Hub struct {
	broadcaster Broadcaster
	cursorLimit *rate.Limiter
}

// New creates a hub. cursorPerSec caps cursor-moved broadcasts per second;
// 0 disables the cap.
func New(cursorPerSec int) *Hub {
	h := &Hub{}
	if cursorPerSec > 0 {
		h.cursorLimit = rate.NewLimiter(rate.Limit(cursorPerSec), cursorPerSec)
	}
	return h
}

// SetBroadcaster attaches the frontend transport.
func (h *Hub) SetBroadcaster(b Broadcaster) {
	h.broadcaster = b
}

func (h *Hub) emit(eventType string, payload interface{}) {
	if h.broadcaster != nil {
		h.broadcaster.BroadcastEvent(eventType, payload)
	}
}

// ActionFiredEvent carries a fired action with its drift telemetry.
type ActionFiredEvent struct {
	Action timeline.Action    `json:"action"`
	Meta   timeline.FiredMeta `json:"meta"`
}

func (h *Hub) EmitActionFired(a timeline.Action, meta timeline.FiredMeta) {
	h.emit("playback:action", ActionFiredEvent{Action: a, Meta: meta})
}

func (h *Hub) EmitFileCreated(path string) {
	h.emit("playback:file-created", map[string]interface{}{"path": path})
}

// EmitFileOpened broadcasts the active file. An empty path means none.
func (h *Hub) EmitFileOpened(path string) {
	h.emit("playback:file-opened", map[string]interface{}{"path": path})
}

// CursorEvent reports the tracked cursor for a path. Active is true when
// the path is bound to the visible editor surface.
type CursorEvent struct {
	Path   string            `json:"path"`
	Cursor timeline.Position `json:"cursor"`
	Active bool              `json:"active"`
}

// EmitCursorMoved is rate-limited: a dropped event is superseded by the
// next one, so chunk-frequency cursor churn never floods the transport.
func (h *Hub) EmitCursorMoved(path string, cursor timeline.Position, active bool) {
	if h.cursorLimit != nil && !h.cursorLimit.Allow() {
		return
	}
	h.emit("playback:cursor", CursorEvent{Path: path, Cursor: cursor, Active: active})
}

// TypedEvent carries one emitted chunk of an animated (or atomic) insert.
// Chunks are never dropped; they concatenate to the full inserted text.
type TypedEvent struct {
	Path   string            `json:"path"`
	Chunk  string            `json:"chunk"`
	Cursor timeline.Position `json:"cursor"`
}

func (h *Hub) EmitTyped(path, chunk string, cursor timeline.Position) {
	h.emit("playback:typing", TypedEvent{Path: path, Chunk: chunk, Cursor: cursor})
}

// HighlightEvent reports a decoration change for a path. A nil highlight
// means the decoration was cleared.
type HighlightEvent struct {
	Path      string              `json:"path"`
	Highlight *document.Highlight `json:"highlight,omitempty"`
}

func (h *Hub) EmitHighlighted(path string, hl document.Highlight) {
	h.emit("playback:highlight", HighlightEvent{Path: path, Highlight: &hl})
}

func (h *Hub) EmitHighlightCleared(path string) {
	h.emit("playback:highlight", HighlightEvent{Path: path})
}

func (h *Hub) EmitTerminalRun(command string) {
	h.emit("terminal:run", map[string]interface{}{"command": command})
}

func (h *Hub) EmitTerminalOutput(text string) {
	h.emit("terminal:output", map[string]interface{}{"text": text})
}

func (h *Hub) EmitTerminalClear() {
	h.emit("terminal:clear", nil)
}

func (h *Hub) EmitSeek(ms int64) {
	h.emit("playback:seek", map[string]interface{}{"timeMs": ms})
}

func (h *Hub) EmitReset() {
	h.emit("playback:reset", nil)
}

func (h *Hub) EmitComplete() {
	h.emit("playback:complete", nil)
}

// TimelineLoadedEvent announces a (re)loaded cast.
type TimelineLoadedEvent struct {
	Source     string `json:"source"`
	ActionLen  int    `json:"actionCount"`
	DurationMs int64  `json:"durationMs"`
	Fallback   bool   `json:"fallback"`
}

func (h *Hub) EmitTimelineLoaded(ev TimelineLoadedEvent) {
	h.emit("timeline:loaded", ev)
}
