// Package timeline defines the playback action model: the tagged action
// records a cast is made of, the drift telemetry attached to fired actions,
// and the ordering rule the scheduler relies on.
package timeline

import (
	"fmt"
	"sort"
)

// Kind discriminates the action union.
type Kind string

const (
	KindCreateFile     Kind = "create_file"
	KindOpenFile       Kind = "open_file"
	KindType           Kind = "type"
	KindMoveCursor     Kind = "move_cursor"
	KindHighlightRange Kind = "highlight_range"
	KindTerminalRun    Kind = "terminal_run"
	KindTerminalOutput Kind = "terminal_output"
	KindClearTerminal  Kind = "clear_terminal"
)

// Known reports whether k is a recognized action kind. Unknown kinds are
// kept in the timeline and skipped with a warning at execution time.
func (k Kind) Known() bool {
	switch k {
	case KindCreateFile, KindOpenFile, KindType, KindMoveCursor,
		KindHighlightRange, KindTerminalRun, KindTerminalOutput, KindClearTerminal:
		return true
	}
	return false
}

// Position is a 1-based line/column pair.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range spans from Start to End, both 1-based and inclusive.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Action is one timeline entry. Only the fields matching Kind are
// meaningful; the rest stay at their zero value.
type Action struct {
	Kind   Kind   `json:"kind"`
	TimeMs int64  `json:"timeMs"`
	ID     string `json:"id,omitempty"`

	// create_file / open_file / type / move_cursor / highlight_range
	Path string `json:"path,omitempty"`

	// create_file
	Content string `json:"content,omitempty"`

	// type / terminal_output
	Text string `json:"text,omitempty"`

	// type: charactersPerSecond is the preferred rate specifier; delayMs is
	// the legacy per-character delay. When both are set charactersPerSecond
	// wins.
	CharactersPerSecond float64 `json:"charactersPerSecond,omitempty"`
	DelayMs             float64 `json:"delayMs,omitempty"`

	// move_cursor
	Line   int `json:"line,omitempty"`
	Column int `json:"column,omitempty"`

	// highlight_range
	Range      *Range `json:"range,omitempty"`
	DurationMs int64  `json:"durationMs,omitempty"`
	Color      string `json:"color,omitempty"`

	// terminal_run
	Command string `json:"command,omitempty"`
}

// EffectiveID returns the action's stable key: the explicit ID when set,
// otherwise the kind-timeMs composite.
func (a *Action) EffectiveID() string {
	if a.ID != "" {
		return a.ID
	}
	return fmt.Sprintf("%s-%d", a.Kind, a.TimeMs)
}

// MsPerChar resolves the typing rate to a per-character interval in
// milliseconds. The second return is false when the action carries no rate
// at all, in which case the text is inserted atomically.
func (a *Action) MsPerChar() (float64, bool) {
	if a.CharactersPerSecond > 0 {
		return 1000.0 / a.CharactersPerSecond, true
	}
	if a.DelayMs > 0 {
		return a.DelayMs, true
	}
	return 0, false
}

// FiredMeta is the observational record attached to every fired action.
// It never feeds back into firing decisions.
type FiredMeta struct {
	ScheduledTimeMs int64 `json:"scheduledTimeMs"`
	ActualTimeMs    int64 `json:"actualTimeMs"`
	DriftMs         int64 `json:"driftMs"`
}

// Meta builds the drift record for an action fired at nowMs.
func Meta(scheduledMs, nowMs int64) FiredMeta {
	return FiredMeta{
		ScheduledTimeMs: scheduledMs,
		ActualTimeMs:    nowMs,
		DriftMs:         nowMs - scheduledMs,
	}
}

// Sort orders actions ascending by TimeMs. The sort is stable: actions
// sharing a TimeMs keep their original relative order, which is also the
// order they fire in within one tick.
func Sort(actions []Action) {
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].TimeMs < actions[j].TimeMs
	})
}

// Duration returns the TimeMs of the last action, or 0 for an empty list.
// The list must already be sorted.
func Duration(actions []Action) int64 {
	if len(actions) == 0 {
		return 0
	}
	return actions[len(actions)-1].TimeMs
}
