// Package executor applies fired timeline actions to the document model,
// the typing animator, and the terminal sink. It behaves identically
// whether an action arrives live from the scheduler or replayed during a
// seek rebuild; batch mode only disables animation.
package executor

import (
	"log"

	"ghostcode/internal/document"
	"ghostcode/internal/timeline"
	"ghostcode/internal/typing"
)

// TerminalSink receives pre-scripted terminal actions verbatim. Commands
// are never executed.
type TerminalSink interface {
	Run(command string)
	Output(text string)
	Clear()
}

// Events is the executor's notification surface. Implementations must not
// mutate engine state; all mutation funnels through Execute and Reset.
type Events interface {
	FileCreated(path string)
	// FileOpened receives "" when no file is active.
	FileOpened(path string)
	CursorMoved(path string, pos timeline.Position, active bool)
	Highlighted(path string, h document.Highlight)
	HighlightCleared(path string)
	Typed(path string, chunk string, cursor timeline.Position)
}

// Executor owns the document store and typing animator for one playback
// session.
type Executor struct {
	docs *document.Store
	anim *typing.Animator
	term TerminalSink
	ev   Events

	batch   bool
	playing bool

	// highlight expiry deadlines in clock ms, keyed by path; a new
	// highlight for the same path cancels the pending removal.
	highlightExpiry map[string]int64
}

// New returns an executor with fresh state. Both term and ev may be nil;
// affected sub-steps are then skipped.
func New(term TerminalSink, ev Events) *Executor {
	return &Executor{
		docs:            document.NewStore(),
		anim:            typing.NewAnimator(),
		term:            term,
		ev:              ev,
		playing:         true,
		highlightExpiry: make(map[string]int64),
	}
}

// Documents exposes the owned store for read-only inspection.
func (e *Executor) Documents() *document.Store {
	return e.docs
}

// Execute applies one action at clock time nowMs. Live firing passes the
// current clock reading; batch replay passes the action's scheduled time
// so duration-based expiry stays consistent.
func (e *Executor) Execute(a timeline.Action, nowMs int64) {
	switch a.Kind {
	case timeline.KindCreateFile:
		e.createFile(a)
	case timeline.KindOpenFile:
		e.openFile(a.Path)
	case timeline.KindType:
		e.typeText(a, nowMs)
	case timeline.KindMoveCursor:
		e.moveCursor(a)
	case timeline.KindHighlightRange:
		e.highlight(a, nowMs)
	case timeline.KindTerminalRun:
		if e.term != nil {
			e.term.Run(a.Command)
		}
	case timeline.KindTerminalOutput:
		if e.term != nil {
			e.term.Output(a.Text)
		}
	case timeline.KindClearTerminal:
		if e.term != nil {
			e.term.Clear()
		}
	default:
		log.Printf("executor: skipping unknown action kind %q (id=%s)", a.Kind, a.EffectiveID())
	}
}

// Tick advances time-derived state: typing animations and highlight
// expiry. Driven by the player loop at the same cadence as the scheduler.
func (e *Executor) Tick(nowMs int64) {
	if e.playing {
		e.anim.Tick(nowMs)
	}
	for path, deadline := range e.highlightExpiry {
		if nowMs >= deadline {
			delete(e.highlightExpiry, path)
			if e.docs.ClearHighlight(path) && e.ev != nil {
				e.ev.HighlightCleared(path)
			}
		}
	}
}

// BeginBatch enters batch mode: every type action inserts atomically
// regardless of rate. Any running animation is flushed first so replayed
// state starts from settled text.
func (e *Executor) BeginBatch() {
	e.anim.FlushAll()
	e.batch = true
}

// EndBatch leaves batch mode.
func (e *Executor) EndBatch() {
	e.batch = false
}

// SetPlaying gates live typing animation. Pausing freezes progress without
// losing it.
func (e *Executor) SetPlaying(playing bool) {
	e.playing = playing
	if playing {
		e.anim.Resume()
	} else {
		e.anim.Suspend()
	}
}

// FlushTypingNow completes any running animation immediately, inserting
// the unemitted remainder. Called when the timeline completes so text is
// never left visibly truncated.
func (e *Executor) FlushTypingNow() {
	e.anim.FlushAll()
}

// Reset clears all buffers, cursors, highlights, and pending animations,
// and notifies that no file is open.
func (e *Executor) Reset() {
	e.anim.CancelAll()
	e.docs.Reset()
	e.highlightExpiry = make(map[string]int64)
	if e.ev != nil {
		e.ev.FileOpened("")
	}
}

func (e *Executor) createFile(a timeline.Action) {
	created := e.docs.Create(a.Path, a.Content)
	e.anim.Cancel(a.Path)
	if created && e.ev != nil {
		e.ev.FileCreated(a.Path)
	}
	e.openFile(a.Path)
}

func (e *Executor) openFile(path string) {
	e.docs.Ensure(path)
	e.docs.SetActive(path)
	if e.ev != nil {
		e.ev.FileOpened(path)
	}
}

func (e *Executor) typeText(a timeline.Action, nowMs int64) {
	e.docs.Ensure(a.Path)
	msPerChar, animated := a.MsPerChar()
	if animated && !e.batch {
		e.anim.Start(a.Path, a.Text, msPerChar, nowMs, e.emitChunk)
		return
	}
	e.anim.Cancel(a.Path)
	e.emitChunk(a.Path, a.Text)
}

// emitChunk inserts an animated (or atomic) chunk at the path's tracked
// cursor and notifies observers.
func (e *Executor) emitChunk(path, chunk string) {
	cursor := e.docs.Insert(path, chunk)
	if e.ev != nil {
		e.ev.Typed(path, chunk, cursor)
	}
}

func (e *Executor) moveCursor(a timeline.Action) {
	pos := e.docs.SetCursor(a.Path, timeline.Position{Line: a.Line, Column: a.Column})
	if e.ev != nil {
		e.ev.CursorMoved(a.Path, pos, e.docs.Active() == a.Path)
	}
}

func (e *Executor) highlight(a timeline.Action, nowMs int64) {
	if a.Range == nil {
		log.Printf("executor: highlight_range without range (id=%s), skipped", a.EffectiveID())
		return
	}
	e.docs.Ensure(a.Path)
	h := document.Highlight{Range: *a.Range, Color: a.Color}
	e.docs.SetHighlight(a.Path, h)
	// A new highlight cancels any pending removal for the same path.
	delete(e.highlightExpiry, a.Path)
	if a.DurationMs > 0 {
		e.highlightExpiry[a.Path] = nowMs + a.DurationMs
	}
	if e.ev != nil {
		e.ev.Highlighted(a.Path, h)
	}
}
