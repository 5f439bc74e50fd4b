// Package player glues one playback session together: the authoritative
// clock, the timeline scheduler, and the action executor, driven by a
// single run loop. Every entry point serializes on the session mutex, so
// the document model and scheduler pointer have exactly one writer.
package player

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"ghostcode/internal/clock"
	"ghostcode/internal/document"
	"ghostcode/internal/eventhub"
	"ghostcode/internal/executor"
	"ghostcode/internal/scheduler"
	"ghostcode/internal/timeline"
)

// DefaultTickInterval is the run loop cadence, roughly one 60fps frame.
const DefaultTickInterval = 16 * time.Millisecond

// ErrBadTime rejects non-finite or negative caller-supplied time values.
var ErrBadTime = errors.New("player: invalid time value")

// Options tune a session.
type Options struct {
	TickInterval time.Duration
	ToleranceMs  int64
}

// Player is one playback session.
type Player struct {
	mu    sync.Mutex
	clk   clock.Clock
	sched *scheduler.Scheduler
	exec  *executor.Executor
	hub   *eventhub.Hub

	source   string
	fallback bool
	tick     time.Duration
	tol      int64

	done     chan struct{}
	stopOnce sync.Once
}

// Status is a read-only snapshot of the session.
type Status struct {
	TimeMs      int64    `json:"timeMs"`
	Playing     bool     `json:"playing"`
	Pointer     int      `json:"pointer"`
	ActionCount int      `json:"actionCount"`
	DurationMs  int64    `json:"durationMs"`
	Source      string   `json:"source"`
	Fallback    bool     `json:"fallback"`
	ActiveFile  string   `json:"activeFile"`
	Files       []string `json:"files"`
}

// New builds a session around the given clock and hub, wires the
// scheduler and executor callbacks, and starts the run loop.
func New(clk clock.Clock, hub *eventhub.Hub, opts Options) *Player {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.ToleranceMs <= 0 {
		opts.ToleranceMs = scheduler.DefaultToleranceMs
	}

	p := &Player{
		clk:  clk,
		hub:  hub,
		tick: opts.TickInterval,
		tol:  opts.ToleranceMs,
		done: make(chan struct{}),
	}
	p.exec = executor.New(&terminalSink{hub: hub}, &hubEvents{hub: hub})
	p.sched = scheduler.New(clk, opts.ToleranceMs)

	p.sched.OnFire(func(a timeline.Action, meta timeline.FiredMeta) {
		hub.EmitActionFired(a, meta)
		p.exec.Execute(a, meta.ActualTimeMs)
	})
	p.sched.OnComplete(func() {
		p.exec.FlushTypingNow()
		hub.EmitComplete()
	})
	p.sched.OnSeek(func(ms int64) {
		p.rebuild(ms)
		hub.EmitSeek(ms)
	})
	p.sched.OnReset(func() {
		p.exec.Reset()
		hub.EmitReset()
	})

	go p.loop()
	return p
}

// loop drives the scheduler and executor from the clock at the tick
// cadence. All mutation happens with the session mutex held.
func (p *Player) loop() {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.mu.Lock()
			p.step()
			p.mu.Unlock()
		}
	}
}

// step is one cooperative tick. Callers hold the mutex.
func (p *Player) step() {
	now := p.clk.NowMs()
	p.sched.Tick(now)
	p.exec.Tick(now)
}

// Close stops the run loop. Idempotent.
func (p *Player) Close() {
	p.stopOnce.Do(func() { close(p.done) })
}

// Load replaces the timeline. The pointer lands at the clock's current
// position; state is rebuilt to that position so a mid-playback reload
// (hot reload while authoring) resumes seamlessly.
func (p *Player) Load(actions []timeline.Action, source string, isFallback bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.source = source
	p.fallback = isFallback
	p.sched.SetActions(actions)
	p.rebuild(p.clk.NowMs())
	p.hub.EmitTimelineLoaded(eventhub.TimelineLoadedEvent{
		Source:     source,
		ActionLen:  len(actions),
		DurationMs: timeline.Duration(p.sched.Actions()),
		Fallback:   isFallback,
	})
}

// LoadFile loads a timeline file, substituting the built-in fallback cast
// when the file is missing or malformed. The load error is returned for
// surfacing, but the player is always left with a playable timeline.
func (p *Player) LoadFile(path string) error {
	actions, err := timeline.Load(path)
	if err != nil {
		log.Printf("player: %v, substituting fallback timeline", err)
		p.Load(timeline.Fallback(), path, true)
		return fmt.Errorf("load %s: %w", path, err)
	}
	p.Load(actions, path, false)
	return nil
}

// Source returns the path the current timeline was loaded from.
func (p *Player) Source() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

// Play starts firing. No-op when already playing.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exec.SetPlaying(true)
	p.sched.Start()
	if mc, ok := p.clk.(*clock.Media); ok {
		mc.SetPlaying(true)
	}
}

// Pause halts firing and freezes any typing animation in place.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sched.Stop()
	p.exec.SetPlaying(false)
	if mc, ok := p.clk.(*clock.Media); ok {
		mc.SetPlaying(false)
	}
}

// Reset rewinds the session to the clock's current position and clears all
// derived state.
func (p *Player) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sched.Reset()
}

// SeekTo moves the clock to ms and rebuilds state at that position. The
// running/paused state is preserved across the seek.
func (p *Player) SeekTo(ms float64) error {
	if !clock.ValidMs(ms) {
		return fmt.Errorf("%w: %v", ErrBadTime, ms)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sched.SeekTo(int64(ms))
	return nil
}

// ReportMediaTime ingests a position report from the frontend audio
// element. A report that deviates from the extrapolated position is a
// clock-native jump and triggers the same rebuild as a seek.
func (p *Player) ReportMediaTime(positionMs float64, playing bool) error {
	if !clock.ValidMs(positionMs) {
		return fmt.Errorf("%w: %v", ErrBadTime, positionMs)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	mc, ok := p.clk.(*clock.Media)
	if !ok {
		return nil
	}
	mc.Report(int64(positionMs), playing)
	if playing && !p.sched.Running() {
		p.exec.SetPlaying(true)
		p.sched.Start()
	} else if !playing && p.sched.Running() {
		p.sched.Stop()
		p.exec.SetPlaying(false)
	}
	return nil
}

// MediaEnded signals natural end of the narration audio. The scheduler
// forces the pointer to the end and raises completion once.
func (p *Player) MediaEnded() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if mc, ok := p.clk.(*clock.Media); ok {
		mc.Ended()
	}
}

// Status snapshots the session.
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	docs := p.exec.Documents()
	return Status{
		TimeMs:      p.clk.NowMs(),
		Playing:     p.sched.Running(),
		Pointer:     p.sched.Pointer(),
		ActionCount: len(p.sched.Actions()),
		DurationMs:  timeline.Duration(p.sched.Actions()),
		Source:      p.source,
		Fallback:    p.fallback,
		ActiveFile:  docs.Active(),
		Files:       docs.Paths(),
	}
}

// FileContent returns the buffer content for path, for frontend pulls
// after a rebuild.
func (p *Player) FileContent(path string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b := p.exec.Documents().Get(path)
	if b == nil {
		return "", false
	}
	return b.Content, true
}

// rebuild reconstructs document state at target by batch-replaying every
// action the scheduler will not re-fire, then priming the pointer past
// them. The replay bound matches PrimeAfter's tolerance so no action is
// lost between the two. Callers hold the mutex.
func (p *Player) rebuild(target int64) {
	p.exec.Reset()
	p.exec.BeginBatch()
	for _, a := range p.sched.Actions() {
		if a.TimeMs > target+p.tol {
			break
		}
		p.exec.Execute(a, a.TimeMs)
	}
	p.exec.EndBatch()
	// Expire highlights whose window closed before the target.
	p.exec.Tick(target)
	p.sched.PrimeAfter(target)
}

// terminalSink forwards pre-scripted terminal actions to the hub.
type terminalSink struct {
	hub *eventhub.Hub
}

func (t *terminalSink) Run(command string) { t.hub.EmitTerminalRun(command) }
func (t *terminalSink) Output(text string) { t.hub.EmitTerminalOutput(text) }
func (t *terminalSink) Clear()             { t.hub.EmitTerminalClear() }

// hubEvents adapts executor notifications onto the hub.
type hubEvents struct {
	hub *eventhub.Hub
}

func (h *hubEvents) FileCreated(path string) { h.hub.EmitFileCreated(path) }
func (h *hubEvents) FileOpened(path string)  { h.hub.EmitFileOpened(path) }

func (h *hubEvents) CursorMoved(path string, pos timeline.Position, active bool) {
	h.hub.EmitCursorMoved(path, pos, active)
}

func (h *hubEvents) Highlighted(path string, hl document.Highlight) {
	h.hub.EmitHighlighted(path, hl)
}

func (h *hubEvents) HighlightCleared(path string) {
	h.hub.EmitHighlightCleared(path)
}

func (h *hubEvents) Typed(path, chunk string, cursor timeline.Position) {
	h.hub.EmitTyped(path, chunk, cursor)
}
