// Package scheduler advances a pointer through a sorted action list in
// lockstep with the authoritative clock. Firing is strictly pull-based:
// each Tick compares pointer-indexed scheduled times against the clock
// reading, so a delayed tick observes an advanced clock and fires every
// action that fell behind in one catch-up batch, exactly once and in order.
package scheduler

import (
	"sort"

	"ghostcode/internal/clock"
	"ghostcode/internal/timeline"
)

// DefaultToleranceMs absorbs sub-frame rounding: an action scheduled at or
// slightly after the current frame's clock reading fires in that frame
// instead of waiting for the next one. One frame at 60fps.
const DefaultToleranceMs = 16

// FireFunc receives each fired action with its drift telemetry.
type FireFunc func(a timeline.Action, meta timeline.FiredMeta)

// Scheduler maps clock time to fired actions. It is not goroutine-safe;
// the player serializes all access.
type Scheduler struct {
	clk         clock.Clock
	actions     []timeline.Action
	pointer     int
	toleranceMs int64
	running     bool
	completed   bool

	onFire     FireFunc
	onComplete func()
	onSeek     func(ms int64)
	onReset    func()
}

// New returns a scheduler bound to the given clock. The scheduler
// subscribes to the clock's jump and ended events: a jump re-syncs the
// pointer exactly as SeekTo does, end of media forces completion.
func New(clk clock.Clock, toleranceMs int64) *Scheduler {
	if toleranceMs <= 0 {
		toleranceMs = DefaultToleranceMs
	}
	s := &Scheduler{clk: clk, toleranceMs: toleranceMs}
	clk.OnJump(func(ms int64) {
		s.resync(ms)
	})
	clk.OnEnded(func() {
		s.finish()
	})
	return s
}

// OnFire sets the action-fired callback.
func (s *Scheduler) OnFire(fn FireFunc) { s.onFire = fn }

// OnComplete sets the completion callback, raised exactly once per run
// when the pointer reaches the end.
func (s *Scheduler) OnComplete(fn func()) { s.onComplete = fn }

// OnSeek sets the seek observer. It fires after the pointer has been
// repositioned; replaying covered actions is the observer's concern.
func (s *Scheduler) OnSeek(fn func(ms int64)) { s.onSeek = fn }

// OnReset sets the reset observer, used by the executor to clear derived
// state.
func (s *Scheduler) OnReset(fn func()) { s.onReset = fn }

// SetActions replaces the action set with a sorted copy and repositions
// the pointer to the current clock reading.
func (s *Scheduler) SetActions(actions []timeline.Action) {
	s.actions = make([]timeline.Action, len(actions))
	copy(s.actions, actions)
	timeline.Sort(s.actions)
	s.completed = false
	s.pointer = s.indexAt(s.clk.NowMs())
}

// Actions returns the sorted action list.
func (s *Scheduler) Actions() []timeline.Action {
	return s.actions
}

// Start begins firing on subsequent ticks. No-op when already running.
func (s *Scheduler) Start() {
	if s.running {
		return
	}
	s.running = true
	s.completed = false
}

// Stop halts firing without touching the pointer. Safe to call repeatedly.
func (s *Scheduler) Stop() {
	s.running = false
}

// Running reports whether ticks currently fire actions.
func (s *Scheduler) Running() bool {
	return s.running
}

// Reset stops firing, rewinds the pointer to the clock's current position,
// and notifies the reset observer.
func (s *Scheduler) Reset() {
	s.running = false
	s.completed = false
	s.pointer = s.indexAt(s.clk.NowMs())
	if s.onReset != nil {
		s.onReset()
	}
}

// SeekTo moves the authoritative clock to ms and re-syncs the pointer,
// then notifies the seek observer. Replay of covered actions is the
// caller's responsibility, paired with PrimeAfter.
func (s *Scheduler) SeekTo(ms int64) {
	s.clk.SeekMs(ms)
	s.resync(ms)
}

// resync repositions the pointer for a clock that moved to ms outside the
// tick loop, and notifies the seek observer.
func (s *Scheduler) resync(ms int64) {
	s.pointer = s.indexAt(ms)
	s.completed = false
	if s.onSeek != nil {
		s.onSeek(ms)
	}
}

// PrimeAfter moves the pointer past every action with
// timeMs <= ms + tolerance. Called after an external batch replay has
// already applied those actions, so they are not re-fired live.
func (s *Scheduler) PrimeAfter(ms int64) {
	s.pointer = sort.Search(len(s.actions), func(i int) bool {
		return s.actions[i].TimeMs > ms+s.toleranceMs
	})
}

// Pointer returns the index of the next not-yet-fired action.
func (s *Scheduler) Pointer() int {
	return s.pointer
}

// Tick fires every due action at the clock reading now. Actions fire in
// list order; ties share a tick. When the pointer reaches the end the
// completion callback is raised once and the scheduler stops.
func (s *Scheduler) Tick(nowMs int64) {
	if !s.running {
		return
	}
	for s.pointer < len(s.actions) {
		a := s.actions[s.pointer]
		if a.TimeMs-s.toleranceMs > nowMs {
			return
		}
		s.pointer++
		if s.onFire != nil {
			s.onFire(a, timeline.Meta(a.TimeMs, nowMs))
		}
	}
	s.finish()
}

// finish forces the pointer to the end and raises completion once.
func (s *Scheduler) finish() {
	s.pointer = len(s.actions)
	if s.completed {
		return
	}
	s.completed = true
	s.running = false
	if s.onComplete != nil {
		s.onComplete()
	}
}

// indexAt returns the index of the first action scheduled at or after ms.
func (s *Scheduler) indexAt(ms int64) int {
	return sort.Search(len(s.actions), func(i int) bool {
		return s.actions[i].TimeMs >= ms
	})
}
