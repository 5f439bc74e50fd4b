// Package clock provides the authoritative time source all scheduling
// decisions derive from. Playback never runs on wall-clock timers; the
// scheduler compares scheduled times against a Clock reading at each tick.
package clock

import (
	"math"
	"sync"
	"time"
)

// Clock is the authoritative time source. NowMs is read every tick; SeekMs
// moves the clock (scheduler-initiated, never reported as a jump). Jump
// and ended observers fire for clock-native events: an external transport
// drag, and natural end of media.
type Clock interface {
	NowMs() int64
	SeekMs(ms int64)
	OnJump(fn func(ms int64))
	OnEnded(fn func())
}

// ValidMs reports whether a caller-supplied time value is a usable finite
// number. Non-finite seek targets are rejected without mutating state.
func ValidMs(ms float64) bool {
	return !math.IsNaN(ms) && !math.IsInf(ms, 0) && ms >= 0
}

// Manual is a hand-driven clock for tests and scripted playback. Time only
// moves when told to.
type Manual struct {
	mu      sync.Mutex
	ms      int64
	onJump  func(int64)
	onEnded func()
}

// NewManual returns a manual clock at 0.
func NewManual() *Manual {
	return &Manual{}
}

func (c *Manual) NowMs() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ms
}

func (c *Manual) SeekMs(ms int64) {
	c.mu.Lock()
	c.ms = ms
	c.mu.Unlock()
}

// Advance moves the clock forward by delta milliseconds.
func (c *Manual) Advance(delta int64) {
	c.mu.Lock()
	c.ms += delta
	c.mu.Unlock()
}

// Jump moves the clock and fires the jump observer, imitating an external
// transport drag.
func (c *Manual) Jump(ms int64) {
	c.mu.Lock()
	c.ms = ms
	fn := c.onJump
	c.mu.Unlock()
	if fn != nil {
		fn(ms)
	}
}

// End fires the ended observer.
func (c *Manual) End() {
	c.mu.Lock()
	fn := c.onEnded
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (c *Manual) OnJump(fn func(int64)) {
	c.mu.Lock()
	c.onJump = fn
	c.mu.Unlock()
}

func (c *Manual) OnEnded(fn func()) {
	c.mu.Lock()
	c.onEnded = fn
	c.mu.Unlock()
}

// jumpThresholdMs is how far a reported media position may deviate from
// the extrapolated one before it counts as an external jump rather than
// ordinary report jitter.
const jumpThresholdMs = 250

// Media tracks the playback position of the frontend audio element. The
// frontend pushes position reports; between reports the clock extrapolates
// with the local monotonic clock while playing. A report that lands far
// from the extrapolation is treated as a clock-native jump.
type Media struct {
	mu         sync.Mutex
	positionMs int64
	reportedAt time.Time
	playing    bool
	expectSeek bool
	onJump     func(int64)
	onEnded    func()
}

// NewMedia returns a media clock at 0, paused.
func NewMedia() *Media {
	return &Media{reportedAt: time.Now()}
}

func (c *Media) NowMs() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.extrapolate()
}

// extrapolate must be called with the lock held.
func (c *Media) extrapolate() int64 {
	if !c.playing {
		return c.positionMs
	}
	return c.positionMs + time.Since(c.reportedAt).Milliseconds()
}

// SeekMs moves the clock locally. The frontend mirrors the seek on its
// audio element; the next matching report is not treated as a jump.
func (c *Media) SeekMs(ms int64) {
	c.mu.Lock()
	c.positionMs = ms
	c.reportedAt = time.Now()
	c.expectSeek = true
	c.mu.Unlock()
}

// Report ingests a position report from the frontend audio element.
func (c *Media) Report(positionMs int64, playing bool) {
	c.mu.Lock()
	predicted := c.extrapolate()
	deviation := positionMs - predicted
	if deviation < 0 {
		deviation = -deviation
	}
	jumped := deviation > jumpThresholdMs && !c.expectSeek
	c.positionMs = positionMs
	c.reportedAt = time.Now()
	c.playing = playing
	c.expectSeek = false
	fn := c.onJump
	c.mu.Unlock()

	if jumped && fn != nil {
		fn(positionMs)
	}
}

// SetPlaying pauses or resumes extrapolation without changing position.
func (c *Media) SetPlaying(playing bool) {
	c.mu.Lock()
	c.positionMs = c.extrapolate()
	c.reportedAt = time.Now()
	c.playing = playing
	c.mu.Unlock()
}

// Playing reports whether the clock is advancing.
func (c *Media) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Ended signals natural end of media.
func (c *Media) Ended() {
	c.mu.Lock()
	c.playing = false
	c.positionMs = c.extrapolate()
	fn := c.onEnded
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (c *Media) OnJump(fn func(int64)) {
	c.mu.Lock()
	c.onJump = fn
	c.mu.Unlock()
}

func (c *Media) OnEnded(fn func()) {
	c.mu.Lock()
	c.onEnded = fn
	c.mu.Unlock()
}
