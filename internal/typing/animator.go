// Package typing animates text insertion: a per-path sub-scheduler that
// emits characters of a pending insert over a derived duration. It is a
// pure state machine advanced by Tick(nowMs), so tests and the player loop
// drive it the same way.
package typing

// EmitFunc receives each emitted chunk for a path. Chunks concatenate to
// the animation's full text when it runs to completion.
type EmitFunc func(path, chunk string)

type animation struct {
	path      string
	text      []rune
	emitted   int
	msPerChar float64
	budgetMs  float64
	lastMs    int64
	baselined bool
	emit      EmitFunc
}

// Animator tracks at most one active animation per path.
type Animator struct {
	active    map[string]*animation
	suspended bool
}

// NewAnimator returns an empty animator.
func NewAnimator() *Animator {
	return &Animator{active: make(map[string]*animation)}
}

// Start begins animating text for path at msPerChar milliseconds per
// character. A previous animation for the same path is canceled and its
// unemitted remainder discarded.
func (a *Animator) Start(path, text string, msPerChar float64, nowMs int64, emit EmitFunc) {
	if msPerChar <= 0 {
		msPerChar = 1
	}
	a.active[path] = &animation{
		path:      path,
		text:      []rune(text),
		msPerChar: msPerChar,
		lastMs:    nowMs,
		baselined: true,
		emit:      emit,
	}
}

// Tick advances every active animation to nowMs, emitting the characters
// whose time has come. Elapsed clock time accumulates into a budget so the
// perceived rate matches the target even when ticks are coarser than the
// per-character interval.
func (a *Animator) Tick(nowMs int64) {
	if a.suspended {
		return
	}
	for path, an := range a.active {
		if !an.baselined {
			// First tick after a resume only records the baseline.
			an.lastMs = nowMs
			an.baselined = true
			continue
		}
		delta := nowMs - an.lastMs
		an.lastMs = nowMs
		if delta <= 0 {
			continue
		}
		an.budgetMs += float64(delta)
		n := int(an.budgetMs / an.msPerChar)
		if n <= 0 {
			continue
		}
		remaining := len(an.text) - an.emitted
		if n > remaining {
			n = remaining
		}
		an.budgetMs -= float64(n) * an.msPerChar
		chunk := string(an.text[an.emitted : an.emitted+n])
		an.emitted += n
		done := an.emitted == len(an.text)
		if done {
			delete(a.active, path)
		}
		if an.emit != nil {
			an.emit(path, chunk)
		}
	}
}

// Flush immediately emits the unemitted remainder for path and removes the
// animation.
func (a *Animator) Flush(path string) {
	an, ok := a.active[path]
	if !ok {
		return
	}
	delete(a.active, path)
	if an.emitted < len(an.text) && an.emit != nil {
		an.emit(path, string(an.text[an.emitted:]))
	}
}

// FlushAll flushes every active animation.
func (a *Animator) FlushAll() {
	for path := range a.active {
		a.Flush(path)
	}
}

// Cancel drops the animation for path without emitting its remainder.
func (a *Animator) Cancel(path string) {
	delete(a.active, path)
}

// CancelAll drops every active animation.
func (a *Animator) CancelAll() {
	a.active = make(map[string]*animation)
}

// Suspend freezes animation progress. Emitted counts are preserved.
func (a *Animator) Suspend() {
	a.suspended = true
}

// Resume lets animations advance again. Each animation re-baselines on the
// next tick so suspended wall time is not burst-emitted.
func (a *Animator) Resume() {
	if !a.suspended {
		return
	}
	a.suspended = false
	for _, an := range a.active {
		an.baselined = false
	}
}

// Active reports whether path has a running animation.
func (a *Animator) Active(path string) bool {
	_, ok := a.active[path]
	return ok
}

// Len returns the number of active animations.
func (a *Animator) Len() int {
	return len(a.active)
}
