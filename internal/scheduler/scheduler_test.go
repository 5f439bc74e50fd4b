package scheduler

import (
	"testing"

	"ghostcode/internal/clock"
	"ghostcode/internal/timeline"
)

type firing struct {
	id   string
	meta timeline.FiredMeta
}

func newScheduler(t *testing.T, actions []timeline.Action, tolerance int64) (*Scheduler, *clock.Manual, *[]firing) {
	t.Helper()
	clk := clock.NewManual()
	s := New(clk, tolerance)
	fired := &[]firing{}
	s.OnFire(func(a timeline.Action, meta timeline.FiredMeta) {
		*fired = append(*fired, firing{id: a.EffectiveID(), meta: meta})
	})
	s.SetActions(actions)
	return s, clk, fired
}

func TestScheduler_ExactlyOnce(t *testing.T) {
	actions := []timeline.Action{
		{Kind: timeline.KindOpenFile, TimeMs: 0, ID: "a"},
		{Kind: timeline.KindType, TimeMs: 100, ID: "b"},
		{Kind: timeline.KindType, TimeMs: 200, ID: "c"},
	}
	s, clk, fired := newScheduler(t, actions, 16)
	s.Start()

	// many ticks, including repeats at the same clock reading
	for _, now := range []int64{0, 0, 50, 100, 100, 150, 250, 250} {
		clk.SeekMs(now)
		s.Tick(now)
	}

	if len(*fired) != 3 {
		t.Fatalf("fired %d times, want 3: %+v", len(*fired), *fired)
	}
	for i, want := range []string{"a", "b", "c"} {
		if (*fired)[i].id != want {
			t.Errorf("fired[%d] = %s, want %s", i, (*fired)[i].id, want)
		}
	}
}

func TestScheduler_CatchUpBatch(t *testing.T) {
	actions := []timeline.Action{
		{Kind: timeline.KindOpenFile, TimeMs: 0, ID: "a"},
		{Kind: timeline.KindType, TimeMs: 400, ID: "b"},
		{Kind: timeline.KindType, TimeMs: 800, ID: "c"},
	}
	s, clk, fired := newScheduler(t, actions, 16)
	s.Start()

	// a single delayed tick observes the clock already at 900
	clk.SeekMs(900)
	s.Tick(900)

	if len(*fired) != 3 {
		t.Fatalf("fired %d, want all 3 in one catch-up batch", len(*fired))
	}
	for i, f := range *fired {
		if f.meta.DriftMs < 0 {
			t.Errorf("fired[%d] drift %d, want >= 0", i, f.meta.DriftMs)
		}
	}
	if (*fired)[0].id != "a" || (*fired)[1].id != "b" || (*fired)[2].id != "c" {
		t.Errorf("catch-up order wrong: %+v", *fired)
	}
}

func TestScheduler_TieBreakStability(t *testing.T) {
	actions := []timeline.Action{
		{Kind: timeline.KindTerminalRun, TimeMs: 1000, ID: "first"},
		{Kind: timeline.KindTerminalOutput, TimeMs: 1000, ID: "second"},
	}
	s, clk, fired := newScheduler(t, actions, 16)
	s.Start()

	clk.SeekMs(5000)
	s.Tick(5000)

	if len(*fired) != 2 || (*fired)[0].id != "first" || (*fired)[1].id != "second" {
		t.Errorf("tie order: %+v", *fired)
	}
}

func TestScheduler_ToleranceFiresEarly(t *testing.T) {
	actions := []timeline.Action{{Kind: timeline.KindType, TimeMs: 110, ID: "x"}}
	s, clk, fired := newScheduler(t, actions, 16)
	s.Start()

	// 110 - 16 <= 100: fires within tolerance
	clk.SeekMs(100)
	s.Tick(100)
	if len(*fired) != 1 {
		t.Fatalf("action within tolerance did not fire")
	}
	if (*fired)[0].meta.DriftMs != -10 {
		t.Errorf("drift = %d, want -10", (*fired)[0].meta.DriftMs)
	}
}

func TestScheduler_FutureActionWaits(t *testing.T) {
	actions := []timeline.Action{{Kind: timeline.KindType, TimeMs: 200, ID: "x"}}
	s, clk, fired := newScheduler(t, actions, 16)
	s.Start()

	clk.SeekMs(100)
	s.Tick(100)
	if len(*fired) != 0 {
		t.Errorf("future action fired early")
	}
}

func TestScheduler_CompletionOnce(t *testing.T) {
	actions := []timeline.Action{{Kind: timeline.KindType, TimeMs: 100, ID: "x"}}
	s, clk, fired := newScheduler(t, actions, 16)

	completions := 0
	s.OnComplete(func() { completions++ })
	s.Start()

	clk.SeekMs(500)
	s.Tick(500)
	s.Tick(600) // scheduler already stopped
	if completions != 1 {
		t.Fatalf("completions = %d, want 1", completions)
	}
	if s.Running() {
		t.Error("scheduler should stop after completion")
	}
	_ = fired
}

func TestScheduler_StopKeepsPointer(t *testing.T) {
	actions := []timeline.Action{
		{Kind: timeline.KindType, TimeMs: 0, ID: "a"},
		{Kind: timeline.KindType, TimeMs: 1000, ID: "b"},
	}
	s, clk, fired := newScheduler(t, actions, 16)
	s.Start()

	clk.SeekMs(10)
	s.Tick(10)
	s.Stop()
	s.Stop() // idempotent

	if s.Pointer() != 1 {
		t.Errorf("pointer = %d, want 1", s.Pointer())
	}

	// stopped scheduler must not fire
	clk.SeekMs(2000)
	s.Tick(2000)
	if len(*fired) != 1 {
		t.Errorf("stopped scheduler fired: %+v", *fired)
	}
}

func TestScheduler_SeekToNotifiesObserver(t *testing.T) {
	actions := []timeline.Action{
		{Kind: timeline.KindType, TimeMs: 0, ID: "a"},
		{Kind: timeline.KindType, TimeMs: 500, ID: "b"},
		{Kind: timeline.KindType, TimeMs: 1000, ID: "c"},
	}
	s, clk, _ := newScheduler(t, actions, 16)

	var seeks []int64
	s.OnSeek(func(ms int64) { seeks = append(seeks, ms) })

	s.SeekTo(700)

	if clk.NowMs() != 700 {
		t.Errorf("clock = %d, want 700", clk.NowMs())
	}
	if len(seeks) != 1 || seeks[0] != 700 {
		t.Errorf("seek observer calls = %v", seeks)
	}
	// pointer lands on the first action at or after 700
	if s.Pointer() != 2 {
		t.Errorf("pointer = %d, want 2", s.Pointer())
	}
}

func TestScheduler_PrimeAfterSkipsCovered(t *testing.T) {
	actions := []timeline.Action{
		{Kind: timeline.KindType, TimeMs: 0, ID: "a"},
		{Kind: timeline.KindType, TimeMs: 500, ID: "b"},
		{Kind: timeline.KindType, TimeMs: 510, ID: "in-tolerance"},
		{Kind: timeline.KindType, TimeMs: 1000, ID: "c"},
	}
	s, clk, fired := newScheduler(t, actions, 16)

	s.PrimeAfter(500)
	s.Start()

	// replayed actions (<= 500+16) are not re-fired live
	clk.SeekMs(600)
	s.Tick(600)
	if len(*fired) != 0 {
		t.Fatalf("primed-past actions re-fired: %+v", *fired)
	}

	clk.SeekMs(1000)
	s.Tick(1000)
	if len(*fired) != 1 || (*fired)[0].id != "c" {
		t.Errorf("fired = %+v, want just c", *fired)
	}
}

func TestScheduler_ClockJumpResyncs(t *testing.T) {
	actions := []timeline.Action{
		{Kind: timeline.KindType, TimeMs: 0, ID: "a"},
		{Kind: timeline.KindType, TimeMs: 1000, ID: "b"},
	}
	s, clk, _ := newScheduler(t, actions, 16)

	var seeks []int64
	s.OnSeek(func(ms int64) { seeks = append(seeks, ms) })

	// an external transport drag moves the clock without SeekTo
	clk.Jump(950)

	if len(seeks) != 1 || seeks[0] != 950 {
		t.Errorf("jump did not notify seek observer: %v", seeks)
	}
	if s.Pointer() != 1 {
		t.Errorf("pointer after jump = %d, want 1", s.Pointer())
	}
}

func TestScheduler_EndedForcesCompletion(t *testing.T) {
	actions := []timeline.Action{
		{Kind: timeline.KindType, TimeMs: 0, ID: "a"},
		{Kind: timeline.KindType, TimeMs: 99_999, ID: "never"},
	}
	s, clk, _ := newScheduler(t, actions, 16)

	completions := 0
	s.OnComplete(func() { completions++ })
	s.Start()

	clk.End()

	if completions != 1 {
		t.Fatalf("completions = %d, want 1", completions)
	}
	if s.Pointer() != len(actions) {
		t.Errorf("pointer = %d, want end", s.Pointer())
	}
}

func TestScheduler_ResetNotifiesAndRewinds(t *testing.T) {
	actions := []timeline.Action{{Kind: timeline.KindType, TimeMs: 100, ID: "a"}}
	s, clk, _ := newScheduler(t, actions, 16)

	resets := 0
	s.OnReset(func() { resets++ })

	s.Start()
	clk.SeekMs(500)
	s.Tick(500)

	clk.SeekMs(0)
	s.Reset()

	if resets != 1 {
		t.Errorf("resets = %d", resets)
	}
	if s.Running() {
		t.Error("reset should stop the scheduler")
	}
	if s.Pointer() != 0 {
		t.Errorf("pointer = %d, want 0", s.Pointer())
	}
}

func TestScheduler_SetActionsSortsCopy(t *testing.T) {
	original := []timeline.Action{
		{Kind: timeline.KindType, TimeMs: 500, ID: "b"},
		{Kind: timeline.KindType, TimeMs: 0, ID: "a"},
	}
	s, _, fired := newScheduler(t, original, 16)
	s.Start()
	s.Tick(1000)

	if (*fired)[0].id != "a" {
		t.Errorf("actions not sorted: %+v", *fired)
	}
	// caller's slice untouched
	if original[0].ID != "b" {
		t.Error("SetActions mutated the caller's slice")
	}
}

func TestScheduler_EmptyTimelineCompletesImmediately(t *testing.T) {
	s, _, _ := newScheduler(t, nil, 16)
	completions := 0
	s.OnComplete(func() { completions++ })
	s.Start()
	s.Tick(0)
	if completions != 1 {
		t.Errorf("empty timeline completions = %d, want 1", completions)
	}
}
