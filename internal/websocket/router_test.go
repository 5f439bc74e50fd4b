package websocket

import (
	"errors"
	"testing"
)

type fakeApp struct {
	lastSeek float64
}

func (f *fakeApp) Ping() string { return "pong" }

func (f *fakeApp) SeekTo(ms float64) error {
	if ms < 0 {
		return errors.New("negative seek")
	}
	f.lastSeek = ms
	return nil
}

func (f *fakeApp) Add(a, b int) int { return a + b }

func (f *fakeApp) Pair() (string, error) { return "value", nil }

func (f *fakeApp) unexported() {}

func TestRouterCall(t *testing.T) {
	app := &fakeApp{}
	r := NewRouter(app)

	result, err := r.Call("Ping", nil)
	if err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if result != "pong" {
		t.Errorf("Ping = %v", result)
	}

	// JSON numbers arrive as float64 and must coerce to int params
	result, err = r.Call("Add", []interface{}{float64(2), float64(3)})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if result != 5 {
		t.Errorf("Add = %v, want 5", result)
	}

	if _, err := r.Call("SeekTo", []interface{}{float64(1500)}); err != nil {
		t.Fatalf("SeekTo failed: %v", err)
	}
	if app.lastSeek != 1500 {
		t.Errorf("seek not applied: %v", app.lastSeek)
	}
}

func TestRouterErrorReturn(t *testing.T) {
	r := NewRouter(&fakeApp{})

	if _, err := r.Call("SeekTo", []interface{}{float64(-1)}); err == nil {
		t.Error("method error swallowed")
	}

	result, err := r.Call("Pair", nil)
	if err != nil {
		t.Fatalf("Pair failed: %v", err)
	}
	if result != "value" {
		t.Errorf("Pair = %v", result)
	}
}

func TestRouterRejectsBadCalls(t *testing.T) {
	r := NewRouter(&fakeApp{})

	if _, err := r.Call("Nope", nil); err == nil {
		t.Error("unknown method accepted")
	}
	if _, err := r.Call("unexported", nil); err == nil {
		t.Error("unexported method exposed")
	}
	if _, err := r.Call("Add", []interface{}{float64(1)}); err == nil {
		t.Error("arity mismatch accepted")
	}
	if _, err := r.Call("Ping", []interface{}{"extra"}); err == nil {
		t.Error("extra param accepted")
	}
	if _, err := r.Call("SeekTo", []interface{}{[]interface{}{}}); err == nil {
		t.Error("unconvertible param accepted")
	}
}
