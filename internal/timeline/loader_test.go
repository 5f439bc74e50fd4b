package timeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParse_Valid(t *testing.T) {
	doc := `{
		"actions": [
			{"kind": "type", "timeMs": 900, "path": "main.go", "text": "x", "charactersPerSecond": 40},
			{"kind": "create_file", "timeMs": 0, "path": "main.go"},
			{"kind": "terminal_run", "timeMs": 2000, "command": "go test"}
		]
	}`

	actions, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(actions) != 3 {
		t.Fatalf("got %d actions, want 3", len(actions))
	}
	// sorted ascending by timeMs
	if actions[0].Kind != KindCreateFile || actions[2].Kind != KindTerminalRun {
		t.Errorf("unexpected order: %v, %v, %v", actions[0].Kind, actions[1].Kind, actions[2].Kind)
	}
}

func TestParse_MissingActions(t *testing.T) {
	for _, doc := range []string{`{}`, `{"actions": 42}`, `not json at all`, `{"actions": {"kind":"type"}}`} {
		if _, err := Parse([]byte(doc)); !errors.Is(err, ErrNoActions) {
			t.Errorf("Parse(%q) err = %v, want ErrNoActions", doc, err)
		}
	}
}

func TestParse_SkipsMalformedElements(t *testing.T) {
	doc := `{
		"actions": [
			{"kind": "open_file", "timeMs": 100, "path": "a.go"},
			{"timeMs": 200},
			{"kind": "type", "timeMs": -5, "text": "bad"},
			{"kind": "type", "timeMs": "nope"},
			{"kind": "clear_terminal", "timeMs": 300}
		]
	}`

	actions, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(actions) != 2 {
		t.Fatalf("got %d actions, want 2 (malformed skipped)", len(actions))
	}
	if actions[0].Kind != KindOpenFile || actions[1].Kind != KindClearTerminal {
		t.Errorf("wrong survivors: %v, %v", actions[0].Kind, actions[1].Kind)
	}
}

func TestParse_KeepsUnknownKinds(t *testing.T) {
	doc := `{"actions": [{"kind": "hologram", "timeMs": 50}]}`
	actions, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(actions) != 1 || actions[0].Kind.Known() {
		t.Errorf("unknown kind should survive parsing for the executor to skip")
	}
}

func TestParse_DedupesDefaultIDs(t *testing.T) {
	doc := `{
		"actions": [
			{"kind": "terminal_output", "timeMs": 100, "text": "a"},
			{"kind": "terminal_output", "timeMs": 100, "text": "b"}
		]
	}`
	actions, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if actions[0].EffectiveID() == actions[1].EffectiveID() {
		t.Errorf("colliding default IDs not deduped: %q", actions[0].EffectiveID())
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cast.json")
	if err := os.WriteFile(path, []byte(`{"actions": [{"kind": "open_file", "timeMs": 0, "path": "x"}]}`), 0644); err != nil {
		t.Fatal(err)
	}

	actions, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(actions))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFallback_IsPlayable(t *testing.T) {
	actions := Fallback()
	if len(actions) == 0 {
		t.Fatal("fallback timeline is empty")
	}
	for i := 1; i < len(actions); i++ {
		if actions[i].TimeMs < actions[i-1].TimeMs {
			t.Fatalf("fallback not sorted at %d", i)
		}
	}

	// survives a marshal/parse round trip
	data, err := Marshal(actions)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(parsed) != len(actions) {
		t.Errorf("round trip lost actions: %d -> %d", len(actions), len(parsed))
	}
}
