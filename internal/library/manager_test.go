package library

import (
	"os"
	"path/filepath"
	"testing"

	"ghostcode/internal/timeline"
)

const sampleCast = `{
  "actions": [
    {"kind": "create_file", "timeMs": 0, "path": "main.go"},
    {"kind": "type", "timeMs": 500, "path": "main.go", "text": "package main\n", "charactersPerSecond": 40},
    {"kind": "terminal_run", "timeMs": 2000, "command": "go run ."}
  ]
}`

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	m, err := NewManager(filepath.Join(dir, "library.db"), filepath.Join(dir, "archives"))
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.json")
	if err := os.WriteFile(path, []byte(sampleCast), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestManager_ImportAndRoundtrip(t *testing.T) {
	m := newTestManager(t)

	cast, err := m.Import(writeSample(t), "", "narration.mp3")
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if cast.Title != "demo" {
		t.Errorf("derived title = %q, want demo", cast.Title)
	}
	if cast.ActionCount != 3 {
		t.Errorf("action count = %d, want 3", cast.ActionCount)
	}
	if cast.DurationMs != 2000 {
		t.Errorf("duration = %d, want 2000", cast.DurationMs)
	}
	if cast.AudioPath != "narration.mp3" {
		t.Errorf("audio path = %q", cast.AudioPath)
	}

	actions, err := m.Actions(cast.ID)
	if err != nil {
		t.Fatalf("Actions failed: %v", err)
	}
	if len(actions) != 3 {
		t.Fatalf("stored actions = %d, want 3", len(actions))
	}
	if actions[1].Kind != timeline.KindType || actions[1].Text != "package main\n" {
		t.Errorf("stored action mangled: %+v", actions[1])
	}

	got, err := m.Get(cast.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != cast.ID || got.Title != cast.Title {
		t.Errorf("Get = %+v, want %+v", got, cast)
	}
}

func TestManager_ImportRejectsMalformed(t *testing.T) {
	m := newTestManager(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"actions": "nope"}`), 0644)
	if _, err := m.Import(bad, "", ""); err == nil {
		t.Error("malformed cast accepted")
	}

	if _, err := m.Import(filepath.Join(dir, "missing.json"), "", ""); err == nil {
		t.Error("missing file accepted")
	}

	list, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("failed imports left %d entries", len(list))
	}
}

func TestManager_ExportImportCompressed(t *testing.T) {
	m := newTestManager(t)

	cast, err := m.Import(writeSample(t), "original", "")
	if err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "out.cast.zst")
	if err := m.Export(cast.ID, dest); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	reimported, err := m.Import(dest, "", "")
	if err != nil {
		t.Fatalf("re-import of export failed: %v", err)
	}
	if reimported.Title != "out" {
		t.Errorf("title from .cast.zst = %q, want out", reimported.Title)
	}
	if reimported.ActionCount != cast.ActionCount || reimported.DurationMs != cast.DurationMs {
		t.Errorf("re-import = %+v, want counts of %+v", reimported, cast)
	}
}

func TestManager_ImportActions(t *testing.T) {
	m := newTestManager(t)

	cast, err := m.ImportActions([]timeline.Action{
		{Kind: timeline.KindCreateFile, TimeMs: 0, Path: "a.go"},
		{Kind: timeline.KindType, TimeMs: 100, Path: "a.go", Text: "x"},
	}, "synth", "repo:.", "")
	if err != nil {
		t.Fatalf("ImportActions failed: %v", err)
	}

	actions, err := m.Actions(cast.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(actions) != 2 || actions[0].Kind != timeline.KindCreateFile {
		t.Errorf("stored actions = %+v", actions)
	}
}

func TestManager_Delete(t *testing.T) {
	m := newTestManager(t)

	cast, err := m.Import(writeSample(t), "", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Delete(cast.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := m.Get(cast.ID); err == nil {
		t.Error("deleted cast still readable")
	}
	if _, err := m.Actions(cast.ID); err == nil {
		t.Error("deleted archive still readable")
	}
	if err := m.Delete(cast.ID); err == nil {
		t.Error("double delete succeeded")
	}
}

func TestManager_ListOrder(t *testing.T) {
	m := newTestManager(t)

	for _, title := range []string{"first", "second"} {
		if _, err := m.ImportActions([]timeline.Action{
			{Kind: timeline.KindOpenFile, TimeMs: 0, Path: "a.go"},
		}, title, "", ""); err != nil {
			t.Fatal(err)
		}
	}

	list, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %d entries, want 2", len(list))
	}
}
