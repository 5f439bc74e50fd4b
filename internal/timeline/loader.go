package timeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// ErrNoActions is returned when the timeline document is missing a usable
// "actions" array. Callers substitute the fallback cast instead of failing.
var ErrNoActions = errors.New("timeline: missing or malformed actions array")

// Parse decodes a timeline document. The document is probed with gjson
// first so that a single malformed element degrades to a skipped action
// instead of failing the whole load; only a missing or non-array "actions"
// field is a load error.
func Parse(data []byte) ([]Action, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrNoActions)
	}
	raw := gjson.GetBytes(data, "actions")
	if !raw.Exists() || !raw.IsArray() {
		return nil, ErrNoActions
	}

	var actions []Action
	for i, elem := range raw.Array() {
		var a Action
		if err := json.Unmarshal([]byte(elem.Raw), &a); err != nil {
			log.Printf("timeline: skipping malformed action %d: %v", i, err)
			continue
		}
		if a.Kind == "" {
			log.Printf("timeline: skipping action %d: no kind", i)
			continue
		}
		if a.TimeMs < 0 {
			log.Printf("timeline: skipping action %d (%s): negative timeMs", i, a.Kind)
			continue
		}
		actions = append(actions, a)
	}

	Sort(actions)
	dedupeIDs(actions)
	return actions, nil
}

// dedupeIDs makes every effective ID a usable stable key. Two actions of
// the same kind at the same timeMs would otherwise collide on the default
// kind-timeMs composite.
func dedupeIDs(actions []Action) {
	seen := make(map[string]bool, len(actions))
	for i := range actions {
		id := actions[i].EffectiveID()
		if seen[id] {
			actions[i].ID = id + "-" + uuid.NewString()[:8]
			id = actions[i].ID
		}
		seen[id] = true
	}
}

// Load reads and parses a timeline file.
func Load(path string) ([]Action, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read timeline: %w", err)
	}
	return Parse(data)
}

// Marshal renders actions back into the timeline document shape.
func Marshal(actions []Action) ([]byte, error) {
	doc := struct {
		Actions []Action `json:"actions"`
	}{Actions: actions}
	return json.MarshalIndent(doc, "", "  ")
}

// Fallback is the built-in cast substituted when a timeline fails to load.
// It is a short self-demo so the player never starts empty-handed.
func Fallback() []Action {
	return []Action{
		{Kind: KindCreateFile, TimeMs: 0, Path: "hello.go", Content: ""},
		{Kind: KindType, TimeMs: 500, Path: "hello.go",
			Text:                "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"ghostcode could not load your cast\")\n}\n",
			CharactersPerSecond: 30},
		{Kind: KindTerminalRun, TimeMs: 5000, Command: "go run hello.go"},
		{Kind: KindTerminalOutput, TimeMs: 5600, Text: "ghostcode could not load your cast\n"},
	}
}
