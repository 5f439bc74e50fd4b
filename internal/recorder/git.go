// Package recorder synthesizes casts from existing material. The git
// recorder turns a repository's commit history into a timeline: each
// commit's file changes become create/type actions, followed by a
// pre-scripted terminal echo of the commit. Nothing is ever executed.
package recorder

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"ghostcode/internal/timeline"
)

// Options tune cast synthesis.
type Options struct {
	// CharsPerSecond is the typing rate written into type actions.
	CharsPerSecond float64
	// GapMs is the pause between commits.
	GapMs int64
	// MaxFileBytes skips files larger than this.
	MaxFileBytes int64
}

// DefaultOptions returns the rates used when a field is zero.
func DefaultOptions() Options {
	return Options{
		CharsPerSecond: 40,
		GapMs:          1500,
		MaxFileBytes:   64 * 1024,
	}
}

// RecordFromGit walks repoPath's history from the root commit to HEAD
// (first-parent order) and emits a timeline re-typing each commit's
// changes. New files are created empty and typed in full; files whose old
// content is a prefix of the new content get just the suffix typed;
// anything else is rewritten instantly.
func RecordFromGit(repoPath string, opts Options) ([]timeline.Action, error) {
	def := DefaultOptions()
	if opts.CharsPerSecond <= 0 {
		opts.CharsPerSecond = def.CharsPerSecond
	}
	if opts.GapMs <= 0 {
		opts.GapMs = def.GapMs
	}
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = def.MaxFileBytes
	}

	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	tip, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("read HEAD commit: %w", err)
	}

	commits, err := firstParentChain(tip)
	if err != nil {
		return nil, err
	}

	var actions []timeline.Action
	var now int64
	prev := make(map[string]string)

	for _, commit := range commits {
		contents, err := treeContents(commit, opts.MaxFileBytes)
		if err != nil {
			return nil, err
		}

		for _, path := range sortedKeys(contents) {
			content := contents[path]
			old, existed := prev[path]
			switch {
			case !existed:
				actions = append(actions,
					timeline.Action{Kind: timeline.KindCreateFile, TimeMs: now, Path: path})
				now = appendTyped(&actions, now, path, content, opts.CharsPerSecond)
			case old == content:
				// untouched in this commit
			case strings.HasPrefix(content, old):
				actions = append(actions,
					timeline.Action{Kind: timeline.KindOpenFile, TimeMs: now, Path: path})
				now = appendTyped(&actions, now, path, content[len(old):], opts.CharsPerSecond)
			default:
				actions = append(actions,
					timeline.Action{Kind: timeline.KindCreateFile, TimeMs: now, Path: path, Content: content})
				now += 300
			}
			prev[path] = content
		}

		summary := firstLine(commit.Message)
		actions = append(actions,
			timeline.Action{Kind: timeline.KindTerminalRun, TimeMs: now,
				Command: fmt.Sprintf("git commit -m %q", summary)},
			timeline.Action{Kind: timeline.KindTerminalOutput, TimeMs: now + 400,
				Text: fmt.Sprintf("[%s] %s\n", commit.Hash.String()[:7], summary)},
		)
		now += 400 + opts.GapMs
	}

	timeline.Sort(actions)
	return actions, nil
}

// appendTyped adds a type action for text at timeMs now and returns the
// time after the typing animation would finish.
func appendTyped(actions *[]timeline.Action, now int64, path, text string, cps float64) int64 {
	if text == "" {
		return now
	}
	*actions = append(*actions, timeline.Action{
		Kind:                timeline.KindType,
		TimeMs:              now,
		Path:                path,
		Text:                text,
		CharactersPerSecond: cps,
	})
	durMs := int64(float64(utf8.RuneCountInString(text)) / cps * 1000)
	return now + durMs + 200
}

// firstParentChain returns the commits from root to tip along the
// first-parent line.
func firstParentChain(tip *object.Commit) ([]*object.Commit, error) {
	var chain []*object.Commit
	for c := tip; c != nil; {
		chain = append(chain, c)
		if c.NumParents() == 0 {
			break
		}
		parent, err := c.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("walk parents: %w", err)
		}
		c = parent
	}
	// reverse to oldest-first
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// treeContents reads every text file in the commit's tree, skipping
// binaries and oversized files.
func treeContents(commit *object.Commit, maxBytes int64) (map[string]string, error) {
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("read tree: %w", err)
	}

	contents := make(map[string]string)
	err = tree.Files().ForEach(func(f *object.File) error {
		if f.Size > maxBytes {
			return nil
		}
		if binary, berr := f.IsBinary(); berr != nil || binary {
			return nil
		}
		content, cerr := f.Contents()
		if cerr != nil {
			return cerr
		}
		contents[f.Name] = content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read files: %w", err)
	}
	return contents, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
