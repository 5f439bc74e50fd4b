// Package document holds the in-memory file model playback mutates: one
// text buffer and cursor per path, a single active path, and ephemeral
// highlight decorations. All state is owned by the executor; the UI only
// sees notifications derived from it.
package document

import (
	"sort"
	"strings"
	"unicode/utf8"

	"ghostcode/internal/timeline"
)

// Buffer is the text and tracked cursor for one path.
type Buffer struct {
	Content string
	Cursor  timeline.Position
}

// Highlight is a decoration over a range. It is not part of buffer content
// and disappears on reset, replacement, or expiry.
type Highlight struct {
	Range timeline.Range
	Color string
}

// Store maps path → buffer. At most one path is active (bound to the
// visible editor surface) at a time.
type Store struct {
	buffers    map[string]*Buffer
	highlights map[string]Highlight
	active     string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		buffers:    make(map[string]*Buffer),
		highlights: make(map[string]Highlight),
	}
}

// Create creates or overwrites the buffer at path with content and resets
// its cursor to the end of content. It reports whether the path is new.
func (s *Store) Create(path, content string) bool {
	_, existed := s.buffers[path]
	s.buffers[path] = &Buffer{
		Content: content,
		Cursor:  Advance(timeline.Position{Line: 1, Column: 1}, content),
	}
	return !existed
}

// Ensure returns the buffer at path, implicitly creating it empty. The
// second return reports whether it had to be created.
func (s *Store) Ensure(path string) (*Buffer, bool) {
	if b, ok := s.buffers[path]; ok {
		return b, false
	}
	b := &Buffer{Cursor: timeline.Position{Line: 1, Column: 1}}
	s.buffers[path] = b
	return b, true
}

// Get returns the buffer at path, or nil.
func (s *Store) Get(path string) *Buffer {
	return s.buffers[path]
}

// Exists reports whether path has a buffer.
func (s *Store) Exists(path string) bool {
	_, ok := s.buffers[path]
	return ok
}

// Insert inserts text at the buffer's tracked cursor and advances the
// cursor to the end of the inserted text. The buffer is implicitly created.
// It returns the cursor position after the insert.
func (s *Store) Insert(path, text string) timeline.Position {
	b, _ := s.Ensure(path)
	off := offsetOf(b.Content, b.Cursor)
	b.Content = b.Content[:off] + text + b.Content[off:]
	b.Cursor = Advance(b.Cursor, text)
	return b.Cursor
}

// SetCursor moves the tracked cursor for path, implicitly creating the
// buffer. Positions are clamped to the buffer contents.
func (s *Store) SetCursor(path string, pos timeline.Position) timeline.Position {
	b, _ := s.Ensure(path)
	b.Cursor = clamp(b.Content, pos)
	return b.Cursor
}

// SetActive binds path to the visible editor surface. An empty path means
// no file is active.
func (s *Store) SetActive(path string) {
	s.active = path
}

// Active returns the currently active path, or "" when none.
func (s *Store) Active() string {
	return s.active
}

// SetHighlight replaces the highlight decoration for path.
func (s *Store) SetHighlight(path string, h Highlight) {
	s.highlights[path] = h
}

// ClearHighlight removes the decoration for path, reporting whether one
// was present.
func (s *Store) ClearHighlight(path string) bool {
	_, ok := s.highlights[path]
	delete(s.highlights, path)
	return ok
}

// HighlightFor returns the decoration for path.
func (s *Store) HighlightFor(path string) (Highlight, bool) {
	h, ok := s.highlights[path]
	return h, ok
}

// Paths returns all buffer paths in sorted order.
func (s *Store) Paths() []string {
	paths := make([]string, 0, len(s.buffers))
	for p := range s.buffers {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Reset drops all buffers, cursors, highlights, and the active binding.
func (s *Store) Reset() {
	s.buffers = make(map[string]*Buffer)
	s.highlights = make(map[string]Highlight)
	s.active = ""
}

// Advance walks pos forward over text: a newline moves to column 1 of the
// next line, any other character advances the column.
func Advance(pos timeline.Position, text string) timeline.Position {
	for _, r := range text {
		if r == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}
	return pos
}

// offsetOf converts a 1-based position into a byte offset into content,
// clamping past-the-end positions to the end of the line or buffer.
func offsetOf(content string, pos timeline.Position) int {
	if pos.Line < 1 {
		return 0
	}
	line := 1
	start := 0
	for line < pos.Line {
		nl := strings.IndexByte(content[start:], '\n')
		if nl < 0 {
			return len(content)
		}
		start += nl + 1
		line++
	}
	end := len(content)
	if nl := strings.IndexByte(content[start:], '\n'); nl >= 0 {
		end = start + nl
	}
	off := start
	col := 1
	for off < end && col < pos.Column {
		_, size := utf8.DecodeRuneInString(content[off:end])
		off += size
		col++
	}
	return off
}

// clamp snaps pos onto an addressable position in content.
func clamp(content string, pos timeline.Position) timeline.Position {
	if pos.Line < 1 {
		pos.Line = 1
	}
	if pos.Column < 1 {
		pos.Column = 1
	}
	off := offsetOf(content, pos)
	return Advance(timeline.Position{Line: 1, Column: 1}, content[:off])
}
