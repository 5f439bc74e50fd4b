package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"ghostcode/internal/timeline"
)

// Manager ties the metadata database and the archive together.
type Manager struct {
	db      *Database
	archive *Archive
}

// NewManager opens the library at dbPath with archives under archiveDir.
func NewManager(dbPath, archiveDir string) (*Manager, error) {
	db, err := OpenDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open library db: %w", err)
	}
	archive, err := NewArchive(archiveDir)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Manager{db: db, archive: archive}, nil
}

// Close releases the database.
func (m *Manager) Close() error {
	return m.db.Close()
}

// Import validates a timeline file (.json, or .cast.zst as exported by
// this library), stores its action data compressed, and records the
// metadata row. audioPath may be empty for silent casts.
func (m *Manager) Import(path, title, audioPath string) (*Cast, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cast: %w", err)
	}

	if strings.HasSuffix(path, ".zst") {
		decoder, derr := zstd.NewReader(nil)
		if derr != nil {
			return nil, derr
		}
		data, err = decoder.DecodeAll(data, nil)
		decoder.Close()
		if err != nil {
			return nil, fmt.Errorf("decompress cast: %w", err)
		}
	}

	actions, err := timeline.Parse(data)
	if err != nil {
		return nil, err
	}

	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		title = strings.TrimSuffix(title, ".cast")
	}

	cast := Cast{
		ID:          uuid.New().String(),
		Title:       title,
		SourcePath:  path,
		AudioPath:   audioPath,
		DurationMs:  timeline.Duration(actions),
		ActionCount: len(actions),
		CreatedAt:   time.Now().UTC(),
	}

	normalized, err := timeline.Marshal(actions)
	if err != nil {
		return nil, err
	}
	if err := m.archive.Save(cast.ID, normalized); err != nil {
		return nil, err
	}
	if err := m.db.InsertCast(cast); err != nil {
		m.archive.Delete(cast.ID)
		return nil, err
	}

	return &cast, nil
}

// ImportActions stores an in-memory timeline (e.g. one synthesized by the
// recorder) as a new library entry.
func (m *Manager) ImportActions(actions []timeline.Action, title, source, audioPath string) (*Cast, error) {
	cast := Cast{
		ID:          uuid.New().String(),
		Title:       title,
		SourcePath:  source,
		AudioPath:   audioPath,
		DurationMs:  timeline.Duration(actions),
		ActionCount: len(actions),
		CreatedAt:   time.Now().UTC(),
	}

	data, err := timeline.Marshal(actions)
	if err != nil {
		return nil, err
	}
	if err := m.archive.Save(cast.ID, data); err != nil {
		return nil, err
	}
	if err := m.db.InsertCast(cast); err != nil {
		m.archive.Delete(cast.ID)
		return nil, err
	}
	return &cast, nil
}

// List returns all library entries, newest first.
func (m *Manager) List() ([]Cast, error) {
	return m.db.ListCasts()
}

// Get returns one entry.
func (m *Manager) Get(id string) (*Cast, error) {
	return m.db.GetCast(id)
}

// Actions loads the stored timeline for a library entry.
func (m *Manager) Actions(id string) ([]timeline.Action, error) {
	if _, err := m.db.GetCast(id); err != nil {
		return nil, err
	}
	data, err := m.archive.Load(id)
	if err != nil {
		return nil, err
	}
	return timeline.Parse(data)
}

// Delete removes an entry and its archive.
func (m *Manager) Delete(id string) error {
	if err := m.db.DeleteCast(id); err != nil {
		return err
	}
	return m.archive.Delete(id)
}

// Export writes a library entry back out as a compressed .cast.zst file.
func (m *Manager) Export(id, destPath string) error {
	data, err := m.archive.Load(id)
	if err != nil {
		return err
	}
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	compressed := encoder.EncodeAll(data, nil)
	encoder.Close()
	if err := os.WriteFile(destPath, compressed, 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
