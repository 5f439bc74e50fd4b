package library

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Archive persists cast action data as zstd-compressed JSON files, one per
// library entry.
type Archive struct {
	baseDir string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewArchive creates an archive rooted at baseDir.
func NewArchive(baseDir string) (*Archive, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	return &Archive{baseDir: baseDir, encoder: encoder, decoder: decoder}, nil
}

// Path returns the archive file path for a cast ID.
func (a *Archive) Path(id string) string {
	return filepath.Join(a.baseDir, id+".cast.zst")
}

// Save compresses and writes the timeline document for id.
func (a *Archive) Save(id string, data []byte) error {
	if err := os.MkdirAll(a.baseDir, 0755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}
	compressed := a.encoder.EncodeAll(data, nil)
	if err := os.WriteFile(a.Path(id), compressed, 0644); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}

// Load reads and decompresses the timeline document for id.
func (a *Archive) Load(id string) ([]byte, error) {
	compressed, err := os.ReadFile(a.Path(id))
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	data, err := a.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress archive: %w", err)
	}
	return data, nil
}

// Delete removes the archive file for id. A missing file is not an error.
func (a *Archive) Delete(id string) error {
	err := os.Remove(a.Path(id))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
