package library

import "time"

// Cast is one library entry: an imported timeline plus its metadata. The
// action data itself lives in a compressed archive next to the database.
type Cast struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	SourcePath  string    `json:"source_path"`
	AudioPath   string    `json:"audio_path,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
	ActionCount int       `json:"action_count"`
	CreatedAt   time.Time `json:"created_at"`
}
