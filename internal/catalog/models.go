package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/heimdex/prproj-export/internal/rows"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Conversion records one project-to-rows conversion. Completed conversions
// double as the content-hash cache: the same bytes converted with the same
// options key return the stored rows.
type Conversion struct {
	ID          string     `json:"id"`
	Filename    string     `json:"filename"`
	ContentHash string     `json:"content_hash"`
	OptionsKey  string     `json:"options_key"`
	SequenceID  string     `json:"sequence_id,omitempty"`
	Sequence    string     `json:"sequence,omitempty"`
	FPS         int        `json:"fps"`
	Size        int64      `json:"size"`
	RowCount    int        `json:"row_count"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	Rows        []rows.Row `json:"rows,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// WatchedFile is the watcher's record of a project file it has handled.
type WatchedFile struct {
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	Mtime        time.Time `json:"mtime"`
	ConversionID string    `json:"conversion_id,omitempty"`
	OutputPath   string    `json:"output_path,omitempty"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// Changed reports whether the file on disk differs from what was handled.
// Modification times compare at full precision so a same-size re-save within
// one second still counts.
func (w *WatchedFile) Changed(size int64, mtime time.Time) bool {
	return w.Size != size || !w.Mtime.Equal(mtime)
}

type ConfigEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func NewID() string {
	return uuid.NewString()
}
