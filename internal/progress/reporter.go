// Package progress writes the status artifact the dashboard polls while a
// sync run is in flight.
package progress

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// Snapshot is one progress update. The artifact always carries percent; the
// polling reader treats a missing file the same as percent 0.
type Snapshot struct {
	Percent    float64  `json:"percent"`
	ETAMinutes *float64 `json:"etaMinutes,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// Reporter receives progress snapshots. There is one current value; each
// report replaces the previous one.
type Reporter interface {
	Report(s Snapshot) error
}

// FileReporter overwrites a JSON file on every report. The write goes through
// a temp file and rename so the polling reader never sees a torn artifact.
type FileReporter struct {
	path string
}

func NewFileReporter(path string) *FileReporter {
	return &FileReporter{path: path}
}

func (r *FileReporter) Report(s Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".progress-*")
	if err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write progress: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write progress: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write progress: %w", err)
	}
	return nil
}
