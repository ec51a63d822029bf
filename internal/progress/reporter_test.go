package progress

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

// TestFileReporter_WritesSnapshot verifies the artifact lands on disk with
// the expected shape
func TestFileReporter_WritesSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	reporter := NewFileReporter(path)

	eta := 1.4
	if err := reporter.Report(Snapshot{Percent: 30.5, ETAMinutes: &eta, Message: "70 new matches to process"}); err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Reading artifact failed: %v", err)
	}

	var got Snapshot
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Artifact is not valid JSON: %v", err)
	}
	if got.Percent != 30.5 {
		t.Errorf("Expected percent 30.5, got %v", got.Percent)
	}
	if got.ETAMinutes == nil || *got.ETAMinutes != 1.4 {
		t.Errorf("Expected etaMinutes 1.4, got %v", got.ETAMinutes)
	}
	if got.Message != "70 new matches to process" {
		t.Errorf("Unexpected message: %q", got.Message)
	}
}

// TestFileReporter_OverwritesPrevious verifies each report replaces the last
// artifact whole
func TestFileReporter_OverwritesPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	reporter := NewFileReporter(path)

	eta := 2.0
	if err := reporter.Report(Snapshot{Percent: 10, ETAMinutes: &eta, Message: "starting"}); err != nil {
		t.Fatalf("First report failed: %v", err)
	}
	if err := reporter.Report(Snapshot{Percent: 50}); err != nil {
		t.Fatalf("Second report failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Reading artifact failed: %v", err)
	}
	if strings.Contains(string(data), "starting") {
		t.Error("Stale message survived the overwrite")
	}

	var got Snapshot
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Artifact is not valid JSON: %v", err)
	}
	if got.Percent != 50 {
		t.Errorf("Expected percent 50, got %v", got.Percent)
	}
}

// TestFileReporter_OmitsOptionalFields verifies a bare percent snapshot
// serializes without etaMinutes or message keys
func TestFileReporter_OmitsOptionalFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	reporter := NewFileReporter(path)

	if err := reporter.Report(Snapshot{Percent: 100}); err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Reading artifact failed: %v", err)
	}
	body := string(data)
	if strings.Contains(body, "etaMinutes") || strings.Contains(body, "message") {
		t.Errorf("Optional fields must be omitted when unset, got: %s", body)
	}
	if !strings.Contains(body, `"percent"`) {
		t.Errorf("Percent must always be present, got: %s", body)
	}
}

// TestFileReporter_LeavesNoTempFiles verifies the rename cleans up the
// scratch file in the artifact directory
func TestFileReporter_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	reporter := NewFileReporter(filepath.Join(dir, "progress.json"))

	for i := 0; i < 3; i++ {
		if err := reporter.Report(Snapshot{Percent: float64(i)}); err != nil {
			t.Fatalf("Report %d failed: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Reading dir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "progress.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected only the artifact, found: %v", names)
	}
}

// TestFileReporter_MissingDirectory verifies a report into a nonexistent
// directory surfaces an error instead of silently dropping the update
func TestFileReporter_MissingDirectory(t *testing.T) {
	reporter := NewFileReporter(filepath.Join(t.TempDir(), "missing", "progress.json"))
	if err := reporter.Report(Snapshot{Percent: 1}); err == nil {
		t.Fatal("Expected error for missing directory")
	}
}
