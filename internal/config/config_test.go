package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/temirov/repoctx/internal/utils"
)

// writeTestFile creates a file with the specified content, failing the test on error.
func writeTestFile(testingHandle *testing.T, filePath string, content string) {
	testingHandle.Helper()
	if writeError := os.WriteFile(filePath, []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("failed to write %s: %v", filePath, writeError)
	}
}

// TestLoadIgnoreFilePatternsSkipsCommentsAndBlanks verifies ignore file parsing.
func TestLoadIgnoreFilePatternsSkipsCommentsAndBlanks(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	ignorePath := filepath.Join(rootDirectory, utils.IgnoreFileName)
	writeTestFile(testingHandle, ignorePath, "# generated\n\nvendor/**\n  *.log  \n")

	patterns, loadError := LoadIgnoreFilePatterns(ignorePath)
	if loadError != nil {
		testingHandle.Fatalf("LoadIgnoreFilePatterns failed: %v", loadError)
	}
	expected := []string{"vendor/**", "*.log"}
	if !reflect.DeepEqual(patterns, expected) {
		testingHandle.Fatalf("unexpected patterns: got %v want %v", patterns, expected)
	}
}

// TestLoadIgnoreFilePatternsMissingFile verifies that a missing file is not an error.
func TestLoadIgnoreFilePatternsMissingFile(testingHandle *testing.T) {
	patterns, loadError := LoadIgnoreFilePatterns(filepath.Join(testingHandle.TempDir(), utils.IgnoreFileName))
	if loadError != nil {
		testingHandle.Fatalf("expected no error, got %v", loadError)
	}
	if len(patterns) != 0 {
		testingHandle.Fatalf("expected no patterns, got %v", patterns)
	}
}

// TestLoadCombinedExcludePatterns verifies that caller patterns come first and duplicates collapse.
func TestLoadCombinedExcludePatterns(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, utils.IgnoreFileName), "*.bin\ndist/**\n")

	patterns, loadError := LoadCombinedExcludePatterns(rootDirectory, []string{"*.log", "*.bin"})
	if loadError != nil {
		testingHandle.Fatalf("LoadCombinedExcludePatterns failed: %v", loadError)
	}
	expected := []string{"*.log", "*.bin", "dist/**"}
	if !reflect.DeepEqual(patterns, expected) {
		testingHandle.Fatalf("unexpected patterns: got %v want %v", patterns, expected)
	}
}

// TestFilterConfigNormalizedAppliesDefaults verifies default limits and pattern cleanup.
func TestFilterConfigNormalizedAppliesDefaults(testingHandle *testing.T) {
	normalized := FilterConfig{
		IncludePatterns: []string{"*.go", "*.go", " "},
		Limits:          Limits{SniffLength: 16},
	}.Normalized()

	if !reflect.DeepEqual(normalized.IncludePatterns, []string{"*.go"}) {
		testingHandle.Fatalf("unexpected include patterns: %v", normalized.IncludePatterns)
	}
	if normalized.Limits.SniffLength != 16 {
		testingHandle.Fatalf("expected explicit sniff length to survive, got %d", normalized.Limits.SniffLength)
	}
	if normalized.Limits.RecencyWindow != 7*24*time.Hour {
		testingHandle.Fatalf("unexpected recency window: %v", normalized.Limits.RecencyWindow)
	}
	if normalized.Limits.ContentSizeLimit != 1_000_000 {
		testingHandle.Fatalf("unexpected content size limit: %d", normalized.Limits.ContentSizeLimit)
	}
}
