package packager_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/temirov/repoctx/internal/config"
	"github.com/temirov/repoctx/internal/packager"
	"github.com/temirov/repoctx/internal/types"
)

func writeFixture(testingHandle *testing.T, rootDirectory string, fixture map[string]string) {
	testingHandle.Helper()
	for relativePath, content := range fixture {
		absolutePath := filepath.Join(rootDirectory, filepath.FromSlash(relativePath))
		if mkdirError := os.MkdirAll(filepath.Dir(absolutePath), 0o755); mkdirError != nil {
			testingHandle.Fatalf("creating directory for %s: %v", relativePath, mkdirError)
		}
		if writeError := os.WriteFile(absolutePath, []byte(content), 0o644); writeError != nil {
			testingHandle.Fatalf("writing %s: %v", relativePath, writeError)
		}
	}
}

func fixedClock() time.Time {
	return time.Date(2024, time.May, 1, 9, 30, 0, 0, time.UTC)
}

// TestBuildEndToEnd verifies the text file survives and the excluded binary disappears everywhere.
func TestBuildEndToEnd(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFixture(testingHandle, rootDirectory, map[string]string{
		"a.txt": "hello\n",
		"b.bin": "\x00\xff",
	})

	result, buildError := packager.Build(packager.Options{
		RootPath:         rootDirectory,
		WorkingDirectory: rootDirectory,
		Filter:           config.FilterConfig{ExcludePatterns: []string{"*.bin"}, Recursive: true},
		Now:              fixedClock,
	})
	if buildError != nil {
		testingHandle.Fatalf("Build error: %v", buildError)
	}
	records := result.Context.Files
	if len(records) != 1 {
		testingHandle.Fatalf("expected one record, got %d", len(records))
	}
	if records[0].Path != "a.txt" || records[0].LineCount != 1 || records[0].IsBinary {
		testingHandle.Fatalf("unexpected record: %+v", records[0])
	}
	if !strings.Contains(result.Context.Tree, "a.txt") || strings.Contains(result.Context.Tree, "b.bin") {
		testingHandle.Fatalf("unexpected tree:\n%s", result.Context.Tree)
	}
	if result.Format != types.FormatMarkdown || !strings.HasPrefix(result.Rendered, "# Repository Context") {
		testingHandle.Fatalf("expected markdown document, got:\n%s", result.Rendered)
	}
	if !strings.Contains(result.Rendered, "## FILE: a.txt\n\n```txt\nhello\n```") {
		testingHandle.Fatalf("expected a.txt section:\n%s", result.Rendered)
	}
	if result.Context.Git.IsRepository {
		testingHandle.Fatalf("temporary directory must not be a repository")
	}
}

func TestBuildHonorsIgnoreFileAndTargets(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFixture(testingHandle, rootDirectory, map[string]string{
		".ignore":         "generated/**\n",
		"src/main.go":     "package main\n",
		"src/util.go":     "package main\n\nfunc util() {}\n",
		"generated/z.go":  "package generated\n",
		"docs/readme.txt": "docs\n",
	})

	result, buildError := packager.Build(packager.Options{
		RootPath:         rootDirectory,
		WorkingDirectory: rootDirectory,
		Targets:          []string{"src", "generated"},
		Filter:           config.FilterConfig{Recursive: true},
		Format:           types.FormatJSON,
		Now:              fixedClock,
	})
	if buildError != nil {
		testingHandle.Fatalf("Build error: %v", buildError)
	}
	var decoded struct {
		Files []struct {
			Path string `json:"path"`
		} `json:"files"`
		Summary struct {
			TotalLines int `json:"totalLines"`
		} `json:"summary"`
	}
	if decodeError := json.Unmarshal([]byte(result.Rendered), &decoded); decodeError != nil {
		testingHandle.Fatalf("invalid JSON: %v", decodeError)
	}
	if len(decoded.Files) != 2 || decoded.Files[0].Path != "src/main.go" || decoded.Files[1].Path != "src/util.go" {
		testingHandle.Fatalf("unexpected files: %+v", decoded.Files)
	}
	if decoded.Summary.TotalLines != 4 {
		testingHandle.Fatalf("expected 4 lines, got %d", decoded.Summary.TotalLines)
	}
	if strings.Contains(result.Context.Tree, "docs") || strings.Contains(result.Context.Tree, "z.go") {
		testingHandle.Fatalf("unexpected tree:\n%s", result.Context.Tree)
	}
}

func TestBuildRejectsInvalidInput(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	if _, buildError := packager.Build(packager.Options{RootPath: rootDirectory, WorkingDirectory: rootDirectory, Format: "yaml"}); buildError == nil {
		testingHandle.Fatalf("expected unsupported format error")
	}
	if _, buildError := packager.Build(packager.Options{RootPath: filepath.Join(rootDirectory, "absent"), WorkingDirectory: rootDirectory}); buildError == nil {
		testingHandle.Fatalf("expected missing root error")
	}
	if _, buildError := packager.Build(packager.Options{
		RootPath:         rootDirectory,
		WorkingDirectory: rootDirectory,
		Filter:           config.FilterConfig{IncludePatterns: []string{"[oops"}},
	}); buildError == nil {
		testingHandle.Fatalf("expected malformed pattern error")
	}
}

func TestResolveRootPathFallsBackToWorkingDirectory(testingHandle *testing.T) {
	workingDirectory := testingHandle.TempDir()
	rootPath, resolveError := packager.ResolveRootPath("", workingDirectory)
	if resolveError != nil {
		testingHandle.Fatalf("ResolveRootPath error: %v", resolveError)
	}
	if rootPath != workingDirectory {
		testingHandle.Fatalf("expected %s, got %s", workingDirectory, rootPath)
	}
	explicitRoot, resolveError := packager.ResolveRootPath("sub", workingDirectory)
	if resolveError != nil {
		testingHandle.Fatalf("ResolveRootPath error: %v", resolveError)
	}
	if explicitRoot != filepath.Join(workingDirectory, "sub") {
		testingHandle.Fatalf("unexpected explicit root %s", explicitRoot)
	}
}
