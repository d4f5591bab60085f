package filter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/temirov/repoctx/internal/config"
)

func newTestFilter(testingHandle *testing.T, filterConfig config.FilterConfig, rootPath string, options ...Option) *PathFilter {
	testingHandle.Helper()
	pathFilter, constructionError := New(filterConfig, rootPath, options...)
	if constructionError != nil {
		testingHandle.Fatalf("New failed: %v", constructionError)
	}
	return pathFilter
}

func TestShouldInclude(testingHandle *testing.T) {
	testCases := []struct {
		name         string
		includes     []string
		excludes     []string
		relativePath string
		isFile       bool
		expected     bool
	}{
		{name: "no patterns accept file", relativePath: "main.go", isFile: true, expected: true},
		{name: "base name pattern matches at any depth", includes: []string{"*.rs"}, relativePath: "src/main.rs", isFile: true, expected: true},
		{name: "include rejects other extension", includes: []string{"*.rs"}, relativePath: "src/lib.go", isFile: true, expected: false},
		{name: "include never blocks directory", includes: []string{"*.rs"}, relativePath: "src", isFile: false, expected: true},
		{name: "exclude wins over include", includes: []string{"*.rs"}, excludes: []string{"tests/**"}, relativePath: "tests/unit.rs", isFile: true, expected: false},
		{name: "exclude stops directory descent", excludes: []string{"tests/**"}, relativePath: "tests", isFile: false, expected: false},
		{name: "nested single level", excludes: []string{"nested/*"}, relativePath: "nested/file.txt", isFile: true, expected: false},
		{name: "single star stays in one level", excludes: []string{"nested/*"}, relativePath: "nested/deep/file.txt", isFile: true, expected: true},
		{name: "slashed include matches direct child", includes: []string{"src/*.go"}, relativePath: "src/a.go", isFile: true, expected: true},
		{name: "slashed include skips deeper file", includes: []string{"src/*.go"}, relativePath: "src/sub/b.go", isFile: true, expected: false},
		{name: "slashed include skips root file", includes: []string{"src/*.go"}, relativePath: "c.go", isFile: true, expected: false},
		{name: "double star include crosses directories", includes: []string{"src/**/*.go"}, relativePath: "src/sub/b.go", isFile: true, expected: true},
		{name: "double star prefix matches at root", excludes: []string{"**/*.log"}, relativePath: "app.log", isFile: true, expected: false},
		{name: "double star prefix matches nested", excludes: []string{"**/*.log"}, relativePath: "var/log/app.log", isFile: true, expected: false},
		{name: "character class", includes: []string{"file[0-9].txt"}, relativePath: "file7.txt", isFile: true, expected: true},
		{name: "question mark", includes: []string{"?.md"}, relativePath: "ab.md", isFile: true, expected: false},
		{name: "hidden file rejected", relativePath: ".env", isFile: true, expected: false},
		{name: "hidden directory segment rejected", relativePath: "src/.cache/data.txt", isFile: true, expected: false},
		{name: "backslash pattern normalized", excludes: []string{"build\\**"}, relativePath: "build/out.o", isFile: true, expected: false},
	}

	rootDirectory := testingHandle.TempDir()
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(subTest *testing.T) {
			pathFilter := newTestFilter(subTest, config.FilterConfig{
				IncludePatterns: testCase.includes,
				ExcludePatterns: testCase.excludes,
				Recursive:       true,
			}, rootDirectory)
			if actual := pathFilter.ShouldInclude(testCase.relativePath, testCase.isFile); actual != testCase.expected {
				subTest.Fatalf("ShouldInclude(%q, %t) = %t, want %t", testCase.relativePath, testCase.isFile, actual, testCase.expected)
			}
		})
	}
}

func TestNewRejectsMalformedPattern(testingHandle *testing.T) {
	_, constructionError := New(config.FilterConfig{IncludePatterns: []string{"[unclosed"}}, testingHandle.TempDir())
	if constructionError == nil {
		testingHandle.Fatalf("expected an error for a malformed pattern")
	}
	if !strings.Contains(constructionError.Error(), "[unclosed") {
		testingHandle.Fatalf("error should name the pattern: %v", constructionError)
	}
}

func TestGitignoreRules(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	if writeError := os.WriteFile(filepath.Join(rootDirectory, ".gitignore"), []byte("*.tmp\ndist\n"), 0o644); writeError != nil {
		testingHandle.Fatalf("write .gitignore: %v", writeError)
	}

	enabled := newTestFilter(testingHandle, config.FilterConfig{UseGitignore: true}, rootDirectory)
	if enabled.ShouldInclude("scratch.tmp", true) {
		testingHandle.Fatalf("expected gitignored file to be rejected")
	}
	if enabled.ShouldInclude("dist", false) {
		testingHandle.Fatalf("expected gitignored directory to be rejected")
	}
	if !enabled.ShouldInclude("main.go", true) {
		testingHandle.Fatalf("expected regular file to pass")
	}

	disabled := newTestFilter(testingHandle, config.FilterConfig{UseGitignore: false}, rootDirectory)
	if !disabled.ShouldInclude("scratch.tmp", true) {
		testingHandle.Fatalf("gitignore rules must not apply when disabled")
	}
}

func TestRecencyRule(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	freshPath := filepath.Join(rootDirectory, "fresh.txt")
	stalePath := filepath.Join(rootDirectory, "stale.txt")
	for _, filePath := range []string{freshPath, stalePath} {
		if writeError := os.WriteFile(filePath, []byte("x"), 0o644); writeError != nil {
			testingHandle.Fatalf("write %s: %v", filePath, writeError)
		}
	}
	referenceTime := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	if chtimesError := os.Chtimes(freshPath, referenceTime, referenceTime.Add(-24*time.Hour)); chtimesError != nil {
		testingHandle.Fatalf("chtimes: %v", chtimesError)
	}
	if chtimesError := os.Chtimes(stalePath, referenceTime, referenceTime.Add(-8*24*time.Hour)); chtimesError != nil {
		testingHandle.Fatalf("chtimes: %v", chtimesError)
	}

	var warnings []string
	pathFilter := newTestFilter(testingHandle, config.FilterConfig{RecentOnly: true}, rootDirectory,
		WithClock(func() time.Time { return referenceTime }),
		WithWarn(func(message string) { warnings = append(warnings, message) }),
	)

	if !pathFilter.Admit(freshPath, "fresh.txt", true) {
		testingHandle.Fatalf("expected file modified one day ago to be admitted")
	}
	if pathFilter.Admit(stalePath, "stale.txt", true) {
		testingHandle.Fatalf("expected file modified eight days ago to be rejected")
	}
	if pathFilter.Admit(filepath.Join(rootDirectory, "missing.txt"), "missing.txt", true) {
		testingHandle.Fatalf("expected unreadable timestamp to drop the file")
	}
	if len(warnings) != 1 {
		testingHandle.Fatalf("expected one warning, got %v", warnings)
	}
	if !pathFilter.Admit(rootDirectory, "sub", false) {
		testingHandle.Fatalf("directories are never subject to the recency rule")
	}
}

func TestRecencyDisabledSkipsTimestamp(testingHandle *testing.T) {
	pathFilter := newTestFilter(testingHandle, config.FilterConfig{}, testingHandle.TempDir())
	if !pathFilter.Admit("/does/not/exist", "exist", true) {
		testingHandle.Fatalf("expected admission without recency rule")
	}
}
