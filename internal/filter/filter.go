// Package filter decides which root-relative paths take part in a run.
package filter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
	gitignore "github.com/monochromegane/go-gitignore"

	"github.com/temirov/repoctx/internal/config"
	"github.com/temirov/repoctx/internal/utils"
)

const (
	doubleStarPrefix   = "**/"
	directorySuffix    = "/"
	pathSeparator rune = '/'

	invalidPatternErrorFormat   = "invalid glob pattern %q: %w"
	rootResolutionErrorFormat   = "resolve filter root %s: %w"
	gitignoreParseWarningFormat = "could not parse %s: %v"
	timestampWarningFormat      = "skipping %s: cannot read modification time: %v"
)

// ErrEmptyPattern is returned for a pattern that is blank after trimming.
var ErrEmptyPattern = errors.New("empty glob pattern")

// compiledPattern holds every matcher compiled from one user pattern.
type compiledPattern struct {
	matchers []glob.Glob
}

func (pattern compiledPattern) match(relativePath string) bool {
	for _, matcher := range pattern.matchers {
		if matcher.Match(relativePath) {
			return true
		}
	}
	return false
}

// PathFilter answers whether a root-relative path passes the configured
// include, exclude, hidden-entry, gitignore and recency rules. It is read-only
// after construction and may be shared by every component of a run.
type PathFilter struct {
	rootPath      string
	configuration config.FilterConfig
	includes      []compiledPattern
	excludes      []compiledPattern
	ignoreMatcher gitignore.IgnoreMatcher

	// Now supplies the reference time of the recency check.
	Now func() time.Time
	// Warn receives recoverable problems such as unreadable timestamps.
	Warn func(string)
}

// Option customizes a PathFilter during construction.
type Option func(*PathFilter)

// WithWarn routes recoverable problems to warn.
func WithWarn(warn func(string)) Option {
	return func(pathFilter *PathFilter) {
		if warn != nil {
			pathFilter.Warn = warn
		}
	}
}

// WithClock replaces the reference clock of the recency check.
func WithClock(now func() time.Time) Option {
	return func(pathFilter *PathFilter) {
		if now != nil {
			pathFilter.Now = now
		}
	}
}

// New compiles every pattern of filterConfig once. A malformed pattern is a
// fatal configuration error naming the pattern.
func New(filterConfig config.FilterConfig, rootPath string, options ...Option) (*PathFilter, error) {
	normalized := filterConfig.Normalized()
	absoluteRoot, rootError := filepath.Abs(rootPath)
	if rootError != nil {
		return nil, fmt.Errorf(rootResolutionErrorFormat, rootPath, rootError)
	}

	pathFilter := &PathFilter{
		rootPath:      filepath.Clean(absoluteRoot),
		configuration: normalized,
		Now:           time.Now,
		Warn:          func(string) {},
	}
	for _, option := range options {
		option(pathFilter)
	}

	var compileError error
	if pathFilter.includes, compileError = compilePatterns(normalized.IncludePatterns); compileError != nil {
		return nil, compileError
	}
	if pathFilter.excludes, compileError = compilePatterns(normalized.ExcludePatterns); compileError != nil {
		return nil, compileError
	}

	if normalized.UseGitignore {
		pathFilter.ignoreMatcher = loadGitignore(pathFilter.rootPath, pathFilter.warn)
	}
	return pathFilter, nil
}

// Config returns the normalized configuration the filter was built from.
func (pathFilter *PathFilter) Config() config.FilterConfig {
	return pathFilter.configuration
}

// RootPath returns the absolute root that relative paths are resolved against.
func (pathFilter *PathFilter) RootPath() string {
	return pathFilter.rootPath
}

// ShouldInclude reports whether a root-relative path passes the glob rules.
// Hidden entries are rejected first, then excludes, and only files are held
// against the include set so that descent into directories is never blocked
// by an include pattern.
func (pathFilter *PathFilter) ShouldInclude(relativePath string, isFile bool) bool {
	normalizedPath := strings.TrimPrefix(utils.NormalizeSlashes(relativePath), "./")
	if utils.IsHiddenPath(normalizedPath) {
		return false
	}
	if pathFilter.IsExcluded(normalizedPath, isFile) {
		return false
	}
	if !isFile {
		return true
	}
	if len(pathFilter.includes) == 0 {
		return true
	}
	for _, pattern := range pathFilter.includes {
		if pattern.match(normalizedPath) {
			return true
		}
	}
	return false
}

// IsExcluded reports whether an exclude pattern or the root .gitignore matches
// the path. Directories are also tested with a trailing slash so that
// "build/**" stops descent into build itself.
func (pathFilter *PathFilter) IsExcluded(relativePath string, isFile bool) bool {
	candidates := []string{relativePath}
	if !isFile {
		candidates = append(candidates, relativePath+directorySuffix)
	}
	for _, pattern := range pathFilter.excludes {
		for _, candidate := range candidates {
			if pattern.match(candidate) {
				return true
			}
		}
	}
	if pathFilter.ignoreMatcher != nil {
		absolutePath := filepath.Join(pathFilter.rootPath, filepath.FromSlash(relativePath))
		if pathFilter.ignoreMatcher.Match(absolutePath, !isFile) {
			return true
		}
	}
	return false
}

// IsRecent reports whether the file was modified within the recency window.
func (pathFilter *PathFilter) IsRecent(absolutePath string) (bool, error) {
	fileInfo, statError := os.Stat(absolutePath)
	if statError != nil {
		return false, statError
	}
	threshold := pathFilter.now().Add(-pathFilter.configuration.Limits.RecencyWindow)
	return !fileInfo.ModTime().Before(threshold), nil
}

// Admit combines ShouldInclude with the recency rule. When the recency rule is
// active and a timestamp cannot be read, the file is dropped with a warning.
func (pathFilter *PathFilter) Admit(absolutePath string, relativePath string, isFile bool) bool {
	if !pathFilter.ShouldInclude(relativePath, isFile) {
		return false
	}
	return pathFilter.AdmitRecent(absolutePath, isFile)
}

// AdmitRecent applies only the recency rule. Directories always pass.
func (pathFilter *PathFilter) AdmitRecent(absolutePath string, isFile bool) bool {
	if !isFile || !pathFilter.configuration.RecentOnly {
		return true
	}
	recent, recencyError := pathFilter.IsRecent(absolutePath)
	if recencyError != nil {
		pathFilter.warn(fmt.Sprintf(timestampWarningFormat, absolutePath, recencyError))
		return false
	}
	return recent
}

func (pathFilter *PathFilter) now() time.Time {
	if pathFilter.Now == nil {
		return time.Now()
	}
	return pathFilter.Now()
}

func (pathFilter *PathFilter) warn(message string) {
	if pathFilter.Warn != nil {
		pathFilter.Warn(message)
	}
}

// compilePatterns compiles patterns with '/' as separator: * and ? stay inside
// one segment and only ** crosses directories. A leading **/ also matches at
// the root, and a pattern without a slash matches a base name at any depth.
func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, rawPattern := range patterns {
		pattern := utils.NormalizeSlashes(strings.TrimSpace(rawPattern))
		if pattern == utils.EmptyString {
			return nil, fmt.Errorf(invalidPatternErrorFormat, rawPattern, ErrEmptyPattern)
		}
		sources := []string{pattern}
		if !strings.Contains(pattern, directorySuffix) {
			sources = append(sources, doubleStarPrefix+pattern)
		}
		for strings.HasPrefix(pattern, doubleStarPrefix) {
			pattern = strings.TrimPrefix(pattern, doubleStarPrefix)
			if pattern != utils.EmptyString {
				sources = append(sources, pattern)
			}
		}
		var entry compiledPattern
		for _, source := range sources {
			matcher, compileError := glob.Compile(source, pathSeparator)
			if compileError != nil {
				return nil, fmt.Errorf(invalidPatternErrorFormat, rawPattern, compileError)
			}
			entry.matchers = append(entry.matchers, matcher)
		}
		compiled = append(compiled, entry)
	}
	return compiled, nil
}

// loadGitignore reads the root .gitignore when present. Parse failures are
// reported and leave the filter without gitignore rules.
func loadGitignore(rootPath string, warn func(string)) gitignore.IgnoreMatcher {
	gitIgnorePath := filepath.Join(rootPath, utils.GitIgnoreFileName)
	if _, statError := os.Stat(gitIgnorePath); statError != nil {
		return nil
	}
	matcher, parseError := gitignore.NewGitIgnore(gitIgnorePath, rootPath)
	if parseError != nil {
		warn(fmt.Sprintf(gitignoreParseWarningFormat, gitIgnorePath, parseError))
		return nil
	}
	return matcher
}
