// Package config defines per-run filter settings, loads ignore files into
// exclude patterns, and reads application defaults from configuration files.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/temirov/repoctx/internal/utils"
)

const (
	// DefaultRecencyWindow is the lookback used by the recent-only filter.
	DefaultRecencyWindow = 7 * 24 * time.Hour
	// DefaultSniffLength is the number of leading bytes inspected for a zero byte.
	DefaultSniffLength = utils.DefaultSniffLength
	// DefaultContentSizeLimit is the exclusive upper bound for captured file content.
	DefaultContentSizeLimit uint64 = 1_000_000

	commentPrefix = "#"

	warningCloseFileFormat = "Warning: failed to close %s: %v\n"
)

// Limits holds the numeric thresholds of a run.
type Limits struct {
	RecencyWindow    time.Duration
	SniffLength      int
	ContentSizeLimit uint64
}

// DefaultLimits returns the thresholds used outside of tests.
func DefaultLimits() Limits {
	return Limits{
		RecencyWindow:    DefaultRecencyWindow,
		SniffLength:      DefaultSniffLength,
		ContentSizeLimit: DefaultContentSizeLimit,
	}
}

// withDefaults fills zero thresholds with their default values.
func (limits Limits) withDefaults() Limits {
	defaults := DefaultLimits()
	if limits.RecencyWindow <= 0 {
		limits.RecencyWindow = defaults.RecencyWindow
	}
	if limits.SniffLength <= 0 {
		limits.SniffLength = defaults.SniffLength
	}
	if limits.ContentSizeLimit == 0 {
		limits.ContentSizeLimit = defaults.ContentSizeLimit
	}
	return limits
}

// FilterConfig is the immutable selection configuration of one run.
// Exclude patterns are always evaluated before include patterns; an empty
// include set accepts every file that is not excluded.
type FilterConfig struct {
	IncludePatterns []string
	ExcludePatterns []string
	Recursive       bool
	RecentOnly      bool
	UseGitignore    bool
	Limits          Limits
}

// Normalized returns a copy with deduplicated patterns and default limits applied.
func (filterConfig FilterConfig) Normalized() FilterConfig {
	result := filterConfig
	result.IncludePatterns = utils.DeduplicatePatterns(filterConfig.IncludePatterns)
	result.ExcludePatterns = utils.DeduplicatePatterns(filterConfig.ExcludePatterns)
	result.Limits = filterConfig.Limits.withDefaults()
	return result
}

// LoadIgnoreFilePatterns reads an ignore file and returns its patterns. Blank
// lines and lines starting with # are skipped. A missing file yields no patterns.
//
// #nosec G304
func LoadIgnoreFilePatterns(ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer func() {
		closeError := fileHandle.Close()
		if closeError != nil {
			fmt.Fprintf(os.Stderr, warningCloseFileFormat, ignoreFilePath, closeError)
		}
	}()

	var ignorePatterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		ignorePatterns = append(ignorePatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return ignorePatterns, nil
}

// LoadCombinedExcludePatterns merges the root-level ignore file patterns with the
// caller's exclusion patterns, keeping the first occurrence of each pattern.
func LoadCombinedExcludePatterns(absoluteRootPath string, exclusionPatterns []string) ([]string, error) {
	ignoreFilePath := filepath.Join(absoluteRootPath, utils.IgnoreFileName)
	ignoreFilePatterns, loadError := LoadIgnoreFilePatterns(ignoreFilePath)
	if loadError != nil {
		return nil, fmt.Errorf("loading %s from %s: %w", utils.IgnoreFileName, absoluteRootPath, loadError)
	}
	combinedPatterns := append(append([]string{}, exclusionPatterns...), ignoreFilePatterns...)
	return utils.DeduplicatePatterns(combinedPatterns), nil
}
