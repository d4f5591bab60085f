// Package utils contains general helper functions used across repoctx.
package utils

import (
	"path/filepath"
	"strings"
)

const (
	pathSegmentSeparator = "/"
	hiddenEntryPrefix    = "."
	currentDirectory     = "."
	parentDirectory      = ".."
)

// DeduplicatePatterns removes duplicate and blank patterns from a slice while
// preserving order. The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if trimmedPattern == EmptyString {
			continue
		}
		if _, exists := encounteredPatterns[trimmedPattern]; !exists {
			encounteredPatterns[trimmedPattern] = struct{}{}
			result = append(result, trimmedPattern)
		}
	}
	return result
}

// RelativePathOrSelf calculates the forward-slash path of fullPath relative to root.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return filepath.ToSlash(cleanPath)
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)

	if cleanPath == cleanAbsoluteRoot {
		return currentDirectory
	}

	relativePath, relErr := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relErr != nil {
		return filepath.ToSlash(cleanPath)
	}
	return filepath.ToSlash(relativePath)
}

// NormalizeSlashes converts both separator styles to forward slashes.
func NormalizeSlashes(path string) string {
	return strings.ReplaceAll(filepath.ToSlash(path), "\\", pathSegmentSeparator)
}

// IsHiddenPath reports whether any segment of a root-relative path begins with a dot.
// The "." and ".." segments do not count as hidden.
func IsHiddenPath(relativePath string) bool {
	for _, segment := range strings.Split(NormalizeSlashes(relativePath), pathSegmentSeparator) {
		if segment == currentDirectory || segment == parentDirectory {
			continue
		}
		if strings.HasPrefix(segment, hiddenEntryPrefix) {
			return true
		}
	}
	return false
}

// IsWithin reports whether candidate equals parent or lies below it.
// Both arguments must be clean absolute paths.
func IsWithin(candidate, parent string) bool {
	if candidate == parent {
		return true
	}
	prefix := parent
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(candidate, prefix)
}

// CanonicalPath returns the clean absolute form of path with symbolic links
// resolved when the path exists.
func CanonicalPath(path string) (string, error) {
	absolutePath, absoluteError := filepath.Abs(path)
	if absoluteError != nil {
		return EmptyString, absoluteError
	}
	resolvedPath, resolveError := filepath.EvalSymlinks(absolutePath)
	if resolveError != nil {
		return filepath.Clean(absolutePath), nil
	}
	return filepath.Clean(resolvedPath), nil
}

// CountLines returns the number of physical lines in text. A final line
// terminator does not start a new line, so "a\nb" and "a\nb\n" both count two.
func CountLines(text string) uint64 {
	if text == EmptyString {
		return 0
	}
	lineCount := uint64(strings.Count(text, "\n"))
	if !strings.HasSuffix(text, "\n") {
		lineCount++
	}
	return lineCount
}

// ResolvePath makes target absolute against workingDirectory and returns its
// canonical form.
func ResolvePath(workingDirectory string, target string) string {
	candidate := target
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(workingDirectory, candidate)
	}
	canonicalPath, canonicalError := CanonicalPath(candidate)
	if canonicalError != nil {
		return filepath.Clean(candidate)
	}
	return canonicalPath
}
