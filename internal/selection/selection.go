// Package selection walks the repository root or an explicit target list and
// produces one FileRecord per file that passes the run's PathFilter.
package selection

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/temirov/repoctx/internal/config"
	"github.com/temirov/repoctx/internal/filter"
	"github.com/temirov/repoctx/internal/tokenizer"
	"github.com/temirov/repoctx/internal/types"
	"github.com/temirov/repoctx/internal/utils"
)

const (
	rootResolutionErrorFormat = "resolve repository root %s: %w"
	rootNotDirectoryFormat    = "repository root %s is not a directory"
	listDirectoryErrorFormat  = "list directory %s: %w"
	workingDirectoryErrorFmt  = "determine working directory: %w"

	// WarningTargetMissingFormat reports a target path that does not exist.
	WarningTargetMissingFormat = "skipping target %s: %v"
	// WarningEntryStatFormat reports an entry whose metadata cannot be read.
	WarningEntryStatFormat = "skipping %s: cannot stat: %v"
	// WarningIrregularFileFormat reports a target that is neither file nor directory.
	WarningIrregularFileFormat = "skipping %s: not a regular file"
)

// ErrNilFilter is returned when a Selector is constructed without a PathFilter.
var ErrNilFilter = errors.New("selection requires a path filter")

// Options tunes a Selector.
type Options struct {
	// WorkingDirectory resolves relative targets. Defaults to os.Getwd.
	WorkingDirectory string
	// TokenCounter, when set, counts tokens of captured content.
	TokenCounter tokenizer.Counter
	// Warn receives per-file problems that do not stop the walk.
	Warn func(string)
}

// Selector produces FileRecords for one repository root.
type Selector struct {
	rootPath   string
	pathFilter *filter.PathFilter
	limits     config.Limits
	recursive  bool
	options    Options
}

// New validates rootPath and binds the selector to pathFilter.
func New(rootPath string, pathFilter *filter.PathFilter, options Options) (*Selector, error) {
	if pathFilter == nil {
		return nil, ErrNilFilter
	}
	canonicalRoot, rootError := ResolveRoot(rootPath)
	if rootError != nil {
		return nil, rootError
	}
	if options.WorkingDirectory == utils.EmptyString {
		workingDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return nil, fmt.Errorf(workingDirectoryErrorFmt, workingDirectoryError)
		}
		options.WorkingDirectory = workingDirectory
	}
	if options.Warn == nil {
		options.Warn = func(string) {}
	}
	filterConfig := pathFilter.Config()
	return &Selector{
		rootPath:   canonicalRoot,
		pathFilter: pathFilter,
		limits:     filterConfig.Limits,
		recursive:  filterConfig.Recursive,
		options:    options,
	}, nil
}

// ResolveRoot returns the canonical form of rootPath and fails when it does
// not name an existing directory.
func ResolveRoot(rootPath string) (string, error) {
	canonicalRoot, canonicalError := utils.CanonicalPath(rootPath)
	if canonicalError != nil {
		return utils.EmptyString, fmt.Errorf(rootResolutionErrorFormat, rootPath, canonicalError)
	}
	rootInfo, statError := os.Stat(canonicalRoot)
	if statError != nil {
		return utils.EmptyString, fmt.Errorf(rootResolutionErrorFormat, rootPath, statError)
	}
	if !rootInfo.IsDir() {
		return utils.EmptyString, fmt.Errorf(rootNotDirectoryFormat, canonicalRoot)
	}
	return canonicalRoot, nil
}

// RootPath returns the canonical repository root.
func (selector *Selector) RootPath() string {
	return selector.rootPath
}

// Select returns the records of the whole root when targets is empty and the
// records of the named targets otherwise. Records keep first-seen order and
// are unique by path.
func (selector *Selector) Select(targets []string) ([]types.FileRecord, error) {
	collector := newRecordCollector()
	if len(targets) == 0 {
		if walkError := selector.walkDirectory(selector.rootPath, collector); walkError != nil {
			return nil, walkError
		}
		return collector.records, nil
	}

	for _, target := range targets {
		absoluteTarget := utils.ResolvePath(selector.options.WorkingDirectory, target)
		targetInfo, statError := os.Stat(absoluteTarget)
		if statError != nil {
			selector.options.Warn(fmt.Sprintf(WarningTargetMissingFormat, target, statError))
			continue
		}
		if targetInfo.IsDir() {
			if walkError := selector.walkDirectory(absoluteTarget, collector); walkError != nil {
				return nil, walkError
			}
			continue
		}
		if !targetInfo.Mode().IsRegular() {
			selector.options.Warn(fmt.Sprintf(WarningIrregularFileFormat, target))
			continue
		}
		if !selector.pathFilter.AdmitRecent(absoluteTarget, true) {
			continue
		}
		selector.collectFile(absoluteTarget, collector)
	}
	return collector.records, nil
}

// walkDirectory visits a directory depth first in name order. A listing
// failure aborts the walk; per-entry failures are reported and skipped.
func (selector *Selector) walkDirectory(absoluteDirectory string, collector *recordCollector) error {
	directoryEntries, listError := os.ReadDir(absoluteDirectory)
	if listError != nil {
		return fmt.Errorf(listDirectoryErrorFormat, absoluteDirectory, listError)
	}
	for _, directoryEntry := range directoryEntries {
		absolutePath := filepath.Join(absoluteDirectory, directoryEntry.Name())
		relativePath := utils.RelativePathOrSelf(absolutePath, selector.rootPath)

		isDirectory, isRegular, classifyError := utils.ClassifyDirEntry(absolutePath, directoryEntry)
		if classifyError != nil {
			selector.options.Warn(fmt.Sprintf(WarningEntryStatFormat, absolutePath, classifyError))
			continue
		}

		if isDirectory {
			if !selector.recursive {
				continue
			}
			if !selector.pathFilter.ShouldInclude(relativePath, false) {
				continue
			}
			if walkError := selector.walkDirectory(absolutePath, collector); walkError != nil {
				return walkError
			}
			continue
		}
		if !isRegular {
			continue
		}
		if !selector.pathFilter.Admit(absolutePath, relativePath, true) {
			continue
		}
		selector.collectFile(absolutePath, collector)
	}
	return nil
}

func (selector *Selector) collectFile(absolutePath string, collector *recordCollector) {
	relativePath := utils.RelativePathOrSelf(absolutePath, selector.rootPath)
	if collector.seen(relativePath) {
		return
	}
	record, inspected := inspectFile(absolutePath, relativePath, fileInspectionConfig{
		Limits:       selector.limits,
		TokenCounter: selector.options.TokenCounter,
		Warn:         selector.options.Warn,
	})
	if !inspected {
		return
	}
	collector.add(record)
}

type recordCollector struct {
	records []types.FileRecord
	paths   map[string]struct{}
}

func newRecordCollector() *recordCollector {
	return &recordCollector{paths: make(map[string]struct{})}
}

func (collector *recordCollector) seen(relativePath string) bool {
	_, exists := collector.paths[relativePath]
	return exists
}

func (collector *recordCollector) add(record types.FileRecord) {
	collector.paths[record.Path] = struct{}{}
	collector.records = append(collector.records, record)
}
