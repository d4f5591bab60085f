// Package packager runs the full pipeline of one invocation: filter,
// selection, tree, git metadata and document rendering.
package packager

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/temirov/repoctx/internal/config"
	"github.com/temirov/repoctx/internal/document"
	"github.com/temirov/repoctx/internal/filter"
	"github.com/temirov/repoctx/internal/gitinfo"
	"github.com/temirov/repoctx/internal/selection"
	"github.com/temirov/repoctx/internal/tokenizer"
	"github.com/temirov/repoctx/internal/tree"
	"github.com/temirov/repoctx/internal/types"
	"github.com/temirov/repoctx/internal/utils"
)

const (
	workingDirectoryErrorFormat = "determine working directory: %w"
	discoverRootErrorFormat     = "discover repository root from %s: %w"
	selectFilesErrorFormat      = "select files: %w"
	renderTreeErrorFormat       = "render tree: %w"
	renderDocumentErrorFormat   = "render document: %w"
	warningGitMetadataFormat    = "git metadata unavailable for %s: %v"
)

// Options describes one run.
type Options struct {
	// RootPath is the repository root. Empty selects the enclosing git work
	// tree of WorkingDirectory, or WorkingDirectory itself outside a repository.
	RootPath string
	// WorkingDirectory resolves relative targets. Defaults to os.Getwd.
	WorkingDirectory string
	Targets          []string
	Filter           config.FilterConfig
	Format           string
	LineNumbers      bool
	TokenCounter     tokenizer.Counter
	TokenModel       string
	Now              func() time.Time
	Warn             func(string)
}

// Result holds the assembled context and its rendering.
type Result struct {
	Context  types.RepositoryContext
	Format   string
	Rendered string
}

// Build executes the pipeline. Fatal errors abort the run; recoverable
// problems are reported through Options.Warn.
func Build(options Options) (Result, error) {
	format, formatError := document.ParseFormat(options.Format)
	if formatError != nil {
		return Result{}, formatError
	}
	warn := options.Warn
	if warn == nil {
		warn = func(string) {}
	}
	now := options.Now
	if now == nil {
		now = time.Now
	}

	workingDirectory := options.WorkingDirectory
	if workingDirectory == utils.EmptyString {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return Result{}, fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	rootPath, rootError := ResolveRootPath(options.RootPath, workingDirectory)
	if rootError != nil {
		return Result{}, rootError
	}
	canonicalRoot, canonicalError := selection.ResolveRoot(rootPath)
	if canonicalError != nil {
		return Result{}, canonicalError
	}

	filterConfig := options.Filter
	combinedExcludes, excludeError := config.LoadCombinedExcludePatterns(canonicalRoot, filterConfig.ExcludePatterns)
	if excludeError != nil {
		return Result{}, excludeError
	}
	filterConfig.ExcludePatterns = combinedExcludes

	pathFilter, filterError := filter.New(filterConfig, canonicalRoot, filter.WithWarn(warn), filter.WithClock(now))
	if filterError != nil {
		return Result{}, filterError
	}

	selector, selectorError := selection.New(canonicalRoot, pathFilter, selection.Options{
		WorkingDirectory: workingDirectory,
		TokenCounter:     options.TokenCounter,
		Warn:             warn,
	})
	if selectorError != nil {
		return Result{}, selectorError
	}
	records, selectError := selector.Select(options.Targets)
	if selectError != nil {
		return Result{}, fmt.Errorf(selectFilesErrorFormat, selectError)
	}

	renderer, rendererError := tree.New(canonicalRoot, pathFilter, tree.Options{
		WorkingDirectory: workingDirectory,
		Warn:             warn,
	})
	if rendererError != nil {
		return Result{}, rendererError
	}
	treeText, treeError := renderer.Render(options.Targets)
	if treeError != nil {
		return Result{}, fmt.Errorf(renderTreeErrorFormat, treeError)
	}

	gitInfo, gitError := gitinfo.Extract(canonicalRoot)
	if gitError != nil {
		warn(fmt.Sprintf(warningGitMetadataFormat, canonicalRoot, gitError))
		gitInfo = types.GitInfo{}
	}

	tokenModel := utils.EmptyString
	if options.TokenCounter != nil {
		tokenModel = options.TokenModel
	}
	repositoryContext := document.NewRepositoryContext(canonicalRoot, gitInfo, treeText, records, tokenModel, now())
	rendered, renderError := document.Render(repositoryContext, document.Options{Format: format, LineNumbers: options.LineNumbers})
	if renderError != nil {
		return Result{}, fmt.Errorf(renderDocumentErrorFormat, renderError)
	}
	return Result{Context: repositoryContext, Format: format, Rendered: rendered}, nil
}

// ResolveRootPath returns explicitRoot when set. Otherwise it returns the git
// work tree enclosing workingDirectory, or workingDirectory itself.
func ResolveRootPath(explicitRoot string, workingDirectory string) (string, error) {
	if explicitRoot != utils.EmptyString {
		return utils.ResolvePath(workingDirectory, explicitRoot), nil
	}
	discoveredRoot, discoverError := gitinfo.Discover(workingDirectory)
	if errors.Is(discoverError, gitinfo.ErrNotRepository) {
		return workingDirectory, nil
	}
	if discoverError != nil {
		return utils.EmptyString, fmt.Errorf(discoverRootErrorFormat, workingDirectory, discoverError)
	}
	return discoveredRoot, nil
}
