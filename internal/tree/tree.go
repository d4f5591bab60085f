// Package tree renders the directory hierarchy of a run, either in full or
// pruned to the ancestor closure of an explicit target list.
package tree

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/temirov/repoctx/internal/filter"
	"github.com/temirov/repoctx/internal/selection"
	"github.com/temirov/repoctx/internal/types"
	"github.com/temirov/repoctx/internal/utils"
)

const (
	readDirectoryErrorFormat = "reading directory %s: %w"
	workingDirectoryErrorFmt = "determine working directory: %w"

	// WarningTargetMissingFormat reports a target that contributes nothing to the tree.
	WarningTargetMissingFormat = "tree: skipping target %s: %v"
	// WarningTargetOutsideRootFormat reports a target the root walk cannot reach.
	WarningTargetOutsideRootFormat = "tree: target %s is outside %s"
	// WarningEntryStatFormat reports an entry whose metadata cannot be read.
	WarningEntryStatFormat = "tree: skipping %s: %v"
)

// ErrNilFilter is returned when a Renderer is constructed without a PathFilter.
var ErrNilFilter = errors.New("tree requires a path filter")

// Options tunes a Renderer.
type Options struct {
	// WorkingDirectory resolves relative targets. Defaults to os.Getwd.
	WorkingDirectory string
	// Warn receives problems that do not stop rendering.
	Warn func(string)
}

// Renderer builds trees for one repository root.
type Renderer struct {
	rootPath   string
	pathFilter *filter.PathFilter
	recursive  bool
	options    Options
}

// New validates rootPath and binds the renderer to pathFilter.
func New(rootPath string, pathFilter *filter.PathFilter, options Options) (*Renderer, error) {
	if pathFilter == nil {
		return nil, ErrNilFilter
	}
	canonicalRoot, rootError := selection.ResolveRoot(rootPath)
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
	return &Renderer{
		rootPath:   canonicalRoot,
		pathFilter: pathFilter,
		recursive:  pathFilter.Config().Recursive,
		options:    options,
	}, nil
}

// Render returns the text form of BuildTree.
func (renderer *Renderer) Render(targets []string) (string, error) {
	rootNode, buildError := renderer.BuildTree(targets)
	if buildError != nil {
		return utils.EmptyString, buildError
	}
	return Format(rootNode), nil
}

// BuildTree renders the full tree when targets is empty or names the root,
// and the pruned tree of the targets otherwise.
func (renderer *Renderer) BuildTree(targets []string) (*types.TreeNode, error) {
	rootNode := &types.TreeNode{Name: filepath.Base(renderer.rootPath), IsDirectory: true}
	if len(targets) == 0 {
		return rootNode, renderer.buildFull(renderer.rootPath, rootNode)
	}

	resolvedTargets := make([]Target, 0, len(targets))
	for _, target := range targets {
		absoluteTarget := utils.ResolvePath(renderer.options.WorkingDirectory, target)
		if absoluteTarget == renderer.rootPath {
			return rootNode, renderer.buildFull(renderer.rootPath, rootNode)
		}
		targetInfo, statError := os.Stat(absoluteTarget)
		if statError != nil {
			renderer.options.Warn(fmt.Sprintf(WarningTargetMissingFormat, target, statError))
			continue
		}
		if !utils.IsWithin(absoluteTarget, renderer.rootPath) {
			renderer.options.Warn(fmt.Sprintf(WarningTargetOutsideRootFormat, target, renderer.rootPath))
			continue
		}
		resolvedTargets = append(resolvedTargets, Target{Path: absoluteTarget, IsDirectory: targetInfo.IsDir()})
	}

	renderSet := BuildRenderSet(renderer.rootPath, resolvedTargets)
	return rootNode, renderer.buildPruned(renderer.rootPath, rootNode, renderSet)
}

// buildFull mirrors the selector walk. Directories that survive filtering are
// shown even when empty; without recursion they are shown without contents.
func (renderer *Renderer) buildFull(absoluteDirectory string, parentNode *types.TreeNode) error {
	directoryEntries, readError := os.ReadDir(absoluteDirectory)
	if readError != nil {
		return fmt.Errorf(readDirectoryErrorFormat, absoluteDirectory, readError)
	}
	for _, directoryEntry := range directoryEntries {
		absolutePath := filepath.Join(absoluteDirectory, directoryEntry.Name())
		relativePath := utils.RelativePathOrSelf(absolutePath, renderer.rootPath)
		isDirectory, isRegular, classifyError := utils.ClassifyDirEntry(absolutePath, directoryEntry)
		if classifyError != nil {
			renderer.options.Warn(fmt.Sprintf(WarningEntryStatFormat, absolutePath, classifyError))
			continue
		}

		if isDirectory {
			if !renderer.pathFilter.ShouldInclude(relativePath, false) {
				continue
			}
			childNode := appendChild(parentNode, directoryEntry.Name(), true)
			if !renderer.recursive {
				continue
			}
			if buildError := renderer.buildFull(absolutePath, childNode); buildError != nil {
				return buildError
			}
			continue
		}
		if !isRegular || !renderer.pathFilter.Admit(absolutePath, relativePath, true) {
			continue
		}
		appendChild(parentNode, directoryEntry.Name(), false)
	}
	return nil
}

// buildPruned walks from the root visiting only entries of renderSet.
// Ancestors of targets are always shown; descendants of expanded directories
// go through the PathFilter; explicitly named files only face the recency rule.
func (renderer *Renderer) buildPruned(absoluteDirectory string, parentNode *types.TreeNode, renderSet RenderSet) error {
	directoryEntries, readError := os.ReadDir(absoluteDirectory)
	if readError != nil {
		return fmt.Errorf(readDirectoryErrorFormat, absoluteDirectory, readError)
	}
	for _, directoryEntry := range directoryEntries {
		absolutePath := filepath.Join(absoluteDirectory, directoryEntry.Name())
		if !renderSet.Contains(absolutePath) {
			continue
		}
		relativePath := utils.RelativePathOrSelf(absolutePath, renderer.rootPath)
		isDirectory, isRegular, classifyError := utils.ClassifyDirEntry(absolutePath, directoryEntry)
		if classifyError != nil {
			renderer.options.Warn(fmt.Sprintf(WarningEntryStatFormat, absolutePath, classifyError))
			continue
		}
		isMember := renderSet.IsMember(absolutePath)

		if isDirectory {
			if !isMember && !renderer.pathFilter.ShouldInclude(relativePath, false) {
				continue
			}
			childNode := appendChild(parentNode, directoryEntry.Name(), true)
			if !isMember && !renderer.recursive {
				continue
			}
			if buildError := renderer.buildPruned(absolutePath, childNode, renderSet); buildError != nil {
				return buildError
			}
			continue
		}
		if !isRegular {
			continue
		}
		if renderSet.IsExplicitFile(absolutePath) {
			if !renderer.pathFilter.AdmitRecent(absolutePath, true) {
				continue
			}
		} else if !renderer.pathFilter.Admit(absolutePath, relativePath, true) {
			continue
		}
		appendChild(parentNode, directoryEntry.Name(), false)
	}
	return nil
}

// appendChild adds a node keeping the children sorted by name.
func appendChild(parentNode *types.TreeNode, name string, isDirectory bool) *types.TreeNode {
	childNode := &types.TreeNode{Name: name, IsDirectory: isDirectory}
	insertIndex := sort.Search(len(parentNode.Children), func(index int) bool {
		return parentNode.Children[index].Name >= name
	})
	parentNode.Children = append(parentNode.Children, nil)
	copy(parentNode.Children[insertIndex+1:], parentNode.Children[insertIndex:])
	parentNode.Children[insertIndex] = childNode
	return childNode
}
