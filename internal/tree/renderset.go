package tree

import (
	"path/filepath"

	"github.com/temirov/repoctx/internal/utils"
)

// Target is a resolved target path. Path must be canonical and absolute.
type Target struct {
	Path        string
	IsDirectory bool
}

// RenderSet is the ancestor closure of a target list: every target, every
// directory between a target and the root, and the root itself. Directory
// targets are fully expanded, so their whole subtree belongs to the set.
type RenderSet struct {
	rootPath      string
	members       map[string]struct{}
	expanded      map[string]struct{}
	explicitFiles map[string]struct{}
}

// BuildRenderSet computes the render set without touching the filesystem.
// Targets outside rootPath cannot be reached from the root and are ignored.
func BuildRenderSet(rootPath string, targets []Target) RenderSet {
	cleanRoot := filepath.Clean(rootPath)
	renderSet := RenderSet{
		rootPath:      cleanRoot,
		members:       map[string]struct{}{cleanRoot: {}},
		expanded:      make(map[string]struct{}),
		explicitFiles: make(map[string]struct{}),
	}
	for _, target := range targets {
		targetPath := filepath.Clean(target.Path)
		if !utils.IsWithin(targetPath, cleanRoot) {
			continue
		}
		for currentPath := targetPath; ; {
			renderSet.members[currentPath] = struct{}{}
			if currentPath == cleanRoot {
				break
			}
			parentPath := filepath.Dir(currentPath)
			if parentPath == currentPath {
				break
			}
			currentPath = parentPath
		}
		if target.IsDirectory {
			renderSet.expanded[targetPath] = struct{}{}
		} else {
			renderSet.explicitFiles[targetPath] = struct{}{}
		}
	}
	return renderSet
}

// Contains reports whether path is in the ancestor closure or below a fully
// expanded directory.
func (renderSet RenderSet) Contains(path string) bool {
	cleanPath := filepath.Clean(path)
	if _, member := renderSet.members[cleanPath]; member {
		return true
	}
	return renderSet.IsExpandedDescendant(cleanPath)
}

// IsMember reports whether path is the root, a target or an ancestor of one.
func (renderSet RenderSet) IsMember(path string) bool {
	_, member := renderSet.members[filepath.Clean(path)]
	return member
}

// IsExpandedDescendant reports whether path lies strictly below a directory target.
func (renderSet RenderSet) IsExpandedDescendant(path string) bool {
	cleanPath := filepath.Clean(path)
	if len(renderSet.expanded) == 0 || cleanPath == renderSet.rootPath {
		return false
	}
	for currentPath := filepath.Dir(cleanPath); ; {
		if _, expanded := renderSet.expanded[currentPath]; expanded {
			return true
		}
		if currentPath == renderSet.rootPath {
			return false
		}
		parentPath := filepath.Dir(currentPath)
		if parentPath == currentPath {
			return false
		}
		currentPath = parentPath
	}
}

// IsExplicitFile reports whether path was named as a file target.
func (renderSet RenderSet) IsExplicitFile(path string) bool {
	_, explicit := renderSet.explicitFiles[filepath.Clean(path)]
	return explicit
}
