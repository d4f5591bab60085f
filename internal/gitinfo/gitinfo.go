// Package gitinfo reads repository metadata for the document header.
package gitinfo

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/temirov/repoctx/internal/types"
	"github.com/temirov/repoctx/internal/utils"
)

const (
	detachedHeadName = "HEAD"

	openRepositoryErrorFormat = "open git repository at %s: %w"
	worktreeErrorFormat       = "resolve git work tree at %s: %w"
	headErrorFormat           = "resolve HEAD in %s: %w"
	commitErrorFormat         = "read HEAD commit %s: %w"
)

// ErrNotRepository is returned by Discover when no enclosing work tree exists.
var ErrNotRepository = errors.New("not a git repository")

// Discover returns the root of the work tree enclosing path.
func Discover(path string) (string, error) {
	repository, openError := openRepository(path)
	if openError != nil {
		return utils.EmptyString, openError
	}
	worktree, worktreeError := repository.Worktree()
	if worktreeError != nil {
		if errors.Is(worktreeError, git.ErrIsBareRepository) {
			return utils.EmptyString, ErrNotRepository
		}
		return utils.EmptyString, fmt.Errorf(worktreeErrorFormat, path, worktreeError)
	}
	return worktree.Filesystem.Root(), nil
}

// Extract reads branch and HEAD commit details. A directory outside any
// repository yields a zero GitInfo and no error; a repository without commits
// reports only that it is a repository.
func Extract(rootPath string) (types.GitInfo, error) {
	repository, openError := openRepository(rootPath)
	if errors.Is(openError, ErrNotRepository) {
		return types.GitInfo{}, nil
	}
	if openError != nil {
		return types.GitInfo{}, openError
	}

	info := types.GitInfo{IsRepository: true}
	headReference, headError := repository.Head()
	if errors.Is(headError, plumbing.ErrReferenceNotFound) {
		return info, nil
	}
	if headError != nil {
		return types.GitInfo{}, fmt.Errorf(headErrorFormat, rootPath, headError)
	}

	info.Branch = detachedHeadName
	if headReference.Name().IsBranch() {
		info.Branch = headReference.Name().Short()
	}
	info.CommitHash = headReference.Hash().String()

	commit, commitError := repository.CommitObject(headReference.Hash())
	if commitError != nil {
		return types.GitInfo{}, fmt.Errorf(commitErrorFormat, info.CommitHash, commitError)
	}
	info.Author = commit.Author.Name
	info.Email = commit.Author.Email
	info.Date = utils.FormatDate(commit.Author.When)
	return info, nil
}

func openRepository(path string) (*git.Repository, error) {
	repository, openError := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(openError, git.ErrRepositoryNotExists) {
		return nil, ErrNotRepository
	}
	if openError != nil {
		return nil, fmt.Errorf(openRepositoryErrorFormat, path, openError)
	}
	return repository, nil
}
