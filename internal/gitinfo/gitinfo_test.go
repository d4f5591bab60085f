package gitinfo_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/temirov/repoctx/internal/gitinfo"
)

const (
	testAuthorName  = "Ada Lovelace"
	testAuthorEmail = "ada@example.com"
	testBranchName  = "main"
)

// initRepository creates a repository with a single commit and returns its hash.
func initRepository(testingHandle *testing.T, rootDirectory string) plumbing.Hash {
	testingHandle.Helper()
	repository, initError := git.PlainInitWithOptions(rootDirectory, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(testBranchName)},
	})
	if initError != nil {
		testingHandle.Fatalf("init repository: %v", initError)
	}
	if writeError := os.WriteFile(filepath.Join(rootDirectory, "main.go"), []byte("package main\n"), 0o644); writeError != nil {
		testingHandle.Fatalf("write file: %v", writeError)
	}
	worktree, worktreeError := repository.Worktree()
	if worktreeError != nil {
		testingHandle.Fatalf("worktree: %v", worktreeError)
	}
	if _, addError := worktree.Add("main.go"); addError != nil {
		testingHandle.Fatalf("add: %v", addError)
	}
	commitHash, commitError := worktree.Commit("initial commit", &git.CommitOptions{
		Author: &object.Signature{
			Name:  testAuthorName,
			Email: testAuthorEmail,
			When:  time.Date(2024, time.February, 3, 12, 0, 0, 0, time.UTC),
		},
	})
	if commitError != nil {
		testingHandle.Fatalf("commit: %v", commitError)
	}
	return commitHash
}

func TestExtractReadsHeadCommit(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	commitHash := initRepository(testingHandle, rootDirectory)

	info, extractError := gitinfo.Extract(rootDirectory)
	if extractError != nil {
		testingHandle.Fatalf("Extract error: %v", extractError)
	}
	if !info.IsRepository {
		testingHandle.Fatalf("expected repository")
	}
	if info.Branch != testBranchName {
		testingHandle.Fatalf("expected branch %s, got %s", testBranchName, info.Branch)
	}
	if info.CommitHash != commitHash.String() {
		testingHandle.Fatalf("expected commit %s, got %s", commitHash, info.CommitHash)
	}
	if info.Author != testAuthorName || info.Email != testAuthorEmail {
		testingHandle.Fatalf("unexpected author: %s <%s>", info.Author, info.Email)
	}
	if info.Date != "2024-02-03" {
		testingHandle.Fatalf("unexpected date %s", info.Date)
	}
}

func TestExtractDetachedHead(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	commitHash := initRepository(testingHandle, rootDirectory)
	repository, openError := git.PlainOpen(rootDirectory)
	if openError != nil {
		testingHandle.Fatalf("open: %v", openError)
	}
	if setError := repository.Storer.SetReference(plumbing.NewHashReference(plumbing.HEAD, commitHash)); setError != nil {
		testingHandle.Fatalf("detach HEAD: %v", setError)
	}

	info, extractError := gitinfo.Extract(rootDirectory)
	if extractError != nil {
		testingHandle.Fatalf("Extract error: %v", extractError)
	}
	if info.Branch != "HEAD" {
		testingHandle.Fatalf("expected detached HEAD, got %s", info.Branch)
	}
}

func TestExtractOutsideRepository(testingHandle *testing.T) {
	info, extractError := gitinfo.Extract(testingHandle.TempDir())
	if extractError != nil {
		testingHandle.Fatalf("Extract error: %v", extractError)
	}
	if info.IsRepository {
		testingHandle.Fatalf("expected no repository")
	}
}

func TestExtractRepositoryWithoutCommits(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	if _, initError := git.PlainInit(rootDirectory, false); initError != nil {
		testingHandle.Fatalf("init repository: %v", initError)
	}
	info, extractError := gitinfo.Extract(rootDirectory)
	if extractError != nil {
		testingHandle.Fatalf("Extract error: %v", extractError)
	}
	if !info.IsRepository || info.CommitHash != "" {
		testingHandle.Fatalf("unexpected info: %+v", info)
	}
}

func TestDiscoverFindsWorkTreeFromSubdirectory(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	initRepository(testingHandle, rootDirectory)
	nestedDirectory := filepath.Join(rootDirectory, "pkg", "inner")
	if mkdirError := os.MkdirAll(nestedDirectory, 0o755); mkdirError != nil {
		testingHandle.Fatalf("mkdir: %v", mkdirError)
	}

	discovered, discoverError := gitinfo.Discover(nestedDirectory)
	if discoverError != nil {
		testingHandle.Fatalf("Discover error: %v", discoverError)
	}
	expectedRoot, _ := filepath.EvalSymlinks(rootDirectory)
	actualRoot, _ := filepath.EvalSymlinks(discovered)
	if actualRoot != expectedRoot {
		testingHandle.Fatalf("expected %s, got %s", expectedRoot, actualRoot)
	}

	if _, discoverError = gitinfo.Discover(testingHandle.TempDir()); !errors.Is(discoverError, gitinfo.ErrNotRepository) {
		testingHandle.Fatalf("expected ErrNotRepository, got %v", discoverError)
	}
}
