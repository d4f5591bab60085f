package utils

import (
	"io/fs"
	"os"
)

// ClassifyDirEntry reports whether a directory entry is a directory or a
// regular file. Symbolic links are followed for files only, so a link to a
// directory is neither and never starts a second walk of the same subtree.
func ClassifyDirEntry(absolutePath string, directoryEntry fs.DirEntry) (isDirectory bool, isRegular bool, err error) {
	if directoryEntry.Type()&fs.ModeSymlink == 0 {
		return directoryEntry.IsDir(), directoryEntry.Type().IsRegular(), nil
	}
	targetInfo, statError := os.Stat(absolutePath)
	if statError != nil {
		return false, false, statError
	}
	return false, targetInfo.Mode().IsRegular(), nil
}
