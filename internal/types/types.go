// Package types defines every cross‑package data structure used by the repoctx CLI.
package types

import (
	"encoding/xml"
	"time"
)

const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatXML      = "xml"
	FormatRaw      = "raw"
)

// FileRecord describes one selected file. Content is set only for text files
// below the content size limit whose bytes decode as UTF-8.
type FileRecord struct {
	Path         string  `json:"path" xml:"path,attr"`
	AbsolutePath string  `json:"-" xml:"-"`
	Content      *string `json:"content,omitempty" xml:"content,omitempty"`
	SizeBytes    uint64  `json:"sizeBytes" xml:"sizeBytes,attr"`
	LineCount    uint64  `json:"lineCount" xml:"lineCount,attr"`
	IsBinary     bool    `json:"isBinary" xml:"isBinary,attr"`
	MimeType     string  `json:"mimeType,omitempty" xml:"mimeType,attr,omitempty"`
	Tokens       int     `json:"tokens,omitempty" xml:"tokens,attr,omitempty"`
}

// HasContent reports whether the record carries captured text.
func (record FileRecord) HasContent() bool {
	return record.Content != nil
}

// TreeNode is one entry of a rendered directory tree.
type TreeNode struct {
	XMLName     xml.Name    `json:"-" xml:"node"`
	Name        string      `json:"name" xml:"name,attr"`
	IsDirectory bool        `json:"isDirectory" xml:"isDirectory,attr"`
	Children    []*TreeNode `json:"children,omitempty" xml:"node,omitempty"`
}

// GitInfo carries repository metadata for the document header.
type GitInfo struct {
	IsRepository bool   `json:"isRepository" xml:"isRepository,attr"`
	Branch       string `json:"branch,omitempty" xml:"branch,omitempty"`
	CommitHash   string `json:"commitHash,omitempty" xml:"commitHash,omitempty"`
	Author       string `json:"author,omitempty" xml:"author,omitempty"`
	Email        string `json:"email,omitempty" xml:"email,omitempty"`
	Date         string `json:"date,omitempty" xml:"date,omitempty"`
}

// Summary captures aggregate information about selected files.
type Summary struct {
	TotalFiles  int    `json:"totalFiles" xml:"totalFiles"`
	TextFiles   int    `json:"textFiles" xml:"textFiles"`
	BinaryFiles int    `json:"binaryFiles" xml:"binaryFiles"`
	TotalLines  uint64 `json:"totalLines" xml:"totalLines"`
	TotalBytes  uint64 `json:"totalBytes" xml:"totalBytes"`
	TotalSize   string `json:"totalSize" xml:"totalSize"`
	TotalTokens int    `json:"totalTokens,omitempty" xml:"totalTokens,omitempty"`
	Model       string `json:"model,omitempty" xml:"model,omitempty"`
}

// RepositoryContext is the complete input of the document renderers.
type RepositoryContext struct {
	RootPath    string       `json:"root"`
	Git         GitInfo      `json:"git"`
	Tree        string       `json:"tree"`
	Files       []FileRecord `json:"files"`
	Summary     Summary      `json:"summary"`
	GeneratedAt time.Time    `json:"generatedAt"`
}
