// Package document assembles the repository context of a run and renders it
// in one of the supported output formats.
package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/temirov/repoctx/internal/types"
	"github.com/temirov/repoctx/internal/utils"
)

const (
	extensionMarkdown = "md"
	extensionJSON     = "json"
	extensionXML      = "xml"
	extensionRaw      = "txt"

	lineNumberFormat = "%4d | "

	unsupportedFormatErrorFormat = "unsupported format %q (expected markdown, json, xml or raw)"
)

// Options controls rendering.
type Options struct {
	Format      string
	LineNumbers bool
}

var formatAliases = map[string]string{
	types.FormatMarkdown: types.FormatMarkdown,
	extensionMarkdown:    types.FormatMarkdown,
	types.FormatJSON:     types.FormatJSON,
	types.FormatXML:      types.FormatXML,
	types.FormatRaw:      types.FormatRaw,
	extensionRaw:         types.FormatRaw,
	"text":               types.FormatRaw,
	"plain":              types.FormatRaw,
}

var formatExtensions = map[string]string{
	types.FormatMarkdown: extensionMarkdown,
	types.FormatJSON:     extensionJSON,
	types.FormatXML:      extensionXML,
	types.FormatRaw:      extensionRaw,
}

// ParseFormat normalizes a user supplied format name. An empty value selects markdown.
func ParseFormat(value string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == utils.EmptyString {
		return types.FormatMarkdown, nil
	}
	format, known := formatAliases[normalized]
	if !known {
		return utils.EmptyString, fmt.Errorf(unsupportedFormatErrorFormat, value)
	}
	return format, nil
}

// Extension returns the file extension, without a dot, used for format.
func Extension(format string) (string, error) {
	canonicalFormat, parseError := ParseFormat(format)
	if parseError != nil {
		return utils.EmptyString, parseError
	}
	return formatExtensions[canonicalFormat], nil
}

// Summarize aggregates file counts, lines, bytes and tokens of records.
func Summarize(records []types.FileRecord, model string) types.Summary {
	var summary types.Summary
	for _, record := range records {
		summary.TotalFiles++
		if record.IsBinary {
			summary.BinaryFiles++
		} else {
			summary.TextFiles++
		}
		summary.TotalLines += record.LineCount
		summary.TotalBytes += record.SizeBytes
		summary.TotalTokens += record.Tokens
	}
	summary.TotalSize = utils.FormatFileSize(summary.TotalBytes)
	if summary.TotalTokens > 0 {
		summary.Model = model
	}
	return summary
}

// NewRepositoryContext bundles the results of one run.
func NewRepositoryContext(rootPath string, gitInfo types.GitInfo, tree string, records []types.FileRecord, model string, generatedAt time.Time) types.RepositoryContext {
	if records == nil {
		records = []types.FileRecord{}
	}
	return types.RepositoryContext{
		RootPath:    rootPath,
		Git:         gitInfo,
		Tree:        tree,
		Files:       records,
		Summary:     Summarize(records, model),
		GeneratedAt: generatedAt,
	}
}

// Render formats repositoryContext according to options.
func Render(repositoryContext types.RepositoryContext, options Options) (string, error) {
	format, parseError := ParseFormat(options.Format)
	if parseError != nil {
		return utils.EmptyString, parseError
	}
	switch format {
	case types.FormatJSON:
		return renderJSON(repositoryContext)
	case types.FormatXML:
		return renderXML(repositoryContext)
	case types.FormatRaw:
		return renderRaw(repositoryContext, options.LineNumbers), nil
	default:
		return renderMarkdown(repositoryContext, options.LineNumbers), nil
	}
}

// numberLines prefixes every physical line of content with its number.
func numberLines(content string) string {
	if content == utils.EmptyString {
		return utils.EmptyString
	}
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	var builder strings.Builder
	for index, line := range lines {
		fmt.Fprintf(&builder, lineNumberFormat, index+1)
		builder.WriteString(line)
		builder.WriteString("\n")
	}
	return builder.String()
}

// displayContent returns the content of a text record ready for output.
func displayContent(record types.FileRecord, lineNumbers bool) string {
	if !record.HasContent() {
		return utils.EmptyString
	}
	if lineNumbers {
		return numberLines(*record.Content)
	}
	return *record.Content
}
