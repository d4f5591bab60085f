package document

import (
	"fmt"
	"strings"

	"github.com/temirov/repoctx/internal/types"
	"github.com/temirov/repoctx/internal/utils"
)

const (
	separatorLine         = "----------------------------------------"
	rawTitle              = "REPOSITORY CONTEXT"
	rawStructureHeader    = "DIRECTORY STRUCTURE"
	rawFileHeaderFormat   = "FILE: %s"
	rawBinaryMessage      = "(binary content omitted)"
	rawUnavailableMessage = "(content not available)"
	rawMimeTypeFormat     = "Mime Type: %s"
)

func renderRaw(repositoryContext types.RepositoryContext, lineNumbers bool) string {
	var builder strings.Builder
	builder.WriteString(rawTitle + "\n")
	builder.WriteString(separatorLine + "\n")
	fmt.Fprintf(&builder, "Root: %s\n", repositoryContext.RootPath)
	gitInfo := repositoryContext.Git
	if gitInfo.IsRepository {
		fmt.Fprintf(&builder, "Branch: %s\n", gitInfo.Branch)
		if gitInfo.CommitHash != utils.EmptyString {
			fmt.Fprintf(&builder, "Commit: %s\n", gitInfo.CommitHash)
			fmt.Fprintf(&builder, "Author: %s <%s>\n", gitInfo.Author, gitInfo.Email)
			fmt.Fprintf(&builder, "Date: %s\n", gitInfo.Date)
		}
	}
	summary := repositoryContext.Summary
	fmt.Fprintf(&builder, "Files: %d (%d text, %d binary)\n", summary.TotalFiles, summary.TextFiles, summary.BinaryFiles)
	fmt.Fprintf(&builder, "Lines: %d\n", summary.TotalLines)
	fmt.Fprintf(&builder, "Size: %s\n", summary.TotalSize)
	if summary.TotalTokens > 0 {
		fmt.Fprintf(&builder, "Tokens: %d (%s)\n", summary.TotalTokens, summary.Model)
	}
	builder.WriteString(separatorLine + "\n\n")

	builder.WriteString(rawStructureHeader + "\n")
	builder.WriteString(separatorLine + "\n")
	builder.WriteString(ensureTrailingNewline(repositoryContext.Tree))
	builder.WriteString(separatorLine + "\n")

	for _, record := range repositoryContext.Files {
		builder.WriteString("\n")
		fmt.Fprintf(&builder, rawFileHeaderFormat+"\n", record.Path)
		builder.WriteString(separatorLine + "\n")
		switch {
		case record.IsBinary:
			builder.WriteString(rawBinaryMessage + "\n")
			if record.MimeType != utils.EmptyString {
				fmt.Fprintf(&builder, rawMimeTypeFormat+"\n", record.MimeType)
			}
		case !record.HasContent():
			builder.WriteString(rawUnavailableMessage + "\n")
		default:
			builder.WriteString(ensureTrailingNewline(displayContent(record, lineNumbers)))
		}
		builder.WriteString(separatorLine + "\n")
	}
	return builder.String()
}
