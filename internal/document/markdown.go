package document

import (
	"fmt"
	"path"
	"strings"

	"github.com/temirov/repoctx/internal/types"
	"github.com/temirov/repoctx/internal/utils"
)

const (
	markdownTitle               = "# Repository Context"
	markdownGitHeading          = "## Git"
	markdownSummaryHeading      = "## Summary"
	markdownStructureHeading    = "## Directory Structure"
	markdownFileHeadingFormat   = "## FILE: %s"
	markdownBinaryMessage       = "*Binary file - content not displayed*"
	markdownUnavailableMessage  = "*Content not available*"
	markdownNotRepositoryNotice = "*Not a git repository*"
	minimumFenceLength          = 3
	fenceCharacter              = "`"
)

func renderMarkdown(repositoryContext types.RepositoryContext, lineNumbers bool) string {
	var builder strings.Builder
	builder.WriteString(markdownTitle + "\n\n")
	fmt.Fprintf(&builder, "**Root:** `%s`\n", repositoryContext.RootPath)
	if generated := utils.FormatTimestamp(repositoryContext.GeneratedAt); generated != utils.EmptyString {
		fmt.Fprintf(&builder, "**Generated:** %s\n", generated)
	}
	builder.WriteString("\n")

	builder.WriteString(markdownGitHeading + "\n\n")
	gitInfo := repositoryContext.Git
	if !gitInfo.IsRepository {
		builder.WriteString(markdownNotRepositoryNotice + "\n\n")
	} else {
		writeMarkdownField(&builder, "Branch", gitInfo.Branch)
		writeMarkdownField(&builder, "Commit", gitInfo.CommitHash)
		if gitInfo.Author != utils.EmptyString {
			fmt.Fprintf(&builder, "- Author: %s <%s>\n", gitInfo.Author, gitInfo.Email)
		}
		writeMarkdownField(&builder, "Date", gitInfo.Date)
		builder.WriteString("\n")
	}

	summary := repositoryContext.Summary
	builder.WriteString(markdownSummaryHeading + "\n\n")
	fmt.Fprintf(&builder, "- Files: %d (%d text, %d binary)\n", summary.TotalFiles, summary.TextFiles, summary.BinaryFiles)
	fmt.Fprintf(&builder, "- Lines: %d\n", summary.TotalLines)
	fmt.Fprintf(&builder, "- Size: %s\n", summary.TotalSize)
	if summary.TotalTokens > 0 {
		fmt.Fprintf(&builder, "- Tokens: %d (%s)\n", summary.TotalTokens, summary.Model)
	}
	builder.WriteString("\n")

	builder.WriteString(markdownStructureHeading + "\n\n")
	treeFence := fenceFor(repositoryContext.Tree)
	builder.WriteString(treeFence + "\n")
	builder.WriteString(ensureTrailingNewline(repositoryContext.Tree))
	builder.WriteString(treeFence + "\n")

	for _, record := range repositoryContext.Files {
		builder.WriteString("\n")
		fmt.Fprintf(&builder, markdownFileHeadingFormat+"\n\n", record.Path)
		switch {
		case record.IsBinary:
			builder.WriteString(markdownBinaryMessage + "\n")
		case !record.HasContent():
			builder.WriteString(markdownUnavailableMessage + "\n")
		default:
			content := displayContent(record, lineNumbers)
			fence := fenceFor(content)
			builder.WriteString(fence + infoString(record.Path) + "\n")
			builder.WriteString(ensureTrailingNewline(content))
			builder.WriteString(fence + "\n")
		}
	}
	return builder.String()
}

func writeMarkdownField(builder *strings.Builder, label string, value string) {
	if value == utils.EmptyString {
		return
	}
	fmt.Fprintf(builder, "- %s: `%s`\n", label, value)
}

// infoString is the fenced block language: the file extension without its dot.
func infoString(filePath string) string {
	return strings.TrimPrefix(path.Ext(filePath), ".")
}

// fenceFor returns a backtick fence longer than any backtick run inside content.
func fenceFor(content string) string {
	longestRun, currentRun := 0, 0
	for _, character := range content {
		if string(character) == fenceCharacter {
			currentRun++
			if currentRun > longestRun {
				longestRun = currentRun
			}
			continue
		}
		currentRun = 0
	}
	fenceLength := minimumFenceLength
	if longestRun >= fenceLength {
		fenceLength = longestRun + 1
	}
	return strings.Repeat(fenceCharacter, fenceLength)
}

func ensureTrailingNewline(text string) string {
	if text == utils.EmptyString || strings.HasSuffix(text, "\n") {
		return text
	}
	return text + "\n"
}
