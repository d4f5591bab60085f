// Package output delivers a rendered document to stdout, a file, or the clipboard.
package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/repoctx/internal/document"
	"github.com/temirov/repoctx/internal/utils"
)

const (
	extensionSeparator = "."

	outputIsDirectoryErrorFormat = "output path %s is a directory"
	outputCreateErrorFormat      = "create output file %s: %w"
	outputWriteErrorFormat       = "write output: %w"
	clipboardErrorFormat         = "copy output to clipboard: %w"
)

// ErrNoClipboard is returned when a clipboard copy is requested without a Copier.
var ErrNoClipboard = errors.New("clipboard copier not configured")

// Destination describes where a rendered document goes. An empty FilePath
// writes to Stdout. Clipboard copies in addition to the primary destination.
type Destination struct {
	FilePath  string
	Clipboard bool
	Stdout    io.Writer
	Copier    Copier
}

// Write delivers rendered to destination and returns the file path written,
// or an empty string when the document went to Stdout.
func Write(destination Destination, format string, rendered string) (string, error) {
	writtenPath := utils.EmptyString
	if destination.FilePath != utils.EmptyString {
		extension, extensionError := document.Extension(format)
		if extensionError != nil {
			return utils.EmptyString, extensionError
		}
		finalPath := WithExtension(destination.FilePath, extension)
		if writeError := writeFile(finalPath, rendered); writeError != nil {
			return utils.EmptyString, writeError
		}
		writtenPath = finalPath
	} else {
		stdout := destination.Stdout
		if stdout == nil {
			stdout = os.Stdout
		}
		if _, writeError := io.WriteString(stdout, rendered); writeError != nil {
			return utils.EmptyString, fmt.Errorf(outputWriteErrorFormat, writeError)
		}
	}

	if destination.Clipboard {
		if destination.Copier == nil {
			return writtenPath, ErrNoClipboard
		}
		if copyError := destination.Copier.Copy(rendered); copyError != nil {
			return writtenPath, fmt.Errorf(clipboardErrorFormat, copyError)
		}
	}
	return writtenPath, nil
}

// WithExtension appends extension to filePath unless it already ends with it.
func WithExtension(filePath string, extension string) string {
	suffix := extensionSeparator + extension
	if strings.EqualFold(filepath.Ext(filePath), suffix) {
		return filePath
	}
	return filePath + suffix
}

func writeFile(filePath string, rendered string) error {
	if info, statError := os.Stat(filePath); statError == nil && info.IsDir() {
		return fmt.Errorf(outputIsDirectoryErrorFormat, filePath)
	}
	if writeError := os.WriteFile(filePath, []byte(rendered), 0o644); writeError != nil {
		return fmt.Errorf(outputCreateErrorFormat, filePath, writeError)
	}
	return nil
}
