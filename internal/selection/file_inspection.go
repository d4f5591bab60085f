package selection

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/temirov/repoctx/internal/config"
	"github.com/temirov/repoctx/internal/tokenizer"
	"github.com/temirov/repoctx/internal/types"
	"github.com/temirov/repoctx/internal/utils"
)

const (
	// WarningFileReadFormat reports a file whose bytes cannot be read.
	WarningFileReadFormat = "skipping %s: cannot read: %v"
	// WarningBinarySniffFormat reports a file that could not be sniffed and is treated as binary.
	WarningBinarySniffFormat = "treating %s as binary: %v"
	// WarningTokenCountFormat reports a failed token count.
	WarningTokenCountFormat = "token count failed for %s: %v"
	// WarningFileCloseFormat reports a file that could not be closed after reading.
	WarningFileCloseFormat = "closing %s: %v"

	lineTerminator  = '\n'
	streamChunkSize = 64 * 1024
)

type fileInspectionConfig struct {
	Limits       config.Limits
	TokenCounter tokenizer.Counter
	Warn         func(string)
}

// inspectFile classifies one file and captures its text when allowed. The
// boolean result is false when the file must be skipped.
func inspectFile(absolutePath string, relativePath string, inspection fileInspectionConfig) (types.FileRecord, bool) {
	warn := inspection.Warn
	if warn == nil {
		warn = func(string) {}
	}

	fileInfo, statError := os.Stat(absolutePath)
	if statError != nil {
		warn(fmt.Sprintf(WarningEntryStatFormat, absolutePath, statError))
		return types.FileRecord{}, false
	}

	record := types.FileRecord{
		Path:         relativePath,
		AbsolutePath: absolutePath,
		SizeBytes:    uint64(fileInfo.Size()),
	}

	isBinary, sniffError := utils.IsFileBinary(absolutePath, inspection.Limits.SniffLength)
	if sniffError != nil {
		warn(fmt.Sprintf(WarningBinarySniffFormat, absolutePath, sniffError))
		isBinary = true
	}
	if isBinary {
		record.IsBinary = true
		record.MimeType = utils.DetectMimeType(absolutePath)
		return record, true
	}

	if record.SizeBytes >= inspection.Limits.ContentSizeLimit {
		lineCount, countError := countLinesStreaming(absolutePath, warn)
		if countError != nil {
			warn(fmt.Sprintf(WarningFileReadFormat, absolutePath, countError))
			return types.FileRecord{}, false
		}
		record.LineCount = lineCount
		return record, true
	}

	fileBytes, readError := os.ReadFile(absolutePath)
	if readError != nil {
		warn(fmt.Sprintf(WarningFileReadFormat, absolutePath, readError))
		return types.FileRecord{}, false
	}
	if !utf8.Valid(fileBytes) {
		record.LineCount = utils.CountLines(string(fileBytes))
		return record, true
	}

	content := string(fileBytes)
	record.Content = &content
	record.LineCount = utils.CountLines(content)

	if inspection.TokenCounter != nil {
		countResult, tokenError := tokenizer.CountText(inspection.TokenCounter, content)
		if tokenError != nil {
			warn(fmt.Sprintf(WarningTokenCountFormat, absolutePath, tokenError))
		} else if countResult.Counted {
			record.Tokens = countResult.Tokens
		}
	}
	return record, true
}

// countLinesStreaming counts physical lines without holding the file in memory.
// A failure to close the file is reported through warn.
func countLinesStreaming(absolutePath string, warn func(string)) (uint64, error) {
	fileHandle, openError := os.Open(absolutePath)
	if openError != nil {
		return 0, openError
	}
	return countLinesAndClose(fileHandle, absolutePath, warn)
}

func countLinesAndClose(source io.ReadCloser, name string, warn func(string)) (uint64, error) {
	defer func() {
		if closeError := source.Close(); closeError != nil {
			warn(fmt.Sprintf(WarningFileCloseFormat, name, closeError))
		}
	}()

	reader := bufio.NewReaderSize(source, streamChunkSize)
	buffer := make([]byte, streamChunkSize)
	var lineCount uint64
	var lastByte byte
	var sawBytes bool
	for {
		readCount, readError := reader.Read(buffer)
		for _, currentByte := range buffer[:readCount] {
			if currentByte == lineTerminator {
				lineCount++
			}
		}
		if readCount > 0 {
			sawBytes = true
			lastByte = buffer[readCount-1]
		}
		if errors.Is(readError, io.EOF) {
			break
		}
		if readError != nil {
			return 0, readError
		}
	}
	if sawBytes && lastByte != lineTerminator {
		lineCount++
	}
	return lineCount, nil
}
