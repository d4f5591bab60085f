package utils

import (
	"io"
	"net/http"
	"os"
)

// UnknownMimeType is returned when the file cannot be inspected.
const UnknownMimeType = "application/octet-stream"

// DetectMimeType returns the MIME type of the file at filePath.
// It reads up to DefaultSniffLength bytes and uses http.DetectContentType.
func DetectMimeType(filePath string) string {
	// #nosec G304
	fileHandle, openError := os.Open(filePath)
	if openError != nil {
		return UnknownMimeType
	}
	defer fileHandle.Close()

	buffer := make([]byte, DefaultSniffLength)
	bytesRead, readError := fileHandle.Read(buffer)
	if readError != nil && readError != io.EOF {
		return UnknownMimeType
	}

	return http.DetectContentType(buffer[:bytesRead])
}
