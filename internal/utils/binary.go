package utils

import (
	"bytes"
	"io"
	"os"
)

// DefaultSniffLength is the number of leading bytes inspected when classifying a file.
const DefaultSniffLength = 512

// ContainsNullByte reports whether the provided byte slice contains a zero byte,
// which marks the data as binary.
func ContainsNullByte(data []byte) bool {
	return bytes.IndexByte(data, 0) >= 0
}

// IsFileBinary reads up to sniffLength bytes from the file at path and reports
// whether that prefix contains a zero byte. Bytes past the prefix are never read.
func IsFileBinary(path string, sniffLength int) (bool, error) {
	if sniffLength <= 0 {
		sniffLength = DefaultSniffLength
	}
	// #nosec G304
	fileHandle, openError := os.Open(path)
	if openError != nil {
		return false, openError
	}
	defer fileHandle.Close()

	buffer := make([]byte, sniffLength)
	bytesRead, readError := io.ReadFull(fileHandle, buffer)
	if readError != nil && readError != io.EOF && readError != io.ErrUnexpectedEOF {
		return false, readError
	}
	return ContainsNullByte(buffer[:bytesRead]), nil
}
