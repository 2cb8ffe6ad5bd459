package fileops

import (
	"fmt"
	"os"
	"path/filepath"
)

// ValidateFileSizeLimit checks that filePath is a regular file no larger than
// maxSize bytes.
func ValidateFileSizeLimit(filePath string, maxSize int64) error {
	if maxSize <= 0 {
		return fmt.Errorf("invalid size limit: %d", maxSize)
	}

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s: %w", filepath.Base(filePath), err)
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if fileInfo.Size() > maxSize {
		return fmt.Errorf("file size %d bytes exceeds limit %d bytes", fileInfo.Size(), maxSize)
	}

	return nil
}

// ReadFileLimited reads filePath after checking it against maxSize. A missing
// file yields an error satisfying errors.Is(err, fs.ErrNotExist).
func ReadFileLimited(filePath string, maxSize int64) ([]byte, error) {
	if err := ValidateFileSizeLimit(filePath, maxSize); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	return data, nil
}
