package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"todomcp/internal/domain"
	"todomcp/pkg/fileops"
)

// DefaultDataFileName is created in the home directory when no path is set.
const DefaultDataFileName = ".todo-mcp-data.json"

// FileBackend stores the document as one JSON file.
type FileBackend struct {
	path    string
	maxSize int64
}

// DefaultDataPath returns $HOME/.todo-mcp-data.json.
func DefaultDataPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, DefaultDataFileName), nil
}

// NewFile returns a file backend at path (or the default path when empty).
// maxSize <= 0 selects DefaultMaxFileSize.
func NewFile(path string, maxSize int64) (*FileBackend, error) {
	if path == "" {
		p, err := DefaultDataPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	path = fileops.ExpandPath(path)
	if err := fileops.ValidateDataFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &FileBackend{path: path, maxSize: maxSize}, nil
}

func (b *FileBackend) Path() string { return b.path }

func (b *FileBackend) Load(_ context.Context) (*domain.Data, error) {
	raw, err := fileops.ReadFileLimited(b.path, b.maxSize)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	return DecodeDocument(raw)
}

func (b *FileBackend) Save(_ context.Context, data *domain.Data) error {
	raw, err := EncodeDocument(data)
	if err != nil {
		return err
	}
	if err := fileops.AtomicWriteFile(b.path, raw, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", b.path, err)
	}
	return nil
}

func (b *FileBackend) Describe() string { return DriverFile + ":" + b.path }

func (b *FileBackend) Close() error { return nil }
