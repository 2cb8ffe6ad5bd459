// Package storage persists the todo data aggregate. Every backend reads and
// replaces the whole document; there is no partial update and no locking
// across processes (last writer wins).
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"todomcp/internal/domain"
)

// ErrNotExist is returned by Load when nothing has been stored yet.
var ErrNotExist = errors.New("no stored data")

// ErrInvalidDocument wraps every decode or schema failure.
var ErrInvalidDocument = errors.New("invalid data document")

// Backend loads and saves the full data aggregate.
type Backend interface {
	Load(ctx context.Context) (*domain.Data, error)
	Save(ctx context.Context, data *domain.Data) error
	// Describe names the backend and its location for logs and health output.
	// Secrets are never included.
	Describe() string
	Close() error
}

const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
)

// Drivers lists the supported driver names.
var Drivers = []string{DriverFile, DriverMemory, DriverSQLite, DriverPostgres, DriverS3}

// DefaultMaxFileSize caps the size of a data document read from disk.
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// Options selects and configures a backend.
type Options struct {
	Driver      string
	DataPath    string
	SQLitePath  string
	DatabaseURL string
	MaxFileSize int64
	S3          S3Options
}

// S3Options configures the s3 driver. Empty credentials fall back to the AWS
// default credential chain.
type S3Options struct {
	Bucket          string
	Key             string
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// Open constructs the backend named by opts.Driver. An empty driver selects
// the file backend.
func Open(ctx context.Context, opts Options) (Backend, error) {
	var (
		b   Backend
		err error
	)
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverFile:
		var fb *FileBackend
		if fb, err = NewFile(opts.DataPath, opts.MaxFileSize); err == nil {
			b = fb
		}
	case DriverMemory:
		b = NewMemory(nil)
	case DriverSQLite:
		var sb *SQLiteBackend
		if sb, err = NewSQLite(ctx, opts.SQLitePath); err == nil {
			b = sb
		}
	case DriverPostgres:
		var pb *PostgresBackend
		if pb, err = NewPostgres(ctx, opts.DatabaseURL); err == nil {
			b = pb
		}
	case DriverS3:
		var s3b *S3Backend
		if s3b, err = NewS3(ctx, opts.S3); err == nil {
			b = s3b
		}
	default:
		return nil, fmt.Errorf("unknown storage driver %q (supported: %s)", opts.Driver, strings.Join(Drivers, ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", opts.Driver, err)
	}
	return b, nil
}
