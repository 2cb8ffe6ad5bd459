package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"todomcp/internal/domain"
	"todomcp/pkg/fileops"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// DefaultSQLiteFileName is used next to the default data file when no sqlite
// path is configured.
const DefaultSQLiteFileName = ".todo-mcp-data.db"

// SQLiteBackend snapshots the document into a single sqlite table.
type SQLiteBackend struct {
	table snapshotTable
	path  string
}

// NewSQLite opens (creating if needed) the sqlite database at path.
func NewSQLite(ctx context.Context, path string) (*SQLiteBackend, error) {
	if path == "" {
		dataPath, err := DefaultDataPath()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(filepath.Dir(dataPath), DefaultSQLiteFileName)
	}
	path = fileops.ExpandPath(path)
	if err := fileops.EnsureDirectoryExists(filepath.Dir(path)); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serialises writers inside the process.
	db.SetMaxOpenConns(1)

	b := &SQLiteBackend{
		table: snapshotTable{
			db:     db,
			upsert: `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
		},
		path: path,
	}
	if err := b.table.ensure(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return b, nil
}

func (b *SQLiteBackend) Load(ctx context.Context) (*domain.Data, error) {
	return b.table.load(ctx)
}

func (b *SQLiteBackend) Save(ctx context.Context, data *domain.Data) error {
	return b.table.save(ctx, data)
}

func (b *SQLiteBackend) Describe() string { return DriverSQLite + ":" + b.path }

// DB exposes the underlying sql.DB for tests.
func (b *SQLiteBackend) DB() *sql.DB { return b.table.db }

func (b *SQLiteBackend) Close() error { return b.table.db.Close() }
