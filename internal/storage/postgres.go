package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sync"

	"todomcp/internal/domain"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const postgresDriver = "pgx"

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// PostgresBackend snapshots the document into a JSONB state table.
type PostgresBackend struct {
	table snapshotTable
	dsn   string
}

// NewPostgres connects to dsn, pings it and ensures the state table exists.
func NewPostgres(ctx context.Context, dsn string) (*PostgresBackend, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres driver requires a database URL (TODO_DATABASE_URL or keyring)")
	}
	openMu.Lock()
	db, err := sqlOpen(postgresDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	b := &PostgresBackend{
		table: snapshotTable{
			db:     db,
			upsert: `INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload`,
		},
		dsn: dsn,
	}
	if err := b.table.ensure(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return b, nil
}

func (b *PostgresBackend) Load(ctx context.Context) (*domain.Data, error) {
	return b.table.load(ctx)
}

func (b *PostgresBackend) Save(ctx context.Context, data *domain.Data) error {
	return b.table.save(ctx, data)
}

func (b *PostgresBackend) Describe() string { return DriverPostgres + ":" + RedactDSN(b.dsn) }

func (b *PostgresBackend) Close() error { return b.table.db.Close() }

// RedactDSN removes the password from a URL-style DSN. Key/value DSNs are
// reduced to a placeholder since they cannot be parsed reliably.
func RedactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "<dsn>"
	}
	if u.User != nil {
		if _, has := u.User.Password(); has {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
	}
	return u.String()
}

// OverrideSQLOpen swaps the sql.Open function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
