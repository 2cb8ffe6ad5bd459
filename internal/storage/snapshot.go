package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"todomcp/internal/domain"
)

// The sql backends split the document into one row per bucket so each
// collection can be inspected with plain SQL.
var stateBuckets = []string{"users", "projects", "todos", "session"}

func toBuckets(data *domain.Data) (map[string][]byte, error) {
	doc := data.Clone()
	doc.Normalize()
	out := make(map[string][]byte, len(stateBuckets))
	for _, bucket := range stateBuckets {
		var (
			raw []byte
			err error
		)
		switch bucket {
		case "users":
			raw, err = json.Marshal(doc.Users)
		case "projects":
			raw, err = json.Marshal(doc.Projects)
		case "todos":
			raw, err = json.Marshal(doc.Todos)
		case "session":
			raw, err = json.Marshal(doc.CurrentUserID)
		}
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", bucket, err)
		}
		out[bucket] = raw
	}
	return out, nil
}

// fromBuckets reassembles the document and decodes it through the same
// schema check as the file format.
func fromBuckets(rows map[string][]byte) (*domain.Data, error) {
	doc := map[string]json.RawMessage{
		"users":         json.RawMessage("[]"),
		"projects":      json.RawMessage("[]"),
		"todos":         json.RawMessage("[]"),
		"currentUserId": json.RawMessage("null"),
	}
	for bucket, payload := range rows {
		if len(payload) == 0 {
			continue
		}
		switch bucket {
		case "users", "projects", "todos":
			doc[bucket] = payload
		case "session":
			doc["currentUserId"] = payload
		}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return DecodeDocument(raw)
}

// snapshotTable implements Load/Save over a state(bucket, payload) table.
type snapshotTable struct {
	db     *sql.DB
	upsert string
}

func (t *snapshotTable) ensure(ctx context.Context, ddl string) error {
	if _, err := t.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure state table: %w", err)
	}
	return nil
}

func (t *snapshotTable) load(ctx context.Context) (*domain.Data, error) {
	rows, err := t.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return nil, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	raws := map[string][]byte{}
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		raws[bucket] = payload
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state: %w", err)
	}
	if len(raws) == 0 {
		return nil, ErrNotExist
	}
	return fromBuckets(raws)
}

func (t *snapshotTable) save(ctx context.Context, data *domain.Data) error {
	buckets, err := toBuckets(data)
	if err != nil {
		return err
	}
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range stateBuckets {
		if _, err := tx.ExecContext(ctx, t.upsert, bucket, buckets[bucket]); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}
