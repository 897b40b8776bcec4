package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type sqliteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend stores documents in the documents table of an embedded
// SQLite database opened by persistence.OpenSQLite.
func NewSQLiteBackend(db *sql.DB) Backend {
	return &sqliteBackend{db: db}
}

func (r *sqliteBackend) List(ctx context.Context, collection string) ([][]byte, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT body FROM documents WHERE collection=? ORDER BY id ASC`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result [][]byte
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		result = append(result, []byte(body))
	}
	return result, rows.Err()
}

func (r *sqliteBackend) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var body string
	err := r.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE collection=? AND id=?`, collection, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(body), nil
}

func (r *sqliteBackend) Put(ctx context.Context, collection, id string, body []byte) error {
	const query = `
        INSERT INTO documents (collection, id, body, updated_at)
        VALUES (?,?,?,?)
        ON CONFLICT(collection, id) DO UPDATE SET body=excluded.body, updated_at=excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query, collection, id, string(body), time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (r *sqliteBackend) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
