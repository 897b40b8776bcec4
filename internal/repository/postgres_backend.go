package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend stores documents as JSONB rows in the documents table
// created by migrations/001_documents.sql.
func NewPostgresBackend(pool *pgxpool.Pool) Backend {
	return &postgresBackend{pool: pool}
}

func (r *postgresBackend) List(ctx context.Context, collection string) ([][]byte, error) {
	const query = `
        SELECT body FROM documents
        WHERE collection=$1
        ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, query, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result [][]byte
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		result = append(result, body)
	}
	return result, rows.Err()
}

func (r *postgresBackend) Get(ctx context.Context, collection, id string) ([]byte, error) {
	const query = `SELECT body FROM documents WHERE collection=$1 AND id=$2`
	var body []byte
	if err := r.pool.QueryRow(ctx, query, collection, id).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return body, nil
}

func (r *postgresBackend) Put(ctx context.Context, collection, id string, body []byte) error {
	const query = `
        INSERT INTO documents (collection, id, body)
        VALUES ($1,$2,$3)
        ON CONFLICT (collection, id) DO UPDATE SET body=EXCLUDED.body, updated_at=NOW()`
	_, err := r.pool.Exec(ctx, query, collection, id, body)
	return err
}

func (r *postgresBackend) Ping(ctx context.Context) error {
	if r.pool == nil {
		return errors.New("postgres pool not configured")
	}
	return r.pool.Ping(ctx)
}
