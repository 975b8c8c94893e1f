package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps every document in a single JSONB table keyed by
// (collection, id). Field queries go through the ->> operator, so any
// top-level scalar field is queryable without schema changes.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the documents table and its field-query index.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		data JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (collection, id)
	)`)
	if err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	_, err = s.db.Exec(ctx, `
	CREATE INDEX IF NOT EXISTS documents_data_idx ON documents USING GIN (data)`)
	if err != nil {
		return fmt.Errorf("failed to create documents index: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string, out any) error {
	var data []byte
	err := s.db.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, collection, field string, value any, out any) error {
	rows, err := s.db.Query(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND data ->> $2 = $3 ORDER BY id`,
		collection, field, fmt.Sprintf("%v", value),
	)
	if err != nil {
		return fmt.Errorf("failed to query %s by %s: %w", collection, field, err)
	}
	defer rows.Close()

	var docs []json.RawMessage
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, json.RawMessage(data))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating documents: %w", err)
	}
	return decodeSlice(docs, out)
}

func (s *PostgresStore) Put(ctx context.Context, collection, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document %s/%s: %w", collection, id, err)
	}
	_, err = s.db.Exec(ctx, `
	INSERT INTO documents (collection, id, data, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (collection, id)
	DO UPDATE SET data = $3, updated_at = NOW()`,
		collection, id, data,
	)
	if err != nil {
		return fmt.Errorf("failed to put document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	result, err := s.db.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", collection, id, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// decodeSlice marshals the collected raw documents into a JSON array and
// decodes it into out, so both stores share one decoding path.
func decodeSlice(docs []json.RawMessage, out any) error {
	combined, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("failed to combine documents: %w", err)
	}
	if err := json.Unmarshal(combined, out); err != nil {
		return fmt.Errorf("failed to decode documents: %w", err)
	}
	return nil
}
