// Package mysql backs the lake with a single lake_objects table. Upload
// is an upsert, so overwrite semantics come for free from the primary
// key on (container, path).
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/domain"
)

type Store struct{ db *sql.DB }

func New(db *sql.DB) *Store { return &Store{db: db} }

// EnsureSchema creates the backing table if it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, createLakeObjectsSQL)
	return err
}

func (s *Store) List(ctx context.Context, container, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, listObjectsSQL, container, prefix)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", container, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Download(ctx context.Context, container, path string) ([]byte, error) {
	var content []byte
	err := s.db.QueryRowContext(ctx, selectObjectSQL, container, path).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", container, path, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return content, nil
}

func (s *Store) Upload(ctx context.Context, container, path string, data []byte) error {
	_, err := s.db.ExecContext(ctx, upsertObjectSQL, container, path, data)
	return err
}
