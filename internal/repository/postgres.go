package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"geo-tracker/internal/locationlog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements locationlog.Store with a versioned row per path
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL backed store
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the blob table if it does not exist
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS location_blobs (
		path TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		version BIGINT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`
	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("repository: failed to create location_blobs: %w", err)
	}
	return nil
}

// Get returns the content and row version stored at path
func (s *PostgresStore) Get(ctx context.Context, path string) (*locationlog.Blob, error) {
	sql := `SELECT content, version FROM location_blobs WHERE path = $1`

	var (
		content string
		version int64
	)
	err := s.db.QueryRow(ctx, sql, path).Scan(&content, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, locationlog.ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to fetch blob: %w", err)
	}

	return &locationlog.Blob{Content: content, Version: strconv.FormatInt(version, 10)}, nil
}

// PutIfMatch inserts the row when version is empty, otherwise bumps the version
// of the row only if it still has the expected one
func (s *PostgresStore) PutIfMatch(ctx context.Context, path, content, version, message string) error {
	if version == "" {
		sql := `
			INSERT INTO location_blobs (path, content, version, message)
			VALUES ($1, $2, 1, $3)
			ON CONFLICT (path) DO NOTHING
		`
		tag, err := s.db.Exec(ctx, sql, path, content, message)
		if err != nil {
			return fmt.Errorf("repository: failed to insert blob: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return locationlog.ErrVersionMismatch
		}
		return nil
	}

	expected, err := strconv.ParseInt(version, 10, 64)
	if err != nil {
		// Not a token this store ever issued.
		return locationlog.ErrVersionMismatch
	}

	sql := `
		UPDATE location_blobs
		SET content = $2, version = version + 1, message = $4, updated_at = now()
		WHERE path = $1 AND version = $3
	`
	tag, err := s.db.Exec(ctx, sql, path, content, expected, message)
	if err != nil {
		return fmt.Errorf("repository: failed to update blob: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return locationlog.ErrVersionMismatch
	}
	return nil
}
