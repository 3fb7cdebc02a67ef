package repository

import (
	"context"
	"fmt"

	"geo-tracker/internal/config"
	"geo-tracker/internal/locationlog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Open creates the store selected by cfg.StoreBackend. The returned function
// releases its resources.
func Open(ctx context.Context, cfg config.Config) (locationlog.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendGitHub, "":
		store := NewGitHubStore(GitHubConfig{
			APIURL:  cfg.GitHubAPIURL,
			Token:   cfg.GitHubToken,
			Owner:   cfg.RepoOwner,
			Repo:    cfg.RepoName,
			Branch:  cfg.RepoBranch,
			Timeout: cfg.RequestTimeout,
		})
		return store, func() {}, nil

	case config.BackendPostgres:
		if cfg.DBSource == "" {
			return nil, nil, fmt.Errorf("repository: DB_SOURCE is required for the postgres backend")
		}
		pool, err := pgxpool.New(ctx, cfg.DBSource)
		if err != nil {
			return nil, nil, fmt.Errorf("repository: cannot connect to db: %w", err)
		}
		store := NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil

	case config.BackendMemory:
		return NewMemoryStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("repository: unknown store backend %q", cfg.StoreBackend)
	}
}
