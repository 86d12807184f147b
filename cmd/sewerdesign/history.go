package main

import (
	"context"
	"fmt"

	"sewernet/internal/config"
	"sewernet/internal/database"
	"sewernet/internal/history"
)

// openHistoryRepository dispatches on -history-backend. "memory" is
// the zero-setup default; "postgres" opens a pool, runs pending
// migrations (if cfg.Database.AutoMigrate), and returns a repository
// backed by it. The returned close func is always safe to call.
func openHistoryRepository(ctx context.Context, backend string, cfg *config.Config) (history.Repository, func(), error) {
	switch backend {
	case "memory":
		return history.NewMemoryRepository(), func() {}, nil

	case "postgres":
		db, err := database.NewPostgresDB(ctx, &cfg.Database)
		if err != nil {
			return nil, func() {}, fmt.Errorf("connecting to history database: %w", err)
		}
		if err := database.RunMigrations(ctx, db.Pool(), &cfg.Database, history.MigrationsFS(), history.MigrationsDir); err != nil {
			db.Close()
			return nil, func() {}, fmt.Errorf("running history migrations: %w", err)
		}
		return history.NewPostgresRepository(db), db.Close, nil

	default:
		return nil, func() {}, fmt.Errorf("unknown history backend %q", backend)
	}
}
