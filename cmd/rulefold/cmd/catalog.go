package cmd

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/solatis/rulefold/internal/core/db"
)

// openCatalog opens the configured catalog database.
func openCatalog(ctx context.Context) (*sqlx.DB, *db.Catalog, error) {
	if cfg.Database.URL == "" {
		return nil, nil, fmt.Errorf("--db-url or RF_DATABASE_URL required")
	}
	database, err := db.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	catalog, err := db.NewCatalog(database)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return database, catalog, nil
}
