package database

import (
	"context"
	"database/sql"

	"github.com/jask/patterndeck/internal/catalog"
	"github.com/jask/patterndeck/internal/database/repository"
)

// SeedDefaults loads the bundled pattern catalog into an empty database.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB, d repository.Dialect) error {
	patternRepo := repository.NewPatternRepo(db, d)
	existing, err := patternRepo.List(ctx)
	if err == nil && len(existing) > 0 {
		return nil
	}
	c, err := catalog.Default()
	if err != nil {
		return err
	}
	for _, row := range c.Rows() {
		if err := patternRepo.Upsert(ctx, row); err != nil {
			return err
		}
	}
	return nil
}
