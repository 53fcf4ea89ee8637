package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/patterndeck/internal/database"
	"github.com/jask/patterndeck/internal/database/repository"
)

// MaintenanceService houses destructive/ops actions surfaced through the CLI.
type MaintenanceService struct {
	DB        *sql.DB
	Dialect   repository.Dialect
	Responses *repository.StartupPatternRepo
}

// ResetResponses wipes recorded responses so every pattern is presented
// again. Patterns and startups are kept.
func (s *MaintenanceService) ResetResponses(ctx context.Context) (int64, error) {
	if s.DB == nil || s.Responses == nil {
		return 0, fmt.Errorf("maintenance: db not configured")
	}
	var removed int64
	if err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		n, err := s.Responses.DeleteAll(ctx, tx)
		if err != nil {
			return fmt.Errorf("reset table startup_patterns: %w", err)
		}
		removed = n
		return nil
	}); err != nil {
		return 0, err
	}
	if s.Dialect == repository.SQLite {
		_, _ = s.DB.ExecContext(ctx, "VACUUM")
	}
	return removed, nil
}
