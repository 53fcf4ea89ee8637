package repository

import (
	"context"
	"database/sql"
)

// StartupPatternRepo stores responses. Rows are insert-only.
type StartupPatternRepo struct {
	db *sql.DB
	d  Dialect
}

func NewStartupPatternRepo(db *sql.DB, d Dialect) *StartupPatternRepo {
	return &StartupPatternRepo{db: db, d: d}
}

func (r *StartupPatternRepo) Insert(ctx context.Context, sp StartupPattern) error {
	_, err := r.db.ExecContext(ctx, r.d.Rebind(`
	INSERT INTO startup_patterns(id, startup_id, pattern_id, response_type, response, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`), sp.ID, sp.StartupID, sp.PatternID, sp.ResponseType, sp.Response, sp.CreatedAt)
	return err
}

// ListByStartup returns responses newest first. An empty startupID lists all.
func (r *StartupPatternRepo) ListByStartup(ctx context.Context, startupID string) ([]StartupPattern, error) {
	query := `SELECT id, startup_id, pattern_id, response_type, response, created_at FROM startup_patterns`
	var args []interface{}
	if startupID != "" {
		query += ` WHERE startup_id = ?`
		args = append(args, startupID)
	}
	query += ` ORDER BY created_at DESC, id`
	rows, err := r.db.QueryContext(ctx, r.d.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StartupPattern
	for rows.Next() {
		var sp StartupPattern
		if err := rows.Scan(&sp.ID, &sp.StartupID, &sp.PatternID, &sp.ResponseType, &sp.Response, &sp.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// DeleteAll removes every response and returns how many were removed. It
// runs on ex when given, so callers can include it in a transaction.
func (r *StartupPatternRepo) DeleteAll(ctx context.Context, ex Execer) (int64, error) {
	if ex == nil {
		ex = r.db
	}
	res, err := ex.ExecContext(ctx, `DELETE FROM startup_patterns`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
