package repository

import (
	"context"
	"database/sql"
	"errors"
)

// StartupRepo handles startups.
type StartupRepo struct {
	db *sql.DB
	d  Dialect
}

func NewStartupRepo(db *sql.DB, d Dialect) *StartupRepo {
	return &StartupRepo{db: db, d: d}
}

func (r *StartupRepo) Upsert(ctx context.Context, s Startup) error {
	_, err := r.db.ExecContext(ctx, r.d.Rebind(`
	INSERT INTO startups(id, name, created_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 name=excluded.name;
	`), s.ID, s.Name)
	return err
}

// Get returns nil when the startup does not exist.
func (r *StartupRepo) Get(ctx context.Context, id string) (*Startup, error) {
	row := r.db.QueryRowContext(ctx, r.d.Rebind(`SELECT id, name, created_at FROM startups WHERE id = ?`), id)
	var s Startup
	if err := row.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *StartupRepo) List(ctx context.Context) ([]Startup, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM startups ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Startup
	for rows.Next() {
		var s Startup
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
