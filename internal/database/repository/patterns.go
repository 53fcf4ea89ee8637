package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// PatternRepo handles patterns with their phases and relations.
type PatternRepo struct {
	db *sql.DB
	d  Dialect
}

func NewPatternRepo(db *sql.DB, d Dialect) *PatternRepo {
	return &PatternRepo{db: db, d: d}
}

const patternColumns = `p.id, p.name, p.description, p.category, p.image_url, p.sort_order, p.created_at, p.updated_at`

// Upsert writes the pattern and replaces its phases and relations.
func (r *PatternRepo) Upsert(ctx context.Context, p Pattern) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := r.upsertTx(ctx, tx, p); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *PatternRepo) upsertTx(ctx context.Context, tx *sql.Tx, p Pattern) error {
	if _, err := tx.ExecContext(ctx, r.d.Rebind(`
	INSERT INTO patterns(id, name, description, category, image_url, sort_order, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 name=excluded.name,
	 description=excluded.description,
	 category=excluded.category,
	 image_url=excluded.image_url,
	 sort_order=excluded.sort_order,
	 updated_at=CURRENT_TIMESTAMP;
	`), p.ID, p.Name, p.Description, p.Category, p.ImageURL, p.SortOrder); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, r.d.Rebind(`DELETE FROM pattern_phases WHERE pattern_id = ?`), p.ID); err != nil {
		return err
	}
	seen := map[string]bool{}
	for i, ph := range p.Phases {
		if seen[ph] {
			continue
		}
		seen[ph] = true
		if _, err := tx.ExecContext(ctx, r.d.Rebind(`INSERT INTO pattern_phases(pattern_id, phase, position) VALUES (?, ?, ?)`), p.ID, ph, i); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, r.d.Rebind(`DELETE FROM pattern_relations WHERE pattern_id = ?`), p.ID); err != nil {
		return err
	}
	seen = map[string]bool{}
	for i, rel := range p.RelatedIDs {
		if rel == p.ID || seen[rel] {
			continue
		}
		seen[rel] = true
		if _, err := tx.ExecContext(ctx, r.d.Rebind(`INSERT INTO pattern_relations(pattern_id, related_id, position) VALUES (?, ?, ?)`), p.ID, rel, i); err != nil {
			return err
		}
	}
	return nil
}

// Get returns nil when the pattern does not exist.
func (r *PatternRepo) Get(ctx context.Context, id string) (*Pattern, error) {
	row := r.db.QueryRowContext(ctx, r.d.Rebind(`SELECT `+patternColumns+` FROM patterns p WHERE p.id = ?`), id)
	p, err := scanPattern(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadDetails(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Next returns the first pattern, in catalog order, the startup has not
// responded to yet. It returns nil when every pattern has a response.
func (r *PatternRepo) Next(ctx context.Context, startupID string) (*Pattern, error) {
	row := r.db.QueryRowContext(ctx, r.d.Rebind(`
	SELECT `+patternColumns+`
	FROM patterns p
	WHERE NOT EXISTS (
	 SELECT 1 FROM startup_patterns sp WHERE sp.pattern_id = p.id AND sp.startup_id = ?
	)
	ORDER BY p.sort_order, p.name
	LIMIT 1
	`), startupID)
	p, err := scanPattern(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadDetails(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns patterns in catalog order without phases or relations.
func (r *PatternRepo) List(ctx context.Context) ([]Pattern, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+patternColumns+` FROM patterns p ORDER BY p.sort_order, p.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Pattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Refs resolves ids to names, preserving order and skipping unknown ids.
func (r *PatternRepo) Refs(ctx context.Context, ids []string) ([]PatternRef, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	marks := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	rows, err := r.db.QueryContext(ctx, r.d.Rebind(`SELECT id, name FROM patterns WHERE id IN (`+marks+`)`), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	names := map[string]string{}
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]PatternRef, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok {
			out = append(out, PatternRef{ID: id, Name: name})
		}
	}
	return out, nil
}

func (r *PatternRepo) loadDetails(ctx context.Context, p *Pattern) error {
	rows, err := r.db.QueryContext(ctx, r.d.Rebind(`SELECT phase FROM pattern_phases WHERE pattern_id = ? ORDER BY position`), p.ID)
	if err != nil {
		return err
	}
	p.Phases, err = scanStrings(rows)
	if err != nil {
		return err
	}
	rows, err = r.db.QueryContext(ctx, r.d.Rebind(`SELECT related_id FROM pattern_relations WHERE pattern_id = ? ORDER BY position`), p.ID)
	if err != nil {
		return err
	}
	p.RelatedIDs, err = scanStrings(rows)
	return err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPattern(s scanner) (Pattern, error) {
	var p Pattern
	err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.ImageURL, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
