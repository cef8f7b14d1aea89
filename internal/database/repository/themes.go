package repository

import (
	"context"
	"database/sql"
)

// ThemeRepo handles the theme taxonomy.
type ThemeRepo struct {
	db *sql.DB
}

func NewThemeRepo(db *sql.DB) *ThemeRepo { return &ThemeRepo{db: db} }

func (r *ThemeRepo) Upsert(ctx context.Context, t Theme) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO themes(id, name, sort_order) VALUES(?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET sort_order=excluded.sort_order;
	`, t.ID, t.Name, t.SortOrder)
	return err
}

func (r *ThemeRepo) List(ctx context.Context) ([]Theme, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, sort_order FROM themes ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Theme
	for rows.Next() {
		var t Theme
		if err := rows.Scan(&t.ID, &t.Name, &t.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
