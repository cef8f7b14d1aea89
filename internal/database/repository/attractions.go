package repository

import (
	"context"
	"database/sql"
	"strings"
)

// AttractionFilters defines list filters.
type AttractionFilters struct {
	City       string
	MaxPrice   int    // 0 = no price filter
	Theme      string // matches themes csv or dominant theme
	Search     string
	Unenriched bool // only rows with no sentiment score yet
}

// AttractionRepo handles attractions.
type AttractionRepo struct {
	db *sql.DB
}

func NewAttractionRepo(db *sql.DB) *AttractionRepo { return &AttractionRepo{db: db} }

func (r *AttractionRepo) Insert(ctx context.Context, a Attraction) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO attractions(
	 id, city, name, url, address, latitude, longitude, rating, review_count,
	 open_time, close_time, avg_visit_duration, price_level, themes, raw_reviews,
	 sentiment_score, dominant_theme, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`,
		a.ID, a.City, a.Name, a.URL, a.Address, a.Latitude, a.Longitude, a.Rating, a.ReviewCount,
		a.OpenTime, a.CloseTime, a.AvgVisitDuration, a.PriceLevel, strings.Join(a.Themes, ","),
		a.RawReviews, a.SentimentScore, a.DominantTheme)
	return err
}

func (r *AttractionRepo) Upsert(ctx context.Context, a Attraction) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO attractions(
	 id, city, name, url, address, latitude, longitude, rating, review_count,
	 open_time, close_time, avg_visit_duration, price_level, themes, raw_reviews,
	 sentiment_score, dominant_theme, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(city, name) DO UPDATE SET
	 url=excluded.url, address=excluded.address, latitude=excluded.latitude,
	 longitude=excluded.longitude, rating=excluded.rating, review_count=excluded.review_count,
	 open_time=excluded.open_time, close_time=excluded.close_time,
	 avg_visit_duration=excluded.avg_visit_duration, price_level=excluded.price_level,
	 themes=excluded.themes, raw_reviews=excluded.raw_reviews,
	 updated_at=CURRENT_TIMESTAMP;
	`,
		a.ID, a.City, a.Name, a.URL, a.Address, a.Latitude, a.Longitude, a.Rating, a.ReviewCount,
		a.OpenTime, a.CloseTime, a.AvgVisitDuration, a.PriceLevel, strings.Join(a.Themes, ","),
		a.RawReviews, a.SentimentScore, a.DominantTheme)
	return err
}

// UpdateEnrichment stores the NLP outputs for one attraction.
func (r *AttractionRepo) UpdateEnrichment(ctx context.Context, id string, sentiment float64, dominantTheme string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE attractions SET sentiment_score = ?, dominant_theme = ?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`,
		sentiment, dominantTheme, id)
	return err
}

func (r *AttractionRepo) Get(ctx context.Context, id string) (Attraction, error) {
	row := r.db.QueryRowContext(ctx, selectAttraction+` WHERE id = ?`, id)
	return scanAttraction(row)
}

func (r *AttractionRepo) List(ctx context.Context, f AttractionFilters) ([]Attraction, error) {
	var where []string
	var args []interface{}

	if f.City != "" {
		where = append(where, "city = ?")
		args = append(args, f.City)
	}
	if f.MaxPrice > 0 {
		where = append(where, "price_level <= ?")
		args = append(args, f.MaxPrice)
	}
	if f.Theme != "" {
		where = append(where, "(themes LIKE ? OR dominant_theme = ?)")
		args = append(args, "%"+f.Theme+"%", f.Theme)
	}
	if f.Search != "" {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}
	if f.Unenriched {
		where = append(where, "sentiment_score IS NULL")
	}

	query := selectAttraction
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY rating DESC, name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attraction
	for rows.Next() {
		a, err := scanAttraction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AttractionRepo) Count(ctx context.Context, city string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attractions WHERE city = ? OR ? = ''`, city, city).Scan(&n)
	return n, err
}

const selectAttraction = `SELECT id, city, name, url, address, latitude, longitude, rating,
 review_count, open_time, close_time, avg_visit_duration, price_level, themes, raw_reviews,
 sentiment_score, dominant_theme, created_at, updated_at FROM attractions`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAttraction(row rowScanner) (Attraction, error) {
	var a Attraction
	var themes string
	err := row.Scan(&a.ID, &a.City, &a.Name, &a.URL, &a.Address, &a.Latitude, &a.Longitude,
		&a.Rating, &a.ReviewCount, &a.OpenTime, &a.CloseTime, &a.AvgVisitDuration,
		&a.PriceLevel, &themes, &a.RawReviews, &a.SentimentScore, &a.DominantTheme,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Attraction{}, err
	}
	a.Themes = splitThemes(themes)
	return a, nil
}

func splitThemes(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
