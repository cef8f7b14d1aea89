package repository

import (
	"context"
	"database/sql"
)

// ItineraryRepo handles saved itineraries and their stops.
type ItineraryRepo struct {
	db *sql.DB
}

func NewItineraryRepo(db *sql.DB) *ItineraryRepo { return &ItineraryRepo{db: db} }

func (r *ItineraryRepo) Insert(ctx context.Context, it Itinerary) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
	INSERT INTO itineraries(id, city, start_date, end_date, created_at)
	VALUES(?, ?, ?, ?, CURRENT_TIMESTAMP);
	`, it.ID, it.City, it.StartDate, it.EndDate)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, s := range it.Stops {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO itinerary_stops(itinerary_id, day, position, attraction_id,
		 attraction_name, start_minutes, end_minutes, arrival_time, note)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?);
		`, it.ID, s.Day, s.Position, s.AttractionID, s.AttractionName,
			s.StartMinutes, s.EndMinutes, s.ArrivalTime, s.Note)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *ItineraryRepo) Get(ctx context.Context, id string) (Itinerary, error) {
	var it Itinerary
	err := r.db.QueryRowContext(ctx,
		`SELECT id, city, start_date, end_date, created_at FROM itineraries WHERE id = ?`, id).
		Scan(&it.ID, &it.City, &it.StartDate, &it.EndDate, &it.CreatedAt)
	if err != nil {
		return Itinerary{}, err
	}
	it.Stops, err = r.stops(ctx, id)
	return it, err
}

func (r *ItineraryRepo) List(ctx context.Context, city string) ([]Itinerary, error) {
	var args []interface{}
	query := `SELECT id, city, start_date, end_date, created_at FROM itineraries`
	if city != "" {
		query += ` WHERE city = ?`
		args = append(args, city)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Itinerary
	for rows.Next() {
		var it Itinerary
		if err := rows.Scan(&it.ID, &it.City, &it.StartDate, &it.EndDate, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *ItineraryRepo) stops(ctx context.Context, itineraryID string) ([]ItineraryStop, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT itinerary_id, day, position, attraction_id, attraction_name,
	 start_minutes, end_minutes, arrival_time, note
	FROM itinerary_stops WHERE itinerary_id = ? ORDER BY day, position`, itineraryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ItineraryStop
	for rows.Next() {
		var s ItineraryStop
		if err := rows.Scan(&s.ItineraryID, &s.Day, &s.Position, &s.AttractionID,
			&s.AttractionName, &s.StartMinutes, &s.EndMinutes, &s.ArrivalTime, &s.Note); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
