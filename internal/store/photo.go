package store

import (
	"database/sql"
	"time"
)

// Photo represents a break photo captured at a repetition extremum.
type Photo struct {
	ID        string
	SessionID string
	RepNumber int
	Position  string
	Path      string
	CreatedAt time.Time
}

// PhotoRepository provides operations for photo records.
type PhotoRepository struct {
	db *sql.DB
}

// Photos returns the photo repository for this store.
func (s *Store) Photos() *PhotoRepository {
	return &PhotoRepository{db: s.db}
}

// Create inserts a photo record.
func (r *PhotoRepository) Create(p *Photo) error {
	p.CreatedAt = time.Now()
	_, err := r.db.Exec(
		`INSERT INTO photos (id, session_id, rep_number, position, path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, nullIfEmpty(p.SessionID), p.RepNumber, p.Position, p.Path, p.CreatedAt,
	)
	return err
}

// GetBySessionID retrieves all photos for a session in capture order.
func (r *PhotoRepository) GetBySessionID(sessionID string) ([]Photo, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, rep_number, position, path, created_at
		 FROM photos WHERE session_id = ? ORDER BY created_at`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		var p Photo
		var sessID sql.NullString
		if err := rows.Scan(&p.ID, &sessID, &p.RepNumber, &p.Position, &p.Path, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.SessionID = sessID.String
		photos = append(photos, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return photos, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
