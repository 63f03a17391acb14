package store

import (
	"database/sql"
	"errors"
	"time"
)

// Session represents one exercise activation stored in the database.
type Session struct {
	ID        string
	Exercise  string
	StartedAt time.Time
	EndedAt   *time.Time
	RepCount  int
	MeanScore float64
	CreatedAt time.Time
}

// Rep represents one counted repetition and its quality score.
type Rep struct {
	ID        int64
	SessionID string
	RepNumber int
	Score     int
	CreatedAt time.Time
}

// SessionRepository provides CRUD operations for sessions and reps.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session row.
func (r *SessionRepository) Create(sess *Session) error {
	sess.CreatedAt = time.Now()
	_, err := r.db.Exec(
		`INSERT INTO sessions (id, exercise, started_at, rep_count, mean_score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Exercise, sess.StartedAt, sess.RepCount, sess.MeanScore, sess.CreatedAt,
	)
	return err
}

// Finish records the session end time and final statistics.
func (r *SessionRepository) Finish(id string, endedAt time.Time, repCount int, meanScore float64) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ?, rep_count = ?, mean_score = ? WHERE id = ?`,
		endedAt, repCount, meanScore, id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddRep appends a repetition to a session.
func (r *SessionRepository) AddRep(sessionID string, repNumber, score int) error {
	_, err := r.db.Exec(
		`INSERT INTO reps (session_id, rep_number, score) VALUES (?, ?, ?)`,
		sessionID, repNumber, score,
	)
	return err
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}
	var endedAt sql.NullTime

	err := r.db.QueryRow(
		`SELECT id, exercise, started_at, ended_at, rep_count, mean_score, created_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.Exercise, &sess.StartedAt, &endedAt, &sess.RepCount, &sess.MeanScore, &sess.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if endedAt.Valid {
		sess.EndedAt = &endedAt.Time
	}
	return sess, nil
}

// List retrieves the most recent sessions, newest first.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, exercise, started_at, ended_at, rep_count, mean_score, created_at
		 FROM sessions ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}
		var endedAt sql.NullTime

		err := rows.Scan(&sess.ID, &sess.Exercise, &sess.StartedAt, &endedAt,
			&sess.RepCount, &sess.MeanScore, &sess.CreatedAt)
		if err != nil {
			return nil, err
		}

		if endedAt.Valid {
			sess.EndedAt = &endedAt.Time
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// GetReps retrieves all repetitions for a session in rep order.
func (r *SessionRepository) GetReps(sessionID string) ([]Rep, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, rep_number, score, created_at
		 FROM reps WHERE session_id = ? ORDER BY rep_number`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reps []Rep
	for rows.Next() {
		var rep Rep
		if err := rows.Scan(&rep.ID, &rep.SessionID, &rep.RepNumber, &rep.Score, &rep.CreatedAt); err != nil {
			return nil, err
		}
		reps = append(reps, rep)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reps, nil
}

// Delete removes a session and its reps.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
