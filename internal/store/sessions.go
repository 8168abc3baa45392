package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// State machine errors. StartSession and StopSession reject misuse at the
// API boundary with no side effect on stored data.
var (
	// ErrInvalidState is returned when starting while a session is already
	// open, or stopping while no session is open.
	ErrInvalidState = errors.New("invalid session state")
	// ErrInvalidInterval is returned when a stop timestamp precedes the
	// session's start timestamp.
	ErrInvalidInterval = errors.New("end time before start time")
)

// StartSession opens a new session at the given time. At most one open
// session may exist; starting while one is running fails with
// ErrInvalidState and leaves the open session untouched.
func (s *Store) StartSession(categoryID int64, taskID *int64, at time.Time) (*Session, error) {
	open, err := s.OpenSession()
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, fmt.Errorf("start session: a session is already running: %w", ErrInvalidState)
	}

	res, err := s.db.Exec(
		`INSERT INTO sessions (category_id, task_id, start_time, created_at) VALUES (?, ?, ?, ?)`,
		categoryID, taskID, at.UTC().Format(time.RFC3339), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetSession(id)
}

// StopSession closes the open session at the given time and records its
// duration. Stopping with no open session fails with ErrInvalidState;
// stopping before the session started fails with ErrInvalidInterval.
func (s *Store) StopSession(at time.Time) (*Session, error) {
	open, err := s.OpenSession()
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, fmt.Errorf("stop session: no session is running: %w", ErrInvalidState)
	}

	end := at.UTC()
	if end.Before(open.StartTime) {
		return nil, fmt.Errorf("stop session: %w", ErrInvalidInterval)
	}
	duration := int64(end.Sub(open.StartTime).Seconds())

	_, err = s.db.Exec(
		`UPDATE sessions SET end_time = ?, duration = ? WHERE id = ?`,
		end.Format(time.RFC3339), duration, open.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("stop session: %w", err)
	}
	return s.GetSession(open.ID)
}

func (s *Store) GetSession(id int64) (*Session, error) {
	row := s.db.QueryRow(
		`SELECT id, category_id, task_id, start_time, end_time, duration, notes, created_at
		 FROM sessions WHERE id = ?`, id,
	)
	sess, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	return sess, nil
}

// OpenSession returns the currently running session, or nil if idle.
func (s *Store) OpenSession() (*Session, error) {
	row := s.db.QueryRow(
		`SELECT id, category_id, task_id, start_time, end_time, duration, notes, created_at
		 FROM sessions WHERE end_time IS NULL ORDER BY id DESC LIMIT 1`,
	)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get open session: %w", err)
	}
	return sess, nil
}

func (s *Store) UpdateSessionNotes(id int64, notes string) error {
	_, err := s.db.Exec(`UPDATE sessions SET notes = ? WHERE id = ?`, notes, id)
	return err
}

// QuerySessions returns closed sessions whose start time falls in
// [from, to), ordered ascending by start time so downstream aggregation
// is deterministic.
func (s *Store) QuerySessions(from, to time.Time) ([]Session, error) {
	rows, err := s.db.Query(
		`SELECT id, category_id, task_id, start_time, end_time, duration, notes, created_at
		 FROM sessions
		 WHERE end_time IS NOT NULL AND start_time >= ? AND start_time < ?
		 ORDER BY start_time ASC`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

// ListSessions returns closed sessions matching the filter, newest first.
func (s *Store) ListSessions(f SessionFilter) ([]Session, error) {
	query := `SELECT id, category_id, task_id, start_time, end_time, duration, notes, created_at
	 FROM sessions WHERE end_time IS NOT NULL`
	var args []any

	if f.CategoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, *f.CategoryID)
	}
	if f.TaskID != nil {
		query += ` AND task_id = ?`
		args = append(args, *f.TaskID)
	}
	if f.From != nil {
		query += ` AND start_time >= ?`
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND start_time < ?`
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY start_time DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (*Session, error) {
	sess := &Session{}
	var startTime, createdAt string
	var endTime sql.NullString
	var taskID sql.NullInt64

	err := r.Scan(&sess.ID, &sess.CategoryID, &taskID, &startTime, &endTime, &sess.Duration, &sess.Notes, &createdAt)
	if err != nil {
		return nil, err
	}
	if taskID.Valid {
		sess.TaskID = &taskID.Int64
	}
	sess.StartTime, _ = time.Parse(time.RFC3339, startTime)
	if endTime.Valid {
		t, _ := time.Parse(time.RFC3339, endTime.String)
		sess.EndTime = &t
	}
	sess.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return sess, nil
}

func collectSessions(rows *sql.Rows) ([]Session, error) {
	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}
