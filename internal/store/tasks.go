package store

import (
	"database/sql"
	"fmt"
	"time"
)

func (s *Store) CreateTask(title string, externalID *string) (*Task, error) {
	res, err := s.db.Exec(
		`INSERT INTO tasks (title, external_id, last_modified) VALUES (?, ?, ?)`,
		title, externalID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetTask(id)
}

func (s *Store) GetTask(id int64) (*Task, error) {
	row := s.db.QueryRow(
		`SELECT id, title, status, starred, external_id, last_modified, deleted FROM tasks WHERE id = ?`, id,
	)
	t, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// ListTasks returns tasks ordered starred first, then most recently
// modified. Soft-deleted tasks are hidden unless includeDeleted is set.
func (s *Store) ListTasks(includeDeleted bool) ([]Task, error) {
	query := `SELECT id, title, status, starred, external_id, last_modified, deleted FROM tasks`
	if !includeDeleted {
		query += ` WHERE deleted = 0`
	}
	query += ` ORDER BY starred DESC, last_modified DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *Store) UpdateTask(id int64, title, status string, starred bool) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET title = ?, status = ?, starred = ?, last_modified = ? WHERE id = ?`,
		title, status, boolToInt(starred), time.Now().UTC().Format(time.RFC3339), id,
	)
	return err
}

func (s *Store) SetTaskStatus(id int64, status string) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET status = ?, last_modified = ? WHERE id = ?`,
		status, time.Now().UTC().Format(time.RFC3339), id,
	)
	return err
}

func (s *Store) ToggleTaskStarred(id int64) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET starred = 1 - starred, last_modified = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), id,
	)
	return err
}

// DeleteTask soft-deletes a task. Sessions referencing it keep their
// reference for historical reporting.
func (s *Store) DeleteTask(id int64) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET deleted = 1, last_modified = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), id,
	)
	return err
}

func scanTask(r rowScanner) (*Task, error) {
	t := &Task{}
	var starred, deleted int
	var externalID sql.NullString
	var lastModified string

	err := r.Scan(&t.ID, &t.Title, &t.Status, &starred, &externalID, &lastModified, &deleted)
	if err != nil {
		return nil, err
	}
	t.Starred = starred == 1
	t.Deleted = deleted == 1
	if externalID.Valid {
		t.ExternalID = &externalID.String
	}
	t.LastModified, _ = time.Parse(time.RFC3339, lastModified)
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
