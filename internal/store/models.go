package store

import "time"

type Category struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Task statuses.
const (
	TaskPending   = "pending"
	TaskCompleted = "completed"
)

type Task struct {
	ID           int64
	Title        string
	Status       string // pending, completed
	Starred      bool
	ExternalID   *string
	LastModified time.Time
	Deleted      bool
}

type Session struct {
	ID         int64
	CategoryID int64
	TaskID     *int64
	StartTime  time.Time
	EndTime    *time.Time
	Duration   int64 // seconds
	Notes      string
	CreatedAt  time.Time
}

// Open reports whether the session is still running.
func (s Session) Open() bool {
	return s.EndTime == nil
}

type Setting struct {
	Key   string
	Value string
}

// SessionFilter is used to filter sessions in queries.
type SessionFilter struct {
	CategoryID *int64
	TaskID     *int64
	From       *time.Time
	To         *time.Time
	Limit      int
}
