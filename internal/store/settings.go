package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Well-known setting keys.
const (
	SettingUserID       = "user_id"
	SettingDisplayName  = "display_name"
	SettingLastCategory = "last_category"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// EnsureUserID returns the persisted anonymous user id, generating and
// storing a new one on first use. The id identifies this user in the
// shared leaderboard and presence tables.
func (s *Store) EnsureUserID() (string, error) {
	var id string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, SettingUserID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("get user id: %w", err)
	}

	id = uuid.New().String()
	if err := s.SetSetting(SettingUserID, id); err != nil {
		return "", fmt.Errorf("persist user id: %w", err)
	}
	return id, nil
}

// DisplayName returns the user-chosen leaderboard name, falling back to
// User-<uuid prefix> when none is set.
func (s *Store) DisplayName() (string, error) {
	name, err := s.GetSetting(SettingDisplayName)
	if err == nil && name != "" {
		return name, nil
	}

	id, err := s.EnsureUserID()
	if err != nil {
		return "", err
	}
	return "User-" + id[:8], nil
}
