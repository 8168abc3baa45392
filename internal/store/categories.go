package store

import (
	"fmt"
	"time"
)

// UncategorizedName is the fallback category that absorbs sessions when
// their category is deleted, so session history never loses attribution.
const UncategorizedName = "Uncategorized"

func (s *Store) CreateCategory(name string) (*Category, error) {
	res, err := s.db.Exec(
		`INSERT INTO categories (name, created_at) VALUES (?, ?)`,
		name, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetCategory(id)
}

func (s *Store) GetCategory(id int64) (*Category, error) {
	c := &Category{}
	var createdAt string
	err := s.db.QueryRow(
		`SELECT id, name, created_at FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return c, nil
}

func (s *Store) ListCategories() ([]Category, error) {
	rows, err := s.db.Query(`SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// RenameCategory changes a category's name in place. The id is preserved so
// historical sessions remain attributed to the renamed category.
func (s *Store) RenameCategory(id int64, name string) error {
	_, err := s.db.Exec(`UPDATE categories SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("rename category %d: %w", id, err)
	}
	return nil
}

// DeleteCategory removes a category and reassigns its sessions to the
// Uncategorized category, which is created on demand.
func (s *Store) DeleteCategory(id int64) error {
	fallback, err := s.ensureUncategorized()
	if err != nil {
		return err
	}
	if fallback.ID == id {
		return fmt.Errorf("delete category: cannot delete %q", UncategorizedName)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE sessions SET category_id = ? WHERE category_id = ?`, fallback.ID, id); err != nil {
		return fmt.Errorf("reassign sessions: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return tx.Commit()
}

func (s *Store) ensureUncategorized() (*Category, error) {
	c := &Category{}
	var createdAt string
	err := s.db.QueryRow(
		`SELECT id, name, created_at FROM categories WHERE name = ?`, UncategorizedName,
	).Scan(&c.ID, &c.Name, &createdAt)
	if err == nil {
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		return c, nil
	}
	return s.CreateCategory(UncategorizedName)
}
