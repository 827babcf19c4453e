package models

import (
	"database/sql"
	"fmt"
	"time"
)

type Item struct {
	ID        int       `json:"id"`
	Kind      string    `json:"kind"` // "note" or "link"
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func GetItemsPaginated(db *sql.DB, limit, offset int) ([]Item, error) {
	rows, err := db.Query(
		"SELECT id, kind, title, body, created_at FROM items ORDER BY id DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Kind, &it.Title, &it.Body, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func GetItemByID(db *sql.DB, id int) (*Item, error) {
	it := &Item{}
	err := db.QueryRow(
		"SELECT id, kind, title, body, created_at FROM items WHERE id = ?",
		id,
	).Scan(&it.ID, &it.Kind, &it.Title, &it.Body, &it.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("item not found: %w", err)
	}
	return it, nil
}

func CreateItem(db *sql.DB, it *Item) error {
	result, err := db.Exec(
		"INSERT INTO items (kind, title, body) VALUES (?, ?, ?)",
		it.Kind, it.Title, it.Body,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	it.ID = int(id)
	return nil
}

func DeleteItem(db *sql.DB, id int) error {
	_, err := db.Exec("DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

func CountItems(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM items").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}
