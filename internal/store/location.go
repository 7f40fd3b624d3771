// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"blogicum/internal/models"
)

// LocationStore manages locations in the database.
type LocationStore struct {
	db *sql.DB
}

// NewLocationStore returns a new LocationStore.
func NewLocationStore(db *sql.DB) *LocationStore {
	return &LocationStore{db: db}
}

const locationColumns = `id, name, is_published, created_at`

func scanLocation(scanner interface{ Scan(...any) error }) (*models.Location, error) {
	var l models.Location
	if err := scanner.Scan(&l.ID, &l.Name, &l.IsPublished, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// List returns all locations ordered by name. With publishedOnly only
// the locations offered in the post form are returned.
func (s *LocationStore) List(publishedOnly bool) ([]models.Location, error) {
	q := `SELECT ` + locationColumns + ` FROM locations`
	if publishedOnly {
		q += ` WHERE is_published = TRUE`
	}
	rows, err := s.db.Query(q + ` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var items []models.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		items = append(items, *l)
	}
	return items, rows.Err()
}

// FindByID returns a location by ID. Returns nil if not found.
func (s *LocationStore) FindByID(id int64) (*models.Location, error) {
	l, err := scanLocation(s.db.QueryRow(
		`SELECT `+locationColumns+` FROM locations WHERE id = $1`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find location: %w", err)
	}
	return l, nil
}

// Create inserts a new location.
func (s *LocationStore) Create(name string, published bool) (*models.Location, error) {
	l, err := scanLocation(s.db.QueryRow(`
		INSERT INTO locations (name, is_published) VALUES ($1, $2)
		RETURNING `+locationColumns, name, published,
	))
	if err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	return l, nil
}

// Delete removes a location. Posts keep existing with the reference cleared.
func (s *LocationStore) Delete(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete location: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
