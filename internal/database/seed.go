package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a superuser,
// two categories, one location and a few posts covering the visibility
// cases (public, draft, scheduled). It is a no-op once any user exists.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var adminID string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (username, email, first_name, password_hash, is_superuser)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id
	`, "admin", "admin@blogicum.local", "Admin", string(hash)).Scan(&adminID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	var travelID, hiddenID, locationID int64
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO categories (title, description, slug)
		VALUES ('Путешествия', 'Заметки из поездок', 'travel') RETURNING id
	`).Scan(&travelID); err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO categories (title, description, slug, is_visible)
		VALUES ('Черновики редакции', 'Скрытая категория', 'drafts', FALSE) RETURNING id
	`).Scan(&hiddenID); err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO locations (name) VALUES ('Москва') RETURNING id
	`).Scan(&locationID); err != nil {
		return fmt.Errorf("seed insert location: %w", err)
	}

	now := time.Now()
	posts := []struct {
		title      string
		pubDate    time.Time
		categoryID any
		published  bool
	}{
		{"Добро пожаловать", now.Add(-48 * time.Hour), nil, true},
		{"Выходные в горах", now.Add(-24 * time.Hour), travelID, true},
		{"Отложенная публикация", now.Add(24 * time.Hour), travelID, true},
		{"Черновик", now.Add(-time.Hour), nil, false},
		{"Пост в скрытой категории", now.Add(-time.Hour), hiddenID, true},
	}
	for _, p := range posts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO posts (title, text, pub_date, author_id, location_id, category_id, is_published)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, p.title, "Текст публикации «"+p.title+"».", p.pubDate, adminID, locationID, p.categoryID, p.published)
		if err != nil {
			return fmt.Errorf("seed insert post: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default superuser",
		"username", "admin",
		"password", "admin",
	)

	return nil
}
