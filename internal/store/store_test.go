// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"blogicum/internal/database"
	"blogicum/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "blogicum")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "blogicum")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Connect(ctx, testDSN())
	if err != nil {
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanUsers removes test users by username. Their posts and comments
// cascade. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, usernames ...string) {
	t.Helper()
	for _, name := range usernames {
		db.Exec("DELETE FROM users WHERE username = $1", name)
	}
}

// cleanCategories removes test categories by slug. Call in t.Cleanup().
func cleanCategories(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM categories WHERE slug = $1", slug)
	}
}

// testUser creates a throwaway user that is removed when the test ends.
func testUser(t *testing.T, db *sql.DB, username string) *models.User {
	t.Helper()
	cleanUsers(t, db, username)
	t.Cleanup(func() { cleanUsers(t, db, username) })

	u, err := NewUserStore(db).Create(username, username+"@store-test.local", "pass", false)
	if err != nil {
		t.Fatalf("create test user %q: %v", username, err)
	}
	return u
}

// testCategory creates a throwaway category that is removed when the test ends.
func testCategory(t *testing.T, db *sql.DB, slug string, visible bool) *models.Category {
	t.Helper()
	cleanCategories(t, db, slug)
	t.Cleanup(func() { cleanCategories(t, db, slug) })

	c, err := NewCategoryStore(db).Create(&models.Category{
		Title: "Test " + slug, Slug: slug, IsPublished: true, IsVisible: visible,
	})
	if err != nil {
		t.Fatalf("create test category %q: %v", slug, err)
	}
	return c
}

// testPost inserts a post for author. The caller owns cleanup through the
// author's cascade.
func testPost(t *testing.T, db *sql.DB, author *models.User, title string, pubDate time.Time, published bool, categoryID *int64) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:       title,
		Text:        "Body of " + title,
		PubDate:     pubDate,
		AuthorID:    author.ID,
		CategoryID:  categoryID,
		IsPublished: published,
	}
	if err := NewPostStore(db).Create(p); err != nil {
		t.Fatalf("create test post %q: %v", title, err)
	}
	return p
}
