// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"blogicum/internal/blog"
	"blogicum/internal/database"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/render"
	"blogicum/internal/session"
	"blogicum/internal/storage"
	"blogicum/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "blogicum")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "blogicum")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	ctx := context.Background()
	db, err := database.Connect(ctx, dsn)
	if err != nil {
		t.Skipf("skipping: DB not reachable: %v", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB        *sql.DB
	Sessions  *session.Store
	UserStore *store.UserStore
	PostStore *store.PostStore
	Comments  *store.CommentStore
	Media     afero.Fs
	Base      *Base
	Public    *Public
	Posts     *Posts
	Comment   *Comments
	Profile   *Profile
	Auth      *Auth
}

// newTestEnv creates a complete test environment with all handler dependencies.
// Uploaded images land in an in-memory filesystem.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	media := afero.NewMemMapFs()
	images := storage.NewImages(storage.NewLocalFs(media, "/media/"))

	renderer, err := render.New(render.Options{MediaURL: images.URL})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	sessions := session.NewStore(vk, false, time.Hour)
	users := store.NewUserStore(db)
	posts := store.NewPostStore(db)
	comments := store.NewCommentStore(db)

	svc := blog.New(blog.Deps{
		Users:      users,
		Categories: store.NewCategoryStore(db),
		Locations:  store.NewLocationStore(db),
		Posts:      posts,
		Comments:   comments,
		Images:     images,
	})
	base := NewBase(renderer, sessions, svc, "/auth/login/")

	return &testEnv{
		DB:        db,
		Sessions:  sessions,
		UserStore: users,
		PostStore: posts,
		Comments:  comments,
		Media:     media,
		Base:      base,
		Public:    NewPublic(base),
		Posts:     NewPosts(base),
		Comment:   NewComments(base),
		Profile:   NewProfile(base),
		Auth:      NewAuth(base, users),
	}
}

// newUser creates a user with password "password123" that is removed
// when the test ends. The name gets a random suffix so parallel runs do
// not collide.
func (e *testEnv) newUser(t *testing.T, prefix string) *models.User {
	t.Helper()
	name := prefix + "_" + uuid.NewString()[:8]
	u, err := e.UserStore.Create(name, name+"@example.com", "password123", false)
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	t.Cleanup(func() { e.DB.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

// newPost creates a post by author, published an hour ago.
func (e *testEnv) newPost(t *testing.T, author *models.User, title string, published bool) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:       title,
		Text:        "Body of " + title,
		PubDate:     time.Now().Add(-time.Hour),
		AuthorID:    author.ID,
		IsPublished: published,
	}
	if err := e.PostStore.Create(p); err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

// signIn stores a fully authenticated session for u and attaches both
// the cookie and the loaded session to r, as LoadSession would.
func (e *testEnv) signIn(t *testing.T, r *http.Request, u *models.User) *http.Request {
	t.Helper()
	data := &session.Data{UserID: u.ID, Username: u.Username, TwoFADone: true}
	rec := httptest.NewRecorder()
	if _, err := e.Sessions.Create(r.Context(), rec, data); err != nil {
		t.Fatalf("create session: %v", err)
	}
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r.WithContext(ctxWithSession(r.Context(), data))
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return middleware.WithSession(ctx, data)
}

// withChiURLParams adds chi URL parameters (key, value pairs) to a request.
func withChiURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// newFormRequest builds a urlencoded POST request.
func newFormRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func idString(id int64) string {
	return fmt.Sprint(id)
}
