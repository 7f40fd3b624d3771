// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"blogicum/internal/imaging"
	"blogicum/internal/models"
	"blogicum/internal/query"
	"blogicum/internal/store"
)

// fakeDB is an in-memory stand-in for the PostgreSQL stores. It applies
// the same foreign key rules as the schema.
type fakeDB struct {
	users      map[uuid.UUID]*models.User
	categories map[int64]*models.Category
	locations  map[int64]*models.Location
	posts      map[int64]*models.Post
	comments   map[int64]*models.Comment
	nextID     int64
	clock      time.Time
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:      map[uuid.UUID]*models.User{},
		categories: map[int64]*models.Category{},
		locations:  map[int64]*models.Location{},
		posts:      map[int64]*models.Post{},
		comments:   map[int64]*models.Comment{},
		clock:      time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (db *fakeDB) id() int64 {
	db.nextID++
	return db.nextID
}

func (db *fakeDB) now() time.Time { return db.clock }

func (db *fakeDB) service(images Images) *Service {
	return New(Deps{
		Users:      fakeUsers{db},
		Categories: fakeCategories{db},
		Locations:  fakeLocations{db},
		Posts:      fakePosts{db},
		Comments:   fakeComments{db},
		Images:     images,
		Now:        db.now,
	})
}

func (db *fakeDB) addUser(username string) *models.User {
	u := &models.User{ID: uuid.New(), Username: username}
	db.users[u.ID] = u
	return u
}

func (db *fakeDB) addCategory(slug string, published, visible bool) *models.Category {
	c := &models.Category{ID: db.id(), Title: slug, Slug: slug, IsPublished: published, IsVisible: visible}
	db.categories[c.ID] = c
	return c
}

func (db *fakeDB) addLocation(name string, published bool) *models.Location {
	l := &models.Location{ID: db.id(), Name: name, IsPublished: published}
	db.locations[l.ID] = l
	return l
}

func (db *fakeDB) addPost(author *models.User, title string, pubDate time.Time, published bool, cat *models.Category) *models.Post {
	p := &models.Post{ID: db.id(), Title: title, Text: "text", PubDate: pubDate, AuthorID: author.ID, IsPublished: published}
	if cat != nil {
		p.CategoryID = &cat.ID
	}
	db.posts[p.ID] = p
	return p
}

func (db *fakeDB) addComment(author *models.User, post *models.Post, text string) *models.Comment {
	c := &models.Comment{ID: db.id(), PostID: post.ID, AuthorID: &author.ID, Text: text, CreatedAt: db.clock}
	db.comments[c.ID] = c
	return c
}

// deleteCategory mirrors ON DELETE SET NULL.
func (db *fakeDB) deleteCategory(id int64) {
	delete(db.categories, id)
	for _, p := range db.posts {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
		}
	}
}

// load returns a copy of a post with its joins filled like scanPost does.
func (db *fakeDB) load(p *models.Post) models.Post {
	cp := *p
	cp.Category = nil
	if p.CategoryID != nil {
		if c, ok := db.categories[*p.CategoryID]; ok {
			cat := *c
			cp.Category = &cat
		}
	}
	if u, ok := db.users[p.AuthorID]; ok {
		cp.Author = models.PostAuthor{Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
	}
	cp.CommentCount = 0
	for _, c := range db.comments {
		if c.PostID == p.ID {
			cp.CommentCount++
		}
	}
	return cp
}

type fakeUsers struct{ db *fakeDB }

func (f fakeUsers) FindByUsername(username string) (*models.User, error) {
	for _, u := range f.db.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f fakeUsers) FindByID(id uuid.UUID) (*models.User, error) {
	if u, ok := f.db.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f fakeUsers) Create(username, email, password string, superuser bool) (*models.User, error) {
	if u, _ := f.FindByUsername(username); u != nil {
		return nil, store.ErrDuplicate
	}
	u := f.db.addUser(username)
	u.Email = email
	u.PasswordHash = "hashed:" + password
	u.IsSuperuser = superuser
	cp := *u
	return &cp, nil
}

func (f fakeUsers) UpdateProfile(u *models.User) error {
	for _, other := range f.db.users {
		if other.ID != u.ID && other.Username == u.Username {
			return store.ErrDuplicate
		}
	}
	cp := *u
	f.db.users[u.ID] = &cp
	return nil
}

type fakeCategories struct{ db *fakeDB }

func (f fakeCategories) FindBySlug(slug string) (*models.Category, error) {
	for _, c := range f.db.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f fakeCategories) FindByID(id int64) (*models.Category, error) {
	if c, ok := f.db.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f fakeCategories) ListPublished() ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.db.categories {
		if c.IsPublished {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeLocations struct{ db *fakeDB }

func (f fakeLocations) FindByID(id int64) (*models.Location, error) {
	if l, ok := f.db.locations[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (f fakeLocations) List(publishedOnly bool) ([]models.Location, error) {
	var out []models.Location
	for _, l := range f.db.locations {
		if !publishedOnly || l.IsPublished {
			out = append(out, *l)
		}
	}
	return out, nil
}

type fakePosts struct{ db *fakeDB }

func (f fakePosts) matching(feed query.Feed) []models.Post {
	var out []models.Post
	for _, p := range f.db.posts {
		loaded := f.db.load(p)
		if feed.Matches(&loaded) {
			out = append(out, loaded)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PubDate.Equal(out[j].PubDate) {
			return out[i].PubDate.After(out[j].PubDate)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (f fakePosts) Count(feed query.Feed) (int, error) {
	return len(f.matching(feed)), nil
}

func (f fakePosts) Page(feed query.Feed, page int) ([]models.Post, error) {
	all := f.matching(feed)
	start := (page - 1) * query.PageSize
	if start >= len(all) {
		return nil, nil
	}
	end := min(start+query.PageSize, len(all))
	return all[start:end], nil
}

func (f fakePosts) FindByID(id int64) (*models.Post, error) {
	if p, ok := f.db.posts[id]; ok {
		loaded := f.db.load(p)
		return &loaded, nil
	}
	return nil, nil
}

func (f fakePosts) FindOwned(id int64, authorID uuid.UUID) (*models.Post, error) {
	p, _ := f.FindByID(id)
	if p == nil || p.AuthorID != authorID {
		return nil, nil
	}
	return p, nil
}

func (f fakePosts) Create(p *models.Post) error {
	p.ID = f.db.id()
	p.CreatedAt = f.db.clock
	cp := *p
	f.db.posts[p.ID] = &cp
	return nil
}

func (f fakePosts) Update(p *models.Post) error {
	if _, ok := f.db.posts[p.ID]; !ok {
		return fmt.Errorf("update post: no row %d", p.ID)
	}
	cp := *p
	f.db.posts[p.ID] = &cp
	return nil
}

// Delete mirrors ON DELETE CASCADE on comments.
func (f fakePosts) Delete(id int64) (bool, error) {
	if _, ok := f.db.posts[id]; !ok {
		return false, nil
	}
	delete(f.db.posts, id)
	for cid, c := range f.db.comments {
		if c.PostID == id {
			delete(f.db.comments, cid)
		}
	}
	return true, nil
}

type fakeComments struct{ db *fakeDB }

func (f fakeComments) ListByPost(postID int64) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range f.db.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f fakeComments) FindInPost(postID, commentID int64) (*models.Comment, error) {
	c, ok := f.db.comments[commentID]
	if !ok || c.PostID != postID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f fakeComments) Create(c *models.Comment) error {
	c.ID = f.db.id()
	c.CreatedAt = f.db.clock
	cp := *c
	f.db.comments[c.ID] = &cp
	return nil
}

func (f fakeComments) UpdateText(id int64, text string) error {
	if c, ok := f.db.comments[id]; ok {
		c.Text = text
	}
	return nil
}

func (f fakeComments) Delete(id int64) (bool, error) {
	if _, ok := f.db.comments[id]; !ok {
		return false, nil
	}
	delete(f.db.comments, id)
	return true, nil
}

// fakeImages records saved and removed blob keys.
type fakeImages struct {
	saved   []string
	removed []string
}

func (f *fakeImages) Save(_ context.Context, data []byte) (string, error) {
	if string(data) == "not an image" {
		return "", imaging.ErrUnsupported
	}
	if string(data) == "boom" {
		return "", errors.New("bucket unavailable")
	}
	key := fmt.Sprintf("blogs_images/%d.png", len(f.saved)+1)
	f.saved = append(f.saved, key)
	return key, nil
}

func (f *fakeImages) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	return nil
}
