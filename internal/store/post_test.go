// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/query"
)

func timeAgo() time.Time { return time.Now().Add(-time.Hour).Truncate(time.Microsecond) }

func titles(posts []models.Post) map[string]bool {
	m := make(map[string]bool, len(posts))
	for _, p := range posts {
		m[p.Title] = true
	}
	return m
}

func TestPostStoreAuthorFeedVisibility(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)

	author := testUser(t, db, "test-feed-author")
	hidden := testCategory(t, db, "test-feed-hidden", false)
	shown := testCategory(t, db, "test-feed-shown", true)

	testPost(t, db, author, "public", timeAgo(), true, nil)
	testPost(t, db, author, "in-shown", timeAgo(), true, &shown.ID)
	testPost(t, db, author, "draft", timeAgo(), false, nil)
	testPost(t, db, author, "scheduled", time.Now().Add(24*time.Hour), true, nil)
	testPost(t, db, author, "in-hidden", timeAgo(), true, &hidden.ID)

	now := time.Now()

	all, err := s.Page(query.AuthorFeed(author.ID, true, now), 1)
	if err != nil {
		t.Fatalf("Page(owner): %v", err)
	}
	if len(all) != 5 {
		t.Errorf("owner feed: got %d posts, want 5", len(all))
	}
	if total, _ := s.Count(query.AuthorFeed(author.ID, true, now)); total != 5 {
		t.Errorf("owner count: got %d, want 5", total)
	}
	// Newest first: the scheduled post leads.
	if len(all) > 0 && all[0].Title != "scheduled" {
		t.Errorf("first post: got %q, want scheduled", all[0].Title)
	}

	visible, err := s.Page(query.AuthorFeed(author.ID, false, now), 1)
	if err != nil {
		t.Fatalf("Page(visitor): %v", err)
	}
	got := titles(visible)
	if len(got) != 2 || !got["public"] || !got["in-shown"] {
		t.Errorf("visitor feed: got %v, want public and in-shown", got)
	}
	if total, _ := s.Count(query.AuthorFeed(author.ID, false, now)); total != 2 {
		t.Errorf("visitor count: got %d, want 2", total)
	}
}

func TestPostStoreScheduledBecomesVisible(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)

	author := testUser(t, db, "test-feed-scheduled")
	tomorrow := time.Now().Add(24 * time.Hour)
	testPost(t, db, author, "tomorrow", tomorrow, true, nil)

	today, _ := s.Page(query.AuthorFeed(author.ID, false, time.Now()), 1)
	if len(today) != 0 {
		t.Errorf("scheduled post visible today: %v", titles(today))
	}
	later, _ := s.Page(query.AuthorFeed(author.ID, false, tomorrow.Add(time.Minute)), 1)
	if len(later) != 1 {
		t.Errorf("scheduled post should be visible after its pub_date, got %d", len(later))
	}
}

func TestPostStoreCategoryFeed(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)

	author := testUser(t, db, "test-category-feed")
	cat := testCategory(t, db, "test-category-feed", true)

	testPost(t, db, author, "cat-public", timeAgo(), true, &cat.ID)
	testPost(t, db, author, "cat-draft", timeAgo(), false, &cat.ID)
	testPost(t, db, author, "no-cat", timeAgo(), true, nil)
	testPost(t, db, author, "cat-later", time.Now().Add(time.Hour), true, &cat.ID)

	posts, err := s.Page(query.CategoryFeed(cat.ID, time.Now()), 1)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	got := titles(posts)
	if len(got) != 1 || !got["cat-public"] {
		t.Errorf("category feed: got %v", got)
	}
	if posts[0].Category == nil || posts[0].Category.Slug != cat.Slug {
		t.Errorf("category not joined: %+v", posts[0].Category)
	}
}

func TestPostStorePagination(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)

	author := testUser(t, db, "test-pagination")
	base := timeAgo()
	for i := 0; i < query.PageSize+3; i++ {
		testPost(t, db, author, "p", base.Add(-time.Duration(i)*time.Minute), true, nil)
	}

	feed := query.AuthorFeed(author.ID, true, time.Now())
	first, _ := s.Page(feed, 1)
	second, _ := s.Page(feed, 2)
	if len(first) != query.PageSize {
		t.Errorf("page 1: got %d, want %d", len(first), query.PageSize)
	}
	if len(second) != 3 {
		t.Errorf("page 2: got %d, want 3", len(second))
	}
}

func TestPostStoreFindAndUpdate(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)

	author := testUser(t, db, "test-post-update")
	other := testUser(t, db, "test-post-other")
	loc, err := NewLocationStore(db).Create("Test Location", true)
	if err != nil {
		t.Fatalf("create location: %v", err)
	}
	t.Cleanup(func() { NewLocationStore(db).Delete(loc.ID) })

	p := testPost(t, db, author, "before", timeAgo(), true, nil)

	got, err := s.FindByID(p.ID)
	if err != nil || got == nil {
		t.Fatalf("FindByID: %v %v", got, err)
	}
	if got.Author.Username != author.Username {
		t.Errorf("author not joined: %+v", got.Author)
	}

	got.Title = "after"
	got.LocationID = &loc.ID
	if err := s.Update(got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = s.FindByID(p.ID)
	if got.Title != "after" || got.Location == nil || got.Location.Name != "Test Location" {
		t.Errorf("update not applied: %+v", got)
	}

	owned, err := s.FindOwned(p.ID, other.ID)
	if err != nil {
		t.Fatalf("FindOwned: %v", err)
	}
	if owned != nil {
		t.Error("FindOwned must not return another author's post")
	}
	owned, _ = s.FindOwned(p.ID, author.ID)
	if owned == nil {
		t.Error("FindOwned should return the author's own post")
	}
}

func TestPostStoreDeleteCascadesComments(t *testing.T) {
	db := testDB(t)
	posts := NewPostStore(db)
	comments := NewCommentStore(db)

	author := testUser(t, db, "test-post-cascade")
	p := testPost(t, db, author, "with comments", timeAgo(), true, nil)

	for _, text := range []string{"one", "two"} {
		if err := comments.Create(&models.Comment{PostID: p.ID, AuthorID: &author.ID, Text: text}); err != nil {
			t.Fatalf("create comment: %v", err)
		}
	}

	ok, err := posts.Delete(p.ID)
	if err != nil || !ok {
		t.Fatalf("Delete: %v %v", ok, err)
	}
	left, err := comments.ListByPost(p.ID)
	if err != nil {
		t.Fatalf("ListByPost: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("comments survived post deletion: %d", len(left))
	}

	ok, _ = posts.Delete(p.ID)
	if ok {
		t.Error("second delete should report nothing deleted")
	}
}

func TestPostStoreCategoryDeleteSetsNull(t *testing.T) {
	db := testDB(t)
	posts := NewPostStore(db)

	author := testUser(t, db, "test-category-setnull")
	cat := testCategory(t, db, "news-store-test", true)

	var ids []int64
	for i := 0; i < 3; i++ {
		ids = append(ids, testPost(t, db, author, "news", timeAgo(), true, &cat.ID).ID)
	}

	if ok, err := NewCategoryStore(db).Delete(cat.Slug); err != nil || !ok {
		t.Fatalf("delete category: %v %v", ok, err)
	}

	for _, id := range ids {
		p, err := posts.FindByID(id)
		if err != nil || p == nil {
			t.Fatalf("post %d lost with its category: %v", id, err)
		}
		if p.CategoryID != nil || p.Category != nil {
			t.Errorf("post %d still references a category", id)
		}
	}
}

func TestPostStoreCommentCount(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)

	author := testUser(t, db, "test-comment-count")
	p := testPost(t, db, author, "counted", timeAgo(), true, nil)
	for i := 0; i < 3; i++ {
		NewCommentStore(db).Create(&models.Comment{PostID: p.ID, AuthorID: &author.ID, Text: "c"})
	}

	posts, _ := s.Page(query.AuthorFeed(author.ID, true, time.Now()), 1)
	if len(posts) != 1 || posts[0].CommentCount != 3 {
		t.Errorf("comment count: got %+v", posts)
	}
}

func TestPostStoreModeration(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)

	author := testUser(t, db, "test-moderation-author")
	heir := testUser(t, db, "test-moderation-heir")
	cat := testCategory(t, db, "test-moderation-cat", true)
	loc, err := NewLocationStore(db).Create("Moderation Town", false)
	if err != nil {
		t.Fatalf("create location: %v", err)
	}
	t.Cleanup(func() { NewLocationStore(db).Delete(loc.ID) })

	p := testPost(t, db, author, "moderated", timeAgo(), true, nil)

	steps := []struct {
		name string
		run  func() (bool, error)
	}{
		{"unpublish", func() (bool, error) { return s.SetPublished(p.ID, false) }},
		{"set category", func() (bool, error) { return s.SetCategory(p.ID, &cat.ID) }},
		{"set location", func() (bool, error) { return s.SetLocation(p.ID, &loc.ID) }},
		{"set author", func() (bool, error) { return s.SetAuthor(p.ID, heir.ID) }},
	}
	for _, st := range steps {
		if ok, err := st.run(); err != nil || !ok {
			t.Fatalf("%s: ok=%v err=%v", st.name, ok, err)
		}
	}

	got, err := s.FindByID(p.ID)
	if err != nil || got == nil {
		t.Fatalf("FindByID: %v %v", got, err)
	}
	if got.IsPublished {
		t.Error("post still published")
	}
	if got.CategoryID == nil || *got.CategoryID != cat.ID {
		t.Errorf("category: got %v, want %d", got.CategoryID, cat.ID)
	}
	if got.Location == nil || got.Location.Name != "Moderation Town" {
		t.Errorf("location: got %+v", got.Location)
	}
	if got.AuthorID != heir.ID || got.Author.Username != heir.Username {
		t.Errorf("author: got %s (%s), want %s", got.AuthorID, got.Author.Username, heir.Username)
	}

	// nil clears the optional references.
	if ok, err := s.SetCategory(p.ID, nil); err != nil || !ok {
		t.Fatalf("clear category: %v %v", ok, err)
	}
	if ok, err := s.SetLocation(p.ID, nil); err != nil || !ok {
		t.Fatalf("clear location: %v %v", ok, err)
	}
	got, _ = s.FindByID(p.ID)
	if got.CategoryID != nil || got.LocationID != nil {
		t.Errorf("references not cleared: %+v", got)
	}

	if ok, err := s.SetPublished(-1, true); err != nil || ok {
		t.Errorf("missing post: ok=%v err=%v, want false and no error", ok, err)
	}
	missing := int64(-1)
	if _, err := s.SetCategory(p.ID, &missing); err == nil {
		t.Error("unknown category must violate the foreign key")
	}
}

func TestPostStoreReportFilter(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)

	author := testUser(t, db, "test-report-filter")
	testPost(t, db, author, "Zebra_100% report", timeAgo(), true, nil)
	testPost(t, db, author, "zebra draft report", timeAgo(), false, nil)
	testPost(t, db, author, "ZebraX100 report", timeAgo(), true, nil)

	published := true
	tests := []struct {
		name   string
		filter query.ReportFilter
		want   []string
	}{
		{"search ignores case", query.ReportFilter{Search: "ZEBRA"}, []string{"Zebra_100% report", "zebra draft report", "ZebraX100 report"}},
		{"published only", query.ReportFilter{Search: "zebra", Published: &published}, []string{"Zebra_100% report", "ZebraX100 report"}},
		{"wildcards match literally", query.ReportFilter{Search: "zebra_100%"}, []string{"Zebra_100% report"}},
		{"limit", query.ReportFilter{Search: "zebra", Limit: 1}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := s.Report(tt.filter)
			if err != nil {
				t.Fatalf("Report: %v", err)
			}
			if tt.want == nil {
				if len(posts) != int(tt.filter.Limit) {
					t.Errorf("got %d posts, want %d", len(posts), tt.filter.Limit)
				}
				return
			}
			got := titles(posts)
			if len(got) != len(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			for _, title := range tt.want {
				if !got[title] {
					t.Errorf("missing %q in %v", title, got)
				}
			}
		})
	}
}
