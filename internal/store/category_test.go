// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"testing"

	"blogicum/internal/models"
)

func TestCategoryStoreCRUD(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	c := testCategory(t, db, "test-crud", true)

	got, err := s.FindBySlug("test-crud")
	if err != nil || got == nil {
		t.Fatalf("FindBySlug: %v %v", got, err)
	}
	if got.ID != c.ID || !got.IsPublished || !got.IsVisible {
		t.Errorf("FindBySlug: got %+v", got)
	}

	byID, _ := s.FindByID(c.ID)
	if byID == nil || byID.Slug != "test-crud" {
		t.Errorf("FindByID: got %+v", byID)
	}

	missing, err := s.FindBySlug("test-missing-slug")
	if err != nil || missing != nil {
		t.Errorf("FindBySlug(missing): %v %v", missing, err)
	}

	_, err = s.Create(&models.Category{Title: "dup", Slug: "test-crud"})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate slug: got %v, want ErrDuplicate", err)
	}

	ok, err := s.SetVisible("test-crud", false)
	if err != nil || !ok {
		t.Fatalf("SetVisible: %v %v", ok, err)
	}
	got, _ = s.FindBySlug("test-crud")
	if got.IsVisible {
		t.Error("category should be hidden")
	}

	list, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	found := false
	for _, item := range list {
		if item.Slug == "test-crud" {
			found = true
		}
	}
	if !found {
		t.Error("List did not include the test category")
	}

	ok, err = s.Delete("test-crud")
	if err != nil || !ok {
		t.Fatalf("Delete: %v %v", ok, err)
	}
	ok, _ = s.Delete("test-crud")
	if ok {
		t.Error("second delete should report nothing deleted")
	}
}

func TestCategoryStoreRejectsBadSlug(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	t.Cleanup(func() { cleanCategories(t, db, "bad slug!") })

	if _, err := s.Create(&models.Category{Title: "Bad", Slug: "bad slug!"}); err == nil {
		t.Error("expected the slug check constraint to reject the slug")
	}
}

func TestLocationStoreCRUD(t *testing.T) {
	db := testDB(t)
	s := NewLocationStore(db)

	l, err := s.Create("Test Город", false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { s.Delete(l.ID) })

	got, err := s.FindByID(l.ID)
	if err != nil || got == nil || got.Name != "Test Город" {
		t.Fatalf("FindByID: %+v %v", got, err)
	}

	published, _ := s.List(true)
	for _, item := range published {
		if item.ID == l.ID {
			t.Error("unpublished location listed as published")
		}
	}

	ok, err := s.Delete(l.ID)
	if err != nil || !ok {
		t.Fatalf("Delete: %v %v", ok, err)
	}
}
