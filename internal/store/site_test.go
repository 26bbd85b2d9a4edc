// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"github.com/google/uuid"

	"hirexfed/internal/models"
)

func TestSiteStoreFeatureLifecycle(t *testing.T) {
	db := testDB(t)
	s := NewSiteStore(db)

	title := "Store Test Feature"
	t.Cleanup(func() { db.Exec("DELETE FROM features WHERE title = $1", title) })

	first := &models.Feature{Icon: "fa-gem", Title: title, Description: "one"}
	second := &models.Feature{Icon: "fa-rocket", Title: title, Description: "two"}
	for _, f := range []*models.Feature{first, second} {
		if err := s.SaveFeature(testCtx(), f); err != nil {
			t.Fatalf("SaveFeature: %v", err)
		}
	}

	got, err := s.FindFeatureByTitle(testCtx(), title)
	if err != nil || got == nil {
		t.Fatalf("FindFeatureByTitle: %v, %v", got, err)
	}
	if got.ID != first.ID {
		t.Errorf("expected oldest duplicate, got %s", got.ID)
	}

	n, err := s.DeleteDuplicates(testCtx(), "features", "title", title, first.ID)
	if err != nil || n != 1 {
		t.Errorf("DeleteDuplicates = %d, %v; want 1", n, err)
	}

	if err := s.Delete(testCtx(), "features", first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := s.FindFeature(testCtx(), first.ID); got != nil {
		t.Error("expected nil after delete")
	}
}

func TestSiteStoreRejectsUnknownTable(t *testing.T) {
	s := NewSiteStore(nil)
	if err := s.Delete(testCtx(), "users", uuid.New()); err == nil {
		t.Error("expected error for table outside the allow-list")
	}
	if _, err := s.DeleteDuplicates(testCtx(), "posts", "id; DROP TABLE posts", "x", uuid.New()); err == nil {
		t.Error("expected error for column outside the allow-list")
	}
}

func TestNavigationStoreChildren(t *testing.T) {
	db := testDB(t)
	s := NewNavigationStore(db)

	parentTitle := "Store Test Parent"
	t.Cleanup(func() { db.Exec("DELETE FROM navigation_items WHERE title = $1", parentTitle) })

	parent := &models.NavigationItem{Title: parentTitle, URL: "/parent/", IsActive: true}
	if err := s.Save(testCtx(), parent); err != nil {
		t.Fatalf("Save parent: %v", err)
	}
	child := &models.NavigationItem{Title: "Store Test Child", URL: "/parent/child/", ParentID: &parent.ID, IsActive: true}
	if err := s.Save(testCtx(), child); err != nil {
		t.Fatalf("Save child: %v", err)
	}

	top, err := s.FindByTitle(testCtx(), parentTitle, nil)
	if err != nil || top == nil || top.ID != parent.ID {
		t.Fatalf("FindByTitle top-level = %v, %v", top, err)
	}
	got, err := s.FindByTitle(testCtx(), "Store Test Child", &parent.ID)
	if err != nil || got == nil || got.ID != child.ID {
		t.Fatalf("FindByTitle child = %v, %v", got, err)
	}
	if got, _ := s.FindByTitle(testCtx(), "Store Test Child", nil); got != nil {
		t.Error("child must not match as a top-level item")
	}
}
