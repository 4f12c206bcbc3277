// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"github.com/google/uuid"

	"nearo/internal/models"
)

func TestBuildTree(t *testing.T) {
	rootID, childAID, childBID, grandID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	flat := []models.Category{
		{ID: rootID, Name: "Vehicles", SortOrder: 0},
		{ID: childAID, ParentID: &rootID, Name: "Cars", SortOrder: 0},
		{ID: childBID, ParentID: &rootID, Name: "Motorbikes", SortOrder: 1},
		{ID: grandID, ParentID: &childAID, Name: "Electric Cars", SortOrder: 0},
	}

	tree := BuildTree(flat, nil)
	if len(tree) != 1 {
		t.Fatalf("roots = %d, want 1", len(tree))
	}
	root := tree[0]
	if len(root.Children) != 2 {
		t.Fatalf("root children = %d, want 2", len(root.Children))
	}
	if root.Children[0].Name != "Cars" || root.Children[1].Name != "Motorbikes" {
		t.Errorf("child order = %s, %s", root.Children[0].Name, root.Children[1].Name)
	}
	if len(root.Children[0].Children) != 1 || root.Children[0].Children[0].Name != "Electric Cars" {
		t.Errorf("grandchildren = %+v", root.Children[0].Children)
	}
}

func TestCategoryIsLeaf(t *testing.T) {
	parent := models.Category{ID: uuid.New()}
	child := models.Category{ID: uuid.New(), ParentID: &parent.ID}
	all := []models.Category{parent, child}

	if parent.IsLeaf(all) {
		t.Error("referenced category should not be a leaf")
	}
	if !child.IsLeaf(all) {
		t.Error("unreferenced category should be a leaf")
	}
}

func TestCategoryStoreLeaves(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	parentID := testCategory(t, db, "Test Parent", "store-test-parent", nil)
	childID := testCategory(t, db, "Test Child", "store-test-child", &parentID)

	leaves, err := s.Leaves(ctxT(t))
	if err != nil {
		t.Fatalf("Leaves: %v", err)
	}

	seen := make(map[uuid.UUID]bool, len(leaves))
	for _, c := range leaves {
		seen[c.ID] = true
	}
	if seen[parentID] {
		t.Error("referenced parent listed as leaf")
	}
	if !seen[childID] {
		t.Error("unreferenced child missing from leaves")
	}
}

func TestCategoryStoreFindBySlug(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	id := testCategory(t, db, "Find Me", "store-test-find-me", nil)

	found, err := s.FindBySlug(ctxT(t), "store-test-find-me")
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if found == nil || found.ID != id {
		t.Errorf("found = %+v, want id %s", found, id)
	}

	missing, err := s.FindBySlug(ctxT(t), "store-test-no-such-slug")
	if err != nil {
		t.Fatalf("FindBySlug missing: %v", err)
	}
	if missing != nil {
		t.Errorf("missing slug returned %+v", missing)
	}
}
