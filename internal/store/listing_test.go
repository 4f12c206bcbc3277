// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"nearo/internal/models"
)

func int64Ptr(n int64) *int64     { return &n }
func floatPtr(f float64) *float64 { return &f }

func TestSearchCandidateRestriction(t *testing.T) {
	db := testDB(t)
	s := NewListingStore(db)

	owner := testUser(t, db)
	catID := testCategory(t, db, "Search Cat", "store-test-search-cat", nil)
	a := testListing(t, db, owner, &catID, "Candidate A", 100)
	testListing(t, db, owner, &catID, "Candidate B", 100)

	cards, err := s.Search(ctxT(t), SearchParams{
		CandidateIDs: []uuid.UUID{a},
		Filters:      models.ListingFilters{CategoryID: &catID},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(cards) != 1 || cards[0].ID != a {
		t.Errorf("cards = %+v, want only candidate A", cards)
	}

	// An explicitly empty candidate set matches nothing.
	cards, err = s.Search(ctxT(t), SearchParams{
		CandidateIDs: []uuid.UUID{},
		Filters:      models.ListingFilters{CategoryID: &catID},
	})
	if err != nil {
		t.Fatalf("Search empty candidates: %v", err)
	}
	if len(cards) != 0 {
		t.Errorf("empty candidate set returned %d cards", len(cards))
	}
}

func TestSearchTextAndPriceFilters(t *testing.T) {
	db := testDB(t)
	s := NewListingStore(db)

	owner := testUser(t, db)
	catID := testCategory(t, db, "Filter Cat", "store-test-filter-cat", nil)
	cheap := testListing(t, db, owner, &catID, "Bargain Mountain Bike", 500)
	testListing(t, db, owner, &catID, "Premium Mountain Bike", 5000)
	testListing(t, db, owner, &catID, "Garden Chair", 500)

	cards, err := s.Search(ctxT(t), SearchParams{
		Query: "mountain bike",
		Filters: models.ListingFilters{
			CategoryID: &catID,
			MaxPrice:   int64Ptr(1000),
		},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(cards) != 1 || cards[0].ID != cheap {
		t.Errorf("cards = %+v, want only the cheap bike", cards)
	}
}

func TestSearchPriceSortAndCursor(t *testing.T) {
	db := testDB(t)
	s := NewListingStore(db)

	owner := testUser(t, db)
	catID := testCategory(t, db, "Sort Cat", "store-test-sort-cat", nil)
	mid := testListing(t, db, owner, &catID, "Mid", 200)
	high := testListing(t, db, owner, &catID, "High", 300)
	low := testListing(t, db, owner, &catID, "Low", 100)

	// Spread creation times so cursor pagination is deterministic.
	for i, id := range []uuid.UUID{low, high, mid} {
		if _, err := db.Exec(`UPDATE listings SET created_at = NOW() - make_interval(mins => $1) WHERE id = $2`, i+1, id); err != nil {
			t.Fatalf("spread created_at: %v", err)
		}
	}

	cards, err := s.Search(ctxT(t), SearchParams{
		Filters: models.ListingFilters{
			CategoryID: &catID,
			SortBy:     models.SortPriceAsc,
		},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(cards) != 3 {
		t.Fatalf("cards = %d, want 3", len(cards))
	}
	if cards[0].Price != 100 || cards[2].Price != 300 {
		t.Errorf("price order = %d, %d, %d", cards[0].Price, cards[1].Price, cards[2].Price)
	}

	// Default order is newest first, and the cursor walks created_at down.
	cards, err = s.Search(ctxT(t), SearchParams{
		Filters: models.ListingFilters{CategoryID: &catID},
		Limit:   2,
	})
	if err != nil {
		t.Fatalf("Search page 1: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("page 1 = %d cards, want 2", len(cards))
	}
	cursor := cards[1].CreatedAt
	rest, err := s.Search(ctxT(t), SearchParams{
		Filters: models.ListingFilters{CategoryID: &catID},
		Cursor:  &cursor,
		Limit:   2,
	})
	if err != nil {
		t.Fatalf("Search page 2: %v", err)
	}
	if len(rest) != 1 {
		t.Fatalf("page 2 = %d cards, want 1", len(rest))
	}
	if !rest[0].CreatedAt.Before(cursor) {
		t.Error("cursor page returned a non-older listing")
	}
}

func TestSearchBoundingBox(t *testing.T) {
	db := testDB(t)
	s := NewListingStore(db)

	owner := testUser(t, db)
	catID := testCategory(t, db, "Geo Cat", "store-test-geo-cat", nil)

	inBox := testListing(t, db, owner, &catID, "Close By", 100)
	farAway := testListing(t, db, owner, &catID, "Far Away", 100)
	if _, err := db.Exec(`UPDATE listings SET location_lat = 10.83, location_lng = 106.63 WHERE id = $1`, inBox); err != nil {
		t.Fatalf("set close location: %v", err)
	}
	if _, err := db.Exec(`UPDATE listings SET location_lat = 21.02, location_lng = 105.83 WHERE id = $1`, farAway); err != nil {
		t.Fatalf("set far location: %v", err)
	}

	cards, err := s.Search(ctxT(t), SearchParams{
		Filters: models.ListingFilters{
			CategoryID:  &catID,
			LocationLat: floatPtr(10.8231),
			LocationLng: floatPtr(106.6297),
			RadiusKm:    floatPtr(10),
		},
		IncludeCoords: true,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(cards) != 1 || cards[0].ID != inBox {
		t.Fatalf("cards = %+v, want only the close listing", cards)
	}
	if cards[0].LocationLat == nil || cards[0].LocationLng == nil {
		t.Error("IncludeCoords did not populate coordinates")
	}
}

func TestSearchExcludesInactive(t *testing.T) {
	db := testDB(t)
	s := NewListingStore(db)

	owner := testUser(t, db)
	catID := testCategory(t, db, "Status Cat", "store-test-status-cat", nil)
	active := testListing(t, db, owner, &catID, "Active", 100)
	sold := testListing(t, db, owner, &catID, "Sold", 100)
	if err := s.UpdateStatus(ctxT(t), sold, models.StatusSold); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	cards, err := s.Search(ctxT(t), SearchParams{
		Filters: models.ListingFilters{CategoryID: &catID},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(cards) != 1 || cards[0].ID != active {
		t.Errorf("cards = %+v, want only the active listing", cards)
	}
}

func TestFindByIDWithImagesAndOwner(t *testing.T) {
	db := testDB(t)
	s := NewListingStore(db)

	owner := testUser(t, db)
	id := testListing(t, db, owner, nil, "Detailed", 100)

	if err := s.InsertImage(ctxT(t), id, "https://img.test/b.jpg", 1); err != nil {
		t.Fatalf("InsertImage: %v", err)
	}
	if err := s.InsertImage(ctxT(t), id, "https://img.test/a.jpg", 0); err != nil {
		t.Fatalf("InsertImage: %v", err)
	}

	detail, err := s.FindByID(ctxT(t), id)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if detail == nil {
		t.Fatal("detail is nil")
	}
	if len(detail.Images) != 2 {
		t.Fatalf("images = %d, want 2", len(detail.Images))
	}
	if detail.Images[0].Position != 0 || detail.Images[0].URL != "https://img.test/a.jpg" {
		t.Errorf("first image = %+v, want position 0", detail.Images[0])
	}
	if detail.Owner == nil || detail.Owner.ID != owner {
		t.Errorf("owner = %+v, want %s", detail.Owner, owner)
	}

	missing, err := s.FindByID(ctxT(t), uuid.New())
	if err != nil {
		t.Fatalf("FindByID missing: %v", err)
	}
	if missing != nil {
		t.Errorf("missing listing returned %+v", missing)
	}
}

func TestPromoteAndFeatured(t *testing.T) {
	db := testDB(t)
	s := NewListingStore(db)

	owner := testUser(t, db)
	id := testListing(t, db, owner, nil, "Promote Me", 100)

	until := time.Now().Add(24 * time.Hour)
	promoted, err := s.Promote(ctxT(t), id, until)
	if err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if promoted == nil || !promoted.IsFeatured {
		t.Fatalf("promoted = %+v, want featured", promoted)
	}

	cards, err := s.Featured(ctxT(t), 10)
	if err != nil {
		t.Fatalf("Featured: %v", err)
	}
	found := false
	for _, c := range cards {
		if c.ID == id {
			found = true
		}
	}
	if !found {
		t.Error("promoted listing missing from featured rail")
	}

	// An expired promotion drops out.
	if _, err := db.Exec(`UPDATE listings SET featured_until = NOW() - INTERVAL '1 hour' WHERE id = $1`, id); err != nil {
		t.Fatalf("expire promotion: %v", err)
	}
	cards, err = s.Featured(ctxT(t), 10)
	if err != nil {
		t.Fatalf("Featured after expiry: %v", err)
	}
	for _, c := range cards {
		if c.ID == id {
			t.Error("expired promotion still featured")
		}
	}
}

func TestByOwnerStatusFilter(t *testing.T) {
	db := testDB(t)
	s := NewListingStore(db)

	owner := testUser(t, db)
	active := testListing(t, db, owner, nil, "Mine Active", 100)
	sold := testListing(t, db, owner, nil, "Mine Sold", 100)
	if err := s.UpdateStatus(ctxT(t), sold, models.StatusSold); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	all, err := s.ByOwner(ctxT(t), owner, "")
	if err != nil {
		t.Fatalf("ByOwner: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all = %d, want 2", len(all))
	}

	activeOnly, err := s.ByOwner(ctxT(t), owner, models.StatusActive)
	if err != nil {
		t.Fatalf("ByOwner active: %v", err)
	}
	if len(activeOnly) != 1 || activeOnly[0].ID != active {
		t.Errorf("active = %+v, want only the active listing", activeOnly)
	}
}
