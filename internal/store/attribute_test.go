// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"github.com/google/uuid"

	"nearo/internal/models"
)

func strPtr(s string) *string { return &s }

func TestOptionsByAttributeIDsGrouping(t *testing.T) {
	db := testDB(t)
	s := NewAttributeStore(db)

	catID := testCategory(t, db, "Attr Cat", "store-test-attr-cat", nil)
	brandID := testAttribute(t, db, catID, "brand", models.AttributeSelect, nil)
	modelID := testAttribute(t, db, catID, "model", models.AttributeSelect, strPtr("brand"))

	testOption(t, db, brandID, "toyota", nil)
	testOption(t, db, brandID, "honda", nil)
	testOption(t, db, modelID, "corolla", strPtr("toyota"))

	grouped, err := s.OptionsByAttributeIDs(ctxT(t), []uuid.UUID{brandID, modelID})
	if err != nil {
		t.Fatalf("OptionsByAttributeIDs: %v", err)
	}
	if len(grouped[brandID]) != 2 {
		t.Errorf("brand options = %d, want 2", len(grouped[brandID]))
	}
	if len(grouped[modelID]) != 1 {
		t.Fatalf("model options = %d, want 1", len(grouped[modelID]))
	}
	opt := grouped[modelID][0]
	if opt.ParentValue == nil || *opt.ParentValue != "toyota" {
		t.Errorf("model option parent = %v, want toyota", opt.ParentValue)
	}
}

func TestOptionsByAttributeIDsEmptySet(t *testing.T) {
	db := testDB(t)
	s := NewAttributeStore(db)

	grouped, err := s.OptionsByAttributeIDs(ctxT(t), nil)
	if err != nil {
		t.Fatalf("OptionsByAttributeIDs: %v", err)
	}
	if len(grouped) != 0 {
		t.Errorf("grouped = %v, want empty", grouped)
	}
}

func TestMatchListingIDsExact(t *testing.T) {
	db := testDB(t)
	s := NewAttributeStore(db)

	catID := testCategory(t, db, "Match Cat", "store-test-match-cat", nil)
	brandID := testAttribute(t, db, catID, "brand", models.AttributeSelect, nil)
	owner := testUser(t, db)

	toyota := testListing(t, db, owner, &catID, "Toyota Corolla", 100)
	honda := testListing(t, db, owner, &catID, "Honda Civic", 100)
	attachValue(t, db, toyota, brandID, "toyota")
	attachValue(t, db, honda, brandID, "honda")

	ids, err := s.MatchListingIDs(ctxT(t), brandID, "toyota")
	if err != nil {
		t.Fatalf("MatchListingIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != toyota {
		t.Errorf("ids = %v, want [%s]", ids, toyota)
	}

	none, err := s.MatchListingIDs(ctxT(t), brandID, "tesla")
	if err != nil {
		t.Fatalf("MatchListingIDs none: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("unmatched value returned %v", none)
	}
}

func TestMatchListingIDsInRangeInclusive(t *testing.T) {
	db := testDB(t)
	s := NewAttributeStore(db)

	catID := testCategory(t, db, "Range Cat", "store-test-range-cat", nil)
	yearID := testAttribute(t, db, catID, "year", models.AttributeNumber, nil)
	owner := testUser(t, db)

	years := map[string]uuid.UUID{}
	for _, y := range []string{"9", "10", "15", "20", "21"} {
		l := testListing(t, db, owner, &catID, "Car "+y, 100)
		attachValue(t, db, l, yearID, y)
		years[y] = l
	}

	min, max := 10.0, 20.0
	ids, err := s.MatchListingIDsInRange(ctxT(t), yearID, &min, &max)
	if err != nil {
		t.Fatalf("MatchListingIDsInRange: %v", err)
	}

	got := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		got[id] = true
	}
	// Bounds are inclusive: 10 and 20 match, 9 and 21 do not. The
	// comparison is numeric, so "9" must not lexically beat "10".
	for _, want := range []string{"10", "15", "20"} {
		if !got[years[want]] {
			t.Errorf("value %s missing from range match", want)
		}
	}
	for _, reject := range []string{"9", "21"} {
		if got[years[reject]] {
			t.Errorf("value %s matched outside range", reject)
		}
	}

	// Open-ended lower bound.
	ids, err = s.MatchListingIDsInRange(ctxT(t), yearID, nil, &max)
	if err != nil {
		t.Fatalf("MatchListingIDsInRange open min: %v", err)
	}
	if len(ids) != 4 {
		t.Errorf("open-min matches = %d, want 4", len(ids))
	}
}

func TestInsertValuesRejectsDuplicates(t *testing.T) {
	db := testDB(t)
	s := NewAttributeStore(db)

	catID := testCategory(t, db, "Dup Cat", "store-test-dup-cat", nil)
	extrasID := testAttribute(t, db, catID, "extras", models.AttributeMultiselect, nil)
	owner := testUser(t, db)
	listing := testListing(t, db, owner, &catID, "Dup Listing", 100)

	// Distinct values on one attribute are allowed (multiselect rows).
	err := s.InsertValues(ctxT(t), listing, []ValueRow{
		{AttributeID: extrasID, Value: "sunroof"},
		{AttributeID: extrasID, Value: "towbar"},
	})
	if err != nil {
		t.Fatalf("InsertValues: %v", err)
	}

	// The same value twice violates the uniqueness constraint.
	err = s.InsertValues(ctxT(t), listing, []ValueRow{
		{AttributeID: extrasID, Value: "sunroof"},
	})
	if err == nil {
		t.Error("duplicate value row inserted without error")
	}

	values, err := s.ValuesByListing(ctxT(t), listing)
	if err != nil {
		t.Fatalf("ValuesByListing: %v", err)
	}
	if len(values) != 2 {
		t.Errorf("stored values = %d, want 2", len(values))
	}
}

func TestKeyToID(t *testing.T) {
	db := testDB(t)
	s := NewAttributeStore(db)

	catID := testCategory(t, db, "Key Cat", "store-test-key-cat", nil)
	brandID := testAttribute(t, db, catID, "brand", models.AttributeSelect, nil)
	yearID := testAttribute(t, db, catID, "year", models.AttributeNumber, nil)

	m, err := s.KeyToID(ctxT(t), catID)
	if err != nil {
		t.Fatalf("KeyToID: %v", err)
	}
	if m["brand"].ID != brandID || m["year"].ID != yearID {
		t.Errorf("map = %v", m)
	}
	if m["brand"].Type != models.AttributeSelect || m["year"].Type != models.AttributeNumber {
		t.Errorf("types = %v, %v", m["brand"].Type, m["year"].Type)
	}
}
