// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package search compiles listing searches in two stages: a concurrent
// attribute pre-filter that intersects per-attribute listing-id sets, and
// the fixed-filter SQL query fed with the surviving candidate ids.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"nearo/internal/geo"
	"nearo/internal/models"
	"nearo/internal/store"
)

// PageSize is the fixed cursor page size. A full page means hasMore.
const PageSize = 20

// AttributeMatcher resolves attribute filters into listing-id sets.
type AttributeMatcher interface {
	KeyToID(ctx context.Context, categoryID uuid.UUID) (map[string]store.FilterKey, error)
	MatchListingIDs(ctx context.Context, attributeID uuid.UUID, value string) ([]uuid.UUID, error)
	MatchListingIDsInRange(ctx context.Context, attributeID uuid.UUID, min, max *float64) ([]uuid.UUID, error)
}

// ListingSearcher runs the fixed-filter listing query.
type ListingSearcher interface {
	Search(ctx context.Context, p store.SearchParams) ([]models.ListingCard, error)
}

// Service is the two-stage search compiler.
type Service struct {
	attributes AttributeMatcher
	listings   ListingSearcher
}

// NewService returns a search service over the given matcher and searcher.
func NewService(attributes AttributeMatcher, listings ListingSearcher) *Service {
	return &Service{attributes: attributes, listings: listings}
}

// errNoMatches cancels the remaining filter queries once any filter is
// known to match nothing; the whole search result is empty regardless.
var errNoMatches = errors.New("attribute filter matched no listings")

// Search executes a full search: attribute pre-filter (when attribute
// filters and a category id are present), then the fixed-filter query,
// then distance annotation and the page-local nearest/farthest re-sort.
func (s *Service) Search(ctx context.Context, query string, filters models.ListingFilters, cursor *time.Time) (*models.CardPage, error) {
	candidates, matched, err := s.resolveAttributeFilters(ctx, filters)
	if err != nil {
		return nil, err
	}
	if matched && len(candidates) == 0 {
		// Zero-intersection short-circuit: the listings query never runs.
		return &models.CardPage{Items: []models.ListingCard{}}, nil
	}

	distanceSort := filters.SortBy == models.SortNearest || filters.SortBy == models.SortFarthest
	hasOrigin := filters.LocationLat != nil && filters.LocationLng != nil

	params := store.SearchParams{
		Query:         query,
		Filters:       filters,
		Cursor:        cursor,
		Limit:         PageSize,
		IncludeCoords: hasOrigin,
	}
	if matched {
		params.CandidateIDs = candidates
	}

	items, err := s.listings.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("listing search: %w", err)
	}

	if hasOrigin {
		annotateDistances(items, *filters.LocationLat, *filters.LocationLng)
		if distanceSort {
			sortByDistance(items, filters.SortBy == models.SortFarthest)
		}
	}

	page := &models.CardPage{Items: items, HasMore: len(items) == PageSize}
	if len(items) > 0 {
		// The cursor tracks creation time even after a distance re-sort,
		// so the next page continues the underlying created_at walk.
		oldest := items[0].CreatedAt
		for _, it := range items[1:] {
			if it.CreatedAt.Before(oldest) {
				oldest = it.CreatedAt
			}
		}
		page.Cursor = &oldest
	}
	return page, nil
}

// resolveAttributeFilters fans the attribute filters out as concurrent
// queries and intersects their id sets in filter order, so the result is
// deterministic regardless of completion order. matched is false when
// there was nothing to resolve (no filters, or no category to scope them).
func (s *Service) resolveAttributeFilters(ctx context.Context, filters models.ListingFilters) (ids []uuid.UUID, matched bool, err error) {
	if len(filters.AttributeFilters) == 0 || filters.CategoryID == nil {
		return nil, false, nil
	}

	keyToID, err := s.attributes.KeyToID(ctx, *filters.CategoryID)
	if err != nil {
		return nil, false, fmt.Errorf("resolve attribute keys: %w", err)
	}

	type boundFilter struct {
		attributeID uuid.UUID
		filter      models.AttributeFilter
	}
	var bound []boundFilter
	for key, f := range filters.AttributeFilters {
		if f.IsEmpty() {
			continue
		}
		attr, known := keyToID[key]
		if !known {
			// Stale keys left over from another category's filter panel
			// are ignored; the remaining filters still apply.
			continue
		}
		if f.IsRange() && attr.Type != models.AttributeNumber {
			// Range matching casts the stored value to numeric; only
			// number attributes hold plain numeric text.
			continue
		}
		bound = append(bound, boundFilter{attributeID: attr.ID, filter: f})
	}
	if len(bound) == 0 {
		return nil, false, nil
	}
	// Map iteration order is random; fix it so the intersection walk is
	// reproducible.
	sort.Slice(bound, func(i, j int) bool {
		return bound[i].attributeID.String() < bound[j].attributeID.String()
	})

	results := make([][]uuid.UUID, len(bound))
	g, gctx := errgroup.WithContext(ctx)
	for i, bf := range bound {
		g.Go(func() error {
			var (
				set []uuid.UUID
				err error
			)
			if bf.filter.IsRange() {
				set, err = s.attributes.MatchListingIDsInRange(gctx, bf.attributeID, bf.filter.Min, bf.filter.Max)
			} else {
				set, err = s.attributes.MatchListingIDs(gctx, bf.attributeID, bf.filter.Value)
			}
			if err != nil {
				return err
			}
			if len(set) == 0 {
				return errNoMatches
			}
			results[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, errNoMatches) {
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("attribute filter query: %w", err)
	}

	current := results[0]
	for _, next := range results[1:] {
		current = intersect(current, next)
		if len(current) == 0 {
			return nil, true, nil
		}
	}
	return current, true, nil
}

// intersect keeps the ids of a that also occur in b, preserving a's order.
func intersect(a, b []uuid.UUID) []uuid.UUID {
	inB := make(map[uuid.UUID]struct{}, len(b))
	for _, id := range b {
		inB[id] = struct{}{}
	}
	var out []uuid.UUID
	for _, id := range a {
		if _, ok := inB[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// annotateDistances computes the haversine distance from the origin for
// every card that carries coordinates.
func annotateDistances(items []models.ListingCard, lat, lng float64) {
	for i := range items {
		if items[i].LocationLat == nil || items[i].LocationLng == nil {
			continue
		}
		d := geo.HaversineKm(lat, lng, *items[i].LocationLat, *items[i].LocationLng)
		items[i].DistanceKm = &d
	}
}

// sortByDistance re-sorts the current page by computed distance. Cards
// without a distance sink to the end in both directions. The sort is
// stable, so equal distances keep their created_at order.
func sortByDistance(items []models.ListingCard, farthest bool) {
	sort.SliceStable(items, func(i, j int) bool {
		di, dj := items[i].DistanceKm, items[j].DistanceKm
		if di == nil {
			return false
		}
		if dj == nil {
			return true
		}
		if farthest {
			return *di > *dj
		}
		return *di < *dj
	})
}
