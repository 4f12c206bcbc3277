// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ListingCondition describes whether a listed item is new or used.
type ListingCondition string

const (
	ConditionNew  ListingCondition = "new"
	ConditionUsed ListingCondition = "used"
)

// ListingStatus is the lifecycle state of a listing. Deletes are soft:
// a removed listing keeps its row with status "removed".
type ListingStatus string

const (
	StatusActive  ListingStatus = "active"
	StatusSold    ListingStatus = "sold"
	StatusRemoved ListingStatus = "removed"
)

// Listing is a marketplace listing row.
type Listing struct {
	ID            uuid.UUID        `json:"id"`
	OwnerID       uuid.UUID        `json:"owner_id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Price         int64            `json:"price"`
	Category      string           `json:"category"`
	CategoryID    *uuid.UUID       `json:"category_id"`
	Condition     ListingCondition `json:"condition"`
	Negotiable    bool             `json:"negotiable"`
	LocationLat   *float64         `json:"location_lat"`
	LocationLng   *float64         `json:"location_lng"`
	LocationName  *string          `json:"location_name"`
	IsFeatured    bool             `json:"is_featured"`
	FeaturedUntil *time.Time       `json:"featured_until"`
	Status        ListingStatus    `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ListingImage is one image of a listing, ordered by Position.
type ListingImage struct {
	ID        uuid.UUID `json:"id"`
	ListingID uuid.UUID `json:"listing_id"`
	URL       string    `json:"url"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// UserPreview is the owner projection embedded in a listing detail.
type UserPreview struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	AvatarURL     *string   `json:"avatar_url"`
	RatingAverage float64   `json:"rating_average"`
	RatingCount   int       `json:"rating_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListingDetail is a listing with its images and owner preview.
type ListingDetail struct {
	Listing
	Images []ListingImage `json:"images"`
	Owner  *UserPreview   `json:"owner"`
}

// ListingCard is the feed/search projection of a listing. DistanceKm is
// attached when the caller's coordinates are known.
type ListingCard struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Price        int64     `json:"price"`
	LocationName *string   `json:"location_name"`
	IsFeatured   bool      `json:"is_featured"`
	ImageURL     *string   `json:"image_url"`
	CreatedAt    time.Time `json:"created_at"`
	DistanceKm   *float64  `json:"distance_km,omitempty"`

	// Raw coordinates fetched only when a distance sort is requested.
	// Never serialized; they exist for the post-fetch distance computation.
	LocationLat *float64 `json:"-"`
	LocationLng *float64 `json:"-"`
}

// CardPage is one cursor page of listing cards. Cursor is the oldest
// created_at in the page, so it keeps walking creation time even after a
// distance re-sort; a full page means "assume more".
type CardPage struct {
	Items   []ListingCard `json:"items"`
	Cursor  *time.Time    `json:"cursor"`
	HasMore bool          `json:"has_more"`
}

// SortBy enumerates search result orderings. Price sorts are pushed to the
// store; nearest/farthest are a page-local re-sort by computed distance.
type SortBy string

const (
	SortNewest    SortBy = "newest"
	SortPriceAsc  SortBy = "price_asc"
	SortPriceDesc SortBy = "price_desc"
	SortNearest   SortBy = "nearest"
	SortFarthest  SortBy = "farthest"
)

// AttributeFilter is one attribute filter entry: either a scalar value or
// a numeric range with independently optional inclusive bounds.
type AttributeFilter struct {
	Value string
	Min   *float64
	Max   *float64
}

// IsRange reports whether the filter is a numeric range.
func (f AttributeFilter) IsRange() bool { return f.Min != nil || f.Max != nil }

// IsEmpty reports whether the filter carries nothing to match on.
func (f AttributeFilter) IsEmpty() bool { return f.Value == "" && !f.IsRange() }

// UnmarshalJSON accepts the wire shapes the mobile client sends: a string,
// number, or boolean scalar, or an object {"min": n, "max": n}.
func (f *AttributeFilter) UnmarshalJSON(data []byte) error {
	var obj struct {
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && (obj.Min != nil || obj.Max != nil) {
		f.Min, f.Max = obj.Min, obj.Max
		return nil
	}

	var scalar any
	if err := json.Unmarshal(data, &scalar); err != nil {
		return fmt.Errorf("attribute filter: %w", err)
	}
	switch v := scalar.(type) {
	case nil:
		// Empty filter; skipped during resolution.
	case string:
		f.Value = v
	case bool:
		f.Value = fmt.Sprintf("%t", v)
	case float64:
		f.Value = formatNumber(v)
	case map[string]any:
		// Object without min/max: nothing to match on.
	default:
		return fmt.Errorf("attribute filter: unsupported value %T", scalar)
	}
	return nil
}

// MarshalJSON mirrors UnmarshalJSON for round-tripping filters in logs
// and tests.
func (f AttributeFilter) MarshalJSON() ([]byte, error) {
	if f.IsRange() {
		return json.Marshal(struct {
			Min *float64 `json:"min,omitempty"`
			Max *float64 `json:"max,omitempty"`
		}{f.Min, f.Max})
	}
	return json.Marshal(f.Value)
}

// ListingFilters is the ephemeral query-shaping object built per search.
// CategoryID wins over the legacy Category slug when both are set.
type ListingFilters struct {
	Category         string                     `json:"category,omitempty"`
	CategoryID       *uuid.UUID                 `json:"category_id,omitempty"`
	MinPrice         *int64                     `json:"min_price,omitempty"`
	MaxPrice         *int64                     `json:"max_price,omitempty"`
	Condition        ListingCondition           `json:"condition,omitempty"`
	Negotiable       bool                       `json:"negotiable,omitempty"`
	LocationLat      *float64                   `json:"location_lat,omitempty"`
	LocationLng      *float64                   `json:"location_lng,omitempty"`
	RadiusKm         *float64                   `json:"radius_km,omitempty"`
	SortBy           SortBy                     `json:"sort_by,omitempty"`
	AttributeFilters map[string]AttributeFilter `json:"attribute_filters,omitempty"`
}

// CreateListingInput is the payload for creating a listing. AttributeValues
// is a sparse key → value map validated against the category template; the
// map values may be strings, numbers or booleans as sent by the client.
type CreateListingInput struct {
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Price        int64            `json:"price"`
	Category     string           `json:"category"`
	CategoryID   *uuid.UUID       `json:"category_id,omitempty"`
	Condition    ListingCondition `json:"condition"`
	Negotiable   bool             `json:"negotiable"`
	LocationLat  *float64         `json:"location_lat,omitempty"`
	LocationLng  *float64         `json:"location_lng,omitempty"`
	LocationName *string          `json:"location_name,omitempty"`

	AttributeValues map[string]any `json:"attribute_values,omitempty"`
}
