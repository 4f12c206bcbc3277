// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package listings implements the listing lifecycle: creation with
// template-validated attributes and image uploads, feeds, detail views,
// owner edits, soft deletion, and promotion.
package listings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"nearo/internal/cache"
	"nearo/internal/form"
	"nearo/internal/models"
	"nearo/internal/search"
	"nearo/internal/store"
)

// FeatureDuration is how long a promotion keeps a listing featured.
const FeatureDuration = 24 * time.Hour

// MaxImages caps the number of images accepted per listing.
const MaxImages = 6

var (
	// ErrNotFound is returned for unknown or removed listings.
	ErrNotFound = errors.New("listing not found")

	// ErrForbidden is returned when a caller edits a listing they do not own.
	ErrForbidden = errors.New("not the listing owner")
)

// ValidationError carries per-field messages from attribute validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	return fmt.Sprintf("invalid attribute values: %s", strings.Join(keys, ", "))
}

// TemplateProvider resolves a leaf category's attribute template.
type TemplateProvider interface {
	Template(ctx context.Context, categoryID uuid.UUID) (*models.CategoryTemplate, error)
}

// ListingRepo is the listing store surface the service needs.
type ListingRepo interface {
	Create(ctx context.Context, l *models.Listing) (*models.Listing, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ListingDetail, error)
	ByOwner(ctx context.Context, ownerID uuid.UUID, status models.ListingStatus) ([]models.ListingCard, error)
	Featured(ctx context.Context, limit int) ([]models.ListingCard, error)
	Update(ctx context.Context, l *models.Listing) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ListingStatus) error
	Promote(ctx context.Context, id uuid.UUID, until time.Time) (*models.Listing, error)
	InsertImage(ctx context.Context, listingID uuid.UUID, url string, position int) error
}

// ValueRepo persists and reads encoded attribute values.
type ValueRepo interface {
	InsertValues(ctx context.Context, listingID uuid.UUID, values []store.ValueRow) error
	ValuesByListing(ctx context.Context, listingID uuid.UUID) ([]models.ListingAttributeValue, error)
}

// Searcher runs compiled listing searches; the feeds reuse it.
type Searcher interface {
	Search(ctx context.Context, query string, filters models.ListingFilters, cursor *time.Time) (*models.CardPage, error)
}

// Uploader stores listing images. May be absent when the app runs
// without object storage.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	FileURL(key string) string
}

// CardCache caches hot card lists. May be absent when the app runs
// without Valkey.
type CardCache interface {
	Get(ctx context.Context, key string) ([]models.ListingCard, bool)
	Set(ctx context.Context, key string, cards []models.ListingCard)
	Invalidate(ctx context.Context, key string)
	InvalidateAll(ctx context.Context)
}

// Service implements the listing lifecycle.
type Service struct {
	listings  ListingRepo
	values    ValueRepo
	templates TemplateProvider
	searcher  Searcher
	uploads   Uploader
	cards     CardCache
}

// NewService wires a listings service. uploads and cards may be nil.
func NewService(listings ListingRepo, values ValueRepo, templates TemplateProvider, searcher Searcher, uploads Uploader, cards CardCache) *Service {
	return &Service{
		listings:  listings,
		values:    values,
		templates: templates,
		searcher:  searcher,
		uploads:   uploads,
		cards:     cards,
	}
}

// ImageUpload is one incoming listing image. Position follows slice order.
type ImageUpload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Create validates the input against the category template, persists the
// listing and its encoded attribute values, and uploads images
// concurrently. A failed image upload is logged and skipped; the listing
// itself is never rolled back over images.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input models.CreateListingInput, images []ImageUpload) (*models.ListingDetail, error) {
	if len(images) > MaxImages {
		images = images[:MaxImages]
	}

	listing := &models.Listing{
		OwnerID:      ownerID,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Price:        input.Price,
		Category:     input.Category,
		CategoryID:   input.CategoryID,
		Condition:    input.Condition,
		Negotiable:   input.Negotiable,
		LocationLat:  input.LocationLat,
		LocationLng:  input.LocationLng,
		LocationName: input.LocationName,
	}

	var encoded []form.EncodedValue
	if input.CategoryID != nil {
		tmpl, err := s.templates.Template(ctx, *input.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("create listing template: %w", err)
		}
		// The legacy slug column follows the chosen category.
		listing.Category = tmpl.CategorySlug

		binder := form.NewBinder(tmpl)
		binder.Bind(input.AttributeValues)
		if problems := binder.ValidateValues(); len(problems) > 0 {
			return nil, &ValidationError{Fields: problems}
		}
		encoded, err = binder.Serialize()
		if err != nil {
			return nil, fmt.Errorf("encode attribute values: %w", err)
		}
	}

	created, err := s.listings.Create(ctx, listing)
	if err != nil {
		return nil, err
	}

	if len(encoded) > 0 {
		rows := make([]store.ValueRow, len(encoded))
		for i, ev := range encoded {
			rows[i] = store.ValueRow{AttributeID: ev.AttributeID, Value: ev.Value}
		}
		if err := s.values.InsertValues(ctx, created.ID, rows); err != nil {
			return nil, fmt.Errorf("persist attribute values: %w", err)
		}
	}

	s.uploadImages(ctx, created.ID, images)

	if s.cards != nil {
		s.cards.InvalidateAll(ctx)
	}

	detail, err := s.listings.FindByID(ctx, created.ID)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// uploadImages pushes images to object storage concurrently and records
// the successful ones at their original positions. Individual failures
// are logged and swallowed.
func (s *Service) uploadImages(ctx context.Context, listingID uuid.UUID, images []ImageUpload) {
	if s.uploads == nil || len(images) == 0 {
		return
	}

	var wg sync.WaitGroup
	for i, img := range images {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ext := strings.ToLower(path.Ext(img.Name))
			if ext == "" {
				ext = ".jpg"
			}
			key := fmt.Sprintf("listings/%s/%s%s", listingID, uuid.NewString(), ext)

			if err := s.uploads.Upload(ctx, key, img.ContentType, img.Body, img.Size); err != nil {
				slog.Warn("listing image upload failed",
					"listing_id", listingID, "position", i, "error", err)
				return
			}
			if err := s.listings.InsertImage(ctx, listingID, s.uploads.FileURL(key), i); err != nil {
				slog.Warn("listing image record failed",
					"listing_id", listingID, "position", i, "error", err)
			}
		}()
	}
	wg.Wait()
}

// ListingView is a listing detail with its attribute values decoded back
// into their logical shapes, keyed by attribute key.
type ListingView struct {
	models.ListingDetail
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Get returns a listing detail with decoded attribute values. Removed
// listings read as not found.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ListingView, error) {
	detail, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail == nil || detail.Status == models.StatusRemoved {
		return nil, ErrNotFound
	}

	view := &ListingView{ListingDetail: *detail}
	if detail.CategoryID == nil {
		return view, nil
	}

	values, err := s.values.ValuesByListing(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing attribute values: %w", err)
	}
	if len(values) == 0 {
		return view, nil
	}

	tmpl, err := s.templates.Template(ctx, *detail.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("listing template: %w", err)
	}

	view.Attributes = decodeValues(tmpl, values)
	return view, nil
}

// decodeValues reassembles persisted rows into logical values: scalars
// decode by type, multiselect rows collect into a list, and range rows
// fold back into a min/max object.
func decodeValues(tmpl *models.CategoryTemplate, values []models.ListingAttributeValue) map[string]any {
	byID := make(map[uuid.UUID]*models.TemplateAttribute, len(tmpl.Attributes))
	for i := range tmpl.Attributes {
		byID[tmpl.Attributes[i].ID] = &tmpl.Attributes[i]
	}

	out := make(map[string]any)
	for _, v := range values {
		attr, known := byID[v.AttributeID]
		if !known {
			continue
		}

		switch attr.Type {
		case models.AttributeMultiselect:
			list, _ := out[attr.Key].([]string)
			out[attr.Key] = append(list, v.Value)

		case models.AttributeNumberRange:
			prefix, raw, ok := models.DecodeRangeBound(v.Value)
			if !ok {
				continue
			}
			bounds, _ := out[attr.Key].(map[string]any)
			if bounds == nil {
				bounds = make(map[string]any)
			}
			if n, err := models.DecodeAttributeValue(models.AttributeNumber, raw); err == nil {
				if prefix == models.RangeMinPrefix {
					bounds["min"] = n
				} else {
					bounds["max"] = n
				}
			}
			out[attr.Key] = bounds

		default:
			decoded, err := models.DecodeAttributeValue(attr.Type, v.Value)
			if err != nil {
				slog.Warn("undecodable attribute value",
					"attribute", attr.Key, "value", v.Value, "error", err)
				continue
			}
			out[attr.Key] = decoded
		}
	}
	return out
}

// Feed returns the recent feed page for the cursor. The first page is
// cached; deeper pages always hit the database.
func (s *Service) Feed(ctx context.Context, cursor *time.Time) (*models.CardPage, error) {
	if cursor == nil && s.cards != nil {
		if items, ok := s.cards.Get(ctx, cache.RecentKey()); ok {
			return pageFromCards(items), nil
		}
	}

	page, err := s.searcher.Search(ctx, "", models.ListingFilters{}, cursor)
	if err != nil {
		return nil, err
	}
	if cursor == nil && s.cards != nil {
		s.cards.Set(ctx, cache.RecentKey(), page.Items)
	}
	return page, nil
}

// FeaturedLimit caps the featured rail.
const FeaturedLimit = 10

// Featured returns the featured rail, cached.
func (s *Service) Featured(ctx context.Context) ([]models.ListingCard, error) {
	if s.cards != nil {
		if items, ok := s.cards.Get(ctx, cache.FeaturedKey()); ok {
			return items, nil
		}
	}

	items, err := s.listings.Featured(ctx, FeaturedLimit)
	if err != nil {
		return nil, err
	}
	if s.cards != nil {
		s.cards.Set(ctx, cache.FeaturedKey(), items)
	}
	return items, nil
}

// Nearby returns active listings around an origin, nearest first. The
// first page is cached under a rounded origin so users in the same area
// share the entry.
func (s *Service) Nearby(ctx context.Context, lat, lng, radiusKm float64, cursor *time.Time) (*models.CardPage, error) {
	if cursor == nil && s.cards != nil {
		if items, ok := s.cards.Get(ctx, cache.NearbyKey(lat, lng, radiusKm)); ok {
			return pageFromCards(items), nil
		}
	}

	page, err := s.searcher.Search(ctx, "", models.ListingFilters{
		LocationLat: &lat,
		LocationLng: &lng,
		RadiusKm:    &radiusKm,
		SortBy:      models.SortNearest,
	}, cursor)
	if err != nil {
		return nil, err
	}
	if cursor == nil && s.cards != nil {
		s.cards.Set(ctx, cache.NearbyKey(lat, lng, radiusKm), page.Items)
	}
	return page, nil
}

// ByOwner returns a user's listings, optionally restricted to one status.
func (s *Service) ByOwner(ctx context.Context, ownerID uuid.UUID, status models.ListingStatus) ([]models.ListingCard, error) {
	return s.listings.ByOwner(ctx, ownerID, status)
}

// UpdateInput holds the owner-editable listing fields.
type UpdateInput struct {
	Title        string                  `json:"title"`
	Description  string                  `json:"description"`
	Price        int64                   `json:"price"`
	Condition    models.ListingCondition `json:"condition"`
	Negotiable   bool                    `json:"negotiable"`
	LocationLat  *float64                `json:"location_lat,omitempty"`
	LocationLng  *float64                `json:"location_lng,omitempty"`
	LocationName *string                 `json:"location_name,omitempty"`
}

// Update edits a listing's base fields after an ownership check.
func (s *Service) Update(ctx context.Context, callerID, id uuid.UUID, input UpdateInput) (*models.ListingDetail, error) {
	detail, err := s.owned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	l := detail.Listing
	l.Title = strings.TrimSpace(input.Title)
	l.Description = strings.TrimSpace(input.Description)
	l.Price = input.Price
	l.Condition = input.Condition
	l.Negotiable = input.Negotiable
	l.LocationLat = input.LocationLat
	l.LocationLng = input.LocationLng
	l.LocationName = input.LocationName

	if err := s.listings.Update(ctx, &l); err != nil {
		return nil, err
	}
	if s.cards != nil {
		s.cards.InvalidateAll(ctx)
	}
	return s.listings.FindByID(ctx, id)
}

// SetStatus moves a listing between active and sold.
func (s *Service) SetStatus(ctx context.Context, callerID, id uuid.UUID, status models.ListingStatus) error {
	if status != models.StatusActive && status != models.StatusSold {
		return fmt.Errorf("status %q not settable", status)
	}
	if _, err := s.owned(ctx, callerID, id); err != nil {
		return err
	}
	if err := s.listings.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	if s.cards != nil {
		s.cards.InvalidateAll(ctx)
	}
	return nil
}

// Delete soft-deletes a listing. The row stays with status "removed".
func (s *Service) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	if _, err := s.owned(ctx, callerID, id); err != nil {
		return err
	}
	if err := s.listings.UpdateStatus(ctx, id, models.StatusRemoved); err != nil {
		return err
	}
	if s.cards != nil {
		s.cards.InvalidateAll(ctx)
	}
	return nil
}

// Promote features a listing for FeatureDuration from now.
func (s *Service) Promote(ctx context.Context, callerID, id uuid.UUID) (*models.Listing, error) {
	if _, err := s.owned(ctx, callerID, id); err != nil {
		return nil, err
	}
	promoted, err := s.listings.Promote(ctx, id, time.Now().Add(FeatureDuration))
	if err != nil {
		return nil, err
	}
	if promoted == nil {
		return nil, ErrNotFound
	}
	if s.cards != nil {
		// Promotion only reorders the featured rail; the other feeds pick
		// up the flag at their next TTL expiry.
		s.cards.Invalidate(ctx, cache.FeaturedKey())
	}
	return promoted, nil
}

// owned fetches a listing and verifies the caller owns it.
func (s *Service) owned(ctx context.Context, callerID, id uuid.UUID) (*models.ListingDetail, error) {
	detail, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail == nil || detail.Status == models.StatusRemoved {
		return nil, ErrNotFound
	}
	if detail.OwnerID != callerID {
		return nil, ErrForbidden
	}
	return detail, nil
}

// pageFromCards rebuilds a cursor page around a cached first page.
func pageFromCards(items []models.ListingCard) *models.CardPage {
	page := &models.CardPage{Items: items, HasMore: len(items) == search.PageSize}
	if len(items) > 0 {
		oldest := items[len(items)-1].CreatedAt
		page.Cursor = &oldest
	}
	return page
}
