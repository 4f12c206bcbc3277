// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"nearo/internal/geo"
	"nearo/internal/models"
)

// ListingStore handles all listing-related database operations.
type ListingStore struct {
	db *sql.DB
}

// NewListingStore creates a new ListingStore with the given database connection.
func NewListingStore(db *sql.DB) *ListingStore {
	return &ListingStore{db: db}
}

const listingColumns = `id, owner_id, title, description, price, category, category_id,
	condition, negotiable, location_lat, location_lng, location_name,
	is_featured, featured_until, status, created_at, updated_at`

// scanListing scans a full listing row.
func scanListing(scanner interface{ Scan(...any) error }) (*models.Listing, error) {
	var l models.Listing
	err := scanner.Scan(
		&l.ID, &l.OwnerID, &l.Title, &l.Description, &l.Price, &l.Category,
		&l.CategoryID, &l.Condition, &l.Negotiable, &l.LocationLat, &l.LocationLng,
		&l.LocationName, &l.IsFeatured, &l.FeaturedUntil, &l.Status,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// SearchParams is the fixed-filter portion of a compiled search query.
// CandidateIDs, when non-nil, restricts the result to the listing-id set
// produced by the attribute pre-filter.
type SearchParams struct {
	Query        string
	Filters      models.ListingFilters
	CandidateIDs []uuid.UUID
	Cursor       *time.Time
	Limit        int

	// IncludeCoords requests the stored coordinates on each card so the
	// caller can compute distances for a nearest/farthest re-sort.
	IncludeCoords bool
}

// Search runs the fixed-filter listing query: active listings narrowed by
// candidate ids, free text, category, price, condition, negotiable, and a
// bounding-box pre-filter, with server-side ordering and cursor pagination
// on created_at. Each card carries its first image by position.
func (s *ListingStore) Search(ctx context.Context, p SearchParams) ([]models.ListingCard, error) {
	cols := `l.id, l.title, l.price, l.location_name, l.is_featured, l.created_at, img.url`
	if p.IncludeCoords {
		cols += `, l.location_lat, l.location_lng`
	}

	var sb strings.Builder
	var args []any
	sb.WriteString(`
		SELECT ` + cols + `
		FROM listings l
		LEFT JOIN LATERAL (
			SELECT url FROM listing_images
			WHERE listing_id = l.id
			ORDER BY position
			LIMIT 1
		) img ON TRUE
		WHERE l.status = 'active'`)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p.CandidateIDs != nil {
		sb.WriteString(" AND l.id = ANY(" + arg(uuidStrings(p.CandidateIDs)) + "::uuid[])")
	}
	if q := strings.TrimSpace(p.Query); q != "" {
		ph := arg("%" + q + "%")
		sb.WriteString(" AND (l.title ILIKE " + ph + " OR l.description ILIKE " + ph + ")")
	}

	f := p.Filters
	switch {
	case f.CategoryID != nil:
		sb.WriteString(" AND l.category_id = " + arg(*f.CategoryID))
	case f.Category != "":
		// Legacy slug match, used only when no category id is given.
		sb.WriteString(" AND l.category = " + arg(f.Category))
	}
	if f.MinPrice != nil {
		sb.WriteString(" AND l.price >= " + arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		sb.WriteString(" AND l.price <= " + arg(*f.MaxPrice))
	}
	if f.Condition != "" {
		sb.WriteString(" AND l.condition = " + arg(string(f.Condition)))
	}
	if f.Negotiable {
		sb.WriteString(" AND l.negotiable = TRUE")
	}
	if f.LocationLat != nil && f.LocationLng != nil && f.RadiusKm != nil {
		box := geo.NewBoundingBox(*f.LocationLat, *f.LocationLng, *f.RadiusKm)
		sb.WriteString(" AND l.location_lat >= " + arg(box.MinLat))
		sb.WriteString(" AND l.location_lat <= " + arg(box.MaxLat))
		sb.WriteString(" AND l.location_lng >= " + arg(box.MinLng))
		sb.WriteString(" AND l.location_lng <= " + arg(box.MaxLng))
	}
	if p.Cursor != nil {
		sb.WriteString(" AND l.created_at < " + arg(*p.Cursor))
	}

	// Price sorts are pushed down; everything else (including the
	// nearest/farthest distance sorts, which re-rank client-side) paginates
	// on creation time descending.
	switch f.SortBy {
	case models.SortPriceAsc:
		sb.WriteString(" ORDER BY l.price ASC, l.created_at DESC")
	case models.SortPriceDesc:
		sb.WriteString(" ORDER BY l.price DESC, l.created_at DESC")
	default:
		sb.WriteString(" ORDER BY l.created_at DESC")
	}

	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	sb.WriteString(" LIMIT " + arg(limit))

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}
	defer rows.Close()

	return scanCards(rows, p.IncludeCoords)
}

// scanCards drains card rows, optionally with trailing coordinate columns.
func scanCards(rows *sql.Rows, withCoords bool) ([]models.ListingCard, error) {
	var items []models.ListingCard
	for rows.Next() {
		var c models.ListingCard
		dest := []any{&c.ID, &c.Title, &c.Price, &c.LocationName, &c.IsFeatured, &c.CreatedAt, &c.ImageURL}
		if withCoords {
			dest = append(dest, &c.LocationLat, &c.LocationLng)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan listing card: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Featured returns active listings whose featured flag has not expired,
// newest first.
func (s *ListingStore) Featured(ctx context.Context, limit int) ([]models.ListingCard, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.title, l.price, l.location_name, l.is_featured, l.created_at, img.url
		FROM listings l
		LEFT JOIN LATERAL (
			SELECT url FROM listing_images
			WHERE listing_id = l.id
			ORDER BY position
			LIMIT 1
		) img ON TRUE
		WHERE l.status = 'active' AND l.is_featured AND l.featured_until > NOW()
		ORDER BY l.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("featured listings: %w", err)
	}
	defer rows.Close()

	return scanCards(rows, false)
}

// ByOwner returns a user's listings newest first, optionally restricted to
// one status.
func (s *ListingStore) ByOwner(ctx context.Context, ownerID uuid.UUID, status models.ListingStatus) ([]models.ListingCard, error) {
	query := `
		SELECT l.id, l.title, l.price, l.location_name, l.is_featured, l.created_at, img.url
		FROM listings l
		LEFT JOIN LATERAL (
			SELECT url FROM listing_images
			WHERE listing_id = l.id
			ORDER BY position
			LIMIT 1
		) img ON TRUE
		WHERE l.owner_id = $1`
	args := []any{ownerID}
	if status != "" {
		args = append(args, string(status))
		query += fmt.Sprintf(" AND l.status = $%d", len(args))
	}
	query += " ORDER BY l.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listings by owner: %w", err)
	}
	defer rows.Close()

	return scanCards(rows, false)
}

// Create inserts a new listing and returns it with generated fields.
func (s *ListingStore) Create(ctx context.Context, l *models.Listing) (*models.Listing, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO listings (owner_id, title, description, price, category, category_id,
		                      condition, negotiable, location_lat, location_lng, location_name, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+listingColumns,
		l.OwnerID, l.Title, l.Description, l.Price, l.Category, l.CategoryID,
		l.Condition, l.Negotiable, l.LocationLat, l.LocationLng, l.LocationName,
		models.StatusActive,
	)
	result, err := scanListing(row)
	if err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	return result, nil
}

// FindByID retrieves a listing with its images (ordered by position) and
// owner preview. Returns nil if not found.
func (s *ListingStore) FindByID(ctx context.Context, id uuid.UUID) (*models.ListingDetail, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	l, err := scanListing(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find listing by id: %w", err)
	}

	detail := &models.ListingDetail{Listing: *l}

	imgRows, err := s.db.QueryContext(ctx, `
		SELECT id, listing_id, url, position, created_at
		FROM listing_images
		WHERE listing_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	defer imgRows.Close()
	for imgRows.Next() {
		var img models.ListingImage
		if err := imgRows.Scan(&img.ID, &img.ListingID, &img.URL, &img.Position, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan listing image: %w", err)
		}
		detail.Images = append(detail.Images, img)
	}
	if err := imgRows.Err(); err != nil {
		return nil, err
	}

	var owner models.UserPreview
	err = s.db.QueryRowContext(ctx, `
		SELECT id, name, avatar_url, rating_average, rating_count, created_at
		FROM users WHERE id = $1
	`, l.OwnerID).Scan(
		&owner.ID, &owner.Name, &owner.AvatarURL,
		&owner.RatingAverage, &owner.RatingCount, &owner.CreatedAt,
	)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("listing owner: %w", err)
	}
	if err == nil {
		detail.Owner = &owner
	}

	return detail, nil
}

// Update modifies the mutable fields of an existing listing.
func (s *ListingStore) Update(ctx context.Context, l *models.Listing) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE listings SET
			title = $1, description = $2, price = $3, condition = $4,
			negotiable = $5, location_lat = $6, location_lng = $7,
			location_name = $8, updated_at = NOW()
		WHERE id = $9
	`, l.Title, l.Description, l.Price, l.Condition,
		l.Negotiable, l.LocationLat, l.LocationLng, l.LocationName, l.ID,
	)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	return nil
}

// UpdateStatus sets a listing's lifecycle status. Deletes are soft:
// status becomes "removed" and the row stays.
func (s *ListingStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ListingStatus) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE listings SET status = $1, updated_at = NOW() WHERE id = $2
	`, string(status), id)
	if err != nil {
		return fmt.Errorf("update listing status: %w", err)
	}
	return nil
}

// Promote marks a listing featured until the given time and returns the
// updated row.
func (s *ListingStore) Promote(ctx context.Context, id uuid.UUID, until time.Time) (*models.Listing, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE listings SET is_featured = TRUE, featured_until = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+listingColumns, until, id)
	l, err := scanListing(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("promote listing: %w", err)
	}
	return l, nil
}

// InsertImage stores one image row for a listing.
func (s *ListingStore) InsertImage(ctx context.Context, listingID uuid.UUID, url string, position int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO listing_images (listing_id, url, position)
		VALUES ($1, $2, $3)
	`, listingID, url, position)
	if err != nil {
		return fmt.Errorf("insert listing image: %w", err)
	}
	return nil
}
