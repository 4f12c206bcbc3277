// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"nearo/internal/models"
)

// AttributeStore reads attribute schemas and reads/writes the
// string-encoded attribute values of listings.
type AttributeStore struct {
	db *sql.DB
}

// NewAttributeStore returns a new AttributeStore.
func NewAttributeStore(db *sql.DB) *AttributeStore {
	return &AttributeStore{db: db}
}

// ListByCategory returns a category's attribute definitions ordered by
// sort_order.
func (s *AttributeStore) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Attribute, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category_id, key, type, label_en, label_vi,
		       required, filterable, sortable, unit, depends_on, sort_order, created_at
		FROM attributes
		WHERE category_id = $1
		ORDER BY sort_order
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list attributes: %w", err)
	}
	defer rows.Close()

	var items []models.Attribute
	for rows.Next() {
		var a models.Attribute
		if err := rows.Scan(
			&a.ID, &a.CategoryID, &a.Key, &a.Type, &a.LabelEN, &a.LabelVI,
			&a.Required, &a.Filterable, &a.Sortable, &a.Unit, &a.DependsOn,
			&a.SortOrder, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attribute: %w", err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// OptionsByAttributeIDs batch-fetches options for a set of attributes in a
// single query and groups them by attribute id. An empty id set
// short-circuits to an empty map without touching the database.
func (s *AttributeStore) OptionsByAttributeIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]models.AttributeOption, error) {
	grouped := make(map[uuid.UUID][]models.AttributeOption)
	if len(ids) == 0 {
		return grouped, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, attribute_id, parent_value, value, label_en, label_vi, created_at
		FROM attribute_options
		WHERE attribute_id = ANY($1::uuid[])
		ORDER BY attribute_id, value
	`, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("list attribute options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.AttributeOption
		if err := rows.Scan(
			&o.ID, &o.AttributeID, &o.ParentValue, &o.Value,
			&o.LabelEN, &o.LabelVI, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attribute option: %w", err)
		}
		grouped[o.AttributeID] = append(grouped[o.AttributeID], o)
	}
	return grouped, rows.Err()
}

// FilterKey is the id and type of a filterable attribute, resolved by key.
type FilterKey struct {
	ID   uuid.UUID
	Type models.AttributeType
}

// KeyToID returns the attribute key → id/type mapping for a category, used
// to resolve the sparse key → value maps arriving from clients.
func (s *AttributeStore) KeyToID(ctx context.Context, categoryID uuid.UUID) (map[string]FilterKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, key, type FROM attributes WHERE category_id = $1
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("attribute key map: %w", err)
	}
	defer rows.Close()

	m := make(map[string]FilterKey)
	for rows.Next() {
		var fk FilterKey
		var key string
		if err := rows.Scan(&fk.ID, &key, &fk.Type); err != nil {
			return nil, fmt.Errorf("scan attribute key: %w", err)
		}
		m[key] = fk
	}
	return m, rows.Err()
}

// ValueRow is one attribute value to persist for a listing.
type ValueRow struct {
	AttributeID uuid.UUID
	Value       string
}

// InsertValues persists attribute value rows for a listing. Values are
// never mutated in place; an edit would delete and reinsert per key.
func (s *AttributeStore) InsertValues(ctx context.Context, listingID uuid.UUID, values []ValueRow) error {
	if len(values) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attribute values tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO listing_attribute_values (listing_id, attribute_id, value)
		VALUES ($1, $2, $3)`)
	if err != nil {
		return fmt.Errorf("prepare attribute values: %w", err)
	}
	defer stmt.Close()

	for _, v := range values {
		if _, err := stmt.ExecContext(ctx, listingID, v.AttributeID, v.Value); err != nil {
			return fmt.Errorf("insert attribute value %s: %w", v.AttributeID, err)
		}
	}

	return tx.Commit()
}

// ValuesByListing returns a listing's persisted attribute values.
func (s *AttributeStore) ValuesByListing(ctx context.Context, listingID uuid.UUID) ([]models.ListingAttributeValue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, listing_id, attribute_id, value, created_at
		FROM listing_attribute_values
		WHERE listing_id = $1
	`, listingID)
	if err != nil {
		return nil, fmt.Errorf("list attribute values: %w", err)
	}
	defer rows.Close()

	var items []models.ListingAttributeValue
	for rows.Next() {
		var v models.ListingAttributeValue
		if err := rows.Scan(&v.ID, &v.ListingID, &v.AttributeID, &v.Value, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attribute value: %w", err)
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

// MatchListingIDs returns the ids of listings whose stored value for the
// given attribute equals value exactly.
func (s *AttributeStore) MatchListingIDs(ctx context.Context, attributeID uuid.UUID, value string) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT listing_id FROM listing_attribute_values
		WHERE attribute_id = $1 AND value = $2
	`, attributeID, value)
	if err != nil {
		return nil, fmt.Errorf("match attribute value: %w", err)
	}
	defer rows.Close()
	return collectIDs(rows)
}

// MatchListingIDsInRange returns the ids of listings whose stored numeric
// value for the given attribute falls within [min, max]. Bounds are
// inclusive and each is independently optional. The value column holds
// strings, so the comparison casts to numeric; number-typed attributes only
// ever store numeric text (the codec rejects anything else).
func (s *AttributeStore) MatchListingIDsInRange(ctx context.Context, attributeID uuid.UUID, min, max *float64) ([]uuid.UUID, error) {
	query := `
		SELECT listing_id FROM listing_attribute_values
		WHERE attribute_id = $1`
	args := []any{attributeID}

	if min != nil {
		args = append(args, *min)
		query += fmt.Sprintf(" AND value::numeric >= $%d", len(args))
	}
	if max != nil {
		args = append(args, *max)
		query += fmt.Sprintf(" AND value::numeric <= $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("match attribute range: %w", err)
	}
	defer rows.Close()
	return collectIDs(rows)
}

// uuidStrings renders a uuid slice as text for array parameters.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// collectIDs drains a single-column uuid result set.
func collectIDs(rows *sql.Rows) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan listing id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
