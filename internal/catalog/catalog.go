// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog serves the category forest and per-category attribute
// templates, with short-lived in-memory caching in front of the stores.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"nearo/internal/models"
)

// CategoryReader is the category store surface the service needs.
type CategoryReader interface {
	Tree(ctx context.Context) ([]models.Category, error)
	Leaves(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// AttributeReader is the attribute store surface the service needs.
type AttributeReader interface {
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Attribute, error)
	OptionsByAttributeIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]models.AttributeOption, error)
}

// ErrCategoryNotFound is returned when a template is requested for an id
// that does not exist.
var ErrCategoryNotFound = fmt.Errorf("category not found")

// Service assembles category trees and attribute templates, caching both
// for CacheTTL.
type Service struct {
	categories CategoryReader
	attributes AttributeReader
	cache      *templateCache
}

// CacheTTL is how long assembled trees and templates stay fresh.
const CacheTTL = 10 * time.Minute

// NewService returns a catalog service backed by the given stores.
func NewService(categories CategoryReader, attributes AttributeReader) *Service {
	return &Service{
		categories: categories,
		attributes: attributes,
		cache:      newTemplateCache(CacheTTL, time.Now),
	}
}

// Tree returns the full category forest, cached.
func (s *Service) Tree(ctx context.Context) ([]models.Category, error) {
	if cached, ok := s.cache.tree(); ok {
		return cached, nil
	}

	tree, err := s.categories.Tree(ctx)
	if err != nil {
		return nil, fmt.Errorf("category tree: %w", err)
	}
	s.cache.setTree(tree)
	return tree, nil
}

// LeafCategories returns the selectable leaf categories. A healthy but
// empty database falls back to the built-in default list so the create
// flow never presents an empty picker; a store error is still an error.
func (s *Service) LeafCategories(ctx context.Context) ([]models.Category, error) {
	leaves, err := s.categories.Leaves(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaf categories: %w", err)
	}
	if len(leaves) == 0 {
		slog.Warn("no categories in database, serving static fallback")
		return defaultCategories(), nil
	}
	return leaves, nil
}

// Template returns the attribute template for a leaf category, cached per
// category id. The assembly is three reads: the category row, its
// attributes ordered by sort_order, and one batched options fetch grouped
// by attribute id.
func (s *Service) Template(ctx context.Context, categoryID uuid.UUID) (*models.CategoryTemplate, error) {
	if cached, ok := s.cache.template(categoryID); ok {
		return cached, nil
	}

	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("template category: %w", err)
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	attrs, err := s.attributes.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("template attributes: %w", err)
	}

	ids := make([]uuid.UUID, len(attrs))
	for i, a := range attrs {
		ids[i] = a.ID
	}
	options, err := s.attributes.OptionsByAttributeIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("template options: %w", err)
	}

	tmpl := &models.CategoryTemplate{
		CategoryID:   category.ID,
		CategoryName: category.Name,
		CategorySlug: category.Slug,
		Attributes:   make([]models.TemplateAttribute, 0, len(attrs)),
	}
	for _, a := range attrs {
		ta := models.TemplateAttribute{
			ID:         a.ID,
			Key:        a.Key,
			Type:       a.Type,
			LabelEN:    a.LabelEN,
			LabelVI:    a.LabelVI,
			Required:   a.Required,
			Filterable: a.Filterable,
			Sortable:   a.Sortable,
			Unit:       a.Unit,
			DependsOn:  a.DependsOn,
			SortOrder:  a.SortOrder,
		}
		for _, o := range options[a.ID] {
			ta.Options = append(ta.Options, models.TemplateOption{
				Value:       o.Value,
				LabelEN:     o.LabelEN,
				LabelVI:     o.LabelVI,
				ParentValue: o.ParentValue,
			})
		}
		tmpl.Attributes = append(tmpl.Attributes, ta)
	}

	s.cache.setTemplate(categoryID, tmpl)
	return tmpl, nil
}

// Invalidate drops all cached trees and templates. Called after seeding or
// schema administration.
func (s *Service) Invalidate() {
	s.cache.clear()
}
