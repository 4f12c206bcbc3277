// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category represents a node in the marketplace category forest.
// Only leaf categories (no children) may own attribute schemas or be
// assigned to listings.
type Category struct {
	ID        uuid.UUID  `json:"id"`
	ParentID  *uuid.UUID `json:"parent_id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	Icon      *string    `json:"icon"`
	SortOrder int        `json:"sort_order"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Children is populated when the category is returned as part of a tree.
	Children []Category `json:"children,omitempty"`
}

// IsLeaf reports whether this category has no children in the given flat
// list, i.e. no other category references it as parent.
func (c *Category) IsLeaf(all []Category) bool {
	for i := range all {
		if all[i].ParentID != nil && *all[i].ParentID == c.ID {
			return false
		}
	}
	return true
}
