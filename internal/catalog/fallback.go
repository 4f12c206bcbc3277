// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import "nearo/internal/models"

// defaultCategories is the static leaf list served when the database has
// no categories at all. Zero-value ids signal "not persisted"; clients can
// still browse, but templates and attribute filters need real rows.
func defaultCategories() []models.Category {
	names := []struct {
		name string
		slug string
		icon string
	}{
		{"Vehicles", "vehicles", "car"},
		{"Phones & Tablets", "phones-tablets", "smartphone"},
		{"Electronics", "electronics", "tv"},
		{"Furniture", "furniture", "armchair"},
		{"Fashion", "fashion", "shirt"},
		{"Home & Garden", "home-garden", "flower"},
		{"Sports & Hobbies", "sports-hobbies", "bike"},
		{"Books", "books", "book"},
		{"Pets", "pets", "paw-print"},
		{"Other", "other", "package"},
	}

	out := make([]models.Category, len(names))
	for i, n := range names {
		icon := n.icon
		out[i] = models.Category{
			Name:      n.name,
			Slug:      n.slug,
			Icon:      &icon,
			SortOrder: i,
		}
	}
	return out
}
