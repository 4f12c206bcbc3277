package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"nearo/internal/slug"
)

// seedAttribute describes one attribute schema row to seed.
type seedAttribute struct {
	key        string
	typ        string
	labelEN    string
	labelVI    string
	required   bool
	filterable bool
	unit       string
	dependsOn  string
	options    []seedOption
}

// seedOption is one enumerated option; parentValue scopes dependent options.
type seedOption struct {
	value       string
	labelEN     string
	parentValue string
}

// Seed populates the database with initial development data: a demo user,
// the default leaf categories, and attribute schemas for the two categories
// that showcase the dynamic engine (vehicles with a dependent brand→model
// cascade, phones with a plain select). No-op if categories already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	if _, err := db.Exec(`
		INSERT INTO users (name, avatar_url)
		VALUES ($1, NULL)
	`, "Demo Seller"); err != nil {
		return fmt.Errorf("seed insert demo user: %w", err)
	}

	categories := []struct {
		name string
		icon string
	}{
		{"Vehicles", "car"},
		{"Phones & Tablets", "smartphone"},
		{"Electronics", "tv"},
		{"Furniture", "armchair"},
		{"Fashion", "shirt"},
		{"Home & Garden", "flower"},
		{"Sports & Hobbies", "bike"},
		{"Books", "book"},
		{"Pets", "paw-print"},
		{"Other", "package"},
	}
	for i, c := range categories {
		if _, err := db.Exec(`
			INSERT INTO categories (name, slug, icon, sort_order)
			VALUES ($1, $2, $3, $4)
		`, c.name, slug.Generate(c.name), c.icon, i); err != nil {
			return fmt.Errorf("seed insert category %q: %w", c.name, err)
		}
	}

	if err := seedAttributes(db, "vehicles", []seedAttribute{
		{
			key: "brand", typ: "select", labelEN: "Brand", labelVI: "Hãng xe",
			required: true, filterable: true,
			options: []seedOption{
				{value: "toyota", labelEN: "Toyota"},
				{value: "honda", labelEN: "Honda"},
				{value: "ford", labelEN: "Ford"},
				{value: "hyundai", labelEN: "Hyundai"},
			},
		},
		{
			key: "model", typ: "select", labelEN: "Model", labelVI: "Dòng xe",
			filterable: true, dependsOn: "brand",
			options: []seedOption{
				{value: "corolla", labelEN: "Corolla", parentValue: "toyota"},
				{value: "camry", labelEN: "Camry", parentValue: "toyota"},
				{value: "civic", labelEN: "Civic", parentValue: "honda"},
				{value: "crv", labelEN: "CR-V", parentValue: "honda"},
				{value: "ranger", labelEN: "Ranger", parentValue: "ford"},
				{value: "accent", labelEN: "Accent", parentValue: "hyundai"},
			},
		},
		{key: "year", typ: "number", labelEN: "Year", labelVI: "Năm sản xuất", filterable: true},
		{key: "mileage", typ: "number", labelEN: "Mileage", labelVI: "Số km đã đi", unit: "km", filterable: true},
		{key: "warranty", typ: "boolean", labelEN: "Under warranty", labelVI: "Còn bảo hành", filterable: true},
	}); err != nil {
		return err
	}

	if err := seedAttributes(db, "phones-tablets", []seedAttribute{
		{
			key: "brand", typ: "select", labelEN: "Brand", labelVI: "Hãng",
			required: true, filterable: true,
			options: []seedOption{
				{value: "apple", labelEN: "Apple"},
				{value: "samsung", labelEN: "Samsung"},
				{value: "xiaomi", labelEN: "Xiaomi"},
				{value: "oppo", labelEN: "Oppo"},
			},
		},
		{
			key: "storage", typ: "select", labelEN: "Storage", labelVI: "Bộ nhớ",
			filterable: true,
			options: []seedOption{
				{value: "64", labelEN: "64 GB"},
				{value: "128", labelEN: "128 GB"},
				{value: "256", labelEN: "256 GB"},
				{value: "512", labelEN: "512 GB"},
			},
		},
		{key: "battery_health", typ: "number", labelEN: "Battery health", labelVI: "Pin", unit: "%"},
		{key: "accessories", typ: "text", labelEN: "Included accessories", labelVI: "Phụ kiện kèm theo"},
	}); err != nil {
		return err
	}

	slog.Info("database seeded",
		"categories", len(categories),
		"schemas", []string{"vehicles", "phones-tablets"},
	)
	return nil
}

// seedAttributes inserts attribute rows (and their options) for the
// category with the given slug.
func seedAttributes(db *sql.DB, categorySlug string, attrs []seedAttribute) error {
	var categoryID string
	err := db.QueryRow(`SELECT id FROM categories WHERE slug = $1`, categorySlug).Scan(&categoryID)
	if err != nil {
		return fmt.Errorf("seed find category %q: %w", categorySlug, err)
	}

	for i, a := range attrs {
		var attrID string
		err := db.QueryRow(`
			INSERT INTO attributes
				(category_id, key, type, label_en, label_vi, required, filterable, unit, depends_on, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10)
			RETURNING id
		`, categoryID, a.key, a.typ, a.labelEN, a.labelVI, a.required, a.filterable,
			a.unit, a.dependsOn, i,
		).Scan(&attrID)
		if err != nil {
			return fmt.Errorf("seed insert attribute %s.%s: %w", categorySlug, a.key, err)
		}

		for _, o := range a.options {
			if _, err := db.Exec(`
				INSERT INTO attribute_options (attribute_id, parent_value, value, label_en)
				VALUES ($1, NULLIF($2, ''), $3, $4)
			`, attrID, o.parentValue, o.value, o.labelEN); err != nil {
				return fmt.Errorf("seed insert option %s.%s=%s: %w", categorySlug, a.key, o.value, err)
			}
		}
	}
	return nil
}
