// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// AttributeType is the logical type of a category attribute. Values are
// stored string-encoded regardless of type; see EncodeAttributeValue.
type AttributeType string

const (
	AttributeSelect      AttributeType = "select"
	AttributeMultiselect AttributeType = "multiselect"
	AttributeNumber      AttributeType = "number"
	AttributeNumberRange AttributeType = "number_range"
	AttributeBoolean     AttributeType = "boolean"
	AttributeText        AttributeType = "text"
	AttributeLocation    AttributeType = "location"
)

// Attribute is a schema-driven attribute definition owned by a leaf category.
// DependsOn, when set, names another attribute of the same category whose
// current value scopes this attribute's valid options.
type Attribute struct {
	ID         uuid.UUID     `json:"id"`
	CategoryID uuid.UUID     `json:"category_id"`
	Key        string        `json:"key"`
	Type       AttributeType `json:"type"`
	LabelEN    *string       `json:"label_en"`
	LabelVI    *string       `json:"label_vi"`
	Required   bool          `json:"required"`
	Filterable bool          `json:"filterable"`
	Sortable   bool          `json:"sortable"`
	Unit       *string       `json:"unit"`
	DependsOn  *string       `json:"depends_on"`
	SortOrder  int           `json:"sort_order"`
	CreatedAt  time.Time     `json:"created_at"`
}

// AttributeOption is one enumerated option of a select-like attribute.
// For options of a dependent attribute, ParentValue is the parent
// attribute's value under which this option is valid.
type AttributeOption struct {
	ID          uuid.UUID `json:"id"`
	AttributeID uuid.UUID `json:"attribute_id"`
	ParentValue *string   `json:"parent_value"`
	Value       string    `json:"value"`
	LabelEN     *string   `json:"label_en"`
	LabelVI     *string   `json:"label_vi"`
	CreatedAt   time.Time `json:"created_at"`
}

// TemplateOption is the denormalized option shape embedded in a template.
type TemplateOption struct {
	Value       string  `json:"value"`
	LabelEN     *string `json:"label_en"`
	LabelVI     *string `json:"label_vi"`
	ParentValue *string `json:"parent_value"`
}

// TemplateAttribute is an attribute definition with its resolved options,
// as consumed by the create-form binder and the filter panel.
type TemplateAttribute struct {
	ID         uuid.UUID        `json:"id"`
	Key        string           `json:"key"`
	Type       AttributeType    `json:"type"`
	LabelEN    *string          `json:"label_en"`
	LabelVI    *string          `json:"label_vi"`
	Required   bool             `json:"required"`
	Filterable bool             `json:"filterable"`
	Sortable   bool             `json:"sortable"`
	Unit       *string          `json:"unit"`
	DependsOn  *string          `json:"depends_on"`
	SortOrder  int              `json:"sort_order"`
	Options    []TemplateOption `json:"options"`
}

// Label returns the display label for the given locale ("en" or "vi"),
// falling back to the attribute key when no label is set.
func (a *TemplateAttribute) Label(locale string) string {
	label := a.LabelEN
	if locale == "vi" {
		label = a.LabelVI
	}
	if label != nil && *label != "" {
		return *label
	}
	return a.Key
}

// CategoryTemplate is the read-optimized projection of a leaf category's
// attribute schema: the category identity plus its ordered attributes with
// fully resolved options. This is the unit cached by the catalog service.
type CategoryTemplate struct {
	CategoryID   uuid.UUID           `json:"category_id"`
	CategoryName string              `json:"category_name"`
	CategorySlug string              `json:"category_slug"`
	Attributes   []TemplateAttribute `json:"attributes"`
}

// Attribute returns the template attribute with the given key, or nil.
func (t *CategoryTemplate) Attribute(key string) *TemplateAttribute {
	for i := range t.Attributes {
		if t.Attributes[i].Key == key {
			return &t.Attributes[i]
		}
	}
	return nil
}

// ListingAttributeValue is one persisted attribute value of a listing.
// The value column is string-encoded regardless of the logical type.
type ListingAttributeValue struct {
	ID          uuid.UUID `json:"id"`
	ListingID   uuid.UUID `json:"listing_id"`
	AttributeID uuid.UUID `json:"attribute_id"`
	Value       string    `json:"value"`
	CreatedAt   time.Time `json:"created_at"`
}
