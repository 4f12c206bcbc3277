// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package form binds a sparse key → value map against a category's
// attribute template: conditional visibility, dependent option scoping,
// validation, and serialization into persistable rows.
package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"nearo/internal/models"
)

// EncodedValue is one persistable attribute value row produced by
// Serialize. A multiselect yields one row per selected token; a range
// yields a "min:"-prefixed and a "max:"-prefixed row.
type EncodedValue struct {
	AttributeID uuid.UUID
	Key         string
	Value       string
}

// Binder holds a template and the current sparse values for it. Values are
// stored raw (as the client sent them) and only encoded on Serialize.
type Binder struct {
	tmpl   *models.CategoryTemplate
	values map[string]any
}

// NewBinder returns a binder for the given template with no values set.
func NewBinder(tmpl *models.CategoryTemplate) *Binder {
	return &Binder{tmpl: tmpl, values: make(map[string]any)}
}

// Bind replaces all values at once, dropping keys the template does not
// know. Dependent-clearing does not apply; the map is taken as the full
// intended state.
func (b *Binder) Bind(values map[string]any) {
	b.values = make(map[string]any, len(values))
	for key, v := range values {
		if b.tmpl.Attribute(key) != nil {
			b.values[key] = v
		}
	}
}

// SetValue sets one value and clears the values of any attributes that
// depend on the changed key, transitively, so a brand change never leaves
// a stale model behind.
func (b *Binder) SetValue(key string, value any) {
	if b.tmpl.Attribute(key) == nil {
		return
	}
	b.values[key] = value
	b.clearDependents(key)
}

func (b *Binder) clearDependents(parentKey string) {
	for _, a := range b.tmpl.Attributes {
		if a.DependsOn != nil && *a.DependsOn == parentKey {
			if _, set := b.values[a.Key]; set {
				delete(b.values, a.Key)
				b.clearDependents(a.Key)
			}
		}
	}
}

// Value returns the current raw value for a key, if set.
func (b *Binder) Value(key string) (any, bool) {
	v, ok := b.values[key]
	return v, ok
}

// Visible reports whether an attribute should be shown: either it has no
// dependency, or its parent attribute currently holds a non-empty value.
func (b *Binder) Visible(key string) bool {
	a := b.tmpl.Attribute(key)
	if a == nil {
		return false
	}
	if a.DependsOn == nil {
		return true
	}
	return b.stringValue(*a.DependsOn) != ""
}

// VisibleOptions returns the options valid for an attribute right now.
// For a dependent attribute the list is scoped to options whose
// parent_value matches the parent's current value, and is empty while the
// parent is unset. Options without a parent_value on a dependent attribute
// are valid under any parent.
func (b *Binder) VisibleOptions(key string) []models.TemplateOption {
	a := b.tmpl.Attribute(key)
	if a == nil {
		return nil
	}
	if a.DependsOn == nil {
		return a.Options
	}

	parent := b.stringValue(*a.DependsOn)
	if parent == "" {
		return nil
	}
	var out []models.TemplateOption
	for _, o := range a.Options {
		if o.ParentValue == nil || *o.ParentValue == parent {
			out = append(out, o)
		}
	}
	return out
}

// ValidateValues checks the current values against the template and
// returns a key → message map, empty when everything passes. Hidden
// attributes are not validated; a required attribute only counts when it
// is visible.
func (b *Binder) ValidateValues() map[string]string {
	problems := make(map[string]string)

	for _, a := range b.tmpl.Attributes {
		if !b.Visible(a.Key) {
			continue
		}
		raw, set := b.values[a.Key]
		if !set || isEmptyValue(raw) {
			if a.Required {
				problems[a.Key] = fmt.Sprintf("%s is required", a.Label("en"))
			}
			continue
		}
		if msg := b.validateOne(&a, raw); msg != "" {
			problems[a.Key] = msg
		}
	}
	return problems
}

func (b *Binder) validateOne(a *models.TemplateAttribute, raw any) string {
	switch a.Type {
	case models.AttributeSelect:
		s, ok := raw.(string)
		if !ok {
			return "must be a string"
		}
		if !b.optionValid(a.Key, s) {
			return fmt.Sprintf("%q is not a valid option", s)
		}

	case models.AttributeMultiselect:
		tokens, err := multiselectTokens(raw)
		if err != nil {
			return err.Error()
		}
		for _, tok := range tokens {
			if !b.optionValid(a.Key, tok) {
				return fmt.Sprintf("%q is not a valid option", tok)
			}
		}

	case models.AttributeNumber:
		if _, err := models.EncodeAttributeValue(a.Type, raw); err != nil {
			return "must be a number"
		}

	case models.AttributeNumberRange:
		min, max, err := rangeBounds(raw)
		if err != nil {
			return err.Error()
		}
		if min != nil && max != nil && *min > *max {
			return "min must not exceed max"
		}

	case models.AttributeBoolean:
		if _, err := models.EncodeAttributeValue(a.Type, raw); err != nil {
			return "must be true or false"
		}
	}
	return ""
}

// optionValid reports whether value is among the attribute's currently
// visible options. Attributes with no options at all accept any value.
func (b *Binder) optionValid(key, value string) bool {
	a := b.tmpl.Attribute(key)
	if a == nil || len(a.Options) == 0 {
		return true
	}
	for _, o := range b.VisibleOptions(key) {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Serialize encodes the current values into persistable rows. Hidden
// attributes, unknown keys, and empty values are skipped. A failed
// encoding is an error; validation should have run first, but the create
// path must never persist garbage.
func (b *Binder) Serialize() ([]EncodedValue, error) {
	var out []EncodedValue

	for _, a := range b.tmpl.Attributes {
		raw, set := b.values[a.Key]
		if !set || isEmptyValue(raw) || !b.Visible(a.Key) {
			continue
		}

		switch a.Type {
		case models.AttributeMultiselect:
			tokens, err := multiselectTokens(raw)
			if err != nil {
				return nil, fmt.Errorf("serialize %s: %w", a.Key, err)
			}
			for _, tok := range tokens {
				out = append(out, EncodedValue{AttributeID: a.ID, Key: a.Key, Value: tok})
			}

		case models.AttributeNumberRange:
			min, max, err := rangeBounds(raw)
			if err != nil {
				return nil, fmt.Errorf("serialize %s: %w", a.Key, err)
			}
			if min != nil {
				encoded, err := models.EncodeAttributeValue(models.AttributeNumber, *min)
				if err != nil {
					return nil, fmt.Errorf("serialize %s: %w", a.Key, err)
				}
				out = append(out, EncodedValue{
					AttributeID: a.ID, Key: a.Key,
					Value: models.EncodeRangeBound(models.RangeMinPrefix, encoded),
				})
			}
			if max != nil {
				encoded, err := models.EncodeAttributeValue(models.AttributeNumber, *max)
				if err != nil {
					return nil, fmt.Errorf("serialize %s: %w", a.Key, err)
				}
				out = append(out, EncodedValue{
					AttributeID: a.ID, Key: a.Key,
					Value: models.EncodeRangeBound(models.RangeMaxPrefix, encoded),
				})
			}

		default:
			encoded, err := models.EncodeAttributeValue(a.Type, raw)
			if err != nil {
				return nil, fmt.Errorf("serialize %s: %w", a.Key, err)
			}
			if encoded == "" {
				continue
			}
			out = append(out, EncodedValue{AttributeID: a.ID, Key: a.Key, Value: encoded})
		}
	}
	return out, nil
}

// stringValue renders the current value of key as a comparison string,
// or "" when unset or not a scalar.
func (b *Binder) stringValue(key string) string {
	raw, ok := b.values[key]
	if !ok || raw == nil {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// multiselectTokens normalizes the wire shapes a multiselect arrives in:
// a slice of strings, a JSON-decoded []any, or a single string.
func multiselectTokens(raw any) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return nonEmpty(v), nil
	case []any:
		tokens := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("multiselect entries must be strings, got %T", item)
			}
			tokens = append(tokens, s)
		}
		return nonEmpty(tokens), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return []string{v}, nil
	default:
		return nil, fmt.Errorf("multiselect must be a list, got %T", raw)
	}
}

func nonEmpty(tokens []string) []string {
	out := tokens[:0]
	for _, t := range tokens {
		if strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	}
	return out
}

// rangeBounds extracts optional min/max numbers from a range value, which
// arrives as a map with "min"/"max" entries holding numbers or numeric
// strings.
func rangeBounds(raw any) (min, max *float64, err error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, nil, fmt.Errorf("range must be an object with min/max, got %T", raw)
	}
	if v, present := m["min"]; present && v != nil {
		n, err := toFloat(v)
		if err != nil {
			return nil, nil, fmt.Errorf("range min: %w", err)
		}
		min = &n
	}
	if v, present := m["max"]; present && v != nil {
		n, err := toFloat(v)
		if err != nil {
			return nil, nil, fmt.Errorf("range max: %w", err)
		}
		max = &n
	}
	return min, max, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not numeric", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

// isEmptyValue reports values the create path should skip rather than
// persist or validate.
func isEmptyValue(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}
