// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// attribute_codec.go centralizes the string encoding of typed attribute
// values. Every logical type is persisted as a string in the
// listing_attribute_values table; this is the single place where the
// conversions live so coercion behavior stays uniform across the create
// path, the filter compiler, and the form binder.

package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Range bound prefixes for persisted number_range values. A range attribute
// is stored as two rows on the same attribute, "min:<n>" and "max:<n>".
const (
	RangeMinPrefix = "min:"
	RangeMaxPrefix = "max:"
)

// EncodeAttributeValue converts a client-supplied value into its persisted
// string form for the given attribute type. An empty string result means
// "nothing to persist" and is skipped by callers.
func EncodeAttributeValue(t AttributeType, v any) (string, error) {
	if v == nil {
		return "", nil
	}
	switch t {
	case AttributeSelect, AttributeMultiselect, AttributeText, AttributeLocation:
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("attribute type %s: expected string, got %T", t, v)
		}
		return strings.TrimSpace(s), nil

	case AttributeNumber, AttributeNumberRange:
		switch n := v.(type) {
		case string:
			s := strings.TrimSpace(n)
			if s == "" {
				return "", nil
			}
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				return "", fmt.Errorf("attribute type %s: %q is not numeric", t, s)
			}
			return s, nil
		case float64:
			return formatNumber(n), nil
		case int:
			return strconv.Itoa(n), nil
		case int64:
			return strconv.FormatInt(n, 10), nil
		default:
			return "", fmt.Errorf("attribute type %s: expected number, got %T", t, v)
		}

	case AttributeBoolean:
		switch b := v.(type) {
		case bool:
			return strconv.FormatBool(b), nil
		case string:
			// The mobile client sometimes sends the string "true".
			return strconv.FormatBool(b == "true"), nil
		default:
			return "", fmt.Errorf("attribute type %s: expected bool, got %T", t, v)
		}
	}
	return "", fmt.Errorf("unknown attribute type %q", t)
}

// DecodeAttributeValue parses a persisted string back into its logical
// value for the given attribute type.
func DecodeAttributeValue(t AttributeType, s string) (any, error) {
	switch t {
	case AttributeSelect, AttributeMultiselect, AttributeText, AttributeLocation:
		return s, nil
	case AttributeNumber, AttributeNumberRange:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("decode %s value %q: %w", t, s, err)
		}
		return n, nil
	case AttributeBoolean:
		return s == "true", nil
	}
	return nil, fmt.Errorf("unknown attribute type %q", t)
}

// EncodeRangeBound wraps an encoded numeric value with the min/max prefix
// used for persisted number_range attributes.
func EncodeRangeBound(prefix, encoded string) string {
	return prefix + encoded
}

// DecodeRangeBound splits a persisted range row back into its bound prefix
// and numeric value. ok is false for values that are not range-encoded.
func DecodeRangeBound(s string) (prefix, value string, ok bool) {
	for _, p := range []string{RangeMinPrefix, RangeMaxPrefix} {
		if strings.HasPrefix(s, p) {
			return p, strings.TrimPrefix(s, p), true
		}
	}
	return "", s, false
}

// formatNumber renders a float without a trailing ".0" for whole values,
// matching how the client encodes numbers (String(42) === "42").
func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
