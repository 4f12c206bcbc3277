// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "testing"

func TestEncodeAttributeValue(t *testing.T) {
	tests := []struct {
		name    string
		typ     AttributeType
		in      any
		want    string
		wantErr bool
	}{
		{"select string", AttributeSelect, "toyota", "toyota", false},
		{"select trims", AttributeSelect, "  toyota  ", "toyota", false},
		{"select non-string", AttributeSelect, 7, "", true},
		{"number float whole", AttributeNumber, float64(2020), "2020", false},
		{"number float fractional", AttributeNumber, 85.5, "85.5", false},
		{"number int", AttributeNumber, 42, "42", false},
		{"number numeric string", AttributeNumber, "2019", "2019", false},
		{"number junk string", AttributeNumber, "soon", "", true},
		{"number empty string", AttributeNumber, "", "", false},
		{"boolean true", AttributeBoolean, true, "true", false},
		{"boolean string true", AttributeBoolean, "true", "true", false},
		{"boolean string other", AttributeBoolean, "yes", "false", false},
		{"text passthrough", AttributeText, "comes with charger", "comes with charger", false},
		{"nil skipped", AttributeSelect, nil, "", false},
		{"unknown type", AttributeType("color"), "red", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeAttributeValue(tt.typ, tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("encoded = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeAttributeValue(t *testing.T) {
	if v, err := DecodeAttributeValue(AttributeNumber, "85.5"); err != nil || v != 85.5 {
		t.Errorf("number decode = %v, %v", v, err)
	}
	if v, err := DecodeAttributeValue(AttributeBoolean, "true"); err != nil || v != true {
		t.Errorf("boolean decode = %v, %v", v, err)
	}
	if v, err := DecodeAttributeValue(AttributeSelect, "toyota"); err != nil || v != "toyota" {
		t.Errorf("select decode = %v, %v", v, err)
	}
	if _, err := DecodeAttributeValue(AttributeNumber, "soon"); err == nil {
		t.Error("junk number decoded without error")
	}
}

func TestRangeBoundRoundTrip(t *testing.T) {
	encoded := EncodeRangeBound(RangeMinPrefix, "10000")
	if encoded != "min:10000" {
		t.Errorf("encoded = %q, want min:10000", encoded)
	}

	prefix, value, ok := DecodeRangeBound(encoded)
	if !ok || prefix != RangeMinPrefix || value != "10000" {
		t.Errorf("decoded = %q %q %v", prefix, value, ok)
	}

	if _, _, ok := DecodeRangeBound("10000"); ok {
		t.Error("plain value decoded as range bound")
	}
}
