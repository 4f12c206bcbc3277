// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import "testing"

func TestGenerate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Phones & Tablets", "phones-tablets"},
		{"Vehicles", "vehicles"},
		{"Home & Garden", "home-garden"},
		{"  Sports  &  Hobbies  ", "sports-hobbies"},
		{"Already-A-Slug", "already-a-slug"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Generate(tt.in); got != tt.want {
			t.Errorf("Generate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValid(t *testing.T) {
	valid := []string{"vehicles", "phones-tablets", "home-garden"}
	for _, s := range valid {
		if !Valid(s) {
			t.Errorf("Valid(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "Phones", "phones tablets", "phones--tablets", "-vehicles"}
	for _, s := range invalid {
		if Valid(s) {
			t.Errorf("Valid(%q) = true, want false", s)
		}
	}
}
