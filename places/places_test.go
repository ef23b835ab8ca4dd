// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package places

import (
	"context"
	"testing"
)

func TestStaticSourceRestaurants(t *testing.T) {
	src := NewSeededSource(42)

	seeds, err := src.Restaurants(context.Background(), 8)
	if err != nil {
		t.Fatalf("Restaurants failed: %v", err)
	}
	if len(seeds) != 8 {
		t.Fatalf("Got %d seeds, want 8", len(seeds))
	}

	seen := make(map[string]bool)
	for _, s := range seeds {
		if s.ProviderID == "" || s.Name == "" {
			t.Errorf("Seed missing identity: %+v", s)
		}
		if seen[s.ProviderID] {
			t.Errorf("Duplicate provider %s in pool", s.ProviderID)
		}
		seen[s.ProviderID] = true
		if s.PriceRange == "" {
			t.Errorf("Seed %s has no price range", s.ProviderID)
		}
	}
}

func TestStaticSourceOversizedRequest(t *testing.T) {
	src := NewSeededSource(42)

	// Asking for more than the fixture set yields everything, no error.
	seeds, err := src.Restaurants(context.Background(), 1000)
	if err != nil {
		t.Fatalf("Restaurants failed: %v", err)
	}
	if len(seeds) == 0 || len(seeds) > 1000 {
		t.Fatalf("Unexpected pool size %d", len(seeds))
	}
}

func TestSeededSourceIsDeterministic(t *testing.T) {
	a, _ := NewSeededSource(7).Restaurants(context.Background(), 5)
	b, _ := NewSeededSource(7).Restaurants(context.Background(), 5)

	if len(a) != len(b) {
		t.Fatalf("Pool sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ProviderID != b[i].ProviderID {
			t.Fatalf("Seeded pools diverge at %d: %s vs %s", i, a[i].ProviderID, b[i].ProviderID)
		}
	}
}

func TestPriceRangeFor(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"PRICE_LEVEL_INEXPENSIVE", "$"},
		{"PRICE_LEVEL_MODERATE", "$$"},
		{"PRICE_LEVEL_EXPENSIVE", "$$$"},
		{"PRICE_LEVEL_VERY_EXPENSIVE", "$$$$"},
		{"PRICE_LEVEL_UNSPECIFIED", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := PriceRangeFor(tt.level); got != tt.want {
			t.Errorf("PriceRangeFor(%q) = %q, want %q", tt.level, got, tt.want)
		}
	}
}
