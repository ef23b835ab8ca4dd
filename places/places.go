// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package places is the restaurant-data provider boundary. The session
// service only consumes Seed values through the Source interface; a real
// provider client (Google Places, Foursquare) plugs in behind it.
package places

import (
	"context"
	"math/rand"
)

// Seed is the provider-side description of a restaurant before it becomes a
// session candidate.
type Seed struct {
	ProviderID          string
	Name                string
	Address             string
	Category            string
	PriceLevel          string
	PriceRange          string
	Rating              float64
	UserRatingCount     int
	CurrentOpeningHours string
	GenerativeSummary   string
	ReviewSummary       string
	WebsiteURI          string
}

// Source supplies up to poolSize restaurant seeds for a new session.
type Source interface {
	Restaurants(ctx context.Context, poolSize int) ([]Seed, error)
}

// priceRanges maps provider price-level identifiers to display symbols.
// Data-driven so new provider categories are a table entry, not a code change.
var priceRanges = map[string]string{
	"PRICE_LEVEL_FREE":           "",
	"PRICE_LEVEL_INEXPENSIVE":    "$",
	"PRICE_LEVEL_MODERATE":       "$$",
	"PRICE_LEVEL_EXPENSIVE":      "$$$",
	"PRICE_LEVEL_VERY_EXPENSIVE": "$$$$",
}

// PriceRangeFor renders a provider price level as a display symbol.
// Unknown levels render as empty rather than erroring.
func PriceRangeFor(priceLevel string) string {
	return priceRanges[priceLevel]
}

// StaticSource serves a built-in fixture pool, shuffled per call and deduped
// by provider ID. It keeps the server runnable without provider credentials
// and gives tests a deterministic candidate inventory via a fixed rand seed.
type StaticSource struct {
	seeds []Seed
	rng   *rand.Rand
}

// NewStaticSource returns a source over the built-in fixture pool.
func NewStaticSource() *StaticSource {
	return &StaticSource{seeds: fixtureSeeds, rng: rand.New(rand.NewSource(rand.Int63()))}
}

// NewSeededSource returns a fixture source with a deterministic shuffle order.
func NewSeededSource(seed int64) *StaticSource {
	return &StaticSource{seeds: fixtureSeeds, rng: rand.New(rand.NewSource(seed))}
}

func (s *StaticSource) Restaurants(ctx context.Context, poolSize int) ([]Seed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Dedupe by provider ID, preserving first occurrence.
	byID := make(map[string]struct{}, len(s.seeds))
	unique := make([]Seed, 0, len(s.seeds))
	for _, seed := range s.seeds {
		if _, ok := byID[seed.ProviderID]; ok {
			continue
		}
		byID[seed.ProviderID] = struct{}{}
		unique = append(unique, seed)
	}

	s.rng.Shuffle(len(unique), func(i, j int) {
		unique[i], unique[j] = unique[j], unique[i]
	})

	if poolSize < len(unique) {
		unique = unique[:poolSize]
	}
	return unique, nil
}
