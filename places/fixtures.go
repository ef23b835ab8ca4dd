// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package places

// fixtureSeeds is the built-in restaurant pool used when no provider client
// is configured. Entries mirror the shape of provider search results.
var fixtureSeeds = []Seed{
	{ProviderID: "fx-001", Name: "Taverna Kyclades", Address: "33-07 Ditmars Blvd, Astoria, NY", Category: "greek_restaurant", PriceLevel: "PRICE_LEVEL_MODERATE", PriceRange: "", Rating: 4.6, UserRatingCount: 3100, CurrentOpeningHours: "11:00-23:00", WebsiteURI: "https://tavernakyclades.example"},
	{ProviderID: "fx-002", Name: "Sal, Kris & Charlie's Deli", Address: "33-12 23rd Ave, Astoria, NY", Category: "sandwich_shop", PriceLevel: "PRICE_LEVEL_INEXPENSIVE", Rating: 4.7, UserRatingCount: 1800, CurrentOpeningHours: "09:00-17:00"},
	{ProviderID: "fx-003", Name: "Milkflower", Address: "34-12 31st Ave, Astoria, NY", Category: "pizza_restaurant", PriceLevel: "PRICE_LEVEL_MODERATE", Rating: 4.5, UserRatingCount: 1500, CurrentOpeningHours: "12:00-22:00"},
	{ProviderID: "fx-004", Name: "Seva Indian Cuisine", Address: "30-07 34th St, Astoria, NY", Category: "indian_restaurant", PriceLevel: "PRICE_LEVEL_MODERATE", Rating: 4.4, UserRatingCount: 980, CurrentOpeningHours: "12:00-22:30"},
	{ProviderID: "fx-005", Name: "The Bonnie", Address: "29-12 23rd Ave, Astoria, NY", Category: "gastropub", PriceLevel: "PRICE_LEVEL_MODERATE", Rating: 4.3, UserRatingCount: 1200, CurrentOpeningHours: "16:00-00:00"},
	{ProviderID: "fx-006", Name: "King Souvlaki", Address: "31st St & 31st Ave, Astoria, NY", Category: "greek_restaurant", PriceLevel: "PRICE_LEVEL_INEXPENSIVE", Rating: 4.6, UserRatingCount: 900, CurrentOpeningHours: "11:00-01:00"},
	{ProviderID: "fx-007", Name: "Chela & Garnacha", Address: "33-09 36th Ave, Astoria, NY", Category: "mexican_restaurant", PriceLevel: "PRICE_LEVEL_MODERATE", Rating: 4.5, UserRatingCount: 750, CurrentOpeningHours: "12:00-22:00"},
	{ProviderID: "fx-008", Name: "HinoMaru Ramen", Address: "33-18 Ditmars Blvd, Astoria, NY", Category: "ramen_restaurant", PriceLevel: "PRICE_LEVEL_MODERATE", Rating: 4.4, UserRatingCount: 1400, CurrentOpeningHours: "12:00-22:30"},
	{ProviderID: "fx-009", Name: "Sugar Freak", Address: "36-18 30th Ave, Astoria, NY", Category: "cajun_restaurant", PriceLevel: "PRICE_LEVEL_MODERATE", Rating: 4.3, UserRatingCount: 1100, CurrentOpeningHours: "11:00-23:00"},
	{ProviderID: "fx-010", Name: "Ovelia", Address: "34-01 30th Ave, Astoria, NY", Category: "greek_restaurant", PriceLevel: "PRICE_LEVEL_MODERATE", Rating: 4.2, UserRatingCount: 1000, CurrentOpeningHours: "10:00-23:00"},
	{ProviderID: "fx-011", Name: "Pye Boat Noodle", Address: "35-13 Broadway, Astoria, NY", Category: "thai_restaurant", PriceLevel: "PRICE_LEVEL_INEXPENSIVE", Rating: 4.4, UserRatingCount: 1700, CurrentOpeningHours: "11:30-22:00"},
	{ProviderID: "fx-012", Name: "Astoria Seafood", Address: "37-10 33rd St, Long Island City, NY", Category: "seafood_restaurant", PriceLevel: "PRICE_LEVEL_MODERATE", Rating: 4.3, UserRatingCount: 2600, CurrentOpeningHours: "12:00-22:00"},
	{ProviderID: "fx-013", Name: "Il Bambino", Address: "34-08 31st Ave, Astoria, NY", Category: "italian_restaurant", PriceLevel: "PRICE_LEVEL_INEXPENSIVE", Rating: 4.6, UserRatingCount: 800, CurrentOpeningHours: "11:00-22:00"},
	{ProviderID: "fx-014", Name: "Mar's", Address: "34-21 34th Ave, Astoria, NY", Category: "oyster_bar", PriceLevel: "PRICE_LEVEL_EXPENSIVE", Rating: 4.4, UserRatingCount: 600, CurrentOpeningHours: "17:00-23:00"},
	{ProviderID: "fx-015", Name: "Arepas Cafe", Address: "33-07 36th Ave, Astoria, NY", Category: "venezuelan_restaurant", PriceLevel: "PRICE_LEVEL_INEXPENSIVE", Rating: 4.5, UserRatingCount: 1300, CurrentOpeningHours: "11:00-22:00"},
	{ProviderID: "fx-016", Name: "Gregory's 26 Corner Taverna", Address: "26-02 23rd Ave, Astoria, NY", Category: "greek_restaurant", PriceLevel: "PRICE_LEVEL_MODERATE", Rating: 4.5, UserRatingCount: 700, CurrentOpeningHours: "12:00-23:00"},
	{ProviderID: "fx-017", Name: "Tacuba", Address: "35-01 36th St, Astoria, NY", Category: "mexican_restaurant", PriceLevel: "PRICE_LEVEL_MODERATE", Rating: 4.2, UserRatingCount: 950, CurrentOpeningHours: "12:00-23:00"},
	{ProviderID: "fx-018", Name: "Comfortland", Address: "40-09 30th Ave, Astoria, NY", Category: "american_restaurant", PriceLevel: "PRICE_LEVEL_INEXPENSIVE", Rating: 4.6, UserRatingCount: 500, CurrentOpeningHours: "08:00-16:00"},
	{ProviderID: "fx-019", Name: "Zenon Taverna", Address: "34-10 31st Ave, Astoria, NY", Category: "cypriot_restaurant", PriceLevel: "PRICE_LEVEL_MODERATE", Rating: 4.5, UserRatingCount: 650, CurrentOpeningHours: "12:00-23:00"},
	{ProviderID: "fx-020", Name: "Kabab Cafe", Address: "25-12 Steinway St, Astoria, NY", Category: "egyptian_restaurant", PriceLevel: "PRICE_LEVEL_MODERATE", Rating: 4.6, UserRatingCount: 400, CurrentOpeningHours: "13:00-22:00"},
}

func init() {
	// PriceRange is derived, not provider-supplied, for fixture entries.
	for i := range fixtureSeeds {
		if fixtureSeeds[i].PriceRange == "" {
			fixtureSeeds[i].PriceRange = PriceRangeFor(fixtureSeeds[i].PriceLevel)
		}
	}
}
