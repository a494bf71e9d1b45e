// Package geo resolves free-text addresses to coordinates using a small
// offline city table, so the matcher works without a network geocoder.
package geo

import "strings"

type cityEntry struct {
	name string
	lat  float64
	lon  float64
}

// Ordered slice, not a map: "new delhi" must win over "delhi" when both
// occur, and lookups stay deterministic.
var cities = []cityEntry{
	{"new delhi", 28.6139, 77.2090},
	{"chennai", 13.0827, 80.2707},
	{"bengaluru", 12.9716, 77.5946},
	{"bangalore", 12.9716, 77.5946},
	{"hyderabad", 17.3850, 78.4867},
	{"mumbai", 19.0760, 72.8777},
	{"pune", 18.5204, 73.8567},
	{"ahmedabad", 23.0225, 72.5714},
	{"delhi", 28.6139, 77.2090},
	{"kolkata", 22.5726, 88.3639},
	{"coimbatore", 11.0168, 76.9558},
	{"madurai", 9.9252, 78.1198},
	{"visakhapatnam", 17.6868, 83.2185},
	{"surat", 21.1702, 72.8311},
	{"jaipur", 26.9124, 75.7873},
	{"lucknow", 26.8467, 80.9462},
}

// CityLatLon resolves an address by substring match against the known
// city names. Matching is case-insensitive; ok is false when no city in
// the table occurs in the address.
func CityLatLon(address string) (lat, lon float64, ok bool) {
	s := strings.ToLower(strings.TrimSpace(address))
	if s == "" {
		return 0, 0, false
	}
	for _, c := range cities {
		if strings.Contains(s, c.name) {
			return c.lat, c.lon, true
		}
	}
	return 0, 0, false
}
