package geo

import "testing"

func TestCityLatLon(t *testing.T) {
	lat, lon, ok := CityLatLon("Industrial Estate, Chennai, Tamil Nadu")
	if !ok {
		t.Fatal("expected chennai to resolve")
	}
	if lat != 13.0827 || lon != 80.2707 {
		t.Errorf("chennai = (%v, %v)", lat, lon)
	}
}

func TestCityLatLonCaseInsensitive(t *testing.T) {
	if _, _, ok := CityLatLon("MUMBAI"); !ok {
		t.Error("uppercase address should still resolve")
	}
}

func TestCityLatLonNewDelhiBeforeDelhi(t *testing.T) {
	lat, _, ok := CityLatLon("Okhla, New Delhi")
	if !ok || lat != 28.6139 {
		t.Errorf("new delhi = (%v, ok=%v)", lat, ok)
	}
}

func TestCityLatLonUnknown(t *testing.T) {
	if _, _, ok := CityLatLon("somewhere else entirely"); ok {
		t.Error("unknown city must not resolve")
	}
	if _, _, ok := CityLatLon(""); ok {
		t.Error("empty address must not resolve")
	}
}
