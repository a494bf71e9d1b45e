package engine

import (
	"testing"

	"github.com/matcheco/matcheco/backend/portal-service/internal/geo"
	"github.com/matcheco/matcheco/backend/portal-service/internal/models"
)

func strPtr(s string) *string { return &s }

func TestToFloatDefault(t *testing.T) {
	cases := []struct {
		in   *string
		want float64
	}{
		{nil, 0},
		{strPtr("100 t/wk"), 100},
		{strPtr("approx 12.5 tons"), 12.5},
		{strPtr("no number here"), 0},
		{strPtr("-3"), -3},
	}
	for _, c := range cases {
		if got := toFloatDefault(c.in, 0); got != c.want {
			t.Errorf("toFloatDefault(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSupplierFromRow(t *testing.T) {
	row := models.MaterialRow{
		FactoryID:         42,
		FactoryName:       "Alpha Thermal Power",
		IndustryType:      "Power Generation",
		LocationText:      strPtr("Manali, Chennai"),
		Certification:     strPtr("BIS, ISO14001"),
		Role:              models.MaterialRoleGenerator,
		WasteTypeName:     strPtr("Fly Ash"),
		WasteComposition:  strPtr("Contains 60% CaCO3, 20% Fe2O3"),
		WasteProperties:   []string{"Moisture <10%", "pH Neutral", "Dry"},
		QuantityGenerated: strPtr("100 t/wk"),
	}
	s := SupplierFromRow(row, geo.CityLatLon)
	if s.FactoryID != "42" {
		t.Errorf("factory id = %q", s.FactoryID)
	}
	if s.Location == nil || s.Location.Lat != 13.0827 {
		t.Errorf("location should geocode from text, got %+v", s.Location)
	}
	if s.WasteOutput.QuantityTons != 100 {
		t.Errorf("quantity = %v, want 100", s.WasteOutput.QuantityTons)
	}
	if s.WasteOutput.PhysicalProperties["moisture"] != "<10%" {
		t.Errorf("moisture prop = %v", s.WasteOutput.PhysicalProperties)
	}
	if s.WasteOutput.PhysicalProperties["pH"] != "7.0-8.0" {
		t.Errorf("pH prop = %v", s.WasteOutput.PhysicalProperties)
	}
	if s.WasteOutput.PhysicalProperties["Dry"] != "1" {
		t.Errorf("flag prop = %v", s.WasteOutput.PhysicalProperties)
	}
	if s.WasteOutput.LandfillDistanceKm != 80 {
		t.Errorf("landfill baseline = %v, want 80", s.WasteOutput.LandfillDistanceKm)
	}
	if len(s.Certifications) != 2 || s.Certifications[0] != "BIS" {
		t.Errorf("certifications = %v", s.Certifications)
	}
}

func TestReceiverFromRow(t *testing.T) {
	row := models.MaterialRow{
		FactoryID:           7,
		FactoryName:         "Beta Cement Works",
		LocationLat:         floatPtr(12.9850),
		LocationLon:         floatPtr(80.2310),
		Role:                models.MaterialRoleReceiver,
		RawMaterialName:     strPtr("Fly Ash"),
		RequiredComposition: strPtr("SiO2 > 40%, Fe2O3 < 10%"),
		RequiredProperties:  []string{"Low Moisture", "Neutral pH"},
		QuantityRequired:    strPtr("125 tons per week"),
		BudgetPerTon:        strPtr("Rs 200"),
		CertificationNeeded: strPtr("BIS"),
		MaxDistanceKm:       floatPtr(150),
	}
	r := ReceiverFromRow(row, nil)
	if r.FactoryID != "7" {
		t.Errorf("factory id = %q", r.FactoryID)
	}
	if r.Location == nil || r.Location.Lat != 12.9850 {
		t.Errorf("stored coordinates must win, got %+v", r.Location)
	}
	if r.MaterialRequirement.QuantityTons != 125 {
		t.Errorf("quantity = %v, want 125", r.MaterialRequirement.QuantityTons)
	}
	if got := r.MaterialRequirement.RequiredComposition["SiO2"]; got != "> 40%" {
		t.Errorf("SiO2 requirement = %q", got)
	}
	if got := r.MaterialRequirement.RequiredProperties["moisture"]; got != "<10%" {
		t.Errorf("moisture requirement = %q", got)
	}
	if got := r.MaterialRequirement.RequiredProperties["pH"]; got != "6.5-8.0" {
		t.Errorf("pH requirement = %q", got)
	}
	if r.MaterialRequirement.ProcessingCostPerTon != 200 {
		t.Errorf("processing cost = %v, want 200", r.MaterialRequirement.ProcessingCostPerTon)
	}
	if r.Logistics.MaxDistanceKm != 150 {
		t.Errorf("max distance = %v", r.Logistics.MaxDistanceKm)
	}
}

func TestRowPairMatches(t *testing.T) {
	gen := models.MaterialRow{
		FactoryID:         1,
		FactoryName:       "Alpha",
		LocationLat:       floatPtr(13.0827),
		LocationLon:       floatPtr(80.2707),
		Role:              models.MaterialRoleGenerator,
		WasteTypeName:     strPtr("Fly Ash"),
		QuantityGenerated: strPtr("150"),
	}
	recv := models.MaterialRow{
		FactoryID:        2,
		FactoryName:      "Beta",
		LocationLat:      floatPtr(12.9850),
		LocationLon:      floatPtr(80.2310),
		Role:             models.MaterialRoleReceiver,
		RawMaterialName:  strPtr("fly ash"),
		QuantityRequired: strPtr("125"),
		MaxDistanceKm:    floatPtr(150),
	}
	res := ProcessRequests(
		[]models.Supplier{SupplierFromRow(gen, nil)},
		[]models.Receiver{ReceiverFromRow(recv, nil)},
	)
	if len(res.RankedMatches) != 1 {
		t.Fatalf("expected 1 match across rows, got %d", len(res.RankedMatches))
	}
	if res.RankedMatches[0].SupplierID != "1" || res.RankedMatches[0].ReceiverID != "2" {
		t.Errorf("pairing %s -> %s", res.RankedMatches[0].SupplierID, res.RankedMatches[0].ReceiverID)
	}
}
