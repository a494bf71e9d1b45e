package engine

import (
	"reflect"
	"testing"

	"github.com/matcheco/matcheco/backend/portal-service/internal/geo"
	"github.com/matcheco/matcheco/backend/portal-service/internal/models"
)

func floatPtr(f float64) *float64 { return &f }

func TestParseQuantityWithUnit(t *testing.T) {
	cases := []struct {
		in     string
		tons   float64
	}{
		{"150", 150},
		{"2.5 tons", 2.5},
		{"500 kg", 0.5},
		{"500 kg per day", 3.5},
		{"10 t per week", 10},
		{"100 tonnes per month", 100 / WeeksPerMonth},
	}
	for _, c := range cases {
		if got := normalizeQtyFreq(c.in, ""); got != c.tons {
			t.Errorf("normalizeQtyFreq(%q) = %v, want %v", c.in, got, c.tons)
		}
	}
	if got := normalizeQtyFreq("a lot", "daily"); got != 0 {
		t.Errorf("unparseable quantity = %v, want 0", got)
	}
}

func TestParseCompositionText(t *testing.T) {
	got := parseCompositionText("55% SiO2; 5% Fe2O3")
	want := map[string]string{"SiO2": "55%", "Fe2O3": "5%"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseCompositionText = %v, want %v", got, want)
	}
	if got := parseCompositionText(""); len(got) != 0 {
		t.Errorf("empty text = %v", got)
	}
}

func TestParseRequirementsText(t *testing.T) {
	got := parseRequirementsText("Requires SiO2 > 40, Fe2O3 < 10%")
	want := map[string]string{"SiO2": ">40%", "Fe2O3": "<10%"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseRequirementsText = %v, want %v", got, want)
	}
	got = parseRequirementsText("CaO = 60")
	if got["CaO"] != "60%" {
		t.Errorf("equality requirement = %v", got)
	}
}

func TestCertList(t *testing.T) {
	got := certList("BIS certified, ISO 14001, Pollution Board NOC")
	want := []string{"BIS", "ISO14001", "PollutionBoard"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("certList = %v, want %v", got, want)
	}
	if got := certList(""); got != nil {
		t.Errorf("empty certification = %v", got)
	}
}

func TestFactoryID(t *testing.T) {
	rec := models.PortalRecord{Common: models.CommonInfo{FactoryName: "Alpha Steel &-Co"}}
	if got := factoryID(rec, "GEN"); got != "GEN_ALPHA_STEE" {
		t.Errorf("factoryID = %q", got)
	}
	rec.FactoryID = "CUSTOM_7"
	if got := factoryID(rec, "GEN"); got != "CUSTOM_7" {
		t.Errorf("explicit ID must win, got %q", got)
	}
	if got := factoryID(models.PortalRecord{}, "REC"); got != "REC_FACT" {
		t.Errorf("empty name fallback = %q", got)
	}
}

func TestGeneratorCheckboxProps(t *testing.T) {
	got := generatorPropsFromCheckboxes([]string{"pH Neutral", "Moisture <10%", "Fine Particles"})
	want := map[string]string{"pH": "6.8-7.2", "moisture": "<10%", "particle_size": "<100"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("generator props = %v, want %v", got, want)
	}
}

func TestMapTemperatureReq(t *testing.T) {
	if got := mapTemperatureReq("Ambient temperature"); got != "20-30" {
		t.Errorf("ambient = %q", got)
	}
	if got := mapTemperatureReq("Hot feed"); got != ">50" {
		t.Errorf("hot = %q", got)
	}
	if got := mapTemperatureReq("unspecified"); got != "" {
		t.Errorf("unknown = %q", got)
	}
}

func portalPair() []models.PortalRecord {
	return []models.PortalRecord{
		{
			Common: models.CommonInfo{
				FactoryName:   "Alpha Thermal Power",
				IndustryType:  "Power Generation",
				Location:      models.Location{Lat: floatPtr(13.0827), Lon: floatPtr(80.2707)},
				Certification: "BIS, ISO 14001",
				FactoryType:   string(models.RoleGenerator),
			},
			Generator: &models.GeneratorDetails{
				WasteTypeName:     "Fly Ash",
				WasteComposition:  "55% SiO2; 5% Fe2O3",
				WasteProperties:   []string{"pH Neutral", "Moisture <10%"},
				QuantityGenerated: "150 tons",
			},
		},
		{
			Common: models.CommonInfo{
				FactoryName: "Beta Cement Works",
				Location:    models.Location{Text: "Ambattur, Chennai"},
				FactoryType: string(models.RoleReceiver),
			},
			Receiver: &models.ReceiverDetails{
				RawMaterialName:     "Fly Ash",
				RequiredComposition: "Requires SiO2 > 40, Fe2O3 < 10",
				QuantityRequired:    "125 tons",
				CertificationNeeded: "BIS, ISO 14001",
				MaxDistanceKm:       150,
			},
		},
	}
}

func TestProcessPortalRecords(t *testing.T) {
	res := ProcessPortalRecords(portalPair(), geo.CityLatLon)
	if len(res.RankedMatches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(res.RankedMatches))
	}
	m := res.RankedMatches[0]
	if m.SupplierID != "GEN_ALPHA_THER" || m.ReceiverID != "REC_BETA_CEMEN" {
		t.Errorf("pairing %s -> %s", m.SupplierID, m.ReceiverID)
	}
	if m.MaterialType != "Fly Ash" {
		t.Errorf("material = %q", m.MaterialType)
	}
	if m.Economics.MatchedQuantityTons != 125 {
		t.Errorf("matched quantity = %v", m.Economics.MatchedQuantityTons)
	}
}

func TestProcessPortalRecordsDefaultsMaxDistance(t *testing.T) {
	recs := portalPair()
	recs[1].Receiver.MaxDistanceKm = 0
	res := ProcessPortalRecords(recs, geo.CityLatLon)
	if len(res.RankedMatches) != 1 {
		t.Fatalf("expected 1 match with default max distance, got %d", len(res.RankedMatches))
	}
	if res.RankedMatches[0].MaxDistanceKm != 150 {
		t.Errorf("default max distance = %v, want 150", res.RankedMatches[0].MaxDistanceKm)
	}
}

func TestProcessPortalRecordsUntypedRecord(t *testing.T) {
	recs := portalPair()
	recs[0].Common.FactoryType = ""
	res := ProcessPortalRecords(recs, geo.CityLatLon)
	if len(res.RankedMatches) != 1 {
		t.Fatalf("untyped record should still contribute its generator side, got %d", len(res.RankedMatches))
	}
}
