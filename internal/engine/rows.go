package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/matcheco/matcheco/backend/portal-service/internal/models"
)

// Adapters from the denormalized materials rows stored per factory. These
// are deliberately lighter than the portal adapter: the rows carry free
// text the owners typed, so values are approximated with first-number
// extraction instead of the strict quantity grammar.

var signedNumberRe = regexp.MustCompile(`[-+]?\d*\.?\d+`)

func toFloatDefault(s *string, def float64) float64 {
	if s == nil {
		return def
	}
	m := signedNumberRe.FindString(strings.ToLower(strings.TrimSpace(*s)))
	if m == "" {
		return def
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return def
	}
	return f
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func splitCSV(s *string) []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, part := range strings.Split(*s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func rowLocation(row models.MaterialRow, geocode GeocodeFunc) *models.LatLon {
	if row.LocationLat != nil && row.LocationLon != nil {
		return &models.LatLon{Lat: *row.LocationLat, Lon: *row.LocationLon}
	}
	if geocode != nil {
		if lat, lon, ok := geocode(strOrEmpty(row.LocationText)); ok {
			return &models.LatLon{Lat: lat, Lon: lon}
		}
	}
	return nil
}

// SupplierFromRow adapts a generator-side materials row.
func SupplierFromRow(row models.MaterialRow, geocode GeocodeFunc) models.Supplier {
	return models.Supplier{
		FactoryID:   strconv.FormatInt(row.FactoryID, 10),
		FactoryName: row.FactoryName,
		Industry:    row.IndustryType,
		Location:    rowLocation(row, geocode),
		WasteOutput: models.WasteOutput{
			MaterialType:        strOrEmpty(row.WasteTypeName),
			QuantityTons:        toFloatDefault(row.QuantityGenerated, 0),
			Frequency:           strOrEmpty(row.FrequencyGeneration),
			ChemicalComposition: naiveComposition(strOrEmpty(row.WasteComposition)),
			PhysicalProperties:  naivePhysicalProps(row.WasteProperties),
			// No landfill column yet; assume a regional disposal run.
			LandfillDistanceKm: 80,
		},
		Certifications: splitCSV(row.Certification),
	}
}

// ReceiverFromRow adapts a receiver-side materials row.
func ReceiverFromRow(row models.MaterialRow, geocode GeocodeFunc) models.Receiver {
	comp, props := parseRowRequirements(strOrEmpty(row.RequiredComposition), row.RequiredProperties)
	return models.Receiver{
		FactoryID:   strconv.FormatInt(row.FactoryID, 10),
		FactoryName: row.FactoryName,
		Industry:    row.IndustryType,
		Location:    rowLocation(row, geocode),
		MaterialRequirement: models.MaterialRequirement{
			MaterialType:         strOrEmpty(row.RawMaterialName),
			QuantityTons:         toFloatDefault(row.QuantityRequired, 0),
			Frequency:            strOrEmpty(row.FrequencyRequirement),
			RequiredComposition:  comp,
			RequiredProperties:   props,
			ProcessingCostPerTon: toFloatDefault(row.BudgetPerTon, 0),
		},
		Logistics: models.Logistics{
			MaxDistanceKm: floatOrZero(row.MaxDistanceKm),
		},
		CertificationsRequired: splitCSV(row.CertificationNeeded),
	}
}

func floatOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

var numTokenRe = regexp.MustCompile(`[-+]?\d*\.?\d+%?`)

// naiveComposition splits text like "Contains 60% CaCO3, 20% Fe2O3" into a
// composition map, guessing the key as the last non-numeric token of each
// fragment.
func naiveComposition(text string) map[string]string {
	out := map[string]string{}
	if strings.TrimSpace(text) == "" {
		return out
	}
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		val := numTokenRe.FindString(part)
		key := "comp_" + strconv.Itoa(len(out)+1)
		left := strings.Trim(strings.ReplaceAll(part, val, ""), " ,;")
		left = strings.TrimSpace(strings.NewReplacer("contains", "", "Contains", "").Replace(left))
		if left != "" {
			fields := strings.Fields(left)
			key = fields[len(fields)-1]
		}
		out[key] = val
	}
	return out
}

func naivePhysicalProps(props []string) map[string]string {
	out := map[string]string{}
	for _, item := range props {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		low := strings.ToLower(item)
		switch {
		case strings.Contains(low, "moisture"):
			if strings.Contains(low, "10") {
				out["moisture"] = "<10%"
			} else {
				out["moisture"] = "1"
			}
		case strings.Contains(low, "ph"):
			out["pH"] = "7.0-8.0"
		default:
			out[item] = "1"
		}
	}
	return out
}

// parseRowRequirements reads receiver text like "SiO2 > 40%, Fe2O3 < 10%"
// plus the stored property list into the requirement maps.
func parseRowRequirements(compText string, props []string) (map[string]string, map[string]string) {
	comp := map[string]string{}
	if s := strings.TrimSpace(compText); s != "" {
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			toks := strings.Fields(strings.ReplaceAll(part, ":", " "))
			if len(toks) >= 3 {
				comp[toks[0]] = strings.Join(toks[1:], " ")
			} else {
				comp["spec_"+strconv.Itoa(len(comp)+1)] = part
			}
		}
	}

	reqProps := map[string]string{}
	for _, item := range props {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		low := strings.ToLower(item)
		switch {
		case strings.Contains(low, "moisture"):
			reqProps["moisture"] = "<10%"
		case strings.Contains(low, "neutral ph"), strings.Contains(item, "pH"):
			reqProps["pH"] = "6.5-8.0"
		default:
			reqProps[item] = "1"
		}
	}
	return comp, reqProps
}
