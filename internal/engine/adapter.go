package engine

import (
	"regexp"
	"strings"

	"github.com/matcheco/matcheco/backend/portal-service/internal/models"
)

// GeocodeFunc resolves a free-text address to coordinates.
type GeocodeFunc func(address string) (lat, lon float64, ok bool)

// ProcessPortalRecords adapts role-tagged portal records into canonical
// suppliers and receivers and runs the matching pipeline. Records without
// a recognized factory type contribute whichever detail sections they
// carry, so a legacy both-roles record still matches on both sides.
func ProcessPortalRecords(records []models.PortalRecord, geocode GeocodeFunc) models.MatchResponse {
	var suppliers []models.Supplier
	var receivers []models.Receiver
	for _, rec := range records {
		switch strings.ToLower(strings.TrimSpace(rec.Common.FactoryType)) {
		case "waste generator", "generator":
			suppliers = append(suppliers, supplierFromRecord(rec, geocode))
		case "receiver":
			receivers = append(receivers, receiverFromRecord(rec, geocode))
		default:
			if rec.Generator != nil {
				suppliers = append(suppliers, supplierFromRecord(rec, geocode))
			}
			if rec.Receiver != nil {
				receivers = append(receivers, receiverFromRecord(rec, geocode))
			}
		}
	}
	return ProcessRequests(suppliers, receivers)
}

func supplierFromRecord(rec models.PortalRecord, geocode GeocodeFunc) models.Supplier {
	gen := rec.Generator
	if gen == nil {
		gen = &models.GeneratorDetails{}
	}

	materialType := gen.WasteTypeName
	if materialType == "" {
		materialType = gen.WasteCategory
	}
	if materialType == "" {
		materialType = "Unknown"
	}

	phys := generatorPropsFromCheckboxes(gen.WasteProperties)
	if gen.StorageCondition != "" {
		phys["storage"] = strings.ToLower(strings.TrimSpace(gen.StorageCondition))
	}
	if strings.HasPrefix(strings.ToLower(gen.HazardRating), "non-hazard") {
		phys["hazard"] = "non-hazardous"
	}

	qtyWeekTons := normalizeQtyFreq(gen.QuantityGenerated, gen.FrequencyOfGeneration)

	return models.Supplier{
		FactoryID:   factoryID(rec, "GEN"),
		FactoryName: rec.Common.FactoryName,
		Industry:    rec.Common.IndustryType,
		Location:    resolveLocation(rec.Common.Location, geocode),
		WasteOutput: models.WasteOutput{
			MaterialType:        materialType,
			QuantityTons:        qtyWeekTons,
			Frequency:           "weekly",
			ChemicalComposition: parseCompositionText(gen.WasteComposition),
			PhysicalProperties:  phys,
			LandfillDistanceKm:  0,
		},
		Certifications: certList(rec.Common.Certification),
	}
}

func receiverFromRecord(rec models.PortalRecord, geocode GeocodeFunc) models.Receiver {
	recv := rec.Receiver
	if recv == nil {
		recv = &models.ReceiverDetails{}
	}

	materialType := recv.RawMaterialName
	if materialType == "" {
		materialType = "Unknown"
	}

	props := receiverPropsFromCheckboxes(recv.RequiredProperties)
	if strings.HasSuffix(recv.MinimumPurityLevel, "%") {
		props["purity"] = ">" + stripPct(recv.MinimumPurityLevel) + "%"
	}
	if strings.HasPrefix(recv.ContaminantTolerance, "<") {
		props["contaminants"] = recv.ContaminantTolerance
	}
	if form := strings.ToLower(strings.TrimSpace(recv.FormOfMaterialNeeded)); form != "" {
		props["form"] = form
	}
	for k, v := range parseParticleOrViscosity(recv.ParticleSizeViscosity) {
		props[k] = v
	}
	for k, v := range odorColorProps(recv.OdorColorTolerance) {
		props[k] = v
	}
	if t := mapTemperatureReq(recv.TemperatureRequirement); t != "" {
		props["temperature"] = t
	}

	qtyWeekTons := normalizeQtyFreq(recv.QuantityRequired, recv.FrequencyOfRequirement)

	var budget *float64
	if recv.BudgetPerTon != "" {
		if n := firstNumberRe.FindString(recv.BudgetPerTon); n != "" {
			if f, ok := parseNumber(n); ok {
				budget = &f
			}
		}
	}

	maxDist := recv.MaxDistanceKm
	if maxDist == 0 {
		maxDist = 150
	}

	return models.Receiver{
		FactoryID:   factoryID(rec, "REC"),
		FactoryName: rec.Common.FactoryName,
		Industry:    rec.Common.IndustryType,
		Location:    resolveLocation(rec.Common.Location, geocode),
		MaterialRequirement: models.MaterialRequirement{
			MaterialType:         materialType,
			QuantityTons:         qtyWeekTons,
			Frequency:            "weekly",
			RequiredComposition:  parseRequirementsText(recv.RequiredComposition),
			RequiredProperties:   props,
			ProcessingCostPerTon: 0,
			BudgetPerTon:         budget,
		},
		Logistics:              models.Logistics{MaxDistanceKm: maxDist},
		CertificationsRequired: certList(recv.CertificationNeeded),
	}
}

func resolveLocation(loc models.Location, geocode GeocodeFunc) *models.LatLon {
	if loc.HasCoords() {
		return &models.LatLon{Lat: *loc.Lat, Lon: *loc.Lon}
	}
	if loc.Text != "" && geocode != nil {
		if lat, lon, ok := geocode(loc.Text); ok {
			return &models.LatLon{Lat: lat, Lon: lon}
		}
	}
	return nil
}

var nonAlnumRe = regexp.MustCompile(`[^A-Za-z0-9]+`)

func factoryID(rec models.PortalRecord, prefix string) string {
	if rec.FactoryID != "" {
		return rec.FactoryID
	}
	base := nonAlnumRe.ReplaceAllString(strings.TrimSpace(rec.Common.FactoryName), "_")
	if len(base) > 10 {
		base = base[:10]
	}
	base = strings.ToUpper(base)
	if base == "" {
		base = "FACT"
	}
	return prefix + "_" + base
}

// qtyRe accepts forms like "150", "2.5 tons", "500 kg per day".
var qtyRe = regexp.MustCompile(`(?i)^\s*([\d.]+)\s*(kg|kgs|kilogram|kilograms|t|ton|tons|tonne|tonnes)?\s*(?:per\s*(day|week|month))?\s*$`)

func parseQuantityWithUnit(s string) (val float64, unit, period string, ok bool) {
	m := qtyRe.FindStringSubmatch(s)
	if m == nil {
		return 0, "", "", false
	}
	val, ok = parseNumber(m[1])
	if !ok {
		return 0, "", "", false
	}
	switch strings.ToLower(m[2]) {
	case "kg", "kgs", "kilogram", "kilograms":
		unit = "kg"
	case "t", "ton", "tons", "tonne", "tonnes":
		unit = "t"
	}
	period = strings.ToLower(m[3])
	return val, unit, period, true
}

func toTons(val float64, unit string) float64 {
	if unit == "kg" {
		return val / 1000.0
	}
	return val
}

func periodToWeekFactor(period string) float64 {
	switch period {
	case "day":
		return 7.0
	case "month":
		return 1.0 / WeeksPerMonth
	default:
		return 1.0
	}
}

// normalizeQtyFreq converts a quantity string into tons per week. Only a
// period embedded in the quantity string itself ("500 kg per day") rescales
// the value; a bare quantity is taken as already weekly. The separate
// frequency field only applies when the quantity resolves to zero, so it
// can never change a nonzero value.
func normalizeQtyFreq(quantity, frequency string) float64 {
	val, unit, period, ok := parseQuantityWithUnit(quantity)
	if !ok {
		return 0.0
	}
	t := toTons(val, unit)
	if period != "" {
		return t * periodToWeekFactor(period)
	}
	return t
}

var (
	compValKeyRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%?\s*([A-Za-z0-9()._\-+]+)`)
	compKeyValRe  = regexp.MustCompile(`([A-Za-z0-9()._\-+]+)\s*(\d+(?:\.\d+)?)\s*%?`)
	reqExprRe     = regexp.MustCompile(`([A-Za-z0-9()._\-+]+)\s*(>=|<=|>|<)?\s*=?\s*(\d+(?:\.\d+)?)\s*%?`)
	firstNumberRe = regexp.MustCompile(`[\d.]+`)
)

// parseCompositionText reads loose supplier text like "55% SiO2; Fe2O3 5%"
// into a composition map with percent values.
func parseCompositionText(s string) map[string]string {
	out := map[string]string{}
	s = strings.Trim(strings.TrimSpace(s), " .")
	if s == "" {
		return out
	}
	for _, part := range splitListRe.Split(s, -1) {
		if m := compValKeyRe.FindStringSubmatch(part); m != nil {
			out[m[2]] = m[1] + "%"
			continue
		}
		if m := compKeyValRe.FindStringSubmatch(part); m != nil {
			out[m[1]] = m[2] + "%"
		}
	}
	return out
}

var splitListRe = regexp.MustCompile(`[;,]\s*`)

// parseRequirementsText reads receiver text like "Requires SiO2 > 40,
// Fe2O3 < 10" into requirement expressions.
func parseRequirementsText(s string) map[string]string {
	out := map[string]string{}
	if strings.TrimSpace(s) == "" {
		return out
	}
	s = strings.ReplaceAll(s, "Requires", "")
	s = strings.ReplaceAll(s, "require", "")
	s = strings.Trim(strings.TrimSpace(s), " .")
	for _, part := range splitListRe.Split(s, -1) {
		m := reqExprRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		key, op, num := m[1], m[2], m[3]
		if op == "" {
			out[key] = num + "%"
		} else {
			out[key] = op + num + "%"
		}
	}
	return out
}

func generatorPropsFromCheckboxes(opts []string) map[string]string {
	out := map[string]string{}
	set := lowerSet(opts)
	if set["ph neutral"] {
		out["pH"] = "6.8-7.2"
	}
	if set["moisture <10%"] {
		out["moisture"] = "<10%"
	}
	if set["non-hazardous"] {
		out["hazard"] = "non-hazardous"
	}
	if set["flammable"] {
		out["flammable"] = "yes"
	}
	if set["high density"] {
		out["density"] = "high"
	}
	if set["fine particles"] {
		out["particle_size"] = "<100"
	}
	return out
}

func receiverPropsFromCheckboxes(opts []string) map[string]string {
	out := map[string]string{}
	set := lowerSet(opts)
	if set["high density"] {
		out["density"] = "high"
	}
	if set["low moisture"] {
		out["moisture"] = "<10%"
	}
	if set["neutral ph"] {
		out["pH"] = "6.8-7.2"
	}
	if set["fine powder"] {
		out["particle_size"] = "<100"
	}
	if set["non-toxic"] {
		out["hazard"] = "non-hazardous"
	}
	return out
}

func lowerSet(xs []string) map[string]bool {
	out := make(map[string]bool, len(xs))
	for _, x := range xs {
		out[strings.ToLower(strings.TrimSpace(x))] = true
	}
	return out
}

func mapTemperatureReq(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return ""
	case strings.Contains(s, "ambient"):
		return "20-30"
	case strings.Contains(s, "25–35"), strings.Contains(s, "25-35"):
		return "25-35"
	case strings.Contains(s, "cold"):
		return "0-10"
	case strings.Contains(s, "hot"):
		return ">50"
	}
	return ""
}

var micronRe = regexp.MustCompile(`(?i)(<=|>=|<|>)?\s*(\d+(?:\.\d+)?)\s*(micron|microns|µm)`)

func parseParticleOrViscosity(s string) map[string]string {
	out := map[string]string{}
	if s == "" {
		return out
	}
	if m := micronRe.FindStringSubmatch(s); m != nil {
		op := m[1]
		if op == "" {
			op = "<="
		}
		out["particle_size"] = op + m[2]
	}
	low := strings.ToLower(s)
	if strings.Contains(low, "low viscosity") {
		out["viscosity"] = "low"
	}
	if strings.Contains(low, "high viscosity") {
		out["viscosity"] = "high"
	}
	return out
}

func odorColorProps(s string) map[string]string {
	sel := strings.ToLower(strings.TrimSpace(s))
	switch {
	case sel == "":
		return map[string]string{}
	case strings.Contains(sel, "no odor"):
		return map[string]string{"odor": "no odor"}
	case strings.Contains(sel, "slight"):
		return map[string]string{"odor": "slight"}
	}
	return map[string]string{}
}

func certList(s string) []string {
	c := strings.ToLower(strings.TrimSpace(s))
	if c == "" {
		return nil
	}
	var out []string
	if strings.Contains(c, "bis") {
		out = append(out, "BIS")
	}
	if strings.Contains(c, "iso 9001") {
		out = append(out, "ISO9001")
	}
	if strings.Contains(c, "iso 14001") {
		out = append(out, "ISO14001")
	}
	if strings.Contains(c, "pollution board") {
		out = append(out, "PollutionBoard")
	}
	return out
}
