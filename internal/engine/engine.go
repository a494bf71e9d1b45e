// Package engine ranks supplier/receiver pairings, prices them, and
// overlays circular-economy loops on the high-scoring matches.
package engine

import (
	"math"
	"sort"
	"strings"

	"github.com/matcheco/matcheco/backend/portal-service/internal/models"
)

// Tunables. The emission factors are planning placeholders until measured
// fleet numbers are available.
const (
	CostPerTonKm                   = 7.0
	TruckEmissionKgCO2PerTonKm     = 0.10
	SubstitutionSavingsKgCO2PerTon = 200.0
	WeeksPerMonth                  = 4.345

	// CycleScoreThreshold is the minimum compatibility score for a match
	// to participate in cycle detection.
	CycleScoreThreshold = 80.0
)

// HaversineKm returns the great-circle distance between two points.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// materialScore grades the supplier's stream against every requirement
// entry the receiver lists. A receiver with no entries accepts anything.
func materialScore(out models.WasteOutput, req models.MaterialRequirement) float64 {
	var scores []float64

	for _, k := range sortedKeyList(req.RequiredComposition) {
		actual, ok := parseActualValue(out.ChemicalComposition[k])
		scores = append(scores, scoreAgainstRequirement(actual, ok, req.RequiredComposition[k]))
	}
	for _, k := range sortedKeyList(req.RequiredProperties) {
		expr := req.RequiredProperties[k]
		raw := out.PhysicalProperties[k]
		if numericReqRe.MatchString(expr) {
			actual, ok := parseActualValue(raw)
			scores = append(scores, scoreAgainstRequirement(actual, ok, expr))
			continue
		}
		// Label requirement: verbatim match after normalization.
		a := strings.ToLower(strings.TrimSpace(raw))
		b := strings.ToLower(strings.TrimSpace(expr))
		if b == "" || a == b {
			scores = append(scores, 1.0)
		} else {
			scores = append(scores, 0.0)
		}
	}

	if len(scores) == 0 {
		return 1.0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

func sortedKeyList(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func hasRequiredCerts(s models.Supplier, r models.Receiver) bool {
	have := make(map[string]bool, len(s.Certifications))
	for _, c := range s.Certifications {
		have[c] = true
	}
	for _, c := range r.CertificationsRequired {
		if !have[c] {
			return false
		}
	}
	return true
}

func materialTypeMatches(s models.Supplier, r models.Receiver) bool {
	st := strings.ToLower(strings.TrimSpace(s.WasteOutput.MaterialType))
	rt := strings.ToLower(strings.TrimSpace(r.MaterialRequirement.MaterialType))
	return st != "" && st == rt
}

func withinMaxDistance(s models.Supplier, r models.Receiver) (ok bool, distKm, maxKm float64) {
	if s.Location == nil || r.Location == nil {
		return false, math.Inf(1), 0
	}
	d := HaversineKm(s.Location.Lat, s.Location.Lon, r.Location.Lat, r.Location.Lon)
	maxD := r.Logistics.MaxDistanceKm
	return d <= maxD, d, maxD
}

func distanceScore(actual, maxDist float64) float64 {
	if maxDist <= 0 {
		return 0.0
	}
	return clamp01(1.0 - actual/maxDist)
}

func quantityScore(supplierQty, receiverQty float64) float64 {
	if receiverQty <= 0 {
		return 1.0
	}
	return clamp01(math.Min(supplierQty, receiverQty) / receiverQty)
}

func computeScores(s models.Supplier, r models.Receiver, distKm, maxKm float64) models.Scores {
	mat := materialScore(s.WasteOutput, r.MaterialRequirement)
	dist := distanceScore(distKm, maxKm)
	qty := quantityScore(s.WasteOutput.QuantityTons, r.MaterialRequirement.QuantityTons)
	return models.Scores{
		Material:      mat,
		Distance:      dist,
		Quantity:      qty,
		Compatibility: (0.50*mat + 0.30*dist + 0.20*qty) * 100.0,
	}
}

// evaluateEconomics prices the matched flow and estimates CO2 saved versus
// the supplier's current landfill run. Eco efficiency of a zero-cost match
// is reported as 0 rather than infinity so the result stays encodable.
func evaluateEconomics(s models.Supplier, r models.Receiver, distKm float64) models.Economics {
	supQty := s.WasteOutput.QuantityTons
	recQty := r.MaterialRequirement.QuantityTons
	matched := math.Min(supQty, recQty)

	transportCost := distKm * matched * CostPerTonKm
	totalCost := transportCost + r.MaterialRequirement.ProcessingCostPerTon*matched

	landfillEmissions := s.WasteOutput.LandfillDistanceKm * supQty * TruckEmissionKgCO2PerTonKm
	newEmissions := distKm * matched * TruckEmissionKgCO2PerTonKm
	substitutionSavings := matched * SubstitutionSavingsKgCO2PerTon
	co2Saved := (landfillEmissions - newEmissions) + substitutionSavings

	eco := 0.0
	if totalCost > 0 {
		eco = co2Saved / totalCost
	}
	return models.Economics{
		MatchedQuantityTons: matched,
		TransportCost:       transportCost,
		TotalCost:           totalCost,
		CO2SavedKg:          co2Saved,
		EcoEfficiencyScore:  eco,
	}
}

// ComputeRankedMatches evaluates every supplier/receiver pair, drops pairs
// failing the hard filters (material type, distance, certifications), and
// returns the rest sorted by compatibility then eco efficiency, descending.
func ComputeRankedMatches(suppliers []models.Supplier, receivers []models.Receiver) []models.Match {
	var matches []models.Match
	for _, s := range suppliers {
		for _, r := range receivers {
			if !materialTypeMatches(s, r) {
				continue
			}
			within, distKm, maxKm := withinMaxDistance(s, r)
			if !within {
				continue
			}
			if !hasRequiredCerts(s, r) {
				continue
			}
			matches = append(matches, models.Match{
				SupplierID:    s.FactoryID,
				SupplierName:  s.FactoryName,
				ReceiverID:    r.FactoryID,
				ReceiverName:  r.FactoryName,
				MaterialType:  s.WasteOutput.MaterialType,
				DistanceKm:    distKm,
				MaxDistanceKm: maxKm,
				Scores:        computeScores(s, r, distKm, maxKm),
				Economics:     evaluateEconomics(s, r, distKm),
			})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Scores.Compatibility != matches[j].Scores.Compatibility {
			return matches[i].Scores.Compatibility > matches[j].Scores.Compatibility
		}
		return matches[i].Economics.EcoEfficiencyScore > matches[j].Economics.EcoEfficiencyScore
	})
	return matches
}

// buildMatchGraph keeps only matches above the cycle threshold and returns
// their adjacency, with every endpoint present as a node.
func buildMatchGraph(matches []models.Match, threshold float64) map[string][]string {
	g := make(map[string][]string)
	for _, m := range matches {
		if m.Scores.Compatibility <= threshold {
			continue
		}
		if m.SupplierID == "" || m.ReceiverID == "" {
			continue
		}
		if !containsStr(g[m.SupplierID], m.ReceiverID) {
			g[m.SupplierID] = append(g[m.SupplierID], m.ReceiverID)
		}
		if _, ok := g[m.ReceiverID]; !ok {
			g[m.ReceiverID] = []string{}
		}
	}
	for u := range g {
		sort.Strings(g[u])
	}
	return g
}

func containsStr(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

// findElementaryCycles enumerates simple cycles of the match graph. Walks
// only descend to nodes ordered at or after the start node, which yields
// each cycle from its smallest member exactly once per rotation; rotation
// to the minimum node then dedupes direction-independent repeats.
func findElementaryCycles(graph map[string][]string) [][]string {
	nodes := make([]string, 0, len(graph))
	for n := range graph {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}

	var raw [][]string
	var dfs func(start, current string, path []string, blocked map[string]bool)
	dfs = func(start, current string, path []string, blocked map[string]bool) {
		for _, nxt := range graph[current] {
			if index[nxt] < index[start] {
				continue
			}
			if nxt == start {
				raw = append(raw, append(append([]string(nil), path...), start))
			} else if !blocked[nxt] {
				blocked[nxt] = true
				dfs(start, nxt, append(path, nxt), blocked)
				delete(blocked, nxt)
			}
		}
	}
	for _, s := range nodes {
		dfs(s, s, []string{s}, map[string]bool{s: true})
	}

	seen := make(map[string]bool)
	var unique [][]string
	for _, cyc := range raw {
		core := cyc
		if len(cyc) >= 3 && cyc[0] == cyc[len(cyc)-1] {
			core = cyc[:len(cyc)-1]
		}
		if len(core) < 2 {
			continue
		}
		minIdx := 0
		for i, n := range core {
			if n < core[minIdx] {
				minIdx = i
			}
		}
		rotated := append(append([]string(nil), core[minIdx:]...), core[:minIdx]...)
		key := strings.Join(rotated, "\x00")
		if !seen[key] {
			seen[key] = true
			unique = append(unique, rotated)
		}
	}
	return unique
}

// evaluateCycles aggregates cost and CO2 over each loop. Cycles with a
// missing edge (pruned below the threshold graph but absent from the match
// list) are dropped. Zero-cost loops report efficiency 0.
func evaluateCycles(cyclesFound [][]string, matches []models.Match) []models.CycleReport {
	edgeMap := make(map[[2]string]*models.Match, len(matches))
	for i := range matches {
		m := &matches[i]
		edgeMap[[2]string{m.SupplierID, m.ReceiverID}] = m
	}

	var out []models.CycleReport
	for _, cyc := range cyclesFound {
		var (
			totalCost float64
			totalCO2  float64
			edges     []models.CycleEdge
			complete  = true
		)
		for i := range cyc {
			u, v := cyc[i], cyc[(i+1)%len(cyc)]
			m, ok := edgeMap[[2]string{u, v}]
			if !ok {
				complete = false
				break
			}
			totalCost += m.Economics.TotalCost
			totalCO2 += m.Economics.CO2SavedKg
			edges = append(edges, models.CycleEdge{
				From:               u,
				To:                 v,
				CompatibilityScore: m.Scores.Compatibility,
				EcoEfficiencyScore: m.Economics.EcoEfficiencyScore,
			})
		}
		if !complete || len(edges) == 0 {
			continue
		}
		eco := 0.0
		if totalCost > 0 {
			eco = totalCO2 / totalCost
		}
		out = append(out, models.CycleReport{
			CycleNodes:                  cyc,
			Edges:                       edges,
			AggregateTotalCost:          totalCost,
			AggregateCO2SavedKg:         totalCO2,
			AggregateEcoEfficiencyScore: eco,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AggregateEcoEfficiencyScore > out[j].AggregateEcoEfficiencyScore
	})
	return out
}

// ProcessRequests runs the full pipeline: ranked matches plus the evaluated
// cycles detected among matches scoring above CycleScoreThreshold.
func ProcessRequests(suppliers []models.Supplier, receivers []models.Receiver) models.MatchResponse {
	ranked := ComputeRankedMatches(suppliers, receivers)
	graph := buildMatchGraph(ranked, CycleScoreThreshold)
	found := findElementaryCycles(graph)
	return models.MatchResponse{
		RankedMatches:  ranked,
		DetectedCycles: evaluateCycles(found, ranked),
	}
}
