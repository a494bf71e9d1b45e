package portal

import (
	"strconv"
	"strings"

	"github.com/matcheco/matcheco/backend/portal-service/internal/models"
)

// KeyMode selects how graph nodes are identified.
type KeyMode int

const (
	// KeyByName labels nodes by factory name, so records sharing a name
	// collapse into one node.
	KeyByName KeyMode = iota
	// KeyByID labels nodes by factory ID, falling back to the name when a
	// record carries no ID.
	KeyByID
)

// BuildGraph builds a directed material-flow adjacency map from portal
// records, keyed by factory name. An edge runs from a generator to a
// receiver when the generator's waste type and the receiver's raw material
// name match after trimming and lowercasing; empty material names never
// match. Self-loops on the same node label are suppressed and neighbor
// lists keep first-seen order without duplicates. A key exists only for
// generators that gained at least one edge.
func BuildGraph(records []models.PortalRecord) map[string][]string {
	return BuildGraphKeyed(records, KeyByName)
}

type graphSide struct {
	label    string
	material string
}

// BuildGraphKeyed is BuildGraph with an explicit node key mode.
func BuildGraphKeyed(records []models.PortalRecord, mode KeyMode) map[string][]string {
	var generators, receivers []graphSide
	graph := make(map[string][]string)

	for i, rec := range records {
		label := nodeLabel(rec, mode, i)
		role := strings.ToLower(rec.Common.FactoryType)
		if strings.Contains(role, "generator") && rec.Generator != nil {
			if m := normalizeMaterial(rec.Generator.WasteTypeName); m != "" {
				generators = append(generators, graphSide{label, m})
			}
		}
		if strings.Contains(role, "receiver") && rec.Receiver != nil {
			if m := normalizeMaterial(rec.Receiver.RawMaterialName); m != "" {
				receivers = append(receivers, graphSide{label, m})
			}
		}
	}

	for _, g := range generators {
		for _, r := range receivers {
			if g.material != r.material || g.label == r.label {
				continue
			}
			if !contains(graph[g.label], r.label) {
				graph[g.label] = append(graph[g.label], r.label)
			}
		}
	}
	return graph
}

func nodeLabel(rec models.PortalRecord, mode KeyMode, idx int) string {
	if mode == KeyByID && rec.FactoryID != "" {
		return rec.FactoryID
	}
	if name := strings.TrimSpace(rec.Common.FactoryName); name != "" {
		return name
	}
	if rec.FactoryID != "" {
		return rec.FactoryID
	}
	return "Factory#" + strconv.Itoa(idx+1)
}

func normalizeMaterial(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
