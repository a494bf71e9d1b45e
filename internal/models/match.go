package models

// LatLon is a resolved coordinate pair used by the matching engine.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// WasteOutput is the canonical description of a supplier's waste stream.
type WasteOutput struct {
	MaterialType        string            `json:"material_type"`
	QuantityTons        float64           `json:"quantity_tons"`
	Frequency           string            `json:"frequency"`
	ChemicalComposition map[string]string `json:"chemical_composition"`
	PhysicalProperties  map[string]string `json:"physical_properties"`
	LandfillDistanceKm  float64           `json:"current_disposal_landfill_km"`
}

// MaterialRequirement is the canonical description of a receiver's need.
type MaterialRequirement struct {
	MaterialType         string            `json:"material_type"`
	QuantityTons         float64           `json:"quantity_tons"`
	Frequency            string            `json:"frequency"`
	RequiredComposition  map[string]string `json:"required_composition"`
	RequiredProperties   map[string]string `json:"required_properties"`
	ProcessingCostPerTon float64           `json:"processing_cost_per_ton"`
	BudgetPerTon         *float64          `json:"budget_per_ton,omitempty"`
}

// Logistics carries the receiver-side transport constraint.
type Logistics struct {
	MaxDistanceKm float64 `json:"max_distance_km"`
}

// Supplier is the engine-side view of a waste generator.
type Supplier struct {
	FactoryID      string      `json:"factory_id"`
	FactoryName    string      `json:"factory_name"`
	Industry       string      `json:"industry"`
	Location       *LatLon     `json:"location"`
	WasteOutput    WasteOutput `json:"waste_output"`
	Certifications []string    `json:"certifications"`
}

// Receiver is the engine-side view of a material consumer.
type Receiver struct {
	FactoryID              string              `json:"factory_id"`
	FactoryName            string              `json:"factory_name"`
	Industry               string              `json:"industry"`
	Location               *LatLon             `json:"location"`
	MaterialRequirement    MaterialRequirement `json:"material_requirement"`
	Logistics              Logistics           `json:"logistics"`
	CertificationsRequired []string            `json:"certifications_required"`
}

// Scores breaks a match's compatibility down by component. The component
// scores are in [0,1]; the composite is scaled to [0,100].
type Scores struct {
	Material      float64 `json:"material_score"`
	Distance      float64 `json:"distance_score"`
	Quantity      float64 `json:"quantity_score"`
	Compatibility float64 `json:"compatibility_score"`
}

// Economics quantifies cost and CO2 outcomes of executing a match.
type Economics struct {
	MatchedQuantityTons float64 `json:"matched_quantity_tons"`
	TransportCost       float64 `json:"transport_cost"`
	TotalCost           float64 `json:"total_cost"`
	CO2SavedKg          float64 `json:"co2_saved_kg"`
	EcoEfficiencyScore  float64 `json:"eco_efficiency_score"`
}

// Match is one ranked supplier/receiver pairing.
type Match struct {
	SupplierID    string    `json:"supplier_id"`
	SupplierName  string    `json:"supplier_name"`
	ReceiverID    string    `json:"receiver_id"`
	ReceiverName  string    `json:"receiver_name"`
	MaterialType  string    `json:"material_type"`
	DistanceKm    float64   `json:"distance_km"`
	MaxDistanceKm float64   `json:"max_distance_km"`
	Scores        Scores    `json:"scores"`
	Economics     Economics `json:"economics"`
}

// CycleEdge is one hop of an evaluated circular-economy loop.
type CycleEdge struct {
	From               string  `json:"from"`
	To                 string  `json:"to"`
	CompatibilityScore float64 `json:"compatibility_score"`
	EcoEfficiencyScore float64 `json:"eco_efficiency_score"`
}

// CycleReport is an evaluated loop of high-scoring matches.
type CycleReport struct {
	CycleNodes                  []string    `json:"cycle_nodes"`
	Edges                       []CycleEdge `json:"edges"`
	AggregateTotalCost          float64     `json:"aggregate_total_cost"`
	AggregateCO2SavedKg         float64     `json:"aggregate_co2_saved_kg"`
	AggregateEcoEfficiencyScore float64     `json:"aggregate_eco_efficiency_score"`
}

// MatchResponse is the engine's output envelope.
type MatchResponse struct {
	RankedMatches  []Match       `json:"ranked_matches"`
	DetectedCycles []CycleReport `json:"detected_cycles"`
}
