package models

import (
	"encoding/json"
	"time"
)

// Material roles as reported by the denormalized materials projection.
const (
	MaterialRoleGenerator = "GENERATOR"
	MaterialRoleReceiver  = "RECEIVER"
)

// MaterialRow is one denormalized row of the materials projection: the
// factory's common columns joined with either its generator or its receiver
// detail, tagged by Role. The unused detail side is nil.
type MaterialRow struct {
	FactoryID          int64     `json:"factory_id"`
	UserID             int64     `json:"user_id"`
	FactoryName        string    `json:"factory_name"`
	IndustryType       string    `json:"industry_type"`
	Email              string    `json:"email"`
	LocationText       *string   `json:"location_text"`
	LocationLat        *float64  `json:"location_lat"`
	LocationLon        *float64  `json:"location_lon"`
	ProductionCapacity *string   `json:"production_capacity"`
	Certification      *string   `json:"certification"`
	SustainabilityGoal *string   `json:"sustainability_goal"`
	RolesCSV           *string   `json:"roles_csv"`
	CreatedAt          time.Time `json:"created_at"`

	Role string `json:"role"`

	// Receiver detail (nil on generator rows)
	ReceiverID             *int64   `json:"receiver_id"`
	RawMaterialName        *string  `json:"raw_material_name"`
	RawMaterialCategory    *string  `json:"raw_material_category"`
	RequiredComposition    *string  `json:"required_composition"`
	RequiredProperties     []string `json:"required_properties,omitempty"`
	MinPurity              *string  `json:"min_purity"`
	ContaminantTolerance   *string  `json:"contaminant_tolerance"`
	FormNeeded             *string  `json:"form_needed"`
	ParticleSize           *string  `json:"particle_size"`
	TemperatureReq         *string  `json:"temperature_req"`
	OdorColor              *string  `json:"odor_color"`
	QuantityRequired       *string  `json:"quantity_required"`
	FrequencyRequirement   *string  `json:"frequency_requirement"`
	QualityTolerance       *string  `json:"quality_tolerance"`
	BudgetPerTon           *string  `json:"budget_per_ton"`
	ContractType           *string  `json:"contract_type"`
	CertificationNeeded    *string  `json:"certification_needed"`
	MaxDistanceKm          *float64 `json:"max_distance_km"`

	// Generator detail (nil on receiver rows)
	GeneratorID         *int64   `json:"generator_id"`
	WasteCategory       *string  `json:"waste_category"`
	WasteTypeName       *string  `json:"waste_type_name"`
	WasteComposition    *string  `json:"waste_composition"`
	WasteProperties     []string `json:"waste_properties,omitempty"`
	QuantityGenerated   *string  `json:"quantity_generated"`
	FrequencyGeneration *string  `json:"frequency_generation"`
	StorageCondition    *string  `json:"storage_condition"`
	DisposalCost        *string  `json:"disposal_cost"`
	HazardRating        *string  `json:"hazard_rating"`
	PreferredBuyer      *string  `json:"preferred_buyer"`
}

// MaterialName returns the row's material: the required input for receiver
// rows, the waste output for generator rows.
func (m MaterialRow) MaterialName() string {
	if m.RawMaterialName != nil && *m.RawMaterialName != "" {
		return *m.RawMaterialName
	}
	if m.WasteTypeName != nil {
		return *m.WasteTypeName
	}
	return ""
}

// MaterialCategory mirrors MaterialName for the category columns.
func (m MaterialRow) MaterialCategory() string {
	if m.RawMaterialCategory != nil && *m.RawMaterialCategory != "" {
		return *m.RawMaterialCategory
	}
	if m.WasteCategory != nil {
		return *m.WasteCategory
	}
	return ""
}

// MaterialSummary is the short projection of a MaterialRow used by the
// matching endpoints.
type MaterialSummary struct {
	FactoryID    int64     `json:"factory_id"`
	FactoryName  string    `json:"factory_name"`
	IndustryType string    `json:"industry_type"`
	Location     *string   `json:"location"`
	LocationLat  *float64  `json:"location_lat"`
	LocationLon  *float64  `json:"location_lon"`
	Role         string    `json:"role"`
	Material     string    `json:"material"`
	Category     string    `json:"category"`
	CreatedAt    time.Time `json:"created_at"`
}

// Summary projects the row into its short form.
func (m MaterialRow) Summary() MaterialSummary {
	return MaterialSummary{
		FactoryID:    m.FactoryID,
		FactoryName:  m.FactoryName,
		IndustryType: m.IndustryType,
		Location:     m.LocationText,
		LocationLat:  m.LocationLat,
		LocationLon:  m.LocationLon,
		Role:         m.Role,
		Material:     m.MaterialName(),
		Category:     m.MaterialCategory(),
		CreatedAt:    m.CreatedAt,
	}
}

// MaterialEdge is one generator→receiver link discovered by joining waste
// outputs against material needs on normalized name equality.
type MaterialEdge struct {
	FromID   int64  `json:"-"`
	FromName string `json:"from"`
	ToID     int64  `json:"-"`
	ToName   string `json:"to"`
	Material string `json:"material"`
}

// FactoryListing is one normalized entry of GET /api/waste-materials.
type FactoryListing struct {
	ID        int64             `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Common    CommonInfo        `json:"common"`
	Generator *GeneratorDetails `json:"generator"`
	Receiver  *ReceiverDetails  `json:"receiver"`
	Roles     []Role            `json:"roles"`
}

// SnapshotRow is one legacy snapshot entry of GET /api/waste-materials.
type SnapshotRow struct {
	ID        int64           `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Records   json.RawMessage `json:"records"`
}
