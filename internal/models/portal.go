package models

import (
	"encoding/json"
	"fmt"
)

// Role represents the part a factory plays in a material exchange.
type Role string

const (
	RoleGenerator Role = "Waste Generator"
	RoleReceiver  Role = "Receiver"
)

// IsValid checks if the role is one of the two portal roles
func (r Role) IsValid() bool {
	return r == RoleGenerator || r == RoleReceiver
}

// Location is a union of the two shapes the portal accepts: a free-text
// address or a {lat, lon} pair.
type Location struct {
	Text string
	Lat  *float64
	Lon  *float64
}

// HasCoords reports whether both coordinates are present.
func (l Location) HasCoords() bool {
	return l.Lat != nil && l.Lon != nil
}

// IsZero reports whether neither a text address nor coordinates were given.
func (l Location) IsZero() bool {
	return l.Text == "" && !l.HasCoords()
}

// MarshalJSON encodes coordinates as {"lat","lon"} when present, otherwise
// the text address as a JSON string.
func (l Location) MarshalJSON() ([]byte, error) {
	if l.HasCoords() {
		return json.Marshal(map[string]float64{"lat": *l.Lat, "lon": *l.Lon})
	}
	return json.Marshal(l.Text)
}

// UnmarshalJSON accepts either a JSON string or a {"lat","lon"} object.
func (l *Location) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*l = Location{Text: text}
		return nil
	}
	var obj struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("location must be a string or a lat/lon object: %w", err)
	}
	if obj.Lat == nil || obj.Lon == nil {
		return fmt.Errorf("location object requires both lat and lon")
	}
	*l = Location{Lat: obj.Lat, Lon: obj.Lon}
	return nil
}

// Storage splits the location into the columns it is persisted as.
func (l Location) Storage() (text *string, lat, lon *float64) {
	if l.HasCoords() {
		return nil, l.Lat, l.Lon
	}
	if l.Text != "" {
		t := l.Text
		return &t, nil, nil
	}
	return nil, nil, nil
}

// CommonInfo is the shared identity section of every portal record. Field
// names on the wire match the portal form labels.
type CommonInfo struct {
	FactoryName        string   `json:"Factory Name"`
	IndustryType       string   `json:"Industry Type"`
	Email              string   `json:"Email"`
	Location           Location `json:"Location"`
	ProductionCapacity string   `json:"Production Capacity,omitempty"`
	Certification      string   `json:"Certification,omitempty"`
	SustainabilityGoal string   `json:"Sustainability Goal,omitempty"`
	FactoryType        string   `json:"Factory Type,omitempty"`
}

// GeneratorDetails describes a factory's waste output.
type GeneratorDetails struct {
	WasteCategory         string   `json:"Waste Category,omitempty"`
	WasteTypeName         string   `json:"Waste Type Name,omitempty"`
	WasteComposition      string   `json:"Waste Composition,omitempty"`
	WasteProperties       []string `json:"Waste Properties,omitempty"`
	QuantityGenerated     string   `json:"Quantity Generated,omitempty"`
	FrequencyOfGeneration string   `json:"Frequency of Generation,omitempty"`
	StorageCondition      string   `json:"Storage Condition,omitempty"`
	DisposalCost          string   `json:"Disposal Cost,omitempty"`
	HazardRating          string   `json:"Certification / Hazard Rating,omitempty"`
	PreferredBuyerType    string   `json:"Preferred Buyer Type,omitempty"`
}

// ReceiverDetails describes a factory's raw-material need.
type ReceiverDetails struct {
	RawMaterialName        string   `json:"Raw Material Name,omitempty"`
	RawMaterialCategory    string   `json:"Raw Material Category,omitempty"`
	RequiredComposition    string   `json:"Required Chemical Composition,omitempty"`
	RequiredProperties     []string `json:"Required Physical Properties,omitempty"`
	MinimumPurityLevel     string   `json:"Minimum Purity Level,omitempty"`
	ContaminantTolerance   string   `json:"Contaminant Tolerance,omitempty"`
	FormOfMaterialNeeded   string   `json:"Form of Material Needed,omitempty"`
	ParticleSizeViscosity  string   `json:"Particle Size / Viscosity,omitempty"`
	TemperatureRequirement string   `json:"Temperature Requirement,omitempty"`
	OdorColorTolerance     string   `json:"Odor or Color Tolerance,omitempty"`
	QuantityRequired       string   `json:"Quantity Required,omitempty"`
	FrequencyOfRequirement string   `json:"Frequency of Requirement,omitempty"`
	QualityToleranceRange  string   `json:"Quality Tolerance Range,omitempty"`
	BudgetPerTon           string   `json:"Budget per Ton,omitempty"`
	ContractType           string   `json:"Contract Type,omitempty"`
	CertificationNeeded    string   `json:"Certification Needed,omitempty"`
	MaxDistanceKm          float64  `json:"Max Distance (km),omitempty"`
}

// PortalRecord is a role-tagged record submitted by the portal. A record
// carries at most one of the two detail sections; a factory holding both
// roles is represented as two sibling records sharing the same common core.
type PortalRecord struct {
	FactoryID string            `json:"Factory ID,omitempty"`
	Common    CommonInfo        `json:"COMMON"`
	Generator *GeneratorDetails `json:"GENERATOR,omitempty"`
	Receiver  *ReceiverDetails  `json:"RECEIVER,omitempty"`
}

// FactorySubmission is the wizard payload for POST /api/factories/full.
type FactorySubmission struct {
	Common    CommonInfo        `json:"common"`
	Generator *GeneratorDetails `json:"generator"`
	Receiver  *ReceiverDetails  `json:"receiver"`
	Roles     []Role            `json:"roles"`
}
