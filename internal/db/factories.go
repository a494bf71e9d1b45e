package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/matcheco/matcheco/backend/portal-service/internal/models"
	"github.com/matcheco/matcheco/backend/portal-service/internal/portal"
)

func csvJoin(items []string) string {
	return strings.Join(items, ",")
}

func csvList(s *string) []string {
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

// InsertSnapshot stores a raw wizard snapshot for the user and returns the
// new row.
func (db *Database) InsertSnapshot(ctx context.Context, userID int64, records json.RawMessage) (*models.SnapshotRow, error) {
	row := &models.SnapshotRow{Records: records}
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO factory_records (user_id, payload) VALUES ($1, $2)
		 RETURNING id, created_at`,
		userID, string(records),
	).Scan(&row.ID, &row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return row, nil
}

// CreateFactory inserts the common row plus the selected detail rows in one
// transaction.
func (db *Database) CreateFactory(ctx context.Context, userID int64, sub models.FactorySubmission) (int64, time.Time, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	locText, locLat, locLon := sub.Common.Location.Storage()

	roleStrs := make([]string, len(sub.Roles))
	for i, r := range sub.Roles {
		roleStrs[i] = string(r)
	}

	var factoryID int64
	var createdAt time.Time
	err = tx.QueryRow(ctx,
		`INSERT INTO factories (
			user_id, factory_name, industry_type, email,
			location_text, location_lat, location_lon,
			production_capacity, certification, sustainability_goal, roles_csv
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`,
		userID, sub.Common.FactoryName, sub.Common.IndustryType, sub.Common.Email,
		locText, locLat, locLon,
		sub.Common.ProductionCapacity, sub.Common.Certification, sub.Common.SustainabilityGoal,
		csvJoin(roleStrs),
	).Scan(&factoryID, &createdAt)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to insert factory: %w", err)
	}

	if g := sub.Generator; g != nil {
		_, err = tx.Exec(ctx,
			`INSERT INTO factory_generator (
				factory_id, waste_category, waste_type_name, waste_composition,
				waste_properties, quantity_generated, frequency_generation,
				storage_condition, disposal_cost, hazard_rating, preferred_buyer
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			factoryID, g.WasteCategory, g.WasteTypeName, g.WasteComposition,
			csvJoin(g.WasteProperties), g.QuantityGenerated, g.FrequencyOfGeneration,
			g.StorageCondition, g.DisposalCost, g.HazardRating, g.PreferredBuyerType,
		)
		if err != nil {
			return 0, time.Time{}, fmt.Errorf("failed to insert generator details: %w", err)
		}
	}

	if r := sub.Receiver; r != nil {
		_, err = tx.Exec(ctx,
			`INSERT INTO factory_receiver (
				factory_id, raw_material_name, raw_material_category,
				required_composition, required_properties, min_purity,
				contaminant_tolerance, form_needed, particle_size,
				temperature_req, odor_color, quantity_required,
				frequency_requirement, quality_tolerance, budget_per_ton,
				contract_type, certification_needed, max_distance_km
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
			factoryID, r.RawMaterialName, r.RawMaterialCategory,
			r.RequiredComposition, csvJoin(r.RequiredProperties), r.MinimumPurityLevel,
			r.ContaminantTolerance, r.FormOfMaterialNeeded, r.ParticleSizeViscosity,
			r.TemperatureRequirement, r.OdorColorTolerance, r.QuantityRequired,
			r.FrequencyOfRequirement, r.QualityToleranceRange, r.BudgetPerTon,
			r.ContractType, r.CertificationNeeded, r.MaxDistanceKm,
		)
		if err != nil {
			return 0, time.Time{}, fmt.Errorf("failed to insert receiver details: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to commit factory: %w", err)
	}
	return factoryID, createdAt, nil
}

// DeleteFactory removes a factory the user owns along with its detail rows.
// Returns false when the factory does not exist or belongs to someone else.
func (db *Database) DeleteFactory(ctx context.Context, userID, factoryID int64) (bool, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var owned int64
	err = tx.QueryRow(ctx,
		`SELECT id FROM factories WHERE id = $1 AND user_id = $2`, factoryID, userID,
	).Scan(&owned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check factory ownership: %w", err)
	}

	// Children first to satisfy the foreign keys.
	if _, err := tx.Exec(ctx, `DELETE FROM factory_generator WHERE factory_id = $1`, factoryID); err != nil {
		return false, fmt.Errorf("failed to delete generator details: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM factory_receiver WHERE factory_id = $1`, factoryID); err != nil {
		return false, fmt.Errorf("failed to delete receiver details: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM conversation_participants WHERE factory_id = $1`, factoryID); err != nil {
		return false, fmt.Errorf("failed to delete conversation links: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM factories WHERE id = $1`, factoryID); err != nil {
		return false, fmt.Errorf("failed to delete factory: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit delete: %w", err)
	}
	return true, nil
}

// ListSnapshots returns the user's raw wizard snapshots, newest first.
func (db *Database) ListSnapshots(ctx context.Context, userID int64) ([]models.SnapshotRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, payload, created_at FROM factory_records
		 WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []models.SnapshotRow
	for rows.Next() {
		var row models.SnapshotRow
		var payload string
		if err := rows.Scan(&row.ID, &payload, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		row.Records = json.RawMessage(payload)
		out = append(out, row)
	}
	return out, rows.Err()
}

// ListFactories returns the user's normalized factory entries, newest first.
func (db *Database) ListFactories(ctx context.Context, userID int64) ([]models.FactoryListing, error) {
	return db.collectListings(ctx, false, userID)
}

func locationFromColumns(text *string, lat, lon *float64) models.Location {
	if lat != nil && lon != nil {
		return models.Location{Lat: lat, Lon: lon}
	}
	return models.Location{Text: deref(text)}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (db *Database) generatorDetails(ctx context.Context, factoryID int64) (*models.GeneratorDetails, error) {
	var props *string
	var wasteCategory, wasteTypeName, wasteComposition, quantityGenerated,
		frequencyGeneration, storageCondition, disposalCost, hazardRating, preferredBuyer *string
	err := db.Pool.QueryRow(ctx,
		`SELECT waste_category, waste_type_name, waste_composition, waste_properties,
		        quantity_generated, frequency_generation, storage_condition,
		        disposal_cost, hazard_rating, preferred_buyer
		 FROM factory_generator WHERE factory_id = $1 LIMIT 1`, factoryID,
	).Scan(&wasteCategory, &wasteTypeName, &wasteComposition, &props,
		&quantityGenerated, &frequencyGeneration, &storageCondition,
		&disposalCost, &hazardRating, &preferredBuyer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load generator details: %w", err)
	}
	g := models.GeneratorDetails{
		WasteCategory:         deref(wasteCategory),
		WasteTypeName:         deref(wasteTypeName),
		WasteComposition:      deref(wasteComposition),
		WasteProperties:       csvList(props),
		QuantityGenerated:     deref(quantityGenerated),
		FrequencyOfGeneration: deref(frequencyGeneration),
		StorageCondition:      deref(storageCondition),
		DisposalCost:          deref(disposalCost),
		HazardRating:          deref(hazardRating),
		PreferredBuyerType:    deref(preferredBuyer),
	}
	return &g, nil
}

func (db *Database) receiverDetails(ctx context.Context, factoryID int64) (*models.ReceiverDetails, error) {
	var (
		props   *string
		maxDist *float64
	)
	var rawMaterialName, rawMaterialCategory, requiredComposition, minPurity,
		contaminantTolerance, formNeeded, particleSize, temperatureReq, odorColor,
		quantityRequired, frequencyRequirement, qualityTolerance, budgetPerTon,
		contractType, certificationNeeded *string
	err := db.Pool.QueryRow(ctx,
		`SELECT raw_material_name, raw_material_category, required_composition,
		        required_properties, min_purity, contaminant_tolerance,
		        form_needed, particle_size, temperature_req, odor_color,
		        quantity_required, frequency_requirement, quality_tolerance,
		        budget_per_ton, contract_type, certification_needed, max_distance_km
		 FROM factory_receiver WHERE factory_id = $1 LIMIT 1`, factoryID,
	).Scan(&rawMaterialName, &rawMaterialCategory, &requiredComposition,
		&props, &minPurity, &contaminantTolerance,
		&formNeeded, &particleSize, &temperatureReq, &odorColor,
		&quantityRequired, &frequencyRequirement, &qualityTolerance,
		&budgetPerTon, &contractType, &certificationNeeded, &maxDist)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load receiver details: %w", err)
	}
	r := models.ReceiverDetails{
		RawMaterialName:        deref(rawMaterialName),
		RawMaterialCategory:    deref(rawMaterialCategory),
		RequiredComposition:    deref(requiredComposition),
		RequiredProperties:     csvList(props),
		MinimumPurityLevel:     deref(minPurity),
		ContaminantTolerance:   deref(contaminantTolerance),
		FormOfMaterialNeeded:   deref(formNeeded),
		ParticleSizeViscosity:  deref(particleSize),
		TemperatureRequirement: deref(temperatureReq),
		OdorColorTolerance:     deref(odorColor),
		QuantityRequired:       deref(quantityRequired),
		FrequencyOfRequirement: deref(frequencyRequirement),
		QualityToleranceRange:  deref(qualityTolerance),
		BudgetPerTon:           deref(budgetPerTon),
		ContractType:           deref(contractType),
		CertificationNeeded:    deref(certificationNeeded),
	}
	if maxDist != nil {
		r.MaxDistanceKm = *maxDist
	}
	return &r, nil
}

// CollectPortalRecords builds role-tagged records from the normalized
// tables for the matcher: one record per generator row and one per
// receiver row.
func (db *Database) CollectPortalRecords(ctx context.Context, includeAllUsers bool, userID int64) ([]models.PortalRecord, error) {
	listings, err := db.collectListings(ctx, includeAllUsers, userID)
	if err != nil {
		return nil, err
	}

	return portalRecords(listings), nil
}

// portalRecords composes role-tagged records from listings. The detail
// rows are authoritative for which roles a factory exercises; roles_csv
// is display metadata and may lag behind.
func portalRecords(listings []models.FactoryListing) []models.PortalRecord {
	var records []models.PortalRecord
	for _, l := range listings {
		var roles []models.Role
		if l.Generator != nil {
			roles = append(roles, models.RoleGenerator)
		}
		if l.Receiver != nil {
			roles = append(roles, models.RoleReceiver)
		}
		composed, _ := portal.Compose(l.Common, l.Generator, l.Receiver, roles)
		for i := range composed {
			composed[i].FactoryID = fmt.Sprintf("%d", l.ID)
		}
		records = append(records, composed...)
	}
	return records
}

func (db *Database) collectListings(ctx context.Context, includeAllUsers bool, userID int64) ([]models.FactoryListing, error) {
	query := `SELECT id, factory_name, industry_type, email,
	                 location_text, location_lat, location_lon,
	                 production_capacity, certification, sustainability_goal,
	                 roles_csv, created_at
	          FROM factories`
	var args []any
	if !includeAllUsers {
		query += ` WHERE user_id = $1`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC`
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to collect factories: %w", err)
	}
	defer rows.Close()

	var out []models.FactoryListing
	for rows.Next() {
		var (
			listing  models.FactoryListing
			locText  *string
			locLat   *float64
			locLon   *float64
			prodCap  *string
			cert     *string
			goal     *string
			rolesCSV *string
		)
		if err := rows.Scan(
			&listing.ID, &listing.Common.FactoryName, &listing.Common.IndustryType, &listing.Common.Email,
			&locText, &locLat, &locLon,
			&prodCap, &cert, &goal,
			&rolesCSV, &listing.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan factory: %w", err)
		}
		listing.Common.Location = locationFromColumns(locText, locLat, locLon)
		listing.Common.ProductionCapacity = deref(prodCap)
		listing.Common.Certification = deref(cert)
		listing.Common.SustainabilityGoal = deref(goal)
		for _, role := range csvList(rolesCSV) {
			listing.Roles = append(listing.Roles, models.Role(role))
		}
		out = append(out, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		gen, err := db.generatorDetails(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		recv, err := db.receiverDetails(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Generator = gen
		out[i].Receiver = recv
	}
	return out, nil
}

const materialCommonCols = `
	f.id AS factory_id,
	f.user_id,
	f.factory_name,
	f.industry_type,
	f.email,
	f.location_text,
	f.location_lat,
	f.location_lon,
	f.production_capacity,
	f.certification,
	f.sustainability_goal,
	f.roles_csv,
	f.created_at`

// CollectMaterialsFull returns one row per material with all details:
// receiver rows first, then generator rows, matching the listing the
// frontend renders.
func (db *Database) CollectMaterialsFull(ctx context.Context, includeAllUsers bool, userID int64) ([]models.MaterialRow, error) {
	where := ""
	var args []any
	if !includeAllUsers {
		where = "WHERE f.user_id = $1"
		args = append(args, userID)
	}

	recvQuery := fmt.Sprintf(`
		SELECT %s,
			r.id AS receiver_id,
			r.raw_material_name, r.raw_material_category, r.required_composition,
			r.required_properties, r.min_purity, r.contaminant_tolerance,
			r.form_needed, r.particle_size, r.temperature_req, r.odor_color,
			r.quantity_required, r.frequency_requirement, r.quality_tolerance,
			r.budget_per_ton, r.contract_type, r.certification_needed, r.max_distance_km
		FROM factories f
		JOIN factory_receiver r ON r.factory_id = f.id
		%s`, materialCommonCols, where)

	genQuery := fmt.Sprintf(`
		SELECT %s,
			g.id AS generator_id,
			g.waste_category, g.waste_type_name, g.waste_composition,
			g.waste_properties, g.quantity_generated, g.frequency_generation,
			g.storage_condition, g.disposal_cost, g.hazard_rating, g.preferred_buyer
		FROM factories f
		JOIN factory_generator g ON g.factory_id = f.id
		%s`, materialCommonCols, where)

	var out []models.MaterialRow

	rows, err := db.Pool.Query(ctx, recvQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to collect receiver materials: %w", err)
	}
	for rows.Next() {
		var (
			m     models.MaterialRow
			props *string
		)
		if err := rows.Scan(
			&m.FactoryID, &m.UserID, &m.FactoryName, &m.IndustryType, &m.Email,
			&m.LocationText, &m.LocationLat, &m.LocationLon,
			&m.ProductionCapacity, &m.Certification, &m.SustainabilityGoal,
			&m.RolesCSV, &m.CreatedAt,
			&m.ReceiverID,
			&m.RawMaterialName, &m.RawMaterialCategory, &m.RequiredComposition,
			&props, &m.MinPurity, &m.ContaminantTolerance,
			&m.FormNeeded, &m.ParticleSize, &m.TemperatureReq, &m.OdorColor,
			&m.QuantityRequired, &m.FrequencyRequirement, &m.QualityTolerance,
			&m.BudgetPerTon, &m.ContractType, &m.CertificationNeeded, &m.MaxDistanceKm,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan receiver material: %w", err)
		}
		m.Role = models.MaterialRoleReceiver
		m.RequiredProperties = csvList(props)
		out = append(out, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Pool.Query(ctx, genQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to collect generator materials: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			m     models.MaterialRow
			props *string
		)
		if err := rows.Scan(
			&m.FactoryID, &m.UserID, &m.FactoryName, &m.IndustryType, &m.Email,
			&m.LocationText, &m.LocationLat, &m.LocationLon,
			&m.ProductionCapacity, &m.Certification, &m.SustainabilityGoal,
			&m.RolesCSV, &m.CreatedAt,
			&m.GeneratorID,
			&m.WasteCategory, &m.WasteTypeName, &m.WasteComposition,
			&props, &m.QuantityGenerated, &m.FrequencyGeneration,
			&m.StorageCondition, &m.DisposalCost, &m.HazardRating, &m.PreferredBuyer,
		); err != nil {
			return nil, fmt.Errorf("failed to scan generator material: %w", err)
		}
		m.Role = models.MaterialRoleGenerator
		m.WasteProperties = csvList(props)
		out = append(out, m)
	}
	return out, rows.Err()
}

// MaterialEdges joins generator outputs against receiver needs on
// normalized material-name equality. onlyDemo restricts the join to the
// seeded DEMO-% factories.
func (db *Database) MaterialEdges(ctx context.Context, onlyDemo bool) ([]models.MaterialEdge, error) {
	query := `
		SELECT gf.id, gf.factory_name, rf.id, rf.factory_name, LOWER(TRIM(g.waste_type_name))
		FROM factory_generator g
		JOIN factories gf ON gf.id = g.factory_id
		JOIN factory_receiver r
		  ON LOWER(TRIM(r.raw_material_name)) = LOWER(TRIM(g.waste_type_name))
		JOIN factories rf ON rf.id = r.factory_id
		WHERE g.waste_type_name IS NOT NULL AND TRIM(g.waste_type_name) <> ''
		  AND gf.id <> rf.id`
	if onlyDemo {
		query += ` AND gf.factory_name LIKE 'DEMO-%' AND rf.factory_name LIKE 'DEMO-%'`
	}
	query += ` ORDER BY gf.id, rf.id`

	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query material edges: %w", err)
	}
	defer rows.Close()

	var out []models.MaterialEdge
	for rows.Next() {
		var e models.MaterialEdge
		var material *string
		if err := rows.Scan(&e.FromID, &e.FromName, &e.ToID, &e.ToName, &material); err != nil {
			return nil, fmt.Errorf("failed to scan material edge: %w", err)
		}
		e.Material = deref(material)
		out = append(out, e)
	}
	return out, rows.Err()
}
