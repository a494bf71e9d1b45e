package db

import (
	"context"
	"fmt"

	"github.com/matcheco/matcheco/backend/portal-service/internal/models"
)

// SeedDemoCycle seeds three factories (DEMO-A, DEMO-B, DEMO-C) linked so
// that A supplies B, B supplies C, and C supplies A. With reset, previous
// DEMO-% rows are removed first. Returns the new factory IDs by name.
func (db *Database) SeedDemoCycle(ctx context.Context, userID int64, reset bool) (map[string]int64, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if reset {
		// children first, then the parent rows
		if _, err := tx.Exec(ctx,
			`DELETE FROM factory_generator
			 WHERE factory_id IN (SELECT id FROM factories WHERE factory_name LIKE 'DEMO-%')`); err != nil {
			return nil, fmt.Errorf("failed to reset demo generators: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM factory_receiver
			 WHERE factory_id IN (SELECT id FROM factories WHERE factory_name LIKE 'DEMO-%')`); err != nil {
			return nil, fmt.Errorf("failed to reset demo receivers: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM conversation_participants
			 WHERE factory_id IN (SELECT id FROM factories WHERE factory_name LIKE 'DEMO-%')`); err != nil {
			return nil, fmt.Errorf("failed to reset demo conversations: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM factories WHERE factory_name LIKE 'DEMO-%'`); err != nil {
			return nil, fmt.Errorf("failed to reset demo factories: %w", err)
		}
	}

	demoFactories := []struct {
		name     string
		industry string
		email    string
	}{
		{"DEMO-A", "Metal", "demo-a@example.com"},
		{"DEMO-B", "Plastic", "demo-b@example.com"},
		{"DEMO-C", "Paper", "demo-c@example.com"},
	}

	ids := make(map[string]int64, len(demoFactories))
	for _, f := range demoFactories {
		var id int64
		err := tx.QueryRow(ctx,
			`INSERT INTO factories (
				user_id, factory_name, industry_type, email,
				location_text, production_capacity, certification, sustainability_goal, roles_csv
			) VALUES ($1, $2, $3, $4, $5, 'Medium', '', '', $6)
			RETURNING id`,
			userID, f.name, f.industry, f.email, f.name+" City",
			string(models.RoleGenerator)+","+string(models.RoleReceiver),
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to seed factory %s: %w", f.name, err)
		}
		ids[f.name] = id
	}

	type genSeed struct {
		factory     string
		category    string
		typeName    string
		composition string
		properties  string
		quantity    string
		frequency   string
		hazard      string
		buyer       string
	}
	type recvSeed struct {
		factory     string
		name        string
		category    string
		composition string
		properties  string
		purity      string
		contaminant string
		form        string
		particle    string
		quantity    string
		frequency   string
		tolerance   string
		budget      string
		contract    string
		cert        string
		maxDistance float64
	}

	gens := []genSeed{
		{"DEMO-A", "Metal", "Metal Scrap", "Fe", "High Density", "100 t/wk", "Weekly", "Low", "Foundries"},
		{"DEMO-B", "Plastic", "Plastic Flakes", "HDPE", "Low Moisture", "80 t/wk", "Weekly", "Non-hazardous", "Recyclers"},
		{"DEMO-C", "Paper", "Paper Waste", "Cellulose", "Dry", "120 t/wk", "Weekly", "Non-hazardous", "Paper Mills"},
	}
	recvs := []recvSeed{
		{"DEMO-B", "Metal Scrap", "Metal", "Fe>=80%", "High Density", "80%", "<10%", "Solid", "10mm",
			"100 t/wk", "Weekly", "±5%", "₹1500", "Recurring", "BIS", 200},
		{"DEMO-C", "Plastic Flakes", "Plastic", "HDPE", "Low Moisture", "90%", "<5%", "Flakes", "",
			"70 t/wk", "Weekly", "±2%", "₹2200", "Recurring", "", 250},
		{"DEMO-A", "Paper Waste", "Paper", "Cellulose", "Dry", "70%", "<10%", "Bales", "",
			"100 t/wk", "Weekly", "±10%", "₹800", "Recurring", "", 150},
	}

	for _, g := range gens {
		if _, err := tx.Exec(ctx,
			`INSERT INTO factory_generator (
				factory_id, waste_category, waste_type_name, waste_composition,
				waste_properties, quantity_generated, frequency_generation,
				storage_condition, disposal_cost, hazard_rating, preferred_buyer
			) VALUES ($1, $2, $3, $4, $5, $6, $7, '', '', $8, $9)`,
			ids[g.factory], g.category, g.typeName, g.composition,
			g.properties, g.quantity, g.frequency, g.hazard, g.buyer,
		); err != nil {
			return nil, fmt.Errorf("failed to seed generator for %s: %w", g.factory, err)
		}
	}
	for _, r := range recvs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO factory_receiver (
				factory_id, raw_material_name, raw_material_category,
				required_composition, required_properties, min_purity,
				contaminant_tolerance, form_needed, particle_size,
				temperature_req, odor_color, quantity_required,
				frequency_requirement, quality_tolerance, budget_per_ton,
				contract_type, certification_needed, max_distance_km
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '', '', $10, $11, $12, $13, $14, $15, $16)`,
			ids[r.factory], r.name, r.category,
			r.composition, r.properties, r.purity,
			r.contaminant, r.form, r.particle,
			r.quantity, r.frequency, r.tolerance, r.budget,
			r.contract, r.cert, r.maxDistance,
		); err != nil {
			return nil, fmt.Errorf("failed to seed receiver for %s: %w", r.factory, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit demo seed: %w", err)
	}
	return ids, nil
}
