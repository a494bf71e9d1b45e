package portal

import (
	"reflect"
	"testing"

	"github.com/matcheco/matcheco/backend/portal-service/internal/models"
)

func TestComposeBothRoles(t *testing.T) {
	common := models.CommonInfo{FactoryName: "Alpha Steel", IndustryType: "Steel", Email: "ops@alpha.example"}
	gen := &models.GeneratorDetails{WasteTypeName: "Slag", QuantityGenerated: "100 tons"}
	recv := &models.ReceiverDetails{RawMaterialName: "Fly Ash", QuantityRequired: "50 tons"}

	records, skipped := Compose(common, gen, recv, []models.Role{models.RoleGenerator, models.RoleReceiver})
	if len(skipped) != 0 {
		t.Fatalf("expected no skipped roles, got %v", skipped)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Generator == nil || records[0].Receiver != nil {
		t.Errorf("first record should carry only the generator section")
	}
	if records[0].Common.FactoryType != string(models.RoleGenerator) {
		t.Errorf("generator record factory type = %q", records[0].Common.FactoryType)
	}
	if records[1].Receiver == nil || records[1].Generator != nil {
		t.Errorf("second record should carry only the receiver section")
	}
	if records[1].Common.FactoryType != string(models.RoleReceiver) {
		t.Errorf("receiver record factory type = %q", records[1].Common.FactoryType)
	}
	if records[0].Common.FactoryName != "Alpha Steel" || records[1].Common.FactoryName != "Alpha Steel" {
		t.Errorf("common section not copied into both records")
	}
}

func TestComposeSkipsRoleWithoutDetails(t *testing.T) {
	common := models.CommonInfo{FactoryName: "Beta Cement"}
	records, skipped := Compose(common, nil, &models.ReceiverDetails{RawMaterialName: "Fly Ash"},
		[]models.Role{models.RoleGenerator, models.RoleReceiver})
	if len(records) != 1 || records[0].Receiver == nil {
		t.Fatalf("expected one receiver record, got %+v", records)
	}
	if len(skipped) != 1 || skipped[0] != models.RoleGenerator {
		t.Errorf("expected generator role reported as skipped, got %v", skipped)
	}
}

func TestComposeUnselectedRole(t *testing.T) {
	records, skipped := Compose(models.CommonInfo{FactoryName: "Gamma"}, &models.GeneratorDetails{WasteTypeName: "Scrap"}, nil,
		[]models.Role{models.RoleGenerator})
	if len(records) != 1 || len(skipped) != 0 {
		t.Fatalf("expected one record and nothing skipped, got %d records, skipped %v", len(records), skipped)
	}
}

func TestFlattenNestedObjects(t *testing.T) {
	in := map[string]any{
		"a": map[string]any{
			"b": 1,
			"c": map[string]any{"d": 2},
		},
		"e": "x",
	}
	got := Flatten(in, "")
	want := map[string]any{"a.b": 1, "a.c.d": 2, "e": "x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten = %v, want %v", got, want)
	}
}

func TestFlattenStoresArraysWhole(t *testing.T) {
	in := map[string]any{"props": []any{"dry", "inert"}}
	got := Flatten(in, "")
	arr, ok := got["props"].([]any)
	if !ok || len(arr) != 2 {
		t.Fatalf("array should be stored whole, got %v", got["props"])
	}
}

func TestFlattenScalarAtRoot(t *testing.T) {
	got := Flatten("hello", "")
	if got["value"] != "hello" {
		t.Errorf("scalar at empty prefix should land under %q, got %v", "value", got)
	}
	got = Flatten(42, "answer")
	if got["answer"] != 42 {
		t.Errorf("scalar with prefix = %v", got)
	}
}

func TestUnionKeys(t *testing.T) {
	rows := []map[string]any{
		{"b": 1, "id": 1},
		{"a": 2, "id": 2, "z": 3},
	}
	got := UnionKeys(rows, []string{"id", "missing", "z"})
	want := []string{"id", "z", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UnionKeys = %v, want %v", got, want)
	}
}

func TestToCSVQuoting(t *testing.T) {
	rows := []map[string]any{
		{"a": "x,y", "b": float64(1)},
		{"a": `say "hi"`, "b": nil},
	}
	got := ToCSV(rows, []string{"a", "b"})
	want := "a,b\n\"x,y\",1\n\"say \"\"hi\"\"\","
	if got != want {
		t.Errorf("ToCSV = %q, want %q", got, want)
	}
}

func TestToCSVEncodesCompositeCells(t *testing.T) {
	rows := []map[string]any{
		{"props": []any{"dry", "inert"}, "ok": true},
	}
	got := ToCSV(rows, []string{"props", "ok"})
	want := "props,ok\n\"[\"\"dry\"\",\"\"inert\"\"]\",true"
	if got != want {
		t.Errorf("ToCSV = %q, want %q", got, want)
	}
}

func TestToCSVEmpty(t *testing.T) {
	if got := ToCSV(nil, []string{"a"}); got != "" {
		t.Errorf("no rows should yield empty output, got %q", got)
	}
}

func graphRecord(id, name, role, material string) models.PortalRecord {
	rec := models.PortalRecord{
		FactoryID: id,
		Common:    models.CommonInfo{FactoryName: name, FactoryType: role},
	}
	if role == string(models.RoleGenerator) {
		rec.Generator = &models.GeneratorDetails{WasteTypeName: material}
	} else {
		rec.Receiver = &models.ReceiverDetails{RawMaterialName: material}
	}
	return rec
}

func TestBuildGraphMatchesMaterials(t *testing.T) {
	records := []models.PortalRecord{
		graphRecord("G1", "Alpha", string(models.RoleGenerator), "Fly Ash"),
		graphRecord("R1", "Beta", string(models.RoleReceiver), "  fly ash "),
		graphRecord("R2", "Gamma", string(models.RoleReceiver), "Slag"),
	}
	graph := BuildGraph(records)
	want := map[string][]string{"Alpha": {"Beta"}}
	if !reflect.DeepEqual(graph, want) {
		t.Errorf("BuildGraph = %v, want %v", graph, want)
	}
	if _, ok := graph["Gamma"]; ok {
		t.Errorf("edge-less factories must not appear as nodes, got %v", graph)
	}
}

func TestBuildGraphSuppressesSelfLoops(t *testing.T) {
	records := []models.PortalRecord{
		graphRecord("G1", "Alpha", string(models.RoleGenerator), "Fly Ash"),
		graphRecord("R1", "Alpha", string(models.RoleReceiver), "Fly Ash"),
	}
	graph := BuildGraph(records)
	if len(graph) != 0 {
		t.Errorf("same-name records must yield an empty graph, got %v", graph)
	}
}

func TestBuildGraphNoDuplicateEdges(t *testing.T) {
	records := []models.PortalRecord{
		graphRecord("G1", "Alpha", string(models.RoleGenerator), "Fly Ash"),
		graphRecord("G1", "Alpha", string(models.RoleGenerator), "Fly Ash"),
		graphRecord("R1", "Beta", string(models.RoleReceiver), "Fly Ash"),
	}
	graph := BuildGraph(records)
	if !reflect.DeepEqual(graph["Alpha"], []string{"Beta"}) {
		t.Errorf("duplicate records must not duplicate edges, got %v", graph["Alpha"])
	}
}

func TestBuildGraphEmptyMaterialNeverMatches(t *testing.T) {
	records := []models.PortalRecord{
		graphRecord("G1", "Alpha", string(models.RoleGenerator), ""),
		graphRecord("R1", "Beta", string(models.RoleReceiver), "  "),
	}
	graph := BuildGraph(records)
	if len(graph) != 0 {
		t.Errorf("records without material names should produce an empty graph, got %v", graph)
	}
}

func TestBuildGraphKeyedByID(t *testing.T) {
	records := []models.PortalRecord{
		graphRecord("GEN_A", "Alpha", string(models.RoleGenerator), "Fly Ash"),
		graphRecord("REC_A", "Alpha", string(models.RoleReceiver), "Fly Ash"),
	}
	graph := BuildGraphKeyed(records, KeyByID)
	if !reflect.DeepEqual(graph["GEN_A"], []string{"REC_A"}) {
		t.Errorf("keying by ID should separate same-name sites, got %v", graph)
	}
}
