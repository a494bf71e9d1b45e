package db

import (
	"testing"
	"time"

	"github.com/matcheco/matcheco/backend/portal-service/internal/models"
)

func TestPortalRecordsComposesPerDetailSide(t *testing.T) {
	listings := []models.FactoryListing{
		{
			ID:        7,
			CreatedAt: time.Now(),
			Common:    models.CommonInfo{FactoryName: "Alpha Steel", IndustryType: "Steel", Email: "ops@alpha.example"},
			Generator: &models.GeneratorDetails{WasteTypeName: "Fly Ash"},
			Receiver:  &models.ReceiverDetails{RawMaterialName: "Slag"},
			Roles:     []models.Role{models.RoleGenerator, models.RoleReceiver},
		},
		{
			ID:       8,
			Common:   models.CommonInfo{FactoryName: "Beta Cement"},
			Receiver: &models.ReceiverDetails{RawMaterialName: "Fly Ash"},
		},
	}

	records := portalRecords(listings)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	gen := records[0]
	if gen.FactoryID != "7" || gen.Generator == nil || gen.Receiver != nil {
		t.Errorf("first record should be Alpha's generator side, got %+v", gen)
	}
	if gen.Common.FactoryType != string(models.RoleGenerator) {
		t.Errorf("generator record type = %q", gen.Common.FactoryType)
	}

	recv := records[1]
	if recv.FactoryID != "7" || recv.Receiver == nil || recv.Generator != nil {
		t.Errorf("second record should be Alpha's receiver side, got %+v", recv)
	}
	if recv.Common.FactoryType != string(models.RoleReceiver) {
		t.Errorf("receiver record type = %q", recv.Common.FactoryType)
	}

	// Beta has no stored roles; the detail row still yields a record.
	if records[2].FactoryID != "8" || records[2].Receiver == nil {
		t.Errorf("third record should be Beta's receiver side, got %+v", records[2])
	}
}

func TestPortalRecordsSkipsDetailLessListings(t *testing.T) {
	listings := []models.FactoryListing{
		{ID: 9, Common: models.CommonInfo{FactoryName: "Empty Works"}},
	}
	if records := portalRecords(listings); len(records) != 0 {
		t.Errorf("detail-less listing should yield no records, got %v", records)
	}
}
