package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matcheco/matcheco/backend/portal-service/internal/engine"
	"github.com/matcheco/matcheco/backend/portal-service/internal/geo"
	"github.com/matcheco/matcheco/backend/portal-service/internal/models"
	"github.com/matcheco/matcheco/backend/portal-service/internal/portal"
)

// Preferred column orders for the CSV exports. Remaining keys follow in
// lexical order.
var (
	materialsPreferredCols = []string{
		"factory_id", "factory_name", "industry_type", "email", "role",
	}
	matchesPreferredCols = []string{
		"supplier_id", "supplier_name", "receiver_id", "receiver_name",
		"material_type", "distance_km",
	}
)

// ExportWasteMaterials handles GET /api/waste-materials/export: the
// caller's materials projection as a CSV attachment.
func (h *Handler) ExportWasteMaterials(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	rows, err := h.DB.CollectMaterialsFull(ctx, false, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load materials",
			Message: err.Error(),
		})
		return
	}

	writeCSV(c, "waste-materials.csv", flattenForCSV(rows), materialsPreferredCols)
}

// ExportMatches handles GET /api/match/export: the caller's ranked matches
// as a CSV attachment.
func (h *Handler) ExportMatches(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	rows, err := h.DB.CollectMaterialsFull(ctx, false, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load materials",
			Message: err.Error(),
		})
		return
	}

	var suppliers []models.Supplier
	var receivers []models.Receiver
	for _, row := range rows {
		if row.MaterialName() == "" {
			continue
		}
		switch row.Role {
		case models.MaterialRoleGenerator:
			suppliers = append(suppliers, engine.SupplierFromRow(row, geo.CityLatLon))
		case models.MaterialRoleReceiver:
			receivers = append(receivers, engine.ReceiverFromRow(row, geo.CityLatLon))
		}
	}

	var matches []models.Match
	if len(suppliers) > 0 && len(receivers) > 0 {
		matches = engine.ComputeRankedMatches(suppliers, receivers)
	}

	writeCSV(c, "matches.csv", flattenForCSV(matches), matchesPreferredCols)
}

// flattenForCSV round-trips the rows through JSON so flattened keys follow
// the wire field names, then flattens each row.
func flattenForCSV[T any](rows []T) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		raw, err := json.Marshal(row)
		if err != nil {
			continue
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			continue
		}
		out = append(out, portal.Flatten(generic, ""))
	}
	return out
}

func writeCSV(c *gin.Context, filename string, rows []map[string]any, preferred []string) {
	if len(rows) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	headers := portal.UnionKeys(rows, preferred)
	body := portal.ToCSV(rows, headers)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(body))
}
