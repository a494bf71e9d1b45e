package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matcheco/matcheco/backend/portal-service/internal/engine"
	"github.com/matcheco/matcheco/backend/portal-service/internal/geo"
	"github.com/matcheco/matcheco/backend/portal-service/internal/models"
)

// Match handles the public POST /match and /api/match endpoints. The body
// is either an array of portal records or a single record.
func (h *Handler) Match(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Request body required",
		})
		return
	}

	var records []models.PortalRecord
	if err := json.Unmarshal(body, &records); err != nil {
		var single models.PortalRecord
		if err := json.Unmarshal(body, &single); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "Invalid request body",
				Message: err.Error(),
			})
			return
		}
		records = []models.PortalRecord{single}
	}

	c.JSON(http.StatusOK, engine.ProcessPortalRecords(records, geo.CityLatLon))
}

// MatchAll handles GET /api/match/all: runs the engine over the stored
// factories. The scope query parameter selects whose factories feed it;
// "user" (the default) restricts to the caller's own.
func (h *Handler) MatchAll(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	includeAll := includeAllScope(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	rows, err := h.DB.CollectMaterialsFull(ctx, includeAll, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load materials",
			Message: err.Error(),
		})
		return
	}

	materials := make([]models.MaterialSummary, 0, len(rows))
	var suppliers []models.Supplier
	var receivers []models.Receiver
	for _, row := range rows {
		if row.MaterialName() == "" {
			continue
		}
		materials = append(materials, row.Summary())
		switch row.Role {
		case models.MaterialRoleGenerator:
			suppliers = append(suppliers, engine.SupplierFromRow(row, geo.CityLatLon))
		case models.MaterialRoleReceiver:
			receivers = append(receivers, engine.ReceiverFromRow(row, geo.CityLatLon))
		}
	}

	if len(suppliers) == 0 || len(receivers) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"ranked_matches":  []models.Match{},
			"detected_cycles": []models.CycleReport{},
			"materials":       materials,
			"materials_full":  rows,
		})
		return
	}

	result := engine.ProcessRequests(suppliers, receivers)
	c.JSON(http.StatusOK, gin.H{
		"ranked_matches":  result.RankedMatches,
		"detected_cycles": result.DetectedCycles,
		"materials":       materials,
		"materials_full":  rows,
	})
}
