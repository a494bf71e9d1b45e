package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/matcheco/matcheco/backend/portal-service/internal/models"
	"github.com/matcheco/matcheco/backend/portal-service/internal/portal"
)

// SaveSnapshot handles POST /api/factories. The body is a legacy portal
// snapshot: {"records": [...]} stored verbatim as JSON.
func (h *Handler) SaveSnapshot(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var body struct {
		Records json.RawMessage `json:"records"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	var records []json.RawMessage
	if err := json.Unmarshal(body.Records, &records); err != nil || len(records) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "records (array) is required",
		})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	snap, err := h.DB.InsertSnapshot(ctx, userID, body.Records)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to save records",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":         snap.ID,
		"created_at": snap.CreatedAt,
	})
}

// SaveFactoryFull handles POST /api/factories/full: the structured wizard
// payload persisted into the normalized factory tables.
func (h *Handler) SaveFactoryFull(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var sub models.FactorySubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	if missing := missingCommonField(sub.Common); missing != "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Missing field: " + missing,
		})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	factoryID, createdAt, err := h.DB.CreateFactory(ctx, userID, sub)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to save factory",
			Message: err.Error(),
		})
		return
	}

	resp := gin.H{
		"factory_id": factoryID,
		"created_at": createdAt,
	}
	// A role selected without its detail section composes no record; tell
	// the caller rather than dropping it silently.
	if _, skipped := portal.Compose(sub.Common, sub.Generator, sub.Receiver, sub.Roles); len(skipped) > 0 {
		resp["skipped_roles"] = skipped
	}
	c.JSON(http.StatusCreated, resp)
}

func missingCommonField(common models.CommonInfo) string {
	switch {
	case common.FactoryName == "":
		return "Factory Name"
	case common.IndustryType == "":
		return "Industry Type"
	case common.Email == "":
		return "Email"
	case common.Location.IsZero():
		return "Location"
	}
	return ""
}

// DeleteFactory handles DELETE /api/factories/:id.
func (h *Handler) DeleteFactory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	factoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Invalid factory id",
		})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	deleted, err := h.DB.DeleteFactory(ctx, userID, factoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to delete factory",
			Message: err.Error(),
		})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Factory not found or not owned by user.",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"deleted": factoryID,
	})
}

// ListWasteMaterials handles GET /api/waste-materials: the caller's legacy
// snapshots followed by their normalized factory listings.
func (h *Handler) ListWasteMaterials(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	snapshots, err := h.DB.ListSnapshots(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load records",
			Message: err.Error(),
		})
		return
	}
	listings, err := h.DB.ListFactories(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load factories",
			Message: err.Error(),
		})
		return
	}

	entries := make([]any, 0, len(snapshots)+len(listings))
	for _, s := range snapshots {
		entries = append(entries, s)
	}
	for _, l := range listings {
		entries = append(entries, l)
	}
	c.JSON(http.StatusOK, entries)
}
