package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matcheco/matcheco/backend/portal-service/internal/cycles"
	"github.com/matcheco/matcheco/backend/portal-service/internal/models"
	"github.com/matcheco/matcheco/backend/portal-service/internal/portal"
)

// includeAllScope reports whether the scope query selects every user's
// factories rather than the caller's own.
func includeAllScope(c *gin.Context) bool {
	scope := c.DefaultQuery("scope", "user")
	return scope == "all" || scope == "global"
}

// Cycles handles POST /api/cycles. The caller may supply an adjacency map;
// when absent the graph is built from stored factories (the caller's own,
// or everyone's with ?scope=all) by matching waste outputs against
// material needs on normalized name.
func (h *Handler) Cycles(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var body struct {
		Graph map[string][]string `json:"graph"`
	}
	// Body is optional; ignore bind errors on an empty body.
	_ = c.ShouldBindJSON(&body)

	graph := body.Graph
	if len(graph) == 0 {
		ctx, cancel := requestContext(c)
		defer cancel()

		records, err := h.DB.CollectPortalRecords(ctx, includeAllScope(c), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "Failed to load factories",
				Message: err.Error(),
			})
			return
		}
		graph = portal.BuildGraph(records)
	}

	c.JSON(http.StatusOK, gin.H{
		"cycles": cycles.Find(graph, cycles.DefaultMaxLen),
	})
}

// DemoCyclicData handles POST /api/demo/cyclic-data: seeds three demo
// factories forming a closed loop.
func (h *Handler) DemoCyclicData(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var body struct {
		Reset bool `json:"reset"`
	}
	_ = c.ShouldBindJSON(&body)

	ctx, cancel := requestContext(c)
	defer cancel()

	ids, err := h.DB.SeedDemoCycle(ctx, userID, body.Reset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to seed demo data",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":     "Seeded demo cyclic data",
		"factory_ids": ids,
	})
}

// demoOnlyFlag reads the optional {"only_demo": bool} body. Absent means
// false: join across every factory, not just the DEMO-% seeds.
func demoOnlyFlag(c *gin.Context) bool {
	var body struct {
		OnlyDemo bool `json:"only_demo"`
	}
	_ = c.ShouldBindJSON(&body)
	return body.OnlyDemo
}

// DemoCyclesFromDB handles POST /api/demo/cycles/db: joins stored waste
// outputs against material needs and reports the edges, graph and cycles.
func (h *Handler) DemoCyclesFromDB(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	onlyDemo := demoOnlyFlag(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	edges, err := h.DB.MaterialEdges(ctx, onlyDemo)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load edges",
			Message: err.Error(),
		})
		return
	}

	graph := map[string][]string{}
	seen := map[[2]string]bool{}
	for _, e := range edges {
		if e.FromName == e.ToName || seen[[2]string{e.FromName, e.ToName}] {
			continue
		}
		seen[[2]string{e.FromName, e.ToName}] = true
		graph[e.FromName] = append(graph[e.FromName], e.ToName)
		if _, present := graph[e.ToName]; !present {
			graph[e.ToName] = []string{}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"edges":  edges,
		"graph":  graph,
		"cycles": cycles.Find(graph, cycles.DefaultMaxLen),
	})
}

// DemoCyclesOnGraph handles POST /api/demo/cycles/graph: runs cycle
// detection on a caller-supplied graph, or a built-in triangle when none
// is given.
func (h *Handler) DemoCyclesOnGraph(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	var body struct {
		Graph map[string][]string `json:"graph"`
	}
	_ = c.ShouldBindJSON(&body)

	graph := body.Graph
	if len(graph) == 0 {
		graph = map[string][]string{
			"A": {"B"},
			"B": {"C"},
			"C": {"A"},
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"graph":  graph,
		"cycles": cycles.Find(graph, cycles.DefaultMaxLen),
	})
}
