package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLive(t *testing.T) {
	h := NewHandler(nil)
	router := gin.New()
	router.GET("/live", h.Live)

	w := perform(router, http.MethodGet, "/live", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "alive" {
		t.Errorf("unexpected status %q", body["status"])
	}
}

func TestHealthWithoutDatabase(t *testing.T) {
	h := NewHandler(nil)
	router := gin.New()
	router.GET("/health", h.Health)

	w := perform(router, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a database, got %d", w.Code)
	}
}

func TestAuthMiddlewareRejections(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	router := gin.New()
	router.GET("/protected", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"bad format", "Token abc"},
		{"invalid token", "Bearer not.a.jwt"},
	}
	for _, tc := range cases {
		headers := map[string]string{}
		if tc.header != "" {
			headers["Authorization"] = tc.header
		}
		w := perform(router, http.MethodGet, "/protected", "", headers)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", tc.name, w.Code)
		}
	}
}

func TestAuthMiddlewareMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	router := gin.New()
	router.GET("/protected", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := perform(router, http.MethodGet, "/protected", "", map[string]string{
		"Authorization": "Bearer anything",
	})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when JWT_SECRET is unset, got %d", w.Code)
	}
}

// asUser stands in for AuthMiddleware in handler tests that do not need
// real tokens.
func asUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", id)
		c.Next()
	}
}

func TestMatchAcceptsArrayAndSingle(t *testing.T) {
	h := NewHandler(nil)
	router := gin.New()
	router.POST("/match", h.Match)

	generator := `{
		"COMMON": {"Factory Name": "Alpha Steel", "Industry Type": "Steel", "Email": "a@x.com", "Location": "Chennai", "Factory Type": "Waste Generator"},
		"GENERATOR": {"Waste Type Name": "Fly Ash", "Quantity Generated": "500 t per week"}
	}`
	receiver := `{
		"COMMON": {"Factory Name": "Beta Cement", "Industry Type": "Cement", "Email": "b@x.com", "Location": "Chennai", "Factory Type": "Receiver"},
		"RECEIVER": {"Raw Material Name": "Fly Ash", "Quantity Required": "400 t per week"}
	}`

	w := perform(router, http.MethodPost, "/match", "["+generator+","+receiver+"]", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("array body: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		RankedMatches []json.RawMessage `json:"ranked_matches"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(resp.RankedMatches) != 1 {
		t.Errorf("expected 1 ranked match, got %d", len(resp.RankedMatches))
	}

	// A single record is accepted too: one side only, so no matches.
	w = perform(router, http.MethodPost, "/match", generator, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("single body: expected 200, got %d", w.Code)
	}

	w = perform(router, http.MethodPost, "/match", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty body: expected 400, got %d", w.Code)
	}
}

func TestDemoCyclesOnGraphDefaultTriangle(t *testing.T) {
	h := NewHandler(nil)
	router := gin.New()
	router.POST("/api/demo/cycles/graph", asUser("1"), h.DemoCyclesOnGraph)

	w := perform(router, http.MethodPost, "/api/demo/cycles/graph", "{}", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Graph  map[string][]string `json:"graph"`
		Cycles [][]string          `json:"cycles"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(resp.Cycles) != 1 || strings.Join(resp.Cycles[0], ",") != "A,B,C" {
		t.Errorf("expected the default triangle cycle, got %v", resp.Cycles)
	}
}

func TestDemoCyclesOnGraphCustom(t *testing.T) {
	h := NewHandler(nil)
	router := gin.New()
	router.POST("/api/demo/cycles/graph", asUser("1"), h.DemoCyclesOnGraph)

	body := `{"graph": {"X": ["Y"], "Y": ["X", "Z"], "Z": []}}`
	w := perform(router, http.MethodPost, "/api/demo/cycles/graph", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Cycles [][]string `json:"cycles"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(resp.Cycles) != 1 || strings.Join(resp.Cycles[0], ",") != "X,Y" {
		t.Errorf("expected the two-node cycle, got %v", resp.Cycles)
	}
}

func TestIncludeAllScope(t *testing.T) {
	cases := []struct {
		query string
		want  bool
	}{
		{"", false},
		{"?scope=user", false},
		{"?scope=all", true},
		{"?scope=global", true},
		{"?scope=everything", false},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/api/cycles"+tc.query, nil)
		if got := includeAllScope(c); got != tc.want {
			t.Errorf("scope %q: includeAllScope = %v, want %v", tc.query, got, tc.want)
		}
	}
}

func TestDemoOnlyFlagDefaultsToAllFactories(t *testing.T) {
	cases := []struct {
		body string
		want bool
	}{
		{"", false},
		{"{}", false},
		{`{"only_demo": false}`, false},
		{`{"only_demo": true}`, true},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/api/demo/cycles/db", strings.NewReader(tc.body))
		if tc.body != "" {
			c.Request.Header.Set("Content-Type", "application/json")
		}
		if got := demoOnlyFlag(c); got != tc.want {
			t.Errorf("body %q: demoOnlyFlag = %v, want %v", tc.body, got, tc.want)
		}
	}
}

func TestRequireUserIDRejectsMissingClaim(t *testing.T) {
	h := NewHandler(nil)
	router := gin.New()
	router.POST("/api/demo/cycles/graph", h.DemoCyclesOnGraph)

	w := perform(router, http.MethodPost, "/api/demo/cycles/graph", "{}", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a user claim, got %d", w.Code)
	}
}

func TestMissingCommonField(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"common": {"Factory Name": "", "Industry Type": "Steel", "Email": "a@x.com", "Location": "Chennai"}}`, "Factory Name"},
		{`{"common": {"Factory Name": "A", "Industry Type": "", "Email": "a@x.com", "Location": "Chennai"}}`, "Industry Type"},
		{`{"common": {"Factory Name": "A", "Industry Type": "Steel", "Email": "", "Location": "Chennai"}}`, "Email"},
		{`{"common": {"Factory Name": "A", "Industry Type": "Steel", "Email": "a@x.com", "Location": ""}}`, "Location"},
	}

	h := NewHandler(nil)
	router := gin.New()
	router.POST("/api/factories/full", asUser("1"), h.SaveFactoryFull)

	for _, tc := range cases {
		w := perform(router, http.MethodPost, "/api/factories/full", tc.body, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.want, w.Code)
			continue
		}
		var resp struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if resp.Error != "Missing field: "+tc.want {
			t.Errorf("expected missing %s, got %q", tc.want, resp.Error)
		}
	}
}

func TestSnapshotRequiresRecordsArray(t *testing.T) {
	h := NewHandler(nil)
	router := gin.New()
	router.POST("/api/factories", asUser("1"), h.SaveSnapshot)

	for _, body := range []string{`{}`, `{"records": []}`, `{"records": "nope"}`} {
		w := perform(router, http.MethodPost, "/api/factories", body, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, w.Code)
		}
	}
}
