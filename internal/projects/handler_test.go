package projects

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(svc *Service, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	api := router.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestCreateValidatesName(t *testing.T) {
	router := newTestRouter(NewService(NewMemoryRepo()), "user-1")

	if resp := doJSON(t, router, http.MethodPost, "/api/v1/projects", map[string]any{"name": "   "}); resp.Code != http.StatusBadRequest {
		t.Fatalf("blank name: status = %d, want 400", resp.Code)
	}
	long := strings.Repeat("x", 201)
	if resp := doJSON(t, router, http.MethodPost, "/api/v1/projects", map[string]any{"name": long}); resp.Code != http.StatusBadRequest {
		t.Fatalf("long name: status = %d, want 400", resp.Code)
	}
}

func TestCreateNormalizesTags(t *testing.T) {
	router := newTestRouter(NewService(NewMemoryRepo()), "user-1")

	resp := doJSON(t, router, http.MethodPost, "/api/v1/projects", map[string]any{
		"name": "Data pipeline",
		"tags": []string{"ETL", "etl", "  Analytics  ", ""},
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d; body %s", resp.Code, resp.Body.String())
	}

	var p Project
	if err := json.Unmarshal(resp.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Status != StatusActive {
		t.Fatalf("status = %q, want active", p.Status)
	}
	if len(p.Tags) != 2 || p.Tags[0] != "etl" || p.Tags[1] != "analytics" {
		t.Fatalf("tags = %v, want deduped lowercase", p.Tags)
	}
}

func TestUpdateArchivesProject(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	router := newTestRouter(svc, "user-1")

	resp := doJSON(t, router, http.MethodPost, "/api/v1/projects", map[string]any{"name": "Old work"})
	var created Project
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	resp = doJSON(t, router, http.MethodPatch, "/api/v1/projects/"+created.ProjectID, map[string]any{
		"status": StatusArchived,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("patch: %d; body %s", resp.Code, resp.Body.String())
	}

	var updated Project
	if err := json.Unmarshal(resp.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Status != StatusArchived {
		t.Fatalf("status = %q, want archived", updated.Status)
	}
	if updated.Name != "Old work" {
		t.Fatalf("partial update clobbered name: %q", updated.Name)
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	router := newTestRouter(svc, "user-1")

	resp := doJSON(t, router, http.MethodPost, "/api/v1/projects", map[string]any{"name": "p"})
	var created Project
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	resp = doJSON(t, router, http.MethodPatch, "/api/v1/projects/"+created.ProjectID, map[string]any{
		"status": "abandoned",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
}

func TestGetUnknownProjectIs404(t *testing.T) {
	router := newTestRouter(NewService(NewMemoryRepo()), "user-1")
	if resp := doJSON(t, router, http.MethodGet, "/api/v1/projects/nope", nil); resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.Code)
	}
}

func TestDeleteThenGetIs404(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	router := newTestRouter(svc, "user-1")

	resp := doJSON(t, router, http.MethodPost, "/api/v1/projects", map[string]any{"name": "ephemeral"})
	var created Project
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp := doJSON(t, router, http.MethodDelete, "/api/v1/projects/"+created.ProjectID, nil); resp.Code != http.StatusOK {
		t.Fatalf("delete: %d", resp.Code)
	}
	if resp := doJSON(t, router, http.MethodGet, "/api/v1/projects/"+created.ProjectID, nil); resp.Code != http.StatusNotFound {
		t.Fatalf("get after delete: %d, want 404", resp.Code)
	}
}

func TestListIsPerUser(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if resp := doJSON(t, newTestRouter(svc, "user-1"), http.MethodPost, "/api/v1/projects", map[string]any{"name": "mine"}); resp.Code != http.StatusCreated {
		t.Fatalf("create: %d", resp.Code)
	}

	resp := doJSON(t, newTestRouter(svc, "user-2"), http.MethodGet, "/api/v1/projects", nil)
	var payload struct {
		Projects []Project `json:"projects"`
		Count    int       `json:"count"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Count != 0 || len(payload.Projects) != 0 {
		t.Fatalf("user-2 sees %d projects, want 0", payload.Count)
	}
}
