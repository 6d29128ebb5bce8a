package settings

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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

func putSettings(t *testing.T, router *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestGetFallsBackToDefaults(t *testing.T) {
	svc := &Service{Store: NewMemoryStore(), Emitter: NewEmitter()}
	router := newTestRouter(svc, "user-1")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", resp.Code, resp.Body.String())
	}

	var got Settings
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Theme != "system" || got.AIStyle != "balanced" || got.FontScale != 1.0 {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}

func TestUpdateValidatesFields(t *testing.T) {
	svc := &Service{Store: NewMemoryStore(), Emitter: NewEmitter()}
	router := newTestRouter(svc, "user-1")

	cases := []map[string]any{
		{"theme": "sepia", "fontScale": 1.0, "aiStyle": "balanced"},
		{"theme": "dark", "fontScale": 1.0, "aiStyle": "chatty"},
		{"theme": "dark", "fontScale": 3.5, "aiStyle": "balanced"},
		{"theme": "dark", "fontScale": 0.1, "aiStyle": "balanced"},
	}
	for _, body := range cases {
		if resp := putSettings(t, router, body); resp.Code != http.StatusBadRequest {
			t.Fatalf("body %v: status = %d, want 400", body, resp.Code)
		}
	}
}

func TestUpdateLastWriteWinsAndEmitsOnce(t *testing.T) {
	svc := &Service{Store: NewMemoryStore(), Emitter: NewEmitter()}

	events := 0
	svc.Emitter.Subscribe(EventChanged, func(ev Event) {
		events++
		if ev.UserID != "user-1" {
			t.Errorf("event user = %q", ev.UserID)
		}
	})

	router := newTestRouter(svc, "user-1")

	first := map[string]any{"theme": "light", "fontScale": 1.0, "aiStyle": "concise", "language": "en"}
	if resp := putSettings(t, router, first); resp.Code != http.StatusOK {
		t.Fatalf("first update: %d", resp.Code)
	}
	second := map[string]any{"theme": "dark", "fontScale": 1.5, "aiStyle": "detailed", "language": "de"}
	if resp := putSettings(t, router, second); resp.Code != http.StatusOK {
		t.Fatalf("second update: %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var got Settings
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Theme != "dark" || got.FontScale != 1.5 || got.AIStyle != "detailed" || got.Language != "de" {
		t.Fatalf("last write did not win: %+v", got)
	}
	if events != 2 {
		t.Fatalf("emitted %d events, want 2 (one per update)", events)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	svc := &Service{Store: NewMemoryStore(), Emitter: NewEmitter()}
	router := newTestRouter(svc, "user-1")

	saved := map[string]any{"theme": "dark", "fontScale": 1.2, "aiStyle": "concise"}
	if resp := putSettings(t, router, saved); resp.Code != http.StatusOK {
		t.Fatalf("update: %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/settings", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("reset: %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var got Settings
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Theme != "system" || got.AIStyle != "balanced" {
		t.Fatalf("expected defaults after reset, got %+v", got)
	}
}

func TestSettingsAreIsolatedPerUser(t *testing.T) {
	svc := &Service{Store: NewMemoryStore(), Emitter: NewEmitter()}

	if resp := putSettings(t, newTestRouter(svc, "user-1"), map[string]any{
		"theme": "dark", "fontScale": 1.0, "aiStyle": "balanced",
	}); resp.Code != http.StatusOK {
		t.Fatalf("update: %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	resp := httptest.NewRecorder()
	newTestRouter(svc, "user-2").ServeHTTP(resp, req)

	var got Settings
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Theme != "system" {
		t.Fatalf("user-2 should see defaults, got %+v", got)
	}
}
