package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestRouter(userID string) (*gin.Engine, *Service) {
	gin.SetMode(gin.TestMode)
	svc := NewService(NewMemoryRepo())
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	api := router.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api)
	return router, svc
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestCreateRequiresTitle(t *testing.T) {
	router, _ := newTestRouter("user-1")

	resp := doJSON(t, router, http.MethodPost, "/api/v1/notifications", map[string]any{
		"type":    "info",
		"message": "no title here",
	})

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", resp.Code, resp.Body.String())
	}
}

func TestCreateNormalizesUnknownType(t *testing.T) {
	router, _ := newTestRouter("user-1")

	resp := doJSON(t, router, http.MethodPost, "/api/v1/notifications", map[string]any{
		"type":  "shiny",
		"title": "Export finished",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", resp.Code, resp.Body.String())
	}

	var n Notification
	if err := json.Unmarshal(resp.Body.Bytes(), &n); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n.Type != "info" {
		t.Fatalf("type = %q, want info", n.Type)
	}
	if n.Read {
		t.Fatal("new notification must be unread")
	}
}

func TestListUnreadOnlyAndCount(t *testing.T) {
	router, svc := newTestRouter("user-1")
	ctx := context.Background()

	first, err := svc.Create(ctx, "user-1", CreateInput{Title: "one"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, "user-1", CreateInput{Title: "two"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.MarkRead(ctx, "user-1", first.NotificationID, true); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	resp := doJSON(t, router, http.MethodGet, "/api/v1/notifications?unreadOnly=true", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}
	var result ListResult
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Notifications) != 1 {
		t.Fatalf("got %d notifications, want 1", len(result.Notifications))
	}
	if result.Notifications[0].Title != "two" {
		t.Fatalf("title = %q, want two", result.Notifications[0].Title)
	}
	if result.UnreadCount != 1 {
		t.Fatalf("unreadCount = %d, want 1", result.UnreadCount)
	}
}

func TestListRejectsBadSince(t *testing.T) {
	router, _ := newTestRouter("user-1")

	resp := doJSON(t, router, http.MethodGet, "/api/v1/notifications?since=yesterday", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
}

func TestMarkAllRead(t *testing.T) {
	router, svc := newTestRouter("user-1")
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c"} {
		if _, err := svc.Create(ctx, "user-1", CreateInput{Title: title}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	resp := doJSON(t, router, http.MethodPatch, "/api/v1/notifications", map[string]any{"markAll": true})
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}
	var payload map[string]int64
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["updated"] != 3 {
		t.Fatalf("updated = %d, want 3", payload["updated"])
	}

	result, err := svc.List(ctx, "user-1", ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.UnreadCount != 0 {
		t.Fatalf("unreadCount = %d, want 0", result.UnreadCount)
	}
}

func TestPatchUnknownNotificationReturns404(t *testing.T) {
	router, _ := newTestRouter("user-1")

	resp := doJSON(t, router, http.MethodPatch, "/api/v1/notifications", map[string]any{
		"notificationId": "does-not-exist",
	})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.Code)
	}
}

func TestDeleteOlderThan(t *testing.T) {
	router, svc := newTestRouter("user-1")
	ctx := context.Background()
	if err := svc.Repo.Create(ctx, Notification{
		NotificationID: "old-1",
		UserID:         "user-1",
		Type:           "info",
		Title:          "old",
		Actions:        []Action{},
		CreatedAt:      time.Now().UTC().Add(-48 * time.Hour),
		UpdatedAt:      time.Now().UTC().Add(-48 * time.Hour),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, "user-1", CreateInput{Title: "fresh"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	cutoff := time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339)
	resp := doJSON(t, router, http.MethodDelete, "/api/v1/notifications", map[string]any{"olderThan": cutoff})
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", resp.Code, resp.Body.String())
	}
	var payload map[string]int64
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["deleted"] != 1 {
		t.Fatalf("deleted = %d, want 1", payload["deleted"])
	}

	result, err := svc.List(ctx, "user-1", ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Notifications) != 1 || result.Notifications[0].Title != "fresh" {
		t.Fatalf("unexpected notifications after cleanup: %+v", result.Notifications)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	router, svc := newTestRouter("user-1")
	ctx := context.Background()

	other, err := svc.Create(ctx, "user-2", CreateInput{Title: "not yours"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	resp := doJSON(t, router, http.MethodPatch, "/api/v1/notifications", map[string]any{
		"notificationId": other.NotificationID,
	})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for cross-user access", resp.Code)
	}

	resp = doJSON(t, router, http.MethodGet, "/api/v1/notifications", nil)
	var result ListResult
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Notifications) != 0 {
		t.Fatalf("user-1 must not see user-2 notifications: %+v", result.Notifications)
	}
}
