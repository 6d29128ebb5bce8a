package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"engunity-backend/internal/chat"
	"engunity-backend/internal/documents"
	"engunity-backend/internal/notifications"
	"engunity-backend/internal/projects"
	"engunity-backend/internal/settings"
	"engunity-backend/internal/users"
)

func newTestRouter(h *Handler, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Set("isGuest", false)
		c.Next()
	})
	api := router.Group("/api/v1")
	h.RegisterRoutes(api)
	return router
}

func TestClaimGuestMigratesDocuments(t *testing.T) {
	docRepo := documents.NewMemoryRepo()
	docSvc := &documents.Service{Primary: docRepo}
	handler := NewHandler(&Service{Documents: docSvc})
	router := newTestRouter(handler, "user-1")

	guestID := "11111111-1111-1111-1111-111111111111"
	guestUserID := "guest:" + guestID

	doc := documents.Document{
		ID:               "64b0c8f2e4b0a1d2c3e4f501",
		UserID:           guestUserID,
		FileName:         "report.pdf",
		MimeType:         "application/pdf",
		SizeBytes:        123,
		ProcessingStatus: documents.StatusProcessed,
		CreatedAt:        time.Now().UTC(),
	}
	if err := docRepo.Create(context.Background(), doc); err != nil {
		t.Fatalf("create document: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req.Header.Set("X-Guest-Id", guestID)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", resp.Code, resp.Body.String())
	}
	var result ClaimResult
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.MigratedDocuments != 1 {
		t.Fatalf("migrated = %d, want 1", result.MigratedDocuments)
	}

	got, err := docRepo.GetByID(context.Background(), "user-1", doc.ID)
	if err != nil {
		t.Fatalf("document not reassigned: %v", err)
	}
	if got.UserID != "user-1" {
		t.Fatalf("userID = %q, want user-1", got.UserID)
	}
}

func TestClaimGuestRejectsMissingHeader(t *testing.T) {
	handler := NewHandler(&Service{Documents: &documents.Service{Primary: documents.NewMemoryRepo()}})
	router := newTestRouter(handler, "user-1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
}

func TestDeleteAccountCascades(t *testing.T) {
	ctx := context.Background()
	userID := "user-9"

	docRepo := documents.NewMemoryRepo()
	chatRepo := chat.NewMemoryRepo()
	chatSvc := &chat.Service{Repo: chatRepo}
	docSvc := &documents.Service{Primary: docRepo, Chats: chatSvc}
	notifSvc := notifications.NewService(notifications.NewMemoryRepo())
	settingsSvc := &settings.Service{Store: settings.NewMemoryStore(), Emitter: settings.NewEmitter()}
	projectSvc := projects.NewService(projects.NewMemoryRepo())
	usersSvc := users.NewService(users.NewMemoryRepo())

	docID := "64b0c8f2e4b0a1d2c3e4f502"
	if err := docRepo.Create(ctx, documents.Document{
		ID:               docID,
		UserID:           userID,
		FileName:         "dataset.csv",
		ProcessingStatus: documents.StatusProcessed,
		CreatedAt:        time.Now().UTC(),
	}); err != nil {
		t.Fatalf("create document: %v", err)
	}
	if _, err := chatSvc.StartSession(ctx, userID, docID, "doc chat"); err != nil {
		t.Fatalf("start session: %v", err)
	}
	if _, err := notifSvc.Create(ctx, userID, notifications.CreateInput{Title: "hello"}); err != nil {
		t.Fatalf("create notification: %v", err)
	}
	if _, err := projectSvc.Create(ctx, userID, projects.CreateInput{Name: "research"}); err != nil {
		t.Fatalf("create project: %v", err)
	}
	if err := usersSvc.UpsertFromAuth(ctx, users.User{ID: userID, Email: "u@example.com"}); err != nil {
		t.Fatalf("upsert user: %v", err)
	}

	handler := NewHandler(&Service{
		Documents:     docSvc,
		Chats:         chatSvc,
		Notifications: notifSvc,
		Settings:      settingsSvc,
		Projects:      projectSvc,
		Users:         usersSvc,
	})
	router := newTestRouter(handler, userID)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/account", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", resp.Code, resp.Body.String())
	}
	var result DeleteResult
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.DeletedDocuments != 1 {
		t.Fatalf("deleted documents = %d, want 1", result.DeletedDocuments)
	}
	if result.DeletedNotifications != 1 {
		t.Fatalf("deleted notifications = %d, want 1", result.DeletedNotifications)
	}
	if result.DeletedProjects != 1 {
		t.Fatalf("deleted projects = %d, want 1", result.DeletedProjects)
	}

	if docs, err := docRepo.ListByUser(ctx, userID, 10, 0); err != nil || len(docs) != 0 {
		t.Fatalf("documents remain: %v %v", docs, err)
	}
	if sessions, err := chatSvc.Sessions(ctx, userID, 10); err != nil || len(sessions) != 0 {
		t.Fatalf("chat sessions remain: %v %v", sessions, err)
	}
	if _, err := usersSvc.GetByID(ctx, userID); err != users.ErrNotFound {
		t.Fatalf("user row remains, err = %v", err)
	}
}
