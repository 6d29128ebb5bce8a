package notifications

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"engunity-backend/internal/shared/server/middleware"
	"engunity-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches notification routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications", h.list)
	rg.POST("/notifications", h.create)
	rg.PATCH("/notifications", h.patch)
	rg.DELETE("/notifications", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	filter := ListFilter{}
	if v := c.Query("unreadOnly"); v != "" {
		filter.UnreadOnly = v == "true" || v == "1"
	}
	if v := c.Query("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "since must be RFC3339", nil)
			return
		}
		filter.Since = &since
	}
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filter.Limit = parsed
		}
	}

	result, err := h.Svc.List(c.Request.Context(), userID, filter)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list notifications", nil)
		}
		return
	}

	respond.OK(c, result)
}

type createRequest struct {
	Type    string   `json:"type"`
	Title   string   `json:"title"`
	Message string   `json:"message"`
	Actions []Action `json:"actions"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	n, err := h.Svc.Create(c.Request.Context(), userID, CreateInput{
		Type:    req.Type,
		Title:   req.Title,
		Message: req.Message,
		Actions: req.Actions,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create notification", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, n)
}

type patchRequest struct {
	NotificationID string `json:"notificationId"`
	MarkAll        bool   `json:"markAll"`
	Read           *bool  `json:"read"`
}

func (h *Handler) patch(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req patchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	if req.MarkAll {
		updated, err := h.Svc.MarkAllRead(c.Request.Context(), userID)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update notifications", nil)
			return
		}
		respond.OK(c, gin.H{"updated": updated})
		return
	}

	read := true
	if req.Read != nil {
		read = *req.Read
	}

	err := h.Svc.MarkRead(c.Request.Context(), userID, req.NotificationID, read)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "notification not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update notification", nil)
		}
		return
	}

	respond.OK(c, gin.H{"updated": 1})
}

type deleteRequest struct {
	NotificationID string `json:"notificationId"`
	DeleteAll      bool   `json:"deleteAll"`
	OlderThan      string `json:"olderThan"`
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	switch {
	case req.OlderThan != "":
		cutoff, err := time.Parse(time.RFC3339, req.OlderThan)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "olderThan must be RFC3339", nil)
			return
		}
		deleted, err := h.Svc.DeleteOlderThan(c.Request.Context(), userID, cutoff)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete notifications", nil)
			return
		}
		respond.OK(c, gin.H{"deleted": deleted})

	case req.DeleteAll:
		deleted, err := h.Svc.DeleteAll(c.Request.Context(), userID)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete notifications", nil)
			return
		}
		respond.OK(c, gin.H{"deleted": deleted})

	default:
		err := h.Svc.Delete(c.Request.Context(), userID, req.NotificationID)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			case errors.Is(err, ErrNotFound):
				respond.Error(c, http.StatusNotFound, "not_found", "notification not found", nil)
			default:
				respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete notification", nil)
			}
			return
		}
		respond.OK(c, gin.H{"deleted": 1})
	}
}
