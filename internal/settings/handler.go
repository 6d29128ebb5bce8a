package settings

import (
	"errors"
	"io"
	"net/http"

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

// RegisterRoutes attaches settings routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/settings", h.get)
	rg.PUT("/settings", h.update)
	rg.DELETE("/settings", h.reset)
	rg.GET("/settings/events", h.stream)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	s, err := h.Svc.Get(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch settings", nil)
		}
		return
	}
	respond.OK(c, s)
}

func (h *Handler) update(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	saved, err := h.Svc.Update(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save settings", nil)
		}
		return
	}
	respond.OK(c, saved)
}

func (h *Handler) reset(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Reset(c.Request.Context(), userID); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to reset settings", nil)
		return
	}
	respond.OK(c, gin.H{"reset": true})
}

// stream pushes this user's settings changes over server-sent events. This
// is the server-side counterpart of the dashboard's live theme switch.
func (h *Handler) stream(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if h.Svc.Emitter == nil {
		respond.Error(c, http.StatusServiceUnavailable, "not_configured", "settings events unavailable", nil)
		return
	}

	events := make(chan Event, 8)
	unsubscribe := h.Svc.Emitter.Subscribe(EventChanged, func(ev Event) {
		if ev.UserID != userID {
			return
		}
		select {
		case events <- ev:
		default:
			// Slow client; drop rather than block the emitter.
		}
	})
	defer unsubscribe()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case ev := <-events:
			c.SSEvent("settings", ev.Settings)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
