package assist

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"engunity-backend/internal/backend"
	"engunity-backend/internal/shared/server/respond"
)

const maxBodySize = 1 << 20 // 1MB of JSON is plenty for a prompt

// route maps an assist endpoint to its backend path and required field.
type route struct {
	backendPath   string
	requiredField string
}

var routes = map[string]route{
	"chat":     {backendPath: "/api/chat", requiredField: "message"},
	"code":     {backendPath: "/api/code", requiredField: "prompt"},
	"research": {backendPath: "/api/research", requiredField: "query"},
	"analyze":  {backendPath: "/api/analyze", requiredField: "datasetId"},
}

// Handler forwards assist requests to the compute backend.
type Handler struct {
	Client *backend.Client
}

// NewHandler constructs a Handler.
func NewHandler(client *backend.Client) *Handler {
	return &Handler{Client: client}
}

// RegisterRoutes attaches assist routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/assist/:feature", h.forward)
}

func (h *Handler) forward(c *gin.Context) {
	feature := c.Param("feature")
	r, ok := routes[feature]
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "unknown assist feature", nil)
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodySize))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read body", nil)
		return
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	raw, present := fields[r.requiredField]
	if !present {
		respond.Error(c, http.StatusBadRequest, "validation_error", r.requiredField+" is required", nil)
		return
	}
	if s, isString := raw.(string); isString && strings.TrimSpace(s) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", r.requiredField+" is required", nil)
		return
	}

	status, respBody, err := h.Client.Forward(c.Request.Context(), r.backendPath, body)
	if err != nil {
		if errors.Is(err, backend.ErrNotConfigured) {
			respond.Error(c, http.StatusServiceUnavailable, "not_configured", "assist backend not configured", nil)
			return
		}
		respond.Error(c, http.StatusBadGateway, "upstream_error", "assist backend unavailable", nil)
		return
	}

	c.Data(status, "application/json", respBody)
}
