package insights

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"engunity-backend/internal/shared/server/respond"
)

// Handler serves the synthesized analysis endpoints.
type Handler struct{}

// NewHandler constructs a Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/analysis/:datasetId/summary", h.summary)
	rg.GET("/analysis/:datasetId/charts", h.charts)
	rg.GET("/analysis/:datasetId/insights", h.insights)
}

func datasetID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("datasetId"))
	if id == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "datasetId is required", nil)
		return "", false
	}
	return id, true
}

func (h *Handler) summary(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	respond.OK(c, Summarize(id))
}

func (h *Handler) charts(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	chartType := c.DefaultQuery("type", "bar")
	respond.OK(c, BuildChart(id, chartType))
}

func (h *Handler) insights(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	count := 4
	if v := c.Query("count"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			count = parsed
		}
	}
	respond.OK(c, gin.H{"datasetId": id, "insights": Generate(id, count)})
}
