package insights

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSummarizeIsStablePerDataset(t *testing.T) {
	a := Summarize("ds-1")
	b := Summarize("ds-1")
	a.GeneratedAt, b.GeneratedAt = "", ""
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same dataset produced different summaries:\n%+v\n%+v", a, b)
	}

	other := Summarize("ds-2")
	other.GeneratedAt, other.DatasetID = "", a.DatasetID
	if reflect.DeepEqual(other, a) {
		t.Fatalf("different datasets produced identical summaries")
	}
}

func TestBuildChartFallsBackToBar(t *testing.T) {
	chart := BuildChart("ds-1", "scatter")
	if chart.Type != "bar" {
		t.Fatalf("type = %q, want bar fallback", chart.Type)
	}
	if len(chart.Series) != 4 {
		t.Fatalf("series length = %d, want 4", len(chart.Series))
	}
}

func TestBuildChartIsStablePerDatasetAndType(t *testing.T) {
	a := BuildChart("ds-1", "line")
	b := BuildChart("ds-1", "line")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same dataset and type produced different charts")
	}
}

func TestGenerateClampsCount(t *testing.T) {
	if got := len(Generate("ds-1", -3)); got != 4 {
		t.Fatalf("negative count produced %d insights, want 4", got)
	}
	if got := len(Generate("ds-1", 50)); got != 4 {
		t.Fatalf("oversized count produced %d insights, want 4", got)
	}
	if got := len(Generate("ds-1", 2)); got != 2 {
		t.Fatalf("count=2 produced %d insights", got)
	}

	for _, insight := range Generate("ds-1", 4) {
		if insight.Confidence < 0.5 || insight.Confidence > 1.0 {
			t.Fatalf("confidence out of range: %v", insight.Confidence)
		}
	}
}

func TestHandlerRejectsBlankDatasetID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	NewHandler().RegisterRoutes(api)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/%20/summary", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
}
