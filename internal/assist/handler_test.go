package assist

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"engunity-backend/internal/backend"
)

func newTestRouter(client *backend.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	NewHandler(client).RegisterRoutes(api)
	return router
}

func post(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestForwardRelaysUpstreamVerbatim(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("backend path = %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"reply":"hello back"}`))
	}))
	defer upstream.Close()

	router := newTestRouter(backend.NewClient(upstream.URL))
	resp := post(router, "/api/v1/assist/chat", `{"message":"hello"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", resp.Code, resp.Body.String())
	}
	if resp.Body.String() != `{"reply":"hello back"}` {
		t.Fatalf("body = %s", resp.Body.String())
	}
}

func TestForwardRelaysUpstreamErrors(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":"bad prompt"}`))
	}))
	defer upstream.Close()

	router := newTestRouter(backend.NewClient(upstream.URL))
	resp := post(router, "/api/v1/assist/code", `{"prompt":"write code"}`)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want upstream status relayed", resp.Code)
	}
}

func TestMissingRequiredFieldIs400(t *testing.T) {
	router := newTestRouter(backend.NewClient("http://127.0.0.1:1"))

	cases := map[string]string{
		"/api/v1/assist/chat":     `{"prompt":"wrong field"}`,
		"/api/v1/assist/code":     `{"message":"wrong field"}`,
		"/api/v1/assist/research": `{"query":"   "}`,
		"/api/v1/assist/analyze":  `{}`,
	}
	for path, body := range cases {
		if resp := post(router, path, body); resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", path, resp.Code)
		}
	}
}

func TestUnknownFeatureIs404(t *testing.T) {
	router := newTestRouter(backend.NewClient("http://127.0.0.1:1"))
	if resp := post(router, "/api/v1/assist/translate", `{"message":"x"}`); resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.Code)
	}
}

func TestUnconfiguredBackendIs503(t *testing.T) {
	router := newTestRouter(backend.NewClient(""))
	if resp := post(router, "/api/v1/assist/chat", `{"message":"x"}`); resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.Code)
	}
}

func TestUnreachableBackendIs502(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	router := newTestRouter(backend.NewClient(upstream.URL))
	if resp := post(router, "/api/v1/assist/chat", `{"message":"x"}`); resp.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.Code)
	}
}
