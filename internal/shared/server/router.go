package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"engunity-backend/internal/account"
	"engunity-backend/internal/assist"
	googleauth "engunity-backend/internal/auth"
	"engunity-backend/internal/chat"
	"engunity-backend/internal/documents"
	"engunity-backend/internal/insights"
	"engunity-backend/internal/notifications"
	"engunity-backend/internal/projects"
	"engunity-backend/internal/settings"
	"engunity-backend/internal/shared/config"
	"engunity-backend/internal/shared/metrics"
	"engunity-backend/internal/shared/server/middleware"
	"engunity-backend/internal/shared/server/respond"
	"engunity-backend/internal/uploads"
	"engunity-backend/internal/users"
)

// RouterDeps carries the handlers the router mounts. Nil handlers are
// skipped so partial wiring (tests, the worker) still works.
type RouterDeps struct {
	Config               config.Config
	DocumentsHandler     *documents.Handler
	ChatHandler          *chat.Handler
	NotificationsHandler *notifications.Handler
	SettingsHandler      *settings.Handler
	ProjectsHandler      *projects.Handler
	AssistHandler        *assist.Handler
	InsightsHandler      *insights.Handler
	AccountHandler       *account.Handler
	UsersHandler         *users.Handler
	GoogleAuth           *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(rateLimitConfig()),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	} else {
		registerMeRoutes(api)
	}
	if deps.DocumentsHandler != nil {
		deps.DocumentsHandler.RegisterRoutes(api)
	}
	if deps.ChatHandler != nil {
		deps.ChatHandler.RegisterRoutes(api)
	}
	if deps.NotificationsHandler != nil {
		deps.NotificationsHandler.RegisterRoutes(api)
	}
	if deps.SettingsHandler != nil {
		deps.SettingsHandler.RegisterRoutes(api)
	}
	if deps.ProjectsHandler != nil {
		deps.ProjectsHandler.RegisterRoutes(api)
	}
	if deps.AssistHandler != nil {
		deps.AssistHandler.RegisterRoutes(api)
	}
	if deps.InsightsHandler != nil {
		deps.InsightsHandler.RegisterRoutes(api)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(api)
	}
	uploads.RegisterRoutes(api)

	return r
}

// rateLimitConfig gives document status polling more headroom than the
// default and keeps assist forwarding from hammering the compute backend.
func rateLimitConfig() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		DefaultGroup: "DEFAULT",
		GroupFor: func(c *gin.Context) string {
			switch {
			case c.Request.Method == http.MethodGet && c.FullPath() == "/api/v1/documents/:id":
				return "POLLING"
			case c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/assist/:feature":
				return "ASSIST"
			default:
				return "DEFAULT"
			}
		},
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT": {Rate: 10, Burst: 30},
			"POLLING": {Rate: 30, Burst: 60},
			"ASSIST":  {Rate: 2, Burst: 6},
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
