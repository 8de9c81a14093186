package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wellness-backend/internal/analysis"
	"wellness-backend/internal/sessions"
	"wellness-backend/internal/shared/config"
	"wellness-backend/internal/shared/metrics"
	"wellness-backend/internal/shared/server/middleware"
	"wellness-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers wired by bootstrap.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler *analysis.Handler
	SessionsHandler *sessions.Handler

	// Health reflects what bootstrap actually wired, not just what the
	// config asked for.
	Health HealthState
}

// HealthState reports which backing services are live.
type HealthState struct {
	Database     bool `json:"database"`
	TextProvider bool `json:"textProvider"`
	Voice        bool `json:"voice"`
	Face         bool `json:"face"`
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if !deps.Config.IsDevLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Identity(),
		middleware.RateLimit(analysisRateLimits()),
	)

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true, "services": deps.Health})
	})
	api.GET("/metrics", metrics.Handler())
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.Register(api)
	}
	if deps.SessionsHandler != nil {
		deps.SessionsHandler.Register(api)
	}

	return r
}

// analysisRateLimits throttles the provider-backed endpoints. Session
// reads stay unthrottled; every analyze call fans out to at least one
// paid external API.
func analysisRateLimits() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"ANALYZE": {Rate: 0.5, Burst: 5},
		},
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && isAnalyzePath(c.FullPath()) {
				return "ANALYZE"
			}
			return ""
		},
	}
}

func isAnalyzePath(path string) bool {
	switch path {
	case "/api/text/analyze", "/api/voice/analyze", "/api/face/analyze":
		return true
	}
	return false
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
