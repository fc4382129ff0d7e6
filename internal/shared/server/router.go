package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"audit-backend/internal/audits"
	"audit-backend/internal/leads"
	"audit-backend/internal/progress"
	"audit-backend/internal/services/health"
	"audit-backend/internal/shared/config"
	"audit-backend/internal/shared/metrics"
	"audit-backend/internal/shared/server/middleware"
	"audit-backend/internal/shared/server/respond"
)

const (
	rateGroupAudit = "AUDIT"
	rateGroupLead  = "LEAD"
)

// RouterDeps are the handlers mounted by NewRouter.
type RouterDeps struct {
	Config       config.Config
	Health       *health.Service
	AuditHandler *audits.Handler
	LeadHandler  *leads.Handler
	// Limiter is shared across requests; nil builds a fresh one.
	Limiter *middleware.RateLimiter
}

// StepsResponse lists the cosmetic progress labels shown while an audit runs.
type StepsResponse struct {
	Steps      []string `json:"steps"`
	IntervalMs int64    `json:"intervalMs"`
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				rateGroupAudit: middleware.PerMinute(deps.Config.AuditRatePerMinute, deps.Config.AuditRateBurst),
				rateGroupLead:  middleware.PerMinute(deps.Config.AuditRatePerMinute*2, deps.Config.AuditRateBurst*2),
			},
			GroupFor: rateGroupFor,
			Limiter:  deps.Limiter,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, deps.Health.Status())
	})
	api.GET("/audits/steps", func(c *gin.Context) {
		respond.OK(c, StepsResponse{
			Steps:      progress.Steps,
			IntervalMs: int64(progress.Interval / time.Millisecond),
		})
	})
	if deps.AuditHandler != nil {
		deps.AuditHandler.RegisterRoutes(api)
	}
	if deps.LeadHandler != nil {
		deps.LeadHandler.RegisterRoutes(api)
	}

	return r
}

// rateGroupFor limits only the POST routes; reads fall into the unlimited
// default group.
func rateGroupFor(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return ""
	}
	switch path := c.Request.URL.Path; {
	case strings.HasSuffix(path, "/audits"):
		return rateGroupAudit
	case strings.HasSuffix(path, "/leads"):
		return rateGroupLead
	}
	return ""
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
