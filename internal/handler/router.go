package handler

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/krishisakhi/backend/internal/advisor"
	"github.com/krishisakhi/backend/internal/detection"
	"github.com/krishisakhi/backend/internal/featureflags"
	"github.com/krishisakhi/backend/internal/knowledge"
	"github.com/krishisakhi/backend/internal/observability/metrics"
	"github.com/krishisakhi/backend/internal/security/audit"
	"github.com/krishisakhi/backend/internal/security/auth"
	"github.com/krishisakhi/backend/internal/security/middleware"
	"github.com/krishisakhi/backend/internal/security/ratelimit"
	"github.com/krishisakhi/backend/internal/service"
	"github.com/krishisakhi/backend/internal/weather"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Auth          *service.AuthService
	Records       *service.RecordService
	Detections    *detection.Service
	Weather       *weather.Service
	Catalog       *knowledge.Catalog
	Advisor       *advisor.Engine
	Tokens        *auth.TokenManager
	Limiter       *ratelimit.Limiter
	AuditLog      *audit.Logger
	Flags         featureflags.Flags
	LoginAttempts int
	Origins       []string
	Checks        map[string]CheckFunc
	Logger        *slog.Logger
}

// NewRouter registers every route and wraps the mux in the middleware
// chain: request id, CORS, JWT, rate limit, audit, input validation.
func NewRouter(d Deps) http.Handler {
	log := d.Logger
	authHandler := NewAuthHandler(d.Auth, d.Limiter, d.LoginAttempts, d.Flags, log)
	records := NewRecordHandler(d.Records, log)
	detections := NewDetectionHandler(d.Detections, log)
	forecasts := NewWeatherHandler(d.Weather, d.Auth, log)
	articles := NewKnowledgeHandler(d.Catalog, log)
	chat := NewChatHandler(d.Advisor, log, d.Origins)
	health := NewHealthHandler(d.Checks, log)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", health.Health)
	mux.HandleFunc("GET /readyz", health.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("POST /api/auth/register",
		middleware.RequireJSONFields(log, "name", "phone", "email", "password")(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login",
		middleware.RequireJSONFields(log, "phone", "password")(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("POST /api/auth/demo-login", authHandler.DemoLogin)
	mux.HandleFunc("POST /api/auth/change-password", authHandler.ChangePassword)
	mux.HandleFunc("GET /api/farmers/me", authHandler.Profile)
	mux.HandleFunc("PATCH /api/farmers/me/language", authHandler.UpdateLanguage)

	mux.HandleFunc("POST /api/farms", records.CreateFarm)
	mux.HandleFunc("GET /api/farms", records.ListFarms)
	mux.HandleFunc("POST /api/activities", records.CreateActivity)
	mux.HandleFunc("GET /api/activities", records.ListActivities)
	mux.HandleFunc("GET /api/activities/export", records.ExportActivities)
	mux.HandleFunc("GET /api/activities/{id}", records.GetActivity)
	mux.HandleFunc("GET /api/dashboard", records.Dashboard)

	mux.HandleFunc("POST /api/detections", detections.Detect)
	mux.HandleFunc("GET /api/community/alerts", detections.CommunityAlerts)
	mux.HandleFunc("GET /api/weather", forecasts.Forecast)
	mux.HandleFunc("GET /api/knowledge/{kind}", articles.Articles)

	mux.HandleFunc("POST /api/chat", chat.Chat)
	mux.HandleFunc("GET /ws/chat", chat.ServeWS)

	var h http.Handler = mux
	h = middleware.ValidateJSONContentType(log)(h)
	h = middleware.SanitizeInputs(log)(h)
	h = middleware.AuditMiddleware(d.AuditLog)(h)
	h = middleware.RateLimitMiddleware(d.Limiter, log)(h)
	h = middleware.JWTMiddleware(d.Tokens, log)(h)
	h = middleware.CORS(d.Origins)(h)
	h = middleware.RequestID(log)(h)
	return metrics.HTTPMetricsMiddleware(h)
}
