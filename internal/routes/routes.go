package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AnshRaj112/soloura-backend/internal/handlers"
	"github.com/AnshRaj112/soloura-backend/internal/metrics"
	"github.com/AnshRaj112/soloura-backend/internal/middleware"
)

// Deps is everything the router needs. Metrics, Health and AIRateLimit are optional.
type Deps struct {
	Auth     *handlers.AuthHandler
	Journal  *handlers.JournalHandler
	Insights *handlers.InsightsHandler
	Analysis *handlers.AnalysisHandler
	Tokens   middleware.TokenVerifier
	Metrics  *metrics.Metrics
	Health   map[string]handlers.Pinger
	Logger   *zap.Logger

	AllowedOrigins []string
	AllowedHost    string
	Production     bool
	// AIRateLimit guards the public AI endpoints, typically the Redis limiter.
	AIRateLimit func(http.Handler) http.Handler
}

// NewRouter builds the full middleware stack and registers every route.
func NewRouter(d Deps) *chi.Mux {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(d.Logger, d.Metrics))
	r.Use(middleware.CORS(d.AllowedOrigins))

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit
	if d.Production {
		for _, mw := range middleware.ProductionSecurity(d.AllowedHost) {
			r.Use(mw)
		}
	}

	// Health check and metrics (no auth)
	r.Get("/health", handlers.Health(d.Health))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	SetupRoutes(r, d)
	return r
}

func SetupRoutes(r chi.Router, d Deps) {
	requireAuth := middleware.RequireAuth(d.Tokens)

	// Identity provider
	r.Post("/api/auth/signup", d.Auth.Signup)
	r.Post("/api/auth/signin", d.Auth.Signin)
	r.Post("/api/auth/signout", d.Auth.Signout)
	r.Post("/api/auth/refresh", d.Auth.Refresh)
	r.Post("/api/auth/verify-email", d.Auth.VerifyEmail)
	r.With(requireAuth).Get("/api/auth/me", d.Auth.Me)

	// Auth-state stream (token in query for browsers)
	r.Get("/ws/auth", d.Auth.AuthStream)

	// Journal entries
	r.Route("/api/journal-entries", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", d.Journal.List)
		r.Post("/", d.Journal.Create)
		r.Get("/latest", d.Journal.Latest)
		r.Get("/count", d.Journal.Count)
		r.Get("/recent", d.Journal.Recent)
		r.Get("/{id}", d.Journal.Get)
		r.Patch("/{id}", d.Journal.Update)
		r.Delete("/{id}", d.Journal.Delete)
		r.Post("/{id}/analysis", d.Journal.Analyze)
	})

	// Dashboard, mood tracker and projections
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/api/dashboard", d.Insights.Dashboard)
		r.Get("/api/mood-tracker", d.Insights.MoodTracker)
		r.Get("/api/insights/calendar", d.Insights.Calendar)
		r.Get("/api/insights/series", d.Insights.Series)
		r.Post("/api/insights/trend", d.Insights.Trend)
	})

	// Public AI surface. Any method is routed so non-POST gets the 405 body.
	r.Group(func(r chi.Router) {
		if d.AIRateLimit != nil {
			r.Use(d.AIRateLimit)
		}
		r.HandleFunc("/api/analyze-mood", d.Analysis.AnalyzeMood)
		r.HandleFunc("/api/get-wellbeing-tips", d.Analysis.WellbeingTips)
	})

	// Crisis helplines
	r.Get("/api/helplines", handlers.Helplines)
}
