package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/jomilu93/restaurant-booking-app/pkg/middleware"
)

// SetupRouter configures all routes and returns the HTTP handler.
func SetupRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	registerAPIRoutes(mux, deps)
	registerUtilityRoutes(mux, deps)

	chain := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.Recovery(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.UserID(deps.Logger),
	}
	if deps.Config.Observability.MetricsEnabled {
		chain = append(chain, middleware.Metrics)
	}
	if deps.Config.Server.RateLimitPerSecond > 0 && deps.Config.Server.RateLimitBurst > 0 {
		limiter := rate.NewLimiter(
			rate.Limit(float64(deps.Config.Server.RateLimitPerSecond)),
			deps.Config.Server.RateLimitBurst,
		)
		chain = append(chain, middleware.RateLimit(limiter))
	}

	handler := middleware.Chain(mux, chain...)

	// Browser clients (local frontend) need CORS.
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			middleware.RequestIDHeader,
			middleware.UserIDHeader,
		},
		AllowCredentials: true,
	})

	return corsHandler.Handler(handler)
}

// registerAPIRoutes registers the JSON API routes.
func registerAPIRoutes(mux *http.ServeMux, deps *Dependencies) {
	mux.HandleFunc("GET /api/restaurants", deps.RestaurantHandler.List)
	mux.HandleFunc("GET /api/restaurants/trending", deps.RecommendationHandler.Trending)
	mux.HandleFunc("GET /api/restaurants/recommendations", deps.RecommendationHandler.Recommendations)
	mux.HandleFunc("GET /api/restaurants/{id}", deps.RestaurantHandler.Detail)
	mux.HandleFunc("GET /api/restaurants/{id}/similar", deps.RecommendationHandler.Similar)
	mux.HandleFunc("GET /api/restaurants/{id}/availability", deps.RestaurantHandler.Availability)

	mux.HandleFunc("GET /api/bookings", deps.BookingHandler.List)
	mux.HandleFunc("POST /api/bookings", deps.BookingHandler.Create)
	mux.HandleFunc("DELETE /api/bookings/{id}", deps.BookingHandler.Cancel)

	mux.HandleFunc("POST /api/reviews", deps.ReviewHandler.Submit)

	mux.HandleFunc("GET /api/preferences", deps.PreferencesHandler.Get)
	mux.HandleFunc("PUT /api/preferences", deps.PreferencesHandler.Update)

	deps.Logger.Info("API routes configured")
}

// registerUtilityRoutes registers health check, readiness and metrics routes.
func registerUtilityRoutes(mux *http.ServeMux, deps *Dependencies) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := deps.DB.Health(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("database unhealthy"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if deps.Config.Observability.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
		deps.Logger.Info("registered metrics endpoint", "path", "/metrics")
	}
}
