// Package handler wires the chi router: middleware, route tree and the
// thin HTTP handlers that translate between the JSON envelope and the
// service layer.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/helpers-app/helpers-api/internal/config"
	"github.com/helpers-app/helpers-api/internal/domain"
	"github.com/helpers-app/helpers-api/internal/infra/observability"
	"github.com/helpers-app/helpers-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles the service-layer dependencies of the router.
type Services struct {
	Auth     *service.AuthService
	Catalog  *service.CatalogService
	Provider *service.ProviderService
	Booking  *service.BookingService
	Review   *service.ReviewService
	Payment  *service.PaymentService
	Admin    *service.AdminService
	Upload   *service.UploadService
}

// Pinger reports backend reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svcs Services, store Pinger, metrics *observability.Metrics, cfg *config.Config, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: cfg.CORSOrigin != "*",
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(store, metrics, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// Uploaded files are served straight from disk outside production;
	// production puts a CDN or object store in front instead.
	if cfg.Env != "production" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir)))
		r.Get("/uploads/*", fileServer.ServeHTTP)
	}

	rateLimiter := NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)

	// --- API v1 ---
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimiter.Middleware(logger))

		// =============================================
		// Auth
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authRegisterHandler(svcs.Auth, logger))
			r.Post("/login", authLoginHandler(svcs.Auth, logger))
			r.Post("/refresh", authRefreshHandler(svcs.Auth, logger))

			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(svcs.Auth, logger))
				r.Post("/logout", authLogoutHandler(svcs.Auth, logger))
				r.Get("/profile", getProfileHandler(svcs.Auth, logger))
				r.Put("/profile", updateProfileHandler(svcs.Auth, logger))
			})
		})

		// =============================================
		// Public reads — optional auth so admins and owners
		// keep their identity on shared paths
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(OptionalJWTAuth(svcs.Auth, logger))

			// Catalog — public reads, admin writes live under /admin
			r.Get("/categories", listCategoriesHandler(svcs.Catalog, logger))
			r.Get("/categories/{categoryId}", getCategoryHandler(svcs.Catalog, logger))
			r.Get("/services", listServicesHandler(svcs.Catalog, logger))
			// Alias kept for clients that browse categories under /services.
			r.Get("/services/categories", listCategoriesHandler(svcs.Catalog, logger))
			r.Get("/services/{serviceId}", getServiceHandler(svcs.Catalog, logger))

			// Providers — public directory
			r.Get("/providers", listProvidersHandler(svcs.Provider, logger))
			r.Get("/providers/{providerId}", getProviderHandler(svcs.Provider, logger))
			r.Get("/providers/{providerId}/services", listProviderServicesHandler(svcs.Provider, logger))
			r.Get("/providers/{providerId}/availability", listAvailabilityHandler(svcs.Provider, logger))
			r.Get("/providers/{providerId}/reviews", listProviderReviewsHandler(svcs.Provider, svcs.Review, logger))
		})

		// =============================================
		// Authenticated surface
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			// Provider self-service
			r.Post("/providers", registerProviderHandler(svcs.Provider, logger))
			r.Get("/providers/me", getOwnProviderHandler(svcs.Provider, logger))
			r.Put("/providers/me", updateProviderHandler(svcs.Provider, logger))
			r.Post("/providers/me/services", attachServiceHandler(svcs.Provider, logger))
			r.Delete("/providers/me/services/{serviceId}", detachServiceHandler(svcs.Provider, logger))
			r.Post("/providers/me/availability", addAvailabilityHandler(svcs.Provider, logger))
			r.Delete("/providers/me/availability/{availabilityId}", removeAvailabilityHandler(svcs.Provider, logger))

			// Bookings
			r.Post("/bookings", createBookingHandler(svcs.Booking, logger))
			r.Get("/bookings", listBookingsHandler(svcs.Booking, logger))
			// Alias for clients that fetch their bookings under /bookings/user.
			r.Get("/bookings/user", listBookingsHandler(svcs.Booking, logger))
			r.Get("/bookings/{bookingId}", getBookingHandler(svcs.Booking, logger))
			r.Patch("/bookings/{bookingId}/status", updateBookingStatusHandler(svcs.Booking, logger))
			r.Put("/bookings/{bookingId}/status", updateBookingStatusHandler(svcs.Booking, logger))

			// Reviews
			r.Post("/reviews", createReviewHandler(svcs.Review, logger))

			// Payments
			r.Post("/payments/intent", createPaymentIntentHandler(svcs.Payment, logger))
			r.Post("/payments/confirm", confirmPaymentHandler(svcs.Payment, logger))

			// Uploads
			r.Route("/upload", func(r chi.Router) {
				r.Post("/avatar", avatarUploadHandler(svcs.Upload, svcs.Auth, cfg.MaxFileSize, logger))
				r.Post("/service-image", uploadHandler(svcs.Upload, "services", cfg.MaxFileSize, logger))
			})

			// Admin
			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireRole(logger, domain.RoleAdmin))
				r.Get("/stats", adminStatsHandler(svcs.Admin, logger))
				r.Get("/users", adminListUsersHandler(svcs.Admin, logger))
				r.Get("/providers", adminListProvidersHandler(svcs.Admin, logger))
				r.Get("/bookings", adminListBookingsHandler(svcs.Admin, logger))
				r.Patch("/users/{userId}/role", adminUpdateUserRoleHandler(svcs.Admin, logger))
				r.Patch("/providers/{providerId}/verify", adminVerifyProviderHandler(svcs.Admin, logger))
				r.Put("/providers/{providerId}/verify", adminVerifyProviderHandler(svcs.Admin, logger))
				r.Post("/categories", createCategoryHandler(svcs.Catalog, logger))
				r.Put("/categories/{categoryId}", updateCategoryHandler(svcs.Catalog, logger))
				r.Post("/services", createServiceHandler(svcs.Catalog, logger))
				r.Put("/services/{serviceId}", updateServiceHandler(svcs.Catalog, logger))
			})
		})

		// Gateway webhook — authenticated by the gateway, not by users.
		r.Post("/payments/webhook", paymentWebhookHandler(svcs.Payment, logger))
	})

	return r
}

// ============================================================
// Health
// ============================================================

func healthzHandler(store Pinger, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		status := "healthy"
		dbStatus := "healthy"
		var latencyMs int64
		if store != nil {
			start := time.Now()
			if err := store.Ping(ctx); err != nil {
				logger.Warn("healthz: supabase unreachable", zap.Error(err))
				dbStatus = "degraded"
				status = "degraded"
			}
			latencyMs = time.Since(start).Milliseconds()
		}

		writeSuccess(w, http.StatusOK, map[string]any{
			"status": status,
			"services": []map[string]any{
				{"name": "helpers-api", "status": "healthy", "last_checked": now},
				{"name": "supabase", "status": dbStatus, "latency_ms": latencyMs, "last_checked": now},
			},
			"cache_hit_rate": metrics.CacheHitRate("categories"),
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
