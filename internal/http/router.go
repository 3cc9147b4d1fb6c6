package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/horizone/hotel-bookings-and-payments/internal/observability"
	"github.com/horizone/hotel-bookings-and-payments/internal/rateLimit"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(h *Handlers, logger observability.Logger, rl *rateLimit.RateLimiter, jwtSecret string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(MetricsMiddleware)
	r.Use(TracingMiddleware)

	// The webhook verifies its own signature and must see the raw payload,
	// so it stays outside the auth and rate-limit chains.
	r.Post("/api/stripe/webhook", h.StripeWebhook)

	auth := AuthMiddleware(jwtSecret)

	r.Route("/api/hotels", func(r chi.Router) {
		r.Use(RateLimitMiddleware(rl))
		r.Get("/", h.GetAllHotels)
		r.Get("/search", h.SearchHotels)
		r.Post("/ai", h.RecommendHotel)
		r.With(auth).Get("/{id}", h.GetHotelByID)
		r.With(auth, AdminMiddleware).Post("/", h.CreateHotel)
		r.With(auth, AdminMiddleware).Put("/{id}", h.UpdateHotel)
		r.With(auth, AdminMiddleware).Patch("/{id}", h.PatchHotelPrice)
		r.With(auth, AdminMiddleware).Delete("/{id}", h.DeleteHotel)
		r.With(auth, AdminMiddleware).Post("/{id}/stripe/price", h.CreateHotelPrice)
	})

	r.Route("/api/bookings", func(r chi.Router) {
		r.Use(auth)
		r.Use(RateLimitMiddleware(rl))
		r.Post("/", h.CreateBooking)
		r.With(AdminMiddleware).Get("/", h.GetAllBookings)
		r.Get("/hotels/{hotelId}", h.GetBookingsForHotel)
		r.Get("/user/{userId}", h.GetBookingsForUser)
		r.Get("/{bookingId}", h.GetBookingByID)
	})

	r.Route("/api/locations", func(r chi.Router) {
		r.Use(RateLimitMiddleware(rl))
		r.Get("/", h.GetAllLocations)
		r.Get("/{id}", h.GetLocationByID)
		r.With(auth, AdminMiddleware).Post("/", h.CreateLocation)
		r.With(auth, AdminMiddleware).Put("/{id}", h.UpdateLocation)
		r.With(auth, AdminMiddleware).Delete("/{id}", h.DeleteLocation)
	})

	r.Route("/api/reviews", func(r chi.Router) {
		r.Use(RateLimitMiddleware(rl))
		r.Get("/hotels/{hotelId}", h.GetReviewsForHotel)
		r.With(auth).Post("/", h.CreateReview)
		r.With(auth, AdminMiddleware).Delete("/{reviewId}", h.DeleteReview)
	})

	r.Route("/api/payments", func(r chi.Router) {
		r.Use(auth)
		r.Use(RateLimitMiddleware(rl))
		r.Post("/create-checkout-session", h.CreateCheckoutSession)
		r.Get("/session-status", h.GetSessionStatus)
	})

	r.Get("/v1/healthz", h.Healthz)
	r.Get("/v1/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
