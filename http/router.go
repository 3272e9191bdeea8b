package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter mounts the upload form, the offer endpoint and the health check.
// The rate limiter applies to offer generation only.
func NewRouter(offers *OfferHandler, health *HealthHandler, limiter *RateLimiter, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLog(logger))
	r.Use(chimw.Recoverer)

	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/", offers.Index)
	r.Get("/healthz", health.Health)

	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return RateLimitMiddleware(limiter, next)
		})
		// GET has no body, so it is answered with "No file part".
		r.Get("/generate_offers", offers.GenerateOffers)
		r.Post("/generate_offers", offers.GenerateOffers)
	})

	return r
}

func requestLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request",
				zap.String("request_id", chimw.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
