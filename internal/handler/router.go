package handler

import (
	"AuthTokens_Service/internal/pkg/log"
	"AuthTokens_Service/internal/security"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log/slog"
	"net/http"
	"time"
)

type RouterConfig struct {
	// CORSOrigin is the single browser origin allowed to call with credentials.
	CORSOrigin string
	Gatherer   prometheus.Gatherer
	Logger     *slog.Logger
}

func NewRouter(handler *AuthenticationHandler, config RouterConfig) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(RequestLogger(config.Logger))
	router.Use(middleware.Recoverer)
	if config.CORSOrigin != "" {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{config.CORSOrigin},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/ping", handler.Ping)
	router.Post("/register", handler.Register)
	router.Post("/login", handler.Login)
	router.Post("/refresh_token", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	router.Group(func(r chi.Router) {
		r.Use(security.JWTMiddleware(handler.AuthenticationService))
		r.Get("/protected", handler.Protected)
		r.Post("/protected", handler.Protected)
	})

	if config.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{}))
	}

	return router
}

// RequestLogger puts a request-scoped logger into the context and writes one
// line per request.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			start := time.Now()

			logger := base.With(
				slog.String("request_id", middleware.GetReqID(request.Context())),
				slog.String("method", request.Method),
				slog.String("path", request.URL.Path),
				slog.String("remote_addr", request.RemoteAddr),
			)

			wrapped := middleware.NewWrapResponseWriter(writer, request.ProtoMajor)
			next.ServeHTTP(wrapped, request.WithContext(log.Into(request.Context(), logger)))

			logger.Info("http_request",
				slog.Int("status", wrapped.Status()),
				slog.Duration("dur", time.Since(start)),
			)
		})
	}
}
