// Package api HTTP API для панели преподавателя. Все изменения идут через
// те же сервисы, что и бот, от имени первого преподавателя из списка.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter собирает роутер со всеми маршрутами
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		}))
	}

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(bearerAuth(h.token))

		r.Get("/slots", h.ListSlots)
		r.Get("/lessons", h.ListLessons)
		r.Get("/requests", h.ListRequests)

		r.Route("/students/{id}", func(r chi.Router) {
			r.Get("/balance", h.GetBalance)
			r.Post("/balance/lessons", h.CreditLessons)
			r.Post("/balance/deposit", h.CreditDeposit)
			r.Post("/lessons/confirm", h.ConfirmLessons)
			r.Delete("/lessons/{slotID}", h.CancelLesson)
		})
	})

	return r
}

// bearerAuth пропускает только запросы с Authorization: Bearer <token>.
// Пустой токен закрывает API целиком.
func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" || !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
