package app

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/creativespark/fablab-booking/internal/config"
	"github.com/creativespark/fablab-booking/pkg/user"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Tag every request with an id and log method, path, and duration.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			requestID := req.Header.Get("X-Request-Id")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-Id", requestID)

			start := time.Now()
			next.ServeHTTP(w, req)

			log.WithFields(log.Fields{
				"requestId": requestID,
				"method":    req.Method,
				"path":      req.URL.Path,
				"duration":  time.Since(start).String(),
			}).Debug("Request handled")
		})
	})

	// Propagate identity headers into context for downstream services.
	// Identity is self-declared, matching the workshop's trust model.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			name := req.Header.Get("X-User-Name")
			email := req.Header.Get("X-User-Email")
			ctx := req.Context()

			if email != "" {
				ctx = user.WithUser(ctx, user.User{Name: name, Email: email})
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}
