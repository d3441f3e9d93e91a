package app

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/hisabi/hisabi/internal/config"
	"github.com/hisabi/hisabi/pkg/user"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Tag every request with an id for log correlation.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			requestId := req.Header.Get("X-Request-Id")
			if requestId == "" {
				requestId = uuid.NewString()
			}
			w.Header().Set("X-Request-Id", requestId)
			log.WithField("requestId", requestId).Debugf("%s %s", req.Method, req.URL.Path)
			next.ServeHTTP(w, req)
		})
	})

	// Propagate the trusted X-User-Id header into context for downstream
	// services. Authentication happens upstream; every API call must arrive
	// with an identity already established.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			userIdHeader := req.Header.Get("X-User-Id")
			if userIdHeader == "" {
				http.Error(w, "user not found", http.StatusForbidden)
				return
			}
			userId, err := strconv.Atoi(userIdHeader)
			if err != nil {
				log.Debugf("invalid user id header: %q", userIdHeader)
				http.Error(w, "invalid user id", http.StatusBadRequest)
				return
			}
			ctx := user.WithId(req.Context(), userId)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}
