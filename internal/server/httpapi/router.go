// Package httpapi is the REST transport. Routes and payloads follow the
// JSON API the browser front end talks to.
package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/cyclelogin/internal/logging"
	"github.com/dmitrijs2005/cyclelogin/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// Handler binds HTTP requests to the services.
type Handler struct {
	svc    *services.Services
	logger logging.Logger
}

func NewHandler(svc *services.Services, l logging.Logger) *Handler {
	return &Handler{svc: svc, logger: l}
}

// NewRouter registers the routes and the middleware stack.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(h.recoverMiddleware)
	r.Use(h.loggingMiddleware)
	r.Use(corsMiddleware)

	r.Get("/healthz", h.healthz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/dev", h.exchangeDevPIN)
		r.Post("/validate", h.validate)
		r.Get("/visit-count", h.getVisitCount)
		r.Post("/visit-count/inc", h.incrementVisitCount)
		r.Post("/visits", h.recordVisit)
		r.Patch("/visits/last-duration", h.amendLastDuration)

		r.Group(func(r chi.Router) {
			r.Use(h.devAuthMiddleware)
			r.Get("/users", h.listUsers)
			r.Post("/users", h.createUser)
			r.Post("/users/bulk-add-license", h.bulkAddLicense)
			r.Delete("/users/{id}", h.deleteUser)
			r.Patch("/users/{id}/license", h.updateLicense)
			r.Get("/visits", h.listVisits)
			r.Get("/visits/by-user", h.visitsByUser)
			r.Post("/visit-count/reset", h.resetVisitCount)
		})
	})

	return r
}
