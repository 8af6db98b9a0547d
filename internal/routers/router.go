package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"teamwrite/internal/api"
	"teamwrite/internal/metrics"
)

// New wires every endpoint onto a chi router. The /api prefix mirrors the
// REST surface; the WebSocket endpoint lives outside it.
func New(log *zap.Logger, h *api.Handlers) http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/", h.Root)
		r.Get("/health", h.Health)

		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)
			r.Get("/auth/me", h.Me)
			r.Post("/auth/logout", h.Logout)

			r.Post("/documents", h.CreateDocument)
			r.Get("/documents", h.ListDocuments)
			r.Get("/documents/{id}", h.GetDocument)
			r.Put("/documents/{id}", h.UpdateDocument)
			r.Delete("/documents/{id}", h.DeleteDocument)
			r.Post("/documents/{id}/collaborators", h.AddCollaborator)
			r.Get("/documents/{id}/presence", h.Presence)
		})
	})

	r.Get("/ws/{id}", h.DocumentWS)

	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.Handler().ServeHTTP(w, r)
	})

	return r
}
