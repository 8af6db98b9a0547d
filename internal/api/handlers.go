package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"teamwrite/internal/session"
	"teamwrite/internal/utils"
)

// Handlers bundles the HTTP and WebSocket endpoints with their dependencies.
type Handlers struct {
	log    *zap.Logger
	users  UserStore
	docs   DocumentStore
	tokens TokenRevoker
	hub    *session.Hub
}

func NewHandlers(log *zap.Logger, users UserStore, docs DocumentStore, tokens TokenRevoker) *Handlers {
	return &Handlers{
		log:    log,
		users:  users,
		docs:   docs,
		tokens: tokens,
		hub:    session.NewHub(log),
	}
}

// Hub exposes the session hub so the server can drain it on shutdown.
func (h *Handlers) Hub() *session.Hub { return h.hub }

func (h *Handlers) Root(w http.ResponseWriter, _ *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Collaborative Editor API"})
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}
