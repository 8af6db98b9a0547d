package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"teamwrite/internal/metrics"
	"teamwrite/internal/repositories"
	"teamwrite/internal/session"
	"teamwrite/internal/utils"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// DocumentWS admits one streaming connection to a document session. The
// credential travels as a ?token= query parameter and is checked exactly
// once, before any session state exists; every rejection closes the stream
// with a distinct reason and leaves no trace in the registry.
func (h *Handlers) DocumentWS(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "id")
	token := r.URL.Query().Get("token")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	sc := session.NewConn(conn)

	// A fault in admission or relay closes this connection only; the hub and
	// every other room stay up.
	defer func() {
		if rec := recover(); rec != nil {
			h.log.Error("websocket session panic",
				zap.String("document", docID), zap.Any("panic", rec))
			metrics.AdmissionRejected("internal_error")
			sc.Close(websocket.CloseInternalServerErr, "internal error")
		}
	}()

	if token == "" {
		h.reject(sc, websocket.ClosePolicyViolation, "credential required")
		return
	}

	claims, err := utils.ValidateAccessToken(token)
	if err != nil {
		h.reject(sc, websocket.ClosePolicyViolation, "invalid credential")
		return
	}
	if h.tokens != nil {
		revoked, err := h.tokens.IsRevoked(r.Context(), token)
		if err != nil {
			h.log.Error("token revocation lookup failed", zap.String("document", docID))
			h.reject(sc, websocket.CloseInternalServerErr, "internal error")
			return
		}
		if revoked {
			h.reject(sc, websocket.ClosePolicyViolation, "invalid credential")
			return
		}
	}

	doc, err := h.docs.GetByID(r.Context(), docID)
	if err != nil {
		if errors.Is(err, repositories.ErrDocumentNotFound) {
			h.reject(sc, websocket.ClosePolicyViolation, "access denied")
			return
		}
		h.log.Error("document lookup failed", zap.String("document", docID))
		h.reject(sc, websocket.CloseInternalServerErr, "internal error")
		return
	}
	if !doc.HasCollaborator(claims.UserID) {
		h.reject(sc, websocket.ClosePolicyViolation, "access denied")
		return
	}

	h.hub.Serve(docID, claims.UserID, claims.Username, sc)
}

func (h *Handlers) reject(sc *session.Conn, code int, reason string) {
	metrics.AdmissionRejected(metricReason(reason))
	sc.Close(code, reason)
}

func metricReason(reason string) string {
	switch reason {
	case "credential required":
		return "credential_required"
	case "invalid credential":
		return "invalid_credential"
	case "access denied":
		return "access_denied"
	default:
		return "internal_error"
	}
}
