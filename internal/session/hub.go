package session

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"teamwrite/internal/metrics"
	"teamwrite/internal/models"
)

// Hub drives the lifecycle of document sessions. Admission hands a validated
// (document, user) pair to Serve, which registers presence, relays edit
// messages among room members, and cleans up when the stream ends.
type Hub struct {
	registry *Registry
	log      *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{registry: NewRegistry(), log: log}
}

// Presence returns the current membership of a document room.
func (h *Hub) Presence(docID string) []models.PresenceUser {
	return h.registry.Snapshot(docID)
}

// Serve runs one admitted connection until the peer disconnects or the
// stream errors. Receive is the only blocking point; every exit path removes
// the member and announces the new membership to the remaining room.
func (h *Hub) Serve(docID, userID, userName string, conn *Conn) {
	member := h.Join(docID, userID, userName, conn)
	defer h.Leave(docID, member)

	for {
		payload, err := conn.Receive()
		if err != nil {
			return
		}
		h.Relay(docID, userID, payload)
	}
}

// Join registers the member and broadcasts a fresh presence snapshot to the
// whole room, the joining member included. A still-open connection for the
// same (document, user) is closed and superseded rather than orphaned.
func (h *Hub) Join(docID, userID, userName string, conn *Conn) *Member {
	m := &Member{
		UserID:      userID,
		UserName:    userName,
		ConnectedAt: time.Now().UTC(),
		Conn:        conn,
	}
	if prev := h.registry.Add(docID, m); prev != nil {
		prev.Conn.Close(websocket.CloseNormalClosure, "session superseded")
		// The displaced connection's deferred Leave finds its slot taken and
		// returns early, so its open count is paid back here.
		metrics.ConnectionClosed(h.registry.RoomCount())
		h.log.Info("superseded live connection",
			zap.String("document", docID), zap.String("user", userID))
	}
	metrics.ConnectionOpened(h.registry.RoomCount())
	h.log.Info("member joined",
		zap.String("document", docID), zap.String("user", userID))
	h.broadcastPresence(docID)
	return m
}

// Leave removes exactly this member and notifies the remaining room. A member
// that was already evicted, or superseded by a newer connection for the same
// user, leaves without side effects.
func (h *Hub) Leave(docID string, m *Member) {
	if !h.registry.RemoveMember(docID, m) {
		return
	}
	metrics.ConnectionClosed(h.registry.RoomCount())
	h.log.Info("member left",
		zap.String("document", docID), zap.String("user", m.UserID))
	h.broadcastPresence(docID)
}

// Relay forwards the payload verbatim to every other member of the room. The
// hub does not parse or validate the message; edit semantics are a client
// concern. A member whose connection rejects the write is evicted, and the
// rest of the room still receives the message.
func (h *Hub) Relay(docID, senderID string, payload []byte) {
	failed := h.registry.ForEachExcept(docID, senderID, func(m *Member) error {
		return m.Conn.Send(payload)
	})
	metrics.MessageRelayed()
	for _, m := range failed {
		metrics.DeliveryFailed()
		h.log.Warn("evicting unreachable member",
			zap.String("document", docID), zap.String("user", m.UserID))
		m.Conn.Close(websocket.CloseGoingAway, "delivery failed")
		h.Leave(docID, m)
	}
}

// broadcastPresence sends the room's full membership to every member. A
// member that cannot take the event is dropped and the snapshot is sent
// again so the survivors see the shrunken room; each round removes at least
// one member, so the loop terminates. The evicted member's own Serve loop
// observes the closed stream and finishes the cleanup.
func (h *Hub) broadcastPresence(docID string) {
	for h.sendPresence(docID) {
	}
}

// sendPresence delivers one snapshot and reports whether any member was
// evicted for refusing it.
func (h *Hub) sendPresence(docID string) bool {
	event := models.PresenceEvent{Type: "presence", Users: h.registry.Snapshot(docID)}
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("marshal presence event", zap.Error(err))
		return false
	}
	dead := h.registry.ForEachExcept(docID, "", func(m *Member) error {
		return m.Conn.Send(payload)
	})
	removed := false
	for _, m := range dead {
		metrics.DeliveryFailed()
		m.Conn.Close(websocket.CloseGoingAway, "delivery failed")
		if h.registry.RemoveMember(docID, m) {
			metrics.ConnectionClosed(h.registry.RoomCount())
			removed = true
		}
	}
	return removed
}

// Shutdown closes every live connection and empties the registry.
func (h *Hub) Shutdown() {
	for _, m := range h.registry.DrainAll() {
		m.Conn.Close(websocket.CloseGoingAway, "server shutting down")
	}
}
