package session

import (
	"sync"
	"time"

	"teamwrite/internal/models"
)

// Member is one user's live connection within a document room.
type Member struct {
	UserID      string
	UserName    string
	ConnectedAt time.Time
	Conn        *Conn
}

func (m *Member) presence() models.PresenceUser {
	return models.PresenceUser{
		UserID:      m.UserID,
		UserName:    m.UserName,
		ConnectedAt: m.ConnectedAt,
	}
}

// room keeps members in join order so presence lists stay stable across
// broadcasts.
type room struct {
	members map[string]*Member
	order   []string
}

// Registry maps document ids to the members currently connected to them. It
// is the only shared mutable state in the hub. Every operation captures what
// it needs under the lock and releases it before any network write happens,
// so a slow peer can never stall joins or leaves.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*room)}
}

// Add inserts or replaces the member for (docID, userID) and returns the
// member it displaced, if any. The room is created on the first insert. A
// replaced member keeps its position in the join order.
func (r *Registry) Add(docID string, m *Member) (prev *Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[docID]
	if !ok {
		rm = &room{members: make(map[string]*Member)}
		r.rooms[docID] = rm
	}
	prev = rm.members[m.UserID]
	rm.members[m.UserID] = m
	if prev == nil {
		rm.order = append(rm.order, m.UserID)
	}
	return prev
}

// Remove deletes the entry for (docID, userID) if present and reports whether
// anything was removed. The room itself is deleted the moment it empties.
func (r *Registry) Remove(docID, userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[docID]
	if !ok {
		return false
	}
	if _, ok := rm.members[userID]; !ok {
		return false
	}
	r.drop(docID, rm, userID)
	return true
}

// RemoveMember deletes (docID, userID) only if the registered member is
// exactly m. A connection that was superseded by a newer one for the same
// user must not tear down its replacement on the way out.
func (r *Registry) RemoveMember(docID string, m *Member) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[docID]
	if !ok {
		return false
	}
	if rm.members[m.UserID] != m {
		return false
	}
	r.drop(docID, rm, m.UserID)
	return true
}

// drop is the shared removal path; the caller holds the lock.
func (r *Registry) drop(docID string, rm *room, userID string) {
	delete(rm.members, userID)
	for i, id := range rm.order {
		if id == userID {
			rm.order = append(rm.order[:i], rm.order[i+1:]...)
			break
		}
	}
	if len(rm.members) == 0 {
		delete(r.rooms, docID)
	}
}

// Snapshot returns the room membership in join order at a single point in
// time. An unknown room yields an empty slice.
func (r *Registry) Snapshot(docID string) []models.PresenceUser {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[docID]
	if !ok {
		return []models.PresenceUser{}
	}
	out := make([]models.PresenceUser, 0, len(rm.order))
	for _, id := range rm.order {
		out = append(out, rm.members[id].presence())
	}
	return out
}

// ForEachExcept invokes fn for every member of the room except the excluded
// user (pass "" to include everyone). The member list is captured under the
// lock and fn runs after it is released. fn failing for one member does not
// stop delivery to the rest; the failed members are returned to the caller.
func (r *Registry) ForEachExcept(docID, excludeUserID string, fn func(*Member) error) []*Member {
	r.mu.Lock()
	rm, ok := r.rooms[docID]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	targets := make([]*Member, 0, len(rm.order))
	for _, id := range rm.order {
		if id == excludeUserID {
			continue
		}
		targets = append(targets, rm.members[id])
	}
	r.mu.Unlock()

	var failed []*Member
	for _, m := range targets {
		if err := fn(m); err != nil {
			failed = append(failed, m)
		}
	}
	return failed
}

// RoomCount reports the number of rooms with at least one member.
func (r *Registry) RoomCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// DrainAll empties the registry and returns every member that was connected,
// used on server shutdown.
func (r *Registry) DrainAll() []*Member {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Member
	for _, rm := range r.rooms {
		for _, id := range rm.order {
			out = append(out, rm.members[id])
		}
	}
	r.rooms = make(map[string]*room)
	return out
}
