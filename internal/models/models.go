package models

import "time"

// User is the public view of an account. The bcrypt hash lives only in the
// users collection and is never serialized to clients.
type User struct {
	ID           string    `json:"id" bson:"id"`
	Username     string    `json:"username" bson:"username"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	PasswordHash string    `json:"-" bson:"password_hash"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// Document is a shared editable document. Collaborators holds user ids; the
// creator is always a collaborator.
type Document struct {
	ID            string    `json:"id" bson:"id"`
	Title         string    `json:"title" bson:"title"`
	Content       string    `json:"content" bson:"content"`
	CreatedBy     string    `json:"created_by" bson:"created_by"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
	Collaborators []string  `json:"collaborators" bson:"collaborators"`
}

// HasCollaborator reports whether userID may read or edit the document.
func (d *Document) HasCollaborator(userID string) bool {
	for _, id := range d.Collaborators {
		if id == userID {
			return true
		}
	}
	return false
}

type DocumentCreateRequest struct {
	Title string `json:"title"`
}

// DocumentUpdateRequest patches a document; nil fields are left untouched.
type DocumentUpdateRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type CollaboratorRequest struct {
	UserID string `json:"user_id"`
}

/*** Live session wire types ***/

// PresenceUser is one connected member as seen by room peers.
type PresenceUser struct {
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	ConnectedAt time.Time `json:"connected_at"`
}

// PresenceEvent carries the full membership of a room. It is broadcast as a
// complete snapshot on every join and leave, never as a delta.
type PresenceEvent struct {
	Type  string         `json:"type"` // always "presence"
	Users []PresenceUser `json:"users"`
}
