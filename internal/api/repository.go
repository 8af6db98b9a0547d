package api

import (
	"context"
	"time"

	"teamwrite/internal/models"
)

// UserStore is the persistence surface the auth handlers depend on.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// DocumentStore is the persistence surface for documents. The hub only ever
// reads from it (collaborator lists for admission); it never writes content.
type DocumentStore interface {
	Create(ctx context.Context, d *models.Document) error
	ListByCollaborator(ctx context.Context, userID string) ([]models.Document, error)
	GetByID(ctx context.Context, id string) (*models.Document, error)
	Update(ctx context.Context, id string, patch map[string]interface{}) (*models.Document, error)
	Delete(ctx context.Context, id string) error
	AddCollaborator(ctx context.Context, id, userID string) (*models.Document, error)
}

// TokenRevoker records revoked access tokens and answers whether a presented
// token is still usable.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
