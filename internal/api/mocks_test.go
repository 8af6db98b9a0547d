package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"teamwrite/internal/models"
	"teamwrite/internal/repositories"
)

type mockUserStore struct {
	CreateFn        func(ctx context.Context, u *models.User) error
	GetByUsernameFn func(ctx context.Context, username string) (*models.User, error)
	GetByIDFn       func(ctx context.Context, id string) (*models.User, error)
}

func (m *mockUserStore) Create(ctx context.Context, u *models.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	return nil
}

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}
	return nil, repositories.ErrUserNotFound
}

func (m *mockUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, repositories.ErrUserNotFound
}

type mockDocumentStore struct {
	CreateFn             func(ctx context.Context, d *models.Document) error
	ListByCollaboratorFn func(ctx context.Context, userID string) ([]models.Document, error)
	GetByIDFn            func(ctx context.Context, id string) (*models.Document, error)
	UpdateFn             func(ctx context.Context, id string, patch map[string]interface{}) (*models.Document, error)
	DeleteFn             func(ctx context.Context, id string) error
	AddCollaboratorFn    func(ctx context.Context, id, userID string) (*models.Document, error)
}

func (m *mockDocumentStore) Create(ctx context.Context, d *models.Document) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *mockDocumentStore) ListByCollaborator(ctx context.Context, userID string) ([]models.Document, error) {
	if m.ListByCollaboratorFn != nil {
		return m.ListByCollaboratorFn(ctx, userID)
	}
	return []models.Document{}, nil
}

func (m *mockDocumentStore) GetByID(ctx context.Context, id string) (*models.Document, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, repositories.ErrDocumentNotFound
}

func (m *mockDocumentStore) Update(ctx context.Context, id string, patch map[string]interface{}) (*models.Document, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, patch)
	}
	return nil, repositories.ErrDocumentNotFound
}

func (m *mockDocumentStore) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return repositories.ErrDocumentNotFound
}

func (m *mockDocumentStore) AddCollaborator(ctx context.Context, id, userID string) (*models.Document, error) {
	if m.AddCollaboratorFn != nil {
		return m.AddCollaboratorFn(ctx, id, userID)
	}
	return nil, repositories.ErrDocumentNotFound
}

type mockTokenStore struct {
	RevokeFn    func(ctx context.Context, token string, expiresAt time.Time) error
	IsRevokedFn func(ctx context.Context, token string) (bool, error)
}

func (m *mockTokenStore) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	if m.RevokeFn != nil {
		return m.RevokeFn(ctx, token, expiresAt)
	}
	return nil
}

func (m *mockTokenStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	if m.IsRevokedFn != nil {
		return m.IsRevokedFn(ctx, token)
	}
	return false, nil
}

func newTestHandlers(users UserStore, docs DocumentStore, tokens TokenRevoker) *Handlers {
	if users == nil {
		users = &mockUserStore{}
	}
	if docs == nil {
		docs = &mockDocumentStore{}
	}
	return NewHandlers(zap.NewNop(), users, docs, tokens)
}

// authedRequest fabricates a request as if it had passed RequireAuth.
func authedRequest(method, target string, body io.Reader, user *models.User, token string) *http.Request {
	r := httptest.NewRequest(method, target, body)
	ctx := context.WithValue(r.Context(), userCtxKey, user)
	ctx = context.WithValue(ctx, tokenCtxKey, token)
	return r.WithContext(ctx)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
