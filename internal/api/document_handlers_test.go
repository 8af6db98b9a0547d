package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamwrite/internal/models"
)

var (
	alice = &models.User{ID: "u1", Username: "alice"}
	bob   = &models.User{ID: "u2", Username: "bob"}
)

func sampleDoc() *models.Document {
	return &models.Document{
		ID:            "d1",
		Title:         "Notes",
		Content:       "hello",
		CreatedBy:     "u1",
		Collaborators: []string{"u1", "u2"},
	}
}

func TestCreateDocument(t *testing.T) {
	var created *models.Document
	docs := &mockDocumentStore{
		CreateFn: func(_ context.Context, d *models.Document) error {
			created = d
			return nil
		},
	}
	h := newTestHandlers(nil, docs, nil)

	req := authedRequest(http.MethodPost, "/api/documents",
		strings.NewReader(`{"title":"Notes"}`), alice, "tok")
	rec := httptest.NewRecorder()
	h.CreateDocument(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, created)
	assert.Equal(t, "Notes", created.Title)
	assert.Equal(t, "u1", created.CreatedBy)
	assert.Equal(t, []string{"u1"}, created.Collaborators)
	assert.NotEmpty(t, created.ID)
}

func TestCreateDocumentRequiresTitle(t *testing.T) {
	h := newTestHandlers(nil, nil, nil)
	req := authedRequest(http.MethodPost, "/api/documents",
		strings.NewReader(`{}`), alice, "tok")
	rec := httptest.NewRecorder()
	h.CreateDocument(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListDocuments(t *testing.T) {
	docs := &mockDocumentStore{
		ListByCollaboratorFn: func(_ context.Context, userID string) ([]models.Document, error) {
			require.Equal(t, "u1", userID)
			return []models.Document{*sampleDoc()}, nil
		},
	}
	h := newTestHandlers(nil, docs, nil)

	rec := httptest.NewRecorder()
	h.ListDocuments(rec, authedRequest(http.MethodGet, "/api/documents", nil, alice, "tok"))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []models.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "d1", got[0].ID)
}

func TestGetDocument(t *testing.T) {
	doc := sampleDoc()
	docs := &mockDocumentStore{
		GetByIDFn: func(_ context.Context, id string) (*models.Document, error) {
			return doc, nil
		},
	}

	t.Run("collaborator", func(t *testing.T) {
		h := newTestHandlers(nil, docs, nil)
		req := withURLParam(authedRequest(http.MethodGet, "/api/documents/d1", nil, bob, "tok"), "id", "d1")
		rec := httptest.NewRecorder()
		h.GetDocument(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("outsider", func(t *testing.T) {
		h := newTestHandlers(nil, docs, nil)
		outsider := &models.User{ID: "u9", Username: "mallory"}
		req := withURLParam(authedRequest(http.MethodGet, "/api/documents/d1", nil, outsider, "tok"), "id", "d1")
		rec := httptest.NewRecorder()
		h.GetDocument(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Access denied", decodeDetail(t, rec.Body.String()))
	})

	t.Run("missing", func(t *testing.T) {
		h := newTestHandlers(nil, &mockDocumentStore{}, nil)
		req := withURLParam(authedRequest(http.MethodGet, "/api/documents/nope", nil, alice, "tok"), "id", "nope")
		rec := httptest.NewRecorder()
		h.GetDocument(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Document not found", decodeDetail(t, rec.Body.String()))
	})
}

func TestUpdateDocument(t *testing.T) {
	doc := sampleDoc()
	var gotPatch map[string]interface{}
	docs := &mockDocumentStore{
		GetByIDFn: func(_ context.Context, _ string) (*models.Document, error) { return doc, nil },
		UpdateFn: func(_ context.Context, id string, patch map[string]interface{}) (*models.Document, error) {
			gotPatch = patch
			updated := *doc
			updated.Content = "new body"
			return &updated, nil
		},
	}
	h := newTestHandlers(nil, docs, nil)

	req := withURLParam(authedRequest(http.MethodPut, "/api/documents/d1",
		strings.NewReader(`{"content":"new body"}`), bob, "tok"), "id", "d1")
	rec := httptest.NewRecorder()
	h.UpdateDocument(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{"content": "new body"}, gotPatch)
}

func TestDeleteDocument(t *testing.T) {
	doc := sampleDoc()

	t.Run("creator", func(t *testing.T) {
		deleted := false
		docs := &mockDocumentStore{
			GetByIDFn: func(_ context.Context, _ string) (*models.Document, error) { return doc, nil },
			DeleteFn: func(_ context.Context, id string) error {
				deleted = true
				return nil
			},
		}
		h := newTestHandlers(nil, docs, nil)
		req := withURLParam(authedRequest(http.MethodDelete, "/api/documents/d1", nil, alice, "tok"), "id", "d1")
		rec := httptest.NewRecorder()
		h.DeleteDocument(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, deleted)
	})

	t.Run("non-creator collaborator", func(t *testing.T) {
		docs := &mockDocumentStore{
			GetByIDFn: func(_ context.Context, _ string) (*models.Document, error) { return doc, nil },
		}
		h := newTestHandlers(nil, docs, nil)
		req := withURLParam(authedRequest(http.MethodDelete, "/api/documents/d1", nil, bob, "tok"), "id", "d1")
		rec := httptest.NewRecorder()
		h.DeleteDocument(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Only creator can delete document", decodeDetail(t, rec.Body.String()))
	})
}

func TestAddCollaborator(t *testing.T) {
	doc := sampleDoc()
	users := &mockUserStore{
		GetByIDFn: func(_ context.Context, id string) (*models.User, error) {
			if id == "u3" {
				return &models.User{ID: "u3", Username: "carol"}, nil
			}
			return nil, assert.AnError
		},
	}

	t.Run("creator shares", func(t *testing.T) {
		docs := &mockDocumentStore{
			GetByIDFn: func(_ context.Context, _ string) (*models.Document, error) { return doc, nil },
			AddCollaboratorFn: func(_ context.Context, id, userID string) (*models.Document, error) {
				require.Equal(t, "u3", userID)
				updated := *doc
				updated.Collaborators = append(updated.Collaborators, userID)
				return &updated, nil
			},
		}
		h := newTestHandlers(users, docs, nil)
		req := withURLParam(authedRequest(http.MethodPost, "/api/documents/d1/collaborators",
			strings.NewReader(`{"user_id":"u3"}`), alice, "tok"), "id", "d1")
		rec := httptest.NewRecorder()
		h.AddCollaborator(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got models.Document
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Contains(t, got.Collaborators, "u3")
	})

	t.Run("non-creator forbidden", func(t *testing.T) {
		docs := &mockDocumentStore{
			GetByIDFn: func(_ context.Context, _ string) (*models.Document, error) { return doc, nil },
		}
		h := newTestHandlers(users, docs, nil)
		req := withURLParam(authedRequest(http.MethodPost, "/api/documents/d1/collaborators",
			strings.NewReader(`{"user_id":"u3"}`), bob, "tok"), "id", "d1")
		rec := httptest.NewRecorder()
		h.AddCollaborator(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Only creator can share document", decodeDetail(t, rec.Body.String()))
	})

	t.Run("unknown target user", func(t *testing.T) {
		docs := &mockDocumentStore{
			GetByIDFn: func(_ context.Context, _ string) (*models.Document, error) { return doc, nil },
		}
		h := newTestHandlers(users, docs, nil)
		req := withURLParam(authedRequest(http.MethodPost, "/api/documents/d1/collaborators",
			strings.NewReader(`{"user_id":"ghost"}`), alice, "tok"), "id", "d1")
		rec := httptest.NewRecorder()
		h.AddCollaborator(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "User not found", decodeDetail(t, rec.Body.String()))
	})
}

func TestPresenceEndpoint(t *testing.T) {
	doc := sampleDoc()
	docs := &mockDocumentStore{
		GetByIDFn: func(_ context.Context, _ string) (*models.Document, error) { return doc, nil },
	}
	h := newTestHandlers(nil, docs, nil)

	req := withURLParam(authedRequest(http.MethodGet, "/api/documents/d1/presence", nil, alice, "tok"), "id", "d1")
	rec := httptest.NewRecorder()
	h.Presence(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var event models.PresenceEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &event))
	assert.Equal(t, "presence", event.Type)
	assert.Empty(t, event.Users)
}
