package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"teamwrite/internal/models"
	"teamwrite/internal/repositories"
	"teamwrite/internal/utils"
)

func (h *Handlers) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req models.DocumentCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Title == "" {
		utils.JSONError(w, http.StatusBadRequest, "title required")
		return
	}

	user := currentUser(r)
	doc := &models.Document{
		ID:            uuid.New().String(),
		Title:         req.Title,
		CreatedBy:     user.ID,
		CreatedAt:     time.Now().UTC(),
		Collaborators: []string{user.ID},
	}
	if err := h.docs.Create(r.Context(), doc); err != nil {
		h.log.Error("create document failed")
		utils.JSONError(w, http.StatusInternalServerError, "failed to create document")
		return
	}
	utils.JSON(w, http.StatusOK, doc)
}

func (h *Handlers) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.ListByCollaborator(r.Context(), currentUser(r).ID)
	if err != nil {
		h.log.Error("list documents failed")
		utils.JSONError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	utils.JSON(w, http.StatusOK, docs)
}

func (h *Handlers) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadAccessibleDocument(w, r)
	if !ok {
		return
	}
	utils.JSON(w, http.StatusOK, doc)
}

func (h *Handlers) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.loadAccessibleDocument(w, r); !ok {
		return
	}

	var req models.DocumentUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	patch := map[string]interface{}{}
	if req.Title != nil {
		patch["title"] = *req.Title
	}
	if req.Content != nil {
		patch["content"] = *req.Content
	}

	updated, err := h.docs.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		if errors.Is(err, repositories.ErrDocumentNotFound) {
			utils.JSONError(w, http.StatusNotFound, "Document not found")
			return
		}
		h.log.Error("update document failed")
		utils.JSONError(w, http.StatusInternalServerError, "failed to update document")
		return
	}
	utils.JSON(w, http.StatusOK, updated)
}

func (h *Handlers) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := h.docs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrDocumentNotFound) {
			utils.JSONError(w, http.StatusNotFound, "Document not found")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if doc.CreatedBy != currentUser(r).ID {
		utils.JSONError(w, http.StatusForbidden, "Only creator can delete document")
		return
	}
	if err := h.docs.Delete(r.Context(), id); err != nil {
		h.log.Error("delete document failed")
		utils.JSONError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Document deleted successfully"})
}

// AddCollaborator grants another user access; only the creator may share.
func (h *Handlers) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := h.docs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrDocumentNotFound) {
			utils.JSONError(w, http.StatusNotFound, "Document not found")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if doc.CreatedBy != currentUser(r).ID {
		utils.JSONError(w, http.StatusForbidden, "Only creator can share document")
		return
	}

	var req models.CollaboratorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		utils.JSONError(w, http.StatusBadRequest, "user_id required")
		return
	}
	if _, err := h.users.GetByID(r.Context(), req.UserID); err != nil {
		utils.JSONError(w, http.StatusNotFound, "User not found")
		return
	}

	updated, err := h.docs.AddCollaborator(r.Context(), id, req.UserID)
	if err != nil {
		h.log.Error("add collaborator failed")
		utils.JSONError(w, http.StatusInternalServerError, "failed to add collaborator")
		return
	}
	utils.JSON(w, http.StatusOK, updated)
}

// Presence reports who is currently attached to the document's live session.
func (h *Handlers) Presence(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.loadAccessibleDocument(w, r); !ok {
		return
	}
	users := h.hub.Presence(chi.URLParam(r, "id"))
	utils.JSON(w, http.StatusOK, models.PresenceEvent{Type: "presence", Users: users})
}

// loadAccessibleDocument fetches the document from the path and enforces the
// collaborator check, writing the error response itself when access fails.
func (h *Handlers) loadAccessibleDocument(w http.ResponseWriter, r *http.Request) (*models.Document, bool) {
	doc, err := h.docs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repositories.ErrDocumentNotFound) {
			utils.JSONError(w, http.StatusNotFound, "Document not found")
			return nil, false
		}
		utils.JSONError(w, http.StatusInternalServerError, "Internal error")
		return nil, false
	}
	if !doc.HasCollaborator(currentUser(r).ID) {
		utils.JSONError(w, http.StatusForbidden, "Access denied")
		return nil, false
	}
	return doc, true
}
