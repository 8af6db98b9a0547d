package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"teamwrite/internal/models"
	"teamwrite/internal/repositories"
	"teamwrite/internal/utils"
)

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Username == "" || req.Password == "" {
		utils.JSONError(w, http.StatusBadRequest, "missing fields")
		return
	}

	existing, err := h.users.GetByUsername(r.Context(), req.Username)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		h.log.Error("username lookup failed")
		utils.JSONError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if existing != nil {
		utils.JSONError(w, http.StatusBadRequest, "Username already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		CreatedAt:    time.Now().UTC(),
		PasswordHash: string(hash),
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		h.log.Error("create user failed")
		utils.JSONError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	h.writeTokenResponse(w, user)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	user, err := h.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			utils.JSONError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		utils.JSONError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	h.writeTokenResponse(w, user)
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, currentUser(r))
}

// Logout denylists the presented token until its natural expiry.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	claims, err := utils.ValidateAccessToken(token)
	if err != nil {
		utils.JSONError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	if h.tokens != nil {
		if err := h.tokens.Revoke(r.Context(), token, claims.ExpiresAt.Time); err != nil {
			h.log.Error("token revocation failed")
			utils.JSONError(w, http.StatusInternalServerError, "Internal error")
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) writeTokenResponse(w http.ResponseWriter, user *models.User) {
	token, _, err := utils.IssueAccessToken(user.ID, user.Username)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}
	utils.JSON(w, http.StatusOK, models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        *user,
	})
}
