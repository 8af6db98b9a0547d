package api

import (
	"context"
	"net/http"

	"teamwrite/internal/models"
	"teamwrite/internal/utils"
)

type ctxKey int

const (
	userCtxKey ctxKey = iota
	tokenCtxKey
)

// RequireAuth validates the bearer token, rejects revoked tokens, and loads
// the account it names before the wrapped handler runs.
func (h *Handlers) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := utils.ExtractTokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			utils.JSONError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		claims, err := utils.ValidateAccessToken(token)
		if err != nil {
			utils.JSONError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		if h.tokens != nil {
			revoked, err := h.tokens.IsRevoked(r.Context(), token)
			if err != nil {
				h.log.Error("token revocation lookup failed")
				utils.JSONError(w, http.StatusInternalServerError, "Internal error")
				return
			}
			if revoked {
				utils.JSONError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
		}
		user, err := h.users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			utils.JSONError(w, http.StatusUnauthorized, "User not found")
			return
		}

		ctx := context.WithValue(r.Context(), userCtxKey, user)
		ctx = context.WithValue(ctx, tokenCtxKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser returns the account RequireAuth attached to the request.
func currentUser(r *http.Request) *models.User {
	u, _ := r.Context().Value(userCtxKey).(*models.User)
	return u
}

func bearerToken(r *http.Request) string {
	t, _ := r.Context().Value(tokenCtxKey).(string)
	return t
}
