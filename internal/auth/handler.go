package auth

import (
	"net/http"

	"github.com/magheya/lds-backend/internal/httpjson"
	"github.com/magheya/lds-backend/internal/middleware"
	"github.com/magheya/lds-backend/internal/models"
)

// Handler holds the admin auth HTTP handlers.
type Handler struct {
	auth *Authenticator
}

func NewHandler(auth *Authenticator) *Handler {
	return &Handler{auth: auth}
}

// Login authenticates an admin and returns a fresh bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := httpjson.ReadBody(r)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	var req models.LoginRequest
	if err := httpjson.Decode(body, &req); err != nil {
		httpjson.Error(w, r, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, res)
}

// CheckAuth returns the identity behind the bearer token.
func (h *Handler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	id, err := h.auth.CheckRequest(r)
	if err != nil {
		if status, _ := httpjson.Status(err); status == http.StatusUnauthorized {
			httpjson.WriteError(w, status, "Not authenticated")
			return
		}
		httpjson.Error(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, id)
}

// Logout revokes the token of the current request. It must run behind
// middleware.RequireAdmin.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httpjson.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	removed, err := h.auth.Logout(r.Context(), id.Token)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.Success(w, removed)
}
