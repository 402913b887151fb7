package handlers

import (
	"net/http"

	"cane-backend/internal/auth"
	"cane-backend/internal/models"
	"cane-backend/internal/services"
	"cane-backend/pkg/utils"
)

// AuthHandler serves login and the current session
type AuthHandler struct {
	Users *services.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{Users: users}
}

// Login - POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.Users.Login(r.Context(), &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// MeResponse tells the dashboard who is signed in and what to show
type MeResponse struct {
	Session      auth.Session      `json:"session"`
	Capabilities []auth.Capability `json:"capabilities"`
	Screens      []auth.Screen     `json:"screens"`
}

// Me - GET /api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOf(w, r)
	if !ok {
		return
	}
	utils.JSON(w, http.StatusOK, MeResponse{
		Session:      session,
		Capabilities: session.Role.Capabilities(),
		Screens:      session.Role.Screens(),
	})
}
