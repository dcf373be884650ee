package handler

import (
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer defines the interface for session token generation
type TokenIssuer interface {
	GenerateToken() (string, error)
}

// AuthHandler handles the single-owner login
type AuthHandler struct {
	passwordHash []byte // bcrypt hash of the owner password
	tokens       TokenIssuer
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(passwordHash string, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{
		passwordHash: []byte(passwordHash),
		tokens:       tokens,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Password string `json:"password"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token string `json:"token"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "password is required")
		return
	}

	if err := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password)); err != nil {
		respondWithError(w, http.StatusUnauthorized, "invalid password")
		return
	}

	token, err := h.tokens.GenerateToken()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	respondWithJSON(w, http.StatusOK, AuthResponse{Token: token})
}
