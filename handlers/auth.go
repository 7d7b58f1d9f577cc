package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"reelscout/models"
	"reelscout/services/accounts"
	"reelscout/services/sessions"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	accounts *accounts.Service
	sessions *sessions.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(accountsSvc *accounts.Service, sessionsSvc *sessions.Service) *AuthHandler {
	return &AuthHandler{
		accounts: accountsSvc,
		sessions: sessionsSvc,
	}
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// LoginResponse represents the login response.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	AccountID string `json:"accountId"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"isAdmin"`
}

// Login authenticates a user and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}

	account, err := h.accounts.Authenticate(req.Username, req.Password)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid username or password"})
		return
	}

	userAgent := r.Header.Get("User-Agent")
	ipAddress := getClientIPAddress(r)
	var session models.Session
	if req.RememberMe {
		session, err = h.sessions.CreatePersistent(account.ID, account.IsAdmin, userAgent, ipAddress)
	} else {
		session, err = h.sessions.Create(account.ID, account.IsAdmin, userAgent, ipAddress)
	}
	if err != nil {
		http.Error(w, `{"error": "failed to create session"}`, http.StatusInternalServerError)
		return
	}

	resp := LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Format("2006-01-02T15:04:05Z"),
		AccountID: account.ID,
		Username:  account.Username,
		IsAdmin:   account.IsAdmin,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Logout invalidates the current session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r)
	if token == "" {
		http.Error(w, `{"error": "no session token"}`, http.StatusBadRequest)
		return
	}

	if err := h.sessions.Revoke(token); err != nil {
		// Session not found is OK - might already be expired
		if !errors.Is(err, sessions.ErrSessionNotFound) {
			http.Error(w, `{"error": "failed to revoke session"}`, http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "logged out"})
}

// Me returns the current authenticated account info.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r)
	if token == "" {
		http.Error(w, `{"error": "not authenticated"}`, http.StatusUnauthorized)
		return
	}

	session, err := h.sessions.Validate(token)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid or expired session"})
		return
	}

	account, ok := h.accounts.Get(session.AccountID)
	if !ok {
		http.Error(w, `{"error": "account not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(account)
}

// ChangePassword updates the authenticated account's password and revokes
// its other sessions.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r)
	if token == "" {
		http.Error(w, `{"error": "not authenticated"}`, http.StatusUnauthorized)
		return
	}

	session, err := h.sessions.Validate(token)
	if err != nil {
		http.Error(w, `{"error": "invalid or expired session"}`, http.StatusUnauthorized)
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}

	account, ok := h.accounts.Get(session.AccountID)
	if !ok {
		http.Error(w, `{"error": "account not found"}`, http.StatusNotFound)
		return
	}

	if _, err := h.accounts.Authenticate(account.Username, req.CurrentPassword); err != nil {
		http.Error(w, `{"error": "current password is incorrect"}`, http.StatusForbidden)
		return
	}

	if err := h.accounts.UpdatePassword(account.ID, req.NewPassword); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, accounts.ErrPasswordRequired) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	if err := h.sessions.RevokeAllForAccount(account.ID); err != nil {
		http.Error(w, `{"error": "failed to revoke sessions"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "password updated"})
}

// ResetAPIKey issues a fresh API key for the authenticated account. The key
// is only ever shown in this response.
func (h *AuthHandler) ResetAPIKey(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r)
	if token == "" {
		http.Error(w, `{"error": "not authenticated"}`, http.StatusUnauthorized)
		return
	}

	session, err := h.sessions.Validate(token)
	if err != nil {
		http.Error(w, `{"error": "invalid or expired session"}`, http.StatusUnauthorized)
		return
	}

	key, err := h.accounts.ResetAPIKey(session.AccountID)
	if err != nil {
		http.Error(w, `{"error": "failed to reset api key"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"apiKey": key})
}

// extractBearerToken pulls the session token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// getClientIPAddress extracts the client IP, honoring reverse-proxy headers.
func getClientIPAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
