package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"reelscout/internal/auth"
	"reelscout/services/accounts"
)

// AccountsHandler handles account management endpoints. List, Create, and
// Delete are admin-only; the routes are guarded by middleware.
type AccountsHandler struct {
	accounts *accounts.Service
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(accountsSvc *accounts.Service) *AccountsHandler {
	return &AccountsHandler{accounts: accountsSvc}
}

// List returns all registered accounts.
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.accounts.List())
}

// Create registers a new account.
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}

	account, err := h.accounts.Create(req.Username, req.Password)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, accounts.ErrUsernameExists):
			status = http.StatusConflict
		case errors.Is(err, accounts.ErrUsernameRequired), errors.Is(err, accounts.ErrPasswordRequired):
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(account)
}

// Rename changes an account's username. Admins can rename anyone; regular
// accounts only themselves.
func (h *AccountsHandler) Rename(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountID"]
	if !auth.IsAdmin(r) && auth.GetAccountID(r) != accountID {
		http.Error(w, `{"error": "forbidden"}`, http.StatusForbidden)
		return
	}

	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}

	if err := h.accounts.Rename(accountID, req.Username); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, accounts.ErrAccountNotFound):
			status = http.StatusNotFound
		case errors.Is(err, accounts.ErrUsernameExists):
			status = http.StatusConflict
		case errors.Is(err, accounts.ErrUsernameRequired):
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "renamed"})
}

// Delete removes an account.
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountID"]

	if err := h.accounts.Delete(accountID); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, accounts.ErrAccountNotFound):
			status = http.StatusNotFound
		case errors.Is(err, accounts.ErrCannotDeleteAdmin), errors.Is(err, accounts.ErrCannotDeleteLastAcct):
			status = http.StatusForbidden
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
