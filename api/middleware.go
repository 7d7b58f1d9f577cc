package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"reelscout/internal/auth"
	"reelscout/services/accounts"
	"reelscout/services/sessions"
)

// Re-export from auth package for backward compatibility
var (
	GetAccountID = auth.GetAccountID
	IsAdmin      = auth.IsAdmin
)

// AccountAuthMiddleware creates middleware that validates session tokens or
// API keys. Tokens can be provided via Authorization header or ?token=
// query param; API keys via the X-API-Key header.
func AccountAuthMiddleware(sessionsSvc *sessions.Service, accountsSvc *accounts.Service) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Always allow OPTIONS for CORS
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			if apiKey := strings.TrimSpace(r.Header.Get("X-API-Key")); apiKey != "" && accountsSvc != nil {
				if account, ok := accountsSvc.AuthenticateAPIKey(apiKey); ok {
					ctx := context.WithValue(r.Context(), auth.ContextKeyAccountID, account.ID)
					ctx = context.WithValue(ctx, auth.ContextKeyIsAdmin, account.IsAdmin)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				writeAuthError(w, http.StatusUnauthorized, "invalid api key")
				return
			}

			token := extractToken(r)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if sessionsSvc == nil {
				writeAuthError(w, http.StatusInternalServerError, "session service unavailable")
				return
			}

			session, err := sessionsSvc.Validate(token)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			// Valid session - inject account context
			ctx := context.WithValue(r.Context(), auth.ContextKeyAccountID, session.AccountID)
			ctx = context.WithValue(ctx, auth.ContextKeyIsAdmin, session.IsAdmin)
			ctx = context.WithValue(ctx, auth.ContextKeySession, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnlyMiddleware creates middleware that only allows admin accounts.
func AdminOnlyMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			if !IsAdmin(r) {
				writeAuthError(w, http.StatusForbidden, "admin account required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserOwnershipMiddleware creates middleware that verifies the {userID}
// route variable matches the authenticated account. Admin accounts can
// access any user's data; everyone else only their own. Non-owned user ids
// read as not found rather than forbidden so account ids are not probeable.
func UserOwnershipMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			if IsAdmin(r) {
				next.ServeHTTP(w, r)
				return
			}

			userID := mux.Vars(r)["userID"]
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			if GetAccountID(r) != userID {
				writeAuthError(w, http.StatusNotFound, "user not found")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken extracts the session token from headers or query param.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}

	// Fall back to query parameter for clients that cannot set headers
	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		return token
	}

	return ""
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
