package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dukerupert/sharearecipe/internal/auth"
)

// SessionCookieName is the cookie carrying the session token for browser
// clients.
const SessionCookieName = "sharearecipe_session"

// SessionToken extracts the session token from, in order, a bearer
// Authorization header, the session cookie, or a token query parameter.
// The query parameter exists for WebSocket clients that cannot set headers.
func SessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return r.URL.Query().Get("token")
}

// RequireAuth resolves the session token to an identity and stores it in
// the request context. Requests without a valid session get a 401.
func RequireAuth(provider auth.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := provider.Identify(r.Context(), SessionToken(r))
			if err != nil {
				status := http.StatusUnauthorized
				msg := auth.ErrUnauthenticated.Error()
				if !errors.Is(err, auth.ErrUnauthenticated) {
					status = http.StatusInternalServerError
					msg = "failed to verify session"
				}
				writeError(w, status, msg)
				return
			}

			ctx := auth.WithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
