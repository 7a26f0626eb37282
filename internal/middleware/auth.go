package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/signon/signon-go/internal/crypto"
)

type contextKey string

const sessionKey contextKey = "session"

// Session returns middleware that validates the session token cookie and
// stores the claims in the request context.
func Session(issuer *crypto.TokenIssuer, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil {
				if errors.Is(err, http.ErrNoCookie) {
					writeJSONError(w, http.StatusUnauthorized, "missing session token")
					return
				}
				writeJSONError(w, http.StatusUnauthorized, "invalid session token")
				return
			}

			claims, err := issuer.Validate(cookie.Value)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext extracts the validated session claims from the request context.
func SessionFromContext(ctx context.Context) (*crypto.Claims, bool) {
	claims, ok := ctx.Value(sessionKey).(*crypto.Claims)
	return claims, ok
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
