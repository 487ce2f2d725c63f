package middleware

import (
	"context"
	"net/http"
	"strings"

	"nottebuia/internal/service"
)

type contextKey string

const accountRefKey contextKey = "accountRef"

// AuthMiddleware attaches the external account identity to requests.
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// OptionalSession resolves a Bearer session token, when one is presented,
// to the opaque account reference and stores it on the context. Guests
// carry no token and pass through with no account; a token that is present
// but fails verification is rejected.
func (m *AuthMiddleware) OptionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		accountRef, err := m.authSvc.ValidateSessionToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), accountRefKey, accountRef)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAccountRef extracts the account reference from the context, empty for
// guests.
func GetAccountRef(ctx context.Context) string {
	if v := ctx.Value(accountRefKey); v != nil {
		return v.(string)
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
