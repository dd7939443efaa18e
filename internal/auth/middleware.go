package auth

import (
	"context"
	"net/http"
)

// contextKey is an unexported type for context keys in this package.
// Using a package-private type (rather than a bare string) means no other
// package can read or shadow the userID value we store in the context.
type contextKey string

const userIDKey contextKey = "userID"

// sessionCookie is the name of the HttpOnly cookie carrying the JWT.
const sessionCookie = "token"

// RequireAuth enforces authentication on protected routes.
//
// It reads the JWT from the session cookie, validates it, and stores the
// userID in the request context. A missing or invalid token stops the chain
// with 401 and the standard error envelope — the handler (and the database)
// is never reached.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"success":false,"error":{"code":"UNAUTHORIZED","message":"valid authentication required"}}`))
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
		})
	}
}

// ContextWithUserID stores the authenticated user's ID in the context.
// Called by RequireAuth; also useful for exercising handlers in tests
// without running the full middleware chain.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context. Returns ("", false) when the request carried no valid token.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID reads the JWT cookie and validates it.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", err
	}
	return tokens.Validate(cookie.Value)
}

// SetSessionCookie attaches the JWT to the response as an HttpOnly cookie.
//
// HttpOnly: JavaScript cannot read it (XSS protection).
// SameSite=Lax: sent on top-level navigations, not cross-site POSTs.
// Secure should be enabled in production behind HTTPS.
func SetSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie tells the browser to delete the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
