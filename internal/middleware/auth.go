package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"cipherstudio/internal/auth"
	"cipherstudio/internal/httputil"
)

// publicPaths are reachable without a bearer token.
var publicPaths = map[string]bool{
	"/health":             true,
	"/api/users/register": true,
	"/api/users/login":    true,
}

// Auth validates the Authorization header and stores the user ID in the
// request context. A missing token yields 401, an invalid or expired one
// 403.
func Auth(tokens *auth.TokenService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			tokenString := extractBearer(r)
			if tokenString == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "access token required")
				return
			}

			claims, err := tokens.Verify(tokenString)
			if err != nil {
				logger.Debug("token rejected", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusForbidden, "invalid token")
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, claims.UserID()))
		})
	}
}

func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
