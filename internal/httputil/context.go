package httputil

import (
	"context"
	"net/http"
)

// Unexported key type so middleware values cannot collide with other
// packages' context entries.
type ctxKey int

const authUserKey ctxKey = iota

// WithUserID returns a request whose context carries the authenticated
// user's id. Set by the auth middleware after token verification.
func WithUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), authUserKey, userID))
}

// GetUserID reads the authenticated user's id from the request context.
// Empty on unauthenticated requests, which only reach public handlers.
func GetUserID(r *http.Request) string {
	id, _ := r.Context().Value(authUserKey).(string)
	return id
}
