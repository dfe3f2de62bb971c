package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"cipherstudio/internal/auth"
	"cipherstudio/internal/domain/models"
	"cipherstudio/internal/httputil"
)

func newAuthFixture(t *testing.T) (func(http.Handler) http.Handler, string) {
	t.Helper()

	tokens, err := auth.NewTokenService("test-secret")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	token, err := tokens.Issue(&models.User{ID: "u1", Username: "demo"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return Auth(tokens, logger), token
}

func TestAuthMiddleware(t *testing.T) {
	mw, token := newAuthFixture(t)

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = httputil.GetUserID(r)
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantUserID string
	}{
		{
			name:       "valid token passes with user id",
			path:       "/api/projects",
			header:     "Bearer " + token,
			wantStatus: http.StatusOK,
			wantUserID: "u1",
		},
		{
			name:       "missing token is unauthorized",
			path:       "/api/projects",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token is forbidden",
			path:       "/api/projects",
			header:     "Bearer garbage",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "health check is public",
			path:       "/health",
			wantStatus: http.StatusOK,
		},
		{
			name:       "login is public",
			path:       "/api/users/login",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID = ""
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			mw(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantUserID != "" && gotUserID != tt.wantUserID {
				t.Errorf("user id = %q, want %q", gotUserID, tt.wantUserID)
			}
		})
	}
}

func TestAuthMiddlewarePassesPreflight(t *testing.T) {
	mw, _ := newAuthFixture(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("OPTIONS status = %d, want pass-through", rec.Code)
	}
}
