package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cipherstudio/internal/domain"
	"cipherstudio/internal/domain/models"
)

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]models.File{})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-123")
	if _, err := c.ListFiles(context.Background(), "p1"); err != nil {
		t.Fatalf("ListFiles: %v", err)
	}

	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
}

func TestCreateFileRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/files" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req CreateFileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.File{
			ID:        "new-id",
			ProjectID: req.ProjectID,
			Name:      req.Name,
			Type:      models.FileType(req.Type),
			Path:      "/" + req.Name,
			Content:   req.Content,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	file, err := c.CreateFile(context.Background(), &CreateFileRequest{
		ProjectID: "p1",
		Name:      "app.js",
		Type:      "file",
		Content:   "x",
	})
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if file.ID != "new-id" || file.Path != "/app.js" {
		t.Errorf("created = %+v", file)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "bad request", status: http.StatusBadRequest, want: domain.ErrValidation},
		{name: "unauthorized", status: http.StatusUnauthorized, want: domain.ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, want: domain.ErrForbidden},
		{name: "not found", status: http.StatusNotFound, want: domain.ErrNotFound},
		{name: "conflict", status: http.StatusConflict, want: domain.ErrConflict},
		{name: "bad gateway", status: http.StatusBadGateway, want: domain.ErrStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/problem+json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"title":  http.StatusText(tt.status),
					"status": tt.status,
					"detail": "boom",
				})
			}))
			defer srv.Close()

			c := New(srv.URL, "tok")
			_, err := c.GetFile(context.Background(), "f1")
			if !errors.Is(err, tt.want) {
				t.Errorf("status %d mapped to %v, want %v", tt.status, err, tt.want)
			}
		})
	}
}

func TestDeleteFileNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	if err := c.DeleteFile(context.Background(), "f1"); err != nil {
		t.Errorf("DeleteFile: %v", err)
	}
}
