// Package client provides a typed HTTP client for the CipherStudio API.
// It is what editor sessions running in Bound mode use to talk to the
// server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cipherstudio/internal/domain"
	"cipherstudio/internal/domain/models"
	"cipherstudio/internal/httputil"
)

const defaultTimeout = 30 * time.Second

// Client talks to a CipherStudio server with a bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the given server. The token is sent as a
// bearer token on every request.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateFileRequest mirrors the server's file creation payload.
type CreateFileRequest struct {
	ProjectID string  `json:"projectId"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	ParentID  *string `json:"parentId,omitempty"`
	Content   string  `json:"content"`
}

// UpdateFileRequest mirrors the server's partial file update payload.
type UpdateFileRequest struct {
	Name     *string                  `json:"name,omitempty"`
	Content  *string                  `json:"content,omitempty"`
	ParentID *httputil.OptionalString `json:"parentId,omitempty"`
}

// ListFiles returns every node of a project.
func (c *Client) ListFiles(ctx context.Context, projectID string) ([]models.File, error) {
	var files []models.File
	query := url.Values{"projectId": {projectID}}
	if err := c.do(ctx, http.MethodGet, "/api/files?"+query.Encode(), nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// GetFile retrieves a node with its content.
func (c *Client) GetFile(ctx context.Context, id string) (*models.File, error) {
	var file models.File
	if err := c.do(ctx, http.MethodGet, "/api/files/"+url.PathEscape(id), nil, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// CreateFile adds a node to a project tree.
func (c *Client) CreateFile(ctx context.Context, req *CreateFileRequest) (*models.File, error) {
	var file models.File
	if err := c.do(ctx, http.MethodPost, "/api/files", req, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// UpdateFile renames, moves, or rewrites a node.
func (c *Client) UpdateFile(ctx context.Context, id string, req *UpdateFileRequest) (*models.File, error) {
	var file models.File
	if err := c.do(ctx, http.MethodPut, "/api/files/"+url.PathEscape(id), req, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// DeleteFile removes a node.
func (c *Client) DeleteFile(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/files/"+url.PathEscape(id), nil, nil)
}

// GetProject retrieves a project by ID.
func (c *Client) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, http.MethodGet, "/api/projects/"+url.PathEscape(id), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// do sends one request and decodes the response into out (when non-nil).
// Non-2xx responses are turned into domain errors so callers can use
// errors.Is the same way they do against local storage.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// decodeError maps a problem+json body back onto domain errors.
func (c *Client) decodeError(resp *http.Response) error {
	var problem httputil.ProblemDetail
	detail := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&problem); err == nil && problem.Detail != "" {
		detail = problem.Detail
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", domain.ErrValidation, detail)
	case http.StatusUnauthorized:
		return &domain.UnauthorizedError{Message: detail}
	case http.StatusForbidden:
		return &domain.ForbiddenError{Message: detail}
	case http.StatusNotFound:
		return &domain.NotFoundError{Message: detail}
	case http.StatusConflict:
		return &domain.ConflictError{Message: detail}
	case http.StatusBadGateway:
		return fmt.Errorf("%w: %s", domain.ErrStorage, detail)
	default:
		return fmt.Errorf("server error: %s", detail)
	}
}
