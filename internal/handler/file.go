package handler

import (
	"log/slog"
	"net/http"

	"cipherstudio/internal/httputil"
	"cipherstudio/internal/service"
)

// FileHandler handles file-tree HTTP requests
type FileHandler struct {
	fileService *service.FileService
	logger      *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService *service.FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		logger:      logger,
	}
}

// ListFiles returns project nodes. With parentId=<id> it returns that
// folder's direct children; with parentId=null the root level; without
// the parameter the whole project.
// GET /api/files?projectId={id}&parentId={id|null}
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	projectID := r.URL.Query().Get("projectId")
	if projectID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "projectId is required")
		return
	}

	var (
		parentID     *string
		childrenOnly bool
	)
	if r.URL.Query().Has("parentId") {
		childrenOnly = true
		if raw := r.URL.Query().Get("parentId"); raw != "" && raw != "null" {
			parentID = &raw
		}
	}

	files, err := h.fileService.List(r.Context(), userID, projectID, parentID, childrenOnly)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, files)
}

// CreateFile adds a node to a project tree
// POST /api/files
func (h *FileHandler) CreateFile(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req service.CreateFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	file, err := h.fileService.Create(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, file)
}

// GetFile retrieves a node with its content
// GET /api/files/{id}
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "file ID is required")
		return
	}
	userID := httputil.GetUserID(r)

	file, err := h.fileService.Get(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// UpdateFile renames, moves, or rewrites a node
// PUT /api/files/{id}
func (h *FileHandler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "file ID is required")
		return
	}
	userID := httputil.GetUserID(r)

	var req service.UpdateFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	file, err := h.fileService.Update(r.Context(), userID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// DeleteFile removes a node
// DELETE /api/files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "file ID is required")
		return
	}
	userID := httputil.GetUserID(r)

	if err := h.fileService.Delete(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
