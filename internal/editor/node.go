// Package editor implements the client-side editing core: the in-memory
// file tree, the mutation engine over it, editor session state, and the
// autosave scheduler. A project is either a local Draft or Bound to a
// server project; both go through the same TreeStore interface.
package editor

import (
	"time"

	"cipherstudio/internal/domain/models"
)

// Node is one entry of the displayed file tree. Children is populated
// for folders only. Nodes never point back at their parents; ancestor
// lookups go through an id index instead, which keeps the structure
// acyclic and serializable.
type Node struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Kind         models.FileType `json:"type"`
	ParentID     *string         `json:"parentId,omitempty"`
	Path         string          `json:"path"`
	Content      string          `json:"content,omitempty"`
	Size         int             `json:"size"`
	IsOpen       bool            `json:"isOpen,omitempty"`
	LastModified time.Time       `json:"lastModified"`
	Children     []*Node         `json:"children,omitempty"`
}

// IsFolder reports whether the node is a folder.
func (n *Node) IsFolder() bool {
	return n.Kind == models.FileTypeFolder
}

// nodeFromRecord converts a persisted record into a tree node.
func nodeFromRecord(f *models.File) *Node {
	return &Node{
		ID:           f.ID,
		Name:         f.Name,
		Kind:         f.Type,
		ParentID:     f.ParentID,
		Path:         f.Path,
		Content:      f.Content,
		Size:         f.Size,
		LastModified: f.UpdatedAt,
	}
}

// record converts a node back into the persisted record shape.
func (n *Node) record(projectID string) models.File {
	f := models.File{
		ID:        n.ID,
		ProjectID: projectID,
		ParentID:  n.ParentID,
		Name:      n.Name,
		Type:      n.Kind,
		Path:      n.Path,
		Size:      n.Size,
		UpdatedAt: n.LastModified,
	}
	if !n.IsFolder() {
		f.Content = n.Content
		f.StorageType = models.StorageDatabase
	}
	return f
}
