package models

import (
	"time"
)

// FileType distinguishes file and folder nodes.
type FileType string

const (
	FileTypeFile   FileType = "file"
	FileTypeFolder FileType = "folder"
)

// Valid reports whether t is a known file type.
func (t FileType) Valid() bool {
	return t == FileTypeFile || t == FileTypeFolder
}

// StorageType records where a file's content bytes live. Exactly one
// location holds the content at any time.
type StorageType string

const (
	StorageDatabase StorageType = "database"
	StorageS3       StorageType = "s3"
)

// File is one node in a project's file tree: a file or a folder.
// ParentID is nil for root-level nodes. Path is the materialized
// slash-delimited path ("/src/app.js").
type File struct {
	ID          string      `json:"id" db:"id"`
	ProjectID   string      `json:"project_id" db:"project_id"`
	ParentID    *string     `json:"parent_id,omitempty" db:"parent_id"` // NULL = root level
	Name        string      `json:"name" db:"name"`                     // Just "app.js", not "src/app.js"
	Type        FileType    `json:"type" db:"type"`
	Path        string      `json:"path" db:"path"`
	Content     string      `json:"content,omitempty" db:"content"` // Empty for folders and s3-stored files
	S3Key       *string     `json:"-" db:"s3_key"`
	Size        int         `json:"size" db:"size"` // Byte length of content, 0 for folders
	MimeType    *string     `json:"mime_type,omitempty" db:"mime_type"`
	StorageType StorageType `json:"storage_type" db:"storage_type"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// IsFolder reports whether the node is a folder.
func (f *File) IsFolder() bool {
	return f.Type == FileTypeFolder
}
