package editor

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"cipherstudio/internal/domain/models"
)

// Snapshot keys in the local key-value store. One holds the draft
// project's records, one the editor session, one the last selected
// project for restore on reload.
const (
	KeyDraftTree       = "cipherstudio.draft-tree"
	KeySession         = "cipherstudio.editor-session"
	KeySelectedProject = "cipherstudio.selected-project"
)

// KV is the minimal local key-value store the autosave scheduler writes
// snapshots to.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryKV is an in-memory KV, used for Draft sessions that have not
// been given a persistent backing and in tests.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// FileKV persists keys as a single JSON document on disk. The whole
// document is rewritten on every Set; snapshot writes are already
// debounced above this layer so the churn is bounded.
type FileKV struct {
	mu   sync.Mutex
	path string
}

// NewFileKV creates a file-backed store at path.
func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

func (f *FileKV) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (f *FileKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return err
	}
	data[key] = value
	return f.write(data)
}

func (f *FileKV) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return err
	}
	delete(data, key)
	return f.write(data)
}

func (f *FileKV) read() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	data := map[string]string{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("decoding state file: %w", err)
		}
	}
	return data, nil
}

func (f *FileKV) write(data map[string]string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// DraftSnapshot is what a Draft project's autosave writes under
// KeyDraftTree. OpenFolders lists the ids of folders the user had
// expanded, since the records themselves carry no toggle state.
type DraftSnapshot struct {
	ProjectName string        `json:"projectName"`
	Files       []models.File `json:"files"`
	OpenFolders []string      `json:"openFolders,omitempty"`
}

// SaveDraft serializes a draft snapshot into the store.
func SaveDraft(kv KV, snap DraftSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return kv.Set(KeyDraftTree, string(raw))
}

// LoadDraft restores a draft snapshot, reporting ok=false when none was
// saved.
func LoadDraft(kv KV) (DraftSnapshot, bool, error) {
	raw, ok, err := kv.Get(KeyDraftTree)
	if err != nil || !ok {
		return DraftSnapshot{}, false, err
	}
	var snap DraftSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return DraftSnapshot{}, false, err
	}
	return snap, true, nil
}

// SaveSession serializes the editor session into the store.
func SaveSession(kv KV, session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return kv.Set(KeySession, string(raw))
}

// LoadSession restores the editor session, reporting ok=false when none
// was saved.
func LoadSession(kv KV) (*Session, bool, error) {
	raw, ok, err := kv.Get(KeySession)
	if err != nil || !ok {
		return nil, false, err
	}
	session := NewSession()
	if err := json.Unmarshal([]byte(raw), session); err != nil {
		return nil, false, err
	}
	return session, true, nil
}

// SaveSelectedProject remembers the last selected project id.
func SaveSelectedProject(kv KV, projectID string) error {
	if projectID == "" {
		return kv.Delete(KeySelectedProject)
	}
	return kv.Set(KeySelectedProject, projectID)
}

// LoadSelectedProject returns the last selected project id, if any.
func LoadSelectedProject(kv KV) (string, bool, error) {
	return kv.Get(KeySelectedProject)
}
