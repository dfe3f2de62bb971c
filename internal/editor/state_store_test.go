package editor

import (
	"path/filepath"
	"testing"

	"cipherstudio/internal/domain/models"
)

func TestDraftSnapshotRoundTrip(t *testing.T) {
	kv := NewMemoryKV()

	snap := DraftSnapshot{
		ProjectName: "scratch",
		Files: []models.File{
			{ID: "f1", Name: "app.js", Type: models.FileTypeFile, Path: "/app.js", Content: "x", Size: 1},
		},
		OpenFolders: []string{"f9"},
	}
	if err := SaveDraft(kv, snap); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}

	got, ok, err := LoadDraft(kv)
	if err != nil || !ok {
		t.Fatalf("LoadDraft: ok=%v err=%v", ok, err)
	}
	if got.ProjectName != "scratch" || len(got.Files) != 1 || got.Files[0].Content != "x" {
		t.Errorf("round trip = %+v", got)
	}
	if len(got.OpenFolders) != 1 || got.OpenFolders[0] != "f9" {
		t.Errorf("open folders = %v, want [f9]", got.OpenFolders)
	}
}

func TestLoadDraftMissing(t *testing.T) {
	_, ok, err := LoadDraft(NewMemoryKV())
	if err != nil {
		t.Fatalf("LoadDraft: %v", err)
	}
	if ok {
		t.Error("LoadDraft reported a snapshot in an empty store")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	kv := NewMemoryKV()

	s := NewSession()
	s.SelectFile("a")
	s.SelectFile("b")
	if err := SaveSession(kv, s); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	got, ok, err := LoadSession(kv)
	if err != nil || !ok {
		t.Fatalf("LoadSession: ok=%v err=%v", ok, err)
	}
	if got.ActiveFile != "b" || len(got.OpenFiles) != 2 {
		t.Errorf("restored session = %+v", got)
	}
}

func TestSelectedProject(t *testing.T) {
	kv := NewMemoryKV()

	if err := SaveSelectedProject(kv, "p1"); err != nil {
		t.Fatalf("save: %v", err)
	}
	id, ok, err := LoadSelectedProject(kv)
	if err != nil || !ok || id != "p1" {
		t.Fatalf("load = %q ok=%v err=%v", id, ok, err)
	}

	// Saving empty clears the selection.
	if err := SaveSelectedProject(kv, ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := LoadSelectedProject(kv); ok {
		t.Error("selection survived a clear")
	}
}

func TestFileKVPersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	first := NewFileKV(path)
	if err := first.Set("k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}

	second := NewFileKV(path)
	v, ok, err := second.Get("k")
	if err != nil || !ok || v != "v" {
		t.Fatalf("get after reopen = %q ok=%v err=%v", v, ok, err)
	}

	if err := second.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := second.Get("k"); ok {
		t.Error("key survived delete")
	}
}

func TestRestoreDraftEngine(t *testing.T) {
	kv := NewMemoryKV()

	snap := DraftSnapshot{
		ProjectName: "restored",
		Files: []models.File{
			{ID: "f1", Name: "src", Type: models.FileTypeFolder, Path: "/src"},
			{ID: "f2", Name: "app.js", Type: models.FileTypeFile, ParentID: strPtr("f1"), Path: "/src/app.js", Content: "x", Size: 1},
		},
	}
	if err := SaveDraft(kv, snap); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}

	e, err := RestoreDraftEngine("ignored", kv, testLogger())
	if err != nil {
		t.Fatalf("RestoreDraftEngine: %v", err)
	}

	n, ok := e.Node("f2")
	if !ok || n.Path != "/src/app.js" || n.Content != "x" {
		t.Errorf("restored node = %+v, ok=%v", n, ok)
	}
	if !e.Draft() {
		t.Error("restored engine should be in draft mode")
	}
}
