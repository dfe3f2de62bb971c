package editor

import (
	"testing"

	"cipherstudio/internal/domain/models"
)

func sampleRecords() []models.File {
	return []models.File{
		{ID: "f1", Name: "src", Type: models.FileTypeFolder, Path: "/src"},
		{ID: "f2", Name: "components", Type: models.FileTypeFolder, ParentID: strPtr("f1"), Path: "/src/components"},
		{ID: "f3", Name: "Button.jsx", Type: models.FileTypeFile, ParentID: strPtr("f2"), Path: "/src/components/Button.jsx", Content: "button", Size: 6},
		{ID: "f4", Name: "README.md", Type: models.FileTypeFile, Path: "/README.md", Content: "# hi", Size: 4},
	}
}

func TestBuildTreeNesting(t *testing.T) {
	roots := BuildTree(sampleRecords(), &RebuildState{DefaultOpen: true})

	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}

	src := roots[0]
	if src.ID != "f1" || len(src.Children) != 1 {
		t.Fatalf("unexpected first root: %+v", src)
	}
	components := src.Children[0]
	if components.ID != "f2" || len(components.Children) != 1 {
		t.Fatalf("unexpected nested folder: %+v", components)
	}
	if components.Children[0].ID != "f3" {
		t.Errorf("expected Button.jsx under components, got %s", components.Children[0].ID)
	}

	if !src.IsOpen || !components.IsOpen {
		t.Error("folders freshly loaded from remote should default open")
	}
}

func TestBuildTreeFoldersDefaultClosed(t *testing.T) {
	roots := BuildTree(sampleRecords(), nil)

	src := roots[0]
	if src.IsOpen || src.Children[0].IsOpen {
		t.Error("folders should default closed without a remote load")
	}
}

func TestBuildTreeResolvesMissingPaths(t *testing.T) {
	records := sampleRecords()
	for i := range records {
		records[i].Path = ""
	}

	roots := BuildTree(records, nil)
	if got := roots[0].Children[0].Children[0].Path; got != "/src/components/Button.jsx" {
		t.Errorf("resolved path = %q, want /src/components/Button.jsx", got)
	}
}

func TestBuildTreePreservesPreviousState(t *testing.T) {
	unsaved := "edited but not saved"
	prev := &RebuildState{
		OpenFolders:    map[string]bool{"f1": false},
		ActiveFileID:   "f3",
		UnsavedContent: &unsaved,
		DefaultOpen:    true,
	}

	roots := BuildTree(sampleRecords(), prev)

	src := roots[0]
	if src.IsOpen {
		t.Error("previously closed folder should stay closed after rebuild")
	}
	if !src.Children[0].IsOpen {
		t.Error("folder without recorded toggle state should take the default")
	}
	button := src.Children[0].Children[0]
	if button.Content != unsaved {
		t.Errorf("active file content = %q, want preserved unsaved edit", button.Content)
	}
	if button.Size != len(unsaved) {
		t.Errorf("active file size = %d, want %d", button.Size, len(unsaved))
	}
}

func TestBuildTreeOrphanStaysVisible(t *testing.T) {
	records := []models.File{
		{ID: "f1", Name: "lost.js", Type: models.FileTypeFile, ParentID: strPtr("gone")},
	}

	roots := BuildTree(records, nil)
	if len(roots) != 1 || roots[0].ID != "f1" {
		t.Fatalf("orphaned record should surface at root level, got %+v", roots)
	}
}

func TestFlattenRoundTrip(t *testing.T) {
	original := sampleRecords()

	rebuilt := BuildTree(Flatten(BuildTree(original, nil), "p1"), nil)

	index := map[string]*Node{}
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			index[n.ID] = n
			walk(n.Children)
		}
	}
	walk(rebuilt)

	if len(index) != len(original) {
		t.Fatalf("round trip lost records: got %d, want %d", len(index), len(original))
	}
	for _, rec := range original {
		n, ok := index[rec.ID]
		if !ok {
			t.Fatalf("record %s missing after round trip", rec.ID)
		}
		if n.Path != rec.Path {
			t.Errorf("record %s path = %q, want %q", rec.ID, n.Path, rec.Path)
		}
		if !samePointer(n.ParentID, rec.ParentID) {
			t.Errorf("record %s parent changed after round trip", rec.ID)
		}
	}
}

func TestSortSiblings(t *testing.T) {
	nodes := []*Node{
		{Name: "z.js", Kind: models.FileTypeFile},
		{Name: "assets", Kind: models.FileTypeFolder},
		{Name: "a.js", Kind: models.FileTypeFile},
	}

	SortSiblings(nodes)

	// "file" sorts before "folder"; within a kind, names ascend.
	got := []string{nodes[0].Name, nodes[1].Name, nodes[2].Name}
	if got[0] != "a.js" || got[1] != "z.js" || got[2] != "assets" {
		t.Errorf("SortSiblings order = %v, want [a.js z.js assets]", got)
	}
}
