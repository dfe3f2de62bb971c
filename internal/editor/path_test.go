package editor

import (
	"testing"

	"cipherstudio/internal/domain/models"
)

func strPtr(s string) *string { return &s }

func TestResolvePath(t *testing.T) {
	byID := map[string]*Node{
		"a": {ID: "a", Name: "src", Kind: models.FileTypeFolder},
		"b": {ID: "b", Name: "components", Kind: models.FileTypeFolder, ParentID: strPtr("a")},
		"c": {ID: "c", Name: "Button.jsx", Kind: models.FileTypeFile, ParentID: strPtr("b")},
	}

	tests := []struct {
		name string
		node *Node
		want string
	}{
		{
			name: "root node",
			node: byID["a"],
			want: "/src",
		},
		{
			name: "nested folder",
			node: byID["b"],
			want: "/src/components",
		},
		{
			name: "deep file",
			node: byID["c"],
			want: "/src/components/Button.jsx",
		},
		{
			name: "missing parent falls back to root level",
			node: &Node{ID: "x", Name: "orphan.js", Kind: models.FileTypeFile, ParentID: strPtr("gone")},
			want: "/orphan.js",
		},
		{
			name: "already resolved path is returned unchanged",
			node: &Node{ID: "y", Name: "a.js", Path: "/already/a.js", ParentID: strPtr("b")},
			want: "/already/a.js",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolvePath(tt.node, byID); got != tt.want {
				t.Errorf("ResolvePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolvePathDeepChain(t *testing.T) {
	byID := map[string]*Node{}
	var parent *string
	names := []string{"a1", "a2", "a3", "a4", "a5"}
	for i, name := range names {
		id := name
		byID[id] = &Node{ID: id, Name: name, Kind: models.FileTypeFolder, ParentID: parent}
		parent = &names[i]
	}

	got := ResolvePath(byID["a5"], byID)
	want := "/a1/a2/a3/a4/a5"
	if got != want {
		t.Errorf("ResolvePath() = %q, want %q", got, want)
	}
}

func TestResolvePathTerminatesOnCycle(t *testing.T) {
	byID := map[string]*Node{
		"a": {ID: "a", Name: "a", Kind: models.FileTypeFolder, ParentID: strPtr("b")},
		"b": {ID: "b", Name: "b", Kind: models.FileTypeFolder, ParentID: strPtr("a")},
	}

	// A corrupted parent cycle must still produce some path, not hang.
	got := ResolvePath(byID["a"], byID)
	if got == "" {
		t.Error("ResolvePath() returned empty path for cyclic input")
	}
}
