package editor

import (
	"sort"

	"cipherstudio/internal/domain/models"
)

// RebuildState carries UI state that must survive a tree rebuild: which
// folders the user opened or closed, and the active file's unsaved
// content so a refetch does not clobber an edit in progress.
type RebuildState struct {
	OpenFolders    map[string]bool
	ActiveFileID   string
	UnsavedContent *string

	// DefaultOpen applies to folders with no OpenFolders entry: true
	// when the records come fresh from a remote project, false for
	// drafts and restores.
	DefaultOpen bool
}

// BuildTree converts a flat list of persisted records into nested root
// nodes. Records are indexed by id, paths are resolved where missing,
// and each child is attached to its parent's children list. Folders
// default closed unless prev asks for open; prev also carries previously
// observed toggle state and the active file's unsaved content.
func BuildTree(records []models.File, prev *RebuildState) []*Node {
	byID := make(map[string]*Node, len(records))
	order := make([]*Node, 0, len(records))

	defaultOpen := prev != nil && prev.DefaultOpen
	for i := range records {
		n := nodeFromRecord(&records[i])
		if n.IsFolder() {
			n.IsOpen = defaultOpen
			n.Children = []*Node{}
		}
		byID[n.ID] = n
		order = append(order, n)
	}

	for _, n := range order {
		n.Path = ResolvePath(n, byID)
	}

	if prev != nil {
		for id, open := range prev.OpenFolders {
			if n, ok := byID[id]; ok && n.IsFolder() {
				n.IsOpen = open
			}
		}
		if prev.UnsavedContent != nil && prev.ActiveFileID != "" {
			if n, ok := byID[prev.ActiveFileID]; ok && !n.IsFolder() {
				n.Content = *prev.UnsavedContent
				n.Size = len(*prev.UnsavedContent)
			}
		}
	}

	var roots []*Node
	for _, n := range order {
		if n.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		parent, ok := byID[*n.ParentID]
		if !ok || !parent.IsFolder() {
			// Orphaned reference: keep the node visible at root level.
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	return roots
}

// Flatten walks a built tree depth first and returns the flat record
// list, parents before children. BuildTree(Flatten(tree)) reproduces
// the same structure.
func Flatten(roots []*Node, projectID string) []models.File {
	var records []models.File
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			records = append(records, n.record(projectID))
			if len(n.Children) > 0 {
				walk(n.Children)
			}
		}
	}
	walk(roots)
	return records
}

// SortSiblings orders a children list by type ascending then name
// ascending, the same ordering the server uses for listings.
func SortSiblings(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Kind != nodes[j].Kind {
			return nodes[i].Kind < nodes[j].Kind
		}
		return nodes[i].Name < nodes[j].Name
	})
}
