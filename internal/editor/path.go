package editor

// maxPathDepth bounds the ancestor walk so a corrupted parent chain
// cannot loop forever.
const maxPathDepth = 256

// ResolvePath computes a node's materialized path by walking parent
// references through byID. Root nodes resolve to "/name". A node whose
// path is already set is returned unchanged. When a referenced parent
// cannot be found the node degrades to a root-level path; the broken
// reference is an upstream problem and must not take the tree down.
func ResolvePath(n *Node, byID map[string]*Node) string {
	if n.Path != "" {
		return n.Path
	}

	segments := []string{n.Name}
	parentID := n.ParentID

	for depth := 0; parentID != nil && depth < maxPathDepth; depth++ {
		parent, ok := byID[*parentID]
		if !ok {
			// Stale reference; treat the chain walked so far as rooted.
			break
		}
		if parent.Path != "" {
			return join(parent.Path, segments)
		}
		segments = append(segments, parent.Name)
		parentID = parent.ParentID
	}

	return join("", segments)
}

// join builds prefix + "/" + segments reversed (segments were collected
// leaf-first).
func join(prefix string, segments []string) string {
	path := prefix
	for i := len(segments) - 1; i >= 0; i-- {
		path += "/" + segments[i]
	}
	return path
}
