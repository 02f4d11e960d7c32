package artifact

import (
	"sort"
	"strings"
)

// TreeNode is the hierarchical, UI-facing projection of an artifact's files.
// It is derived state: rebuilt on every artifact change, never authoritative.
type TreeNode struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	Dir      bool        `json:"dir"`
	Children []*TreeNode `json:"children,omitempty"`
}

// FileTree projects the artifact's flat file list into a tree. Folders sort
// before files, both alphabetically.
func FileTree(a *Artifact) []*TreeNode {
	if a == nil {
		return nil
	}
	root := &TreeNode{Dir: true}
	index := map[string]*TreeNode{"": root}

	for _, f := range a.Files {
		parts := strings.Split(strings.Trim(f.Path, "/"), "/")
		prefix := ""
		parent := root
		for i, part := range parts {
			if part == "" {
				continue
			}
			if prefix == "" {
				prefix = part
			} else {
				prefix = prefix + "/" + part
			}
			node, ok := index[prefix]
			if !ok {
				node = &TreeNode{
					Name: part,
					Path: prefix,
					Dir:  i < len(parts)-1,
				}
				index[prefix] = node
				parent.Children = append(parent.Children, node)
			}
			parent = node
		}
	}
	sortTree(root)
	return root.Children
}

func sortTree(n *TreeNode) {
	sort.SliceStable(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.Dir != b.Dir {
			return a.Dir
		}
		return a.Name < b.Name
	})
	for _, c := range n.Children {
		sortTree(c)
	}
}
