package models

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/tristendillon/carve/core/logger"
)

type OutputNode struct {
	Name     string
	Children map[string]*OutputNode
	Parent   *OutputNode
	RelPath  string
	Depth    int
	IsFile   bool
	Source   string // project-relative origin, empty for generated files
}

// OutputTree mirrors what the materializer wrote under Root.
type OutputTree struct {
	Root   string
	Node   *OutputNode
	Files  []string
	Copied []CopiedDependency
}

func NewOutputTree(root string) *OutputTree {
	return &OutputTree{
		Root: root,
		Node: &OutputNode{Children: make(map[string]*OutputNode)},
	}
}

// AddFile registers an output-relative slash path. Adding the same path twice is a no-op.
func (ot *OutputTree) AddFile(relPath, source string) {
	clean := path.Clean(relPath)
	parts := strings.Split(clean, "/")

	current := ot.Node
	for i, part := range parts {
		if part == "" || part == "." {
			continue
		}
		child, exists := current.Children[part]
		if !exists {
			child = &OutputNode{
				Name:     part,
				Children: make(map[string]*OutputNode),
				Parent:   current,
				RelPath:  strings.Join(parts[:i+1], "/"),
				Depth:    i + 1,
			}
			current.Children[part] = child
		}
		current = child
	}

	if current.IsFile {
		return
	}
	current.IsFile = true
	current.Source = source
	ot.Files = append(ot.Files, clean)
}

func (ot *OutputTree) Has(relPath string) bool {
	current := ot.Node
	for _, part := range strings.Split(path.Clean(relPath), "/") {
		child, ok := current.Children[part]
		if !ok {
			return false
		}
		current = child
	}
	return true
}

func (ot *OutputTree) FileCount() int {
	return len(ot.Files)
}

func (ot *OutputTree) PrintTree(level logger.LogLevel) {
	ot.printNode(ot.Node, "", level)
}

func (ot *OutputTree) printNode(node *OutputNode, prefix string, level logger.LogLevel) {
	if node != ot.Node {
		sourceInfo := ""
		if node.IsFile && node.Source != "" && node.Source != node.RelPath {
			sourceInfo = fmt.Sprintf(" <- %s", node.Source)
		}
		name := node.Name
		if !node.IsFile {
			name += "/"
		}
		logger.GetLogFromLevel(level)("%s%s%s", prefix, name, sourceInfo)
	}

	keys := make([]string, 0, len(node.Children))
	for k := range node.Children {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		ot.printNode(node.Children[key], prefix+"  ", level)
	}
}
