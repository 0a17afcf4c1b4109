package node

import "strings"

// Tree is a parsed program together with the source it was parsed from.
// A tree is owned by a single transformation call.
type Tree struct {
	Root     *Node
	Filename string
	Source   []byte
}

// SourceText returns the original source text covered by n. Synthetic nodes
// return their replacement text.
func (tree *Tree) SourceText(n *Node) string {
	if n == nil {
		return ""
	}

	if n.Synthetic {
		return n.Text
	}

	if n.Pos == nil || n.Pos.EndOffset > uint(len(tree.Source)) || n.Pos.StartOffset > n.Pos.EndOffset {
		return ""
	}

	return string(tree.Source[n.Pos.StartOffset:n.Pos.EndOffset])
}

// LineStart returns the byte offset of the first byte of the line containing offset.
func (tree *Tree) LineStart(offset uint) uint {
	if offset > uint(len(tree.Source)) {
		offset = uint(len(tree.Source))
	}

	idx := strings.LastIndexByte(string(tree.Source[:offset]), '\n')

	return uint(idx + 1)
}

// Indentation returns the leading whitespace of the line n starts on, and
// whether n is the first non-blank token on that line.
func (tree *Tree) Indentation(n *Node) (string, bool) {
	if n == nil || n.Pos == nil {
		return "", false
	}

	start := tree.LineStart(n.Pos.StartOffset)
	prefix := string(tree.Source[start:n.Pos.StartOffset])

	if strings.TrimLeft(prefix, " \t") != "" {
		trimmed := len(prefix) - len(strings.TrimLeft(prefix, " \t"))

		return prefix[:trimmed], false
	}

	return prefix, true
}
