// Package node provides the program tree the refactoring engine walks and
// mutates: a kind-tagged node with a source span and ordered children.
package node

import (
	"fmt"
	"strconv"
	"strings"
)

// Positions represents the byte and line/col offsets for a node.
// All fields are 1-based except StartOffset/EndOffset, which are byte offsets.
type Positions struct {
	StartLine   uint `json:"start_line,omitempty"`
	StartCol    uint `json:"start_col,omitempty"`
	StartOffset uint `json:"start_offset,omitempty"`
	EndLine     uint `json:"end_line,omitempty"`
	EndCol      uint `json:"end_col,omitempty"`
	EndOffset   uint `json:"end_offset,omitempty"`
}

// NewPositions builds a Positions value.
func NewPositions(startLine, startCol, startOffset, endLine, endCol, endOffset uint) *Positions {
	return &Positions{
		StartLine:   startLine,
		StartCol:    startCol,
		StartOffset: startOffset,
		EndLine:     endLine,
		EndCol:      endCol,
		EndOffset:   endOffset,
	}
}

// Node is a single program tree node.
//
// Fields:
//
//	Kind: closed node category (see Kind).
//	Type: grammar node type the node was lowered from.
//	Name: identifier text without sigil for variables, declared name for
//	      functions, methods, and classes. The only field the rewriter mutates.
//	Text: replacement source text of a synthetic node.
//	Synthetic: node was produced by a transformation and prints Text.
//	Pos: source span; nil for inserted synthetic nodes.
//	Children: child nodes (ordered by source position).
type Node struct {
	Pos       *Positions `json:"pos,omitempty"`
	Type      string     `json:"type,omitempty"`
	Name      string     `json:"name,omitempty"`
	Text      string     `json:"text,omitempty"`
	Children  []*Node    `json:"children,omitempty"`
	Kind      Kind       `json:"kind"`
	Synthetic bool       `json:"synthetic,omitempty"`
}

// New creates a node of the given kind and grammar type.
func New(kind Kind, nodeType string, pos *Positions) *Node {
	return &Node{Kind: kind, Type: nodeType, Pos: pos}
}

// NewSynthetic creates a node that prints text verbatim. A non-nil pos makes the
// node stand in for that source span; a nil pos inserts the text.
func NewSynthetic(text string, pos *Positions) *Node {
	return &Node{Kind: KindUnknown, Text: text, Synthetic: true, Pos: pos}
}

// StartLine returns the 1-based start line, or 0 when the node has no position.
func (targetNode *Node) StartLine() uint {
	if targetNode == nil || targetNode.Pos == nil {
		return 0
	}

	return targetNode.Pos.StartLine
}

// EndLine returns the 1-based end line, or 0 when the node has no position.
func (targetNode *Node) EndLine() uint {
	if targetNode == nil || targetNode.Pos == nil {
		return 0
	}

	return targetNode.Pos.EndLine
}

// ContainsLine reports whether the node's span covers the given line.
func (targetNode *Node) ContainsLine(line uint) bool {
	if targetNode == nil || targetNode.Pos == nil {
		return false
	}

	return targetNode.Pos.StartLine <= line && line <= targetNode.Pos.EndLine
}

// SpanLength returns the byte length of the node's span. The boolean is false
// when the node carries no offsets.
func (targetNode *Node) SpanLength() (uint, bool) {
	if targetNode == nil || targetNode.Pos == nil || targetNode.Pos.EndOffset < targetNode.Pos.StartOffset {
		return 0, false
	}

	return targetNode.Pos.EndOffset - targetNode.Pos.StartOffset, true
}

// Find returns all nodes in the tree (including root) for which predicate(node) is true.
// Traversal is pre-order. Returns nil if n is nil.
func (targetNode *Node) Find(predicate func(*Node) bool) []*Node {
	if targetNode == nil {
		return nil
	}

	return findNodesWithPredicate(targetNode, predicate)
}

// VisitPreOrder visits all nodes in pre-order (root, then children left-to-right).
func (targetNode *Node) VisitPreOrder(fn func(*Node)) {
	if targetNode == nil {
		return
	}

	fn(targetNode)

	for _, child := range targetNode.Children {
		child.VisitPreOrder(fn)
	}
}

// Ancestors returns the list of ancestors from root to the parent of target (empty if not found).
// Returns nil if n or target is nil.
func (targetNode *Node) Ancestors(target *Node) []*Node {
	if targetNode == nil || target == nil {
		return nil
	}

	return findAncestors(targetNode, target)
}

// Parent returns the direct parent of target within the tree rooted at n.
func (targetNode *Node) Parent(target *Node) *Node {
	ancestors := targetNode.Ancestors(target)
	if len(ancestors) == 0 {
		return nil
	}

	return ancestors[len(ancestors)-1]
}

// ChildIndex returns the index of child in Children, or -1.
func (targetNode *Node) ChildIndex(child *Node) int {
	for idx, candidate := range targetNode.Children {
		if candidate == child {
			return idx
		}
	}

	return -1
}

// AddChild appends a child node to n.
func (targetNode *Node) AddChild(child *Node) {
	targetNode.Children = append(targetNode.Children, child)
}

// InsertBefore inserts child immediately before anchor. Returns false when
// anchor is not a direct child.
func (targetNode *Node) InsertBefore(anchor, child *Node) bool {
	idx := targetNode.ChildIndex(anchor)
	if idx < 0 {
		return false
	}

	targetNode.insertAt(idx, child)

	return true
}

// InsertAfter inserts child immediately after anchor. Returns false when
// anchor is not a direct child.
func (targetNode *Node) InsertAfter(anchor, child *Node) bool {
	idx := targetNode.ChildIndex(anchor)
	if idx < 0 {
		return false
	}

	targetNode.insertAt(idx+1, child)

	return true
}

func (targetNode *Node) insertAt(idx int, child *Node) {
	targetNode.Children = append(targetNode.Children, nil)
	copy(targetNode.Children[idx+1:], targetNode.Children[idx:])
	targetNode.Children[idx] = child
}

// RemoveChild removes the first occurrence of the given child node from n.
// Returns true if the child was found and removed.
func (targetNode *Node) RemoveChild(child *Node) bool {
	idx := targetNode.ChildIndex(child)
	if idx < 0 {
		return false
	}

	targetNode.Children = append(targetNode.Children[:idx], targetNode.Children[idx+1:]...)

	return true
}

// ReplaceChild replaces the first occurrence of old in Children with replacement.
// Returns true if replaced.
func (targetNode *Node) ReplaceChild(old, replacement *Node) bool {
	idx := targetNode.ChildIndex(old)
	if idx < 0 {
		return false
	}

	targetNode.Children[idx] = replacement

	return true
}

// ToMap converts the node to a map representation.
func (targetNode *Node) ToMap() map[string]any {
	if targetNode == nil {
		return nil
	}

	result := map[string]any{
		"kind": targetNode.Kind.String(),
	}

	if targetNode.Type != "" {
		result["type"] = targetNode.Type
	}

	if targetNode.Name != "" {
		result["name"] = targetNode.Name
	}

	if targetNode.Synthetic {
		result["text"] = targetNode.Text
	}

	result["pos"] = buildPositionMap(targetNode.Pos)

	if len(targetNode.Children) > 0 {
		children := make([]map[string]any, len(targetNode.Children))

		for idx, child := range targetNode.Children {
			children[idx] = child.ToMap()
		}

		result["children"] = children
	}

	return result
}

// buildPositionMap creates the position map, handling nil positions.
func buildPositionMap(pos *Positions) map[string]any {
	if pos == nil {
		return nil
	}

	return map[string]any{
		"start_line":   pos.StartLine,
		"start_col":    pos.StartCol,
		"start_offset": pos.StartOffset,
		"end_line":     pos.EndLine,
		"end_col":      pos.EndCol,
		"end_offset":   pos.EndOffset,
	}
}

// String returns a string representation of the node.
func (targetNode *Node) String() string {
	if targetNode == nil {
		return "nil"
	}

	var buf strings.Builder

	buf.WriteString("Node{Kind:")
	buf.WriteString(targetNode.Kind.String())

	if targetNode.Type != "" {
		buf.WriteString(",Type:")
		buf.WriteString(targetNode.Type)
	}

	if targetNode.Name != "" {
		buf.WriteString(",Name:")
		buf.WriteString(targetNode.Name)
	}

	if targetNode.Pos != nil {
		fmt.Fprintf(&buf, ",Lines:%d-%d", targetNode.Pos.StartLine, targetNode.Pos.EndLine)
	}

	if len(targetNode.Children) > 0 {
		buf.WriteString(",Children:")
		buf.WriteString(strconv.Itoa(len(targetNode.Children)))
	}

	buf.WriteString("}")

	return buf.String()
}

func findNodesWithPredicate(targetNode *Node, predicate func(*Node) bool) []*Node {
	var result []*Node

	stack := []*Node{targetNode}

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if predicate(curr) {
			result = append(result, curr)
		}

		for idx := len(curr.Children) - 1; idx >= 0; idx-- {
			stack = append(stack, curr.Children[idx])
		}
	}

	return result
}

type nodeAncestorFrame struct {
	node   *Node
	parent []*Node
}

func findAncestors(targetNode, target *Node) []*Node {
	stack := []nodeAncestorFrame{{node: targetNode, parent: nil}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.node == target {
			return top.parent
		}

		ancestorPath := append(append([]*Node{}, top.parent...), top.node)

		for idx := len(top.node.Children) - 1; idx >= 0; idx-- {
			stack = append(stack, nodeAncestorFrame{
				node:   top.node.Children[idx],
				parent: ancestorPath,
			})
		}
	}

	return nil
}
