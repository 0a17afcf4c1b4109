package refactor

import "github.com/Sumatoshi-tech/phprefactor/pkg/uast/pkg/node"

// FindScope returns the innermost function, method, closure, or arrow function
// whose span contains line. Nil means the line is at top level.
func FindScope(root *node.Node, line uint) *node.Node {
	if root == nil {
		return nil
	}

	l := &scopeLocator{line: line}
	l.walk(root)

	return l.found
}

type scopeLocator struct {
	found *node.Node
	// scopes holds the enclosing scope-introducing nodes, innermost last.
	scopes     []*node.Node
	foundDepth int
	line       uint
}

// walk visits in pre-order. Every node containing the line records the current
// innermost scope, but a record never replaces one made at a greater depth, so
// a later sibling at a shallower level cannot override a nested scope on the
// same line.
func (l *scopeLocator) walk(n *node.Node) {
	if n.Kind.IsScope() {
		l.scopes = append(l.scopes, n)
		defer func() { l.scopes = l.scopes[:len(l.scopes)-1] }()
	}

	if depth := len(l.scopes); depth > 0 && depth >= l.foundDepth && n.ContainsLine(l.line) {
		l.found = l.scopes[depth-1]
		l.foundDepth = depth
	}

	for _, child := range n.Children {
		if child.Pos != nil && !child.ContainsLine(l.line) {
			// Nothing below a non-containing node can contain the line.
			continue
		}

		l.walk(child)
	}
}

// ScopeName describes a scope for messages: the function or method name, or
// the kind for anonymous scopes and top level.
func ScopeName(scope *node.Node) string {
	switch {
	case scope == nil:
		return "top level"
	case scope.Name != "":
		return scope.Kind.String() + " " + scope.Name
	default:
		return scope.Kind.String()
	}
}
