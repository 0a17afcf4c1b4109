package refactor

import "github.com/Sumatoshi-tech/phprefactor/pkg/uast/pkg/node"

// ScopeInfo summarizes one variable scope of a file.
type ScopeInfo struct {
	// Node is nil for the top-level scope.
	Node      *node.Node `json:"-"                   yaml:"-"`
	Kind      string     `json:"kind"                yaml:"kind"`
	Name      string     `json:"name,omitempty"      yaml:"name,omitempty"`
	Variables []string   `json:"variables,omitempty" yaml:"variables,omitempty"`
	StartLine uint       `json:"start_line"          yaml:"start_line"`
	EndLine   uint       `json:"end_line"            yaml:"end_line"`
	Depth     int        `json:"depth"               yaml:"depth"`
}

// DescribeScopes lists the top-level scope followed by every
// scope-introducing construct in source order, each with the distinct
// variable names that belong to it.
func DescribeScopes(tree *node.Tree) []ScopeInfo {
	if tree == nil || tree.Root == nil {
		return nil
	}

	scopes := []ScopeInfo{{
		Kind:      "TopLevel",
		StartLine: tree.Root.StartLine(),
		EndLine:   tree.Root.EndLine(),
		Variables: scopeVariableNames(tree.Root, nil),
	}}

	var walk func(n *node.Node, depth int)

	walk = func(n *node.Node, depth int) {
		if n.Kind.IsScope() {
			depth++
			scopes = append(scopes, ScopeInfo{
				Node:      n,
				Kind:      n.Kind.String(),
				Name:      n.Name,
				StartLine: n.StartLine(),
				EndLine:   n.EndLine(),
				Depth:     depth,
				Variables: scopeVariableNames(tree.Root, n),
			})
		}

		for _, child := range n.Children {
			walk(child, depth)
		}
	}

	walk(tree.Root, 0)

	return scopes
}

func scopeVariableNames(root, scope *node.Node) []string {
	var names []string

	seen := map[string]bool{}

	VisitScopeVariables(root, scope, func(v *node.Node) {
		if !seen[v.Name] {
			seen[v.Name] = true
			names = append(names, v.Name)
		}
	})

	return names
}
