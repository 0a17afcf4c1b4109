package uast

import "github.com/Sumatoshi-tech/phprefactor/pkg/uast/pkg/node"

// Grammar node types that bind or modify variables.
const (
	tsAssignment          = "assignment_expression"
	tsReferenceAssignment = "reference_assignment_expression"
	tsAugmentedAssignment = "augmented_assignment_expression"
	tsUpdate              = "update_expression"
	tsForeach             = "foreach_statement"
	tsCatch               = "catch_clause"
	tsGlobal              = "global_declaration"
	tsStatic              = "function_static_declaration"
	tsListLiteral         = "list_literal"
	tsArrayCreation       = "array_creation_expression"
	tsNamespace           = "namespace_definition"
)

// IsStaticScope reports whether a method or closure node was declared static.
func IsStaticScope(scope *node.Node) bool {
	if scope == nil {
		return false
	}

	for _, child := range scope.Children {
		if child.Type == tsStaticModifier {
			return true
		}
	}

	return false
}

// IsNamespace reports whether n is a namespace declaration.
func IsNamespace(n *node.Node) bool {
	return n != nil && n.Type == tsNamespace
}

// ScopeParameters returns the variables declared in the parameter list of a
// scope-introducing node.
func ScopeParameters(scope *node.Node) []*node.Node {
	return variablesUnder(scope, node.KindParameters)
}

// CapturedVariables returns the variables listed in a closure's use clause.
func CapturedVariables(scope *node.Node) []*node.Node {
	return variablesUnder(scope, node.KindUseClause)
}

func variablesUnder(scope *node.Node, kind node.Kind) []*node.Node {
	if scope == nil {
		return nil
	}

	var vars []*node.Node

	for _, child := range scope.Children {
		if child.Kind == kind {
			vars = append(vars, variablesIn(child)...)
		}
	}

	return vars
}

func variablesIn(n *node.Node) []*node.Node {
	return n.Find(func(candidate *node.Node) bool { return candidate.Kind == node.KindVariable })
}

// ScopeBody returns the body of a scope-introducing node: the block of a
// function, method, or closure, or the expression of an arrow function.
// Nil is returned for abstract methods.
func ScopeBody(scope *node.Node) *node.Node {
	if scope == nil || len(scope.Children) == 0 {
		return nil
	}

	for _, child := range scope.Children {
		if child.Kind == node.KindBlock {
			return child
		}
	}

	if scope.Kind == node.KindArrowFunction {
		return scope.Children[len(scope.Children)-1]
	}

	return nil
}

// Writes classifies variable occurrences that store a value.
type Writes struct {
	// Plain occurrences overwrite the variable without reading it first.
	Plain map[*node.Node]bool
	// Updates read and then modify the variable ("+=", "++", "$a[] =").
	Updates map[*node.Node]bool
}

// IsWrite reports whether v is written in any way.
func (w Writes) IsWrite(v *node.Node) bool {
	return w.Plain[v] || w.Updates[v]
}

// VariableWrites finds the written variable occurrences under the given
// nodes. Nested functions are included; callers filter by scope.
func VariableWrites(roots ...*node.Node) Writes {
	writes := Writes{Plain: map[*node.Node]bool{}, Updates: map[*node.Node]bool{}}

	for _, root := range roots {
		root.VisitPreOrder(writes.classify)
	}

	return writes
}

func (w Writes) classify(n *node.Node) {
	switch n.Type {
	case tsAssignment, tsReferenceAssignment:
		if len(n.Children) == 0 {
			return
		}

		w.classifyTarget(n.Children[0], n.Children[1:])
	case tsAugmentedAssignment, tsUpdate:
		for _, child := range n.Children {
			if base := baseVariable(child); base != nil {
				w.Updates[base] = true

				return
			}
		}
	case tsForeach:
		// foreach (iterable as key => value) body
		if len(n.Children) < 3 {
			return
		}

		for _, binding := range n.Children[1 : len(n.Children)-1] {
			w.markPlain(variablesIn(binding))
		}
	case tsCatch, tsGlobal, tsStatic:
		for _, child := range n.Children {
			if child.Kind == node.KindVariable {
				w.Plain[child] = true
			} else if child.Kind == node.KindUnknown {
				// static_variable_declaration: the first variable is bound.
				if vars := variablesIn(child); len(vars) > 0 {
					w.Plain[vars[0]] = true
				}
			}
		}
	}
}

func (w Writes) classifyTarget(target *node.Node, value []*node.Node) {
	switch {
	case target.Kind == node.KindVariable:
		if readsName(value, target.Name) {
			w.Updates[target] = true
		} else {
			w.Plain[target] = true
		}
	case target.Type == tsListLiteral || target.Type == tsArrayCreation:
		w.markPlain(variablesIn(target))
	default:
		// $a[] = 1 and $a['k'] = 1 modify an array held by value.
		if target.Kind == node.KindIndex {
			if base := baseVariable(target); base != nil {
				w.Updates[base] = true
			}
		}
	}
}

func (w Writes) markPlain(vars []*node.Node) {
	for _, v := range vars {
		w.Plain[v] = true
	}
}

// baseVariable returns the variable at the root of a variable or subscript chain.
func baseVariable(n *node.Node) *node.Node {
	for n != nil {
		switch n.Kind {
		case node.KindVariable:
			return n
		case node.KindIndex:
			if len(n.Children) == 0 {
				return nil
			}

			n = n.Children[0]
		default:
			return nil
		}
	}

	return nil
}

func readsName(nodes []*node.Node, name string) bool {
	for _, n := range nodes {
		if len(n.Find(func(c *node.Node) bool { return c.Kind == node.KindVariable && c.Name == name })) > 0 {
			return true
		}
	}

	return false
}
