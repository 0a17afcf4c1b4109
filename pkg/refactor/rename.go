package refactor

import (
	"github.com/Sumatoshi-tech/phprefactor/pkg/levenshtein"
	"github.com/Sumatoshi-tech/phprefactor/pkg/textutil"
	"github.com/Sumatoshi-tech/phprefactor/pkg/uast"
	"github.com/Sumatoshi-tech/phprefactor/pkg/uast/pkg/node"
)

// RenameBinding renames every occurrence of the variable oldName that belongs
// to boundary and returns how many were renamed. A nil boundary means top
// level. Names may carry a leading "$".
//
// Nested named functions and methods are never entered. A nested closure is
// entered only when its use clause captures the variable, and an arrow
// function only when none of its parameters redeclares it.
func RenameBinding(root *node.Node, oldName, newName string, boundary *node.Node) int {
	if root == nil {
		return 0
	}

	oldName = NormalizeName(oldName)
	newName = NormalizeName(newName)

	renamed := 0

	VisitScopeVariables(root, boundary, func(v *node.Node) {
		if v.Name != oldName {
			return
		}

		v.Name = newName
		renamed++
	})

	return renamed
}

// CountOccurrences returns how many occurrences of name belong to boundary.
func CountOccurrences(root *node.Node, name string, boundary *node.Node) int {
	name = NormalizeName(name)
	count := 0

	VisitScopeVariables(root, boundary, func(v *node.Node) {
		if v.Name == name {
			count++
		}
	})

	return count
}

// VisitScopeVariables calls fn, in source order, for every variable occurrence
// that refers to a binding of boundary (nil for top level).
func VisitScopeVariables(root, boundary *node.Node, fn func(v *node.Node)) {
	if root == nil {
		return
	}

	w := &bindingWalker{boundary: boundary, visit: fn}

	if boundary == nil {
		w.walkTopLevel(root, 0, acceptAll)
	} else {
		w.walkBounded(root, false, acceptAll)
	}
}

// visibleNames reports whether a variable name, seen inside a nested anonymous
// scope, still refers to the enclosing scope's binding.
type visibleNames func(name string) bool

func acceptAll(string) bool { return true }

type bindingWalker struct {
	boundary *node.Node
	visit    func(*node.Node)
}

// walkBounded raises inTarget on entering the boundary. The flag is a
// parameter, so it drops again when the walk returns from the boundary.
func (w *bindingWalker) walkBounded(n *node.Node, inTarget bool, visible visibleNames) {
	switch {
	case n == w.boundary:
		inTarget = true
	case inTarget && n.Kind.IsScope():
		nested, entered := nestedVisibility(n, visible)
		if !entered {
			return
		}

		visible = nested
	}

	if inTarget {
		w.emit(n, visible)
	}

	for _, child := range n.Children {
		w.walkBounded(child, inTarget, visible)
	}
}

// walkTopLevel counts scope depth; only depth zero is top level. An anonymous
// scope that shares top-level variables is walked at depth zero with the
// narrowed name filter.
func (w *bindingWalker) walkTopLevel(n *node.Node, depth int, visible visibleNames) {
	if n.Kind.IsScope() {
		nested, entered := nestedVisibility(n, visible)
		if depth > 0 || !entered {
			depth++
		} else {
			visible = nested
		}
	}

	if depth == 0 {
		w.emit(n, visible)
	}

	for _, child := range n.Children {
		w.walkTopLevel(child, depth, visible)
	}
}

func (w *bindingWalker) emit(n *node.Node, visible visibleNames) {
	if n.Kind == node.KindVariable && visible(n.Name) {
		w.visit(n)
	}
}

// nestedVisibility decides whether a scope nested inside the target shares any
// of its variables. Closures share exactly what their use clause captures;
// arrow functions share everything their parameters do not shadow; named
// functions and methods share nothing.
func nestedVisibility(scope *node.Node, outer visibleNames) (visibleNames, bool) {
	switch scope.Kind {
	case node.KindClosure:
		captured := variableNames(uast.CapturedVariables(scope))
		if len(captured) == 0 {
			return nil, false
		}

		return func(name string) bool { return captured[name] && outer(name) }, true
	case node.KindArrowFunction:
		params := variableNames(uast.ScopeParameters(scope))

		return func(name string) bool { return !params[name] && outer(name) }, true
	default:
		return nil, false
	}
}

func variableNames(vars []*node.Node) map[string]bool {
	names := make(map[string]bool, len(vars))

	for _, v := range vars {
		names[v.Name] = true
	}

	return names
}

// RenameVariable renames the variable oldName to newName within the scope
// enclosing line and returns the number of renamed occurrences. Renaming a
// variable to its own name succeeds without changes when it exists.
func RenameVariable(tree *node.Tree, line uint, oldName, newName string) (int, error) {
	const op = "rename-variable"

	if line == 0 || line > uint(textutil.CountLines(tree.Source)) {
		return 0, errorf(InputError, op, ErrInvalidLine, "%d", line)
	}

	oldName, err := ValidateVariableName(oldName)
	if err != nil {
		return 0, newError(InputError, op, err)
	}

	newName, err = ValidateVariableName(newName)
	if err != nil {
		return 0, newError(InputError, op, err)
	}

	scope := bindingScope(tree.Root, FindScope(tree.Root, line), oldName)

	if oldName == newName {
		if CountOccurrences(tree.Root, oldName, scope) == 0 {
			return 0, notFound(op, tree.Root, scope, oldName)
		}

		return 0, nil
	}

	renamed := RenameBinding(tree.Root, oldName, newName, scope)
	if renamed == 0 {
		return 0, notFound(op, tree.Root, scope, oldName)
	}

	return renamed, nil
}

// bindingScope lifts an anonymous scope that shares name with its enclosing
// scope, through a use clause or an arrow function's implicit capture, until it
// reaches the scope owning the binding.
func bindingScope(root, scope *node.Node, name string) *node.Node {
	name = NormalizeName(name)

	for scope != nil && sharesWithEnclosing(scope, name) {
		scope = outerScope(root, scope)
	}

	return scope
}

func sharesWithEnclosing(scope *node.Node, name string) bool {
	switch scope.Kind {
	case node.KindClosure:
		return variableNames(uast.CapturedVariables(scope))[name]
	case node.KindArrowFunction:
		return !variableNames(uast.ScopeParameters(scope))[name]
	default:
		return false
	}
}

// outerScope returns the innermost scope strictly containing scope, or nil
// for top level.
func outerScope(root, scope *node.Node) *node.Node {
	var found *node.Node

	var walk func(n, current *node.Node) bool

	walk = func(n, current *node.Node) bool {
		if n == scope {
			found = current

			return true
		}

		if n.Kind.IsScope() {
			current = n
		}

		for _, child := range n.Children {
			if walk(child, current) {
				return true
			}
		}

		return false
	}

	walk(root, nil)

	return found
}

// notFound reports a missing variable, naming the closest variable of the
// scope when one is a plausible typo.
func notFound(op string, root, scope *node.Node, name string) error {
	maxDistance := max(1, len(name)/3)

	if suggestion, ok := levenshtein.Closest(name, scopeVariableNames(root, scope), maxDistance); ok {
		return errorf(NotFoundError, op, ErrNoOccurrence, "$%s in %s (did you mean $%s?)",
			name, ScopeName(scope), suggestion)
	}

	return errorf(NotFoundError, op, ErrNoOccurrence, "$%s in %s", name, ScopeName(scope))
}
