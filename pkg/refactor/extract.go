package refactor

import (
	"github.com/Sumatoshi-tech/phprefactor/pkg/uast/pkg/node"
)

// InsertBefore inserts decl into the statement list holding stmt, directly in
// front of it.
func InsertBefore(root, stmt, decl *node.Node) error {
	parent := root.Parent(stmt)
	if parent == nil || !parent.Kind.IsStatementList() {
		return ErrNoStatementList
	}

	parent.InsertBefore(stmt, decl)

	return nil
}

// ReplaceMatchingExpressions replaces every expression under stmt whose source
// text equals text with a synthetic node printing replacement, and returns the
// number of replacements. Assignment targets are left alone. Outer expressions
// win over the expressions they contain; nested functions are not searched.
func ReplaceMatchingExpressions(tree *node.Tree, stmt *node.Node, text, replacement string) int {
	if stmt == nil || text == "" {
		return 0
	}

	return replaceMatching(tree, stmt, text, replacement)
}

func replaceMatching(tree *node.Tree, parent *node.Node, text, replacement string) int {
	replaced := 0

	for idx, child := range parent.Children {
		if child.Synthetic {
			continue
		}

		// Assignment targets are written, not read, and keep their text.
		isTarget := parent.Kind.IsAssignment() && idx == 0

		if !isTarget && child.Kind.IsExpression() && child.Kind != node.KindVariable && tree.SourceText(child) == text {
			parent.Children[idx] = node.NewSynthetic(replacement, child.Pos)
			replaced++

			continue
		}

		if child.Kind.IsScope() {
			continue
		}

		replaced += replaceMatching(tree, child, text, replacement)
	}

	return replaced
}

// ExtractVariable introduces a variable holding the expression selected by rng
// and replaces every identical expression in the enclosing statement with it.
// It returns the number of replaced expressions.
func ExtractVariable(tree *node.Tree, rng Range, name string) (int, error) {
	const op = "extract-variable"

	if err := rng.Validate(); err != nil {
		return 0, newError(InputError, op, err)
	}

	name, err := ValidateVariableName(name)
	if err != nil {
		return 0, newError(InputError, op, err)
	}

	expr, stmt := FindBestExpression(tree.Root, rng)
	if expr == nil {
		return 0, errorf(NotFoundError, op, ErrNoExpression, "%s", rng)
	}

	if stmt == nil {
		return 0, errorf(NotFoundError, op, ErrNoStatement, "%s", tree.SourceText(expr))
	}

	parent := tree.Root.Parent(stmt)
	if parent == nil || !parent.Kind.IsStatementList() {
		return 0, newError(InputError, op, ErrNoStatementList)
	}

	exprText := tree.SourceText(expr)
	declaration := "$" + name + " = " + exprText + ";"

	if indent, leading := tree.Indentation(stmt); leading {
		declaration += "\n" + indent
	} else {
		declaration += " "
	}

	replaced := ReplaceMatchingExpressions(tree, stmt, exprText, "$"+name)
	if replaced == 0 {
		return 0, errorf(InputError, op, ErrAssignmentTarget, "%s", exprText)
	}

	if err := InsertBefore(tree.Root, stmt, node.NewSynthetic(declaration, nil)); err != nil {
		return 0, newError(InputError, op, err)
	}

	return replaced, nil
}
