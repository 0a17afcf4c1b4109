// Package refactor implements scope-aware PHP refactorings over the program
// tree: renaming a variable within its scope, extracting an expression into a
// variable, and extracting statements into a function or method.
package refactor

import "github.com/Sumatoshi-tech/phprefactor/pkg/uast/pkg/node"

// FindBestExpression returns the largest expression overlapping rng and the
// innermost statement enclosing it when it was selected. Variables and
// assignments are never returned as the expression. Either result may be nil.
//
// A single-line range overlaps every expression starting on that line; columns
// are not compared. A multi-line range overlaps every expression whose lines
// intersect it.
func FindBestExpression(root *node.Node, rng Range) (expr, stmt *node.Node) {
	if root == nil {
		return nil, nil
	}

	m := &spanMatcher{rng: rng}
	m.walk(root)

	return m.best, m.bestStmt
}

type spanMatcher struct {
	best     *node.Node
	bestStmt *node.Node
	// statements holds enclosing statements, innermost last. A nil entry marks
	// a scope boundary: statements outside a function body do not enclose
	// expressions inside it.
	statements []*node.Node
	rng        Range
}

func (m *spanMatcher) walk(n *node.Node) {
	if n.Kind.IsStatement() {
		m.statements = append(m.statements, n)
		defer m.pop()
	}

	if n.Kind.IsMatchCandidate() && m.overlaps(n) && (m.best == nil || isBetterMatch(n, m.best)) {
		m.best = n
		m.bestStmt = m.top()
	}

	if n.Kind.IsScope() {
		m.statements = append(m.statements, nil)
		defer m.pop()
	}

	for _, child := range n.Children {
		m.walk(child)
	}
}

func (m *spanMatcher) pop() {
	m.statements = m.statements[:len(m.statements)-1]
}

func (m *spanMatcher) top() *node.Node {
	if len(m.statements) == 0 {
		return nil
	}

	return m.statements[len(m.statements)-1]
}

func (m *spanMatcher) overlaps(n *node.Node) bool {
	if n.Pos == nil {
		return false
	}

	if m.rng.IsSingleLine() {
		return n.Pos.StartLine == m.rng.StartLine
	}

	return n.Pos.StartLine <= m.rng.EndLine && n.Pos.EndLine >= m.rng.StartLine
}

// isBetterMatch reports whether candidate should replace best: it must span
// strictly more bytes. A candidate without offsets never wins; one with
// offsets always beats a best without them.
func isBetterMatch(candidate, best *node.Node) bool {
	candidateLen, candidateOK := candidate.SpanLength()
	if !candidateOK {
		return false
	}

	bestLen, bestOK := best.SpanLength()
	if !bestOK {
		return true
	}

	return candidateLen > bestLen
}
