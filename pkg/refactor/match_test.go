package refactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/phprefactor/pkg/uast/pkg/node"
)

func TestFindBestExpression_PrefersLargestOverlap(t *testing.T) {
	t.Parallel()

	tree := parseTree(t, "<?php\n$x = 1 + 2;\n")

	expr, stmt := FindBestExpression(tree.Root, LineRange(2, 2))
	require.NotNil(t, expr)
	assert.Equal(t, node.KindBinaryOp, expr.Kind)
	assert.Equal(t, "1 + 2", tree.SourceText(expr))

	require.NotNil(t, stmt)
	assert.Equal(t, node.KindExpressionStatement, stmt.Kind)
	assert.Equal(t, "$x = 1 + 2;", tree.SourceText(stmt))
}

func TestFindBestExpression_SkipsAssignmentsAndVariables(t *testing.T) {
	t.Parallel()

	tree := parseTree(t, "<?php\n$x = foo();\n")

	expr, _ := FindBestExpression(tree.Root, Range{StartLine: 2, StartCol: 1, EndLine: 2, EndCol: 3})
	require.NotNil(t, expr)
	assert.Equal(t, node.KindCall, expr.Kind)
	assert.Equal(t, "foo()", tree.SourceText(expr))
}

func TestFindBestExpression_NoOverlap(t *testing.T) {
	t.Parallel()

	tree := parseTree(t, "<?php\n$x = 1;\n\n$y = 2;\n")

	expr, stmt := FindBestExpression(tree.Root, LineRange(3, 3))
	assert.Nil(t, expr)
	assert.Nil(t, stmt)

	expr, stmt = FindBestExpression(nil, LineRange(1, 1))
	assert.Nil(t, expr)
	assert.Nil(t, stmt)
}

func TestFindBestExpression_MultiLineRange(t *testing.T) {
	t.Parallel()

	src := "<?php\n$total = compute(\n    $a,\n    $b\n) + 1;\n"
	tree := parseTree(t, src)

	expr, stmt := FindBestExpression(tree.Root, LineRange(3, 4))
	require.NotNil(t, expr)
	assert.Equal(t, node.KindBinaryOp, expr.Kind)
	assert.Equal(t, "compute(\n    $a,\n    $b\n) + 1", tree.SourceText(expr))
	require.NotNil(t, stmt)
	assert.Equal(t, uint(2), stmt.StartLine())
}

func TestFindBestExpression_StatementOutsideArrowFunction(t *testing.T) {
	t.Parallel()

	tree := parseTree(t, "<?php\n$f = fn($x) =>\n    $x * 2;\n")

	expr, stmt := FindBestExpression(tree.Root, LineRange(3, 3))
	require.NotNil(t, expr)
	assert.Equal(t, "$x * 2", tree.SourceText(expr))
	assert.Nil(t, stmt, "statements outside the arrow function do not enclose its body")
}

func TestFindBestExpression_InnermostStatement(t *testing.T) {
	t.Parallel()

	src := "<?php\nif ($ready) {\n    echo strtoupper($name);\n}\n"
	tree := parseTree(t, src)

	expr, stmt := FindBestExpression(tree.Root, LineRange(3, 3))
	require.NotNil(t, expr)
	assert.Equal(t, "strtoupper($name)", tree.SourceText(expr))
	require.NotNil(t, stmt)
	assert.Equal(t, node.KindEcho, stmt.Kind)
}

func TestIsBetterMatch(t *testing.T) {
	t.Parallel()

	short := node.New(node.KindLiteral, "integer", node.NewPositions(1, 1, 10, 1, 2, 11))
	long := node.New(node.KindBinaryOp, "binary_expression", node.NewPositions(1, 1, 10, 1, 6, 15))
	same := node.New(node.KindCall, "function_call_expression", node.NewPositions(1, 1, 20, 1, 6, 25))
	unpositioned := node.New(node.KindCall, "function_call_expression", nil)

	tests := []struct {
		name      string
		candidate *node.Node
		best      *node.Node
		want      bool
	}{
		{"larger wins", long, short, true},
		{"smaller loses", short, long, false},
		{"equal length keeps first", same, long, false},
		{"candidate without position never wins", unpositioned, short, false},
		{"best without position always loses", short, unpositioned, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, isBetterMatch(tt.candidate, tt.best))
		})
	}
}
