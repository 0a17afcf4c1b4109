package refactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/phprefactor/pkg/uast"
	"github.com/Sumatoshi-tech/phprefactor/pkg/uast/pkg/node"
)

func TestExtractVariable_Simple(t *testing.T) {
	t.Parallel()

	tree := parseTree(t, "<?php\nfunction f() {\n    $x = 1 + 2;\n}\n")

	replaced, err := ExtractVariable(tree, LineRange(3, 3), "sum")
	require.NoError(t, err)

	assert.Equal(t, 1, replaced)
	assert.Equal(t, "<?php\nfunction f() {\n    $sum = 1 + 2;\n    $x = $sum;\n}\n", uast.Print(tree))
}

func TestExtractVariable_ReplacesEveryOccurrenceInStatement(t *testing.T) {
	t.Parallel()

	src := `<?php
function f($a) {
    $data = [
        'x' => strlen($a) * 2,
        'y' => strlen($a) * 2,
    ];
    return strlen($a) * 2;
}
`
	want := `<?php
function f($a) {
    $double = strlen($a) * 2;
    $data = [
        'x' => $double,
        'y' => $double,
    ];
    return strlen($a) * 2;
}
`

	tree := parseTree(t, src)

	replaced, err := ExtractVariable(tree, LineRange(4, 4), "$double")
	require.NoError(t, err)

	assert.Equal(t, 2, replaced)
	assert.Equal(t, want, uast.Print(tree))
}

func TestExtractVariable_StatementSharingLine(t *testing.T) {
	t.Parallel()

	tree := parseTree(t, "<?php\n$a = 1; $b = $a * 3;\n")

	replaced, err := ExtractVariable(tree, Range{StartLine: 2, EndLine: 2}, "t")
	require.NoError(t, err)

	assert.Equal(t, 1, replaced)
	assert.Equal(t, "<?php\n$a = 1; $t = $a * 3; $b = $t;\n", uast.Print(tree))
}

func TestExtractVariable_TopLevelCall(t *testing.T) {
	t.Parallel()

	tree := parseTree(t, "<?php\necho strtoupper(trim($name));\n")

	replaced, err := ExtractVariable(tree, LineRange(2, 2), "upper")
	require.NoError(t, err)

	assert.Equal(t, 1, replaced)
	assert.Equal(t, "<?php\n$upper = strtoupper(trim($name));\necho $upper;\n", uast.Print(tree))
}

func TestExtractVariable_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		rng      Range
		varName  string
		kind     ErrorKind
		sentinel error
	}{
		{
			name: "no expression on line", src: "<?php\n$x = 1;\n\n$y = 2;\n",
			rng: LineRange(3, 3), varName: "v", kind: NotFoundError, sentinel: ErrNoExpression,
		},
		{
			name: "inverted range", src: "<?php\n$x = 1;\n",
			rng: LineRange(3, 2), varName: "v", kind: InputError, sentinel: ErrInvalidRange,
		},
		{
			name: "zero line", src: "<?php\n$x = 1;\n",
			rng: LineRange(0, 2), varName: "v", kind: InputError, sentinel: ErrInvalidRange,
		},
		{
			name: "invalid name", src: "<?php\n$x = 1 + 2;\n",
			rng: LineRange(2, 2), varName: "9lives", kind: InputError, sentinel: ErrInvalidName,
		},
		{
			name: "reserved name", src: "<?php\n$x = 1 + 2;\n",
			rng: LineRange(2, 2), varName: "$this", kind: InputError, sentinel: ErrReservedName,
		},
		{
			name: "arrow function body has no statement", src: "<?php\n$f = fn($x) =>\n    $x * 2;\n",
			rng: LineRange(3, 3), varName: "v", kind: NotFoundError, sentinel: ErrNoStatement,
		},
		{
			name: "assignment target only", src: "<?php\n$items[count($items)] = 1;\n",
			rng: LineRange(2, 2), varName: "v", kind: InputError, sentinel: ErrAssignmentTarget,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tree := parseTree(t, tt.src)

			_, err := ExtractVariable(tree, tt.rng, tt.varName)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Equal(t, tt.src, uast.Print(tree))
		})
	}
}

func TestReplaceMatchingExpressions_SkipsNestedScopes(t *testing.T) {
	t.Parallel()

	tree := parseTree(t, "<?php\n$r = max(1, 2) + (function () { return max(1, 2); })();\n")
	stmt := nodesOfKind(tree.Root, node.KindExpressionStatement)[0]

	assert.Equal(t, 1, ReplaceMatchingExpressions(tree, stmt, "max(1, 2)", "$m"))
	assert.Zero(t, ReplaceMatchingExpressions(tree, nil, "max(1, 2)", "$m"))
	assert.Zero(t, ReplaceMatchingExpressions(tree, stmt, "", "$m"))
	assert.Equal(t, "<?php\n$r = $m + (function () { return max(1, 2); })();\n", uast.Print(tree))
}

func TestInsertBefore_RequiresStatementList(t *testing.T) {
	t.Parallel()

	tree := parseTree(t, "<?php\n$x = 1 + 2;\n")
	binary := onlyNode(t, tree.Root, node.KindBinaryOp)

	err := InsertBefore(tree.Root, binary, node.NewSynthetic("$y = 0;", nil))
	assert.ErrorIs(t, err, ErrNoStatementList)
}
