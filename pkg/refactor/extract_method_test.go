package refactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/phprefactor/pkg/uast"
)

const reportSource = `<?php
function report($items) {
    $total = 0;
    foreach ($items as $item) {
        $total += $item;
    }
    echo $total;
}
`

func TestExtractMethod_FromFunction(t *testing.T) {
	t.Parallel()

	want := `<?php
function report($items) {
    $total = 0;
    $total = sumItems($items, $total);
    echo $total;
}

function sumItems($items, $total)
{
    foreach ($items as $item) {
        $total += $item;
    }
    return $total;
}
`

	tree := parseTree(t, reportSource)

	extraction, err := ExtractMethod(tree, 4, 6, "sumItems")
	require.NoError(t, err)

	assert.Equal(t, &Extraction{
		Name:    "sumItems",
		Params:  []string{"items", "total"},
		Returns: []string{"total"},
	}, extraction)
	assert.Equal(t, want, uast.Print(tree))
}

func TestExtractMethod_FromMethod(t *testing.T) {
	t.Parallel()

	src := `<?php
class Cart
{
    private array $prices = [];

    public function total(): int
    {
        $sum = 0;
        foreach ($this->prices as $price) {
            $sum += $price;
        }
        return $sum;
    }
}
`
	want := `<?php
class Cart
{
    private array $prices = [];

    public function total(): int
    {
        $sum = 0;
        $sum = $this->sumPrices($sum);
        return $sum;
    }

    private function sumPrices($sum)
    {
        foreach ($this->prices as $price) {
            $sum += $price;
        }
        return $sum;
    }
}
`

	tree := parseTree(t, src)

	extraction, err := ExtractMethod(tree, 9, 11, "sumPrices")
	require.NoError(t, err)

	assert.True(t, extraction.Method)
	assert.False(t, extraction.Static)
	assert.Equal(t, []string{"sum"}, extraction.Params, "$this is never a parameter")
	assert.Equal(t, want, uast.Print(tree))
}

func TestExtractMethod_FromStaticMethod(t *testing.T) {
	t.Parallel()

	src := `<?php
class M
{
    public static function run($n)
    {
        $n = $n * 2;
        echo $n;
    }
}
`
	want := `<?php
class M
{
    public static function run($n)
    {
        $n = self::twice($n);
        echo $n;
    }

    private static function twice($n)
    {
        $n = $n * 2;
        return $n;
    }
}
`

	tree := parseTree(t, src)

	extraction, err := ExtractMethod(tree, 6, 6, "twice")
	require.NoError(t, err)

	assert.True(t, extraction.Static)
	assert.Equal(t, want, uast.Print(tree))
}

func TestExtractMethod_TopLevel(t *testing.T) {
	t.Parallel()

	tree := parseTree(t, "<?php\n$a = 1;\n$b = $a * 2;\necho $b;\n")

	extraction, err := ExtractMethod(tree, 3, 3, "computeB")
	require.NoError(t, err)

	assert.False(t, extraction.Method)
	assert.Equal(t, []string{"a"}, extraction.Params)
	assert.Equal(t, []string{"b"}, extraction.Returns)
	assert.Equal(t,
		"<?php\n$a = 1;\n$b = computeB($a);\necho $b;\n\nfunction computeB($a)\n{\n    $b = $a * 2;\n    return $b;\n}\n",
		uast.Print(tree))
}

func TestExtractMethod_MultipleReturns(t *testing.T) {
	t.Parallel()

	src := `<?php
function f($x) {
    $a = $x + 1;
    $b = $x + 2;
    return $a + $b;
}
`
	want := `<?php
function f($x) {
    [$a, $b] = pair($x);
    return $a + $b;
}

function pair($x)
{
    $a = $x + 1;
    $b = $x + 2;
    return [$a, $b];
}
`

	tree := parseTree(t, src)

	extraction, err := ExtractMethod(tree, 3, 4, "pair")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, extraction.Returns)
	assert.Equal(t, want, uast.Print(tree))
}

func TestExtractMethod_SuperglobalsAreNotParameters(t *testing.T) {
	t.Parallel()

	src := "<?php\nfunction h() {\n    $all = $_GET;\n    $id = $_GET['id'];\n    echo $id . count($all);\n}\n"

	tree := parseTree(t, src)

	extraction, err := ExtractMethod(tree, 4, 4, "readId")
	require.NoError(t, err)

	assert.Empty(t, extraction.Params)
	assert.Equal(t, []string{"id"}, extraction.Returns)
}

func TestExtractMethod_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		src       string
		startLine uint
		endLine   uint
		funcName  string
		kind      ErrorKind
		sentinel  error
	}{
		{
			name: "selection splits a statement", src: reportSource,
			startLine: 6, endLine: 7, funcName: "x", kind: InputError, sentinel: ErrPartialSelection,
		},
		{
			name: "no statements selected", src: reportSource,
			startLine: 1, endLine: 1, funcName: "x", kind: NotFoundError, sentinel: ErrEmptySelection,
		},
		{
			name: "inverted lines", src: reportSource,
			startLine: 5, endLine: 4, funcName: "x", kind: InputError, sentinel: ErrInvalidRange,
		},
		{
			name: "invalid function name", src: reportSource,
			startLine: 4, endLine: 6, funcName: "1x", kind: InputError, sentinel: ErrInvalidName,
		},
		{
			name: "inside a closure", src: "<?php\n$f = function ($x) {\n    $y = $x * 2;\n    echo $y;\n};\n",
			startLine: 3, endLine: 3, funcName: "x", kind: InputError, sentinel: ErrClosureScope,
		},
		{
			name: "return leaves the selection", src: "<?php\nfunction f($x) {\n    $a = $x + 1;\n    return $a;\n}\n",
			startLine: 3, endLine: 4, funcName: "x", kind: InputError, sentinel: ErrControlFlow,
		},
		{
			name: "break without its loop",
			src:  "<?php\nforeach ($xs as $x) {\n    if ($x) {\n        break;\n    }\n}\n",
			startLine: 3, endLine: 5, funcName: "x", kind: InputError, sentinel: ErrControlFlow,
		},
		{
			name: "declaration in selection", src: "<?php\nfunction a() {}\n$x = 1;\n",
			startLine: 2, endLine: 3, funcName: "x", kind: InputError, sentinel: ErrDeclaration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tree := parseTree(t, tt.src)

			_, err := ExtractMethod(tree, tt.startLine, tt.endLine, tt.funcName)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Equal(t, tt.src, uast.Print(tree))
		})
	}
}

func TestExtractMethod_LoopWithBreak(t *testing.T) {
	t.Parallel()

	src := "<?php\nforeach ($xs as $x) {\n    if ($x) {\n        break;\n    }\n}\n"

	tree := parseTree(t, src)

	extraction, err := ExtractMethod(tree, 2, 6, "scan")
	require.NoError(t, err)
	assert.Empty(t, extraction.Params)
	assert.Empty(t, extraction.Returns)
}
