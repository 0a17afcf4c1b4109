package refactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/phprefactor/pkg/uast/pkg/node"
)

const scopeSource = `<?php
$top = 1;
function outer($a) {
    $b = $a;
    $c = function ($d) use ($b) {
        return $d + $b;
    };
    $e = fn($f) => $f * 2;
    return $c($b);
}
class K {
    public function m() {
        return 1;
    }
}
$g = function () { return 2; }; $h = 3;
`

func TestFindScope(t *testing.T) {
	t.Parallel()

	tree := parseTree(t, scopeSource)

	tests := []struct {
		name     string
		line     uint
		wantKind node.Kind
		wantName string
		topLevel bool
	}{
		{name: "top level statement", line: 2, topLevel: true},
		{name: "function signature", line: 3, wantKind: node.KindFunction, wantName: "outer"},
		{name: "function body", line: 4, wantKind: node.KindFunction, wantName: "outer"},
		{name: "closure header", line: 5, wantKind: node.KindClosure},
		{name: "closure body", line: 6, wantKind: node.KindClosure},
		{name: "arrow function", line: 8, wantKind: node.KindArrowFunction},
		{name: "after nested scopes", line: 9, wantKind: node.KindFunction, wantName: "outer"},
		{name: "class body outside methods", line: 11, topLevel: true},
		{name: "method body", line: 13, wantKind: node.KindMethod, wantName: "m"},
		{name: "closure sharing a line", line: 16, wantKind: node.KindClosure},
		{name: "past the end", line: 100, topLevel: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			scope := FindScope(tree.Root, tt.line)
			if tt.topLevel {
				assert.Nil(t, scope)

				return
			}

			require.NotNil(t, scope)
			assert.Equal(t, tt.wantKind, scope.Kind)
			assert.Equal(t, tt.wantName, scope.Name)
		})
	}
}

func TestFindScope_NilRoot(t *testing.T) {
	t.Parallel()

	assert.Nil(t, FindScope(nil, 1))
}

func TestScopeName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "top level", ScopeName(nil))
	assert.Equal(t, "Function f", ScopeName(&node.Node{Kind: node.KindFunction, Name: "f"}))
	assert.Equal(t, "Closure", ScopeName(&node.Node{Kind: node.KindClosure}))
}

func TestDescribeScopes(t *testing.T) {
	t.Parallel()

	tree := parseTree(t, scopeSource)
	scopes := DescribeScopes(tree)

	require.Len(t, scopes, 6)

	assert.Equal(t, "TopLevel", scopes[0].Kind)
	assert.Equal(t, []string{"top", "g", "h"}, scopes[0].Variables)

	assert.Equal(t, "Function", scopes[1].Kind)
	assert.Equal(t, "outer", scopes[1].Name)
	assert.Equal(t, 1, scopes[1].Depth)
	assert.Equal(t, []string{"a", "b", "c", "e"}, scopes[1].Variables)

	assert.Equal(t, "Closure", scopes[2].Kind)
	assert.Equal(t, 2, scopes[2].Depth)
	assert.Equal(t, []string{"d", "b"}, scopes[2].Variables)

	assert.Equal(t, "ArrowFunction", scopes[3].Kind)
	assert.Equal(t, []string{"f"}, scopes[3].Variables)

	assert.Equal(t, "Method", scopes[4].Kind)
	assert.Empty(t, scopes[4].Variables)
}
