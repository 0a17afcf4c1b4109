package refactor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/phprefactor/pkg/uast"
	"github.com/Sumatoshi-tech/phprefactor/pkg/uast/pkg/node"
)

const testFile = "test.php"

func parseTree(t *testing.T, src string) *node.Tree {
	t.Helper()

	parser, err := uast.NewParser()
	require.NoError(t, err)

	tree, err := parser.Parse(context.Background(), testFile, []byte(src))
	require.NoError(t, err)

	return tree
}

func nodesOfKind(root *node.Node, kind node.Kind) []*node.Node {
	return root.Find(func(n *node.Node) bool { return n.Kind == kind })
}

func onlyNode(t *testing.T, root *node.Node, kind node.Kind) *node.Node {
	t.Helper()

	found := nodesOfKind(root, kind)
	require.Len(t, found, 1, "expected exactly one %s", kind)

	return found[0]
}
