package lsp

import (
	"context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/Sumatoshi-tech/phprefactor/pkg/refactor"
	"github.com/Sumatoshi-tech/phprefactor/pkg/uast/pkg/node"
)

// renamePlaceholder is the prepareRename result naming the current value.
type renamePlaceholder struct {
	Range       protocol.Range `json:"range"`
	Placeholder string         `json:"placeholder"`
}

// variableAt returns the variable node whose span contains the byte offset.
func variableAt(root *node.Node, offset int) *node.Node {
	var found *node.Node

	root.VisitPreOrder(func(n *node.Node) {
		if n.Kind != node.KindVariable || n.Pos == nil {
			return
		}

		if int(n.Pos.StartOffset) <= offset && offset <= int(n.Pos.EndOffset) {
			found = n
		}
	})

	return found
}

func (srv *Server) variableAtPosition(uri string, pos protocol.Position) (string, *node.Node, error) {
	text, err := srv.document(uri)
	if err != nil {
		return "", nil, err
	}

	tree, err := srv.engine.Parse(context.Background(), filename(uri), []byte(text))
	if err != nil {
		return "", nil, err
	}

	variable := variableAt(tree.Root, offsetAt(text, pos))
	if variable == nil {
		return "", nil, ErrNoVariable
	}

	return text, variable, nil
}

// prepareRename returns the range of the variable name under the cursor,
// without its sigil.
func (srv *Server) prepareRename(_ *glsp.Context, params *protocol.PrepareRenameParams) (any, error) {
	text, variable, err := srv.variableAtPosition(params.TextDocument.URI, params.Position)
	if err != nil {
		return nil, err
	}

	start := int(variable.Pos.StartOffset)
	if start < len(text) && text[start] == '$' {
		start++
	}

	return renamePlaceholder{
		Range: protocol.Range{
			Start: positionAt(text, start),
			End:   positionAt(text, int(variable.Pos.EndOffset)),
		},
		Placeholder: variable.Name,
	}, nil
}

// rename renames the variable under the cursor within its scope.
func (srv *Server) rename(_ *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	uri := params.TextDocument.URI

	text, variable, err := srv.variableAtPosition(uri, params.Position)
	if err != nil {
		return nil, err
	}

	result := srv.engine.RenameVariable(context.Background(), refactor.RenameRequest{
		File:    filename(uri),
		Source:  []byte(text),
		Line:    variable.StartLine(),
		OldName: variable.Name,
		NewName: params.NewName,
	})
	if err := resultError(result); err != nil {
		return nil, err
	}

	return wholeDocumentEdit(uri, text, result.Code), nil
}
