package lsp

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/Sumatoshi-tech/phprefactor/pkg/refactor"
	"github.com/Sumatoshi-tech/phprefactor/pkg/uast"
)

// codeAction offers extract variable and extract function for the selection.
// Only actions whose refactoring succeeds are listed, each carrying its edit.
func (srv *Server) codeAction(_ *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	uri := params.TextDocument.URI

	text, err := srv.document(uri)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	file := filename(uri)
	rng := selectionRange(text, params.Range)
	actions := []protocol.CodeAction{}

	if wants(params.Context.Only, CodeActionExtractVariable) {
		result := srv.engine.ExtractVariable(ctx, refactor.ExtractVariableRequest{
			File: file, Source: []byte(text), Range: rng, Name: DefaultVariableName,
		})
		if result.Success {
			actions = append(actions, action("Extract to variable $"+DefaultVariableName,
				CodeActionExtractVariable, wholeDocumentEdit(uri, text, result.Code)))
		}
	}

	if wants(params.Context.Only, CodeActionExtractFunction) {
		result := srv.engine.ExtractMethod(ctx, refactor.ExtractMethodRequest{
			File: file, Source: []byte(text), StartLine: rng.StartLine, EndLine: rng.EndLine,
			Name: DefaultFunctionName,
		})
		if result.Success {
			title := "Extract to function " + DefaultFunctionName
			if result.Extraction != nil && result.Extraction.Method {
				title = "Extract to method " + DefaultFunctionName
			}

			actions = append(actions, action(title, CodeActionExtractFunction,
				wholeDocumentEdit(uri, text, result.Code)))
		}
	}

	return actions, nil
}

func action(title string, kind protocol.CodeActionKind, edit *protocol.WorkspaceEdit) protocol.CodeAction {
	return protocol.CodeAction{Title: title, Kind: &kind, Edit: edit}
}

// wants reports whether kind passes the client's "only" filter, which
// lists kinds or their parent kinds such as "refactor.extract".
func wants(only []protocol.CodeActionKind, kind protocol.CodeActionKind) bool {
	if len(only) == 0 {
		return true
	}

	return slices.ContainsFunc(only, func(prefix protocol.CodeActionKind) bool {
		return kind == prefix || strings.HasPrefix(string(kind), string(prefix)+".")
	})
}

// selectionRange converts an LSP selection into 1-based engine lines and
// byte columns. A selection ending at the start of a line does not include
// that line.
func selectionRange(text string, sel protocol.Range) refactor.Range {
	end := sel.End
	if end.Character == 0 && end.Line > sel.Start.Line {
		end = positionAt(text, lineOffset(text, int(end.Line))-1)
	}

	return refactor.Range{
		StartLine: uint(sel.Start.Line) + 1,
		StartCol:  byteColumn(text, sel.Start),
		EndLine:   uint(end.Line) + 1,
		EndCol:    byteColumn(text, end),
	}
}

// diagnosticFor turns a parse failure into a diagnostic at the error
// location, or at the start of the document when it has none.
func diagnosticFor(text string, err error) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := serverName

	var pos protocol.Position

	var syntaxErr *uast.SyntaxError
	if errors.As(err, &syntaxErr) && syntaxErr.Line > 0 {
		offset := lineOffset(text, int(syntaxErr.Line)-1) + int(max(syntaxErr.Column, 1)) - 1
		pos = positionAt(text, offset)
	}

	return protocol.Diagnostic{
		Range:    protocol.Range{Start: pos, End: pos},
		Severity: &severity,
		Source:   &source,
		Message:  err.Error(),
	}
}
