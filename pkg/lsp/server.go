// Package lsp provides a Language Server Protocol server offering the
// phprefactor refactorings as rename and extract code actions for PHP files.
package lsp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/Sumatoshi-tech/phprefactor/pkg/refactor"
)

const (
	serverName = "phprefactor"

	methodPublishDiagnostics = "textDocument/publishDiagnostics"
)

// Code action kinds offered by the server.
const (
	CodeActionExtractVariable protocol.CodeActionKind = "refactor.extract.variable"
	CodeActionExtractFunction protocol.CodeActionKind = "refactor.extract.function"
)

// Names given to extracted code; the user renames them afterwards.
const (
	DefaultVariableName = "extracted"
	DefaultFunctionName = "extracted"
)

// Sentinel errors returned to the client.
var (
	ErrUnknownDocument = errors.New("document is not open")
	ErrNoVariable      = errors.New("no variable at this position")
)

// Server implements the PHP refactoring LSP server.
type Server struct {
	store   *DocumentStore
	engine  *refactor.Engine
	logger  *slog.Logger
	version string
	handler protocol.Handler
}

// NewServer creates a new LSP server backed by engine.
func NewServer(engine *refactor.Engine, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	srv := &Server{store: NewDocumentStore(), engine: engine, logger: logger, version: version}

	srv.handler = protocol.Handler{
		Initialize:                srv.initialize,
		Initialized:               srv.initialized,
		Shutdown:                  srv.shutdown,
		SetTrace:                  srv.setTrace,
		TextDocumentDidOpen:       srv.didOpen,
		TextDocumentDidChange:     srv.didChange,
		TextDocumentDidSave:       srv.didSave,
		TextDocumentDidClose:      srv.didClose,
		TextDocumentPrepareRename: srv.prepareRename,
		TextDocumentRename:        srv.rename,
		TextDocumentCodeAction:    srv.codeAction,
	}

	return srv
}

// Run starts the LSP server on stdio.
func (srv *Server) Run() error {
	lspServer := server.NewServer(&srv.handler, serverName, false)

	if err := lspServer.RunStdio(); err != nil {
		return fmt.Errorf("lsp server: %w", err)
	}

	return nil
}

func (srv *Server) initialize(_ *glsp.Context, _ *protocol.InitializeParams) (any, error) {
	capabilities := srv.handler.CreateServerCapabilities()

	openClose := true
	full := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = protocol.TextDocumentSyncOptions{OpenClose: &openClose, Change: &full}

	prepare := true
	capabilities.RenameProvider = protocol.RenameOptions{PrepareProvider: &prepare}
	capabilities.CodeActionProvider = protocol.CodeActionOptions{
		CodeActionKinds: []protocol.CodeActionKind{CodeActionExtractVariable, CodeActionExtractFunction},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &srv.version,
		},
	}, nil
}

func (srv *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (srv *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)

	return nil
}

func (srv *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	return nil
}

func (srv *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI

	srv.store.Set(uri, params.TextDocument.Text)
	srv.publishDiagnostics(ctx, uri)

	return nil
}

func (srv *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	text, _ := srv.store.Get(uri)

	for _, change := range params.ContentChanges {
		switch event := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = event.Text
		case protocol.TextDocumentContentChangeEvent:
			text = applyChange(text, event)
		}
	}

	srv.store.Set(uri, text)
	srv.publishDiagnostics(ctx, uri)

	return nil
}

func applyChange(text string, event protocol.TextDocumentContentChangeEvent) string {
	if event.Range == nil {
		return event.Text
	}

	start, end := offsetAt(text, event.Range.Start), offsetAt(text, event.Range.End)
	if end < start {
		start, end = end, start
	}

	return text[:start] + event.Text + text[end:]
}

func (srv *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI

	if params.Text != nil {
		srv.store.Set(uri, *params.Text)
	}

	if _, ok := srv.store.Get(uri); ok {
		srv.publishDiagnostics(ctx, uri)
	}

	return nil
}

func (srv *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	srv.store.Delete(uri)

	ctx.Notify(methodPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})

	return nil
}

// publishDiagnostics reports the first syntax error of the document, since
// refactorings are refused until the file parses.
func (srv *Server) publishDiagnostics(ctx *glsp.Context, uri string) {
	text, ok := srv.store.Get(uri)
	if !ok {
		return
	}

	diagnostics := []protocol.Diagnostic{}

	if _, err := srv.engine.Parse(context.Background(), filename(uri), []byte(text)); err != nil {
		diagnostics = append(diagnostics, diagnosticFor(text, err))
	}

	ctx.Notify(methodPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func (srv *Server) document(uri string) (string, error) {
	text, ok := srv.store.Get(uri)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}

	return text, nil
}

// wholeDocumentEdit replaces the document at uri with code.
func wholeDocumentEdit(uri, original, code string) *protocol.WorkspaceEdit {
	return &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentUri][]protocol.TextEdit{
			uri: {{Range: wholeDocument(original), NewText: code}},
		},
	}
}

func resultError(result refactor.Result) error {
	if result.Success {
		return nil
	}

	return errors.New(result.Error) //nolint:err113 // the engine already formatted the failure.
}
