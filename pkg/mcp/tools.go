package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/phprefactor/pkg/observability"
	"github.com/Sumatoshi-tech/phprefactor/pkg/refactor"
)

// Tool name constants.
const (
	ToolNameRenameVariable  = "rename_variable"
	ToolNameExtractVariable = "extract_variable"
	ToolNameExtractMethod   = "extract_method"
)

// MaxCodeInputBytes is the maximum allowed size for inline code input (1 MB).
const MaxCodeInputBytes = 1 << 20

// Sentinel errors for tool input validation.
var (
	// ErrEmptyFile indicates neither a file path nor inline code was given.
	ErrEmptyFile = errors.New("file parameter is required and must not be empty")
	// ErrCodeTooLarge indicates the code input exceeds the size limit.
	ErrCodeTooLarge = errors.New("code input exceeds maximum size")
	// ErrNoEngine indicates the server was built without an engine.
	ErrNoEngine = errors.New("refactoring engine is not configured")
)

// Input types (auto-generate JSON schemas via struct tags).

// RenameVariableInput is the input schema for the rename_variable tool.
type RenameVariableInput struct {
	File    string `json:"file"           jsonschema:"path of the PHP file, or a label when code is given"`
	Code    string `json:"code,omitempty" jsonschema:"optional inline PHP source used instead of reading file"`
	OldName string `json:"old_name"       jsonschema:"variable to rename, with or without $"`
	NewName string `json:"new_name"       jsonschema:"new variable name, with or without $"`
	Line    uint   `json:"line"           jsonschema:"1-based line inside the scope of the variable"`
}

// ExtractVariableInput is the input schema for the extract_variable tool.
type ExtractVariableInput struct {
	File  string `json:"file"           jsonschema:"path of the PHP file, or a label when code is given"`
	Code  string `json:"code,omitempty" jsonschema:"optional inline PHP source used instead of reading file"`
	Range string `json:"range"          jsonschema:"selection as L:C-L:C, L-L or L (1-based)"`
	Name  string `json:"name"           jsonschema:"name of the new variable, with or without $"`
}

// ExtractMethodInput is the input schema for the extract_method tool.
type ExtractMethodInput struct {
	File      string `json:"file"           jsonschema:"path of the PHP file, or a label when code is given"`
	Code      string `json:"code,omitempty" jsonschema:"optional inline PHP source used instead of reading file"`
	Name      string `json:"name"           jsonschema:"name of the new function or method"`
	StartLine uint   `json:"start_line"     jsonschema:"first selected line (1-based)"`
	EndLine   uint   `json:"end_line"       jsonschema:"last selected line (1-based)"`
}

// ToolOutput is the structured output of every tool.
type ToolOutput struct {
	Result    refactor.Result `json:"result"`
	RequestID string          `json:"request_id"`
}

func (s *Server) handleRenameVariable(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input RenameVariableInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return s.call(ctx, ToolNameRenameVariable, input.File, input.Code, func(ctx context.Context, source []byte) refactor.Result {
		return s.engine.RenameVariable(ctx, refactor.RenameRequest{
			File: input.File, Source: source, Line: input.Line, OldName: input.OldName, NewName: input.NewName,
		})
	})
}

func (s *Server) handleExtractVariable(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input ExtractVariableInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return s.call(ctx, ToolNameExtractVariable, input.File, input.Code, func(ctx context.Context, source []byte) refactor.Result {
		rng, err := refactor.ParseRange(input.Range)
		if err != nil {
			return refactor.Failure(input.File, refactor.OpExtractVariable, err)
		}

		return s.engine.ExtractVariable(ctx, refactor.ExtractVariableRequest{
			File: input.File, Source: source, Range: rng, Name: input.Name,
		})
	})
}

func (s *Server) handleExtractMethod(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input ExtractMethodInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return s.call(ctx, ToolNameExtractMethod, input.File, input.Code, func(ctx context.Context, source []byte) refactor.Result {
		return s.engine.ExtractMethod(ctx, refactor.ExtractMethodRequest{
			File: input.File, Source: source, StartLine: input.StartLine, EndLine: input.EndLine, Name: input.Name,
		})
	})
}

// call validates the common inputs, tags the request with an ID, and turns
// the engine result into a tool result.
func (s *Server) call(
	ctx context.Context, tool, file, code string,
	run func(context.Context, []byte) refactor.Result,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	ctx, requestID := observability.WithRequestID(ctx)

	if err := validateInput(file, code); err != nil {
		return errorResult(requestID, err)
	}

	if s.engine == nil {
		return errorResult(requestID, ErrNoEngine)
	}

	var source []byte
	if code != "" {
		source = []byte(code)
	}

	result := run(ctx, source)

	s.logger.LogAttrs(ctx, slog.LevelDebug, "mcp tool call",
		slog.String("tool", tool), slog.Bool("success", result.Success))

	return jsonResult(requestID, result)
}

// errorResult builds a CallToolResult with isError set.
func errorResult(requestID string, err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{RequestID: requestID, Result: refactor.Result{Error: err.Error()}}, nil
}

// jsonResult builds a CallToolResult with the JSON-encoded result. Failed
// refactorings are reported with isError set.
func jsonResult(requestID string, result refactor.Result) (*mcpsdk.CallToolResult, ToolOutput, error) {
	output := ToolOutput{Result: result, RequestID: requestID}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return errorResult(requestID, fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
		IsError: !result.Success,
	}, output, nil
}

// validateInput checks common input constraints.
func validateInput(file, code string) error {
	if file == "" {
		return ErrEmptyFile
	}

	if len(code) > MaxCodeInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrCodeTooLarge, len(code), MaxCodeInputBytes)
	}

	return nil
}
