package refactor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/phprefactor/pkg/textutil"
	"github.com/Sumatoshi-tech/phprefactor/pkg/uast"
	"github.com/Sumatoshi-tech/phprefactor/pkg/uast/pkg/node"
)

// Operation names used in logs, spans, and metrics.
const (
	OpRenameVariable  = "rename-variable"
	OpExtractVariable = "extract-variable"
	OpExtractMethod   = "extract-method"
)

const (
	tracerName = "phprefactor.refactor"

	// DefaultMaxFileSize is the largest source file accepted by default.
	DefaultMaxFileSize = 8 * humanize.MiByte

	statusOK    = "ok"
	statusError = "error"
)

// ErrPanic wraps a panic recovered while running an operation.
var ErrPanic = errors.New("internal error")

// Recorder receives the outcome of every operation.
type Recorder interface {
	RecordRequest(ctx context.Context, op, status string, duration time.Duration)
	TrackInflight(ctx context.Context, op string) func()
	RecordChanges(ctx context.Context, op string, changes int)
}

type noopRecorder struct{}

func (noopRecorder) RecordRequest(context.Context, string, string, time.Duration) {}

func (noopRecorder) TrackInflight(context.Context, string) func() { return func() {} }

func (noopRecorder) RecordChanges(context.Context, string, int) {}

// Result is the outcome of one refactoring. On success Code holds the complete
// regenerated source; on failure Error says why and the source is untouched.
type Result struct {
	Extraction *Extraction `json:"extraction,omitempty" yaml:"extraction,omitempty"`
	Code       string      `json:"code,omitempty"       yaml:"code,omitempty"`
	Error      string      `json:"error,omitempty"      yaml:"error,omitempty"`
	ErrorKind  string      `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	File       string      `json:"file,omitempty"       yaml:"file,omitempty"`
	Changes    int         `json:"changes"              yaml:"changes"`
	Success    bool        `json:"success"              yaml:"success"`
}

// RenameRequest asks to rename a variable in the scope enclosing Line.
type RenameRequest struct {
	File    string `json:"file"`
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
	// Source, when non-nil, is used instead of reading File.
	Source []byte `json:"-"`
	Line   uint   `json:"line"`
}

// ExtractVariableRequest asks to extract the expression at Range into Name.
type ExtractVariableRequest struct {
	File   string `json:"file"`
	Name   string `json:"name"`
	Source []byte `json:"-"`
	Range  Range  `json:"range"`
}

// ExtractMethodRequest asks to extract lines StartLine..EndLine into Name.
type ExtractMethodRequest struct {
	File      string `json:"file"`
	Name      string `json:"name"`
	Source    []byte `json:"-"`
	StartLine uint   `json:"start_line"`
	EndLine   uint   `json:"end_line"`
}

// Engine runs refactorings on files. It is safe for concurrent use: every call
// reads and parses its own tree.
type Engine struct {
	parser      *uast.Parser
	logger      *slog.Logger
	tracer      trace.Tracer
	metrics     Recorder
	maxFileSize uint64
}

// Option configures an [Engine].
type Option func(*Engine)

// WithLogger sets the logger. The default is [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithTracer sets the tracer used for per-operation spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) { e.tracer = tracer }
}

// WithMetrics sets the recorder for operation metrics.
func WithMetrics(recorder Recorder) Option {
	return func(e *Engine) { e.metrics = recorder }
}

// WithMaxFileSize limits the size of accepted source files. Zero disables the limit.
func WithMaxFileSize(size uint64) Option {
	return func(e *Engine) { e.maxFileSize = size }
}

// NewEngine creates an engine.
func NewEngine(opts ...Option) (*Engine, error) {
	parser, err := uast.NewParser()
	if err != nil {
		return nil, fmt.Errorf("create parser: %w", err)
	}

	engine := &Engine{
		parser:      parser,
		logger:      slog.Default(),
		tracer:      otel.Tracer(tracerName),
		metrics:     noopRecorder{},
		maxFileSize: DefaultMaxFileSize,
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine, nil
}

// RenameVariable renames a variable within the scope enclosing the request line.
func (e *Engine) RenameVariable(ctx context.Context, req RenameRequest) Result {
	return e.run(ctx, OpRenameVariable, req.File, req.Source, func(tree *node.Tree) (outcome, error) {
		renamed, err := RenameVariable(tree, req.Line, req.OldName, req.NewName)

		return outcome{changes: renamed}, err
	}, slog.Uint64("line", uint64(req.Line)), slog.String("old_name", req.OldName), slog.String("new_name", req.NewName))
}

// ExtractVariable introduces a variable for the expression at the request range.
func (e *Engine) ExtractVariable(ctx context.Context, req ExtractVariableRequest) Result {
	return e.run(ctx, OpExtractVariable, req.File, req.Source, func(tree *node.Tree) (outcome, error) {
		replaced, err := ExtractVariable(tree, req.Range, req.Name)

		return outcome{changes: replaced}, err
	}, slog.String("range", req.Range.String()), slog.String("name", req.Name))
}

// ExtractMethod moves the requested lines into a new function or method.
func (e *Engine) ExtractMethod(ctx context.Context, req ExtractMethodRequest) Result {
	return e.run(ctx, OpExtractMethod, req.File, req.Source, func(tree *node.Tree) (outcome, error) {
		extraction, err := ExtractMethod(tree, req.StartLine, req.EndLine, req.Name)
		if err != nil {
			return outcome{}, err
		}

		return outcome{changes: 1, extraction: extraction}, nil
	}, slog.String("lines", LineRange(req.StartLine, req.EndLine).String()), slog.String("name", req.Name))
}

// Parse loads and parses a file with the engine's input checks applied.
func (e *Engine) Parse(ctx context.Context, file string, source []byte) (*node.Tree, error) {
	src, resolved, err := e.load(file, source)
	if err != nil {
		return nil, newError(InputError, "parse", err)
	}

	tree, err := e.parser.Parse(ctx, resolved, src)
	if err != nil {
		return nil, newError(ParseError, "parse", err)
	}

	return tree, nil
}

type outcome struct {
	extraction *Extraction
	changes    int
}

// run is the operation boundary: every failure, including a panic, becomes a
// failed Result. Source is printed only after apply completed.
func (e *Engine) run(
	ctx context.Context, op, file string, source []byte,
	apply func(*node.Tree) (outcome, error), attrs ...slog.Attr,
) (result Result) {
	ctx, span := e.tracer.Start(ctx, tracerName+"."+op, trace.WithAttributes(
		attribute.String("refactor.op", op),
		attribute.String("refactor.file", file),
	))
	defer span.End()

	started := time.Now()
	defer e.metrics.TrackInflight(ctx, op)()

	logger := e.logger.With(slog.String("op", op), slog.String("file", file))
	logger.LogAttrs(ctx, slog.LevelDebug, "refactor started", attrs...)

	defer func() {
		if recovered := recover(); recovered != nil {
			result = failure(file, newError(UnexpectedError, op, fmt.Errorf("%w: %v", ErrPanic, recovered)))
		}

		status := statusOK
		if !result.Success {
			status = statusError

			span.SetStatus(codes.Error, result.Error)
			logger.WarnContext(ctx, "refactor failed", "error", result.Error, "kind", result.ErrorKind)
		} else {
			span.SetAttributes(attribute.Int("refactor.changes", result.Changes))
			e.metrics.RecordChanges(ctx, op, result.Changes)
			logger.InfoContext(ctx, "refactor applied", "changes", result.Changes,
				"duration", time.Since(started))
		}

		e.metrics.RecordRequest(ctx, op, status, time.Since(started))
	}()

	tree, err := e.Parse(ctx, file, source)
	if err != nil {
		return failure(file, err)
	}

	out, err := apply(tree)
	if err != nil {
		span.RecordError(err)

		return failure(file, err)
	}

	return Result{
		Success:    true,
		File:       tree.Filename,
		Code:       uast.Print(tree),
		Changes:    out.changes,
		Extraction: out.extraction,
	}
}

// Failure builds a failed Result for a request rejected before it reached the
// engine, such as an unparsable range. Errors that are not an [*Error] are
// reported as InputError.
func Failure(file, op string, err error) Result {
	var refErr *Error
	if !errors.As(err, &refErr) {
		err = newError(InputError, op, err)
	}

	return failure(file, err)
}

func failure(file string, err error) Result {
	return Result{
		Success:   false,
		File:      file,
		Error:     err.Error(),
		ErrorKind: KindOf(err).String(),
	}
}

// load returns the source to refactor: the given bytes, or the file read once.
func (e *Engine) load(file string, source []byte) ([]byte, string, error) {
	resolved := file

	if source == nil {
		var err error

		source, resolved, err = ReadSource(file)
		if err != nil {
			return nil, "", err
		}
	}

	if e.maxFileSize > 0 && uint64(len(source)) > e.maxFileSize {
		return nil, "", fmt.Errorf("%w: %s exceeds %s", ErrFileTooLarge,
			humanize.IBytes(uint64(len(source))), humanize.IBytes(e.maxFileSize))
	}

	if textutil.IsBinary(source) {
		return nil, "", fmt.Errorf("%w: %s", ErrBinaryFile, file)
	}

	if !uast.IsPHP(resolved, source) {
		return nil, "", fmt.Errorf("%w: %s", ErrNotPHP, file)
	}

	return source, resolved, nil
}
