package refactor

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a refactoring failed.
type ErrorKind int

// Error kinds.
const (
	// UnexpectedError is any failure not covered by another kind, including
	// panics recovered at the operation boundary.
	UnexpectedError ErrorKind = iota
	// InputError is a bad request: unreadable file, invalid name or range,
	// or a selection the operation cannot handle.
	InputError
	// ParseError means the source does not parse.
	ParseError
	// NotFoundError means nothing matched the requested position.
	NotFoundError
)

var errorKindNames = map[ErrorKind]string{
	UnexpectedError: "unexpected_error",
	InputError:      "input_error",
	ParseError:      "parse_error",
	NotFoundError:   "not_found",
}

// String returns the snake_case name of the kind.
func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}

	return errorKindNames[UnexpectedError]
}

// MarshalText implements [encoding.TextMarshaler].
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Sentinel errors wrapped by [Error].
var (
	ErrEmptyName        = errors.New("name is empty")
	ErrInvalidName      = errors.New("invalid identifier")
	ErrReservedName     = errors.New("reserved variable name")
	ErrInvalidRange     = errors.New("invalid range")
	ErrInvalidLine      = errors.New("invalid line")
	ErrFileTooLarge     = errors.New("file too large")
	ErrBinaryFile       = errors.New("binary file")
	ErrNotPHP           = errors.New("not a PHP file")
	ErrNoExpression     = errors.New("no expression found at the given range")
	ErrNoStatement      = errors.New("expression is not inside a statement")
	ErrNoOccurrence     = errors.New("variable not found in scope")
	ErrNoStatementList  = errors.New("statement is not part of a statement block")
	ErrAssignmentTarget = errors.New("expression is only used as an assignment target")
	ErrEmptySelection   = errors.New("no complete statements in the selected lines")
	ErrPartialSelection = errors.New("selection splits a statement")
	ErrControlFlow      = errors.New("selection contains control flow leaving it")
	ErrDeclaration      = errors.New("selection contains a declaration")
	ErrClosureScope     = errors.New("extraction from closures and arrow functions is not supported")
)

// Error is a failed refactoring operation.
type Error struct {
	Err  error
	Op   string
	Kind ErrorKind
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}

	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func errorf(kind ErrorKind, op string, sentinel error, format string, args ...any) *Error {
	return newError(kind, op, fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...))
}

// KindOf returns the kind of err. Errors that are not an [*Error] are
// UnexpectedError.
func KindOf(err error) ErrorKind {
	var refErr *Error
	if errors.As(err, &refErr) {
		return refErr.Kind
	}

	return UnexpectedError
}
