// Package uast parses PHP source into the program tree used by the
// refactoring engine and prints mutated trees back to source.
package uast

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/phprefactor/pkg/uast/pkg/node"
)

// Sentinel errors for parser operations.
var (
	// ErrSyntax indicates the source does not parse cleanly.
	ErrSyntax = errors.New("syntax error")
	// ErrUnsupportedFile indicates the file is not PHP source.
	ErrUnsupportedFile = errors.New("unsupported file type")

	errNoRootNode = errors.New("parser: no root node")
	errPoolType   = errors.New("parser: pool returned unexpected type")
)

// SyntaxError locates the first syntax error of a file. It matches [ErrSyntax].
type SyntaxError struct {
	File   string
	Line   uint
	Column uint
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s in %s at line %d, column %d", ErrSyntax, e.File, e.Line, e.Column)
}

// Unwrap returns [ErrSyntax].
func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// Parser parses PHP files into program trees. It is safe for concurrent use;
// tree-sitter parsers are pooled and each call gets its own.
type Parser struct {
	language     *sitter.Language
	tsParserPool sync.Pool
}

// NewParser creates a PHP parser.
func NewParser() (*Parser, error) {
	lang := GetLanguage()
	if lang == nil {
		return nil, fmt.Errorf("%w: %s grammar unavailable", ErrUnsupportedFile, LanguagePHP)
	}

	parser := &Parser{language: lang}
	parser.tsParserPool = sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(lang)

			return tsParser
		},
	}

	return parser, nil
}

// IsSupported returns true if the given filename has a PHP extension.
func (parser *Parser) IsSupported(filename string) bool {
	return hasPHPExtension(filename)
}

// Language returns the language name handled by this parser.
func (parser *Parser) Language() string {
	return LanguagePHP
}

// Parse parses a file and returns its tree. Sources with syntax errors are
// rejected with [ErrSyntax] carrying the first error line.
func (parser *Parser) Parse(ctx context.Context, filename string, content []byte) (*node.Tree, error) {
	tsParser, ok := parser.tsParserPool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer parser.tsParserPool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, errNoRootNode
	}

	if errorAt := firstSyntaxError(root); errorAt != nil {
		return nil, &SyntaxError{File: filename, Line: errorAt.StartLine, Column: errorAt.StartCol}
	}

	lw := &lowerer{source: content}
	lowered := lw.lower(root)

	return &node.Tree{Root: lowered, Filename: filename, Source: content}, nil
}

func hasPHPExtension(filename string) bool {
	ext := strings.ToLower(getFileExtension(filename))

	return ext != "" && slices.Contains(phpExtensions, ext)
}

// getFileExtension returns the file extension (with dot).
func getFileExtension(filename string) string {
	return filepath.Ext(filename)
}
