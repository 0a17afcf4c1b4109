package uast

import (
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/phprefactor/pkg/safeconv"
	"github.com/Sumatoshi-tech/phprefactor/pkg/uast/pkg/node"
)

// Grammar node types with special handling during lowering.
const (
	tsComment          = "comment"
	tsScopedProperty   = "scoped_property_access_expression"
	tsPropertyElement  = "property_element"
	tsStaticModifier   = "static_modifier"
	tsUseClause        = "anonymous_function_use_clause"
	tsFormalParameters = "formal_parameters"
	fieldName          = "name"
)

// phpKinds folds tree-sitter-php node types into node kinds. Types not listed
// lower to [node.KindUnknown] and keep their children.
var phpKinds = map[string]node.Kind{
	"program": node.KindFile,

	"function_definition":                    node.KindFunction,
	"method_declaration":                     node.KindMethod,
	"anonymous_function":                     node.KindClosure,
	"anonymous_function_creation_expression": node.KindClosure,
	"arrow_function":                         node.KindArrowFunction,

	"class_declaration":     node.KindClass,
	"interface_declaration": node.KindClass,
	"trait_declaration":     node.KindClass,
	"enum_declaration":      node.KindClass,
	"declaration_list":      node.KindMembers,
	"enum_declaration_list": node.KindMembers,

	"compound_statement": node.KindBlock,
	"colon_block":        node.KindBlock,
	"else_clause":        node.KindClause,
	"else_if_clause":     node.KindClause,
	"catch_clause":       node.KindClause,
	"finally_clause":     node.KindClause,
	"switch_block":       node.KindClause,
	"case_statement":     node.KindCase,
	"default_statement":  node.KindCase,

	tsFormalParameters:             node.KindParameters,
	"simple_parameter":             node.KindParameter,
	"variadic_parameter":           node.KindParameter,
	"property_promotion_parameter": node.KindParameter,
	tsUseClause:                    node.KindUseClause,
	"arguments":                    node.KindArguments,
	"argument":                     node.KindArgument,
	"name":                         node.KindName,
	"qualified_name":               node.KindName,
	"relative_scope":               node.KindName,

	"expression_statement":        node.KindExpressionStatement,
	"return_statement":            node.KindReturn,
	"echo_statement":              node.KindEcho,
	"if_statement":                node.KindIf,
	"while_statement":             node.KindLoop,
	"do_statement":                node.KindLoop,
	"for_statement":               node.KindLoop,
	"foreach_statement":           node.KindLoop,
	"switch_statement":            node.KindSwitch,
	"try_statement":               node.KindTry,
	"break_statement":             node.KindJump,
	"continue_statement":          node.KindJump,
	"global_declaration":          node.KindStatement,
	"function_static_declaration": node.KindStatement,
	"unset_statement":             node.KindStatement,
	"const_declaration":           node.KindStatement,
	"property_declaration":        node.KindStatement,
	"namespace_definition":        node.KindStatement,
	"namespace_use_declaration":   node.KindStatement,
	"use_declaration":             node.KindStatement,
	"declare_statement":           node.KindStatement,
	"goto_statement":              node.KindStatement,
	"named_label_statement":       node.KindStatement,
	"exit_statement":              node.KindStatement,
	"empty_statement":             node.KindStatement,

	"variable_name": node.KindVariable,

	"assignment_expression":           node.KindAssignment,
	"augmented_assignment_expression": node.KindAssignment,
	"reference_assignment_expression": node.KindAssignment,

	"binary_expression":   node.KindBinaryOp,
	"unary_op_expression": node.KindUnaryOp,
	"update_expression":   node.KindUnaryOp,

	"function_call_expression":        node.KindCall,
	"member_call_expression":          node.KindCall,
	"scoped_call_expression":          node.KindCall,
	"nullsafe_member_call_expression": node.KindCall,
	"object_creation_expression":      node.KindNew,

	"member_access_expression":          node.KindMemberAccess,
	"nullsafe_member_access_expression": node.KindMemberAccess,
	tsScopedProperty:                    node.KindMemberAccess,
	"class_constant_access_expression":  node.KindMemberAccess,

	"subscript_expression":      node.KindIndex,
	"conditional_expression":    node.KindTernary,
	"parenthesized_expression":  node.KindParenthesized,
	"cast_expression":           node.KindCast,
	"array_creation_expression": node.KindArray,

	"integer":         node.KindLiteral,
	"float":           node.KindLiteral,
	"string":          node.KindLiteral,
	"encapsed_string": node.KindLiteral,
	"boolean":         node.KindLiteral,
	"null":            node.KindLiteral,
	"heredoc":         node.KindLiteral,
	"nowdoc":          node.KindLiteral,

	"match_expression": node.KindMatch,
	"yield_expression": node.KindYield,
	"throw_expression": node.KindThrow,

	"clone_expression":             node.KindExpression,
	"print_intrinsic":              node.KindExpression,
	"include_expression":           node.KindExpression,
	"include_once_expression":      node.KindExpression,
	"require_expression":           node.KindExpression,
	"require_once_expression":      node.KindExpression,
	"error_suppression_expression": node.KindExpression,
	"list_literal":                 node.KindExpression,
	"dynamic_variable_name":        node.KindExpression,
	"shell_command_expression":     node.KindExpression,
	"sequence_expression":          node.KindExpression,
}

// lowerer converts a tree-sitter PHP tree into program nodes.
type lowerer struct {
	source []byte
}

func (lw *lowerer) lower(tsNode sitter.Node) *node.Node {
	nodeType := tsNode.Type()
	pos := positionsOf(tsNode)

	kind := phpKinds[nodeType]
	lowered := node.New(kind, nodeType, pos)

	switch kind {
	case node.KindVariable:
		// Variables are leaves; the "$" token and inner name are not kept.
		lowered.Name = strings.TrimPrefix(lw.text(tsNode), "$")

		return lowered
	case node.KindFunction, node.KindMethod, node.KindClass:
		if nameNode := tsNode.ChildByFieldName(fieldName); !nameNode.IsNull() {
			lowered.Name = lw.text(nameNode)
		}
	}

	childCount := tsNode.NamedChildCount()
	if childCount > 0 {
		lowered.Children = make([]*node.Node, 0, childCount)
	}

	for idx := range childCount {
		child := tsNode.NamedChild(idx)
		if child.IsNull() || child.Type() == tsComment {
			continue
		}

		loweredChild := lw.lower(child)
		if loweredChild.Kind == node.KindVariable && isPropertyName(tsNode, child) {
			loweredChild.Kind = node.KindProperty
		}

		lowered.Children = append(lowered.Children, loweredChild)
	}

	return lowered
}

// isPropertyName reports whether a variable_name child names a class property
// rather than a local variable, as in "private $count;" declarations and
// "Foo::$count" accesses.
func isPropertyName(parent, child sitter.Node) bool {
	switch parent.Type() {
	case tsPropertyElement:
		return true
	case tsScopedProperty:
		nameNode := parent.ChildByFieldName(fieldName)

		return !nameNode.IsNull() &&
			nameNode.StartByte() == child.StartByte() &&
			nameNode.EndByte() == child.EndByte()
	default:
		return false
	}
}

func (lw *lowerer) text(tsNode sitter.Node) string {
	start := tsNode.StartByte()
	end := tsNode.EndByte()

	if end < start || safeconv.MustUintToInt(end) > len(lw.source) {
		return ""
	}

	return string(lw.source[start:end])
}

// positionsOf converts tree-sitter's zero-based points into 1-based positions.
// firstSyntaxError returns the position of the first ERROR node or token
// inserted by error recovery, or nil when the tree is clean.
func firstSyntaxError(tsNode sitter.Node) *node.Positions {
	if !tsNode.HasError() {
		return nil
	}

	if tsNode.IsError() || tsNode.IsMissing() {
		return positionsOf(tsNode)
	}

	for idx := range tsNode.ChildCount() {
		if pos := firstSyntaxError(tsNode.Child(idx)); pos != nil {
			return pos
		}
	}

	// HasError with no offending descendant: report the node itself.
	return positionsOf(tsNode)
}

func positionsOf(tsNode sitter.Node) *node.Positions {
	start := tsNode.StartPoint()
	end := tsNode.EndPoint()

	return node.NewPositions(
		uint(start.Row)+1,
		uint(start.Column)+1,
		uint(tsNode.StartByte()),
		uint(end.Row)+1,
		uint(end.Column)+1,
		uint(tsNode.EndByte()),
	)
}
