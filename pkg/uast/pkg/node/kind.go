package node

// Kind is the closed set of node categories the refactoring engine reasons about.
// Grammar-specific node types are folded into one of these by the parser; the raw
// grammar type stays available in [Node.Type] for diagnostics.
type Kind uint8

// Node kinds.
const (
	KindUnknown Kind = iota
	KindFile

	// Scope-introducing constructs.
	KindFunction
	KindMethod
	KindClosure
	KindArrowFunction

	// Structure.
	KindClass
	KindMembers
	KindBlock
	KindClause
	KindCase
	KindParameters
	KindParameter
	KindUseClause
	KindArguments
	KindArgument
	KindName
	KindProperty

	// Statements.
	KindExpressionStatement
	KindReturn
	KindEcho
	KindIf
	KindLoop
	KindSwitch
	KindTry
	KindJump
	KindStatement

	// Expressions.
	KindVariable
	KindAssignment
	KindBinaryOp
	KindUnaryOp
	KindCall
	KindNew
	KindMemberAccess
	KindIndex
	KindTernary
	KindParenthesized
	KindCast
	KindArray
	KindLiteral
	KindMatch
	KindYield
	KindThrow
	KindExpression

	kindCount
)

var kindNames = [kindCount]string{
	KindUnknown:             "Unknown",
	KindFile:                "File",
	KindFunction:            "Function",
	KindMethod:              "Method",
	KindClosure:             "Closure",
	KindArrowFunction:       "ArrowFunction",
	KindClass:               "Class",
	KindMembers:             "Members",
	KindBlock:               "Block",
	KindClause:              "Clause",
	KindCase:                "Case",
	KindParameters:          "Parameters",
	KindParameter:           "Parameter",
	KindUseClause:           "UseClause",
	KindArguments:           "Arguments",
	KindArgument:            "Argument",
	KindName:                "Name",
	KindProperty:            "Property",
	KindExpressionStatement: "ExpressionStatement",
	KindReturn:              "Return",
	KindEcho:                "Echo",
	KindIf:                  "If",
	KindLoop:                "Loop",
	KindSwitch:              "Switch",
	KindTry:                 "Try",
	KindJump:                "Jump",
	KindStatement:           "Statement",
	KindVariable:            "Variable",
	KindAssignment:          "Assignment",
	KindBinaryOp:            "BinaryOp",
	KindUnaryOp:             "UnaryOp",
	KindCall:                "Call",
	KindNew:                 "New",
	KindMemberAccess:        "MemberAccess",
	KindIndex:               "Index",
	KindTernary:             "Ternary",
	KindParenthesized:       "Parenthesized",
	KindCast:                "Cast",
	KindArray:               "Array",
	KindLiteral:             "Literal",
	KindMatch:               "Match",
	KindYield:               "Yield",
	KindThrow:               "Throw",
	KindExpression:          "Expression",
}

// String returns the kind name.
func (k Kind) String() string {
	if k >= kindCount {
		return kindNames[KindUnknown]
	}

	return kindNames[k]
}

// MarshalText implements [encoding.TextMarshaler] so kinds serialize by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsScope reports whether the kind introduces a variable scope
// (function, method, closure, or arrow function).
func (k Kind) IsScope() bool {
	switch k {
	case KindFunction, KindMethod, KindClosure, KindArrowFunction:
		return true
	default:
		return false
	}
}

// IsNamedScope reports whether the kind is a scope that never inherits
// variables from its lexical parent.
func (k Kind) IsNamedScope() bool {
	return k == KindFunction || k == KindMethod
}

// IsStatement reports whether a node of this kind is an executable statement
// that a new declaration can be placed in front of.
func (k Kind) IsStatement() bool {
	switch k {
	case KindExpressionStatement, KindReturn, KindEcho, KindIf, KindLoop,
		KindSwitch, KindTry, KindJump, KindStatement:
		return true
	default:
		return false
	}
}

// IsStatementList reports whether children of this kind form an ordered
// statement sequence.
func (k Kind) IsStatementList() bool {
	switch k {
	case KindFile, KindBlock, KindCase:
		return true
	default:
		return false
	}
}

// IsExpression reports whether the kind is an expression. Closures and arrow
// functions are both scopes and expressions.
func (k Kind) IsExpression() bool {
	switch k {
	case KindVariable, KindAssignment, KindBinaryOp, KindUnaryOp, KindCall,
		KindNew, KindMemberAccess, KindIndex, KindTernary, KindParenthesized,
		KindCast, KindArray, KindLiteral, KindMatch, KindYield, KindThrow,
		KindExpression, KindClosure, KindArrowFunction:
		return true
	default:
		return false
	}
}

// IsAssignment reports whether the kind is an assignment expression.
func (k Kind) IsAssignment() bool {
	return k == KindAssignment
}

// IsExcludedFromMatching reports whether an expression of this kind must never
// be selected as an extraction target. Variable references and assignments are
// bindings, not values to extract.
func (k Kind) IsExcludedFromMatching() bool {
	return k == KindVariable || k.IsAssignment()
}

// IsMatchCandidate reports whether the span matcher may select this kind.
func (k Kind) IsMatchCandidate() bool {
	return k.IsExpression() && !k.IsExcludedFromMatching()
}
