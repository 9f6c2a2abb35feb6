package parser

import "fmt"

// NodeKind is the kind of an interior tree node.
//
// IMPORTANT: add new kinds at the END. Values are stable because serialized
// references and test expectations store them by position.
type NodeKind uint16

const (
	Error NodeKind = iota // skipped or unparseable input
	Module
	Suite // NEWLINE INDENT statements DEDENT, or simple statements after ':'

	// Simple statements
	ExprStmt
	AssignStmt
	AugAssignStmt
	AnnAssignStmt
	ReturnStmt
	RaiseStmt
	PassStmt
	BreakStmt
	ContinueStmt
	AssertStmt
	DelStmt
	GlobalStmt
	NonlocalStmt
	ImportStmt
	ImportFromStmt
	ImportAlias
	DottedName
	TypeAliasStmt
	Docstring // string expression opening a module, class or function body

	// Compound statements
	IfStmt
	ElifClause
	ElseClause
	WhileStmt
	ForStmt
	TryStmt
	ExceptClause
	FinallyClause
	WithStmt
	WithItem
	FunctionDef
	ClassDef
	DecoratorList
	Decorator
	ParamList
	Param
	ReturnAnnotation
	TypeParamList
	TypeParam
	MatchStmt
	CaseClause
	Guard

	// Expressions
	NameExpr
	NumberLiteral
	StringLiteral
	FStringLiteral
	ConstantExpr // None, True, False
	EllipsisExpr
	ParenExpr
	TupleExpr
	ListExpr
	SetExpr
	DictExpr
	DictEntry
	ListComp
	SetComp
	DictComp
	GeneratorExpr
	CompFor
	CompIf
	UnaryExpr
	BinaryExpr
	BoolOpExpr
	CompareExpr
	TernaryExpr
	LambdaExpr
	NamedExpr // x := value
	StarredExpr
	DoubleStarredExpr
	AwaitExpr
	YieldExpr
	AttributeExpr
	CallExpr
	ArgList
	KeywordArg
	SubscriptExpr
	SliceExpr
	Interpolation // root of a replacement field parsed out of an f-string

	nodeKindCount
)

var nodeNames = [nodeKindCount]string{
	Error:             "Error",
	Module:            "Module",
	Suite:             "Suite",
	ExprStmt:          "ExprStmt",
	AssignStmt:        "AssignStmt",
	AugAssignStmt:     "AugAssignStmt",
	AnnAssignStmt:     "AnnAssignStmt",
	ReturnStmt:        "ReturnStmt",
	RaiseStmt:         "RaiseStmt",
	PassStmt:          "PassStmt",
	BreakStmt:         "BreakStmt",
	ContinueStmt:      "ContinueStmt",
	AssertStmt:        "AssertStmt",
	DelStmt:           "DelStmt",
	GlobalStmt:        "GlobalStmt",
	NonlocalStmt:      "NonlocalStmt",
	ImportStmt:        "ImportStmt",
	ImportFromStmt:    "ImportFromStmt",
	ImportAlias:       "ImportAlias",
	DottedName:        "DottedName",
	TypeAliasStmt:     "TypeAliasStmt",
	Docstring:         "Docstring",
	IfStmt:            "IfStmt",
	ElifClause:        "ElifClause",
	ElseClause:        "ElseClause",
	WhileStmt:         "WhileStmt",
	ForStmt:           "ForStmt",
	TryStmt:           "TryStmt",
	ExceptClause:      "ExceptClause",
	FinallyClause:     "FinallyClause",
	WithStmt:          "WithStmt",
	WithItem:          "WithItem",
	FunctionDef:       "FunctionDef",
	ClassDef:          "ClassDef",
	DecoratorList:     "DecoratorList",
	Decorator:         "Decorator",
	ParamList:         "ParamList",
	Param:             "Param",
	ReturnAnnotation:  "ReturnAnnotation",
	TypeParamList:     "TypeParamList",
	TypeParam:         "TypeParam",
	MatchStmt:         "MatchStmt",
	CaseClause:        "CaseClause",
	Guard:             "Guard",
	NameExpr:          "NameExpr",
	NumberLiteral:     "NumberLiteral",
	StringLiteral:     "StringLiteral",
	FStringLiteral:    "FStringLiteral",
	ConstantExpr:      "ConstantExpr",
	EllipsisExpr:      "EllipsisExpr",
	ParenExpr:         "ParenExpr",
	TupleExpr:         "TupleExpr",
	ListExpr:          "ListExpr",
	SetExpr:           "SetExpr",
	DictExpr:          "DictExpr",
	DictEntry:         "DictEntry",
	ListComp:          "ListComp",
	SetComp:           "SetComp",
	DictComp:          "DictComp",
	GeneratorExpr:     "GeneratorExpr",
	CompFor:           "CompFor",
	CompIf:            "CompIf",
	UnaryExpr:         "UnaryExpr",
	BinaryExpr:        "BinaryExpr",
	BoolOpExpr:        "BoolOpExpr",
	CompareExpr:       "CompareExpr",
	TernaryExpr:       "TernaryExpr",
	LambdaExpr:        "LambdaExpr",
	NamedExpr:         "NamedExpr",
	StarredExpr:       "StarredExpr",
	DoubleStarredExpr: "DoubleStarredExpr",
	AwaitExpr:         "AwaitExpr",
	YieldExpr:         "YieldExpr",
	AttributeExpr:     "AttributeExpr",
	CallExpr:          "CallExpr",
	ArgList:           "ArgList",
	KeywordArg:        "KeywordArg",
	SubscriptExpr:     "SubscriptExpr",
	SliceExpr:         "SliceExpr",
	Interpolation:     "Interpolation",
}

func (k NodeKind) String() string {
	if k < nodeKindCount {
		return nodeNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", k)
}

// NodeKindByName is the inverse of String.
func NodeKindByName(name string) (NodeKind, bool) {
	for k := NodeKind(0); k < nodeKindCount; k++ {
		if nodeNames[k] == name {
			return k, true
		}
	}
	return 0, false
}

// IsStatement reports whether k is a statement node.
func (k NodeKind) IsStatement() bool {
	return k >= ExprStmt && k <= Docstring || k >= IfStmt && k <= ClassDef || k == MatchStmt
}

// IsExpression reports whether k is an expression node.
func (k NodeKind) IsExpression() bool {
	return k >= NameExpr && k <= SliceExpr && k != DictEntry && k != CompFor && k != CompIf &&
		k != ArgList && k != KeywordArg
}

// describe names k in "cannot assign to ..." diagnostics.
func (k NodeKind) describe() string {
	switch k {
	case NumberLiteral, StringLiteral, FStringLiteral, EllipsisExpr:
		return "literal"
	case ConstantExpr:
		return "constant"
	case CallExpr:
		return "function call"
	case LambdaExpr:
		return "lambda"
	case TernaryExpr:
		return "conditional expression"
	case CompareExpr:
		return "comparison"
	case AwaitExpr:
		return "await expression"
	case YieldExpr:
		return "yield expression"
	case NamedExpr:
		return "named expression"
	case AttributeExpr:
		return "attribute"
	case SubscriptExpr:
		return "subscript"
	case TupleExpr:
		return "tuple"
	case ListExpr:
		return "list"
	case DictExpr:
		return "dict literal"
	case SetExpr:
		return "set display"
	case ListComp:
		return "list comprehension"
	case SetComp:
		return "set comprehension"
	case DictComp:
		return "dict comprehension"
	case GeneratorExpr:
		return "generator expression"
	default:
		return "expression"
	}
}
