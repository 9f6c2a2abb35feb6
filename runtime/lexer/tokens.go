package lexer

import (
	"fmt"

	"github.com/opal-lang/pysyntax/core/text"
)

// TokenKind is the closed set of token kinds. Values are stable: add new
// kinds at the END.
type TokenKind uint8

const (
	EOF TokenKind = iota
	Unknown

	// Trivia
	Whitespace
	Comment
	Shebang
	LineContinuation

	// Layout
	Newline
	Indent
	Dedent

	// Atoms
	Name
	Int
	Float
	Imaginary
	String
	Bytes
	FString

	// Keywords
	KwFalse
	KwNone
	KwTrue
	KwAnd
	KwAs
	KwAssert
	KwAsync
	KwAwait
	KwBreak
	KwClass
	KwContinue
	KwDef
	KwDel
	KwElif
	KwElse
	KwExcept
	KwFinally
	KwFor
	KwFrom
	KwGlobal
	KwIf
	KwImport
	KwIn
	KwIs
	KwLambda
	KwNonlocal
	KwNot
	KwOr
	KwPass
	KwRaise
	KwReturn
	KwTry
	KwWhile
	KwWith
	KwYield

	// Operators
	Plus             // +
	Minus            // -
	Star             // *
	DoubleStar       // **
	Slash            // /
	DoubleSlash      // //
	Percent          // %
	AtSign           // @ before the parser decides what it means
	DecoratorAt      // @ introducing a decorator
	MatMul           // @ as matrix multiplication
	LeftShift        // <<
	RightShift       // >>
	Amper            // &
	VBar             // |
	Circumflex       // ^
	Tilde            // ~
	Less             // <
	Greater          // >
	LessEqual        // <=
	GreaterEqual     // >=
	EqEqual          // ==
	NotEqual         // !=
	Equal            // =
	ColonEqual       // :=
	Arrow            // ->
	PlusEqual        // +=
	MinusEqual       // -=
	StarEqual        // *=
	DoubleStarEqual  // **=
	SlashEqual       // /=
	DoubleSlashEqual // //=
	PercentEqual     // %=
	AtEqual          // @=
	AmperEqual       // &=
	VBarEqual        // |=
	CircumflexEqual  // ^=
	LeftShiftEqual   // <<=
	RightShiftEqual  // >>=

	// Punctuation
	LParen    // (
	RParen    // )
	LSquare   // [
	RSquare   // ]
	LBrace    // {
	RBrace    // }
	Colon     // :
	Comma     // ,
	Semicolon // ;
	Dot       // .
	Ellipsis  // ...

	tokenKindCount
)

var tokenNames = [tokenKindCount]string{
	EOF:              "EOF",
	Unknown:          "Unknown",
	Whitespace:       "Whitespace",
	Comment:          "Comment",
	Shebang:          "Shebang",
	LineContinuation: "LineContinuation",
	Newline:          "Newline",
	Indent:           "Indent",
	Dedent:           "Dedent",
	Name:             "Name",
	Int:              "Int",
	Float:            "Float",
	Imaginary:        "Imaginary",
	String:           "String",
	Bytes:            "Bytes",
	FString:          "FString",
	KwFalse:          "False",
	KwNone:           "None",
	KwTrue:           "True",
	KwAnd:            "and",
	KwAs:             "as",
	KwAssert:         "assert",
	KwAsync:          "async",
	KwAwait:          "await",
	KwBreak:          "break",
	KwClass:          "class",
	KwContinue:       "continue",
	KwDef:            "def",
	KwDel:            "del",
	KwElif:           "elif",
	KwElse:           "else",
	KwExcept:         "except",
	KwFinally:        "finally",
	KwFor:            "for",
	KwFrom:           "from",
	KwGlobal:         "global",
	KwIf:             "if",
	KwImport:         "import",
	KwIn:             "in",
	KwIs:             "is",
	KwLambda:         "lambda",
	KwNonlocal:       "nonlocal",
	KwNot:            "not",
	KwOr:             "or",
	KwPass:           "pass",
	KwRaise:          "raise",
	KwReturn:         "return",
	KwTry:            "try",
	KwWhile:          "while",
	KwWith:           "with",
	KwYield:          "yield",
	Plus:             "+",
	Minus:            "-",
	Star:             "*",
	DoubleStar:       "**",
	Slash:            "/",
	DoubleSlash:      "//",
	Percent:          "%",
	AtSign:           "@",
	DecoratorAt:      "@decorator",
	MatMul:           "@matmul",
	LeftShift:        "<<",
	RightShift:       ">>",
	Amper:            "&",
	VBar:             "|",
	Circumflex:       "^",
	Tilde:            "~",
	Less:             "<",
	Greater:          ">",
	LessEqual:        "<=",
	GreaterEqual:     ">=",
	EqEqual:          "==",
	NotEqual:         "!=",
	Equal:            "=",
	ColonEqual:       ":=",
	Arrow:            "->",
	PlusEqual:        "+=",
	MinusEqual:       "-=",
	StarEqual:        "*=",
	DoubleStarEqual:  "**=",
	SlashEqual:       "/=",
	DoubleSlashEqual: "//=",
	PercentEqual:     "%=",
	AtEqual:          "@=",
	AmperEqual:       "&=",
	VBarEqual:        "|=",
	CircumflexEqual:  "^=",
	LeftShiftEqual:   "<<=",
	RightShiftEqual:  ">>=",
	LParen:           "(",
	RParen:           ")",
	LSquare:          "[",
	RSquare:          "]",
	LBrace:           "{",
	RBrace:           "}",
	Colon:            ":",
	Comma:            ",",
	Semicolon:        ";",
	Dot:              ".",
	Ellipsis:         "...",
}

func (k TokenKind) String() string {
	if k < tokenKindCount {
		return tokenNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", k)
}

// Describe renders k for diagnostics: punctuation and keywords are quoted,
// everything else is spelled out.
func (k TokenKind) Describe() string {
	switch {
	case k == EOF:
		return "end of file"
	case k == Newline:
		return "newline"
	case k == Indent:
		return "indent"
	case k == Dedent:
		return "dedent"
	case k == Name:
		return "identifier"
	case k == DecoratorAt || k == MatMul:
		return "'@'"
	case k >= Int && k <= FString:
		return "literal"
	case k.IsKeyword() || k >= Plus:
		return "'" + k.String() + "'"
	default:
		return k.String()
	}
}

// TokenKindByName is the inverse of String, used when decoding serialized
// references.
func TokenKindByName(name string) (TokenKind, bool) {
	for k := TokenKind(0); k < tokenKindCount; k++ {
		if tokenNames[k] == name {
			return k, true
		}
	}
	return 0, false
}

// IsTrivia reports whether tokens of kind k are insignificant to the grammar.
// Newlines are not trivia.
func (k TokenKind) IsTrivia() bool {
	return k == Whitespace || k == Comment || k == Shebang || k == LineContinuation
}

// IsKeyword reports whether k is a hard keyword.
func (k TokenKind) IsKeyword() bool {
	return k >= KwFalse && k <= KwYield
}

// IsLiteral reports whether k is a numeric or string literal.
func (k TokenKind) IsLiteral() bool {
	return k >= Int && k <= FString
}

// IsString reports whether k is any kind of string literal.
func (k TokenKind) IsString() bool {
	return k == String || k == Bytes || k == FString
}

// IsAugmentedAssign reports whether k is a compound assignment operator.
func (k TokenKind) IsAugmentedAssign() bool {
	return k >= PlusEqual && k <= RightShiftEqual
}

// Token is a kind plus the byte range it covers. The text is recovered from
// the source on demand.
type Token struct {
	Kind  TokenKind
	Range text.Range
}

// Text returns the token's bytes in src.
func (t Token) Text(src []byte) []byte {
	return t.Range.Slice(src)
}

func (t Token) String() string {
	return fmt.Sprintf("%s@%s", t.Kind, t.Range)
}

var keywords = map[string]TokenKind{
	"False":    KwFalse,
	"None":     KwNone,
	"True":     KwTrue,
	"and":      KwAnd,
	"as":       KwAs,
	"assert":   KwAssert,
	"async":    KwAsync,
	"await":    KwAwait,
	"break":    KwBreak,
	"class":    KwClass,
	"continue": KwContinue,
	"def":      KwDef,
	"del":      KwDel,
	"elif":     KwElif,
	"else":     KwElse,
	"except":   KwExcept,
	"finally":  KwFinally,
	"for":      KwFor,
	"from":     KwFrom,
	"global":   KwGlobal,
	"if":       KwIf,
	"import":   KwImport,
	"in":       KwIn,
	"is":       KwIs,
	"lambda":   KwLambda,
	"nonlocal": KwNonlocal,
	"not":      KwNot,
	"or":       KwOr,
	"pass":     KwPass,
	"raise":    KwRaise,
	"return":   KwReturn,
	"try":      KwTry,
	"while":    KwWhile,
	"with":     KwWith,
	"yield":    KwYield,
}

// LookupKeyword returns the keyword kind for ident, or Name. Soft keywords
// (match, case, type, _) are names; the parser recognizes them by context.
func LookupKeyword(ident []byte) TokenKind {
	if k, ok := keywords[string(ident)]; ok {
		return k
	}
	return Name
}

// Keywords returns every hard keyword spelling, used for "did you mean"
// suggestions.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := KwFalse; k <= KwYield; k++ {
		out = append(out, k.String())
	}
	return out
}
