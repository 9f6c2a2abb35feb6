package parser

import (
	"github.com/opal-lang/pysyntax/core/version"
	"github.com/opal-lang/pysyntax/runtime/lexer"
)

// Binding powers. A binary operator with left power l continues an operand
// parsed at minimum power m only while l > m.
const (
	bpOr         = 3
	bpAnd        = 4
	bpNot        = 4 // operand of prefix 'not'
	bpCompare    = 5
	bpBitOr      = 6
	bpBitXor     = 7
	bpBitAnd     = 8
	bpShift      = 9
	bpSum        = 10
	bpTerm       = 11
	bpUnary      = 12 // operand of prefix '-', '+', '~'
	bpPowerRight = 13
	bpPower      = 14
)

// infix returns the binding powers of a binary operator token and the node
// kind it builds. Comparisons are handled separately.
func infix(kind lexer.TokenKind) (left, right int, node NodeKind) {
	switch kind {
	case lexer.KwOr:
		return bpOr, bpOr, BoolOpExpr
	case lexer.KwAnd:
		return bpAnd, bpAnd, BoolOpExpr
	case lexer.VBar:
		return bpBitOr, bpBitOr, BinaryExpr
	case lexer.Circumflex:
		return bpBitXor, bpBitXor, BinaryExpr
	case lexer.Amper:
		return bpBitAnd, bpBitAnd, BinaryExpr
	case lexer.LeftShift, lexer.RightShift:
		return bpShift, bpShift, BinaryExpr
	case lexer.Plus, lexer.Minus:
		return bpSum, bpSum, BinaryExpr
	case lexer.Star, lexer.Slash, lexer.DoubleSlash, lexer.Percent, lexer.AtSign, lexer.MatMul:
		return bpTerm, bpTerm, BinaryExpr
	case lexer.DoubleStar:
		return bpPower, bpPowerRight, BinaryExpr
	}
	return 0, 0, Error
}

// atComparison reports whether a comparison operator starts here,
// including the two-token forms "not in" and "is not".
func (p *parser) atComparison() bool {
	switch p.current().Kind {
	case lexer.Less, lexer.Greater, lexer.LessEqual, lexer.GreaterEqual,
		lexer.EqEqual, lexer.NotEqual, lexer.KwIn, lexer.KwIs:
		return true
	case lexer.KwNot:
		return p.nth(1) == lexer.KwIn
	}
	return false
}

func (p *parser) bumpComparison() {
	switch {
	case p.at(lexer.KwNot):
		p.bump()
		p.bump()
	case p.at(lexer.KwIs):
		p.bump()
		p.eat(lexer.KwNot)
	default:
		p.bump()
	}
}

// atExpressionStart reports whether the current token can begin an
// expression.
func (p *parser) atExpressionStart() bool {
	switch k := p.current().Kind; {
	case k == lexer.Name, k.IsLiteral():
		return true
	case k == lexer.KwNone, k == lexer.KwTrue, k == lexer.KwFalse,
		k == lexer.KwNot, k == lexer.KwLambda, k == lexer.KwAwait, k == lexer.KwYield:
		return true
	case k == lexer.LParen, k == lexer.LSquare, k == lexer.LBrace,
		k == lexer.Minus, k == lexer.Plus, k == lexer.Tilde,
		k == lexer.Star, k == lexer.DoubleStar, k == lexer.Ellipsis:
		return true
	}
	return false
}

// expr parses a full expression: lambda, conditional, or anything tighter.
func (p *parser) expr() (CompletedMarker, bool) {
	if p.at(lexer.KwLambda) {
		return p.lambda()
	}
	lhs, ok := p.binary(0)
	if !ok || !p.at(lexer.KwIf) {
		return lhs, ok
	}

	m := p.precede(lhs)
	p.bump()
	if _, ok := p.binary(0); !ok {
		return CompletedMarker{}, false
	}
	if !p.expect(lexer.KwElse, "in conditional expression") {
		return p.complete(m, TernaryExpr), true
	}
	if _, ok := p.expr(); !ok {
		return CompletedMarker{}, false
	}
	return p.complete(m, TernaryExpr), true
}

// namedExpr parses an expression optionally bound with ':='.
func (p *parser) namedExpr() (CompletedMarker, bool) {
	lhs, ok := p.expr()
	if !ok || !p.at(lexer.ColonEqual) {
		return lhs, ok
	}

	p.requireFeature(version.AssignmentExpressions, p.current().Range)
	if lhs.kind != NameExpr {
		p.errorAt(p.nodeRange(lhs), "cannot use assignment expressions with %s", lhs.kind.describe())
	}
	m := p.precede(lhs)
	p.bump()
	if _, ok := p.expr(); !ok {
		return CompletedMarker{}, false
	}
	return p.complete(m, NamedExpr), true
}

// starOrNamed parses one element of a display or argument list.
func (p *parser) starOrNamed() (CompletedMarker, bool) {
	if p.at(lexer.Star) {
		return p.starred()
	}
	return p.namedExpr()
}

func (p *parser) starred() (CompletedMarker, bool) {
	m := p.start(StarredExpr)
	p.bump()
	if _, ok := p.binary(bpCompare); !ok {
		return CompletedMarker{}, false
	}
	return p.complete(m, StarredExpr), true
}

// starExpressions parses a comma list at statement level. A single element
// without a trailing comma is returned as is, otherwise the elements are
// wrapped in a TupleExpr.
func (p *parser) starExpressions() (CompletedMarker, bool) {
	m := p.start(TupleExpr)
	first, ok := p.starOrExpr()
	if !ok {
		return CompletedMarker{}, false
	}
	if !p.at(lexer.Comma) {
		p.undo(m)
		return first, true
	}
	for p.eat(lexer.Comma) {
		if !p.atExpressionStart() || p.at(lexer.KwYield) {
			break
		}
		if _, ok := p.starOrExpr(); !ok {
			return CompletedMarker{}, false
		}
	}
	return p.complete(m, TupleExpr), true
}

func (p *parser) starOrExpr() (CompletedMarker, bool) {
	if p.at(lexer.Star) {
		return p.starred()
	}
	return p.expr()
}

// binary is precedence climbing over the binary, boolean and comparison
// operators.
func (p *parser) binary(minBP int) (CompletedMarker, bool) {
	lhs, ok := p.prefix(minBP)
	if !ok {
		return CompletedMarker{}, false
	}

	for {
		if p.atComparison() {
			if bpCompare <= minBP {
				break
			}
			// Chains like a < b <= c stay flat in one CompareExpr.
			m := p.precede(lhs)
			for p.atComparison() {
				p.bumpComparison()
				if _, ok := p.binary(bpCompare); !ok {
					return CompletedMarker{}, false
				}
			}
			lhs = p.complete(m, CompareExpr)
			continue
		}

		left, right, kind := infix(p.current().Kind)
		if left == 0 || left <= minBP {
			break
		}
		m := p.precede(lhs)
		if p.at(lexer.AtSign) {
			p.reclassify(lexer.MatMul)
		}
		p.bump()
		if _, ok := p.binary(right); !ok {
			return CompletedMarker{}, false
		}
		lhs = p.complete(m, kind)
	}
	return lhs, true
}

func (p *parser) prefix(minBP int) (CompletedMarker, bool) {
	switch p.current().Kind {
	case lexer.KwNot:
		if minBP >= bpCompare {
			break
		}
		m := p.start(UnaryExpr)
		p.bump()
		if _, ok := p.binary(bpNot); !ok {
			return CompletedMarker{}, false
		}
		return p.complete(m, UnaryExpr), true

	case lexer.Minus, lexer.Plus, lexer.Tilde:
		m := p.start(UnaryExpr)
		p.bump()
		if _, ok := p.binary(bpUnary); !ok {
			return CompletedMarker{}, false
		}
		return p.complete(m, UnaryExpr), true

	case lexer.KwAwait:
		m := p.start(AwaitExpr)
		p.bump()
		if _, ok := p.primary(); !ok {
			return CompletedMarker{}, false
		}
		return p.complete(m, AwaitExpr), true
	}
	return p.primary()
}

// primary parses an atom followed by attribute, call and subscript suffixes.
func (p *parser) primary() (CompletedMarker, bool) {
	lhs, ok := p.atom()
	if !ok {
		return CompletedMarker{}, false
	}
	for {
		switch p.current().Kind {
		case lexer.Dot:
			m := p.precede(lhs)
			p.bump()
			p.expect(lexer.Name, "after '.'")
			lhs = p.complete(m, AttributeExpr)

		case lexer.LParen:
			m := p.precede(lhs)
			if !p.argList() {
				return CompletedMarker{}, false
			}
			lhs = p.complete(m, CallExpr)

		case lexer.LSquare:
			m := p.precede(lhs)
			if !p.subscript() {
				return CompletedMarker{}, false
			}
			lhs = p.complete(m, SubscriptExpr)

		default:
			return lhs, true
		}
	}
}

func (p *parser) atom() (CompletedMarker, bool) {
	switch k := p.current().Kind; {
	case k == lexer.Name:
		return p.single(NameExpr), true
	case k == lexer.Int, k == lexer.Float, k == lexer.Imaginary:
		return p.single(NumberLiteral), true
	case k == lexer.KwNone, k == lexer.KwTrue, k == lexer.KwFalse:
		return p.single(ConstantExpr), true
	case k == lexer.Ellipsis:
		return p.single(EllipsisExpr), true
	case k.IsString():
		return p.strings(), true
	case k == lexer.LParen:
		return p.parenthesized()
	case k == lexer.LSquare:
		return p.list()
	case k == lexer.LBrace:
		return p.dictOrSet()
	case k == lexer.Unknown:
		// The lexer has already reported the bad input.
		return p.single(Error), true
	}
	p.errorHere("expected expression, found %s", p.current().Kind.Describe())
	return CompletedMarker{}, false
}

// single wraps the current token in a node of kind.
func (p *parser) single(kind NodeKind) CompletedMarker {
	m := p.start(kind)
	p.bump()
	return p.complete(m, kind)
}

// strings parses implicitly concatenated string literals. Any f-string part
// makes the whole node an FStringLiteral.
func (p *parser) strings() CompletedMarker {
	m := p.start(StringLiteral)
	kind := StringLiteral
	for p.current().Kind.IsString() {
		if p.at(lexer.FString) {
			kind = FStringLiteral
		}
		p.bump()
	}
	return p.complete(m, kind)
}

// parenthesized parses '(' ... ')': a ParenExpr, a TupleExpr or a
// GeneratorExpr depending on what follows the first element.
func (p *parser) parenthesized() (CompletedMarker, bool) {
	m := p.start(ParenExpr)
	p.bump()
	if p.eat(lexer.RParen) {
		return p.complete(m, TupleExpr), true
	}

	if p.at(lexer.KwYield) {
		if _, ok := p.yieldExpr(); !ok {
			return CompletedMarker{}, false
		}
		p.expect(lexer.RParen, "to close parenthesized expression")
		return p.complete(m, ParenExpr), true
	}

	if _, ok := p.starOrNamed(); !ok {
		return CompletedMarker{}, false
	}
	kind := ParenExpr
	switch {
	case p.atCompFor():
		kind = GeneratorExpr
		p.setKind(m, kind)
		if !p.compClauses() {
			return CompletedMarker{}, false
		}
	case p.at(lexer.Comma):
		kind = TupleExpr
		p.setKind(m, kind)
		if !p.elements(lexer.RParen, p.starOrNamed) {
			return CompletedMarker{}, false
		}
	}
	p.expect(lexer.RParen, "to close parenthesized expression")
	return p.complete(m, kind), true
}

// elements parses ", elem" repeatedly until closer. A trailing comma is
// allowed.
func (p *parser) elements(closer lexer.TokenKind, elem func() (CompletedMarker, bool)) bool {
	for p.eat(lexer.Comma) {
		if p.at(closer) {
			break
		}
		if _, ok := elem(); !ok {
			return false
		}
	}
	return true
}

func (p *parser) list() (CompletedMarker, bool) {
	m := p.start(ListExpr)
	p.bump()
	if p.eat(lexer.RSquare) {
		return p.complete(m, ListExpr), true
	}
	if _, ok := p.starOrNamed(); !ok {
		return CompletedMarker{}, false
	}
	kind := ListExpr
	if p.atCompFor() {
		kind = ListComp
		if !p.compClauses() {
			return CompletedMarker{}, false
		}
	} else if !p.elements(lexer.RSquare, p.starOrNamed) {
		return CompletedMarker{}, false
	}
	p.expect(lexer.RSquare, "to close list display")
	return p.complete(m, kind), true
}

// dictOrSet parses '{' ... '}'. The first element decides between a dict
// and a set.
func (p *parser) dictOrSet() (CompletedMarker, bool) {
	m := p.start(DictExpr)
	p.bump()
	if p.eat(lexer.RBrace) {
		return p.complete(m, DictExpr), true
	}

	first, ok := p.dictOrSetElement()
	if !ok {
		return CompletedMarker{}, false
	}
	isDict := first.kind == DictEntry || first.kind == DoubleStarredExpr

	kind := SetExpr
	if isDict {
		kind = DictExpr
	}
	switch {
	case p.atCompFor():
		kind = SetComp
		if isDict {
			kind = DictComp
		}
		if !p.compClauses() {
			return CompletedMarker{}, false
		}
	default:
		elem := p.starOrNamed
		if isDict {
			elem = func() (CompletedMarker, bool) {
				cm, ok := p.dictOrSetElement()
				if ok && cm.kind != DictEntry && cm.kind != DoubleStarredExpr {
					p.errorHere("expected ':' after dict key")
				}
				return cm, ok
			}
		}
		if !p.elements(lexer.RBrace, elem) {
			return CompletedMarker{}, false
		}
	}
	p.expect(lexer.RBrace, "to close braces")
	return p.complete(m, kind), true
}

func (p *parser) dictOrSetElement() (CompletedMarker, bool) {
	if p.at(lexer.DoubleStar) {
		m := p.start(DoubleStarredExpr)
		p.bump()
		if _, ok := p.binary(bpCompare); !ok {
			return CompletedMarker{}, false
		}
		return p.complete(m, DoubleStarredExpr), true
	}

	key, ok := p.starOrNamed()
	if !ok || !p.at(lexer.Colon) {
		return key, ok
	}
	m := p.precede(key)
	p.bump()
	if _, ok := p.expr(); !ok {
		return CompletedMarker{}, false
	}
	return p.complete(m, DictEntry), true
}

func (p *parser) atCompFor() bool {
	return p.at(lexer.KwFor) || (p.at(lexer.KwAsync) && p.nth(1) == lexer.KwFor)
}

// compClauses parses the for/if clauses of a comprehension.
func (p *parser) compClauses() bool {
	for p.atCompFor() {
		m := p.start(CompFor)
		p.eat(lexer.KwAsync)
		p.bump()
		if _, ok := p.targetList(); !ok {
			return false
		}
		if !p.expect(lexer.KwIn, "after comprehension target") {
			return false
		}
		if _, ok := p.binary(0); !ok {
			return false
		}
		p.complete(m, CompFor)

		for p.at(lexer.KwIf) {
			c := p.start(CompIf)
			p.bump()
			if _, ok := p.binary(0); !ok {
				return false
			}
			p.complete(c, CompIf)
		}
	}
	return true
}

// targetList parses assignment targets such as the variables of a for loop.
// Targets stop before comparison operators so that 'in' is left alone.
func (p *parser) targetList() (CompletedMarker, bool) {
	m := p.start(TupleExpr)
	first, ok := p.target()
	if !ok {
		return CompletedMarker{}, false
	}
	if !p.at(lexer.Comma) {
		p.undo(m)
		return first, true
	}
	for p.eat(lexer.Comma) {
		if !p.atExpressionStart() {
			break
		}
		if _, ok := p.target(); !ok {
			return CompletedMarker{}, false
		}
	}
	return p.complete(m, TupleExpr), true
}

func (p *parser) target() (CompletedMarker, bool) {
	if p.at(lexer.Star) {
		return p.starred()
	}
	cm, ok := p.binary(bpCompare)
	if ok {
		p.checkTarget(cm)
	}
	return cm, ok
}

// argList parses a call's parenthesized arguments.
func (p *parser) argList() bool {
	m := p.start(ArgList)
	p.bump()
	for !p.at(lexer.RParen) && !p.at(lexer.EOF) {
		if !p.argument() {
			return false
		}
		if !p.eat(lexer.Comma) {
			break
		}
	}
	p.expect(lexer.RParen, "to close argument list")
	p.complete(m, ArgList)
	return true
}

func (p *parser) argument() bool {
	switch {
	case p.at(lexer.Star):
		_, ok := p.starred()
		return ok

	case p.at(lexer.DoubleStar):
		m := p.start(DoubleStarredExpr)
		p.bump()
		if _, ok := p.expr(); !ok {
			return false
		}
		p.complete(m, DoubleStarredExpr)
		return true

	case p.at(lexer.Name) && p.nth(1) == lexer.Equal:
		m := p.start(KeywordArg)
		p.bump()
		p.bump()
		if _, ok := p.expr(); !ok {
			return false
		}
		p.complete(m, KeywordArg)
		return true
	}

	arg, ok := p.namedExpr()
	if !ok {
		return false
	}
	if p.atCompFor() {
		m := p.precede(arg)
		if !p.compClauses() {
			return false
		}
		p.complete(m, GeneratorExpr)
	}
	return true
}

// subscript parses '[' slices ']'.
func (p *parser) subscript() bool {
	p.bump()
	m := p.start(TupleExpr)
	if _, ok := p.slice(); !ok {
		return false
	}
	if !p.at(lexer.Comma) {
		p.undo(m)
	} else {
		if !p.elements(lexer.RSquare, p.slice) {
			return false
		}
		p.complete(m, TupleExpr)
	}
	p.expect(lexer.RSquare, "to close subscript")
	return true
}

func (p *parser) slice() (CompletedMarker, bool) {
	m := p.start(SliceExpr)
	if !p.at(lexer.Colon) {
		elem, ok := p.starOrNamed()
		if !ok {
			return CompletedMarker{}, false
		}
		if !p.at(lexer.Colon) {
			p.undo(m)
			return elem, true
		}
	}

	p.bump()
	if !p.atAny(lexer.Colon, lexer.Comma, lexer.RSquare) {
		if _, ok := p.expr(); !ok {
			return CompletedMarker{}, false
		}
	}
	if p.eat(lexer.Colon) && !p.atAny(lexer.Comma, lexer.RSquare) {
		if _, ok := p.expr(); !ok {
			return CompletedMarker{}, false
		}
	}
	return p.complete(m, SliceExpr), true
}

func (p *parser) lambda() (CompletedMarker, bool) {
	m := p.start(LambdaExpr)
	p.bump()
	if !p.at(lexer.Colon) {
		if !p.params(lexer.Colon, false) {
			return CompletedMarker{}, false
		}
	}
	if !p.expect(lexer.Colon, "after lambda parameters") {
		return CompletedMarker{}, false
	}
	if _, ok := p.expr(); !ok {
		return CompletedMarker{}, false
	}
	return p.complete(m, LambdaExpr), true
}

func (p *parser) yieldExpr() (CompletedMarker, bool) {
	m := p.start(YieldExpr)
	p.bump()
	if p.eat(lexer.KwFrom) {
		if _, ok := p.expr(); !ok {
			return CompletedMarker{}, false
		}
	} else if p.atExpressionStart() {
		if _, ok := p.starExpressions(); !ok {
			return CompletedMarker{}, false
		}
	}
	return p.complete(m, YieldExpr), true
}

// checkTarget reports targets that cannot be assigned to. Tuples and lists
// are checked element by element by the grammar that built them.
func (p *parser) checkTarget(cm CompletedMarker) {
	switch cm.kind {
	case NameExpr, AttributeExpr, SubscriptExpr, TupleExpr, ListExpr, StarredExpr, ParenExpr, Error:
		return
	}
	p.errorAt(p.nodeRange(cm), "cannot assign to %s", cm.kind.describe())
}
