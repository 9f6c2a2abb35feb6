package parser

import (
	"github.com/opal-lang/pysyntax/core/text"
	"github.com/opal-lang/pysyntax/core/version"
	"github.com/opal-lang/pysyntax/runtime/lexer"
)

// block parses the body after a compound statement header: either simple
// statements on the same line or NEWLINE INDENT statements DEDENT.
func (p *parser) block(what string, docstring bool) bool {
	m := p.start(Suite)
	if !p.at(lexer.Newline) {
		if p.atAny(lexer.EOF, lexer.Dedent) {
			p.errorHere("expected an indented block after %s", what)
			p.undo(m)
			return true
		}
		if !p.simpleStatements(docstring) {
			return false
		}
		p.complete(m, Suite)
		return true
	}

	for p.at(lexer.Newline) {
		p.bump()
	}
	if !p.at(lexer.Indent) {
		p.errorHere("expected an indented block after %s", what)
		p.complete(m, Suite)
		return true
	}
	p.bump()
	p.docstring = docstring
	p.statementList(func() bool { return p.at(lexer.Dedent) })
	p.eat(lexer.Dedent)
	p.complete(m, Suite)
	return true
}

func (p *parser) ifStmt() bool {
	p.trace("ifStmt")
	m := p.start(IfStmt)
	p.bump()
	if _, ok := p.namedExpr(); !ok {
		return false
	}
	p.expect(lexer.Colon, "after 'if' condition")
	if !p.block("'if' statement", false) {
		return false
	}

	for p.at(lexer.KwElif) {
		c := p.start(ElifClause)
		p.bump()
		if _, ok := p.namedExpr(); !ok {
			return false
		}
		p.expect(lexer.Colon, "after 'elif' condition")
		if !p.block("'elif' clause", false) {
			return false
		}
		p.complete(c, ElifClause)
	}
	if p.at(lexer.KwElse) && !p.elseClause() {
		return false
	}
	p.complete(m, IfStmt)
	return true
}

func (p *parser) elseClause() bool {
	m := p.start(ElseClause)
	p.bump()
	p.expect(lexer.Colon, "after 'else'")
	if !p.block("'else' clause", false) {
		return false
	}
	p.complete(m, ElseClause)
	return true
}

func (p *parser) whileStmt() bool {
	p.trace("whileStmt")
	m := p.start(WhileStmt)
	p.bump()
	if _, ok := p.namedExpr(); !ok {
		return false
	}
	p.expect(lexer.Colon, "after 'while' condition")
	if !p.block("'while' statement", false) {
		return false
	}
	if p.at(lexer.KwElse) && !p.elseClause() {
		return false
	}
	p.complete(m, WhileStmt)
	return true
}

// forStmt parses a for loop. m is already open so that a leading 'async'
// can be included.
func (p *parser) forStmt(m Marker) bool {
	p.trace("forStmt")
	p.setKind(m, ForStmt)
	p.eat(lexer.KwAsync)
	p.bump()
	if _, ok := p.targetList(); !ok {
		return false
	}
	if !p.expect(lexer.KwIn, "after 'for' target") {
		return false
	}
	if _, ok := p.starExpressions(); !ok {
		return false
	}
	p.expect(lexer.Colon, "after 'for' iterable")
	if !p.block("'for' statement", false) {
		return false
	}
	if p.at(lexer.KwElse) && !p.elseClause() {
		return false
	}
	p.complete(m, ForStmt)
	return true
}

func (p *parser) tryStmt() bool {
	p.trace("tryStmt")
	m := p.start(TryStmt)
	p.bump()
	p.expect(lexer.Colon, "after 'try'")
	if !p.block("'try' statement", false) {
		return false
	}

	handlers, groups := 0, 0
	for p.at(lexer.KwExcept) {
		star, ok := p.exceptClause()
		if !ok {
			return false
		}
		handlers++
		if star {
			groups++
		}
	}
	if groups > 0 && groups < handlers {
		p.errorHere("cannot have both 'except' and 'except*' on the same 'try'")
	}
	if handlers > 0 && p.at(lexer.KwElse) && !p.elseClause() {
		return false
	}

	final := p.at(lexer.KwFinally)
	if final {
		c := p.start(FinallyClause)
		p.bump()
		p.expect(lexer.Colon, "after 'finally'")
		if !p.block("'finally' clause", false) {
			return false
		}
		p.complete(c, FinallyClause)
	}
	if handlers == 0 && !final {
		p.errorHere("expected 'except' or 'finally' block")
	}
	p.complete(m, TryStmt)
	return true
}

func (p *parser) exceptClause() (star, ok bool) {
	m := p.start(ExceptClause)
	p.bump()
	if p.at(lexer.Star) {
		star = true
		p.requireFeature(version.ExceptGroups, p.current().Range)
		p.bump()
	}
	if !p.at(lexer.Colon) {
		if _, ok := p.expr(); !ok {
			return star, false
		}
		if p.eat(lexer.KwAs) {
			p.expect(lexer.Name, "after 'as'")
		}
	}
	p.expect(lexer.Colon, "after 'except' clause")
	if !p.block("'except' clause", false) {
		return star, false
	}
	p.complete(m, ExceptClause)
	return star, true
}

func (p *parser) withStmt(m Marker) bool {
	p.trace("withStmt")
	p.setKind(m, WithStmt)
	p.eat(lexer.KwAsync)
	p.bump()

	if items, hasAs := p.scanParenthesizedItems(); items {
		if hasAs {
			p.requireFeature(version.ParenthesizedContextManagers, p.current().Range)
		}
		p.bump()
		for !p.at(lexer.RParen) && !p.at(lexer.EOF) {
			if !p.withItem() {
				return false
			}
			if !p.eat(lexer.Comma) {
				break
			}
		}
		p.expect(lexer.RParen, "to close 'with' items")
	} else {
		for {
			if !p.withItem() {
				return false
			}
			if !p.eat(lexer.Comma) {
				break
			}
		}
	}

	p.expect(lexer.Colon, "after 'with' items")
	if !p.block("'with' statement", false) {
		return false
	}
	p.complete(m, WithStmt)
	return true
}

// scanParenthesizedItems looks ahead from '(' to its matching ')'. The
// parentheses group with-items when the ')' is followed by ':' and the
// group holds more than a single expression.
func (p *parser) scanParenthesizedItems() (items, hasAs bool) {
	if !p.at(lexer.LParen) {
		return false, false
	}
	depth := 0
	comma := false
	for i := p.pos; i < len(p.tokens); i++ {
		switch p.tokens[i].Kind {
		case lexer.LParen, lexer.LSquare, lexer.LBrace:
			depth++
		case lexer.RParen, lexer.RSquare, lexer.RBrace:
			depth--
			if depth > 0 {
				continue
			}
			for j := i + 1; j < len(p.tokens); j++ {
				if k := p.tokens[j].Kind; !k.IsTrivia() {
					return k == lexer.Colon && (comma || hasAs), hasAs
				}
			}
			return false, false
		case lexer.Comma:
			comma = comma || depth == 1
		case lexer.KwAs:
			hasAs = hasAs || depth == 1
		case lexer.EOF:
			return false, false
		}
	}
	return false, false
}

func (p *parser) withItem() bool {
	m := p.start(WithItem)
	if _, ok := p.expr(); !ok {
		return false
	}
	if p.eat(lexer.KwAs) {
		if _, ok := p.target(); !ok {
			return false
		}
	}
	p.complete(m, WithItem)
	return true
}

// asyncStmt dispatches 'async def', 'async for' and 'async with'.
func (p *parser) asyncStmt() bool {
	m := p.start(Error)
	switch p.nth(1) {
	case lexer.KwDef:
		return p.funcDef(m)
	case lexer.KwFor:
		return p.forStmt(m)
	case lexer.KwWith:
		return p.withStmt(m)
	}
	p.bump()
	p.errorHere("expected 'def', 'for' or 'with' after 'async'")
	p.complete(m, Error)
	return true
}

// funcDef parses a function definition into m, which may already hold
// decorators.
func (p *parser) funcDef(m Marker) bool {
	p.trace("funcDef")
	p.setKind(m, FunctionDef)
	p.eat(lexer.KwAsync)
	p.bump()
	p.expect(lexer.Name, "after 'def'")
	if p.at(lexer.LSquare) && !p.typeParams(true) {
		return false
	}
	if p.at(lexer.LParen) {
		if !p.params(lexer.RParen, true) {
			return false
		}
	} else {
		p.errorHere("expected '(' after function name")
	}
	if p.at(lexer.Arrow) {
		r := p.start(ReturnAnnotation)
		p.bump()
		if _, ok := p.expr(); !ok {
			return false
		}
		p.complete(r, ReturnAnnotation)
	}
	p.expect(lexer.Colon, "after function signature")
	if !p.block("function definition", true) {
		return false
	}
	p.complete(m, FunctionDef)
	return true
}

// params parses a parameter list. Function parameters are parenthesized
// and may be annotated; lambda parameters end at ':'.
func (p *parser) params(closer lexer.TokenKind, function bool) bool {
	m := p.start(ParamList)
	if function {
		p.bump()
	}
	for !p.at(closer) && !p.atAny(lexer.EOF, lexer.Newline) {
		if !p.param(function) {
			return false
		}
		if !p.eat(lexer.Comma) {
			break
		}
	}
	if function {
		p.expect(lexer.RParen, "to close parameter list")
	}
	p.complete(m, ParamList)
	return true
}

func (p *parser) param(annotated bool) bool {
	m := p.start(Param)
	switch p.current().Kind {
	case lexer.Slash:
		p.requireFeature(version.PositionalOnlyParameters, p.current().Range)
		p.bump()
		p.complete(m, Param)
		return true

	case lexer.Star:
		p.bump()
		if p.eat(lexer.Name) && !p.annotation(annotated, true) {
			return false
		}

	case lexer.DoubleStar:
		p.bump()
		p.expect(lexer.Name, "after '**'")
		if !p.annotation(annotated, false) {
			return false
		}

	case lexer.Name:
		p.bump()
		if !p.annotation(annotated, false) {
			return false
		}
		if p.eat(lexer.Equal) {
			if _, ok := p.expr(); !ok {
				return false
			}
		}

	default:
		p.errorHere("expected parameter name, found %s", p.current().Kind.Describe())
		p.undo(m)
		return false
	}
	p.complete(m, Param)
	return true
}

func (p *parser) annotation(annotated, variadic bool) bool {
	if !annotated || !p.eat(lexer.Colon) {
		return true
	}
	var ok bool
	if variadic && p.at(lexer.Star) {
		_, ok = p.starred()
	} else {
		_, ok = p.expr()
	}
	return ok
}

func (p *parser) classDef(m Marker) bool {
	p.trace("classDef")
	p.setKind(m, ClassDef)
	p.bump()
	p.expect(lexer.Name, "after 'class'")
	if p.at(lexer.LSquare) && !p.typeParams(true) {
		return false
	}
	if p.at(lexer.LParen) && !p.argList() {
		return false
	}
	p.expect(lexer.Colon, "after class header")
	if !p.block("class definition", true) {
		return false
	}
	p.complete(m, ClassDef)
	return true
}

// typeParams parses "[T, *Ts, **P]". Type aliases report their own version
// requirement, so they pass warn=false.
func (p *parser) typeParams(warn bool) bool {
	if warn {
		p.requireFeature(version.TypeParameters, p.current().Range)
	}
	m := p.start(TypeParamList)
	p.bump()
	for !p.at(lexer.RSquare) && !p.at(lexer.EOF) {
		t := p.start(TypeParam)
		if !p.eat(lexer.Star) {
			p.eat(lexer.DoubleStar)
		}
		if !p.expect(lexer.Name, "in type parameter list") {
			return false
		}
		if p.eat(lexer.Colon) {
			if _, ok := p.expr(); !ok {
				return false
			}
		}
		if p.eat(lexer.Equal) {
			if _, ok := p.expr(); !ok {
				return false
			}
		}
		p.complete(t, TypeParam)
		if !p.eat(lexer.Comma) {
			break
		}
	}
	p.expect(lexer.RSquare, "to close type parameter list")
	p.complete(m, TypeParamList)
	return true
}

// decorated parses decorators and the definition they apply to.
func (p *parser) decorated() bool {
	p.trace("decorated")
	m := p.start(FunctionDef)
	list := p.start(DecoratorList)
	for p.atAny(lexer.AtSign, lexer.DecoratorAt) {
		d := p.start(Decorator)
		p.reclassify(lexer.DecoratorAt)
		p.bump()
		if _, ok := p.namedExpr(); !ok {
			return false
		}
		if !p.at(lexer.Newline) {
			p.errorHere("expected newline after decorator, found %s", p.current().Kind.Describe())
			return false
		}
		for p.at(lexer.Newline) {
			p.bump()
		}
		p.complete(d, Decorator)
	}
	p.complete(list, DecoratorList)

	switch {
	case p.at(lexer.KwDef), p.at(lexer.KwAsync) && p.nth(1) == lexer.KwDef:
		return p.funcDef(m)
	case p.at(lexer.KwClass):
		return p.classDef(m)
	}
	p.errorHere("expected function or class definition after decorator, found %s", p.current().Kind.Describe())
	p.complete(m, Error)
	return true
}

// atMatchStatement recognizes the soft keyword 'match': it must be followed
// by an expression and the logical line must end with ':'.
func (p *parser) atMatchStatement() bool {
	if !p.atSoft("match") {
		return false
	}
	switch p.nth(1) {
	case lexer.Name, lexer.Int, lexer.Float, lexer.Imaginary, lexer.String, lexer.Bytes, lexer.FString,
		lexer.KwNone, lexer.KwTrue, lexer.KwFalse, lexer.KwNot, lexer.KwAwait, lexer.KwLambda,
		lexer.LParen, lexer.LSquare, lexer.LBrace, lexer.Minus, lexer.Plus, lexer.Tilde, lexer.Star:
	default:
		return false
	}

	depth := 0
	last := lexer.EOF
	for i := p.pos; i < len(p.tokens); i++ {
		k := p.tokens[i].Kind
		switch {
		case k.IsTrivia():
			continue
		case k == lexer.LParen || k == lexer.LSquare || k == lexer.LBrace:
			depth++
		case k == lexer.RParen || k == lexer.RSquare || k == lexer.RBrace:
			depth--
		case k == lexer.Newline:
			if depth > 0 {
				continue
			}
			return last == lexer.Colon
		case k == lexer.EOF || k == lexer.Indent || k == lexer.Dedent:
			return last == lexer.Colon
		}
		last = k
	}
	return false
}

// matchStmt parses a match statement. Patterns are parsed with the
// expression grammar.
func (p *parser) matchStmt() bool {
	p.trace("matchStmt")
	m := p.start(MatchStmt)
	p.requireFeature(version.MatchStatement, p.current().Range)
	p.bump()
	if _, ok := p.starExpressions(); !ok {
		return false
	}
	p.expect(lexer.Colon, "after 'match' subject")

	s := p.start(Suite)
	if !p.at(lexer.Newline) {
		p.errorHere("expected newline after 'match' statement, found %s", p.current().Kind.Describe())
		return false
	}
	for p.at(lexer.Newline) {
		p.bump()
	}
	if !p.at(lexer.Indent) {
		p.errorHere("expected an indented block after 'match' statement")
		p.complete(s, Suite)
		p.complete(m, MatchStmt)
		return true
	}
	p.bump()

	for !p.atAny(lexer.Dedent, lexer.EOF) {
		prev := p.pos
		switch {
		case p.at(lexer.Newline):
			p.bump()
		case p.atSoft("case"):
			p.recovering(p.caseClause)
		default:
			p.errorAt(p.current().Range, "expected 'case' clause, found %s", p.current().Kind.Describe())
			p.recovering(p.statement)
		}
		if p.pos == prev {
			break
		}
	}
	p.eat(lexer.Dedent)
	p.complete(s, Suite)
	p.complete(m, MatchStmt)
	return true
}

func (p *parser) caseClause() bool {
	m := p.start(CaseClause)
	p.bump()
	if !p.patterns() {
		return false
	}
	if p.at(lexer.KwIf) {
		g := p.start(Guard)
		p.bump()
		if _, ok := p.namedExpr(); !ok {
			return false
		}
		p.complete(g, Guard)
	}
	p.expect(lexer.Colon, "after 'case' pattern")
	if !p.block("'case' clause", false) {
		return false
	}
	p.complete(m, CaseClause)
	return true
}

// patterns parses a case pattern list with an optional "as name" capture.
// Conditional expressions are not patterns, so 'if' is left for the guard.
func (p *parser) patterns() bool {
	t := p.start(TupleExpr)
	pattern := func() bool {
		var ok bool
		if p.at(lexer.Star) {
			_, ok = p.starred()
		} else {
			_, ok = p.binary(0)
		}
		return ok
	}
	if !pattern() {
		return false
	}
	if p.at(lexer.Comma) {
		for p.eat(lexer.Comma) {
			if !p.atExpressionStart() {
				break
			}
			if !pattern() {
				return false
			}
		}
		p.complete(t, TupleExpr)
	} else {
		p.undo(t)
	}
	if p.eat(lexer.KwAs) {
		p.expect(lexer.Name, "after 'as'")
	}
	return true
}

// unexpectedIndent parses an over-indented block inside an Error node.
func (p *parser) unexpectedIndent() bool {
	m := p.start(Error)
	r := text.Empty(p.current().Range.Start)
	if next := p.tokens[p.pos+1]; next.Kind != lexer.EOF {
		r = next.Range
	}
	p.errorAt(r, "unexpected indent")
	p.bump()
	p.statementList(func() bool { return p.at(lexer.Dedent) })
	p.eat(lexer.Dedent)
	p.complete(m, Error)
	return true
}

// strayClause parses an elif, else, except or finally that no statement
// claimed, keeping its body inside an Error node.
func (p *parser) strayClause() bool {
	kw := p.current().Kind
	m := p.start(Error)
	p.errorAt(p.current().Range, "%s", strayMessage(kw))
	p.bump()
	p.eat(lexer.Star)
	if !p.at(lexer.Colon) && p.atExpressionStart() {
		if _, ok := p.expr(); !ok {
			return false
		}
		if p.eat(lexer.KwAs) {
			p.eat(lexer.Name)
		}
	}
	if !p.eat(lexer.Colon) {
		return false
	}
	if !p.block("'"+kw.String()+"' clause", false) {
		return false
	}
	p.complete(m, Error)
	return true
}

func strayMessage(kw lexer.TokenKind) string {
	switch kw {
	case lexer.KwElif:
		return "'elif' without a matching 'if'"
	case lexer.KwElse:
		return "'else' without a matching 'if', 'for', 'while' or 'try'"
	default:
		return "'" + kw.String() + "' without a matching 'try'"
	}
}
